package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	apperrors "procdesk/internal/shared/errors"
)

// PromptPassword reads a password without echo when stdin is a terminal,
// and falls back to a plain line read when input is piped in.
func PromptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptNewPassword asks for a password twice and requires both entries to
// match.
func PromptNewPassword(label string) (string, error) {
	first, err := PromptPassword(label)
	if err != nil {
		return "", err
	}
	second, err := PromptPassword(label + " (again)")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", apperrors.NewValidationError("passwords do not match")
	}
	if strings.TrimSpace(first) == "" {
		return "", apperrors.NewValidationError("password cannot be empty")
	}
	return first, nil
}
