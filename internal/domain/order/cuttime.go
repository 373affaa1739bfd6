package order

import (
	"fmt"
	"strconv"
	"strings"

	"procdesk/internal/shared/errors"
)

// CutTime is the machining duration of an order, stored as "HH:MM:SS".
// The zero value means "not recorded".
type CutTime string

// NewCutTime normalizes a raw duration string. Empty input is valid and
// yields the zero value; anything else must parse as H:M or H:M:S with sane
// minute and second ranges, and is reformatted with two-digit fields. A
// two-part value gets zero seconds.
func NewCutTime(raw string) (CutTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return "", errors.NewValidationError("cut time must be in HH:MM or HH:MM:SS format")
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return "", errors.NewValidationError("cut time must contain only numbers")
		}
		nums[i] = n
	}

	hours, minutes, seconds := nums[0], nums[1], nums[2]
	if hours < 0 || minutes < 0 || minutes >= 60 || seconds < 0 || seconds >= 60 {
		return "", errors.NewValidationError("cut time must be in HH:MM or HH:MM:SS format")
	}

	return CutTime(fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)), nil
}

// Seconds converts the duration to whole seconds. Malformed or empty values
// count as zero so aggregation never fails on dirty historical data.
func (c CutTime) Seconds() int {
	if c == "" {
		return 0
	}

	parts := strings.Split(string(c), ":")
	if len(parts) != 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}

func (c CutTime) String() string {
	return string(c)
}

// IsZero reports whether no cut time was recorded.
func (c CutTime) IsZero() bool {
	return c == ""
}
