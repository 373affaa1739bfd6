// Package ident derives stable file-system identifiers from usernames.
// Per-user database files are named after the slug, so the mapping must be
// deterministic and collision-resistant even for accented or non-Latin names.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackSlug = "user"

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// stripMarks decomposes and removes combining marks, so "José" folds to "Jose".
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug returns a stable slug for a username: the ASCII-folded name plus a
// short hash of the original, so distinct names that fold to the same ASCII
// still get distinct slugs.
func Slug(username string) string {
	name := username
	if name == "" {
		name = fallbackSlug
	}

	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}

	ascii := make([]rune, 0, len(folded))
	for _, r := range folded {
		if r < 128 {
			ascii = append(ascii, r)
		}
	}

	base := nonAlnum.ReplaceAllString(string(ascii), "-")
	base = strings.ToLower(strings.Trim(base, "-_"))
	if base == "" {
		base = fallbackSlug
	}

	sum := sha256.Sum256([]byte(username))
	return base + "-" + hex.EncodeToString(sum[:])[:8]
}

// EncodeRecordID builds the composite external identifier slug:id used to
// address a record across per-user databases.
func EncodeRecordID(slug string, id uint) string {
	return fmt.Sprintf("%s:%d", slug, id)
}

// DecodeRecordID splits a composite identifier back into slug and record id.
func DecodeRecordID(identifier string) (string, uint, bool) {
	slug, idStr, found := strings.Cut(identifier, ":")
	if !found || slug == "" {
		return "", 0, false
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return slug, uint(id), true
}
