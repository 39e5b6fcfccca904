// Package entry parses task-switch log lines of the form
// "ts: description (category)".
package entry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat is returned for any line that is not a well-formed log line.
var ErrInvalidFormat = errors.New("invalid log line format")

// Kind identifies the marker that opened a log line.
type Kind string

// Line markers.
const (
	KindSwitch Kind = "ts"  // task-switch entry, logged to the spreadsheet
	KindTodo   Kind = "tdo" // todo entry, logged to the weekly doc
)

// Entry is a successfully parsed log line. Entries are values; a caller
// never sees a partially populated Entry.
type Entry struct {
	Kind        Kind
	Description string
	Category    string
}

// String formats the entry back into its line form. The result round-trips
// through Parse.
func (e Entry) String() string {
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Description, e.Category)
}

// Parse classifies one chat message as a log line or rejects it with
// ErrInvalidFormat. The required shape is a marker prefix ("ts:" or "tdo:",
// case-insensitive), whitespace, a non-empty description, and a non-empty
// parenthesized category terminating the line. Descriptions may contain
// parentheses; the category is the content of the final pair.
func Parse(line string) (Entry, error) {
	kind, rest, ok := splitMarker(line)
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing ts:/tdo: prefix", ErrInvalidFormat)
	}

	rest = strings.TrimRight(rest, " \t")
	if !strings.HasSuffix(rest, ")") {
		return Entry{}, fmt.Errorf("%w: missing (category) at end of line", ErrInvalidFormat)
	}

	open := strings.LastIndex(rest, "(")
	if open < 0 {
		return Entry{}, fmt.Errorf("%w: unmatched ')'", ErrInvalidFormat)
	}

	desc := strings.TrimSpace(rest[:open])
	category := strings.TrimSpace(rest[open+1 : len(rest)-1])

	if desc == "" {
		return Entry{}, fmt.Errorf("%w: empty description", ErrInvalidFormat)
	}
	if category == "" {
		return Entry{}, fmt.Errorf("%w: empty category", ErrInvalidFormat)
	}

	return Entry{Kind: kind, Description: desc, Category: category}, nil
}

// IsLogLine reports whether the message parses as a log line.
func IsLogLine(line string) bool {
	_, err := Parse(line)
	return err == nil
}

// splitMarker strips the marker prefix and following whitespace. It returns
// ok=false when the line does not start with a known marker followed by a
// colon and at least one space or tab.
func splitMarker(line string) (Kind, string, bool) {
	for _, kind := range []Kind{KindTodo, KindSwitch} {
		prefix := string(kind) + ":"
		if len(line) <= len(prefix) {
			continue
		}
		if !strings.EqualFold(line[:len(prefix)], prefix) {
			continue
		}
		rest := line[len(prefix):]
		if rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		return kind, rest, true
	}
	return "", "", false
}
