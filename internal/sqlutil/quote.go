// Package sqlutil holds SQL text helpers for the MySQL graph sink.
package sqlutil

import (
	"regexp"
	"strings"
)

// QuoteIdentifier quotes a MySQL identifier with backticks, doubling any
// embedded backtick.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Table prefixes come from configuration, so only a conservative character
// set is accepted.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier reports whether name contains only letters, digits and underscores.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// PrefixedTable validates prefix+name and returns it quoted.
func PrefixedTable(prefix, name string) (string, error) {
	full := prefix + name
	if !IsValidIdentifier(full) {
		return "", &InvalidIdentifierError{Name: full}
	}
	return QuoteIdentifier(full), nil
}

// ValuesPlaceholders returns "(?,?),(?,?)" style placeholders for a
// multi-row INSERT of rows rows with cols columns each.
func ValuesPlaceholders(rows, cols int) string {
	if rows <= 0 || cols <= 0 {
		return ""
	}
	row := "(" + strings.TrimSuffix(strings.Repeat("?,", cols), ",") + ")"
	var b strings.Builder
	b.Grow(rows * (len(row) + 1))
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(row)
	}
	return b.String()
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
