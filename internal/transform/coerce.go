// Package transform parses generator CSV files into typed vertex records
// and edge rows.
package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dbsmedya/snbloader/internal/schema"
	"github.com/dbsmedya/snbloader/internal/types"
)

const (
	// Delimiter separates columns.
	Delimiter = "|"

	dateLayout = "2006-01-02"
	// Fractional seconds are accepted after the seconds field when parsing.
	dateTimeLayout = "2006-01-02T15:04:05Z0700"
)

// Coerce converts a raw field to the type the schema assigns to field.
func Coerce(field, raw string) (types.TypedValue, error) {
	switch schema.FieldTypeOf(field) {
	case schema.FieldDate:
		t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return types.TypedValue{}, fmt.Errorf("invalid date: %w", err)
		}
		return types.Timestamp(t.UnixMilli()), nil
	case schema.FieldDateTime:
		t, err := time.Parse(dateTimeLayout, raw)
		if err != nil {
			return types.TypedValue{}, fmt.Errorf("invalid date-time: %w", err)
		}
		return types.Timestamp(t.UnixMilli()), nil
	case schema.FieldStringList:
		return types.StringList(SplitList(raw)), nil
	case schema.FieldInt32:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return types.TypedValue{}, fmt.Errorf("invalid int32: %w", err)
		}
		return types.Int32(int32(n)), nil
	case schema.FieldInt64:
		n, err := ParseID(raw)
		if err != nil {
			return types.TypedValue{}, err
		}
		return types.Int64(n), nil
	default:
		return types.String(raw), nil
	}
}

// SplitList splits a multi-valued field, dropping empty tokens.
func SplitList(raw string) []string {
	out := []string{}
	for _, tok := range strings.Split(raw, schema.ListSeparator) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// ParseID parses a base-10 local vertex id.
func ParseID(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %w", err)
	}
	return n, nil
}
