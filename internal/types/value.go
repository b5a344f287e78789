package types

import (
	"fmt"
	"strings"
)

// Kind tags the variant held by a TypedValue.
type Kind uint8

const (
	KindString Kind = iota
	KindStringList
	KindInt32
	KindInt64
	KindTimestamp // epoch milliseconds, UTC
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindStringList:
		return "string[]"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// TypedValue is a coerced property value. Integers and timestamps live in Int,
// strings in Str and lists in List.
type TypedValue struct {
	Kind Kind
	Int  int64
	Str  string
	List []string
}

func String(s string) TypedValue       { return TypedValue{Kind: KindString, Str: s} }
func StringList(l []string) TypedValue { return TypedValue{Kind: KindStringList, List: l} }
func Int32(v int32) TypedValue         { return TypedValue{Kind: KindInt32, Int: int64(v)} }
func Int64(v int64) TypedValue         { return TypedValue{Kind: KindInt64, Int: v} }
func Timestamp(ms int64) TypedValue    { return TypedValue{Kind: KindTimestamp, Int: ms} }

// Native returns the value as a plain Go value suitable for encoders.
func (v TypedValue) Native() interface{} {
	switch v.Kind {
	case KindStringList:
		if v.List == nil {
			return []string{}
		}
		return v.List
	case KindInt32:
		return int32(v.Int)
	case KindInt64, KindTimestamp:
		return v.Int
	default:
		return v.Str
	}
}

func (v TypedValue) String() string {
	switch v.Kind {
	case KindStringList:
		return "[" + strings.Join(v.List, ";") + "]"
	case KindInt32, KindInt64, KindTimestamp:
		return fmt.Sprintf("%d", v.Int)
	default:
		return v.Str
	}
}

// Properties maps a field name to its coerced value.
type Properties map[string]TypedValue

// Native converts every value with TypedValue.Native.
func (p Properties) Native() map[string]interface{} {
	out := make(map[string]interface{}, len(p))
	for k, v := range p {
		out[k] = v.Native()
	}
	return out
}
