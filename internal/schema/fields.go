package schema

// FieldType drives how a raw CSV field is coerced.
type FieldType int

const (
	FieldString FieldType = iota
	FieldStringList
	FieldInt32
	FieldInt64
	FieldDate     // yyyy-MM-dd, stored as epoch milliseconds at UTC midnight
	FieldDateTime // yyyy-MM-ddTHH:mm:ss.SSS+hhmm, stored as epoch milliseconds
)

// IDField is the vertex identifier column.
const IDField = "id"

// ListSeparator splits multi-valued fields.
const ListSeparator = ";"

// fieldTypes is the schema table. Fields not listed default to FieldString.
var fieldTypes = map[string]FieldType{
	IDField:        FieldInt64,
	"birthday":     FieldDate,
	"creationDate": FieldDateTime,
	"joinDate":     FieldDateTime,
	"email":        FieldStringList,
	"language":     FieldStringList,
	"speaks":       FieldStringList,
	"length":       FieldInt32,
	"classYear":    FieldInt32,
	"workFrom":     FieldInt32,
}

// FieldTypeOf returns the coercion type of a field name.
func FieldTypeOf(name string) FieldType {
	if t, ok := fieldTypes[name]; ok {
		return t
	}
	return FieldString
}

func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldStringList:
		return "string[]"
	case FieldInt32:
		return "int"
	case FieldInt64:
		return "long"
	case FieldDate:
		return "date"
	case FieldDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}
