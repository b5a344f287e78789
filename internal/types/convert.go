package types

// NormalizeNative maps a decoded property value onto plain Go types: every
// integer width becomes int64 and a list of strings becomes []string.
// Codecs such as msgpack pick the smallest integer width when encoding.
func NormalizeNative(v interface{}) interface{} {
	switch i := v.(type) {
	case int:
		return int64(i)
	case int32:
		return int64(i)
	case int16:
		return int64(i)
	case int8:
		return int64(i)
	case uint:
		return int64(i)
	case uint64:
		return int64(i)
	case uint32:
		return int64(i)
	case uint16:
		return int64(i)
	case uint8:
		return int64(i)
	case []interface{}:
		out := make([]string, 0, len(i))
		for _, e := range i {
			s, ok := e.(string)
			if !ok {
				return v
			}
			out = append(out, s)
		}
		return out
	default:
		return v
	}
}

// NormalizeProps applies NormalizeNative to every value of m in place.
func NormalizeProps(m map[string]interface{}) {
	for k, v := range m {
		m[k] = NormalizeNative(v)
	}
}
