package stats

import "fmt"

// Format selects the columns of the progress table.
type Format uint8

const (
	WorkerLines Format = 1 << iota // l
	TotalLines                     // L
	WorkerFiles                    // f
	TotalFiles                     // F
	WorkerDisk                     // d
	TotalDisk                      // D
	Elapsed                        // T
)

// DefaultFormat is "LFDT".
const DefaultFormat = TotalLines | TotalFiles | TotalDisk | Elapsed

var formatFlags = []struct {
	flag byte
	bit  Format
}{
	{'l', WorkerLines},
	{'L', TotalLines},
	{'f', WorkerFiles},
	{'F', TotalFiles},
	{'d', WorkerDisk},
	{'D', TotalDisk},
	{'T', Elapsed},
}

// ParseFormat converts a flag string such as "lfLFDT" into a Format.
func ParseFormat(s string) (Format, error) {
	var f Format
	for i := 0; i < len(s); i++ {
		bit, ok := lookupFlag(s[i])
		if !ok {
			return 0, fmt.Errorf("unknown report format flag %q in %q", s[i], s)
		}
		f |= bit
	}
	return f, nil
}

func lookupFlag(c byte) (Format, bool) {
	for _, ff := range formatFlags {
		if ff.flag == c {
			return ff.bit, true
		}
	}
	return 0, false
}

// Has reports whether every bit of flag is set.
func (f Format) Has(flag Format) bool { return f&flag == flag }

func (f Format) String() string {
	out := make([]byte, 0, len(formatFlags))
	for _, ff := range formatFlags {
		if f.Has(ff.bit) {
			out = append(out, ff.flag)
		}
	}
	return string(out)
}
