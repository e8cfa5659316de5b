package dict

import (
	"encoding/csv"
	"strings"
)

// SplitFeature splits a CSV feature string into its fields. Quoted fields
// may contain commas; "" inside quotes is a literal quote.
func SplitFeature(feature string) []string {
	if feature == "" {
		return nil
	}
	r := csv.NewReader(strings.NewReader(feature))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		return strings.Split(feature, ",")
	}
	return fields
}

// MatchFeature reports whether feature matches pattern field by field.
// A "*" field in pattern matches anything; pattern may be shorter than
// feature.
func MatchFeature(feature, pattern string) bool {
	if pattern == "*" || pattern == "" {
		return true
	}
	fs := SplitFeature(feature)
	for i, p := range SplitFeature(pattern) {
		if p == "*" {
			continue
		}
		if i >= len(fs) || fs[i] != p {
			return false
		}
	}
	return true
}

// splitHead returns the first n CSV fields of line (unquoted) and the raw
// text after the n-th separator.
func splitHead(line string, n int) ([]string, string, bool) {
	fields := make([]string, 0, n)
	i := 0
	for len(fields) < n {
		if i > len(line) {
			return nil, "", false
		}
		var field strings.Builder
		if i < len(line) && line[i] == '"' {
			i++
			closed := false
			for i < len(line) {
				c := line[i]
				if c == '"' {
					if i+1 < len(line) && line[i+1] == '"' {
						field.WriteByte('"')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				field.WriteByte(c)
				i++
			}
			if !closed {
				return nil, "", false
			}
		} else {
			j := strings.IndexByte(line[i:], ',')
			if j < 0 {
				j = len(line) - i
			}
			field.WriteString(line[i : i+j])
			i += j
		}
		fields = append(fields, field.String())

		if len(fields) == n {
			break
		}
		if i >= len(line) || line[i] != ',' {
			return nil, "", false
		}
		i++
	}
	if i < len(line) {
		if line[i] != ',' {
			return nil, "", false
		}
		i++
	}
	if i > len(line) {
		i = len(line)
	}
	return fields, line[i:], true
}
