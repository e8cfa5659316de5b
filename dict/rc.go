package dict

import (
	"strconv"
	"strings"

	"github.com/wippyai/mecab-bridge/errors"
)

// LoadResourceFile reads a dicrc/mecabrc style file: `key = value` lines,
// blank lines and lines starting with ';' or '#' ignored.
func LoadResourceFile(path string) (map[string]string, error) {
	params := make(map[string]string)
	err := eachLine(path, DefaultCharset, func(line string, n int) error {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == ';' || trimmed[0] == '#' {
			return nil
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			return errors.InvalidData(errors.PhaseLoad, []string{path, strconv.Itoa(n)},
				"format error: "+trimmed)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return errors.InvalidData(errors.PhaseLoad, []string{path, strconv.Itoa(n)},
				"empty key")
		}
		params[key] = strings.TrimSpace(value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return params, nil
}
