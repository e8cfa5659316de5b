package dict

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/wippyai/mecab-bridge/errors"
)

// DefaultCharset is assumed when a dictionary does not declare one.
const DefaultCharset = "utf-8"

var charsetAliases = map[string]string{
	"shift-jis": "shift_jis",
	"sjis":      "shift_jis",
	"eucjp":     "euc-jp",
	"utf8":      "utf-8",
}

// CanonicalCharset resolves a charset label to its WHATWG canonical name.
func CanonicalCharset(label string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return DefaultCharset, nil
	}
	if alias, ok := charsetAliases[key]; ok {
		key = alias
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return "", errors.Wrap(errors.PhaseLoad, errors.KindUnsupported, err,
			fmt.Sprintf("unknown charset %q", label))
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return "", errors.Wrap(errors.PhaseLoad, errors.KindUnsupported, err,
			fmt.Sprintf("unknown charset %q", label))
	}
	return name, nil
}

type decodedFile struct {
	io.Reader
	f *os.File
}

func (d *decodedFile) Close() error { return d.f.Close() }

// openDecoded opens a dictionary source file and converts it to UTF-8.
func openDecoded(path, charset string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if charset == "" || charset == DefaultCharset {
		return f, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("charset %s: %w", charset, err)
	}
	return &decodedFile{Reader: transform.NewReader(f, enc.NewDecoder()), f: f}, nil
}

// eachLine calls fn for every line of a decoded source file with its
// 1-based line number. Trailing CR is stripped.
func eachLine(path, charset string, fn func(line string, n int) error) error {
	rc, err := openDecoded(path, charset)
	if err != nil {
		return err
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if n == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if err := fn(line, n); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
