// Package testdict writes the small "base" dictionary the tests analyze
// against.
//
// Surfaces "a", "b" and "ab" are all tokens; costs make "ab" the best
// analysis of "ab" (420) with "a"+"b" second (670). "東京都" analyzes as
// "東京"+"都". Digits and unlisted letters fall through to unknown-word
// generation.
package testdict

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/htmlindex"
)

const Dicrc = `; base test dictionary
cost-factor = 800
bos-feature = BOS/EOS,*,*,*,*,*,*,*,*
eval-size = 6
unk-eval-size = 4
config-charset = %CHARSET%
node-format-yomi = %pS%f[7]
unk-format-yomi = %M
eos-format-yomi = \n
node-format-simple = %m/%f[0]\s
unk-format-simple = %m/?\s
eos-format-simple = \n
`

const Matrix = `3 3
0 0 0
0 1 10
0 2 10
1 0 10
1 1 50
1 2 -20
2 0 10
2 1 20
2 2 100
`

const CharDef = `# category INVOKE GROUP LENGTH
DEFAULT 0 1 0
SPACE 0 1 0
ALPHA 0 1 0
NUMERIC 1 1 0
KANJI 0 0 2
HIRAGANA 0 1 0

0x0020 SPACE
0x0009 SPACE
0x0030..0x0039 NUMERIC
0x0041..0x005A ALPHA
0x0061..0x007A ALPHA
0x3041..0x309F HIRAGANA
0x4E00..0x9FFF KANJI
`

const UnkDef = `DEFAULT,1,1,1000,記号,一般,*,*,*,*,*
SPACE,1,1,1000,記号,空白,*,*,*,*,*
ALPHA,1,1,800,名詞,固有名詞,組織,*,*,*,*
NUMERIC,1,1,800,名詞,数,*,*,*,*,*
KANJI,1,1,1200,名詞,一般,*,*,*,*,*
HIRAGANA,1,1,1200,名詞,一般,*,*,*,*,*
`

const Lexicon = `a,1,1,300,名詞,一般,*,*,*,*,a,エー,エー
b,1,1,300,名詞,一般,*,*,*,*,b,ビー,ビー
ab,1,1,400,名詞,固有名詞,一般,*,*,*,ab,エービー,エービー
東京,1,1,200,名詞,固有名詞,地域,*,*,*,東京,トウキョウ,トーキョー
京都,1,1,200,名詞,固有名詞,地域,*,*,*,京都,キョウト,キョート
東,1,1,300,名詞,一般,*,*,*,*,東,ヒガシ,ヒガシ
京,1,1,300,名詞,一般,*,*,*,*,京,キョウ,キョー
都,1,1,250,名詞,接尾,*,*,*,*,都,ト,ト
の,2,2,100,助詞,連体化,*,*,*,*,の,ノ,ノ
`

const POSID = `名詞,一般,*,* 38
名詞,固有名詞,*,* 41
助詞,* 13
`

// WriteDir writes the UTF-8 base dictionary into dir.
func WriteDir(dir string) error {
	return WriteDirCharset(dir, "utf-8")
}

// WriteDirCharset writes the base dictionary encoded in charset.
func WriteDirCharset(dir, charset string) error {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return err
	}
	encode := func(s string) ([]byte, error) {
		if strings.EqualFold(charset, "utf-8") {
			return []byte(s), nil
		}
		out, err := enc.NewEncoder().String(s)
		return []byte(out), err
	}

	files := map[string]string{
		"dicrc":      strings.ReplaceAll(Dicrc, "%CHARSET%", charset),
		"matrix.def": Matrix,
		"char.def":   CharDef,
		"unk.def":    UnkDef,
		"base.csv":   Lexicon,
		"pos-id.def": POSID,
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, content := range files {
		data := []byte(content)
		if name != "dicrc" {
			if data, err = encode(content); err != nil {
				return err
			}
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Write writes the base dictionary into a fresh temp directory.
func Write(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "base")
	if err := WriteDir(dir); err != nil {
		t.Fatalf("write test dictionary: %v", err)
	}
	return dir
}

// WriteCharset is Write for a non-UTF-8 encoding.
func WriteCharset(t testing.TB, charset string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "base-"+charset)
	if err := WriteDirCharset(dir, charset); err != nil {
		t.Fatalf("write test dictionary: %v", err)
	}
	return dir
}

// WriteUserDic writes lexicon rows into a user dictionary CSV file.
func WriteUserDic(t testing.TB, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "user.csv")
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write user dictionary: %v", err)
	}
	return path
}
