package dict

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wippyai/mecab-bridge/errors"
)

// Source file names inside a dictionary directory.
const (
	ResourceFile = "dicrc"
	CharDefFile  = "char.def"
	UnkDefFile   = "unk.def"
	MatrixFile   = "matrix.def"
	POSIDFile    = "pos-id.def"
)

// Version is the dictionary format version reported in Info.
const Version = 102

// InfoType tells system, user and unknown-word dictionaries apart.
type InfoType int

const (
	SystemDictionary  InfoType = 0
	UserDictionary    InfoType = 1
	UnknownDictionary InfoType = 2
)

func (t InfoType) String() string {
	switch t {
	case SystemDictionary:
		return "system"
	case UserDictionary:
		return "user"
	case UnknownDictionary:
		return "unknown"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Info describes one loaded dictionary.
type Info struct {
	Filename string
	Charset  string
	Size     uint32
	Type     InfoType
	LSize    uint32
	RSize    uint32
	Version  uint16
}

// LoadOptions selects the dictionary sources to load.
type LoadOptions struct {
	Dir      string
	UserDics []string
	// Charset overrides the dicrc config-charset.
	Charset string
}

// Dictionary is a loaded dictionary directory plus user lexicons.
type Dictionary struct {
	Dir     string
	Charset string
	Params  map[string]string
	Matrix  *Matrix
	Chars   *CharProperty
	Infos   []Info

	trie    *Trie
	groups  [][]Token
	unknown [][]Token
}

// Load reads a dictionary source directory.
func Load(opts LoadOptions) (*Dictionary, error) {
	if opts.Dir == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "no dictionary directory")
	}
	st, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "dictionary directory "+opts.Dir)
	}
	if !st.IsDir() {
		return nil, errors.InvalidInput(errors.PhaseLoad, opts.Dir+" is not a directory")
	}

	d := &Dictionary{Dir: opts.Dir, trie: NewTrie()}

	d.Params, err = LoadResourceFile(filepath.Join(opts.Dir, ResourceFile))
	if err != nil {
		return nil, errors.Load("read "+ResourceFile, err)
	}

	label := opts.Charset
	if label == "" {
		label = d.Params["config-charset"]
	}
	if label == "" {
		label = d.Params["dictionary-charset"]
	}
	if d.Charset, err = CanonicalCharset(label); err != nil {
		return nil, err
	}

	if d.Matrix, err = LoadMatrix(filepath.Join(opts.Dir, MatrixFile), d.Charset); err != nil {
		return nil, errors.Load("read "+MatrixFile, err)
	}
	if d.Chars, err = LoadCharProperty(filepath.Join(opts.Dir, CharDefFile), d.Charset); err != nil {
		return nil, errors.Load("read "+CharDefFile, err)
	}

	var pos *POSIDRules
	if posPath := filepath.Join(opts.Dir, POSIDFile); fileExists(posPath) {
		if pos, err = LoadPOSIDRules(posPath, d.Charset); err != nil {
			return nil, errors.Load("read "+POSIDFile, err)
		}
	}

	csvs, err := filepath.Glob(filepath.Join(opts.Dir, "*.csv"))
	if err != nil {
		return nil, errors.Load("list lexicon files", err)
	}
	sort.Strings(csvs)
	if len(csvs) == 0 {
		return nil, errors.NotFound(errors.PhaseLoad, "lexicon", filepath.Join(opts.Dir, "*.csv"))
	}
	size := 0
	for _, path := range csvs {
		lex, err := ReadLexicon(path, d.Charset, d.Matrix, pos)
		if err != nil {
			return nil, errors.Load("read lexicon", err)
		}
		d.add(lex)
		size += len(lex.Entries)
	}
	d.Infos = append(d.Infos, d.info(opts.Dir, SystemDictionary, size))

	for _, path := range opts.UserDics {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		lex, err := ReadLexicon(path, d.Charset, d.Matrix, pos)
		if err != nil {
			return nil, errors.Load("read user dictionary", err)
		}
		d.add(lex)
		d.Infos = append(d.Infos, d.info(path, UserDictionary, len(lex.Entries)))
	}

	unkPath := filepath.Join(opts.Dir, UnkDefFile)
	unk, err := ReadLexicon(unkPath, d.Charset, d.Matrix, pos)
	if err != nil {
		return nil, errors.Load("read "+UnkDefFile, err)
	}
	d.unknown = make([][]Token, len(d.Chars.Categories))
	for _, e := range unk.Entries {
		id, ok := d.Chars.CategoryID(e.Surface)
		if !ok {
			return nil, errors.InvalidData(errors.PhaseLoad, []string{unkPath},
				"unknown category "+e.Surface)
		}
		d.unknown[id] = append(d.unknown[id], e.Token)
	}
	for id, toks := range d.unknown {
		if len(toks) == 0 {
			return nil, errors.InvalidData(errors.PhaseLoad, []string{unkPath},
				"cannot find UNK category: "+d.Chars.Categories[id].Name)
		}
	}
	d.Infos = append(d.Infos, d.info(unkPath, UnknownDictionary, len(unk.Entries)))

	return d, nil
}

func (d *Dictionary) add(lex *Lexicon) {
	for _, e := range lex.Entries {
		key := []byte(e.Surface)
		idx, ok := d.trie.Get(key)
		if !ok {
			idx = int32(len(d.groups))
			d.groups = append(d.groups, nil)
			d.trie.Insert(key, idx)
		}
		d.groups[idx] = append(d.groups[idx], e.Token)
	}
}

func (d *Dictionary) info(filename string, t InfoType, size int) Info {
	return Info{
		Filename: filename,
		Charset:  d.Charset,
		Size:     uint32(size),
		Type:     t,
		LSize:    uint32(d.Matrix.LSize),
		RSize:    uint32(d.Matrix.RSize),
		Version:  Version,
	}
}

// CommonPrefixSearch calls fn with the tokens of every surface that is a
// prefix of text, shortest first. System tokens precede user tokens.
func (d *Dictionary) CommonPrefixSearch(text []byte, fn func(length int, tokens []Token)) {
	d.trie.CommonPrefixSearch(text, func(length int, v int32) {
		fn(length, d.groups[v])
	})
}

// ExactMatch returns the tokens whose surface is exactly key.
func (d *Dictionary) ExactMatch(key []byte) []Token {
	v, ok := d.trie.Get(key)
	if !ok {
		return nil
	}
	return d.groups[v]
}

// UnknownTokens returns the unk.def entries for a character category.
func (d *Dictionary) UnknownTokens(category uint8) []Token {
	if int(category) >= len(d.unknown) {
		return nil
	}
	return d.unknown[category]
}

// Surfaces returns the number of distinct surfaces.
func (d *Dictionary) Surfaces() int {
	return d.trie.Len()
}

// Param returns a dicrc value.
func (d *Dictionary) Param(key string) (string, bool) {
	v, ok := d.Params[key]
	return v, ok
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
