package dict

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/mecab-bridge/errors"
)

const (
	// DefaultCategory receives every character char.def does not map.
	DefaultCategory = "DEFAULT"
	// SpaceCategory characters are skipped before each lookup.
	SpaceCategory = "SPACE"

	maxCategories = 32
	bmpSize       = 0x10000
)

// CharCategory is one character class of char.def.
type CharCategory struct {
	Name   string
	Invoke bool
	Group  bool
	Length int
}

// CharInfo classifies one character: the set of categories it belongs to
// and the category that drives unknown-word generation.
type CharInfo struct {
	Types   uint32
	Default uint8
}

// IsKindOf reports whether the two characters share a category.
func (c CharInfo) IsKindOf(o CharInfo) bool {
	return c.Types&o.Types != 0
}

type charRange struct {
	lo, hi rune
	info   CharInfo
}

// CharProperty maps runes to character categories.
type CharProperty struct {
	Categories []CharCategory
	index      map[string]int
	table      []CharInfo
	ranges     []charRange
	def        CharInfo
	space      int
}

// LoadCharProperty parses a char.def file.
func LoadCharProperty(path, charset string) (*CharProperty, error) {
	p := &CharProperty{index: make(map[string]int), space: -1}

	type mapping struct {
		fields []string
		line   int
	}
	var mappings []mapping

	err := eachLine(path, charset, func(line string, n int) error {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil
		}
		if strings.HasPrefix(fields[0], "0x") || strings.HasPrefix(fields[0], "0X") {
			mappings = append(mappings, mapping{fields: fields, line: n})
			return nil
		}
		return p.defineCategory(fields, path, n)
	})
	if err != nil {
		return nil, err
	}

	defID, ok := p.index[DefaultCategory]
	if !ok {
		return nil, errors.InvalidData(errors.PhaseLoad, []string{path}, "category DEFAULT is undefined")
	}
	p.def = CharInfo{Types: 1 << defID, Default: uint8(defID)}
	if id, ok := p.index[SpaceCategory]; ok {
		p.space = id
	}

	for _, m := range mappings {
		r, err := p.parseMapping(m.fields)
		if err != nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(path, strconv.Itoa(m.line)).Detail("%s", err.Error()).Build()
		}
		p.ranges = append(p.ranges, r)
	}

	p.table = make([]CharInfo, bmpSize)
	for i := range p.table {
		p.table[i] = p.def
	}
	for _, r := range p.ranges {
		for c := r.lo; c <= r.hi && c < bmpSize; c++ {
			p.table[c] = r.info
		}
	}
	return p, nil
}

func (p *CharProperty) defineCategory(fields []string, path string, n int) error {
	loc := []string{path, strconv.Itoa(n)}
	if len(fields) < 4 {
		return errors.InvalidData(errors.PhaseLoad, loc, "category needs NAME INVOKE GROUP LENGTH")
	}
	name := fields[0]
	if _, dup := p.index[name]; dup {
		return errors.InvalidData(errors.PhaseLoad, loc, "category "+name+" is already defined")
	}
	if len(p.Categories) >= maxCategories {
		return errors.InvalidData(errors.PhaseLoad, loc, "too many categories")
	}
	invoke, err1 := strconv.Atoi(fields[1])
	group, err2 := strconv.Atoi(fields[2])
	length, err3 := strconv.Atoi(fields[3])
	if err1 != nil || err2 != nil || err3 != nil || length < 0 {
		return errors.InvalidData(errors.PhaseLoad, loc, "invalid category flags for "+name)
	}
	p.index[name] = len(p.Categories)
	p.Categories = append(p.Categories, CharCategory{
		Name:   name,
		Invoke: invoke != 0,
		Group:  group != 0,
		Length: length,
	})
	return nil
}

func (p *CharProperty) parseMapping(fields []string) (charRange, error) {
	if len(fields) < 2 {
		return charRange{}, fmt.Errorf("range %s has no category", fields[0])
	}
	lo, hi, err := parseCodeRange(fields[0])
	if err != nil {
		return charRange{}, err
	}
	var info CharInfo
	for i, name := range fields[1:] {
		id, ok := p.index[name]
		if !ok {
			return charRange{}, fmt.Errorf("category %s is undefined", name)
		}
		if i == 0 {
			info.Default = uint8(id)
		}
		info.Types |= 1 << id
	}
	return charRange{lo: lo, hi: hi, info: info}, nil
}

func parseCodeRange(s string) (rune, rune, error) {
	loS, hiS, isRange := strings.Cut(s, "..")
	lo, err := strconv.ParseUint(loS, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad code point %s", loS)
	}
	hi := lo
	if isRange {
		hi, err = strconv.ParseUint(hiS, 0, 32)
		if err != nil {
			return 0, 0, fmt.Errorf("bad code point %s", hiS)
		}
	}
	if hi < lo || hi > utf8.MaxRune {
		return 0, 0, fmt.Errorf("bad range %s", s)
	}
	return rune(lo), rune(hi), nil
}

// Info classifies r. Later char.def ranges take precedence.
func (p *CharProperty) Info(r rune) CharInfo {
	if r >= 0 && r < bmpSize {
		return p.table[r]
	}
	for i := len(p.ranges) - 1; i >= 0; i-- {
		if rg := p.ranges[i]; r >= rg.lo && r <= rg.hi {
			return rg.info
		}
	}
	return p.def
}

// Category returns the category that drives unknown words for c.
func (p *CharProperty) Category(c CharInfo) CharCategory {
	return p.Categories[c.Default]
}

// CategoryID returns the index of a named category.
func (p *CharProperty) CategoryID(name string) (int, bool) {
	id, ok := p.index[name]
	return id, ok
}

// IsSpace reports whether c belongs to the SPACE category.
func (p *CharProperty) IsSpace(c CharInfo) bool {
	return p.space >= 0 && c.Types&(1<<p.space) != 0
}

// SkipSpace returns the number of leading bytes of text that are SPACE
// characters.
func (p *CharProperty) SkipSpace(text []byte) int {
	if p.space < 0 {
		return 0
	}
	n := 0
	for n < len(text) {
		r, size := utf8.DecodeRune(text[n:])
		if !p.IsSpace(p.Info(r)) {
			break
		}
		n += size
	}
	return n
}
