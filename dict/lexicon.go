package dict

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/mecab-bridge/errors"
)

// Token is one dictionary entry without its surface.
type Token struct {
	Feature string
	LAttr   uint16
	RAttr   uint16
	PosID   uint16
	WCost   int16
}

// Entry is one parsed lexicon row.
type Entry struct {
	Surface string
	Token
}

// Lexicon is the parsed content of one or more lexicon CSV files.
type Lexicon struct {
	Filename string
	Entries  []Entry
}

// ReadLexicon parses "surface,left-id,right-id,cost,feature..." rows.
// Context ids are checked against the matrix dimensions.
func ReadLexicon(path, charset string, m *Matrix, pos *POSIDRules) (*Lexicon, error) {
	lex := &Lexicon{Filename: path}
	err := eachLine(path, charset, func(line string, n int) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		e, err := parseEntry(line, m)
		if err != nil {
			return errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(path, strconv.Itoa(n)).Detail("%s", err.Error()).Build()
		}
		if pos != nil {
			e.PosID = pos.ID(e.Feature)
		}
		lex.Entries = append(lex.Entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lex, nil
}

type rowError string

func (e rowError) Error() string { return string(e) }

func parseEntry(line string, m *Matrix) (Entry, error) {
	head, feature, ok := splitHead(line, 4)
	if !ok {
		return Entry{}, rowError("format error: " + line)
	}
	if head[0] == "" {
		return Entry{}, rowError("empty surface")
	}
	lid, err1 := strconv.Atoi(head[1])
	rid, err2 := strconv.Atoi(head[2])
	cost, err3 := strconv.Atoi(head[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return Entry{}, rowError("non-numeric id or cost: " + line)
	}
	if cost < math.MinInt16 || cost > math.MaxInt16 {
		return Entry{}, rowError("cost out of range: " + head[3])
	}
	if m != nil {
		if lid < 0 || lid >= m.RSize {
			return Entry{}, rowError("left-id out of range: " + head[1])
		}
		if rid < 0 || rid >= m.LSize {
			return Entry{}, rowError("right-id out of range: " + head[2])
		}
	}
	return Entry{
		Surface: head[0],
		Token: Token{
			Feature: feature,
			LAttr:   uint16(lid),
			RAttr:   uint16(rid),
			WCost:   int16(cost),
		},
	}, nil
}

// POSIDRules assigns part-of-speech ids from pos-id.def: each line is a
// feature pattern and an id; the first matching pattern wins.
type POSIDRules struct {
	rules []posRule
}

type posRule struct {
	pattern string
	id      uint16
}

// LoadPOSIDRules parses a pos-id.def file.
func LoadPOSIDRules(path, charset string) (*POSIDRules, error) {
	r := &POSIDRules{}
	err := eachLine(path, charset, func(line string, n int) error {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil
		}
		if len(fields) != 2 {
			return errors.InvalidData(errors.PhaseLoad, []string{path, strconv.Itoa(n)}, "rule must be \"pattern id\"")
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil || id < 0 || id > math.MaxUint16 {
			return errors.InvalidData(errors.PhaseLoad, []string{path, strconv.Itoa(n)}, "invalid pos id")
		}
		r.rules = append(r.rules, posRule{pattern: fields[0], id: uint16(id)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ID returns the pos id of feature, or 0 when no rule matches.
func (r *POSIDRules) ID(feature string) uint16 {
	for _, rule := range r.rules {
		if MatchFeature(feature, rule.pattern) {
			return rule.id
		}
	}
	return 0
}
