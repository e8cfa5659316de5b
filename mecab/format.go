package mecab

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/mecab-bridge/errors"
)

type formatOp func(buf *bytes.Buffer, l *Lattice, n *Node) error

// format is a compiled node format string.
//
//	%%   literal %              %S  sentence        %L  sentence length
//	%m   surface                %M  surface with leading spaces
//	%h   part-of-speech id      %c  word cost       %H  feature
//	%t   character type         %s  node status     %P  marginal probability
//	%f[i,j]   feature fields joined by ","
//	%F<c>[i,j] feature fields joined by c
//	%pi id  %pS leading spaces  %ps begin  %pe end  %pC connection cost
//	%pw word cost  %pc path cost  %pn connection+word cost  %pb "*" if best
//	%pP prob  %pA alpha  %pB beta  %pl length  %pL length with spaces
//	%phl left context id  %phr right context id
//
// Escapes: \t \n \r \s (space) \\ \0.
type format struct {
	src string
	ops []formatOp
}

func compileFormat(src string) (*format, error) {
	f := &format{src: src}
	var lit strings.Builder
	flush := func() {
		if lit.Len() == 0 {
			return
		}
		s := lit.String()
		lit.Reset()
		f.ops = append(f.ops, func(buf *bytes.Buffer, _ *Lattice, _ *Node) error {
			buf.WriteString(s)
			return nil
		})
	}
	op := func(o formatOp) {
		flush()
		f.ops = append(f.ops, o)
	}
	bad := func(detail string) error {
		return errors.New(errors.PhaseFormat, errors.KindInvalidInput).
			Value(src).Detail("%s in format %q", detail, src).Build()
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\\' {
			i++
			if i >= len(src) {
				lit.WriteByte('\\')
				break
			}
			lit.WriteByte(unescape(src[i]))
			continue
		}
		if c != '%' {
			lit.WriteByte(c)
			continue
		}
		i++
		if i >= len(src) {
			return nil, bad("dangling %")
		}
		switch src[i] {
		case '%':
			lit.WriteByte('%')
		case 'S':
			op(func(buf *bytes.Buffer, l *Lattice, _ *Node) error {
				buf.Write(l.sentence)
				return nil
			})
		case 'L':
			op(intOp(func(l *Lattice, _ *Node) int64 { return int64(len(l.sentence)) }))
		case 'm':
			op(func(buf *bytes.Buffer, _ *Lattice, n *Node) error {
				buf.Write(n.Surface())
				return nil
			})
		case 'M':
			op(func(buf *bytes.Buffer, _ *Lattice, n *Node) error {
				buf.Write(n.SpacedSurface())
				return nil
			})
		case 'h':
			op(intOp(func(_ *Lattice, n *Node) int64 { return int64(n.posid) }))
		case 'c':
			op(intOp(func(_ *Lattice, n *Node) int64 { return int64(n.wcost) }))
		case 'H':
			op(func(buf *bytes.Buffer, _ *Lattice, n *Node) error {
				buf.WriteString(n.feature)
				return nil
			})
		case 't':
			op(intOp(func(_ *Lattice, n *Node) int64 { return int64(n.charType) }))
		case 's':
			op(intOp(func(_ *Lattice, n *Node) int64 { return int64(n.stat) }))
		case 'P':
			op(floatOp(func(n *Node) float64 { return n.prob }))
		case 'f', 'F':
			sep := ","
			if src[i] == 'F' {
				i++
				if i >= len(src) {
					return nil, bad("%F needs a separator")
				}
				if src[i] == '\\' && i+1 < len(src) {
					i++
					sep = string(unescape(src[i]))
				} else {
					sep = string(src[i])
				}
			}
			idx, next, err := parseIndexList(src, i+1)
			if err != nil {
				return nil, bad(err.Error())
			}
			i = next
			op(fieldsOp(idx, sep))
		case 'p':
			i++
			if i >= len(src) {
				return nil, bad("dangling %p")
			}
			o, next, err := compileNodeOp(src, i)
			if err != nil {
				return nil, bad(err.Error())
			}
			i = next
			op(o)
		default:
			return nil, bad(fmt.Sprintf("unknown meta char %%%c", src[i]))
		}
	}
	flush()
	return f, nil
}

// compileNodeOp compiles the %p directive whose letter is at src[i].
func compileNodeOp(src string, i int) (formatOp, int, error) {
	switch src[i] {
	case 'i':
		return intOp(func(_ *Lattice, n *Node) int64 { return int64(n.id) }), i, nil
	case 'S':
		return func(buf *bytes.Buffer, l *Lattice, n *Node) error {
			sp := n.SpacedSurface()
			buf.Write(sp[:len(sp)-len(n.Surface())])
			return nil
		}, i, nil
	case 's':
		return intOp(func(_ *Lattice, n *Node) int64 { return int64(n.begin) }), i, nil
	case 'e':
		return intOp(func(_ *Lattice, n *Node) int64 { return int64(n.begin + n.length) }), i, nil
	case 'C':
		return intOp(func(_ *Lattice, n *Node) int64 { return n.cost - prevCost(n) - int64(n.wcost) }), i, nil
	case 'w':
		return intOp(func(_ *Lattice, n *Node) int64 { return int64(n.wcost) }), i, nil
	case 'c':
		return intOp(func(_ *Lattice, n *Node) int64 { return n.cost }), i, nil
	case 'n':
		return intOp(func(_ *Lattice, n *Node) int64 { return n.cost - prevCost(n) }), i, nil
	case 'b':
		return func(buf *bytes.Buffer, _ *Lattice, n *Node) error {
			if n.isbest {
				buf.WriteByte('*')
			} else {
				buf.WriteByte(' ')
			}
			return nil
		}, i, nil
	case 'P':
		return floatOp(func(n *Node) float64 { return n.prob }), i, nil
	case 'A':
		return floatOp(func(n *Node) float64 { return n.alpha }), i, nil
	case 'B':
		return floatOp(func(n *Node) float64 { return n.beta }), i, nil
	case 'l':
		return intOp(func(_ *Lattice, n *Node) int64 { return int64(n.length) }), i, nil
	case 'L':
		return intOp(func(_ *Lattice, n *Node) int64 { return int64(n.rlength) }), i, nil
	case 'h':
		if i+1 < len(src) {
			switch src[i+1] {
			case 'l':
				return intOp(func(_ *Lattice, n *Node) int64 { return int64(n.lattr) }), i + 1, nil
			case 'r':
				return intOp(func(_ *Lattice, n *Node) int64 { return int64(n.rattr) }), i + 1, nil
			}
		}
		return nil, i, fmt.Errorf("%%ph needs l or r")
	default:
		return nil, i, fmt.Errorf("unknown meta char %%p%c", src[i])
	}
}

func prevCost(n *Node) int64 {
	if n.prev == nil {
		return 0
	}
	return n.prev.cost
}

// parseIndexList parses "[i,j,...]" starting at src[i] and returns the
// index of the closing bracket.
func parseIndexList(src string, i int) ([]int, int, error) {
	if i >= len(src) || src[i] != '[' {
		return nil, i, fmt.Errorf("field list must start with [")
	}
	end := strings.IndexByte(src[i:], ']')
	if end < 0 {
		return nil, i, fmt.Errorf("unterminated field list")
	}
	end += i
	var idx []int
	for _, part := range strings.Split(src[i+1:end], ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return nil, i, fmt.Errorf("bad field index %q", part)
		}
		idx = append(idx, v)
	}
	return idx, end, nil
}

func fieldsOp(idx []int, sep string) formatOp {
	return func(buf *bytes.Buffer, _ *Lattice, n *Node) error {
		fields := n.Features()
		wrote := false
		for _, i := range idx {
			if i >= len(fields) {
				return errors.OutOfRange(errors.PhaseFormat, "feature index", i, len(fields))
			}
			if len(idx) > 1 && fields[i] == "*" {
				continue
			}
			if wrote {
				buf.WriteString(sep)
			}
			buf.WriteString(fields[i])
			wrote = true
		}
		return nil
	}
}

func intOp(get func(l *Lattice, n *Node) int64) formatOp {
	return func(buf *bytes.Buffer, l *Lattice, n *Node) error {
		buf.WriteString(strconv.FormatInt(get(l, n), 10))
		return nil
	}
}

func floatOp(get func(n *Node) float64) formatOp {
	return func(buf *bytes.Buffer, _ *Lattice, n *Node) error {
		buf.WriteString(formatFloat(get(n)))
		return nil
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func unescape(c byte) byte {
	switch c {
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 's':
		return ' '
	case '0':
		return 0
	default:
		return c
	}
}

func (f *format) write(buf *bytes.Buffer, l *Lattice, n *Node) error {
	for _, o := range f.ops {
		if err := o(buf, l, n); err != nil {
			return err
		}
	}
	return nil
}
