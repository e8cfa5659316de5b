package mecab

import (
	"bytes"
	"strconv"

	"github.com/wippyai/mecab-bridge/errors"
)

// Built-in output format types.
const (
	FormatLattice = "lattice"
	FormatWakati  = "wakati"
	FormatNone    = "none"
	FormatDump    = "dump"
)

type writerFormats struct {
	node, unk, bos, eos, eon string
}

var builtinFormats = map[string]writerFormats{
	FormatLattice: {node: "%m\\t%H\\n", unk: "%m\\t%H\\n", eos: "EOS\\n"},
	FormatWakati:  {node: "%m ", unk: "%m ", eos: "\\n"},
	FormatNone:    {},
	FormatDump:    {},
}

// writer renders a result chain with one format per node status.
type writer struct {
	name string
	dump bool
	node *format
	unk  *format
	bos  *format
	eos  *format
	eon  *format
}

var defaultWriter = mustWriter(FormatLattice, builtinFormats[FormatLattice])

func mustWriter(name string, f writerFormats) *writer {
	w, err := compileWriter(name, f)
	if err != nil {
		panic(err)
	}
	return w
}

func compileWriter(name string, f writerFormats) (*writer, error) {
	w := &writer{name: name, dump: name == FormatDump}
	var err error
	for _, c := range []struct {
		dst **format
		src string
	}{
		{&w.node, f.node}, {&w.unk, f.unk}, {&w.bos, f.bos}, {&w.eos, f.eos}, {&w.eon, f.eon},
	} {
		if *c.dst, err = compileFormat(c.src); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// newWriter resolves the output formats of a model: a built-in type, a
// dicrc node-format-<type> family, then explicit -F/-U/-B/-E/-S options.
func newWriter(opts Options) (*writer, error) {
	name := opts.OutputFormatType
	if name == "" {
		name = FormatLattice
	}
	f, ok := builtinFormats[name]
	if !ok {
		node, found := opts.Param("node-format-" + name)
		if !found {
			return nil, errors.Unsupported(errors.PhaseOption, "unknown format type ["+name+"]")
		}
		f = writerFormats{node: node, unk: node, eos: "EOS\\n"}
		if v, ok := opts.Param("unk-format-" + name); ok {
			f.unk = v
		}
		if v, ok := opts.Param("bos-format-" + name); ok {
			f.bos = v
		}
		if v, ok := opts.Param("eos-format-" + name); ok {
			f.eos = v
		}
		if v, ok := opts.Param("eon-format-" + name); ok {
			f.eon = v
		}
	}
	if opts.NodeFormat != "" {
		f.node = opts.NodeFormat
		f.unk = opts.NodeFormat
		name = "user"
	}
	if opts.UnkFormat != "" {
		f.unk = opts.UnkFormat
	}
	if opts.BOSFormat != "" {
		f.bos = opts.BOSFormat
	}
	if opts.EOSFormat != "" {
		f.eos = opts.EOSFormat
	}
	if opts.EONFormat != "" {
		f.eon = opts.EONFormat
	}
	return compileWriter(name, f)
}

// write renders BOS, nodes and EOS.
func (w *writer) write(buf *bytes.Buffer, l *Lattice, nodes []*Node) error {
	if w.dump {
		writeDump(buf, l, nodes)
		return nil
	}
	if l.bos != nil {
		if err := w.bos.write(buf, l, l.bos); err != nil {
			return err
		}
	}
	for _, n := range nodes {
		if err := w.writeNode(buf, l, n); err != nil {
			return err
		}
	}
	if l.eos != nil {
		return w.eos.write(buf, l, l.eos)
	}
	return nil
}

func (w *writer) writeNode(buf *bytes.Buffer, l *Lattice, n *Node) error {
	if w.dump {
		writeDumpNode(buf, n)
		return nil
	}
	switch n.stat {
	case BOSNode:
		return w.bos.write(buf, l, n)
	case EOSNode:
		return w.eos.write(buf, l, n)
	case EONNode:
		return w.eon.write(buf, l, n)
	case UnknownNode:
		return w.unk.write(buf, l, n)
	default:
		return w.node.write(buf, l, n)
	}
}

// writeEON renders the end-of-N-best marker.
func (w *writer) writeEON(buf *bytes.Buffer, l *Lattice) error {
	if w.dump {
		return nil
	}
	eon := &Node{lattice: l, stat: EONNode, begin: len(l.sentence)}
	return w.eon.write(buf, l, eon)
}

func writeDump(buf *bytes.Buffer, l *Lattice, nodes []*Node) {
	if l.bos != nil {
		writeDumpNode(buf, l.bos)
	}
	for _, n := range nodes {
		writeDumpNode(buf, n)
	}
	if l.eos != nil {
		writeDumpNode(buf, l.eos)
	}
}

// writeDumpNode writes every field of n followed by its left paths as
// lnode:cost:prob.
func writeDumpNode(buf *bytes.Buffer, n *Node) {
	buf.WriteString(strconv.FormatUint(uint64(n.id), 10))
	buf.WriteByte(' ')
	switch n.stat {
	case BOSNode:
		buf.WriteString("BOS")
	case EOSNode:
		buf.WriteString("EOS")
	default:
		buf.Write(n.Surface())
	}
	best := 0
	if n.isbest {
		best = 1
	}
	for _, v := range []string{
		n.feature,
		strconv.Itoa(n.begin),
		strconv.Itoa(n.begin + n.length),
		strconv.Itoa(int(n.rattr)),
		strconv.Itoa(int(n.lattr)),
		strconv.Itoa(int(n.posid)),
		strconv.Itoa(int(n.charType)),
		strconv.Itoa(int(n.stat)),
		strconv.Itoa(best),
		formatFloat(n.alpha),
		formatFloat(n.beta),
		formatFloat(n.prob),
		strconv.FormatInt(n.cost, 10),
	} {
		buf.WriteByte(' ')
		buf.WriteString(v)
	}
	for p := n.lpath; p != nil; p = p.lnext {
		buf.WriteByte(' ')
		buf.WriteString(strconv.FormatUint(uint64(p.lnode.id), 10))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(p.cost))
		buf.WriteByte(':')
		buf.WriteString(formatFloat(p.prob))
	}
	buf.WriteByte('\n')
}
