package mecab

import (
	"unicode/utf8"

	"github.com/wippyai/mecab-bridge/dict"
)

type nodeList struct {
	head *Node
	tail *Node
}

func (nl *nodeList) add(n *Node) {
	if nl.head == nil {
		nl.head = n
	} else {
		nl.tail.bnext = n
	}
	nl.tail = n
}

func (st *modelState) newNode(l *Lattice, t dict.Token, begin, length, skip int, stat NodeStatus, charType uint8) *Node {
	n := l.newNode()
	n.begin = begin
	n.length = length
	n.rlength = length + skip
	n.lattr = t.LAttr
	n.rattr = t.RAttr
	n.posid = t.PosID
	n.wcost = t.WCost
	n.feature = t.Feature
	n.stat = stat
	n.charType = charType
	return n
}

func (st *modelState) newBoundaryNode(l *Lattice, stat NodeStatus, pos int) *Node {
	n := l.newNode()
	n.begin = pos
	n.stat = stat
	n.feature = st.bosFeature
	return n
}

// lookup builds the candidate nodes starting at pos.
func (st *modelState) lookup(l *Lattice, pos, end int) *Node {
	text := l.sentence[:end]
	chars := st.dic.Chars
	skip := chars.SkipSpace(text[pos:])
	b := pos + skip
	if b >= end {
		return nil
	}

	r, mblen := utf8.DecodeRune(text[b:])
	info := chars.Info(r)
	constrained := l.HasConstraint()
	var nodes nodeList

	if feature, ok := l.FeatureConstraint(b); ok {
		e := l.nextTokenBoundary(b, end)
		for _, t := range st.dic.ExactMatch(text[b:e]) {
			if feature == "*" || dict.MatchFeature(t.Feature, feature) {
				nodes.add(st.newNode(l, t, b, e-b, skip, NormalNode, info.Default))
			}
		}
		if nodes.head == nil {
			unk := st.dic.UnknownTokens(info.Default)[0]
			n := st.newNode(l, unk, b, e-b, skip, UnknownNode, info.Default)
			if feature != "*" {
				n.feature = feature
			} else if st.opts.UnkFeature != "" {
				n.feature = st.opts.UnkFeature
			}
			nodes.add(n)
		}
		return nodes.head
	}

	st.dic.CommonPrefixSearch(text[b:], func(length int, toks []dict.Token) {
		if constrained && !l.validSpan(b, b+length) {
			return
		}
		for _, t := range toks {
			nodes.add(st.newNode(l, t, b, length, skip, NormalNode, info.Default))
		}
	})

	cat := chars.Category(info)
	if nodes.head != nil && !cat.Invoke {
		return nodes.head
	}

	addUnknown := func(length int, force bool) {
		if !force && constrained && !l.validSpan(b, b+length) {
			return
		}
		for _, t := range st.dic.UnknownTokens(info.Default) {
			n := st.newNode(l, t, b, length, skip, UnknownNode, info.Default)
			if st.opts.UnkFeature != "" {
				n.feature = st.opts.UnkFeature
			}
			nodes.add(n)
		}
	}

	groupLen := -1
	if cat.Group {
		e := b + mblen
		count := 1
		for e < end {
			r2, size := utf8.DecodeRune(text[e:])
			if !chars.Info(r2).IsKindOf(info) {
				break
			}
			e += size
			count++
		}
		groupLen = e - b
		if count <= st.opts.MaxGroupingSize {
			addUnknown(groupLen, false)
		}
	}

	e := b
	for i := 1; i <= cat.Length && e < end; i++ {
		r2, size := utf8.DecodeRune(text[e:])
		if i > 1 && !chars.Info(r2).IsKindOf(info) {
			break
		}
		e += size
		if e-b != groupLen {
			addUnknown(e-b, false)
		}
	}

	if nodes.head == nil {
		if constrained && l.BoundaryConstraint(b) == InsideToken {
			return nil
		}
		e := b + mblen
		for constrained && e < end && l.BoundaryConstraint(e) == InsideToken {
			_, size := utf8.DecodeRune(text[e:])
			e += size
		}
		addUnknown(e-b, true)
	}
	return nodes.head
}

// nextTokenBoundary returns the first TOKEN_BOUNDARY after b, or end.
func (l *Lattice) nextTokenBoundary(b, end int) int {
	for i := b + 1; i < end; i++ {
		if l.BoundaryConstraint(i) == TokenBoundary {
			return i
		}
	}
	return end
}
