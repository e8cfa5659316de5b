package bridge

import (
	"time"

	"github.com/wippyai/mecab-bridge/mecab"
)

// ReleaseTagger releases a tagger.
func (b *Bridge) ReleaseTagger(h TaggerHandle) error {
	return b.release(TypeTagger, raw(h))
}

// TaggerParse analyzes the lattice sentence. Both handles are borrowed for
// the duration of the call. Node handles issued before the call become
// stale. On failure the message is also available from TaggerWhat and
// LatticeWhat.
func (b *Bridge) TaggerParse(t TaggerHandle, l LatticeHandle) error {
	te, err := b.tagger(t)
	if err != nil {
		return err
	}
	le, err := b.lattice(l)
	if err != nil {
		return err
	}
	done, err := b.borrow(raw(t), raw(l))
	if err != nil {
		return b.fail(err)
	}
	defer done()

	start := time.Now()
	err = te.tagger.Parse(le.lattice)
	b.syncNodes(le)

	ev := ParseEvent{
		Err:         err,
		Tagger:      t,
		Lattice:     l,
		RequestType: le.lattice.RequestType(),
		Bytes:       le.lattice.Size(),
		Duration:    time.Since(start),
	}
	for _, o := range b.parseObservers {
		o.OnParse(ev)
	}
	if err != nil {
		return b.fail(err)
	}
	return nil
}

// TaggerWhat returns the tagger's most recent failure message.
func (b *Bridge) TaggerWhat(h TaggerHandle) (string, error) {
	te, err := b.tagger(h)
	if err != nil {
		return "", err
	}
	return te.tagger.What(), nil
}

// TaggerVersion returns the engine version.
func (b *Bridge) TaggerVersion() string {
	return mecab.Version()
}
