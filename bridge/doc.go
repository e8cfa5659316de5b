// Package bridge exposes the analysis engine as a flat set of operations
// over typed handles.
//
// A Bridge owns one resource table. Models are roots; taggers and
// model-derived lattices are owned by their model, so releasing a model
// releases them too. Node and DictionaryInfo handles are views: they are
// released with their lattice or model and can never be released on
// their own.
//
//	b := bridge.New()
//	m, err := b.NewModel([]string{"mecab", "-d", dicdir})
//	t, _ := b.NewTagger(m)
//	l, _ := b.NewLattice(m)
//	b.LatticeSetSentence(l, []byte("東京都"))
//	if err := b.TaggerParse(t, l); err != nil {
//		what, _ := b.TaggerWhat(t)
//		...
//	}
//	for n, _ := b.LatticeBOSNode(l); n != 0; n, _ = b.NodeNext(n) {
//		surface, _ := b.NodeSurface(n)
//		...
//	}
//
// # Request types
//
// Request type setters affect the next parse only. Next and
// LatticeNBestString work when the current analysis was made with NBEST.
//
// # Model swap
//
// ModelSwap(h, other) moves other's dictionaries into h. The other model
// is consumed either way: its DictionaryInfo handles are released even
// when the swap fails, and other itself must still be released by the
// caller. On success the DictionaryInfo handles of h are released too.
//
// # Node epochs
//
// Each lattice carries an epoch that SetSentence, Clear, Parse and a
// successful Next advance. Node handles are issued once per node and
// epoch. The mutating call releases them, and any later use reports
// stale_handle.
//
// # Errors
//
// Every failing call returns a *errors.Error and records it in the
// bridge's error channel (LastError). Parse failures are additionally
// readable through TaggerWhat and LatticeWhat. Handle misuse (released,
// wrong kind, outdated node) is reported, never undefined.
package bridge
