// Package mecabbridge exposes a MeCab-style morphological analyzer as a
// flat set of operations over opaque handles, for callers on the far side
// of a language boundary.
//
// # Architecture Overview
//
//	mecabbridge/         Root package with Memory, Allocator and the bounded
//	│                    copy convention for caller-owned buffers
//	├── bridge/          Handle-based flat API and per-bridge error channel
//	├── mecab/           Model, Tagger, Lattice, Node: the analysis engine
//	├── dict/            Dictionary source loader (dicrc, char.def, unk.def,
//	│                    matrix.def, lexicon CSV)
//	├── resource/        Generation-checked handle table with ownership
//	├── errors/          Structured error types
//	├── hostmod/         wazero host module exporting the bridge to WASM
//	├── metrics/         Prometheus collectors for handles and parses
//	├── cache/           Analysis result cache (redis or memory)
//	├── config/          YAML service configuration
//	├── server/          HTTP JSON API
//	└── mcpserver/       MCP tool server
//
// # Quick Start
//
//	b := bridge.New()
//	defer b.Close()
//
//	m, err := b.NewModelFromString("-d /path/to/dic")
//	if err != nil {
//	    log.Fatal(b.LastError())
//	}
//	t, _ := b.NewTagger(m)
//	l, _ := b.NewLattice(m)
//
//	b.LatticeSetSentence(l, []byte("東京都"))
//	if err := b.TaggerParse(t, l); err == nil {
//	    out, _ := b.LatticeToString(l)
//	    fmt.Print(string(out))
//	}
//
// # Strings
//
// Engine-owned strings are views valid until the next mutating call on the
// owning handle. Caller-buffer variants never write past the given
// capacity and write nothing when the result does not fit; see
// CopyBounded and WriteBounded.
package mecabbridge
