// Package mecab is the analysis engine: Model, Tagger, Lattice and Node.
//
// A Model holds a loaded dictionary and options parsed from a MeCab
// command line (argv > rcfile > dicrc). A Tagger analyzes a Lattice: it
// looks up candidates at each reachable byte offset, connects them with
// matrix costs and keeps the cheapest predecessor per node (Viterbi).
// Depending on the lattice request type it then runs forward-backward for
// marginal probabilities, seeds an A* N-best enumerator, or links every
// candidate into the result chain.
//
// Lattice state moves Empty -> Ready (SetSentence) -> Parsed (Parse) ->
// Enumerating (Next). SetSentence and Clear return to Ready/Empty and drop
// constraints; every transition bumps Epoch, which invalidates nodes held
// from before.
//
// Results are rendered with the model's writer: "lattice" (default),
// "wakati", "none", "dump" or a dicrc node-format-<type> family, with
// -F/-U/-B/-E/-S overrides.
package mecab
