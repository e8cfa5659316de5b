// Package dict loads MeCab dictionary source directories.
//
// A directory holds:
//
//	dicrc        key = value settings (charset, output formats)
//	char.def     character categories and code point ranges
//	unk.def      unknown-word entries per category
//	matrix.def   connection costs between context ids
//	pos-id.def   optional feature pattern -> part-of-speech id rules
//	*.csv        lexicon rows: surface,left-id,right-id,cost,feature...
//
// Files are decoded from the dictionary charset (dicrc config-charset) to
// UTF-8 on load; the analyzer works on UTF-8 text only. User dictionaries
// are extra lexicon CSV files sharing the system matrix.
package dict
