package main

// #include <stddef.h>
import "C"

import (
	"unsafe"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/mecab"
)

func cstr(p unsafe.Pointer) *C.char { return (*C.char)(p) }

func goBytes(p *C.char, n C.size_t) []byte {
	if p == nil {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(n))
}

// global

//export mecab_version
func mecab_version() *C.char {
	return cstr(lib.keep(0, "version", []byte(mecab.Version())))
}

//export mecab_get_global_error
func mecab_get_global_error() *C.char {
	return cstr(lib.keep(0, "error", []byte(lib.b.LastError())))
}

//export mecab_clear_global_error
func mecab_clear_global_error() {
	lib.b.ClearError()
}

//export mecab_release
func mecab_release(h C.size_t) C.int {
	return C.int(lib.status("mecab_release", func() error { return lib.b.Release(uint32(h)) }))
}

//export mecab_handle_count
func mecab_handle_count() C.size_t {
	return C.size_t(lib.b.Len())
}

// model

//export mecab_model_new
func mecab_model_new(argc C.int, argv **C.char) C.size_t {
	return C.size_t(guard(lib, "mecab_model_new", bridge.ModelHandle(0), func() (bridge.ModelHandle, error) {
		var args []string
		if argv != nil && argc > 0 {
			for _, a := range unsafe.Slice(argv, int(argc)) {
				args = append(args, C.GoString(a))
			}
		}
		return lib.b.NewModel(args)
	}))
}

//export mecab_model_new2
func mecab_model_new2(arg *C.char) C.size_t {
	return C.size_t(guard(lib, "mecab_model_new2", bridge.ModelHandle(0), func() (bridge.ModelHandle, error) {
		return lib.b.NewModelFromString(C.GoString(arg))
	}))
}

//export mecab_model_destroy
func mecab_model_destroy(m C.size_t) C.int {
	return C.int(lib.status("mecab_model_destroy", func() error { return lib.b.ReleaseModel(bridge.ModelHandle(m)) }))
}

//export mecab_model_dictionary_info
func mecab_model_dictionary_info(m C.size_t) C.size_t {
	return C.size_t(guard(lib, "mecab_model_dictionary_info", bridge.DictionaryInfoHandle(0), func() (bridge.DictionaryInfoHandle, error) {
		return lib.b.ModelDictionaryInfo(bridge.ModelHandle(m))
	}))
}

//export mecab_model_transition_cost
func mecab_model_transition_cost(m C.size_t, rattr, lattr C.ushort) C.int {
	return C.int(guard(lib, "mecab_model_transition_cost", 0, func() (int, error) {
		return lib.b.ModelTransitionCost(bridge.ModelHandle(m), uint16(rattr), uint16(lattr))
	}))
}

//export mecab_model_swap
func mecab_model_swap(m, other C.size_t) C.int {
	return C.int(lib.status("mecab_model_swap", func() error {
		return lib.b.ModelSwap(bridge.ModelHandle(m), bridge.ModelHandle(other))
	}))
}

//export mecab_model_lookup
func mecab_model_lookup(m C.size_t, begin, end C.size_t, l C.size_t) C.size_t {
	return C.size_t(guard(lib, "mecab_model_lookup", bridge.NodeHandle(0), func() (bridge.NodeHandle, error) {
		return lib.b.ModelLookup(bridge.ModelHandle(m), int(begin), int(end), bridge.LatticeHandle(l))
	}))
}

//export mecab_model_new_tagger
func mecab_model_new_tagger(m C.size_t) C.size_t {
	return C.size_t(guard(lib, "mecab_model_new_tagger", bridge.TaggerHandle(0), func() (bridge.TaggerHandle, error) {
		return lib.b.NewTagger(bridge.ModelHandle(m))
	}))
}

//export mecab_model_new_lattice
func mecab_model_new_lattice(m C.size_t) C.size_t {
	return C.size_t(guard(lib, "mecab_model_new_lattice", bridge.LatticeHandle(0), func() (bridge.LatticeHandle, error) {
		return lib.b.NewLattice(bridge.ModelHandle(m))
	}))
}

// tagger

//export mecab_destroy
func mecab_destroy(t C.size_t) C.int {
	return C.int(lib.status("mecab_destroy", func() error { return lib.b.ReleaseTagger(bridge.TaggerHandle(t)) }))
}

//export mecab_parse_lattice
func mecab_parse_lattice(t, l C.size_t) C.int {
	return C.int(lib.status("mecab_parse_lattice", func() error {
		return lib.b.TaggerParse(bridge.TaggerHandle(t), bridge.LatticeHandle(l))
	}))
}

// mecab_strerror returns the tagger's last parse message, or the global
// error for the null tagger.
//
//export mecab_strerror
func mecab_strerror(t C.size_t) *C.char {
	if t == 0 {
		return mecab_get_global_error()
	}
	return cstr(lib.text(uint32(t), "what", func() ([]byte, error) {
		what, err := lib.b.TaggerWhat(bridge.TaggerHandle(t))
		return []byte(what), err
	}))
}

// lattice

//export mecab_lattice_new
func mecab_lattice_new() C.size_t {
	return C.size_t(guard(lib, "mecab_lattice_new", bridge.LatticeHandle(0), lib.b.NewStandaloneLattice))
}

//export mecab_lattice_destroy
func mecab_lattice_destroy(l C.size_t) C.int {
	return C.int(lib.status("mecab_lattice_destroy", func() error { return lib.b.ReleaseLattice(bridge.LatticeHandle(l)) }))
}

//export mecab_lattice_clear
func mecab_lattice_clear(l C.size_t) C.int {
	return C.int(lib.status("mecab_lattice_clear", func() error { return lib.b.LatticeClear(bridge.LatticeHandle(l)) }))
}

//export mecab_lattice_is_available
func mecab_lattice_is_available(l C.size_t) C.int {
	return C.int(guard(lib, "mecab_lattice_is_available", 0, func() (int, error) {
		ok, err := lib.b.LatticeIsAvailable(bridge.LatticeHandle(l))
		return boolInt(ok), err
	}))
}

//export mecab_lattice_get_state
func mecab_lattice_get_state(l C.size_t) C.int {
	return C.int(guard(lib, "mecab_lattice_get_state", -1, func() (int, error) {
		st, err := lib.b.LatticeState(bridge.LatticeHandle(l))
		return int(st), err
	}))
}

//export mecab_lattice_set_sentence
func mecab_lattice_set_sentence(l C.size_t, s *C.char) C.int {
	return C.int(lib.status("mecab_lattice_set_sentence", func() error {
		return lib.b.LatticeSetSentence(bridge.LatticeHandle(l), []byte(C.GoString(s)))
	}))
}

//export mecab_lattice_set_sentence2
func mecab_lattice_set_sentence2(l C.size_t, s *C.char, n C.size_t) C.int {
	return C.int(lib.status("mecab_lattice_set_sentence2", func() error {
		return lib.b.LatticeSetSentence(bridge.LatticeHandle(l), goBytes(s, n))
	}))
}

//export mecab_lattice_get_sentence
func mecab_lattice_get_sentence(l C.size_t) *C.char {
	return cstr(lib.text(uint32(l), "sentence", func() ([]byte, error) {
		return lib.b.LatticeSentence(bridge.LatticeHandle(l))
	}))
}

//export mecab_lattice_get_size
func mecab_lattice_get_size(l C.size_t) C.size_t {
	return C.size_t(guard(lib, "mecab_lattice_get_size", 0, func() (int, error) {
		return lib.b.LatticeSize(bridge.LatticeHandle(l))
	}))
}

//export mecab_lattice_tostr
func mecab_lattice_tostr(l C.size_t) *C.char {
	return cstr(lib.text(uint32(l), "tostr", func() ([]byte, error) {
		return lib.b.LatticeToString(bridge.LatticeHandle(l))
	}))
}

//export mecab_lattice_tostr2
func mecab_lattice_tostr2(l C.size_t, buf *C.char, size C.size_t) *C.char {
	ok := lib.fill("mecab_lattice_tostr2", unsafe.Pointer(buf), int(size), func(dst []byte) (int, error) {
		return lib.b.LatticeToBuffer(bridge.LatticeHandle(l), dst)
	})
	if !ok {
		return nil
	}
	return buf
}

//export mecab_lattice_nbest_tostr
func mecab_lattice_nbest_tostr(l C.size_t, n C.size_t) *C.char {
	return cstr(lib.text(uint32(l), "nbest", func() ([]byte, error) {
		return lib.b.LatticeNBestString(bridge.LatticeHandle(l), int(n))
	}))
}

//export mecab_lattice_nbest_tostr2
func mecab_lattice_nbest_tostr2(l C.size_t, n C.size_t, buf *C.char, size C.size_t) *C.char {
	ok := lib.fill("mecab_lattice_nbest_tostr2", unsafe.Pointer(buf), int(size), func(dst []byte) (int, error) {
		return lib.b.LatticeNBestBuffer(bridge.LatticeHandle(l), int(n), dst)
	})
	if !ok {
		return nil
	}
	return buf
}

//export mecab_lattice_node_tostr
func mecab_lattice_node_tostr(l, node C.size_t) *C.char {
	return cstr(lib.text(uint32(node), "tostr", func() ([]byte, error) {
		return lib.b.LatticeNodeString(bridge.LatticeHandle(l), bridge.NodeHandle(node))
	}))
}

//export mecab_lattice_node_tostr2
func mecab_lattice_node_tostr2(l, node C.size_t, buf *C.char, size C.size_t) *C.char {
	ok := lib.fill("mecab_lattice_node_tostr2", unsafe.Pointer(buf), int(size), func(dst []byte) (int, error) {
		return lib.b.LatticeNodeBuffer(bridge.LatticeHandle(l), bridge.NodeHandle(node), dst)
	})
	if !ok {
		return nil
	}
	return buf
}

//export mecab_lattice_get_bos_node
func mecab_lattice_get_bos_node(l C.size_t) C.size_t {
	return C.size_t(guard(lib, "mecab_lattice_get_bos_node", bridge.NodeHandle(0), func() (bridge.NodeHandle, error) {
		return lib.b.LatticeBOSNode(bridge.LatticeHandle(l))
	}))
}

//export mecab_lattice_get_eos_node
func mecab_lattice_get_eos_node(l C.size_t) C.size_t {
	return C.size_t(guard(lib, "mecab_lattice_get_eos_node", bridge.NodeHandle(0), func() (bridge.NodeHandle, error) {
		return lib.b.LatticeEOSNode(bridge.LatticeHandle(l))
	}))
}

//export mecab_lattice_new_node
func mecab_lattice_new_node(l C.size_t) C.size_t {
	return C.size_t(guard(lib, "mecab_lattice_new_node", bridge.NodeHandle(0), func() (bridge.NodeHandle, error) {
		return lib.b.LatticeNewNode(bridge.LatticeHandle(l))
	}))
}

//export mecab_lattice_get_request_type
func mecab_lattice_get_request_type(l C.size_t) C.int {
	return C.int(guard(lib, "mecab_lattice_get_request_type", mecab.RequestType(0), func() (mecab.RequestType, error) {
		return lib.b.LatticeRequestType(bridge.LatticeHandle(l))
	}))
}

//export mecab_lattice_set_request_type
func mecab_lattice_set_request_type(l C.size_t, r C.int) C.int {
	return C.int(lib.status("mecab_lattice_set_request_type", func() error {
		return lib.b.LatticeSetRequestType(bridge.LatticeHandle(l), mecab.RequestType(r))
	}))
}

//export mecab_lattice_add_request_type
func mecab_lattice_add_request_type(l C.size_t, r C.int) C.int {
	return C.int(lib.status("mecab_lattice_add_request_type", func() error {
		return lib.b.LatticeAddRequestType(bridge.LatticeHandle(l), mecab.RequestType(r))
	}))
}

//export mecab_lattice_remove_request_type
func mecab_lattice_remove_request_type(l C.size_t, r C.int) C.int {
	return C.int(lib.status("mecab_lattice_remove_request_type", func() error {
		return lib.b.LatticeRemoveRequestType(bridge.LatticeHandle(l), mecab.RequestType(r))
	}))
}

//export mecab_lattice_next
func mecab_lattice_next(l C.size_t) C.int {
	return C.int(guard(lib, "mecab_lattice_next", 0, func() (int, error) {
		ok, err := lib.b.LatticeNext(bridge.LatticeHandle(l))
		return boolInt(ok), err
	}))
}

//export mecab_lattice_get_z
func mecab_lattice_get_z(l C.size_t) C.double {
	return C.double(guard(lib, "mecab_lattice_get_z", 0.0, func() (float64, error) {
		return lib.b.LatticeZ(bridge.LatticeHandle(l))
	}))
}

//export mecab_lattice_set_z
func mecab_lattice_set_z(l C.size_t, z C.double) C.int {
	return C.int(lib.status("mecab_lattice_set_z", func() error {
		return lib.b.LatticeSetZ(bridge.LatticeHandle(l), float64(z))
	}))
}

//export mecab_lattice_get_theta
func mecab_lattice_get_theta(l C.size_t) C.double {
	return C.double(guard(lib, "mecab_lattice_get_theta", 0.0, func() (float64, error) {
		return lib.b.LatticeTheta(bridge.LatticeHandle(l))
	}))
}

//export mecab_lattice_set_theta
func mecab_lattice_set_theta(l C.size_t, theta C.double) C.int {
	return C.int(lib.status("mecab_lattice_set_theta", func() error {
		return lib.b.LatticeSetTheta(bridge.LatticeHandle(l), float64(theta))
	}))
}

//export mecab_lattice_has_constraint
func mecab_lattice_has_constraint(l C.size_t) C.int {
	return C.int(guard(lib, "mecab_lattice_has_constraint", 0, func() (int, error) {
		ok, err := lib.b.LatticeHasConstraint(bridge.LatticeHandle(l))
		return boolInt(ok), err
	}))
}

//export mecab_lattice_get_boundary_constraint
func mecab_lattice_get_boundary_constraint(l C.size_t, pos C.size_t) C.int {
	return C.int(guard(lib, "mecab_lattice_get_boundary_constraint", -1, func() (int, error) {
		t, err := lib.b.LatticeBoundaryConstraint(bridge.LatticeHandle(l), int(pos))
		return int(t), err
	}))
}

//export mecab_lattice_set_boundary_constraint
func mecab_lattice_set_boundary_constraint(l C.size_t, pos C.size_t, t C.int) C.int {
	return C.int(lib.status("mecab_lattice_set_boundary_constraint", func() error {
		return lib.b.LatticeSetBoundaryConstraint(bridge.LatticeHandle(l), int(pos), mecab.BoundaryType(t))
	}))
}

// mecab_lattice_get_feature_constraint returns NULL both on error and when
// no feature constraint covers pos.
//
//export mecab_lattice_get_feature_constraint
func mecab_lattice_get_feature_constraint(l C.size_t, pos C.size_t) *C.char {
	return cstr(guard(lib, "mecab_lattice_get_feature_constraint", unsafe.Pointer(nil), func() (unsafe.Pointer, error) {
		feature, ok, err := lib.b.LatticeFeatureConstraint(bridge.LatticeHandle(l), int(pos))
		if err != nil || !ok {
			return nil, err
		}
		return lib.keep(uint32(l), "feature-constraint", []byte(feature)), nil
	}))
}

//export mecab_lattice_set_feature_constraint
func mecab_lattice_set_feature_constraint(l C.size_t, begin, end C.size_t, feature *C.char) C.int {
	return C.int(lib.status("mecab_lattice_set_feature_constraint", func() error {
		return lib.b.LatticeSetFeatureConstraint(bridge.LatticeHandle(l), int(begin), int(end), C.GoString(feature))
	}))
}

//export mecab_lattice_set_result
func mecab_lattice_set_result(l C.size_t, result *C.char) C.int {
	return C.int(lib.status("mecab_lattice_set_result", func() error {
		return lib.b.LatticeSetResult(bridge.LatticeHandle(l), []byte(C.GoString(result)))
	}))
}

//export mecab_lattice_strerror
func mecab_lattice_strerror(l C.size_t) *C.char {
	return cstr(lib.text(uint32(l), "what", func() ([]byte, error) {
		what, err := lib.b.LatticeWhat(bridge.LatticeHandle(l))
		return []byte(what), err
	}))
}

//export mecab_lattice_set_what
func mecab_lattice_set_what(l C.size_t, what *C.char) C.int {
	return C.int(lib.status("mecab_lattice_set_what", func() error {
		return lib.b.LatticeSetWhat(bridge.LatticeHandle(l), C.GoString(what))
	}))
}

// node

func nodeLink(fn string, n C.size_t, f func(bridge.NodeHandle) (bridge.NodeHandle, error)) C.size_t {
	return C.size_t(guard(lib, fn, bridge.NodeHandle(0), func() (bridge.NodeHandle, error) {
		return f(bridge.NodeHandle(n))
	}))
}

//export mecab_node_next
func mecab_node_next(n C.size_t) C.size_t { return nodeLink("mecab_node_next", n, lib.b.NodeNext) }

//export mecab_node_prev
func mecab_node_prev(n C.size_t) C.size_t { return nodeLink("mecab_node_prev", n, lib.b.NodePrev) }

//export mecab_node_bnext
func mecab_node_bnext(n C.size_t) C.size_t { return nodeLink("mecab_node_bnext", n, lib.b.NodeBNext) }

//export mecab_node_enext
func mecab_node_enext(n C.size_t) C.size_t { return nodeLink("mecab_node_enext", n, lib.b.NodeENext) }

//export mecab_node_surface
func mecab_node_surface(n C.size_t) *C.char {
	return cstr(lib.text(uint32(n), "surface", func() ([]byte, error) {
		return lib.b.NodeSurface(bridge.NodeHandle(n))
	}))
}

//export mecab_node_feature
func mecab_node_feature(n C.size_t) *C.char {
	return cstr(lib.text(uint32(n), "feature", func() ([]byte, error) {
		f, err := lib.b.NodeFeature(bridge.NodeHandle(n))
		return []byte(f), err
	}))
}

//export mecab_node_id
func mecab_node_id(n C.size_t) C.uint {
	return C.uint(guard(lib, "mecab_node_id", uint32(0), func() (uint32, error) {
		return lib.b.NodeID(bridge.NodeHandle(n))
	}))
}

func nodeInt(fn string, n C.size_t, f func(bridge.NodeHandle) (int, error)) C.int {
	return C.int(guard(lib, fn, 0, func() (int, error) { return f(bridge.NodeHandle(n)) }))
}

//export mecab_node_begin
func mecab_node_begin(n C.size_t) C.int { return nodeInt("mecab_node_begin", n, lib.b.NodeBegin) }

//export mecab_node_length
func mecab_node_length(n C.size_t) C.int { return nodeInt("mecab_node_length", n, lib.b.NodeLength) }

//export mecab_node_rlength
func mecab_node_rlength(n C.size_t) C.int { return nodeInt("mecab_node_rlength", n, lib.b.NodeRLength) }

func nodeU16(fn string, n C.size_t, f func(bridge.NodeHandle) (uint16, error)) C.ushort {
	return C.ushort(guard(lib, fn, uint16(0), func() (uint16, error) { return f(bridge.NodeHandle(n)) }))
}

//export mecab_node_rcattr
func mecab_node_rcattr(n C.size_t) C.ushort { return nodeU16("mecab_node_rcattr", n, lib.b.NodeRAttr) }

//export mecab_node_lcattr
func mecab_node_lcattr(n C.size_t) C.ushort { return nodeU16("mecab_node_lcattr", n, lib.b.NodeLAttr) }

//export mecab_node_posid
func mecab_node_posid(n C.size_t) C.ushort { return nodeU16("mecab_node_posid", n, lib.b.NodePosID) }

//export mecab_node_char_type
func mecab_node_char_type(n C.size_t) C.uchar {
	return C.uchar(guard(lib, "mecab_node_char_type", uint8(0), func() (uint8, error) {
		return lib.b.NodeCharType(bridge.NodeHandle(n))
	}))
}

//export mecab_node_stat
func mecab_node_stat(n C.size_t) C.int {
	return C.int(guard(lib, "mecab_node_stat", -1, func() (int, error) {
		st, err := lib.b.NodeStatus(bridge.NodeHandle(n))
		return int(st), err
	}))
}

//export mecab_node_isbest
func mecab_node_isbest(n C.size_t) C.int {
	return C.int(guard(lib, "mecab_node_isbest", 0, func() (int, error) {
		ok, err := lib.b.NodeIsBest(bridge.NodeHandle(n))
		return boolInt(ok), err
	}))
}

func nodeF64(fn string, n C.size_t, f func(bridge.NodeHandle) (float64, error)) C.double {
	return C.double(guard(lib, fn, 0.0, func() (float64, error) { return f(bridge.NodeHandle(n)) }))
}

//export mecab_node_alpha
func mecab_node_alpha(n C.size_t) C.double { return nodeF64("mecab_node_alpha", n, lib.b.NodeAlpha) }

//export mecab_node_beta
func mecab_node_beta(n C.size_t) C.double { return nodeF64("mecab_node_beta", n, lib.b.NodeBeta) }

//export mecab_node_prob
func mecab_node_prob(n C.size_t) C.double { return nodeF64("mecab_node_prob", n, lib.b.NodeProb) }

//export mecab_node_wcost
func mecab_node_wcost(n C.size_t) C.short {
	return C.short(guard(lib, "mecab_node_wcost", int16(0), func() (int16, error) {
		return lib.b.NodeWCost(bridge.NodeHandle(n))
	}))
}

//export mecab_node_cost
func mecab_node_cost(n C.size_t) C.longlong {
	return C.longlong(guard(lib, "mecab_node_cost", int64(0), func() (int64, error) {
		return lib.b.NodeCost(bridge.NodeHandle(n))
	}))
}

//export mecab_node_set_span
func mecab_node_set_span(n C.size_t, begin, length, leading C.int) C.int {
	return C.int(lib.status("mecab_node_set_span", func() error {
		return lib.b.NodeSetSpan(bridge.NodeHandle(n), int(begin), int(length), int(leading))
	}))
}

//export mecab_node_set_feature
func mecab_node_set_feature(n C.size_t, feature *C.char) C.int {
	return C.int(lib.status("mecab_node_set_feature", func() error {
		return lib.b.NodeSetFeature(bridge.NodeHandle(n), C.GoString(feature))
	}))
}

// dictionary info

//export mecab_dictionary_info_next
func mecab_dictionary_info_next(d C.size_t) C.size_t {
	return C.size_t(guard(lib, "mecab_dictionary_info_next", bridge.DictionaryInfoHandle(0), func() (bridge.DictionaryInfoHandle, error) {
		return lib.b.DictionaryInfoNext(bridge.DictionaryInfoHandle(d))
	}))
}

//export mecab_dictionary_info_filename
func mecab_dictionary_info_filename(d C.size_t) *C.char {
	return cstr(lib.text(uint32(d), "filename", func() ([]byte, error) {
		s, err := lib.b.DictionaryInfoFilename(bridge.DictionaryInfoHandle(d))
		return []byte(s), err
	}))
}

//export mecab_dictionary_info_charset
func mecab_dictionary_info_charset(d C.size_t) *C.char {
	return cstr(lib.text(uint32(d), "charset", func() ([]byte, error) {
		s, err := lib.b.DictionaryInfoCharset(bridge.DictionaryInfoHandle(d))
		return []byte(s), err
	}))
}

func infoU32(fn string, d C.size_t, f func(bridge.DictionaryInfoHandle) (uint32, error)) C.uint {
	return C.uint(guard(lib, fn, uint32(0), func() (uint32, error) { return f(bridge.DictionaryInfoHandle(d)) }))
}

//export mecab_dictionary_info_size
func mecab_dictionary_info_size(d C.size_t) C.uint {
	return infoU32("mecab_dictionary_info_size", d, lib.b.DictionaryInfoSize)
}

//export mecab_dictionary_info_lsize
func mecab_dictionary_info_lsize(d C.size_t) C.uint {
	return infoU32("mecab_dictionary_info_lsize", d, lib.b.DictionaryInfoLSize)
}

//export mecab_dictionary_info_rsize
func mecab_dictionary_info_rsize(d C.size_t) C.uint {
	return infoU32("mecab_dictionary_info_rsize", d, lib.b.DictionaryInfoRSize)
}

//export mecab_dictionary_info_type
func mecab_dictionary_info_type(d C.size_t) C.int {
	return C.int(guard(lib, "mecab_dictionary_info_type", -1, func() (int, error) {
		t, err := lib.b.DictionaryInfoType(bridge.DictionaryInfoHandle(d))
		return int(t), err
	}))
}

//export mecab_dictionary_info_version
func mecab_dictionary_info_version(d C.size_t) C.ushort {
	return C.ushort(guard(lib, "mecab_dictionary_info_version", uint16(0), func() (uint16, error) {
		return lib.b.DictionaryInfoVersion(bridge.DictionaryInfoHandle(d))
	}))
}
