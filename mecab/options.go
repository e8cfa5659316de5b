package mecab

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"

	"github.com/wippyai/mecab-bridge/dict"
	"github.com/wippyai/mecab-bridge/errors"
)

const (
	// DefaultTheta is the temperature of marginal probabilities.
	DefaultTheta = 0.75
	// MaxNBest bounds the nbest option.
	MaxNBest = 512
	// DefaultProgramName fills argv[0] for single-string options.
	DefaultProgramName = "mecab"

	defaultMaxGroupingSize = 24
	defaultInputBufferSize = 8192
	defaultCostFactor      = 700
)

// Options is the decoded option set of a Model.
type Options struct {
	RCFile           string  `mapstructure:"rcfile"`
	DicDir           string  `mapstructure:"dicdir"`
	UserDic          string  `mapstructure:"userdic"`
	LatticeLevel     int     `mapstructure:"lattice-level"`
	AllMorphs        bool    `mapstructure:"all-morphs"`
	OutputFormatType string  `mapstructure:"output-format-type"`
	Partial          bool    `mapstructure:"partial"`
	Marginal         bool    `mapstructure:"marginal"`
	MaxGroupingSize  int     `mapstructure:"max-grouping-size"`
	NodeFormat       string  `mapstructure:"node-format"`
	UnkFormat        string  `mapstructure:"unk-format"`
	BOSFormat        string  `mapstructure:"bos-format"`
	EOSFormat        string  `mapstructure:"eos-format"`
	EONFormat        string  `mapstructure:"eon-format"`
	UnkFeature       string  `mapstructure:"unk-feature"`
	InputBufferSize  int     `mapstructure:"input-buffer-size"`
	AllocateSentence bool    `mapstructure:"allocate-sentence"`
	NBest            int     `mapstructure:"nbest"`
	Theta            float64 `mapstructure:"theta"`
	CostFactor       int     `mapstructure:"cost-factor"`
	Output           string  `mapstructure:"output"`

	// params holds every merged key, including dicrc-only ones such as
	// node-format-<type>.
	params map[string]string
}

// DefaultOptions returns the option defaults.
func DefaultOptions() Options {
	return Options{
		MaxGroupingSize: defaultMaxGroupingSize,
		InputBufferSize: defaultInputBufferSize,
		NBest:           1,
		Theta:           DefaultTheta,
		CostFactor:      defaultCostFactor,
	}
}

// Param returns a merged raw option value.
func (o Options) Param(key string) (string, bool) {
	v, ok := o.params[key]
	return v, ok
}

// UserDics splits the comma-separated userdic option.
func (o Options) UserDics() []string {
	if o.UserDic == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(o.UserDic, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RequestType derives the default request flags of lattices created from a
// model with these options.
func (o Options) RequestType() RequestType {
	r := OneBest
	if o.AllocateSentence {
		r |= AllocSentence
	}
	if o.Partial {
		r |= Partial
	}
	if o.AllMorphs {
		r |= AllMorphs
	}
	if o.Marginal {
		r |= MarginalProb
	}
	if o.NBest >= 2 {
		r |= NBest
	}
	if o.LatticeLevel >= 1 {
		r |= NBest
	}
	if o.LatticeLevel >= 2 {
		r |= MarginalProb
	}
	return r
}

type optionSpec struct {
	long  string
	short byte
	arg   bool
}

var optionSpecs = []optionSpec{
	{"rcfile", 'r', true},
	{"dicdir", 'd', true},
	{"userdic", 'u', true},
	{"lattice-level", 'l', true},
	{"all-morphs", 'a', false},
	{"output-format-type", 'O', true},
	{"partial", 'p', false},
	{"marginal", 'm', false},
	{"max-grouping-size", 'M', true},
	{"node-format", 'F', true},
	{"unk-format", 'U', true},
	{"bos-format", 'B', true},
	{"eos-format", 'E', true},
	{"eon-format", 'S', true},
	{"unk-feature", 'x', true},
	{"input-buffer-size", 'b', true},
	{"allocate-sentence", 'C', false},
	{"nbest", 'N', true},
	{"theta", 't', true},
	{"cost-factor", 'c', true},
	{"output", 'o', true},
}

func findLong(name string) *optionSpec {
	for i := range optionSpecs {
		if optionSpecs[i].long == name {
			return &optionSpecs[i]
		}
	}
	return nil
}

func findShort(c byte) *optionSpec {
	for i := range optionSpecs {
		if optionSpecs[i].short == c {
			return &optionSpecs[i]
		}
	}
	return nil
}

func optionError(detail string) error {
	return errors.InvalidInput(errors.PhaseOption, detail)
}

// ParseArgs parses a MeCab command line. argv[0] is the program name and is
// ignored. It returns the explicit options and the remaining operands.
func ParseArgs(argv []string) (map[string]string, []string, error) {
	params := make(map[string]string)
	var rest []string
	for i := 1; i < len(argv); i++ {
		a := argv[i]
		switch {
		case a == "--":
			rest = append(rest, argv[i+1:]...)
			return params, rest, nil

		case strings.HasPrefix(a, "--") && len(a) > 2:
			name, val, hasVal := strings.Cut(a[2:], "=")
			spec := findLong(name)
			if spec == nil {
				return nil, nil, optionError("unrecognized option '" + a + "'")
			}
			if !spec.arg {
				if hasVal {
					return nil, nil, optionError("option '--" + name + "' doesn't allow an argument")
				}
				params[spec.long] = "1"
				continue
			}
			if !hasVal {
				if i+1 >= len(argv) {
					return nil, nil, optionError("option '--" + name + "' requires an argument")
				}
				i++
				val = argv[i]
			}
			params[spec.long] = val

		case strings.HasPrefix(a, "-") && len(a) > 1:
			spec := findShort(a[1])
			if spec == nil {
				return nil, nil, optionError("unrecognized option '" + a + "'")
			}
			if !spec.arg {
				if len(a) > 2 {
					return nil, nil, optionError("unrecognized option '" + a + "'")
				}
				params[spec.long] = "1"
				continue
			}
			val := a[2:]
			if val == "" {
				if i+1 >= len(argv) {
					return nil, nil, optionError("option '-" + string(spec.short) + "' requires an argument")
				}
				i++
				val = argv[i]
			}
			params[spec.long] = val

		default:
			rest = append(rest, a)
		}
	}
	return params, rest, nil
}

// SplitArgs splits a single option string on whitespace. Double quotes
// group words and are removed.
func SplitArgs(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}

// mergeResourceFile adds the rc file values that argv did not set.
// $(rcpath) expands to the rc file's directory.
func mergeResourceFile(params map[string]string) error {
	rc := params["rcfile"]
	if rc == "" {
		rc = os.Getenv("MECABRC")
	}
	if rc == "" {
		return nil
	}
	values, err := dict.LoadResourceFile(rc)
	if err != nil {
		return errors.Wrap(errors.PhaseOption, errors.KindNotFound, err, "cannot read rcfile "+rc)
	}
	rcDir := filepath.Dir(rc)
	for k, v := range values {
		if _, set := params[k]; !set {
			params[k] = strings.ReplaceAll(v, "$(rcpath)", rcDir)
		}
	}
	return nil
}

// mergeDictionary adds dicrc values that neither argv nor the rc file set.
func mergeDictionary(params map[string]string, d *dict.Dictionary) {
	for k, v := range d.Params {
		if _, set := params[k]; !set {
			params[k] = v
		}
	}
}

func decodeOptions(params map[string]string) (Options, error) {
	opts := DefaultOptions()
	in := make(map[string]any, len(optionSpecs))
	for _, spec := range optionSpecs {
		if v, ok := params[spec.long]; ok {
			in[spec.long] = v
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return Options{}, errors.Wrap(errors.PhaseOption, errors.KindInvalidInput, err, "option decoder")
	}
	if err := dec.Decode(in); err != nil {
		return Options{}, errors.Wrap(errors.PhaseOption, errors.KindInvalidInput, err, "invalid option value")
	}
	if opts.NBest < 1 || opts.NBest > MaxNBest {
		return Options{}, optionError("nbest size must be 1 <= nbest <= 512")
	}
	if opts.MaxGroupingSize < 0 {
		opts.MaxGroupingSize = defaultMaxGroupingSize
	}
	if opts.InputBufferSize <= 0 {
		opts.InputBufferSize = defaultInputBufferSize
	}
	opts.params = params
	return opts, nil
}
