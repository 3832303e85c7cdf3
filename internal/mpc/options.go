package mpc

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Options is an opaque bag of backend settings. Keys a backend does
// not recognize are ignored, so one options map can carry settings
// for several backends. A nil map means defaults everywhere.
type Options map[string]any

// Clone returns a shallow copy. Presets hand out clones so callers
// can tweak them without cross-talk.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	c := make(Options, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// decodeOptions copies the recognized keys of an options map into a
// backend's typed settings struct via a JSON round trip. Fields absent
// from the map keep whatever defaults the struct was seeded with.
func decodeOptions(opts Options, into any) error {
	if len(opts) == 0 {
		return nil
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}

// Named option presets, mirrored by the config layer. Each call
// returns a fresh map.
var presets = map[string]func() Options{
	"default": DefaultOptions,
	"fast":    FastOptions,
	"precise": PreciseOptions,
}

// DefaultOptions is a balanced starting point for the bundled SLSQP
// backend.
func DefaultOptions() Options {
	return Options{
		"accuracy":       1e-7,
		"max_iterations": 200,
		"diff_method":    "central",
	}
}

// FastOptions trades accuracy for solve time; suited to tight control
// loops.
func FastOptions() Options {
	return Options{
		"accuracy":       1e-4,
		"max_iterations": 60,
		"diff_method":    "forward",
	}
}

// PreciseOptions spends iterations freely; suited to offline planning.
func PreciseOptions() Options {
	return Options{
		"accuracy":          1e-9,
		"max_iterations":    500,
		"diff_method":       "central",
		"exact_line_search": true,
	}
}

// PresetOptions returns a named preset.
func PresetOptions(name string) (Options, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("mpc: unknown options preset %q (have %v)", name, OptionPresets())
	}
	return fn(), nil
}

// OptionPresets lists the preset names in sorted order.
func OptionPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
