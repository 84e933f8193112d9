package pipeline

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

// LoadOptions reads an animation descriptor from a TOML, YAML or JSON file,
// chosen by extension, on top of base. Keys absent from the file keep their
// base values; unknown keys are rejected.
func LoadOptions(path string, base Options) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "read config")
	}
	opts := base
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &opts)
		if err != nil {
			return base, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "parse %s", filepath.Base(path))
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return base, errors.Invalid("unknown config keys in %s: %s", filepath.Base(path), strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&opts); err != nil && err != io.EOF {
			return base, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "parse %s", filepath.Base(path))
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return base, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "parse %s", filepath.Base(path))
		}
	default:
		return base, errors.Invalid("unsupported config format %q (supported: .toml, .yaml, .yml, .json)", ext)
	}
	opts.Logger, opts.Progress = base.Logger, base.Progress
	opts.validated = false
	return opts, nil
}
