// Package config reads optional harness settings from a YAML or TOML file.
// Every field is a pointer so callers can tell an absent key from a zero value.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

type File struct {
	MaxTests           *int    `yaml:"max_tests" toml:"max_tests"`
	NoFaultContainment *bool   `yaml:"no_fault_containment" toml:"no_fault_containment"`
	Color              *bool   `yaml:"color" toml:"color"`
	ResultsTable       *bool   `yaml:"results_table" toml:"results_table"`
	LogDir             *string `yaml:"log_dir" toml:"log_dir"`
	Label              *string `yaml:"label" toml:"label"`
	HealthzAddr        *string `yaml:"healthz_addr" toml:"healthz_addr"`
}

// Load reads the file at path. The format is chosen by extension: .yaml/.yml
// or .toml. Unknown keys are rejected.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &f)
	case ".toml":
		err = decodeTOML(data, &f)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}

	if err := f.Check(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	return &f, nil
}

// Check validates the values present in the file.
func (f *File) Check() error {
	if f.MaxTests != nil && *f.MaxTests < 1 {
		return errors.Errorf("max_tests must be at least 1, got %d", *f.MaxTests)
	}
	return nil
}

func decodeYAML(data []byte, f *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(data []byte, f *File) error {
	md, err := toml.Decode(string(data), f)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}
