package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/ruflab/simple-shapes-dataset/pkg/adapters/npy"
	"github.com/ruflab/simple-shapes-dataset/pkg/adapters/sqlite"
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
	"github.com/ruflab/simple-shapes-dataset/pkg/tensor"
)

// Config is what every source constructor receives.
type Config struct {
	// DatasetPath is the root directory of the dataset.
	DatasetPath string
	// Split is one of train, val or test.
	Split string
	// Transform is applied to every payload returned by Get. Optional.
	Transform ports.Transform
	// Args holds the domain options. Keys a domain does not recognize are an error.
	Args map[string]any
}

func (c Config) validate(id string) error {
	if !domain.ValidSplit(c.Split) {
		return &domain.ConfigError{Domain: id, Key: "split", Reason: fmt.Sprintf("invalid split %q", c.Split)}
	}
	if c.DatasetPath == "" {
		return &domain.ConfigError{Domain: id, Key: "dataset_path", Reason: "dataset path is empty"}
	}
	return nil
}

func (c Config) path(elem ...string) string {
	return filepath.Join(append([]string{c.DatasetPath}, elem...)...)
}

// decodeOptions decodes args into out, which already holds the defaults.
func decodeOptions(id string, args map[string]any, out any) error {
	if len(args) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return &domain.ConfigError{Domain: id, Reason: "invalid options", Err: err}
	}
	return nil
}

// requireFile fails with a ConfigError when path does not name a regular file.
func requireFile(id, key, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &domain.ConfigError{Domain: id, Key: key, Reason: "missing backing file " + path, Err: err}
	}
	if info.IsDir() {
		return &domain.ConfigError{Domain: id, Key: key, Reason: path + " is a directory"}
	}
	return nil
}

// loadMatrix loads a numeric table from a .npy or SQLite file.
func loadMatrix(id, key, path string) (*tensor.Matrix, error) {
	if err := requireFile(id, key, path); err != nil {
		return nil, err
	}
	var (
		m   *tensor.Matrix
		err error
	)
	if sqlite.IsDatabase(path) {
		m, err = sqlite.LoadMatrix(context.Background(), path)
	} else {
		m, err = npy.LoadMatrix(path)
	}
	if err != nil {
		return nil, &domain.ConfigError{Domain: id, Key: key, Reason: "unreadable table", Err: err}
	}
	return m, nil
}

// loadArray loads a raw .npy array.
func loadArray(id, key, path string) (*npy.Array, error) {
	if err := requireFile(id, key, path); err != nil {
		return nil, err
	}
	arr, err := npy.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Domain: id, Key: key, Reason: "unreadable table", Err: err}
	}
	return arr, nil
}

func apply(t ports.Transform, v any) (any, error) {
	if t == nil {
		return v, nil
	}
	return t(v)
}

var (
	_ ports.Source = (*Images)(nil)
	_ ports.Source = (*PretrainedVisual)(nil)
	_ ports.Source = (*Attributes)(nil)
	_ ports.Source = (*RawTexts)(nil)
	_ ports.Source = (*Texts)(nil)
	_ ports.Source = (*Memory)(nil)
)
