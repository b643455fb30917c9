package source

import (
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
	"github.com/ruflab/simple-shapes-dataset/pkg/tensor"
)

// PretrainedVisualOptions are the options of the v_latents domain.
type PretrainedVisualOptions struct {
	// PresavedPath is the latent file inside saved_latents/{split}. Required.
	PresavedPath string `mapstructure:"presaved_path"`
	// UseUnpaired appends column 1 of {split}_unpaired.npy to every latent.
	// Defaults to false.
	UseUnpaired bool `mapstructure:"use_unpaired"`
}

// PretrainedVisual serves latent vectors pre-extracted from the visual VAE.
type PretrainedVisual struct {
	latents   *tensor.Matrix
	unpaired  []float32
	opts      PretrainedVisualOptions
	transform ports.Transform
}

// NewPretrainedVisual loads the latent table, and the unpaired column when
// requested.
func NewPretrainedVisual(cfg Config) (*PretrainedVisual, error) {
	id := domain.VisualLatentsDomain.ID()
	if err := cfg.validate(id); err != nil {
		return nil, err
	}
	var opts PretrainedVisualOptions
	if err := decodeOptions(id, cfg.Args, &opts); err != nil {
		return nil, err
	}
	if opts.PresavedPath == "" {
		return nil, &domain.ConfigError{Domain: id, Key: "presaved_path", Reason: "option is required"}
	}

	latents, err := loadMatrix(id, "presaved_path", cfg.path("saved_latents", cfg.Split, opts.PresavedPath))
	if err != nil {
		return nil, err
	}

	s := &PretrainedVisual{latents: latents, opts: opts, transform: cfg.Transform}
	if opts.UseUnpaired {
		table, err := loadMatrix(id, "use_unpaired", cfg.path(cfg.Split+"_unpaired.npy"))
		if err != nil {
			return nil, err
		}
		if table.Cols() < 2 {
			return nil, &domain.ConfigError{Domain: id, Key: "use_unpaired", Reason: "unpaired table has fewer than 2 columns"}
		}
		if err := domain.CheckLengths("latents", latents.Rows(), "unpaired table", table.Rows()); err != nil {
			return nil, err
		}
		s.unpaired = table.Column(1)
	}
	return s, nil
}

// Options returns the decoded options.
func (s *PretrainedVisual) Options() PretrainedVisualOptions { return s.opts }

// Len returns the number of latent rows.
func (s *PretrainedVisual) Len() int { return s.latents.Rows() }

// Latent returns the latent at index, with the unpaired scalar appended when
// enabled.
func (s *PretrainedVisual) Latent(index int) (domain.Latent, error) {
	if err := domain.CheckIndex(index, s.Len()); err != nil {
		return nil, err
	}
	row := s.latents.Row(index)
	if s.unpaired != nil {
		row = append(row, s.unpaired[index])
	}
	return domain.Latent(row), nil
}

// Get returns the domain.Latent at index, passed through the transform.
func (s *PretrainedVisual) Get(index int) (any, error) {
	v, err := s.Latent(index)
	if err != nil {
		return nil, err
	}
	return apply(s.transform, v)
}
