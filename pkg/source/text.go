package source

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
	"github.com/ruflab/simple-shapes-dataset/pkg/tensor"
)

// RawTexts serves captions together with their generation choices.
type RawTexts struct {
	captions  []string
	choices   []domain.Choice
	transform ports.Transform
}

// NewRawTexts loads {split}_captions.npy and {split}_caption_choices.json.
// It accepts no options.
func NewRawTexts(cfg Config) (*RawTexts, error) {
	id := domain.RawTextDomain.ID()
	if err := cfg.validate(id); err != nil {
		return nil, err
	}
	var opts struct{}
	if err := decodeOptions(id, cfg.Args, &opts); err != nil {
		return nil, err
	}
	return newRawTexts(id, cfg)
}

func newRawTexts(id string, cfg Config) (*RawTexts, error) {
	arr, err := loadArray(id, "captions", cfg.path(cfg.Split+"_captions.npy"))
	if err != nil {
		return nil, err
	}
	if arr.Strings == nil {
		return nil, &domain.ConfigError{Domain: id, Key: "captions", Reason: fmt.Sprintf("caption table has non-string dtype %s", arr.DType)}
	}

	choices, err := loadChoices(id, cfg.path(cfg.Split+"_caption_choices.json"))
	if err != nil {
		return nil, err
	}
	if err := domain.CheckLengths("captions", len(arr.Strings), "caption choices", len(choices)); err != nil {
		return nil, err
	}
	return &RawTexts{captions: arr.Strings, choices: choices, transform: cfg.Transform}, nil
}

// loadChoices decodes a JSON array of choice objects. Unknown keys in a
// choice are rejected.
func loadChoices(id, path string) ([]domain.Choice, error) {
	if err := requireFile(id, "caption_choices", path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Domain: id, Key: "caption_choices", Reason: "unreadable file", Err: err}
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domain.ConfigError{Domain: id, Key: "caption_choices", Reason: "malformed JSON", Err: err}
	}

	choices := make([]domain.Choice, len(raw))
	for i, m := range raw {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused: true,
			Result:      &choices[i],
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(m); err != nil {
			return nil, &domain.ConfigError{Domain: id, Key: "caption_choices", Reason: fmt.Sprintf("malformed choice %d", i), Err: err}
		}
	}
	return choices, nil
}

// Len returns the number of captions.
func (s *RawTexts) Len() int { return len(s.captions) }

// RawText returns the caption and choice at index.
func (s *RawTexts) RawText(index int) (domain.RawText, error) {
	if err := domain.CheckIndex(index, s.Len()); err != nil {
		return domain.RawText{}, err
	}
	return domain.RawText{Caption: s.captions[index], Choice: s.choices[index].Clone()}, nil
}

// Get returns the domain.RawText at index, passed through the transform.
func (s *RawTexts) Get(index int) (any, error) {
	v, err := s.RawText(index)
	if err != nil {
		return nil, err
	}
	return apply(s.transform, v)
}

// TextOptions are the options of the t domain.
type TextOptions struct {
	// LatentFilename selects {split}_{latent_filename}.npy and the matching
	// {latent_filename}_mean.npy and {latent_filename}_std.npy.
	// Defaults to "latent".
	LatentFilename string `mapstructure:"latent_filename"`
}

// Texts joins captions, normalized caption embeddings and the attributes of
// the described shape.
type Texts struct {
	raw        *RawTexts
	attributes *Attributes
	embeddings *tensor.Matrix
	transform  ports.Transform
}

// NewTexts loads the embedding table and normalizes it, then opens the raw
// text and attribute tables of the same split.
func NewTexts(cfg Config) (*Texts, error) {
	id := domain.TextDomain.ID()
	if err := cfg.validate(id); err != nil {
		return nil, err
	}
	opts := TextOptions{LatentFilename: "latent"}
	if err := decodeOptions(id, cfg.Args, &opts); err != nil {
		return nil, err
	}
	if opts.LatentFilename == "" {
		return nil, &domain.ConfigError{Domain: id, Key: "latent_filename", Reason: "must not be empty"}
	}
	lf := opts.LatentFilename

	arr, err := loadArray(id, "latent_filename", cfg.path(cfg.Split+"_"+lf+".npy"))
	if err != nil {
		return nil, err
	}
	if len(arr.Shape) != 2 {
		return nil, &domain.ConfigError{Domain: id, Key: "latent_filename", Reason: fmt.Sprintf("embedding table has %d dimensions, want 2", len(arr.Shape))}
	}
	raw, err := arr.Matrix()
	if err != nil {
		return nil, &domain.ConfigError{Domain: id, Key: "latent_filename", Reason: "unreadable table", Err: err}
	}

	mean, err := loadMatrix(id, "latent_filename", cfg.path(lf+"_mean.npy"))
	if err != nil {
		return nil, err
	}
	std, err := loadMatrix(id, "latent_filename", cfg.path(lf+"_std.npy"))
	if err != nil {
		return nil, err
	}
	embeddings, err := raw.Normalize(mean.Values(), std.Values())
	if err != nil {
		return nil, &domain.ConfigError{Domain: id, Key: "latent_filename", Reason: "invalid normalization statistics", Err: err}
	}

	rawTexts, err := newRawTexts(id, Config{DatasetPath: cfg.DatasetPath, Split: cfg.Split})
	if err != nil {
		return nil, err
	}
	attributes, err := NewAttributes(Config{DatasetPath: cfg.DatasetPath, Split: cfg.Split})
	if err != nil {
		return nil, err
	}
	if err := domain.CheckLengths("embeddings", embeddings.Rows(), "captions", rawTexts.Len()); err != nil {
		return nil, err
	}
	if err := domain.CheckLengths("embeddings", embeddings.Rows(), "labels", attributes.Len()); err != nil {
		return nil, err
	}

	return &Texts{
		raw:        rawTexts,
		attributes: attributes,
		embeddings: embeddings,
		transform:  cfg.Transform,
	}, nil
}

// Len returns the number of embedding rows.
func (s *Texts) Len() int { return s.embeddings.Rows() }

// Text returns the joined caption, embedding, choice and attribute at index.
func (s *Texts) Text(index int) (domain.Text, error) {
	if err := domain.CheckIndex(index, s.Len()); err != nil {
		return domain.Text{}, err
	}
	raw, err := s.raw.RawText(index)
	if err != nil {
		return domain.Text{}, err
	}
	attr, err := s.attributes.Attribute(index)
	if err != nil {
		return domain.Text{}, err
	}
	return domain.Text{
		Caption:   raw.Caption,
		Embedding: s.embeddings.Row(index),
		Choice:    raw.Choice,
		Attr:      attr,
	}, nil
}

// Get returns the domain.Text at index, passed through the transform.
func (s *Texts) Get(index int) (any, error) {
	v, err := s.Text(index)
	if err != nil {
		return nil, err
	}
	return apply(s.transform, v)
}
