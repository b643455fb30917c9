package source

import (
	"fmt"

	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
	"github.com/ruflab/simple-shapes-dataset/pkg/tensor"
)

// labelColumns is the number of columns of the label table:
// category, x, y, size, rotation, r, g, b.
const labelColumns = 8

// firstUnpairedColumn is where attribute unpaired columns start in the
// unpaired table. Columns 0 and 1 belong to the visual domain.
const firstUnpairedColumn = 2

// AttributeOptions are the options of the attr domain.
type AttributeOptions struct {
	// NUnpaired is the number of unpaired columns attached to every attribute.
	// Defaults to 0 (no unpaired slice).
	NUnpaired int `mapstructure:"n_unpaired"`
}

// Attributes serves the attribute table.
type Attributes struct {
	labels    *tensor.Matrix
	unpaired  *tensor.Matrix
	transform ports.Transform
}

// NewAttributes loads {split}_labels.npy, and the unpaired slice when
// n_unpaired >= 1.
func NewAttributes(cfg Config) (*Attributes, error) {
	id := domain.AttributesDomain.ID()
	if err := cfg.validate(id); err != nil {
		return nil, err
	}
	var opts AttributeOptions
	if err := decodeOptions(id, cfg.Args, &opts); err != nil {
		return nil, err
	}
	if opts.NUnpaired < 0 {
		return nil, &domain.ConfigError{Domain: id, Key: "n_unpaired", Reason: fmt.Sprintf("must be >= 0, got %d", opts.NUnpaired)}
	}

	labels, err := loadMatrix(id, "labels", cfg.path(cfg.Split+"_labels.npy"))
	if err != nil {
		return nil, err
	}
	if labels.Cols() < labelColumns {
		return nil, &domain.ConfigError{Domain: id, Key: "labels", Reason: fmt.Sprintf("label table has %d columns, want %d", labels.Cols(), labelColumns)}
	}

	s := &Attributes{labels: labels, transform: cfg.Transform}
	if opts.NUnpaired >= 1 {
		table, err := loadMatrix(id, "n_unpaired", cfg.path(cfg.Split+"_unpaired.npy"))
		if err != nil {
			return nil, err
		}
		end := firstUnpairedColumn + opts.NUnpaired
		if table.Cols() < end {
			return nil, &domain.ConfigError{Domain: id, Key: "n_unpaired", Reason: fmt.Sprintf("unpaired table has %d columns, need %d", table.Cols(), end)}
		}
		if err := domain.CheckLengths("labels", labels.Rows(), "unpaired table", table.Rows()); err != nil {
			return nil, err
		}
		if s.unpaired, err = table.Slice(firstUnpairedColumn, end); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Len returns the number of label rows.
func (s *Attributes) Len() int { return s.labels.Rows() }

// Attribute decodes the label row at index. Colors are scaled to [0, 1].
func (s *Attributes) Attribute(index int) (domain.Attribute, error) {
	if err := domain.CheckIndex(index, s.Len()); err != nil {
		return domain.Attribute{}, err
	}
	label := s.labels.Row(index)
	attr := domain.Attribute{
		Category: int(label[0]),
		X:        label[1],
		Y:        label[2],
		Size:     label[3],
		Rotation: label[4],
		ColorR:   label[5] / 255,
		ColorG:   label[6] / 255,
		ColorB:   label[7] / 255,
	}
	if s.unpaired != nil {
		attr.Unpaired = s.unpaired.Row(index)
	}
	return attr, nil
}

// Get returns the domain.Attribute at index, passed through the transform.
func (s *Attributes) Get(index int) (any, error) {
	attr, err := s.Attribute(index)
	if err != nil {
		return nil, err
	}
	return apply(s.transform, attr)
}
