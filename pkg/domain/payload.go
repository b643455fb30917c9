package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
)

// Record is one synchronized sample: the payload of every domain of a
// sampler at the same global index, keyed by domain identifier.
type Record map[string]any

// Latent is a pre-computed latent vector.
type Latent []float32

// Attribute holds the decoded attribute row of one shape.
type Attribute struct {
	Category int     `json:"category"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Size     float32 `json:"size"`
	Rotation float32 `json:"rotation"`
	ColorR   float32 `json:"color_r"` // in [0, 1]
	ColorG   float32 `json:"color_g"`
	ColorB   float32 `json:"color_b"`
	// Unpaired is nil unless unpaired columns were requested.
	Unpaired []float32 `json:"unpaired,omitempty"`
}

// Choice is the structured metadata describing how a caption was generated.
type Choice struct {
	Structure int                       `json:"structure" mapstructure:"structure"`
	Groups    []int                     `json:"groups" mapstructure:"groups"`
	Writers   map[string]map[string]int `json:"writers" mapstructure:"writers"`
	Variants  map[string]int            `json:"variants" mapstructure:"variants"`
}

// Clone returns a deep copy of the choice.
func (c Choice) Clone() Choice {
	out := Choice{Structure: c.Structure}
	if c.Groups != nil {
		out.Groups = append([]int(nil), c.Groups...)
	}
	if c.Writers != nil {
		out.Writers = make(map[string]map[string]int, len(c.Writers))
		for k, inner := range c.Writers {
			cp := make(map[string]int, len(inner))
			for ik, iv := range inner {
				cp[ik] = iv
			}
			out.Writers[k] = cp
		}
	}
	if c.Variants != nil {
		out.Variants = make(map[string]int, len(c.Variants))
		for k, v := range c.Variants {
			out.Variants[k] = v
		}
	}
	return out
}

// RawText is a caption with its generation metadata.
type RawText struct {
	Caption string `json:"caption"`
	Choice  Choice `json:"choice"`
}

// Text joins a caption, its normalized embedding and the attributes of the
// described shape.
type Text struct {
	Caption   string    `json:"caption"`
	Embedding []float32 `json:"embedding"`
	Choice    Choice    `json:"choice"`
	Attr      Attribute `json:"attr"`
}

// Image wraps a decoded image. It marshals to JSON as a base64 PNG.
type Image struct {
	image.Image
}

func (img Image) MarshalJSON() ([]byte, error) {
	if img.Image == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	b := img.Bounds()
	return json.Marshal(struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		PNG    []byte `json:"png"`
	}{b.Dx(), b.Dy(), buf.Bytes()})
}
