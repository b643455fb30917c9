package source

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
)

// Images serves the PNG files of one split. The number of images is counted
// once, on first use.
type Images struct {
	dir       string
	transform ports.Transform

	once sync.Once
	size int
	err  error
}

// NewImages checks that the image directory of the split exists. It accepts
// no options.
func NewImages(cfg Config) (*Images, error) {
	id := domain.VisualDomain.ID()
	if err := cfg.validate(id); err != nil {
		return nil, err
	}
	var opts struct{}
	if err := decodeOptions(id, cfg.Args, &opts); err != nil {
		return nil, err
	}

	dir := cfg.path(cfg.Split)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &domain.ConfigError{Domain: id, Key: "split", Reason: "missing image directory " + dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.ConfigError{Domain: id, Key: "split", Reason: dir + " is not a directory"}
	}
	return &Images{dir: dir, transform: cfg.Transform}, nil
}

func (s *Images) count() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.err = fmt.Errorf("failed to list images: %w", err)
		return
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			s.size++
		}
	}
}

// Len returns the number of .png files in the split directory.
func (s *Images) Len() int {
	s.once.Do(s.count)
	return s.size
}

// Image decodes image index as an opaque RGB image.
func (s *Images) Image(index int) (domain.Image, error) {
	if err := domain.CheckIndex(index, s.Len()); err != nil {
		if s.err != nil {
			return domain.Image{}, s.err
		}
		return domain.Image{}, err
	}

	f, err := os.Open(filepath.Join(s.dir, fmt.Sprintf("%d.png", index)))
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to open image %d: %w", index, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to decode image %d: %w", index, err)
	}
	return domain.Image{Image: toRGB(img)}, nil
}

// Get returns the domain.Image at index, passed through the transform.
func (s *Images) Get(index int) (any, error) {
	img, err := s.Image(index)
	if err != nil {
		return nil, err
	}
	return apply(s.transform, img)
}

// toRGB drops the alpha channel, keeping the straight color values.
func toRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return dst
}
