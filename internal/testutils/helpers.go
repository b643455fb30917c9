package testutils

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ruflab/simple-shapes-dataset/pkg/adapters/npy"
	"github.com/stretchr/testify/require"
)

// Fixture dimensions of the sample dataset.
const (
	LatentDim    = 3
	EmbeddingDim = 4
	UnpairedCols = 4
	ImageSize    = 4
)

// SampleDataset describes what WriteSampleDataset creates.
type SampleDataset struct {
	Path  string
	Split string
	N     int
}

// LatentFile is the presaved_path of the sample latents.
const LatentFile = "vae.npy"

// Label returns the raw label row written for index i.
func Label(i int) []float32 {
	return []float32{float32(i % 3), float32(10 + i), float32(20 + i), float32(5 + i), 0.5 * float32(i), 255, 51, 0}
}

// Unpaired returns the unpaired row written for index i.
func Unpaired(i int) []float32 {
	row := make([]float32, UnpairedCols)
	for j := range row {
		row[j] = float32(100*i + j)
	}
	return row
}

// Latent returns the latent row written for index i.
func Latent(i int) []float32 {
	return []float32{float32(i), float32(i) + 0.25, float32(i) + 0.5}
}

// Embedding returns the raw (unnormalized) embedding row written for index i.
// The stored mean is 1 and the std 2 for every column.
func Embedding(i int) []float32 {
	row := make([]float32, EmbeddingDim)
	for j := range row {
		row[j] = float32(2*i + j)
	}
	return row
}

// Caption returns the caption written for index i.
func Caption(i int) string { return fmt.Sprintf("shape number %d", i) }

// WriteSampleDataset creates a complete dataset with n examples of split in
// a temporary directory and returns its description. It fails the test
// immediately on error.
func WriteSampleDataset(t *testing.T, split string, n int) SampleDataset {
	t.Helper()
	dir := t.TempDir()
	WriteSplit(t, dir, split, n)
	return SampleDataset{Path: dir, Split: split, N: n}
}

// WriteSplit writes every backing file of one split into dir.
func WriteSplit(t *testing.T, dir, split string, n int) {
	t.Helper()

	imgDir := filepath.Join(dir, split)
	require.NoError(t, os.MkdirAll(imgDir, 0o755))
	for i := 0; i < n; i++ {
		WriteImage(t, filepath.Join(imgDir, fmt.Sprintf("%d.png", i)), uint8(i))
	}

	labels := make([]float32, 0, n*8)
	unpaired := make([]float32, 0, n*UnpairedCols)
	latents := make([]float32, 0, n*LatentDim)
	bert := make([]float32, 0, n*EmbeddingDim)
	captions := make([]string, n)
	choices := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		labels = append(labels, Label(i)...)
		unpaired = append(unpaired, Unpaired(i)...)
		latents = append(latents, Latent(i)...)
		bert = append(bert, Embedding(i)...)
		captions[i] = Caption(i)
		choices[i] = map[string]any{
			"structure": i,
			"groups":    []int{i, i + 1},
			"writers":   map[string]map[string]int{"shape": {"variant": i}},
			"variants":  map[string]int{"color": i},
		}
	}

	require.NoError(t, npy.WriteFloat32File(filepath.Join(dir, split+"_labels.npy"), []int{n, 8}, labels))
	require.NoError(t, npy.WriteFloat32File(filepath.Join(dir, split+"_unpaired.npy"), []int{n, UnpairedCols}, unpaired))

	latentDir := filepath.Join(dir, "saved_latents", split)
	require.NoError(t, os.MkdirAll(latentDir, 0o755))
	require.NoError(t, npy.WriteFloat32File(filepath.Join(latentDir, LatentFile), []int{n, LatentDim}, latents))

	require.NoError(t, npy.WriteStringsFile(filepath.Join(dir, split+"_captions.npy"), captions))
	data, err := json.Marshal(choices)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, split+"_caption_choices.json"), data, 0o644))

	require.NoError(t, npy.WriteFloat32File(filepath.Join(dir, split+"_latent.npy"), []int{n, EmbeddingDim}, bert))
	mean := make([]float32, EmbeddingDim)
	std := make([]float32, EmbeddingDim)
	for j := range mean {
		mean[j], std[j] = 1, 2
	}
	require.NoError(t, npy.WriteFloat32File(filepath.Join(dir, "latent_mean.npy"), []int{EmbeddingDim}, mean))
	require.NoError(t, npy.WriteFloat32File(filepath.Join(dir, "latent_std.npy"), []int{EmbeddingDim}, std))
}

// WriteImage writes a small opaque PNG whose red channel is shade.
func WriteImage(t *testing.T, path string, shade uint8) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, ImageSize, ImageSize))
	for y := 0; y < ImageSize; y++ {
		for x := 0; x < ImageSize; x++ {
			img.Set(x, y, color.NRGBA{R: shade, G: 10, B: 20, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}
