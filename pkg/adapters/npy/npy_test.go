package npy

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat32RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	data := []float32{0, 1, 2, 3, 4, 5}
	require.NoError(t, WriteFloat32(&buf, []int{2, 3}, data))
	assert.Zero(t, (buf.Len()-len(data)*4)%headerAlign, "data section must be aligned")

	arr, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, arr.Shape)
	assert.Equal(t, "<f4", arr.DType)
	assert.Equal(t, data, arr.Floats)

	m, err := arr.Matrix()
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, []float32{3, 4, 5}, m.Row(1))
}

func TestWriteFloat32_ShapeMismatch(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteFloat32(&buf, []int{2, 2}, []float32{1}))
}

func TestStringsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captions.npy")
	values := []string{"a red square", "", "un triangle bleu à gauche"}
	require.NoError(t, WriteStringsFile(path, values))

	arr, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, values, arr.Strings)
	assert.Equal(t, 3, arr.Rows())

	_, err = arr.Matrix()
	assert.ErrorIs(t, err, ErrUnsupported)
}

// rawNPY builds a file with an arbitrary descr, for dtypes the writer does not produce.
func rawNPY(t *testing.T, descr, shape string, payload []byte) *bytes.Reader {
	t.Helper()
	dict := "{'descr': '" + descr + "', 'fortran_order': False, 'shape': " + shape + ", }\n"
	var buf bytes.Buffer
	buf.Write(magic)
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(dict))))
	buf.WriteString(dict)
	buf.Write(payload)
	return bytes.NewReader(buf.Bytes())
}

func TestRead_NumericDTypes(t *testing.T) {
	f64 := make([]byte, 16)
	binary.LittleEndian.PutUint64(f64, math.Float64bits(1.5))
	binary.LittleEndian.PutUint64(f64[8:], math.Float64bits(-2))

	i64be := make([]byte, 8)
	neg7 := int64(-7)
	binary.BigEndian.PutUint64(i64be, uint64(neg7))

	tests := []struct {
		name    string
		descr   string
		shape   string
		payload []byte
		want    []float32
	}{
		{"float64", "<f8", "(2,)", f64, []float32{1.5, -2}},
		{"uint8", "|u1", "(3,)", []byte{0, 128, 255}, []float32{0, 128, 255}},
		{"int8", "|i1", "(1,)", []byte{0xff}, []float32{-1}},
		{"bool", "|b1", "(2,)", []byte{1, 0}, []float32{1, 0}},
		{"int64 big endian", ">i8", "(1,)", i64be, []float32{-7}},
		{"int32", "<i4", "(1, 1)", []byte{5, 0, 0, 0}, []float32{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr, err := Read(rawNPY(t, tt.descr, tt.shape, tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, arr.Floats)
			assert.Equal(t, len(tt.want), arr.Len())
		})
	}
}

func TestRead_BytesDType(t *testing.T) {
	arr, err := Read(rawNPY(t, "|S3", "(2,)", []byte("ab\x00xyz")))
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "xyz"}, arr.Strings)
}

func TestRead_Unsupported(t *testing.T) {
	_, err := Read(rawNPY(t, "|O", "(1,)", nil))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Read(rawNPY(t, "<f2", "(1,)", []byte{0, 0}))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Read(rawNPY(t, "<U-1", "(1,)", nil))
	assert.ErrorIs(t, err, ErrUnsupported)

	fortran := "{'descr': '<f4', 'fortran_order': True, 'shape': (1,), }\n"
	var buf bytes.Buffer
	buf.Write(magic)
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(fortran))))
	buf.WriteString(fortran)
	buf.Write([]byte{0, 0, 0, 0})
	_, err = Read(&buf)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestRead_Truncated(t *testing.T) {
	_, err := Read(rawNPY(t, "<f4", "(4,)", []byte{0, 0, 0, 0}))
	assert.Error(t, err)

	_, err = Read(bytes.NewReader([]byte("not numpy")))
	assert.Error(t, err)
}

func TestRead_OversizedShape(t *testing.T) {
	tests := []struct {
		name  string
		descr string
		shape string
	}{
		{"element count overflows bytes", "<f8", "(2305843009213693952,)"},
		{"dimensions overflow", "<f4", "(4294967296, 4294967296)"},
		{"claims more than present", "<f4", "(1000000000,)"},
		{"wide strings", "<U1000000", "(1000000000000,)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(rawNPY(t, tt.descr, tt.shape, []byte{0, 0, 0, 0}))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestLoadMatrix_CorruptHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.npy")
	data, err := io.ReadAll(rawNPY(t, "<f8", "(2305843009213693952,)", nil))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = LoadMatrix(path)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.npy"))
	assert.Error(t, err)
}

func TestFormatShape(t *testing.T) {
	assert.Equal(t, "()", formatShape(nil))
	assert.Equal(t, "(4,)", formatShape([]int{4}))
	assert.Equal(t, "(4, 8)", formatShape([]int{4, 8}))
}
