package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ruflab/simple-shapes-dataset/pkg/tensor"
)

var magic = []byte("\x93NUMPY")

var (
	// ErrUnsupported is returned for dtypes or layouts this package cannot decode.
	ErrUnsupported = errors.New("npy: unsupported array")
	// ErrCorrupt is returned when the header does not describe the data that follows.
	ErrCorrupt = errors.New("npy: corrupt array")
)

// preallocLimit caps the buffer reserved up front from a header's claimed size.
const preallocLimit = 64 << 20

// Array is a decoded .npy array. Exactly one of Floats or Strings is set,
// depending on the dtype.
type Array struct {
	Shape   []int
	DType   string
	Floats  []float32
	Strings []string
}

// Len returns the number of elements.
func (a *Array) Len() int {
	n, _ := elements(a.Shape)
	return n
}

// Rows returns the size of the first dimension, or 1 for a scalar.
func (a *Array) Rows() int {
	if len(a.Shape) == 0 {
		return 1
	}
	return a.Shape[0]
}

// Matrix returns the numeric array as a matrix with one row per entry of the
// first dimension.
func (a *Array) Matrix() (*tensor.Matrix, error) {
	if a.Strings != nil {
		return nil, fmt.Errorf("%w: dtype %s is not numeric", ErrUnsupported, a.DType)
	}
	return tensor.FromShape(a.Shape, a.Floats)
}

// ReadFile reads the .npy file at path.
func ReadFile(path string) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	arr, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return arr, nil
}

// LoadMatrix reads a numeric .npy file as a matrix.
func LoadMatrix(path string) (*tensor.Matrix, error) {
	arr, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return arr.Matrix()
}

// Read decodes an array from r.
func Read(r io.Reader) (*Array, error) {
	var pre [8]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return nil, fmt.Errorf("npy: reading preamble: %w", err)
	}
	if !bytes.Equal(pre[:6], magic) {
		return nil, errors.New("npy: bad magic string")
	}

	var headerLen int
	switch major := pre[6]; major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("npy: reading header length: %w", err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("npy: reading header length: %w", err)
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("%w: format version %d", ErrUnsupported, major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("npy: reading header: %w", err)
	}
	h, err := parseHeader(string(header))
	if err != nil {
		return nil, err
	}
	if h.fortran {
		return nil, fmt.Errorf("%w: fortran order", ErrUnsupported)
	}

	dt, err := parseDType(h.descr)
	if err != nil {
		return nil, err
	}

	arr := &Array{Shape: h.shape, DType: h.descr}
	n, ok := elements(h.shape)
	if !ok || (dt.size > 0 && n > math.MaxInt/dt.size) {
		return nil, fmt.Errorf("%w: shape %v of %s overflows", ErrCorrupt, h.shape, h.descr)
	}
	raw, err := readPayload(r, n*dt.size)
	if err != nil {
		return nil, fmt.Errorf("npy: reading %d elements: %w", n, err)
	}

	if dt.kind == 'U' || dt.kind == 'S' {
		arr.Strings = decodeStrings(raw, n, dt)
		return arr, nil
	}
	arr.Floats, err = decodeNumbers(raw, n, dt)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// elements multiplies the dimensions, reporting false on overflow.
func elements(shape []int) (int, bool) {
	n := 1
	for _, d := range shape {
		if d != 0 && n > math.MaxInt/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// readPayload reads exactly size bytes. Memory grows with the bytes actually
// present, so a header claiming more data than the file holds fails with
// ErrCorrupt instead of reserving the claimed size.
func readPayload(r io.Reader, size int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(min(size, preallocLimit))
	if _, err := buf.ReadFrom(io.LimitReader(r, int64(size))); err != nil {
		return nil, err
	}
	if buf.Len() != size {
		return nil, fmt.Errorf("%w: %d of %d payload bytes present", ErrCorrupt, buf.Len(), size)
	}
	return buf.Bytes(), nil
}

type header struct {
	descr   string
	fortran bool
	shape   []int
}

var (
	descrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

func parseHeader(s string) (header, error) {
	var h header
	m := descrRe.FindStringSubmatch(s)
	if m == nil {
		return h, fmt.Errorf("%w: header without a plain descr: %q", ErrUnsupported, s)
	}
	h.descr = m[1]

	m = fortranRe.FindStringSubmatch(s)
	if m == nil {
		return h, fmt.Errorf("npy: header without fortran_order: %q", s)
	}
	h.fortran = m[1] == "True"

	m = shapeRe.FindStringSubmatch(s)
	if m == nil {
		return h, fmt.Errorf("npy: header without shape: %q", s)
	}
	h.shape = []int{}
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "L"))
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 {
			return h, fmt.Errorf("npy: invalid dimension %q", part)
		}
		h.shape = append(h.shape, d)
	}
	return h, nil
}

type dtype struct {
	order binary.ByteOrder
	kind  byte
	size  int // bytes per element
	width int // characters for U and S
}

func parseDType(descr string) (dtype, error) {
	if len(descr) < 2 {
		return dtype{}, fmt.Errorf("%w: dtype %q", ErrUnsupported, descr)
	}
	dt := dtype{order: binary.LittleEndian}
	rest := descr
	switch descr[0] {
	case '<', '=', '|':
		rest = descr[1:]
	case '>':
		dt.order = binary.BigEndian
		rest = descr[1:]
	}
	dt.kind = rest[0]
	n, err := strconv.Atoi(rest[1:])
	if err != nil || n < 0 {
		return dtype{}, fmt.Errorf("%w: dtype %q", ErrUnsupported, descr)
	}

	switch dt.kind {
	case 'f':
		if n != 4 && n != 8 {
			return dtype{}, fmt.Errorf("%w: dtype %q", ErrUnsupported, descr)
		}
		dt.size = n
	case 'i', 'u':
		if n != 1 && n != 2 && n != 4 && n != 8 {
			return dtype{}, fmt.Errorf("%w: dtype %q", ErrUnsupported, descr)
		}
		dt.size = n
	case 'b':
		if n != 1 {
			return dtype{}, fmt.Errorf("%w: dtype %q", ErrUnsupported, descr)
		}
		dt.size = 1
	case 'U':
		dt.width, dt.size = n, 4*n
	case 'S':
		dt.width, dt.size = n, n
	default:
		return dtype{}, fmt.Errorf("%w: dtype %q", ErrUnsupported, descr)
	}
	return dt, nil
}

func decodeNumbers(raw []byte, n int, dt dtype) ([]float32, error) {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		b := raw[i*dt.size : (i+1)*dt.size]
		switch {
		case dt.kind == 'f' && dt.size == 4:
			out[i] = math.Float32frombits(dt.order.Uint32(b))
		case dt.kind == 'f' && dt.size == 8:
			out[i] = float32(math.Float64frombits(dt.order.Uint64(b)))
		case dt.kind == 'b', dt.kind == 'u' && dt.size == 1:
			out[i] = float32(b[0])
		case dt.kind == 'i' && dt.size == 1:
			out[i] = float32(int8(b[0]))
		case dt.kind == 'i' && dt.size == 2:
			out[i] = float32(int16(dt.order.Uint16(b)))
		case dt.kind == 'u' && dt.size == 2:
			out[i] = float32(dt.order.Uint16(b))
		case dt.kind == 'i' && dt.size == 4:
			out[i] = float32(int32(dt.order.Uint32(b)))
		case dt.kind == 'u' && dt.size == 4:
			out[i] = float32(dt.order.Uint32(b))
		case dt.kind == 'i' && dt.size == 8:
			out[i] = float32(int64(dt.order.Uint64(b)))
		case dt.kind == 'u' && dt.size == 8:
			out[i] = float32(dt.order.Uint64(b))
		default:
			return nil, fmt.Errorf("%w: %c%d", ErrUnsupported, dt.kind, dt.size)
		}
	}
	return out, nil
}

func decodeStrings(raw []byte, n int, dt dtype) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		b := raw[i*dt.size : (i+1)*dt.size]
		if dt.kind == 'S' {
			out[i] = string(bytes.TrimRight(b, "\x00"))
			continue
		}
		runes := make([]rune, 0, dt.width)
		for j := 0; j < dt.width; j++ {
			r := rune(dt.order.Uint32(b[j*4:]))
			if r == 0 {
				break
			}
			runes = append(runes, r)
		}
		out[i] = string(runes)
	}
	return out
}
