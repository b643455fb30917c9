package tensor

import (
	"fmt"
	"math"
)

// Matrix is an immutable row-major table of float32 values. Arrays with more
// than two dimensions are flattened so that every row holds the trailing
// dimensions contiguously.
type Matrix struct {
	rows, cols int
	data       []float32
}

// New builds a rows x cols matrix over data. The slice is not copied.
func New(rows, cols int, data []float32) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("tensor: negative shape (%d, %d)", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("tensor: %d values do not fill shape (%d, %d)", len(data), rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// FromShape builds a matrix from an N-dimensional shape: the first dimension
// becomes the rows, the product of the others the columns. A zero-dimensional
// shape is a single 1x1 row.
func FromShape(shape []int, data []float32) (*Matrix, error) {
	if len(shape) == 0 {
		return New(1, 1, data)
	}
	cols := 1
	for _, d := range shape[1:] {
		cols *= d
	}
	return New(shape[0], cols, data)
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Row returns a copy of row i. It panics if i is out of range; callers check
// bounds against Rows first.
func (m *Matrix) Row(i int) []float32 {
	out := make([]float32, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float32 { return m.data[i*m.cols+j] }

// Column returns a copy of column j.
func (m *Matrix) Column(j int) []float32 {
	out := make([]float32, m.rows)
	for i := range out {
		out[i] = m.data[i*m.cols+j]
	}
	return out
}

// Slice returns a new matrix holding columns [from, to).
func (m *Matrix) Slice(from, to int) (*Matrix, error) {
	if from < 0 || to > m.cols || from > to {
		return nil, fmt.Errorf("tensor: column range [%d, %d) outside %d columns", from, to, m.cols)
	}
	width := to - from
	data := make([]float32, m.rows*width)
	for i := 0; i < m.rows; i++ {
		copy(data[i*width:(i+1)*width], m.data[i*m.cols+from:i*m.cols+to])
	}
	return &Matrix{rows: m.rows, cols: width, data: data}, nil
}

// Values returns a copy of the underlying data.
func (m *Matrix) Values() []float32 {
	return append([]float32(nil), m.data...)
}

// Normalize returns (m - mean) / std computed column-wise. mean and std must
// hold one value per column.
func (m *Matrix) Normalize(mean, std []float32) (*Matrix, error) {
	if len(mean) != m.cols || len(std) != m.cols {
		return nil, fmt.Errorf("tensor: normalization stats have %d/%d values for %d columns", len(mean), len(std), m.cols)
	}
	data := make([]float32, len(m.data))
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			data[i*m.cols+j] = (m.data[i*m.cols+j] - mean[j]) / std[j]
		}
	}
	return &Matrix{rows: m.rows, cols: m.cols, data: data}, nil
}

// Equal reports whether both matrices have the same shape and values.
// NaN values compare equal to each other.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i, v := range m.data {
		w := o.data[i]
		if v != w && !(math.IsNaN(float64(v)) && math.IsNaN(float64(w))) {
			return false
		}
	}
	return true
}
