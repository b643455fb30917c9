package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ruflab/simple-shapes-dataset/pkg/tensor"
)

// headerAlign is the alignment of the data section required by the format.
const headerAlign = 64

// WriteFloat32 writes a little-endian float32 array of the given shape.
func WriteFloat32(w io.Writer, shape []int, data []float32) error {
	if n := count(shape); n != len(data) {
		return fmt.Errorf("npy: %d values do not fill shape %v", len(data), shape)
	}
	if err := writeHeader(w, "<f4", shape); err != nil {
		return err
	}
	buf := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	_, err := w.Write(buf)
	return err
}

// WriteStrings writes a one-dimensional unicode array sized to the longest
// string.
func WriteStrings(w io.Writer, values []string) error {
	width := 1
	for _, s := range values {
		width = max(width, utf8.RuneCountInString(s))
	}
	if err := writeHeader(w, "<U"+strconv.Itoa(width), []int{len(values)}); err != nil {
		return err
	}
	buf := make([]byte, 4*width*len(values))
	for i, s := range values {
		j := 0
		for _, r := range s {
			binary.LittleEndian.PutUint32(buf[(i*width+j)*4:], uint32(r))
			j++
		}
	}
	_, err := w.Write(buf)
	return err
}

// WriteMatrixFile writes m to path as a 2-D float32 array.
func WriteMatrixFile(path string, m *tensor.Matrix) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteFloat32(w, []int{m.Rows(), m.Cols()}, m.Values())
	})
}

// WriteFloat32File writes data to path with the given shape.
func WriteFloat32File(path string, shape []int, data []float32) error {
	return writeFile(path, func(w io.Writer) error { return WriteFloat32(w, shape, data) })
}

// WriteStringsFile writes values to path as a unicode array.
func WriteStringsFile(path string, values []string) error {
	return writeFile(path, func(w io.Writer) error { return WriteStrings(w, values) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeHeader(w io.Writer, descr string, shape []int) error {
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, formatShape(shape))
	// magic(6) + version(2) + length(2) + dict + padding + '\n'
	total := 10 + len(dict) + 1
	pad := (headerAlign - total%headerAlign) % headerAlign
	header := dict + strings.Repeat(" ", pad) + "\n"

	var buf bytes.Buffer
	buf.Write(magic)
	buf.Write([]byte{1, 0})
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	buf.WriteString(header)
	_, err := w.Write(buf.Bytes())
	return err
}

func formatShape(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func count(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
