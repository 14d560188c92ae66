package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/sbinet/npyio/npz"
)

// Read reads all the arrays of the bundle file in memory.
func Read(path string) (Bundle, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Bundle{}, fmt.Errorf("could not find '%s': %w", path, ErrNotFound)
		}
		return Bundle{}, fmt.Errorf("could not access '%s': %v: %w", path, err, ErrFormat)
	}

	r, err := npz.Open(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("could not open '%s': %v: %w", path, err, ErrFormat)
	}
	defer r.Close()

	keys := make(map[string]bool)
	for _, k := range r.Keys() {
		keys[strings.TrimSuffix(k, ".npy")] = true
	}

	var b Bundle
	for _, name := range Names {
		if !keys[name] {
			return Bundle{}, fmt.Errorf("'%s' has no array '%s': %w", path, name, ErrMissingArray)
		}
		a, err := readArray(r, name)
		if err != nil {
			return Bundle{}, fmt.Errorf("could not read array '%s' of '%s': %v: %w", name, path, err, ErrFormat)
		}
		b.set(name, a)
	}

	if err := b.Validate(); err != nil {
		return Bundle{}, fmt.Errorf("invalid bundle '%s': %w", path, err)
	}
	return b, nil
}

func readArray(r *npz.Reader, name string) (Array, error) {
	entry := name + ".npy"
	hdr := r.Header(entry)
	if hdr == nil {
		return Array{}, fmt.Errorf("no npy header for '%s'", entry)
	}
	descr := hdr.Descr
	if descr.Fortran {
		return Array{}, fmt.Errorf("fortran order is not supported")
	}
	shape := descr.Shape
	if len(shape) == 0 {
		return Array{}, fmt.Errorf("scalar arrays are not supported")
	}

	var (
		data []float64
		err  error
	)
	switch kind := strings.TrimLeft(descr.Type, "<>|="); kind {
	case "f8":
		err = r.Read(entry, &data)
	case "f4":
		var v []float32
		err = r.Read(entry, &v)
		data = widen(len(v), func(i int) float64 { return float64(v[i]) })
	case "i8":
		var v []int64
		err = r.Read(entry, &v)
		data = widen(len(v), func(i int) float64 { return float64(v[i]) })
	case "i4":
		var v []int32
		err = r.Read(entry, &v)
		data = widen(len(v), func(i int) float64 { return float64(v[i]) })
	case "i2":
		var v []int16
		err = r.Read(entry, &v)
		data = widen(len(v), func(i int) float64 { return float64(v[i]) })
	case "i1":
		var v []int8
		err = r.Read(entry, &v)
		data = widen(len(v), func(i int) float64 { return float64(v[i]) })
	case "u1":
		var v []uint8
		err = r.Read(entry, &v)
		data = widen(len(v), func(i int) float64 { return float64(v[i]) })
	case "u2":
		var v []uint16
		err = r.Read(entry, &v)
		data = widen(len(v), func(i int) float64 { return float64(v[i]) })
	case "u4":
		var v []uint32
		err = r.Read(entry, &v)
		data = widen(len(v), func(i int) float64 { return float64(v[i]) })
	default:
		return Array{}, fmt.Errorf("unsupported dtype '%s'", descr.Type)
	}
	if err != nil {
		return Array{}, err
	}
	return NewArray(data, shape...)
}

func widen(n int, at func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = at(i)
	}
	return out
}

// Save writes the bundle as an npz archive of little endian float64 arrays.
func Save(path string, b Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create '%s': %w", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, name := range Names {
		w, err := zw.Create(name + ".npy")
		if err != nil {
			return fmt.Errorf("could not add '%s' to '%s': %w", name, path, err)
		}
		if _, err := w.Write(encode(b.get(name))); err != nil {
			return fmt.Errorf("could not write '%s' to '%s': %w", name, path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("could not close '%s': %w", path, err)
	}
	return nil
}

var magic = []byte("\x93NUMPY")

// encode renders the array in the npy 1.0 format.
func encode(a Array) []byte {
	dims := make([]string, len(a.Shape))
	for i, d := range a.Shape {
		dims[i] = fmt.Sprintf("%d", d)
	}
	shape := strings.Join(dims, ", ")
	if len(dims) == 1 {
		shape += ","
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%s), }", shape)
	// magic, version and header length take 10 bytes, the total must align to 64.
	pad := 64 - (10+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"

	buf := new(bytes.Buffer)
	buf.Write(magic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	body := make([]byte, 8*len(a.Data))
	for i, v := range a.Data {
		binary.LittleEndian.PutUint64(body[8*i:], math.Float64bits(v))
	}
	buf.Write(body)
	return buf.Bytes()
}
