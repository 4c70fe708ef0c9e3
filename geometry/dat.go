package geometry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"planetview/core"
)

// ReadVertices parses whitespace separated floats. There is no header or
// count prefix; empty input yields an empty slice.
func ReadVertices(r io.Reader) ([]float32, error) {
	var values []float32
	err := scanTokens(r, func(i int, tok string) error {
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return fmt.Errorf("vertex token %d: %w", i, err)
		}
		values = append(values, float32(v))
		return nil
	})
	return values, err
}

// ReadIndices parses whitespace separated unsigned 32-bit integers.
func ReadIndices(r io.Reader) ([]uint32, error) {
	var values []uint32
	err := scanTokens(r, func(i int, tok string) error {
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return fmt.Errorf("index token %d: %w", i, err)
		}
		values = append(values, uint32(v))
		return nil
	})
	return values, err
}

func scanTokens(r io.Reader, fn func(i int, tok string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for i := 0; scanner.Scan(); i++ {
		if err := fn(i, scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// WriteVertices writes one value per line.
func WriteVertices(w io.Writer, vertices []float32) error {
	bw := bufio.NewWriter(w)
	for _, v := range vertices {
		bw.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteIndices writes one value per line.
func WriteIndices(w io.Writer, indices []uint32) error {
	bw := bufio.NewWriter(w)
	for _, idx := range indices {
		bw.WriteString(strconv.FormatUint(uint64(idx), 10))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// LoadFiles reads a vertex file and an index file into a mesh without
// validating it.
func LoadFiles(verticesPath, indicesPath string) (*core.Mesh, error) {
	vf, err := os.Open(verticesPath)
	if err != nil {
		return nil, err
	}
	defer vf.Close()

	vertices, err := ReadVertices(vf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", verticesPath, err)
	}

	inf, err := os.Open(indicesPath)
	if err != nil {
		return nil, err
	}
	defer inf.Close()

	indices, err := ReadIndices(inf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", indicesPath, err)
	}

	return &core.Mesh{Vertices: vertices, Indices: indices}, nil
}

// SaveFiles writes mesh as a vertex file and an index file.
func SaveFiles(mesh *core.Mesh, verticesPath, indicesPath string) error {
	if err := writeFile(verticesPath, func(w io.Writer) error { return WriteVertices(w, mesh.Vertices) }); err != nil {
		return err
	}
	return writeFile(indicesPath, func(w io.Writer) error { return WriteIndices(w, mesh.Indices) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
