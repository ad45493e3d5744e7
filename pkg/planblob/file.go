package planblob

import (
	"fmt"
	"io"
	"os"

	"github.com/samcharles93/tiler/internal/tiling"
)

// WriteFile encodes p and writes it to path.
func WriteFile(path string, p *tiling.Plan) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeFull(f, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes the blob stored at path. The file is memory mapped where
// the platform allows it and read with ReadAt otherwise.
func ReadFile(path string) (*tiling.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() < int64(Size) {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrCorruptBlob, path, st.Size())
	}

	if data, unmap, err := mapFile(f, Size); err == nil {
		defer unmap()
		return Decode(data)
	}
	data, err := readAllAt(f, Size)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Read decodes a blob from r.
func Read(r io.Reader) (*tiling.Plan, error) {
	data := make([]byte, Size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	return Decode(data)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func writeFull(f *os.File, p []byte) error {
	for len(p) > 0 {
		n, err := f.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
