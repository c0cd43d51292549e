package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"
	"go.uber.org/multierr"
)

// openInput opens a plain or gzip-compressed file. Compression is detected
// from the gzip magic bytes rather than the file extension.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(f, 64*1024)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := pgzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		return &gzipFile{Reader: gz, gz: gz, f: f}, nil
	}

	return &plainFile{Reader: br, f: f}, nil
}

type gzipFile struct {
	io.Reader
	gz *pgzip.Reader
	f  *os.File
}

func (g *gzipFile) Close() error {
	return multierr.Append(g.gz.Close(), g.f.Close())
}

type plainFile struct {
	io.Reader
	f *os.File
}

func (p *plainFile) Close() error {
	return p.f.Close()
}
