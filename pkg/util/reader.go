// Package util holds small file helpers shared by the input loaders.
package util

import (
	"compress/gzip"
	"io"
	"os"
	"strings"
)

// IsGzipFile reports whether the path names a gzip-compressed file.
func IsGzipFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

// OpenFile opens an input file, decompressing transparently when the
// path carries a .gz suffix. The returned cleanup closes the whole
// reader chain and must be called once reading is done.
func OpenFile(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	if !IsGzipFile(path) {
		return file, file.Close, nil
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	cleanup := func() error {
		gz.Close()
		return file.Close()
	}
	return gz, cleanup, nil
}
