package util

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestIsGzipFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"log.xes", false},
		{"log.xes.gz", true},
		{"LOG.XES.GZ", true},
		{"details.csv", false},
	}
	for _, tt := range tests {
		if got := IsGzipFile(tt.path); got != tt.want {
			t.Errorf("IsGzipFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOpenFilePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.csv")
	if err := os.WriteFile(path, []byte("a;b;c"), 0644); err != nil {
		t.Fatal(err)
	}

	r, cleanup, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a;b;c" {
		t.Errorf("read %q", data)
	}
	if err := cleanup(); err != nil {
		t.Errorf("cleanup: %v", err)
	}
}

func TestOpenFileGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.xes.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte("<log></log>")); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	f.Close()

	r, cleanup, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<log></log>" {
		t.Errorf("read %q", data)
	}
	if err := cleanup(); err != nil {
		t.Errorf("cleanup: %v", err)
	}
}

func TestOpenFileMissing(t *testing.T) {
	if _, _, err := OpenFile(filepath.Join(t.TempDir(), "nope")); !os.IsNotExist(err) {
		t.Errorf("err = %v, want not-exist", err)
	}
}
