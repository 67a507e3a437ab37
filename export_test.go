package tinyfs_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"path/filepath"
	"testing"

	"github.com/tinyfs-go/tinyfs"
)

func TestExportTarGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	if err := tinyfs.Format(path, 10*tinyfs.BlockSize); err != nil {
		t.Fatalf("Format: %v", err)
	}
	fsys, err := tinyfs.Mount(path)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer fsys.Unmount()

	fd, err := fsys.OpenFile("/notes")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := fsys.WriteFile(fd, []byte("exported")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	fsys.Close(fd)

	var buf bytes.Buffer
	if err := tinyfs.ExportTar(fsys, ".", &buf, tinyfs.CodecGzip); err != nil {
		t.Fatalf("ExportTar: %v", err)
	}

	gz, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	tr := tar.NewReader(gz)

	var found bool
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar.Next: %v", err)
		}
		if hdr.Name != "notes" {
			continue
		}
		found = true
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("ReadAll: %v", err)
		}
		if string(data) != "exported" {
			t.Fatalf("tar entry data = %q, want %q", data, "exported")
		}
	}
	if !found {
		t.Fatalf("exported archive did not contain notes")
	}
}

func TestExportTarUnknownCodec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	if err := tinyfs.Format(path, 4*tinyfs.BlockSize); err != nil {
		t.Fatalf("Format: %v", err)
	}
	fsys, err := tinyfs.Mount(path)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer fsys.Unmount()

	var buf bytes.Buffer
	if err := tinyfs.ExportTar(fsys, ".", &buf, tinyfs.Codec(99)); err == nil {
		t.Fatalf("ExportTar(unknown codec) succeeded, want error")
	}
}
