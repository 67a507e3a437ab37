package tinyfs_test

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/tinyfs-go/tinyfs"
)

func TestIOFSSurface(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	if err := tinyfs.Format(path, 10*tinyfs.BlockSize); err != nil {
		t.Fatalf("Format: %v", err)
	}
	fsys, err := tinyfs.Mount(path)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer fsys.Unmount()

	if err := fsys.CreateDir("/docs"); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	fd, err := fsys.OpenFile("/docs/readme")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := fsys.WriteFile(fd, []byte("contents")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	fsys.Close(fd)

	data, err := fs.ReadFile(fsys, "docs/readme")
	if err != nil {
		t.Fatalf("fs.ReadFile: %v", err)
	}
	if string(data) != "contents" {
		t.Fatalf("fs.ReadFile = %q, want %q", data, "contents")
	}

	info, err := fs.Stat(fsys, "docs")
	if err != nil {
		t.Fatalf("fs.Stat: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("fs.Stat(docs).IsDir() = false, want true")
	}

	var seen []string
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		seen = append(seen, p)
		return nil
	})
	if err != nil {
		t.Fatalf("fs.WalkDir: %v", err)
	}

	want := map[string]bool{".": true, "docs": true, "docs/readme": true}
	if len(seen) != len(want) {
		t.Fatalf("walked %v, want keys of %v", seen, want)
	}
	for _, p := range seen {
		if !want[p] {
			t.Fatalf("unexpected path %q in walk", p)
		}
	}
}

func TestOpenRejectsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	if err := tinyfs.Format(path, 4*tinyfs.BlockSize); err != nil {
		t.Fatalf("Format: %v", err)
	}
	fsys, err := tinyfs.Mount(path)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer fsys.Unmount()

	if _, err := fsys.Open("missing"); !isNotExist(err) {
		t.Fatalf("Open(missing) = %v, want fs.ErrNotExist", err)
	}
}

func isNotExist(err error) bool {
	pe, ok := err.(*fs.PathError)
	return ok && pe.Err == fs.ErrNotExist
}
