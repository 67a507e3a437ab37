package tinyfs

import (
	"path/filepath"
	"testing"
)

func TestAcquireReleaseLIFO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	if err := Format(path, 10*BlockSize); err != nil {
		t.Fatalf("Format: %v", err)
	}
	fsys, err := Mount(path)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer fsys.Unmount()

	a, err := fsys.acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	b, err := fsys.acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if a == b {
		t.Fatalf("acquire returned the same block twice: %d", a)
	}

	if err := fsys.dev.WriteBlock(a, encodeDataBlock(nil)); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if err := fsys.dev.WriteBlock(b, encodeDataBlock(nil)); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	if err := fsys.release(b); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := fsys.release(a); err != nil {
		t.Fatalf("release: %v", err)
	}

	// Most recently released comes back first.
	got, err := fsys.acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if got != a {
		t.Fatalf("acquire after release = %d, want %d (LIFO order)", got, a)
	}
}

func TestReleaseRejectsBlockZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	if err := Format(path, 10*BlockSize); err != nil {
		t.Fatalf("Format: %v", err)
	}
	fsys, err := Mount(path)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer fsys.Unmount()

	if err := fsys.release(0); err != ErrInvalidBlock {
		t.Fatalf("release(0) = %v, want ErrInvalidBlock", err)
	}
}

func TestAcquireFailsWhenFreeListExhausted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	if err := Format(path, 2*BlockSize); err != nil { // superblock + root, no free blocks
		t.Fatalf("Format: %v", err)
	}
	fsys, err := Mount(path)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer fsys.Unmount()

	if _, err := fsys.acquire(); err != ErrFileSizeLimit {
		t.Fatalf("acquire on exhausted list = %v, want ErrFileSizeLimit", err)
	}
}
