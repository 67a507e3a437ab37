package tinyfs_test

import (
	"path/filepath"
	"testing"

	"github.com/tinyfs-go/tinyfs"
)

func TestOpenDeviceCreatesZeroFilledImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	dev, err := tinyfs.OpenDevice(path, 4*tinyfs.BlockSize)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	defer dev.Close()

	buf := make([]byte, tinyfs.BlockSize)
	if err := dev.ReadBlock(2, buf); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("expected a freshly created block to be zero filled")
		}
	}
}

func TestOpenDeviceRejectsUndersizedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	if _, err := tinyfs.OpenDevice(path, tinyfs.BlockSize-1); err == nil {
		t.Fatalf("OpenDevice(undersized) succeeded, want error")
	}
}

func TestWriteBlockThenReadBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	dev, err := tinyfs.OpenDevice(path, 4*tinyfs.BlockSize)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	defer dev.Close()

	want := make([]byte, tinyfs.BlockSize)
	for i := range want {
		want[i] = byte(i)
	}
	if err := dev.WriteBlock(1, want); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	got := make([]byte, tinyfs.BlockSize)
	if err := dev.ReadBlock(1, got); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("read back mismatched write")
	}
}

func TestReadWriteBlockRejectWrongLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tfs")
	dev, err := tinyfs.OpenDevice(path, 4*tinyfs.BlockSize)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	defer dev.Close()

	if err := dev.WriteBlock(0, make([]byte, 10)); err == nil {
		t.Fatalf("WriteBlock(wrong length) succeeded, want error")
	}
	if err := dev.ReadBlock(0, make([]byte, 10)); err == nil {
		t.Fatalf("ReadBlock(wrong length) succeeded, want error")
	}
}
