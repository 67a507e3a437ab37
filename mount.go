package tinyfs

import "log"

// rootInodeIndex is the fixed block index of the root inode (spec §3).
const rootInodeIndex = 1

// FS is one mounted TinyFS image. spec §9 flags the original's
// module-level mount handle and open-file table as hidden global state
// that a faithful rewrite should encapsulate in a single value produced
// by mount and consumed by every operation; FS is that value. Nothing
// about the on-disk format depends on there being only one FS alive at a
// time, so unlike the original, multiple images may be mounted
// concurrently in one process, each through its own *FS.
type FS struct {
	dev   *Device
	table *openFileTable
}

// FormatOption configures Format. Modeled on the functional-options shape
// used for the teacher's Writer (WriterOption).
type FormatOption func(*formatConfig)

type formatConfig struct{}

// MountOption configures Mount.
type MountOption func(*mountConfig)

type mountConfig struct{}

// Format writes a fresh image to path: a superblock at block 0, a root
// directory inode at block 1, and every remaining block threaded onto
// the free list (spec §4.7). sizeBytes must yield a block count in
// [2, 255].
func Format(path string, sizeBytes int, opts ...FormatOption) error {
	cfg := &formatConfig{}
	for _, o := range opts {
		o(cfg)
	}

	numBlocks := sizeBytes / BlockSize
	if numBlocks < 2 || numBlocks > 255 {
		return ErrInvalidFsSize
	}

	dev, err := OpenDevice(path, sizeBytes)
	if err != nil {
		return err
	}
	defer dev.Close()

	freeHead := 0
	if numBlocks > 2 {
		freeHead = 2
	}
	sb := &superblock{rootInode: rootInodeIndex, numBlocks: uint32(numBlocks), freeHead: freeHead}
	if err := dev.WriteBlock(0, encodeSuperblock(sb)); err != nil {
		return err
	}

	root := &inodeBlock{name: padName("/"), isDir: true}
	if err := dev.WriteBlock(rootInodeIndex, encodeInode(root)); err != nil {
		return err
	}

	for b := 2; b < numBlocks; b++ {
		next := 0
		if b != numBlocks-1 {
			next = b + 1
		}
		if err := dev.WriteBlock(b, encodeFreeBlock(next)); err != nil {
			return err
		}
	}

	return nil
}

// Mount opens path, verifies every block's magic and the superblock's
// block count, and returns a ready-to-use FS (spec §4.7).
func Mount(path string, opts ...MountOption) (*FS, error) {
	cfg := &mountConfig{}
	for _, o := range opts {
		o(cfg)
	}

	dev, err := OpenDevice(path, 0)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, BlockSize)
	if err := dev.ReadBlock(0, buf); err != nil {
		dev.Close()
		return nil, err
	}
	if buf[offType] != blockTypeSuper {
		dev.Close()
		log.Printf("tinyfs: mount %s: first block is not a superblock", path)
		return nil, ErrFsIntegrity
	}
	sb, err := decodeSuperblock(buf)
	if err != nil {
		dev.Close()
		return nil, err
	}
	if sb.numBlocks < 2 || sb.numBlocks > 255 {
		dev.Close()
		log.Printf("tinyfs: mount %s: invalid block count %d", path, sb.numBlocks)
		return nil, ErrInvalidFsSize
	}

	for b := 0; b < int(sb.numBlocks); b++ {
		if err := dev.ReadBlock(b, buf); err != nil {
			dev.Close()
			return nil, err
		}
		if buf[offMagic] != magic {
			dev.Close()
			log.Printf("tinyfs: mount %s: bad magic at block %d", path, b)
			return nil, ErrFsIntegrity
		}
	}

	return &FS{dev: dev, table: newOpenFileTable()}, nil
}

// Unmount closes the backing device and releases the open-file table.
// It is safe to call at most once per FS.
func (fs *FS) Unmount() error {
	fs.table = nil
	return fs.dev.Close()
}
