package tinyfs

import "encoding/binary"

// Block type tags (spec §3/§6 byte 0).
const (
	blockTypeSuper = 1
	blockTypeInode = 2
	blockTypeData  = 3
	blockTypeFree  = 4
)

const magic = 0x44

// Field offsets, named after original_source/libTinyFS.h so the layout
// traces back to the source the spec was distilled from.
const (
	offType = 0
	offMagic = 1
	offLink = 2

	offSuperSize = 4 // u32
	offSuperFree = 8 // u8

	offInodeName  = 4  // 8 bytes, NUL padded
	lenInodeName  = 8
	offInodeSize  = 12 // u24
	offInodeDir   = 15
	offInodeLinks = 16

	offDataPayload = 4
)

// linkTableCap is the number of link-table slots an inode has: the hard
// fan-out/file-size limit from spec §3.
const linkTableCap = BlockSize - offInodeLinks

// dataPayloadSize is the usable payload per data block.
const dataPayloadSize = BlockSize - offDataPayload

// superblock is the in-memory decode of block 0.
type superblock struct {
	rootInode int
	numBlocks uint32
	freeHead  int
}

func decodeSuperblock(buf []byte) (*superblock, error) {
	if err := checkMagic(buf, blockTypeSuper); err != nil {
		return nil, err
	}
	return &superblock{
		rootInode: int(buf[offLink]),
		numBlocks: binary.LittleEndian.Uint32(buf[offSuperSize : offSuperSize+4]),
		freeHead:  int(buf[offSuperFree]),
	}, nil
}

func encodeSuperblock(sb *superblock) []byte {
	buf := make([]byte, BlockSize)
	buf[offType] = blockTypeSuper
	buf[offMagic] = magic
	buf[offLink] = byte(sb.rootInode)
	binary.LittleEndian.PutUint32(buf[offSuperSize:offSuperSize+4], sb.numBlocks)
	buf[offSuperFree] = byte(sb.freeHead)
	return buf
}

// inodeBlock is the in-memory decode of an inode block.
type inodeBlock struct {
	name  [lenInodeName]byte
	size  uint32 // u24 on disk
	isDir bool
	links [linkTableCap]byte
}

func decodeInode(buf []byte) (*inodeBlock, error) {
	if err := checkMagic(buf, blockTypeInode); err != nil {
		return nil, err
	}
	ib := &inodeBlock{}
	copy(ib.name[:], buf[offInodeName:offInodeName+lenInodeName])
	ib.size = uint24(buf[offInodeSize : offInodeSize+3])
	ib.isDir = buf[offInodeDir] != 0
	copy(ib.links[:], buf[offInodeLinks:BlockSize])
	return ib, nil
}

func encodeInode(ib *inodeBlock) []byte {
	buf := make([]byte, BlockSize)
	buf[offType] = blockTypeInode
	buf[offMagic] = magic
	copy(buf[offInodeName:offInodeName+lenInodeName], ib.name[:])
	putUint24(buf[offInodeSize:offInodeSize+3], ib.size)
	if ib.isDir {
		buf[offInodeDir] = 1
	}
	copy(buf[offInodeLinks:BlockSize], ib.links[:])
	return buf
}

func decodeDataBlock(buf []byte) ([]byte, error) {
	if err := checkMagic(buf, blockTypeData); err != nil {
		return nil, err
	}
	out := make([]byte, dataPayloadSize)
	copy(out, buf[offDataPayload:BlockSize])
	return out, nil
}

// encodeDataBlock builds a data block whose payload is the first len(payload)
// bytes of payload, zero padded to dataPayloadSize. payload must be no
// longer than dataPayloadSize.
func encodeDataBlock(payload []byte) []byte {
	buf := make([]byte, BlockSize)
	buf[offType] = blockTypeData
	buf[offMagic] = magic
	copy(buf[offDataPayload:BlockSize], payload)
	return buf
}

func decodeFreeBlock(buf []byte) (next int, err error) {
	if err := checkMagic(buf, blockTypeFree); err != nil {
		return 0, err
	}
	return int(buf[offLink]), nil
}

func encodeFreeBlock(next int) []byte {
	buf := make([]byte, BlockSize)
	buf[offType] = blockTypeFree
	buf[offMagic] = magic
	buf[offLink] = byte(next)
	return buf
}

// checkMagic verifies the block header and, when wantType is nonzero,
// that the block's type tag matches. A mismatch is a fs-integrity error,
// the spec §7 row for "magic or type mismatch at mount" and its natural
// extension to every other read path, since a stray type there means the
// same kind of corruption.
func checkMagic(buf []byte, wantType byte) error {
	if len(buf) != BlockSize {
		return ErrDiskOperation
	}
	if buf[offMagic] != magic {
		return ErrFsIntegrity
	}
	if wantType != 0 && buf[offType] != wantType {
		return ErrFsIntegrity
	}
	return nil
}

func uint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// padName pads/truncates name to the inode name field width. Truncation is
// rejected earlier (spec §4.3: components must be 1..8 bytes); this is only
// ever called with an already-validated name.
func padName(name string) [lenInodeName]byte {
	var out [lenInodeName]byte
	copy(out[:], name)
	return out
}

func nameString(b [lenInodeName]byte) string {
	n := lenInodeName
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}
