package tinyfs

// writeContent replaces inodeIdx's entire content with data (spec §4.4).
// Every block currently linked from the inode is released first; then
// data is chunked into dataPayloadSize pieces, each written to a freshly
// acquired block and linked in, with the inode persisted after every
// single chunk so a crash mid-write leaves a mountable prefix.
func (fs *FS) writeContent(inodeIdx int, data []byte) error {
	ib, err := fs.readInode(inodeIdx)
	if err != nil {
		return err
	}

	for i, v := range ib.links {
		if v == 0 {
			continue
		}
		if err := fs.release(int(v)); err != nil {
			return err
		}
		ib.links[i] = 0
	}
	ib.size = 0
	if err := fs.writeInode(inodeIdx, ib); err != nil {
		return err
	}

	written := 0
	for slot := 0; slot < linkTableCap && written < len(data); slot++ {
		end := written + dataPayloadSize
		if end > len(data) {
			end = len(data)
		}

		blockIdx, err := fs.acquire()
		if err != nil {
			return err
		}
		if err := fs.dev.WriteBlock(blockIdx, encodeDataBlock(data[written:end])); err != nil {
			return err
		}

		ib.links[slot] = byte(blockIdx)
		written = end
		ib.size = uint32(written)
		if err := fs.writeInode(inodeIdx, ib); err != nil {
			return err
		}
	}

	if written < len(data) {
		return ErrFileSizeLimit
	}
	return nil
}

// readByteAt returns the byte at offset within inodeIdx's content. Reading
// at or past the inode's recorded size is ErrEOF (spec §4.4).
func (fs *FS) readByteAt(inodeIdx, offset int) (byte, error) {
	ib, err := fs.readInode(inodeIdx)
	if err != nil {
		return 0, err
	}
	if offset < 0 || offset >= int(ib.size) {
		return 0, ErrEOF
	}

	blockSlot := offset / dataPayloadSize
	byteOffset := offset % dataPayloadSize
	if blockSlot >= linkTableCap || ib.links[blockSlot] == 0 {
		return 0, ErrFileNotFound
	}

	buf := make([]byte, BlockSize)
	if err := fs.dev.ReadBlock(int(ib.links[blockSlot]), buf); err != nil {
		return 0, err
	}
	payload, err := decodeDataBlock(buf)
	if err != nil {
		return 0, ErrFileNotFound
	}
	return payload[byteOffset], nil
}

// renameInode overwrites inodeIdx's name field. Parent directories
// reference an inode by block index, not by name, so nothing else needs
// updating (spec §4.5).
func (fs *FS) renameInode(inodeIdx int, newName string) error {
	if len(newName) < 1 || len(newName) > lenInodeName {
		return ErrFilename
	}
	ib, err := fs.readInode(inodeIdx)
	if err != nil {
		return err
	}
	ib.name = padName(newName)
	return fs.writeInode(inodeIdx, ib)
}
