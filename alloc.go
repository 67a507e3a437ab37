package tinyfs

// acquire pops the head of the free list and returns its block index. The
// returned block is uninitialized on disk; the caller must write its real
// contents before it is reachable from anywhere else (spec §4.2).
func (fs *FS) acquire() (int, error) {
	buf := make([]byte, BlockSize)
	if err := fs.dev.ReadBlock(0, buf); err != nil {
		return 0, err
	}
	sb, err := decodeSuperblock(buf)
	if err != nil {
		return 0, err
	}
	if sb.freeHead == 0 {
		return 0, ErrFileSizeLimit
	}

	head := sb.freeHead
	if err := fs.dev.ReadBlock(head, buf); err != nil {
		return 0, err
	}
	next, err := decodeFreeBlock(buf)
	if err != nil {
		return 0, err
	}

	sb.freeHead = next
	if err := fs.dev.WriteBlock(0, encodeSuperblock(sb)); err != nil {
		return 0, err
	}
	return head, nil
}

// release pushes block i back onto the free list. The payload write
// happens before the superblock write: a crash between the two leaks a
// block (recoverable by reformatting) rather than leaving the free-list
// head pointing at a block that was never actually freed. This order
// must not be swapped (spec §4.2, §5).
func (fs *FS) release(i int) error {
	if i == 0 {
		return ErrInvalidBlock
	}

	buf := make([]byte, BlockSize)
	if err := fs.dev.ReadBlock(0, buf); err != nil {
		return err
	}
	sb, err := decodeSuperblock(buf)
	if err != nil {
		return err
	}

	if err := fs.dev.WriteBlock(i, encodeFreeBlock(sb.freeHead)); err != nil {
		return err
	}

	sb.freeHead = i
	if err := fs.dev.WriteBlock(0, encodeSuperblock(sb)); err != nil {
		return err
	}
	return nil
}
