package tinyfs

import (
	"fmt"
	"io"
)

// OpenFile resolves path, creating a file inode if it does not exist yet
// (spec §6 `open`), and returns a descriptor valid until Close, DeleteFile,
// or Unmount. Opening the same path twice succeeds twice, returning two
// distinct descriptors that both name the same inode (spec §8 scenario 3).
func (fs *FS) OpenFile(path string) (int, error) {
	entryIdx, err := fs.table.alloc(path)
	if err != nil {
		return 0, err
	}

	inodeIdx, err := fs.resolve(path, true, false)
	if err != nil {
		fs.table.free(entryIdx)
		return 0, err
	}

	fs.table.entries[entryIdx].inode = inodeIdx
	return fs.table.entries[entryIdx].fd, nil
}

// Close marks fd unused. The descriptor is never reused.
func (fs *FS) Close(fd int) error {
	i := fs.table.find(fd)
	if i < 0 {
		return ErrFdNotFound
	}
	fs.table.free(i)
	return nil
}

// WriteFile replaces fd's entire content with data (spec §6 `write`).
// On success the cursor resets to 0.
func (fs *FS) WriteFile(fd int, data []byte) error {
	i := fs.table.find(fd)
	if i < 0 {
		return ErrFdNotFound
	}
	if err := fs.writeContent(fs.table.entries[i].inode, data); err != nil {
		return err
	}
	fs.table.entries[i].offset = 0
	return nil
}

// DeleteFile releases fd's data blocks and inode block, clears the parent
// directory's link, and leaves fd's table entry unused (spec §6 `delete`).
func (fs *FS) DeleteFile(fd int) error {
	i := fs.table.find(fd)
	if i < 0 {
		return ErrFdNotFound
	}
	entry := fs.table.entries[i]

	if err := fs.writeContent(entry.inode, nil); err != nil {
		return err
	}
	if err := fs.deleteInode(entry.path, entry.inode); err != nil {
		return err
	}

	fs.table.free(i)
	return nil
}

// ReadByte reads the byte at fd's cursor and advances it (spec §6
// `read_byte`). Reading at or past the file's size is ErrEOF.
func (fs *FS) ReadByte(fd int) (byte, error) {
	i := fs.table.find(fd)
	if i < 0 {
		return 0, ErrFdNotFound
	}
	entry := &fs.table.entries[i]

	b, err := fs.readByteAt(entry.inode, entry.offset)
	if err != nil {
		return 0, err
	}
	entry.offset++
	return b, nil
}

// Seek assigns fd's cursor unconditionally (spec §6 `seek`). Negative or
// past-end offsets are not rejected here; the next ReadByte surfaces
// ErrEOF if the cursor turns out to be out of range (spec §4.4, §9).
func (fs *FS) Seek(fd, offset int) error {
	i := fs.table.find(fd)
	if i < 0 {
		return ErrFdNotFound
	}
	fs.table.entries[i].offset = offset
	return nil
}

// Rename overwrites fd's inode name field (spec §6 `rename`). newName must
// be 1..8 bytes. Parent directories reference inodes by block index, so no
// directory entry needs updating.
func (fs *FS) Rename(fd int, newName string) error {
	i := fs.table.find(fd)
	if i < 0 {
		return ErrFdNotFound
	}
	return fs.renameInode(fs.table.entries[i].inode, newName)
}

// CreateDir creates an empty directory at path (spec §6 `create_dir`).
func (fs *FS) CreateDir(path string) error {
	_, err := fs.resolve(path, true, true)
	return err
}

// RemoveDir removes the empty directory at path (spec §6 `remove_dir`).
// ErrDirNonEmpty if any link-table slot is occupied.
func (fs *FS) RemoveDir(path string) error {
	dirIdx, err := fs.resolve(path, false, true)
	if err != nil {
		return err
	}

	dirBlock, err := fs.readInode(dirIdx)
	if err != nil {
		return err
	}
	for _, v := range dirBlock.links {
		if v != 0 {
			return ErrDirNonEmpty
		}
	}

	return fs.deleteInode(path, dirIdx)
}

// RemoveAll recursively removes path and everything under it (spec §6
// `remove_all`). Unlike the original, errors from recursive sub-calls
// propagate instead of being discarded (spec §9, resolved in DESIGN.md).
// The root directory itself is never deleted, only emptied.
func (fs *FS) RemoveAll(path string) error {
	dirIdx, err := fs.resolve(path, false, true)
	if err != nil {
		return err
	}

	dirBlock, err := fs.readInode(dirIdx)
	if err != nil {
		return err
	}

	for i, v := range dirBlock.links {
		if v == 0 {
			continue
		}
		child, err := fs.readInode(int(v))
		if err != nil {
			return err
		}

		if child.isDir {
			if err := fs.RemoveAll(joinPath(path, nameString(child.name))); err != nil {
				return err
			}
		} else {
			if err := fs.writeContent(int(v), nil); err != nil {
				return err
			}
			if err := fs.release(int(v)); err != nil {
				return err
			}
		}
		dirBlock.links[i] = 0
	}

	if err := fs.writeInode(dirIdx, dirBlock); err != nil {
		return err
	}

	if dirIdx != rootInodeIndex {
		return fs.RemoveDir(path)
	}
	return nil
}

// ListAll writes the tree rooted at "/" to w, one entry per line, files
// before directories within each level (spec §6 `list_all`). This is the
// Go-shaped form of the original's stdout-only tfs_readdir.
func (fs *FS) ListAll(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "(d)\t/"); err != nil {
		return ErrDiskOperation
	}
	return fs.listTree(w, "/", rootInodeIndex)
}

func (fs *FS) listTree(w io.Writer, path string, idx int) error {
	dirBlock, err := fs.readInode(idx)
	if err != nil {
		return err
	}

	for _, v := range dirBlock.links {
		if v == 0 {
			continue
		}
		child, err := fs.readInode(int(v))
		if err != nil {
			return err
		}
		if !child.isDir {
			if _, err := fmt.Fprintf(w, "(f)\t%s\n", joinPath(path, nameString(child.name))); err != nil {
				return ErrDiskOperation
			}
		}
	}

	for _, v := range dirBlock.links {
		if v == 0 {
			continue
		}
		child, err := fs.readInode(int(v))
		if err != nil {
			return err
		}
		if child.isDir {
			childPath := joinPath(path, nameString(child.name))
			if _, err := fmt.Fprintf(w, "(d)\t%s\n", childPath); err != nil {
				return ErrDiskOperation
			}
			if err := fs.listTree(w, childPath, int(v)); err != nil {
				return err
			}
		}
	}

	return nil
}

// joinPath appends name as a new final component of dir.
func joinPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
