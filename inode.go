package tinyfs

import "strings"

// readInode reads and decodes the inode at idx. Any decode failure (wrong
// magic, wrong type tag) is surfaced as ErrFileNotFound: at this level the
// only way to reach a non-inode block is through a stale fd or a dangling
// directory link, both of which spec §7 classifies under file-not-found
// ("fd points to a block that is no longer an inode").
func (fs *FS) readInode(idx int) (*inodeBlock, error) {
	buf := make([]byte, BlockSize)
	if err := fs.dev.ReadBlock(idx, buf); err != nil {
		return nil, err
	}
	ib, err := decodeInode(buf)
	if err != nil {
		return nil, ErrFileNotFound
	}
	return ib, nil
}

func (fs *FS) writeInode(idx int, ib *inodeBlock) error {
	return fs.dev.WriteBlock(idx, encodeInode(ib))
}

// resolve walks path from the root inode, one component at a time, per
// spec §4.3. If the terminal component is missing and create is set, a new
// inode is allocated in its parent directory with the isDir flag given. A
// leading '/' is required for semantic correctness but a leading non-'/'
// byte is accepted and treated as though '/' preceded it.
func (fs *FS) resolve(path string, create, isDir bool) (int, error) {
	if len(path) > 255 {
		return 0, ErrFilename
	}

	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		if isDir {
			return rootInodeIndex, nil
		}
		// "/" as a file name: no component to resolve, same as the
		// original's zero-length-component rejection.
		return 0, ErrFilename
	}

	components := strings.Split(trimmed, "/")
	dirIdx := rootInodeIndex

	for ci, comp := range components {
		if len(comp) < 1 || len(comp) > lenInodeName {
			return 0, ErrFilename
		}

		dirBlock, err := fs.readInode(dirIdx)
		if err != nil {
			return 0, err
		}

		found, err := fs.searchDir(dirBlock, comp)
		if err != nil {
			return 0, err
		}

		last := ci == len(components)-1

		if found == 0 {
			if last && create {
				return fs.createChild(dirIdx, dirBlock, comp, isDir)
			}
			return 0, ErrFileNotFound
		}

		if last {
			if create && isDir {
				return 0, ErrDirExists
			}
			return found, nil
		}

		child, err := fs.readInode(found)
		if err != nil {
			return 0, err
		}
		if !child.isDir {
			return 0, ErrFileNotFound
		}
		dirIdx = found
	}

	return 0, ErrFileNotFound
}

// searchDir scans dirBlock's link table in order for an inode named name,
// first match wins (spec §4.3).
func (fs *FS) searchDir(dirBlock *inodeBlock, name string) (int, error) {
	for _, v := range dirBlock.links {
		if v == 0 {
			continue
		}
		child, err := fs.readInode(int(v))
		if err != nil {
			return 0, err
		}
		if nameString(child.name) == name {
			return int(v), nil
		}
	}
	return 0, nil
}

// createChild allocates a new inode named name inside the directory at
// parentIdx (whose decoded block is parent), stores it in the first free
// link slot, and persists the parent (spec §4.3 "Inode creation").
func (fs *FS) createChild(parentIdx int, parent *inodeBlock, name string, isDir bool) (int, error) {
	slot := -1
	for i, v := range parent.links {
		if v == 0 {
			slot = i
			break
		}
	}
	if slot == -1 {
		return 0, ErrFileSizeLimit
	}

	idx, err := fs.acquire()
	if err != nil {
		return 0, err
	}

	newInode := &inodeBlock{name: padName(name), isDir: isDir}
	if err := fs.writeInode(idx, newInode); err != nil {
		return 0, err
	}

	parent.links[slot] = byte(idx)
	if err := fs.writeInode(parentIdx, parent); err != nil {
		return 0, err
	}

	return idx, nil
}

// parentPath returns the path to path's containing directory.
func parentPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 {
		return "/"
	}
	return "/" + trimmed[:idx]
}

// unlinkFromParent clears every link-table slot in path's parent directory
// that points at childIdx (spec §4.3 "Inode deletion": "walk up one path
// component and clear any slot in the parent that points at the deleted
// block").
func (fs *FS) unlinkFromParent(path string, childIdx int) error {
	pIdx, err := fs.resolve(parentPath(path), false, true)
	if err != nil {
		return err
	}
	parent, err := fs.readInode(pIdx)
	if err != nil {
		return err
	}

	changed := false
	for i, v := range parent.links {
		if int(v) == childIdx {
			parent.links[i] = 0
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return fs.writeInode(pIdx, parent)
}

// deleteInode releases idx's block and removes the parent's link to it.
// Precondition (spec §4.3): the caller has already released every block
// the inode referenced, or verified it is an empty directory. The root
// inode can never be deleted.
func (fs *FS) deleteInode(path string, idx int) error {
	if idx == rootInodeIndex {
		return ErrInvalidBlock
	}
	if err := fs.release(idx); err != nil {
		return err
	}
	return fs.unlinkFromParent(path, idx)
}
