package tinyfs

// ftSizeInc is the growth chunk size for the open-file table, matching
// original_source/libTinyFS.h's FT_SIZE_INC.
const ftSizeInc = 100

// openFileEntry is one descriptor's worth of state (spec §3, "Open-file
// entry"). spec §9 suggests a tagged present/absent variant over the
// original's fd==0-means-empty in-band sentinel; occupied is that tag.
type openFileEntry struct {
	occupied bool
	fd       int
	path     string
	offset   int
	inode    int
}

// openFileTable is the growable descriptor table (spec §4.6).
type openFileTable struct {
	entries []openFileEntry
	nextFd  int
}

func newOpenFileTable() *openFileTable {
	return &openFileTable{nextFd: 1}
}

// alloc stores a new entry for path in the first unused slot, appending
// one if none is free, and returns its index. The table's capacity grows
// in chunks of ftSizeInc, same as the original. The error return
// mirrors the original's FT_SIZE_INC growth, which could fail malloc;
// Go's append has no equivalent failure mode, so it is always nil here,
// but OpenFile still checks it in case that ever changes.
func (t *openFileTable) alloc(path string) (int, error) {
	for i := range t.entries {
		if !t.entries[i].occupied {
			t.entries[i] = openFileEntry{occupied: true, fd: t.nextFd, path: path}
			t.nextFd++
			return i, nil
		}
	}

	if len(t.entries) == cap(t.entries) {
		grown := make([]openFileEntry, len(t.entries), len(t.entries)+ftSizeInc)
		copy(grown, t.entries)
		t.entries = grown
	}
	t.entries = append(t.entries, openFileEntry{occupied: true, fd: t.nextFd, path: path})
	t.nextFd++
	return len(t.entries) - 1, nil
}

// free marks the entry at i unused, without reusing its descriptor.
func (t *openFileTable) free(i int) {
	t.entries[i] = openFileEntry{}
}

// find returns the index of the entry holding fd, or -1.
func (t *openFileTable) find(fd int) int {
	for i := range t.entries {
		if t.entries[i].occupied && t.entries[i].fd == fd {
			return i
		}
	}
	return -1
}
