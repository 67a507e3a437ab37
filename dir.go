package tinyfs

import (
	"io"
	"io/fs"
	"path"
	"time"
)

// Open implements io/fs.FS on top of a mounted image, so the standard
// library's fs.WalkDir, fs.Glob, fs.ReadFile and fs.Stat all work against
// a *FS directly — the same read surface the teacher layers over its own
// read-only tree (squashfs's file.go/dir.go), grounded here on TinyFS's
// flat link table instead of a serialized directory-entry stream.
func (fsys *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	p := "/"
	if name != "." {
		p = "/" + name
	}

	idx, err := fsys.resolve(p, false, p == "/")
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: toFsErr(err)}
	}
	ib, err := fsys.readInode(idx)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: toFsErr(err)}
	}

	base := path.Base(name)
	if ib.isDir {
		return &tfsDir{fsys: fsys, idx: idx, name: base, ib: ib}, nil
	}
	return &tfsFile{fsys: fsys, idx: idx, name: base, ib: ib}, nil
}

// toFsErr maps the subset of the spec §7 taxonomy that io/fs callers
// (fs.WalkDir, fs.Stat, ...) check for with errors.Is(err, fs.ErrNotExist).
func toFsErr(err error) error {
	if err == ErrFileNotFound {
		return fs.ErrNotExist
	}
	return err
}

// tfsFile is the fs.File view of a regular file inode.
type tfsFile struct {
	fsys *FS
	idx  int
	name string
	ib   *inodeBlock
	pos  int64
}

var (
	_ fs.File        = (*tfsFile)(nil)
	_ io.Seeker      = (*tfsFile)(nil)
	_ fs.ReadDirFile = (*tfsDir)(nil)
	_ fs.FileInfo    = (*fileinfo)(nil)
	_ fs.DirEntry    = (*direntry)(nil)
)

func (f *tfsFile) Stat() (fs.FileInfo, error) {
	return &fileinfo{name: f.name, size: int64(f.ib.size)}, nil
}

// Read fills p one readByteAt call at a time. TinyFS's core only exposes
// byte-granular reads (spec §4.4), so this is the most direct lowering of
// that primitive into io.Reader; it does not try to batch whole blocks.
func (f *tfsFile) Read(p []byte) (int, error) {
	if f.pos >= int64(f.ib.size) {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) && f.pos < int64(f.ib.size) {
		b, err := f.fsys.readByteAt(f.idx, int(f.pos))
		if err != nil {
			if err == ErrEOF {
				break
			}
			return n, err
		}
		p[n] = b
		n++
		f.pos++
	}
	return n, nil
}

func (f *tfsFile) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = f.pos + offset
	case io.SeekEnd:
		newPos = int64(f.ib.size) + offset
	default:
		return 0, fs.ErrInvalid
	}
	if newPos < 0 {
		return 0, fs.ErrInvalid
	}
	f.pos = newPos
	return f.pos, nil
}

func (f *tfsFile) Close() error { return nil }

// tfsDir is the fs.ReadDirFile view of a directory inode.
type tfsDir struct {
	fsys *FS
	idx  int
	name string
	ib   *inodeBlock
	pos  int
}

func (d *tfsDir) Stat() (fs.FileInfo, error) {
	return &fileinfo{name: d.name, isDir: true}, nil
}

func (d *tfsDir) Read(p []byte) (int, error) { return 0, fs.ErrInvalid }

func (d *tfsDir) Close() error { return nil }

func (d *tfsDir) ReadDir(n int) ([]fs.DirEntry, error) {
	var out []fs.DirEntry
	for d.pos < len(d.ib.links) {
		v := d.ib.links[d.pos]
		d.pos++
		if v == 0 {
			continue
		}
		child, err := d.fsys.readInode(int(v))
		if err != nil {
			return out, err
		}
		out = append(out, &direntry{name: nameString(child.name), isDir: child.isDir, idx: int(v), fsys: d.fsys})
		if n > 0 && len(out) >= n {
			return out, nil
		}
	}
	if n > 0 && len(out) == 0 {
		return nil, io.EOF
	}
	return out, nil
}

// direntry implements fs.DirEntry for one link-table slot.
type direntry struct {
	name  string
	isDir bool
	idx   int
	fsys  *FS
}

func (e *direntry) Name() string { return e.name }
func (e *direntry) IsDir() bool  { return e.isDir }

func (e *direntry) Type() fs.FileMode {
	if e.isDir {
		return fs.ModeDir
	}
	return 0
}

func (e *direntry) Info() (fs.FileInfo, error) {
	ib, err := e.fsys.readInode(e.idx)
	if err != nil {
		return nil, err
	}
	return &fileinfo{name: e.name, isDir: e.isDir, size: int64(ib.size)}, nil
}

// fileinfo implements fs.FileInfo. TinyFS stores no timestamps (spec §1
// Non-goals), so ModTime is always the zero time.
type fileinfo struct {
	name  string
	isDir bool
	size  int64
}

func (fi *fileinfo) Name() string { return fi.name }
func (fi *fileinfo) Size() int64  { return fi.size }

func (fi *fileinfo) Mode() fs.FileMode {
	if fi.isDir {
		return fs.ModeDir | 0755
	}
	return 0644
}

func (fi *fileinfo) ModTime() time.Time { return time.Time{} }
func (fi *fileinfo) IsDir() bool        { return fi.isDir }
func (fi *fileinfo) Sys() any           { return nil }
