//go:build fuse

package tinyfs

import (
	"context"
	"errors"
	iofs "io/fs"
	"sync"
	"syscall"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// fuseNode is one FUSE inode, backed by an io/fs-style path ("." for the
// root, slash-separated, no leading slash) into a mounted *FS. The core
// engine has no concurrency of its own (spec §9), so every operation here
// takes mu before calling into it; the FUSE server otherwise dispatches
// requests concurrently.
type fuseNode struct {
	fusefs.Inode
	tfs  *FS
	mu   *sync.Mutex
	path string
}

var (
	_ fusefs.NodeLookuper  = (*fuseNode)(nil)
	_ fusefs.NodeReaddirer = (*fuseNode)(nil)
	_ fusefs.NodeGetattrer = (*fuseNode)(nil)
	_ fusefs.NodeOpener    = (*fuseNode)(nil)
	_ fusefs.NodeCreater   = (*fuseNode)(nil)
	_ fusefs.NodeMkdirer   = (*fuseNode)(nil)
	_ fusefs.NodeRmdirer   = (*fuseNode)(nil)
	_ fusefs.NodeUnlinker  = (*fuseNode)(nil)
)

// MountFUSE serves fsys at mountpoint. It is an additional, optional
// frontend: it never changes the on-disk format, only translates FUSE
// calls into the same OpenFile/WriteFile/... operations cmd/tinyfs uses.
func MountFUSE(fsys *FS, mountpoint string, debug bool) (*fuse.Server, error) {
	root := &fuseNode{tfs: fsys, mu: &sync.Mutex{}, path: "."}
	return fusefs.Mount(mountpoint, root, &fusefs.Options{
		MountOptions: fuse.MountOptions{Debug: debug},
	})
}

func childPath(parent, name string) string {
	if parent == "." {
		return name
	}
	return parent + "/" + name
}

// toErrno maps the spec §7 error taxonomy onto the errno values FUSE
// expects back from a node operation. Errors from the io/fs surface
// arrive wrapped in *fs.PathError and are unwrapped first.
func toErrno(err error) syscall.Errno {
	var pe *iofs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	if err == iofs.ErrNotExist {
		return syscall.ENOENT
	}
	switch err {
	case ErrFileNotFound, ErrFdNotFound:
		return syscall.ENOENT
	case ErrFilename:
		return syscall.EINVAL
	case ErrFileSizeLimit:
		return syscall.ENOSPC
	case ErrDirExists:
		return syscall.EEXIST
	case ErrDirNonEmpty:
		return syscall.ENOTEMPTY
	case ErrInvalidBlock:
		return syscall.EPERM
	default:
		return syscall.EIO
	}
}

func (n *fuseNode) stat(p string) (iofs.FileInfo, syscall.Errno) {
	f, err := n.tfs.Open(p)
	if err != nil {
		return nil, toErrno(err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, toErrno(err)
	}
	return st, 0
}

func (n *fuseNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	n.mu.Lock()
	defer n.mu.Unlock()

	p := childPath(n.path, name)
	info, errno := n.stat(p)
	if errno != 0 {
		return nil, errno
	}

	mode := uint32(syscall.S_IFREG)
	if info.IsDir() {
		mode = syscall.S_IFDIR
	}
	out.Attr.Mode = mode | 0644
	out.Attr.Size = uint64(info.Size())

	child := &fuseNode{tfs: n.tfs, mu: n.mu, path: p}
	return n.NewInode(ctx, child, fusefs.StableAttr{Mode: mode}), 0
}

func (n *fuseNode) Readdir(ctx context.Context) (fusefs.DirStream, syscall.Errno) {
	n.mu.Lock()
	defer n.mu.Unlock()

	f, err := n.tfs.Open(n.path)
	if err != nil {
		return nil, toErrno(err)
	}
	defer f.Close()

	rd, ok := f.(iofs.ReadDirFile)
	if !ok {
		return nil, syscall.ENOTDIR
	}
	entries, err := rd.ReadDir(-1)
	if err != nil {
		return nil, toErrno(err)
	}

	out := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		mode := uint32(syscall.S_IFREG)
		if e.IsDir() {
			mode = syscall.S_IFDIR
		}
		out = append(out, fuse.DirEntry{Name: e.Name(), Mode: mode})
	}
	return fusefs.NewListDirStream(out), 0
}

func (n *fuseNode) Getattr(ctx context.Context, f fusefs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	n.mu.Lock()
	defer n.mu.Unlock()

	info, errno := n.stat(n.path)
	if errno != 0 {
		return errno
	}
	mode := uint32(syscall.S_IFREG) | 0644
	if info.IsDir() {
		mode = uint32(syscall.S_IFDIR) | 0755
	}
	out.Attr.Mode = mode
	out.Attr.Size = uint64(info.Size())
	return 0
}

// fuseFile backs an open regular file with a TinyFS descriptor and a
// whole-file buffer: the core engine only exposes byte reads and
// whole-file writes (spec §4.4), so partial writes are buffered here and
// flushed as a single WriteFile on Release.
type fuseFile struct {
	n     *fuseNode
	fd    int
	buf   []byte
	dirty bool
}

var (
	_ fusefs.FileReader   = (*fuseFile)(nil)
	_ fusefs.FileWriter   = (*fuseFile)(nil)
	_ fusefs.FileReleaser = (*fuseFile)(nil)
)

func (n *fuseNode) Open(ctx context.Context, flags uint32) (fusefs.FileHandle, uint32, syscall.Errno) {
	n.mu.Lock()
	defer n.mu.Unlock()

	fd, err := n.tfs.OpenFile(n.path)
	if err != nil {
		return nil, 0, toErrno(err)
	}

	var buf []byte
	for {
		b, err := n.tfs.ReadByte(fd)
		if err != nil {
			break
		}
		buf = append(buf, b)
	}
	if err := n.tfs.Seek(fd, 0); err != nil {
		n.tfs.Close(fd)
		return nil, 0, toErrno(err)
	}

	return &fuseFile{n: n, fd: fd, buf: buf}, 0, 0
}

func (f *fuseFile) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	f.n.mu.Lock()
	defer f.n.mu.Unlock()

	if off >= int64(len(f.buf)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(f.buf)) {
		end = int64(len(f.buf))
	}
	return fuse.ReadResultData(f.buf[off:end]), 0
}

func (f *fuseFile) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	f.n.mu.Lock()
	defer f.n.mu.Unlock()

	end := int(off) + len(data)
	if end > len(f.buf) {
		grown := make([]byte, end)
		copy(grown, f.buf)
		f.buf = grown
	}
	copy(f.buf[off:end], data)
	f.dirty = true
	return uint32(len(data)), 0
}

func (f *fuseFile) Release(ctx context.Context) syscall.Errno {
	f.n.mu.Lock()
	defer f.n.mu.Unlock()

	if f.dirty {
		if err := f.n.tfs.WriteFile(f.fd, f.buf); err != nil {
			f.n.tfs.Close(f.fd)
			return toErrno(err)
		}
	}
	f.n.tfs.Close(f.fd)
	return 0
}

func (n *fuseNode) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fusefs.Inode, fusefs.FileHandle, uint32, syscall.Errno) {
	n.mu.Lock()
	p := childPath(n.path, name)
	fd, err := n.tfs.OpenFile(p)
	n.mu.Unlock()
	if err != nil {
		return nil, nil, 0, toErrno(err)
	}

	child := &fuseNode{tfs: n.tfs, mu: n.mu, path: p}
	out.Attr.Mode = uint32(syscall.S_IFREG) | 0644
	inode := n.NewInode(ctx, child, fusefs.StableAttr{Mode: uint32(syscall.S_IFREG)})
	return inode, &fuseFile{n: child, fd: fd}, 0, 0
}

func (n *fuseNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	n.mu.Lock()
	p := childPath(n.path, name)
	err := n.tfs.CreateDir(p)
	n.mu.Unlock()
	if err != nil {
		return nil, toErrno(err)
	}

	child := &fuseNode{tfs: n.tfs, mu: n.mu, path: p}
	out.Attr.Mode = uint32(syscall.S_IFDIR) | 0755
	return n.NewInode(ctx, child, fusefs.StableAttr{Mode: uint32(syscall.S_IFDIR)}), 0
}

func (n *fuseNode) Rmdir(ctx context.Context, name string) syscall.Errno {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.tfs.RemoveDir(childPath(n.path, name)); err != nil {
		return toErrno(err)
	}
	return 0
}

func (n *fuseNode) Unlink(ctx context.Context, name string) syscall.Errno {
	n.mu.Lock()
	defer n.mu.Unlock()

	p := childPath(n.path, name)
	fd, err := n.tfs.OpenFile(p)
	if err != nil {
		return toErrno(err)
	}
	if err := n.tfs.DeleteFile(fd); err != nil {
		return toErrno(err)
	}
	return 0
}
