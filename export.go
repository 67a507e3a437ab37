package tinyfs

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/gzip"
)

// Codec identifies a tree-export compression format. Modeled on the
// teacher's SquashComp enum, but for writing instead of reading: TinyFS's
// own on-disk blocks are never compressed, this only compresses the tar
// stream produced by ExportTar.
type Codec int

const (
	CodecGzip Codec = iota
	CodecXZ
)

func (c Codec) String() string {
	switch c {
	case CodecGzip:
		return "gzip"
	case CodecXZ:
		return "xz"
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

type codecWriter func(w io.Writer) (io.WriteCloser, error)

var codecRegistry = map[Codec]codecWriter{
	CodecGzip: func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	},
}

// registerCodec adds a compressor to the registry. Called from init() in
// build-tag-gated files such as export_xz.go, the same registration idiom
// the teacher uses for its optional compressors.
func registerCodec(c Codec, fn codecWriter) {
	codecRegistry[c] = fn
}

// ExportTar walks fsys starting at root and writes a compressed tar stream
// to w. It is read-only and never touches the image; it exists so a
// mounted tree can be pulled out with ordinary archive tools.
func ExportTar(fsys *FS, root string, w io.Writer, codec Codec) error {
	newWriter, ok := codecRegistry[codec]
	if !ok {
		return fmt.Errorf("tinyfs: unsupported export codec %s", codec)
	}
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)

	walkErr := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = p
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if walkErr != nil {
		tw.Close()
		cw.Close()
		return walkErr
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}
