//go:build xz

package tinyfs

import (
	"io"

	"github.com/ulikunitz/xz"
)

func init() {
	registerCodec(CodecXZ, func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	})
}
