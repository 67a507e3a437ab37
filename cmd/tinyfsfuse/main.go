//go:build fuse

// Command tinyfsfuse mounts a TinyFS image as a FUSE filesystem.
package main

import (
	"fmt"
	"os"

	"github.com/tinyfs-go/tinyfs"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: tinyfsfuse <image> <mountpoint>")
		os.Exit(1)
	}

	fsys, err := tinyfs.Mount(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "tinyfsfuse: mount image: %s\n", err)
		os.Exit(1)
	}
	defer fsys.Unmount()

	server, err := tinyfs.MountFUSE(fsys, os.Args[2], false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tinyfsfuse: mount fuse: %s\n", err)
		os.Exit(1)
	}

	server.Wait()
}
