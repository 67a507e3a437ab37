// Command tinyfs is a command-line tool for creating and inspecting
// TinyFS images, laid out the way the teacher's cmd/sqfs dispatches
// subcommands off of a raw os.Args switch.
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/tinyfs-go/tinyfs"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: tinyfs <command> [args]

commands:
  mkfs <image> <size>              format a new image of the given byte size
  ls <image> [path]                list a directory tree
  cat <image> <path>               print a file's contents
  write <image> <path> <file>      write a local file's contents into path
  mkdir <image> <path>             create a directory
  rm <image> <path>                delete a file
  rmdir <image> <path>             remove an empty directory
  rmall <image> <path>             remove a directory and everything under it
  rename <image> <path> <newname>  rename a file or directory in place
  info <image>                     print basic filesystem info
  export <image> <out.tar.gz> [path]  export a subtree as a gzip tarball`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "mkfs":
		err = cmdMkfs(os.Args[2:])
	case "ls":
		err = cmdLs(os.Args[2:])
	case "cat":
		err = cmdCat(os.Args[2:])
	case "write":
		err = cmdWrite(os.Args[2:])
	case "mkdir":
		err = cmdMkdir(os.Args[2:])
	case "rm":
		err = cmdRm(os.Args[2:])
	case "rmdir":
		err = cmdRmdir(os.Args[2:])
	case "rmall":
		err = cmdRmall(os.Args[2:])
	case "rename":
		err = cmdRename(os.Args[2:])
	case "info":
		err = cmdInfo(os.Args[2:])
	case "export":
		err = cmdExport(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "tinyfs: %s\n", err)
		os.Exit(1)
	}
}

func cmdMkfs(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: mkfs <image> <size>")
	}
	size, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", args[1], err)
	}
	return tinyfs.Format(args[0], size)
}

func cmdLs(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ls <image> [path]")
	}
	fsys, err := tinyfs.Mount(args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	if len(args) == 1 {
		return fsys.ListAll(os.Stdout)
	}

	return fs.WalkDir(fsys, trimSlash(args[1]), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		tag := "(f)"
		if d.IsDir() {
			tag = "(d)"
		}
		fmt.Printf("%s\t%s\n", tag, p)
		return nil
	})
}

func cmdCat(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: cat <image> <path>")
	}
	fsys, err := tinyfs.Mount(args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	f, err := fsys.Open(trimSlash(args[1]))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(os.Stdout, f)
	return err
}

func cmdWrite(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: write <image> <path> <local-file>")
	}
	data, err := os.ReadFile(args[2])
	if err != nil {
		return err
	}

	fsys, err := tinyfs.Mount(args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	fd, err := fsys.OpenFile(args[1])
	if err != nil {
		return err
	}
	defer fsys.Close(fd)

	return fsys.WriteFile(fd, data)
}

func cmdMkdir(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: mkdir <image> <path>")
	}
	fsys, err := tinyfs.Mount(args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()
	return fsys.CreateDir(args[1])
}

func cmdRm(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: rm <image> <path>")
	}
	fsys, err := tinyfs.Mount(args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	fd, err := fsys.OpenFile(args[1])
	if err != nil {
		return err
	}
	return fsys.DeleteFile(fd)
}

func cmdRmdir(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: rmdir <image> <path>")
	}
	fsys, err := tinyfs.Mount(args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()
	return fsys.RemoveDir(args[1])
}

func cmdRmall(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: rmall <image> <path>")
	}
	fsys, err := tinyfs.Mount(args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()
	return fsys.RemoveAll(args[1])
}

func cmdRename(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: rename <image> <path> <newname>")
	}
	fsys, err := tinyfs.Mount(args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	fd, err := fsys.OpenFile(args[1])
	if err != nil {
		return err
	}
	defer fsys.Close(fd)
	return fsys.Rename(fd, args[2])
}

func cmdInfo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: info <image>")
	}
	fsys, err := tinyfs.Mount(args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	fi, err := fs.Stat(fsys, ".")
	if err != nil {
		return err
	}
	fmt.Printf("block size: %d\n", tinyfs.BlockSize)
	fmt.Printf("root is a directory: %v\n", fi.IsDir())
	return nil
}

func cmdExport(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: export <image> <out.tar.gz> [path]")
	}
	fsys, err := tinyfs.Mount(args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer out.Close()

	root := "."
	if len(args) > 2 {
		root = trimSlash(args[2])
	}
	return tinyfs.ExportTar(fsys, root, out, tinyfs.CodecGzip)
}

// trimSlash converts a spec-style path ("/", "/a/b") into an io/fs-style
// one (".", "a/b").
func trimSlash(p string) string {
	if p == "/" || p == "" {
		return "."
	}
	if p[0] == '/' {
		return p[1:]
	}
	return p
}
