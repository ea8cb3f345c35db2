package io

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CreateFS defines a file system interface that supports creating files.
// It extends basic file system operations with write capabilities for
// marshaling depot images.
type CreateFS interface {
	fs.FS
	// Create creates a new file for writing.
	Create(name string) (file io.WriteCloser, err error)
}

// DirFS is a CreateFS rooted at a host directory.
type DirFS string

var _ CreateFS = DirFS("")

// Open opens a file in the directory.
func (dir DirFS) Open(name string) (fs.File, error) {
	return os.DirFS(string(dir)).Open(name)
}

// Create creates or truncates a file in the directory.
func (dir DirFS) Create(name string) (file io.WriteCloser, err error) {
	if !fs.ValidPath(name) {
		err = &fs.PathError{Op: "create", Path: name, Err: fs.ErrInvalid}
		return
	}

	file, err = os.Create(filepath.Join(string(dir), filepath.FromSlash(name)))
	return
}

// writeFile creates a file and writes all of data to it.
func writeFile(filesys CreateFS, name string, data []byte) (err error) {
	file, err := filesys.Create(name)
	if err != nil {
		return
	}

	_, err = file.Write(data)
	err = errors.Join(err, file.Close())

	return
}
