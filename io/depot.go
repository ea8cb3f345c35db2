package io

import (
	"fmt"
	"io/fs"
	"iter"
	"maps"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// PAGE_SIZE is the granularity of depot images written by Marshal.
const PAGE_SIZE = 0x100

var reDepotName = regexp.MustCompile(`(?i)^[0-9a-f]{4}\.bin$`)

// Depot is a directory of raw images, each named by its hex load address,
// for example 0600.bin or C000.bin.
type Depot struct {
	Images map[uint16][]byte
}

var _ Image = (*Depot)(nil)

// Defines returns an iter of defines for the depot.
func (depot *Depot) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"PAGE_SIZE": fmt.Sprintf("0x%x", PAGE_SIZE),
	})
}

// Unmarshal loads depot images from a file system by scanning for files
// matching the pattern XXXX.bin (4 hex digits).
func (depot *Depot) Unmarshal(filesys fs.FS) (err error) {
	return fs.WalkDir(filesys, ".", func(name string, d fs.DirEntry, err_in error) (err error) {
		if err_in != nil {
			return err_in
		}
		if d.IsDir() {
			if name != "." {
				return fs.SkipDir
			}
			return
		}
		base := path.Base(name)
		if !reDepotName.MatchString(base) {
			return
		}
		origin, err := strconv.ParseUint(strings.TrimSuffix(base, path.Ext(base)), 16, 16)
		if err != nil {
			err = ErrDepotName(base)
			return
		}

		data, err := fs.ReadFile(filesys, name)
		if err != nil {
			return
		}
		if int(origin)+len(data) > MEMORY_SIZE {
			err = ErrImageSize
			return
		}

		if depot.Images == nil {
			depot.Images = make(map[uint16][]byte)
		}
		depot.Images[uint16(origin)] = data

		return
	})
}

// Segments yields the images in address order.
func (depot *Depot) Segments() iter.Seq2[uint16, []byte] {
	return func(yield func(addr uint16, data []byte) bool) {
		for _, origin := range slices.Sorted(maps.Keys(depot.Images)) {
			if !yield(origin, depot.Images[origin]) {
				return
			}
		}
	}
}

// Capture replaces the depot images with the non-zero pages of memory.
// Runs of adjacent non-zero pages become a single image.
func (depot *Depot) Capture(mem Reader) {
	depot.Images = make(map[uint16][]byte)

	var origin int
	var data []byte
	for page := 0; page < MEMORY_SIZE; page += PAGE_SIZE {
		buff := make([]byte, PAGE_SIZE)
		used := false
		for n := range buff {
			buff[n] = mem.Read(uint16(page + n))
			used = used || buff[n] != 0
		}
		if !used {
			if len(data) > 0 {
				depot.Images[uint16(origin)] = data
				data = nil
			}
			continue
		}
		if len(data) == 0 {
			origin = page
		}
		data = append(data, buff...)
	}
	if len(data) > 0 {
		depot.Images[uint16(origin)] = data
	}
}

// Marshal writes the depot's images to a file system, creating files
// named XXXX.bin for each image.
func (depot *Depot) Marshal(filesys CreateFS) (err error) {
	for origin, data := range depot.Segments() {
		name := fmt.Sprintf("%04x.bin", origin)
		err = writeFile(filesys, name, data)
		if err != nil {
			return
		}
	}

	return
}
