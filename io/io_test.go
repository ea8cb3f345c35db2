package io

import (
	"bytes"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

// memory is a flat address space for tests.
type memory [MEMORY_SIZE]byte

func (mem *memory) Load(addr uint16, data []byte) {
	copy(mem[addr:], data)
}

func (mem *memory) Read(addr uint16) uint8 {
	return mem[addr]
}

// memFS is a CreateFS backed by an fstest.MapFS.
type memFS struct {
	fstest.MapFS
}

type memFile struct {
	bytes.Buffer
	fs   *memFS
	name string
}

func (mf *memFile) Close() error {
	mf.fs.MapFS[mf.name] = &fstest.MapFile{Data: mf.Bytes(), Mode: 0644}
	return nil
}

func (mfs *memFS) Create(name string) (io.WriteCloser, error) {
	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}
	return &memFile{fs: mfs, name: name}, nil
}

func TestLoadImage(t *testing.T) {
	assert := assert.New(t)

	mem := &memory{}
	rom := &Rom{Origin: 0x0600, Data: []byte{0xa9, 0x01}}

	count := LoadImage(mem, rom)
	assert.Equal(2, count)
	assert.Equal(uint8(0xa9), mem[0x0600])
	assert.Equal(uint8(0x01), mem[0x0601])

	count = LoadImage(mem, &Rom{})
	assert.Equal(0, count)
}

func TestRom(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{Origin: 0xfff0}
	err := rom.Unmarshal(bytes.NewReader(make([]byte, 16)))
	assert.NoError(err)
	assert.Equal(16, len(rom.Data))

	err = rom.Unmarshal(bytes.NewReader(make([]byte, 17)))
	assert.ErrorIs(err, ErrImageSize)
}

func TestTape(t *testing.T) {
	assert := assert.New(t)

	listing := `; a program
0600: A9 01 8d 00 02

0700:
  0702 : ff ; trailing
`
	tc := &Tape{}
	err := tc.Unmarshal(bytes.NewBufferString(listing))
	assert.NoError(err)

	assert.Equal([]Record{
		{Address: 0x0600, Data: []byte{0xa9, 0x01, 0x8d, 0x00, 0x02}},
		{Address: 0x0700},
		{Address: 0x0702, Data: []byte{0xff}},
	}, tc.Records)

	mem := &memory{}
	assert.Equal(6, LoadImage(mem, tc))
	assert.Equal(uint8(0xff), mem[0x0702])
}

func TestTapeErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		listing string
		lineno  int
		err     error
	}){
		{"A9 01", 1, ErrTapeAddress},
		{"0600: A9\nzz: 01", 2, ErrTapeAddress},
		{"0600: A9 100", 1, ErrTapeByte},
		{"0600: A9 0x1", 1, ErrTapeByte},
		{"FFFF: 01 02", 1, ErrImageSize},
	}

	for _, entry := range table {
		tc := &Tape{}
		err := tc.Unmarshal(bytes.NewBufferString(entry.listing))
		assert.ErrorIs(err, entry.err, entry.listing)

		var etl *ErrTapeLine
		if assert.ErrorAs(err, &etl, entry.listing) {
			assert.Equal(entry.lineno, etl.LineNo, entry.listing)
		}
	}
}

func TestDump(t *testing.T) {
	assert := assert.New(t)

	mem := &memory{}
	for n := range 0x20 {
		mem[0x05f8+n] = uint8(n)
	}

	out := &bytes.Buffer{}
	err := Dump(out, mem, 0x05fc, 0x0602)
	assert.NoError(err)
	assert.Equal("05FC: 04 05 06 07\n0600: 08 09 0A\n", out.String())

	// Round trip through the tape reader.
	tc := &Tape{}
	assert.NoError(tc.Unmarshal(out))
	copied := &memory{}
	assert.Equal(7, LoadImage(copied, tc))
	assert.Equal(mem[0x05fc:0x0603], copied[0x05fc:0x0603])

	out.Reset()
	err = Dump(out, mem, 0xfff8, 0xffff)
	assert.NoError(err)
	assert.Equal("FFF8: 00 00 00 00 00 00 00 00\n", out.String())

	err = Dump(out, mem, 0x0200, 0x0100)
	assert.ErrorIs(err, ErrDumpRange)
}

func TestDepot(t *testing.T) {
	assert := assert.New(t)

	filesys := fstest.MapFS{
		"0600.bin":     {Data: []byte{0xa9, 0x01}},
		"c000.BIN":     {Data: []byte{0x4c, 0x00, 0xc0}},
		"notes.txt":    {Data: []byte("ignored")},
		"12345.bin":    {Data: []byte{0xff}},
		"sub/0200.bin": {Data: []byte{0xff}},
	}

	depot := &Depot{}
	err := depot.Unmarshal(filesys)
	assert.NoError(err)
	assert.Equal(map[uint16][]byte{
		0x0600: {0xa9, 0x01},
		0xc000: {0x4c, 0x00, 0xc0},
	}, depot.Images)

	var origins []uint16
	for origin := range depot.Segments() {
		origins = append(origins, origin)
	}
	assert.Equal([]uint16{0x0600, 0xc000}, origins)

	defines := map[string]string{}
	for key, value := range depot.Defines() {
		defines[key] = value
	}
	assert.Equal("0x100", defines["PAGE_SIZE"])
}

func TestDepotTooLarge(t *testing.T) {
	assert := assert.New(t)

	filesys := fstest.MapFS{
		"ff00.bin": {Data: make([]byte, 0x101)},
	}

	depot := &Depot{}
	err := depot.Unmarshal(filesys)
	assert.ErrorIs(err, ErrImageSize)
}

func TestDepotCapture(t *testing.T) {
	assert := assert.New(t)

	mem := &memory{}
	mem[0x0000] = 1
	mem[0x0600] = 2
	mem[0x07ff] = 3
	mem[0xffff] = 4

	depot := &Depot{}
	depot.Capture(mem)
	assert.Equal(3, len(depot.Images))
	assert.Equal(PAGE_SIZE, len(depot.Images[0x0000]))
	assert.Equal(2*PAGE_SIZE, len(depot.Images[0x0600]))
	assert.Equal(uint8(3), depot.Images[0x0600][0x1ff])
	assert.Equal(uint8(4), depot.Images[0xff00][0xff])

	filesys := &memFS{MapFS: fstest.MapFS{}}
	err := depot.Marshal(filesys)
	assert.NoError(err)
	assert.Contains(filesys.MapFS, "0000.bin")
	assert.Contains(filesys.MapFS, "0600.bin")
	assert.Contains(filesys.MapFS, "ff00.bin")

	// Read it back
	restored := &Depot{}
	assert.NoError(restored.Unmarshal(filesys))
	assert.Equal(depot.Images, restored.Images)

	copied := &memory{}
	LoadImage(copied, restored)
	assert.Equal(*mem, *copied)
}

func TestDirFS(t *testing.T) {
	assert := assert.New(t)

	dir := DirFS(t.TempDir())

	depot := &Depot{Images: map[uint16][]byte{0x0200: {1, 2, 3}}}
	assert.NoError(depot.Marshal(dir))

	data, err := fs.ReadFile(dir, "0200.bin")
	assert.NoError(err)
	assert.Equal([]byte{1, 2, 3}, data)

	_, err = dir.Create("../escape.bin")
	assert.ErrorIs(err, fs.ErrInvalid)
}
