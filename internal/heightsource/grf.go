package heightsource

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// GRF archive errors.
var (
	ErrInvalidGRFMagic       = errors.New("invalid GRF magic")
	ErrUnsupportedGRFVersion = errors.New("unsupported GRF version")
	ErrGRFEntryNotFound      = errors.New("GRF entry not found")
	ErrGRFEntryEncrypted     = errors.New("encrypted GRF entries are not supported")
	ErrCorruptGRF            = errors.New("corrupt GRF archive")
)

const (
	grfMagic      = "Master of Magic"
	grfVersion    = 0x200
	grfHeaderSize = 46
	grfEntryTail  = 17 // sizes, flags and offset after each name

	grfFlagFile      = 0x01
	grfFlagEncrypted = 0x02

	// maxGRFInflated caps any single inflated buffer.
	maxGRFInflated = 256 << 20
)

type grfHeader struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

type grfEntry struct {
	compressedSize   uint32
	alignedSize      uint32
	uncompressedSize uint32
	flags            uint8
	offset           uint32
}

// Archive is a read-only Ragnarok Online GRF 0x200 archive, used here to
// pull GAT tables straight out of client data.
type Archive struct {
	r       io.ReaderAt
	size    int64
	closer  io.Closer
	entries map[string]grfEntry
}

// OpenArchive opens the GRF archive at path.
func OpenArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening GRF archive: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening GRF archive: %w", err)
	}

	a, err := ReadArchive(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

// ReadArchive reads the header and file table of a size-byte archive held in r.
func ReadArchive(r io.ReaderAt, size int64) (*Archive, error) {
	var hdr grfHeader
	if err := binary.Read(io.NewSectionReader(r, 0, min(size, grfHeaderSize)), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("reading GRF header: %w", err)
	}
	if string(hdr.Magic[:]) != grfMagic {
		return nil, ErrInvalidGRFMagic
	}
	if hdr.Version != grfVersion {
		return nil, fmt.Errorf("%w: 0x%x", ErrUnsupportedGRFVersion, hdr.Version)
	}

	a := &Archive{r: r, size: size, entries: make(map[string]grfEntry)}
	if err := a.readTable(hdr); err != nil {
		return nil, fmt.Errorf("reading GRF file table: %w", err)
	}
	return a, nil
}

func (a *Archive) readTable(hdr grfHeader) error {
	tableOffset := int64(hdr.TableOffset) + grfHeaderSize

	var sizes [8]byte
	if err := a.readSpan(sizes[:], tableOffset); err != nil {
		return err
	}
	compressedSize := binary.LittleEndian.Uint32(sizes[0:4])
	uncompressedSize := binary.LittleEndian.Uint32(sizes[4:8])
	if int64(compressedSize) > a.size-tableOffset-8 || uncompressedSize > maxGRFInflated {
		return fmt.Errorf("%w: table sizes %d/%d exceed archive", ErrCorruptGRF, compressedSize, uncompressedSize)
	}

	compressed := make([]byte, compressedSize)
	if err := a.readSpan(compressed, tableOffset+8); err != nil {
		return err
	}
	table, err := inflate(compressed, uncompressedSize)
	if err != nil {
		return err
	}

	count := int64(hdr.FileCount) - int64(hdr.Seed) - 7
	offset := 0
	for i := int64(0); i < count; i++ {
		nameEnd := bytes.IndexByte(table[offset:], 0)
		if nameEnd < 0 || offset+nameEnd+1+grfEntryTail > len(table) {
			return io.ErrUnexpectedEOF
		}
		name := decodeName(table[offset : offset+nameEnd])
		offset += nameEnd + 1

		rec := table[offset : offset+grfEntryTail]
		e := grfEntry{
			compressedSize:   binary.LittleEndian.Uint32(rec[0:4]),
			alignedSize:      binary.LittleEndian.Uint32(rec[4:8]),
			uncompressedSize: binary.LittleEndian.Uint32(rec[8:12]),
			flags:            rec[12],
			offset:           binary.LittleEndian.Uint32(rec[13:17]),
		}
		offset += grfEntryTail

		// Directories carry no file flag.
		if e.flags&grfFlagFile != 0 {
			a.entries[normalizeName(name)] = e
		}
	}
	return nil
}

// Names returns the file names in the archive, sorted.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadFile returns the uncompressed contents of an entry. Lookup ignores
// case and accepts either slash direction.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	e, ok := a.entries[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGRFEntryNotFound, name)
	}
	if e.flags&grfFlagEncrypted != 0 {
		return nil, fmt.Errorf("%w: %s", ErrGRFEntryEncrypted, name)
	}

	offset := int64(e.offset) + grfHeaderSize
	stored := e.compressedSize == e.uncompressedSize
	switch {
	case int64(e.alignedSize) > a.size-offset,
		e.compressedSize > e.alignedSize,
		!stored && e.uncompressedSize > maxGRFInflated:
		return nil, fmt.Errorf("%w: entry %s sizes %d/%d/%d at offset %d",
			ErrCorruptGRF, name, e.compressedSize, e.alignedSize, e.uncompressedSize, e.offset)
	}

	data := make([]byte, e.alignedSize)
	if err := a.readSpan(data, offset); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if stored {
		return data[:e.uncompressedSize], nil
	}

	out, err := inflate(data[:e.compressedSize], e.uncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("inflating %s: %w", name, err)
	}
	return out, nil
}

// Close releases the underlying file, if the archive owns one.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// ListGATs returns the GAT entries of the GRF archive at path, sorted.
func ListGATs(path string) ([]string, error) {
	a, err := OpenArchive(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	var gats []string
	for _, name := range a.Names() {
		if strings.HasSuffix(name, ".gat") {
			gats = append(gats, name)
		}
	}
	return gats, nil
}

// LoadGATFromArchive parses the GAT table stored at entry in a GRF archive.
func LoadGATFromArchive(path, entry string) (*GAT, error) {
	a, err := OpenArchive(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	data, err := a.ReadFile(entry)
	if err != nil {
		return nil, err
	}
	return ParseGAT(data)
}

// readSpan fills p from off, treating a short read as truncation.
func (a *Archive) readSpan(p []byte, off int64) error {
	if off < 0 || int64(len(p)) > a.size-off {
		return fmt.Errorf("%w: %d bytes at offset %d past end %d", io.ErrUnexpectedEOF, len(p), off, a.size)
	}
	n, err := a.r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func inflate(compressed []byte, size uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeName converts an EUC-KR entry name to UTF-8, keeping the raw bytes
// when they are not valid EUC-KR.
func decodeName(raw []byte) string {
	name, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(name)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
}
