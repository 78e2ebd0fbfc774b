package index

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var fileMagic = [4]byte{'C', 'M', 'I', 'X'}

const fileVersion uint32 = 1

// ErrCorrupt reports an index file that cannot be decoded.
var ErrCorrupt = errors.New("index: corrupt file")

// File is a decoded index file header plus its raw payload.
type File struct {
	Kind     Kind
	BuildID  string
	Payload  []byte
	Checksum string
}

// Encode writes: magic, version(uint32), kind length(uint8) + kind,
// build id length(uint32) + build id, then the index MarshalBinary payload.
func Encode(idx Index, buildID string) ([]byte, error) {
	payload, err := idx.MarshalBinary()
	if err != nil {
		return nil, err
	}
	kind := string(idx.Kind())
	if len(kind) > 255 {
		return nil, fmt.Errorf("index: kind %q too long", kind)
	}
	var buf bytes.Buffer
	buf.Grow(4 + 4 + 1 + len(kind) + 4 + len(buildID) + len(payload))
	buf.Write(fileMagic[:])
	_ = binary.Write(&buf, binary.LittleEndian, fileVersion)
	buf.WriteByte(byte(len(kind)))
	buf.WriteString(kind)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(buildID)))
	buf.WriteString(buildID)
	buf.Write(payload)
	return buf.Bytes(), nil
}

// Decode parses an encoded index file.
func Decode(data []byte) (*File, error) {
	if len(data) < 9 || !bytes.Equal(data[:4], fileMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	off := 4
	if v := binary.LittleEndian.Uint32(data[off:]); v != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}
	off += 4
	kindLen := int(data[off])
	off++
	if off+kindLen+4 > len(data) {
		return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}
	kind := Kind(data[off : off+kindLen])
	off += kindLen
	idLen := int(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if off+idLen > len(data) {
		return nil, fmt.Errorf("%w: truncated build id", ErrCorrupt)
	}
	buildID := string(data[off : off+idLen])
	off += idLen
	sum := sha256.Sum256(data)
	return &File{
		Kind:     kind,
		BuildID:  buildID,
		Payload:  data[off:],
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

// Restore loads the payload into idx, which must be of the file's kind.
func (f *File) Restore(idx Index) error {
	if idx.Kind() != f.Kind {
		return fmt.Errorf("index: file holds %q index, got %q", f.Kind, idx.Kind())
	}
	if err := idx.UnmarshalBinary(f.Payload); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}

// WriteFile persists idx to path atomically (temp file + rename) and returns
// the sha256 checksum of the written bytes.
func WriteFile(path string, idx Index, buildID string) (string, error) {
	data, err := Encode(idx, buildID)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ReadFile reads and decodes the index file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
