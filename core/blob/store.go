package blob

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// ErrBlobNotFound is returned when a blob with the given hash does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidHash is returned when a hash string is not a valid hex digest.
var ErrInvalidHash = errors.New("invalid hash format")

// hashPattern matches a lowercase SHA-256 or BLAKE3 hex digest.
var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Ref identifies stored content by both digests the store maintains.
type Ref struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
	Size   int64  `json:"size"`
}

// blake3Pointer is the structure stored in BLAKE3 pointer files.
type blake3Pointer struct {
	SHA256 string `json:"sha256"`
}

// Store is a local content-addressed cache for blob payloads. Content is
// stored under its SHA-256 digest; a BLAKE3 pointer file allows lookup by
// either digest. Stored bytes are optionally xz-compressed.
type Store struct {
	root     string
	compress bool
}

// NewStore creates an uncompressed store rooted at the given directory,
// creating the directory structure if needed.
func NewStore(root string) (*Store, error) {
	return newStore(root, false)
}

// NewCompressedStore creates a store whose content files are
// xz-compressed on disk.
func NewCompressedStore(root string) (*Store, error) {
	return newStore(root, true)
}

func newStore(root string, compress bool) (*Store, error) {
	blobDir := filepath.Join(root, "blobs", "sha256")
	if err := os.MkdirAll(blobDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{root: root, compress: compress}, nil
}

// Put stores the given data and returns its content reference. Storing
// identical content twice is a no-op.
func (s *Store) Put(data []byte) (*Ref, error) {
	sum := sha256.Sum256(data)
	shaHex := hex.EncodeToString(sum[:])
	b3 := blake3.Sum256(data)
	b3Hex := hex.EncodeToString(b3[:])

	ref := &Ref{SHA256: shaHex, BLAKE3: b3Hex, Size: int64(len(data))}

	blobPath := s.pathForHash(shaHex)
	if _, err := os.Stat(blobPath); err == nil {
		return ref, nil
	}

	stored := data
	if s.compress {
		var buf bytes.Buffer
		zw, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("failed to compress blob: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("failed to finish compression: %w", err)
		}
		stored = buf.Bytes()
	}

	if err := s.writeAtomic(blobPath, stored); err != nil {
		return nil, err
	}
	if err := s.writeBlake3Pointer(b3Hex, shaHex); err != nil {
		return nil, fmt.Errorf("failed to create BLAKE3 pointer: %w", err)
	}
	return ref, nil
}

// PutBlob stores a blob's inline data. Referenced blobs have no local
// content and return an error.
func (s *Store) PutBlob(b *Blob) (*Ref, error) {
	if b.Inline == nil {
		return nil, fmt.Errorf("blob %q has no inline data", b.Name)
	}
	if err := b.Verify(); err != nil {
		return nil, err
	}
	return s.Put(b.Inline)
}

// Get retrieves content by its SHA-256 digest.
// Returns ErrBlobNotFound if the content does not exist.
func (s *Store) Get(shaHex string) ([]byte, error) {
	if !hashPattern.MatchString(shaHex) {
		return nil, ErrInvalidHash
	}
	data, err := os.ReadFile(s.pathForHash(shaHex))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if s.compress {
		zr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open xz stream: %w", err)
		}
		decompressed, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress blob: %w", err)
		}
		data = decompressed
	}

	// Verify content integrity on the way out.
	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != shaHex {
		return nil, fmt.Errorf("blob %s failed integrity check", shaHex)
	}
	return data, nil
}

// GetByBlake3 retrieves content by its BLAKE3 digest via the pointer file.
func (s *Store) GetByBlake3(b3Hex string) ([]byte, error) {
	shaHex, err := s.lookupBlake3(b3Hex)
	if err != nil {
		return nil, err
	}
	return s.Get(shaHex)
}

// Exists reports whether content with the given SHA-256 digest is stored.
func (s *Store) Exists(shaHex string) bool {
	if !hashPattern.MatchString(shaHex) {
		return false
	}
	_, err := os.Stat(s.pathForHash(shaHex))
	return err == nil
}

func (s *Store) lookupBlake3(b3Hex string) (string, error) {
	if !hashPattern.MatchString(b3Hex) {
		return "", ErrInvalidHash
	}
	pointerPath := filepath.Join(s.root, "blobs", "blake3", b3Hex[:2], b3Hex+".json")
	data, err := os.ReadFile(pointerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrBlobNotFound
		}
		return "", fmt.Errorf("failed to read pointer: %w", err)
	}
	var pointer blake3Pointer
	if err := json.Unmarshal(data, &pointer); err != nil {
		return "", fmt.Errorf("failed to parse pointer: %w", err)
	}
	return pointer.SHA256, nil
}

func (s *Store) writeBlake3Pointer(b3Hex, shaHex string) error {
	pointerDir := filepath.Join(s.root, "blobs", "blake3", b3Hex[:2])
	if err := os.MkdirAll(pointerDir, 0755); err != nil {
		return fmt.Errorf("failed to create blake3 directory: %w", err)
	}
	pointerPath := filepath.Join(pointerDir, b3Hex+".json")
	if _, err := os.Stat(pointerPath); err == nil {
		return nil // Already exists
	}
	data, err := json.Marshal(blake3Pointer{SHA256: shaHex})
	if err != nil {
		return fmt.Errorf("failed to marshal pointer: %w", err)
	}
	return s.writeAtomic(pointerPath, data)
}

// writeAtomic writes data via a temp file and rename so a crash never
// leaves a partial blob under its final name.
func (s *Store) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tempFile, err := os.CreateTemp(dir, ".blob-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename blob: %w", err)
	}
	return nil
}

func (s *Store) pathForHash(shaHex string) string {
	return filepath.Join(s.root, "blobs", "sha256", shaHex[:2], shaHex)
}

// Digest computes the BLAKE3 digest of data without storing it.
func Digest(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
