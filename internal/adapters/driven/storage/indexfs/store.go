// Package indexfs persists a vector index as two files in one directory:
// index.bin holds the vectors and index.json holds the manifest.
//
// The manifest is written last and records the sha256 of the artifact,
// so a manifest that matches its artifact marks a complete index.
package indexfs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

var _ driven.IndexStore = (*Store)(nil)

// File names inside the index directory.
const (
	ArtifactFile = "index.bin"
	ManifestFile = "index.json"
)

// Store reads and writes an index directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created on Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the index directory.
func (s *Store) Path() string {
	return s.dir
}

func (s *Store) artifactPath() string { return filepath.Join(s.dir, ArtifactFile) }
func (s *Store) manifestPath() string { return filepath.Join(s.dir, ManifestFile) }

// Save writes the artifact and then the manifest, each through a temp file
// that is synced and renamed into place.
func (s *Store) Save(ctx context.Context, snapshot *domain.IndexSnapshot) error {
	if snapshot == nil {
		return domain.ErrInvalidInput
	}
	if len(snapshot.Vectors) != len(snapshot.Manifest.Entries) {
		return fmt.Errorf("%w: %d vectors for %d entries",
			domain.ErrInvalidInput, len(snapshot.Vectors), len(snapshot.Manifest.Entries))
	}

	artifact, err := Encode(snapshot.Vectors, snapshot.Manifest.Dimensions)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	manifest := snapshot.Manifest
	if manifest.Version == 0 {
		manifest.Version = domain.IndexFormatVersion
	}
	manifest.Checksum = checksum(artifact)
	sidecar, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	if err := writeAtomic(s.artifactPath(), artifact); err != nil {
		return fmt.Errorf("write %s: %w", ArtifactFile, err)
	}
	if err := writeAtomic(s.manifestPath(), sidecar); err != nil {
		return fmt.Errorf("write %s: %w", ManifestFile, err)
	}
	snapshot.Manifest.Checksum = manifest.Checksum
	snapshot.Manifest.Version = manifest.Version
	return nil
}

// Load reads and verifies a persisted index.
func (s *Store) Load(ctx context.Context) (*domain.IndexSnapshot, error) {
	sidecar, err := os.ReadFile(s.manifestPath())
	if err != nil {
		return nil, loadError("read manifest", err)
	}
	var manifest domain.IndexManifest
	if err := json.Unmarshal(sidecar, &manifest); err != nil {
		return nil, loadError("decode manifest", err)
	}
	if manifest.Version != domain.IndexFormatVersion {
		return nil, loadError("manifest", fmt.Errorf("unsupported version %d", manifest.Version))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifact, err := os.ReadFile(s.artifactPath())
	if err != nil {
		return nil, loadError("read artifact", err)
	}
	if sum := checksum(artifact); sum != manifest.Checksum {
		return nil, loadError("verify artifact", fmt.Errorf("checksum %s does not match manifest %s", sum, manifest.Checksum))
	}

	vectors, dims, err := Decode(artifact)
	if err != nil {
		return nil, loadError("decode artifact", err)
	}
	if dims != manifest.Dimensions {
		return nil, loadError("verify artifact", fmt.Errorf("artifact has %d dimensions, manifest %d", dims, manifest.Dimensions))
	}
	if len(vectors) != len(manifest.Entries) {
		return nil, loadError("verify artifact", fmt.Errorf("artifact has %d vectors, manifest %d entries", len(vectors), len(manifest.Entries)))
	}
	return &domain.IndexSnapshot{Manifest: manifest, Vectors: vectors}, nil
}

// Exists reports whether both files are present.
func (s *Store) Exists() bool {
	for _, p := range []string{s.artifactPath(), s.manifestPath()} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// Remove deletes both files. The manifest goes first so a partial removal
// never leaves a manifest without its artifact.
func (s *Store) Remove() error {
	var errs []error
	for _, p := range []string{s.manifestPath(), s.artifactPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func loadError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrIndexLoad, op, err)
}

func checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// writeAtomic replaces path with data. Readers see the old file or the new
// one, never a mix.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	// Some filesystems refuse fsync on directories; the rename already happened.
	_ = d.Sync()
	return nil
}
