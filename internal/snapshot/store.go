package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// HashPrefixLength is the short-hash length used for object filenames
const HashPrefixLength = 8

// DefaultBaseDir is the store location relative to the repository root
const DefaultBaseDir = ".archlint/snapshots"

// SaveResult describes a saved snapshot object
type SaveResult struct {
	ObjectHash  string
	ShortHash   string
	ObjectPath  string
	RefsUpdated []string
}

// StoredSnapshot pairs a loaded snapshot with its short hash
type StoredSnapshot struct {
	ShortHash string
	Snapshot  Snapshot
}

// storedObject is the on-disk envelope. The hash is stored alongside the
// snapshot for verification; it never participates in hashing.
type storedObject struct {
	Hash     string   `json:"_hash"`
	Snapshot Snapshot `json:"snapshot"`
}

// Store is a content-addressed snapshot store with git-like refs.
//
// Layout under <repo>/.archlint/snapshots/:
//
//	objects/a1b2c3d4.json.zst   immutable, named by content-hash prefix
//	refs/latest                 text file holding a short hash
//	refs/baseline
//
// Objects are zstd-compressed canonical JSON. The content hash is always
// computed over the uncompressed canonical form, so saving an unchanged
// snapshot reproduces the same identifier regardless of compression.
type Store struct {
	baseDir    string
	objectsDir string
	refsDir    string
}

// NewStore creates a store rooted under repoRoot at the default location
func NewStore(repoRoot string) *Store {
	return NewStoreAt(filepath.Join(repoRoot, DefaultBaseDir))
}

// NewStoreAt creates a store with an explicit base directory
func NewStoreAt(baseDir string) *Store {
	return &Store{
		baseDir:    baseDir,
		objectsDir: filepath.Join(baseDir, "objects"),
		refsDir:    filepath.Join(baseDir, "refs"),
	}
}

// ComputeHash returns the full content hash of a snapshot: sha256 over
// its canonical JSON serialization.
func ComputeHash(snap Snapshot) (string, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("serialize snapshot: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Save writes the snapshot as a content-addressed object and points the
// given refs at it. Saving identical content is idempotent.
func (s *Store) Save(snap Snapshot, refs ...string) (SaveResult, error) {
	fullHash, err := ComputeHash(snap)
	if err != nil {
		return SaveResult{}, err
	}
	shortHash := fullHash[:HashPrefixLength]

	raw, err := json.Marshal(storedObject{Hash: fullHash, Snapshot: snap})
	if err != nil {
		return SaveResult{}, fmt.Errorf("serialize snapshot object: %w", err)
	}

	if err := os.MkdirAll(s.objectsDir, 0o755); err != nil {
		return SaveResult{}, fmt.Errorf("create objects dir: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return SaveResult{}, fmt.Errorf("init compressor: %w", err)
	}
	compressed := enc.EncodeAll(raw, nil)
	enc.Close()

	path := s.objectPath(shortHash)
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return SaveResult{}, fmt.Errorf("write snapshot object: %w", err)
	}

	var updated []string
	for _, ref := range refs {
		if err := s.UpdateRef(ref, shortHash); err != nil {
			return SaveResult{}, err
		}
		updated = append(updated, ref)
	}

	return SaveResult{
		ObjectHash:  fullHash,
		ShortHash:   shortHash,
		ObjectPath:  path,
		RefsUpdated: updated,
	}, nil
}

// LoadObject loads a snapshot by its short hash
func (s *Store) LoadObject(shortHash string) (Snapshot, error) {
	path := s.objectPath(shortHash)
	compressed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("snapshot object not found: %s", shortHash)
		}
		return Snapshot{}, fmt.Errorf("read snapshot object %s: %w", shortHash, err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("init decompressor: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decompress snapshot object %s: %w", shortHash, err)
	}

	var obj storedObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot object %s: %w", shortHash, err)
	}
	return obj.Snapshot, nil
}

// ObjectExists reports whether an object with the short hash exists
func (s *Store) ObjectExists(shortHash string) bool {
	_, err := os.Stat(s.objectPath(shortHash))
	return err == nil
}

// ListObjects returns all stored snapshots, newest first by created_at.
// Unreadable objects are skipped.
func (s *Store) ListObjects() []StoredSnapshot {
	entries, err := os.ReadDir(s.objectsDir)
	if err != nil {
		return nil
	}

	var out []StoredSnapshot
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json.zst") {
			continue
		}
		shortHash := strings.TrimSuffix(name, ".json.zst")
		snap, err := s.LoadObject(shortHash)
		if err != nil {
			continue
		}
		out = append(out, StoredSnapshot{ShortHash: shortHash, Snapshot: snap})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Snapshot.Meta.CreatedAt > out[j].Snapshot.Meta.CreatedAt
	})
	return out
}

// UpdateRef creates or repoints a ref at a short hash
func (s *Store) UpdateRef(ref, shortHash string) error {
	if err := os.MkdirAll(s.refsDir, 0o755); err != nil {
		return fmt.Errorf("create refs dir: %w", err)
	}
	if err := os.WriteFile(s.refPath(ref), []byte(shortHash+"\n"), 0o644); err != nil {
		return fmt.Errorf("update ref %s: %w", ref, err)
	}
	return nil
}

// ResolveRef resolves a ref name to its short hash, empty if missing
func (s *Store) ResolveRef(ref string) string {
	raw, err := os.ReadFile(s.refPath(ref))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// RefExists reports whether a ref exists
func (s *Store) RefExists(ref string) bool {
	_, err := os.Stat(s.refPath(ref))
	return err == nil
}

// ListRefs returns every ref and its target short hash
func (s *Store) ListRefs() map[string]string {
	entries, err := os.ReadDir(s.refsDir)
	if err != nil {
		return map[string]string{}
	}
	refs := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if target := s.ResolveRef(entry.Name()); target != "" {
			refs[entry.Name()] = target
		}
	}
	return refs
}

// DeleteRef removes a ref; it reports whether the ref existed
func (s *Store) DeleteRef(ref string) bool {
	err := os.Remove(s.refPath(ref))
	return err == nil
}

// Load loads a snapshot by ref name or hash. Refs are tried first, then
// the argument is treated as a short hash.
func (s *Store) Load(refOrHash string) (Snapshot, error) {
	if target := s.ResolveRef(refOrHash); target != "" {
		return s.LoadObject(target)
	}
	if looksLikeHash(refOrHash) && s.ObjectExists(refOrHash[:HashPrefixLength]) {
		return s.LoadObject(refOrHash[:HashPrefixLength])
	}
	return Snapshot{}, fmt.Errorf("snapshot not found: %s", refOrHash)
}

// Exists reports whether a ref name or hash resolves to a snapshot
func (s *Store) Exists(refOrHash string) bool {
	if s.RefExists(refOrHash) {
		return true
	}
	return looksLikeHash(refOrHash) && s.ObjectExists(refOrHash[:HashPrefixLength])
}

func (s *Store) objectPath(shortHash string) string {
	return filepath.Join(s.objectsDir, shortHash+".json.zst")
}

func (s *Store) refPath(ref string) string {
	return filepath.Join(s.refsDir, ref)
}

func looksLikeHash(v string) bool {
	if len(v) < HashPrefixLength {
		return false
	}
	_, err := hex.DecodeString(v[:HashPrefixLength])
	return err == nil
}
