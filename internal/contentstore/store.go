// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package contentstore persists raw records as canonical JSON blobs and
// decides, by content hash, whether a fetched record is new, unchanged or
// changed before any further processing happens.
//
// Layout under the root: profiles/<key>.json, papers/<key>.json,
// reviews/<key>.json. Directories are created on first use.
package contentstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind selects the per-kind blob directory.
type Kind string

const (
	Profiles Kind = "profiles"
	Papers   Kind = "papers"
	Reviews  Kind = "reviews"
)

// Kinds lists every blob kind in a fixed order.
var Kinds = []Kind{Profiles, Papers, Reviews}

// Outcome is the dedup decision for one Put.
type Outcome int

const (
	// New means no blob existed for the key; it has been written.
	New Outcome = iota + 1
	// Unchanged means the stored blob hashes to the same digest; nothing was written.
	Unchanged
	// Changed means the stored blob differed and has been overwritten.
	Changed
)

func (o Outcome) String() string {
	switch o {
	case New:
		return "new"
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

var (
	// ErrCorruptBlob is returned when an existing blob cannot be parsed.
	// It is never reported as Unchanged.
	ErrCorruptBlob = errors.New("corrupt blob")

	// ErrInvalidKey is returned for keys that are empty or would escape
	// the kind directory.
	ErrInvalidKey = errors.New("invalid blob key")
)

const blobExt = ".json"

// Result describes a completed Put.
type Result struct {
	Outcome Outcome

	// Path is the blob path relative to the store root, e.g. "papers/x.json".
	Path string

	// Hash is the hex SHA-256 of the canonical payload.
	Hash string
}

// Store is a content-addressed blob store rooted at a directory. It is
// not safe for concurrent Puts on the same key.
type Store struct {
	root string
}

// Open opens a store rooted at root, creating the directory if needed.
func Open(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("content store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating content store root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the directory the store writes under.
func (s *Store) Root() string { return s.root }

// RelPath returns the root-relative blob path for kind and key.
func RelPath(kind Kind, key string) string {
	return string(kind) + "/" + key + blobExt
}

// Put canonicalizes payload, hashes it and compares the digest with the
// blob already stored under kind/key. The blob is written only when it is
// missing (New) or differs (Changed). An unparseable existing blob yields
// ErrCorruptBlob and is left untouched.
func (s *Store) Put(kind Kind, key string, payload any) (Result, error) {
	if err := validateKey(key); err != nil {
		return Result{}, err
	}

	canonical, err := Canonicalize(payload)
	if err != nil {
		return Result{}, fmt.Errorf("canonicalizing %s/%s: %w", kind, key, err)
	}
	res := Result{
		Path: RelPath(kind, key),
		Hash: hashBytes(canonical),
	}

	existing, err := s.Digest(res.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		res.Outcome = New
	case err != nil:
		return Result{}, err
	case existing == res.Hash:
		res.Outcome = Unchanged
		return res, nil
	default:
		res.Outcome = Changed
	}

	if err := s.write(res.Path, canonical); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Digest reads the blob at the root-relative path and returns the hash of
// its canonical form. A missing blob returns an error wrapping
// os.ErrNotExist; an unparseable one wraps ErrCorruptBlob.
func (s *Store) Digest(relPath string) (string, error) {
	data, err := os.ReadFile(s.abs(relPath))
	if err != nil {
		return "", err
	}
	canonical, err := CanonicalizeBytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCorruptBlob, relPath, err)
	}
	return hashBytes(canonical), nil
}

// List returns the root-relative paths of every blob of kind, sorted.
// A kind directory that was never created yields an empty list.
func (s *Store) List(kind Kind) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(kind)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), blobExt) {
			continue
		}
		paths = append(paths, string(kind)+"/"+entry.Name())
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Store) abs(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}

// write replaces the blob through a temp file and rename so a crash never
// leaves a truncated blob behind.
func (s *Store) write(relPath string, data []byte) error {
	dest := s.abs(relPath)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".blob-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	if writeErr == nil {
		writeErr = tmpFile.Sync()
	}
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", relPath, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func validateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	case strings.ContainsAny(key, `/\`), key == ".", key == "..", strings.ContainsRune(key, 0):
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
