// Package attachments stores fulfillment PDFs in a content-addressed
// directory and verifies their integrity.
//
// Files are named by the hex sha256 of their content, so identical uploads
// deduplicate and a maintenance sweep can detect on-disk corruption by
// re-hashing.
package attachments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"
)

// blobExt is the extension for stored fulfillment files.
const blobExt = ".pdf"

// SavedBlob describes one stored fulfillment file.
type SavedBlob struct {
	SHA256    string
	SizeBytes int64
	Path      string
}

// Issue describes one problem found by a verification sweep.
type Issue struct {
	Name   string
	Detail string
}

// Store persists fulfillment files under a single directory.
type Store struct {
	root string

	// validate checks one stored file for structural integrity. It is a
	// hook for tests; the default validates with pdfcpu.
	validate func(path string) error
}

// NewStore opens (creating if needed) a blob directory at root.
func NewStore(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob root is required")
	}
	cleanRoot := filepath.Clean(root)
	if err := os.MkdirAll(cleanRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: cleanRoot, validate: validatePDF}, nil
}

// Save streams content into the store and returns its content address.
// Saving identical content twice is idempotent.
func (s *Store) Save(content io.Reader) (SavedBlob, error) {
	if s == nil || s.root == "" {
		return SavedBlob{}, fmt.Errorf("blob store is not configured")
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return SavedBlob{}, fmt.Errorf("create upload file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), content)
	closeErr := tmp.Close()
	if err != nil {
		return SavedBlob{}, fmt.Errorf("write upload file: %w", err)
	}
	if closeErr != nil {
		return SavedBlob{}, fmt.Errorf("close upload file: %w", closeErr)
	}
	if size == 0 {
		return SavedBlob{}, fmt.Errorf("upload is empty")
	}

	sum := hex.EncodeToString(hash.Sum(nil))
	finalPath := s.Path(sum)
	if _, err := os.Stat(finalPath); err == nil {
		// Same content already stored; keep the existing blob.
		return SavedBlob{SHA256: sum, SizeBytes: size, Path: finalPath}, nil
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return SavedBlob{}, fmt.Errorf("store blob: %w", err)
	}
	return SavedBlob{SHA256: sum, SizeBytes: size, Path: finalPath}, nil
}

// Path returns the storage path for a content hash.
func (s *Store) Path(sha256Hex string) string {
	return filepath.Join(s.root, sha256Hex+blobExt)
}

// Remove deletes one stored blob. Missing blobs are not an error.
func (s *Store) Remove(sha256Hex string) error {
	if s == nil || s.root == "" {
		return fmt.Errorf("blob store is not configured")
	}
	err := os.Remove(s.Path(sha256Hex))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

// Inspect validates the stored blob as a PDF and returns its page count.
func (s *Store) Inspect(sha256Hex string) (int, error) {
	if s == nil || s.root == "" {
		return 0, fmt.Errorf("blob store is not configured")
	}
	path := s.Path(sha256Hex)
	if s.validate != nil {
		if err := s.validate(path); err != nil {
			return 0, fmt.Errorf("validate pdf: %w", err)
		}
	}
	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return pageCount, nil
}

// VerifyAll re-hashes and re-validates every stored blob with at most
// workers concurrent checks, and returns the issues found sorted by name.
func (s *Store) VerifyAll(ctx context.Context, workers int) ([]Issue, error) {
	if s == nil || s.root == "" {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if workers <= 0 {
		workers = 4
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read blob root: %w", err)
	}

	var mu sync.Mutex
	var issues []Issue
	report := func(name, detail string) {
		mu.Lock()
		issues = append(issues, Issue{Name: name, Detail: detail})
		mu.Unlock()
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), blobExt) {
			continue
		}
		name := entry.Name()
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(s.root, name)
			sum, err := hashFile(path)
			if err != nil {
				report(name, fmt.Sprintf("hash: %v", err))
				return nil
			}
			if want := strings.TrimSuffix(name, blobExt); sum != want {
				report(name, fmt.Sprintf("content hash %s does not match name", sum))
				return nil
			}
			if s.validate != nil {
				if err := s.validate(path); err != nil {
					report(name, fmt.Sprintf("validate: %v", err))
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Name < issues[j].Name })
	return issues, nil
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func validatePDF(path string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.ValidateFile(path, conf)
}
