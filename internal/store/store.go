// Package store reads and writes ticket files under a root directory. It has
// no cache and no index: every lookup is a fresh directory scan, and callers
// observe other writers through the filesystem alone.
package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/recursivesquircle/ticket-mcp/internal/frontmatter"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

// Record is one ticket file read from disk. ParseErr is non-empty when the
// header block failed to parse; such records must not be mutated.
type Record struct {
	Path     string
	Fields   frontmatter.Fields
	Body     string
	ParseErr string
}

// Store enumerates and persists ticket files under a root directory.
type Store struct {
	root string
}

// New creates a store rooted at the given directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the root directory.
func (s *Store) Root() string {
	return s.root
}

// ListFiles returns the absolute paths of every Markdown file under the five
// status folders, scanned recursively, in sorted order.
func (s *Store) ListFiles() ([]string, error) {
	var paths []string

	for _, folder := range ticket.Folders {
		dir := filepath.Join(s.root, folder)

		walkErr := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}

				return err
			}

			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				return nil
			}

			paths = append(paths, path)

			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, walkErr)
		}
	}

	slices.Sort(paths)

	return paths, nil
}

// Read loads one ticket file. Returns (nil, nil) when the file is absent.
func (s *Store) Read(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading ticket: %w", err)
	}

	fields, body, parseErr := frontmatter.Decode(string(data))

	return &Record{Path: path, Fields: fields, Body: body, ParseErr: parseErr}, nil
}

// FindByID scans all ticket files and returns the path of the first whose
// decoded id field matches. Ties are broken by enumeration order. Returns
// "" when no file matches.
func (s *Store) FindByID(id string) (string, error) {
	paths, err := s.ListFiles()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		record, readErr := s.Read(path)
		if readErr != nil || record == nil {
			continue
		}

		if got, _ := record.Fields.String("id"); got == id {
			return path, nil
		}
	}

	return "", nil
}

// Write encodes the record and persists it, creating parent directories as
// needed. The write is atomic: the file either keeps its prior content or
// holds the full new content.
func (s *Store) Write(path string, fields frontmatter.Fields, body string) error {
	content, err := frontmatter.Encode(fields, body)
	if err != nil {
		return err
	}

	mkdirErr := os.MkdirAll(filepath.Dir(path), dirPerms)
	if mkdirErr != nil {
		return fmt.Errorf("creating ticket directory: %w", mkdirErr)
	}

	writeErr := atomic.WriteFile(path, strings.NewReader(content))
	if writeErr != nil {
		return fmt.Errorf("writing ticket file: %w", writeErr)
	}

	// atomic.WriteFile does not set permissions on new files.
	chmodErr := os.Chmod(path, filePerms)
	if chmodErr != nil {
		return fmt.Errorf("setting ticket file permissions: %w", chmodErr)
	}

	return nil
}

// Remove deletes a ticket file. Used by move-style operations after the
// destination write succeeds.
func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if err != nil {
		return fmt.Errorf("removing ticket file: %w", err)
	}

	return nil
}

// Resolve turns an id/path pair into an existing absolute file path. Path
// takes precedence over id; a relative path is resolved against the root.
// Returns "" when nothing resolves.
func (s *Store) Resolve(id, path string) (string, error) {
	if path != "" {
		resolved := path
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(s.root, resolved)
		}

		_, statErr := os.Stat(resolved)
		if statErr != nil {
			return "", nil
		}

		return resolved, nil
	}

	if id == "" {
		return "", nil
	}

	return s.FindByID(id)
}
