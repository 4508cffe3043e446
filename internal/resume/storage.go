// Package resume stores uploaded resumes as opaque files under a per-owner
// directory. The files are never parsed.
package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"jobmate/board-service/internal/domain"
)

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = errors.New("resume exceeds the maximum upload size")

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// Storage writes resumes to <root>/resumes/<owner>/<uuid>-<name>.
type Storage struct {
	root     string
	maxBytes int64
}

func NewStorage(root string, maxBytes int64) *Storage {
	return &Storage{root: root, maxBytes: maxBytes}
}

// Save copies r to disk and returns the path relative to the storage root.
func (s *Storage) Save(ctx context.Context, ownerID, filename string, r io.Reader) (string, error) {
	name := sanitize(filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", &domain.ValidationError{Fields: map[string]string{"resume": "resume must be a .pdf, .doc, .docx or .txt file"}}
	}
	if ownerID == "" || strings.ContainsAny(ownerID, `/\.`) {
		return "", fmt.Errorf("invalid resume owner %q", ownerID)
	}

	rel := filepath.Join("resumes", ownerID, uuid.NewString()+"-"+name)
	full := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create resume dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create resume file: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = ctx.Err()
	}
	if err == nil && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Open returns the stored file at a path previously returned by Save.
func (s *Storage) Open(rel string) (*os.File, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if !strings.HasPrefix(clean, "resumes"+string(filepath.Separator)) {
		return nil, domain.ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.root, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	return f, err
}

func sanitize(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "." || name == "" {
		return "resume"
	}
	return name
}
