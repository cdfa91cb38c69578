package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lox/loveletter/internal/fileutil"
	"github.com/lox/loveletter/internal/gameid"
)

// File stores each match as <code>.json in a directory. Writes go through
// fileutil.WriteJSON so a crash never leaves a truncated document.
type File struct {
	dir string
	mu  sync.Mutex
}

// OpenFile creates dir if needed and returns a store rooted there.
func OpenFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage path is required")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// path maps a code to its document. Codes are validated first so they can
// never name a file outside dir.
func (f *File) path(code string) (string, error) {
	if err := gameid.Validate(code); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return filepath.Join(f.dir, code+".json"), nil
}

func (f *File) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.validate(); err != nil {
		return err
	}
	path, err := f.path(rec.Code)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := fileutil.WriteJSON(path, rec, 0o600); err != nil {
		return fmt.Errorf("save %s: %w", rec.Code, err)
	}
	return nil
}

func (f *File) Load(ctx context.Context, code string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	path, err := f.path(code)
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := fileutil.ReadJSON(path, &rec); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load %s: %w", code, err)
	}
	return rec, nil
}

func (f *File) Delete(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(code)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", code, err)
	}
	return nil
}

func (f *File) Close() error { return nil }
