package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store guarda en <root>/<folder>/<filename> y devuelve solo el filename,
// que se sirve luego bajo /images/<folder>/<filename>.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string { return s.root }

func (s *Store) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.ContainsAny(folder, `/\`) || strings.ContainsAny(filename, `/\`) || filename == "" {
		return "", fmt.Errorf("invalid upload path %q/%q", folder, filename)
	}

	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	full := filepath.Join(dir, filename)
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return filename, nil
}

func (s *Store) Delete(ctx context.Context, folder, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(folder, `/\`) || strings.ContainsAny(ref, `/\`) || ref == "" {
		return fmt.Errorf("invalid upload path %q/%q", folder, ref)
	}
	err := os.Remove(filepath.Join(s.root, folder, ref))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}
