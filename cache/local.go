package cache

import (
	"context"
	"os"
	"path/filepath"
)

// LocalBackend stores cache entries under a directory on the local
// filesystem. It exists mainly as a no-dependency Backend implementation
// for tests and for single-machine setups that want the Backend interface
// without standing up Redis or S3.
type LocalBackend struct {
	dir string
}

// NewLocalBackend returns a backend rooted at dir, creating it if needed.
func NewLocalBackend(dir string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalBackend{dir: dir}, nil
}

func (b *LocalBackend) GetCompDB(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, "compdb", key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *LocalBackend) PutCompDB(ctx context.Context, key string, data []byte) error {
	p := filepath.Join(b.dir, "compdb", key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (b *LocalBackend) GetObject(ctx context.Context, key string, dst string) error {
	src := filepath.Join(b.dir, "objects", key)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return ErrNotFound
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func (b *LocalBackend) PutObject(ctx context.Context, key string, src string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	p := filepath.Join(b.dir, "objects", key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (b *LocalBackend) Close() error {
	return nil
}
