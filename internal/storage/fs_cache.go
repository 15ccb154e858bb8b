package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// FSCache is a filesystem-backed Cache. Objects live under
// root/objects/<aa>/<hash> where <aa> is the first two hex chars of the key,
// bounding per-directory entry counts. Writes go through a temp file and
// rename so readers never observe partial objects.
type FSCache struct {
	root string
}

// NewFSCache creates (if needed) and opens a cache rooted at dir.
func NewFSCache(dir string) (*FSCache, error) {
	root := filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Join(root, "objects"), 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FSCache{root: root}, nil
}

func (c *FSCache) objectPath(key string) (string, error) {
	if len(key) != 64 || !isHex(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(c.root, "objects", key[:2], key), nil
}

// Get implements Cache.
func (c *FSCache) Get(key string) ([]byte, bool, error) {
	path, err := c.objectPath(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache object: %w", err)
	}
	return data, true, nil
}

// Put implements Cache.
func (c *FSCache) Put(key string, data []byte) error {
	path, err := c.objectPath(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil // content-addressed: existing object is identical
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create cache fanout dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write cache object: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit cache object: %w", err)
	}
	return nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
