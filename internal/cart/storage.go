package cart

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// MemoryStorage keeps cart state in memory, mainly for tests.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MemoryStorage) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.data[key] = buf
	return nil
}

// FileStorage writes each key to a JSON file under Dir, the desktop
// analogue of browser local storage.
type FileStorage struct {
	Dir string
}

func (f FileStorage) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

func (f FileStorage) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f FileStorage) Save(key string, data []byte) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path(key), data, 0o644)
}
