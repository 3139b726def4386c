package users

import (
	"context"
	"os"
)

// FileBackend stores the user list as one JSON file on disk.
type FileBackend struct {
	FilePath string
}

func NewFileBackend(filePath string) *FileBackend {
	return &FileBackend{FilePath: filePath}
}

func (f *FileBackend) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(f.FilePath)
}

func (f *FileBackend) Save(ctx context.Context, data []byte) error {
	return os.WriteFile(f.FilePath, data, 0644)
}
