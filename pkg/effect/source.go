package effect

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/slideweave/pkg/errors"
)

// ImageSource loads the raw bytes of an image reference. It is the only I/O
// the render path performs.
type ImageSource interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// FileSource reads images from disk. Relative references resolve against Root,
// normally the directory of the deck file.
type FileSource struct {
	Root string
}

func (s FileSource) Load(ctx context.Context, ref string) ([]byte, error) {
	if err := errors.ValidateAssetPath(ref); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := ref
	if !filepath.IsAbs(path) && s.Root != "" {
		path = filepath.Join(s.Root, path)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s not found", ref)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read image %s", ref)
	}
	return data, nil
}

// MemorySource serves images from memory. It is safe for concurrent use.
type MemorySource struct {
	mu     sync.RWMutex
	images map[string][]byte
}

// NewMemorySource returns a source holding a copy of images.
func NewMemorySource(images map[string][]byte) *MemorySource {
	m := &MemorySource{images: make(map[string][]byte, len(images))}
	for k, v := range images {
		m.images[k] = v
	}
	return m
}

// Put adds or replaces an image.
func (m *MemorySource) Put(ref string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[ref] = data
}

func (m *MemorySource) Load(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.images[ref]
	if !ok {
		return nil, errors.New(errors.ErrCodeFileNotFound, "image %s not found", ref)
	}
	return data, nil
}
