package blob

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheme prefixes every URL issued by a Registry.
const Scheme = "blob:"

var (
	ErrNotFound   = errors.New("blob: no resource at url")
	ErrInvalidURL = errors.New("blob: malformed url")
)

// Blob is an immutable in-memory resource.
type Blob struct {
	Type    string
	Data    []byte
	Created time.Time
}

// Reader returns a fresh reader over the blob data.
func (b Blob) Reader() io.Reader {
	return bytes.NewReader(b.Data)
}

// Registry maps blob: URLs to in-memory resources. A URL stays loadable
// until it is revoked; nothing expires on its own. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Blob
	now   func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		items: make(map[string]Blob),
		now:   time.Now,
	}
}

// Create stores a copy of data and returns its URL.
func (r *Registry) Create(data []byte, contentType string) string {
	id := uuid.NewString()
	b := Blob{
		Type:    contentType,
		Data:    bytes.Clone(data),
		Created: r.now(),
	}

	r.mu.Lock()
	r.items[id] = b
	r.mu.Unlock()

	return Scheme + id
}

// Open returns the resource behind url.
func (r *Registry) Open(url string) (Blob, error) {
	id, err := ID(url)
	if err != nil {
		return Blob{}, err
	}
	return r.Lookup(id)
}

// Lookup returns the resource with the given id.
func (r *Registry) Lookup(id string) (Blob, error) {
	r.mu.RLock()
	b, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return Blob{}, ErrNotFound
	}
	return b, nil
}

// Revoke releases the resource behind url. Revoking an unknown or already
// revoked URL is a no-op.
func (r *Registry) Revoke(url string) {
	id, err := ID(url)
	if err != nil {
		return
	}
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()
}

// Len reports the number of live resources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// ID extracts the identifier from a blob URL.
func ID(url string) (string, error) {
	id, ok := strings.CutPrefix(url, Scheme)
	if !ok {
		return "", ErrInvalidURL
	}
	if err := uuid.Validate(id); err != nil {
		return "", errors.Join(ErrInvalidURL, err)
	}
	return id, nil
}
