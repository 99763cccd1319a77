package blob_test

import (
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrstudio/pkg/blob"
)

func TestRegistryLifecycle(t *testing.T) {
	t.Parallel()

	reg := blob.NewRegistry()
	data := []byte("<svg/>")

	url := reg.Create(data, "image/svg+xml;charset=utf-8")
	require.True(t, strings.HasPrefix(url, blob.Scheme))
	assert.Equal(t, 1, reg.Len())

	data[0] = 'X'

	b, err := reg.Open(url)
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml;charset=utf-8", b.Type)
	assert.Equal(t, "<svg/>", string(b.Data), "registry keeps its own copy")
	assert.False(t, b.Created.IsZero())

	got, err := io.ReadAll(b.Reader())
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(got))

	id, err := blob.ID(url)
	require.NoError(t, err)
	byID, err := reg.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, b.Data, byID.Data)

	reg.Revoke(url)
	assert.Equal(t, 0, reg.Len())
	_, err = reg.Open(url)
	assert.ErrorIs(t, err, blob.ErrNotFound)

	reg.Revoke(url)
	reg.Revoke("not a url")
}

func TestRegistryDistinctURLs(t *testing.T) {
	t.Parallel()

	reg := blob.NewRegistry()
	a := reg.Create([]byte("a"), "text/plain")
	b := reg.Create([]byte("a"), "text/plain")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, reg.Len())
}

func TestID(t *testing.T) {
	t.Parallel()

	_, err := blob.ID("https://example.com")
	assert.ErrorIs(t, err, blob.ErrInvalidURL)

	_, err = blob.ID("blob:not-a-uuid")
	assert.ErrorIs(t, err, blob.ErrInvalidURL)

	_, err = blob.NewRegistry().Open("blob:../../etc/passwd")
	assert.ErrorIs(t, err, blob.ErrInvalidURL)
}

func TestRegistryConcurrent(t *testing.T) {
	t.Parallel()

	reg := blob.NewRegistry()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url := reg.Create([]byte("x"), "text/plain")
			_, err := reg.Open(url)
			assert.NoError(t, err)
			reg.Revoke(url)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, reg.Len())
}
