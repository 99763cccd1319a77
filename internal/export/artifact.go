package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults for produced artifacts.
const (
	DefaultFilename = "qr-code.png"
	ContentTypePNG  = "image/png"
	ContentTypeSVG  = "image/svg+xml;charset=utf-8"
)

// Artifact is a single encoded export, handed to a Saver once.
type Artifact struct {
	Filename    string
	ContentType string
	Width       int
	Height      int
	Data        []byte
}

// DataURI returns the artifact as a base64 data: URI.
func (a Artifact) DataURI() string {
	return "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// Saver delivers an artifact to the user.
type Saver interface {
	Save(ctx context.Context, a Artifact) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, a Artifact) error

func (f SaverFunc) Save(ctx context.Context, a Artifact) error {
	return f(ctx, a)
}

// DirSaver writes artifacts into dir under their own filename.
func DirSaver(dir string) Saver {
	return SaverFunc(func(_ context.Context, a Artifact) error {
		path := filepath.Join(dir, filepath.Base(a.Filename))
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	})
}
