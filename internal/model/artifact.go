package model

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Artifact is a locally selected file waiting to be uploaded.
type Artifact struct {
	Name        string
	ContentType string
	Size        int64
	open        func() (io.ReadCloser, error)
}

// ArtifactFromFile selects a file on disk. The file is opened lazily on upload.
func ArtifactFromFile(path string) (Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return Artifact{}, fmt.Errorf("%s is a directory", path)
	}
	return Artifact{
		Name:        filepath.Base(path),
		ContentType: contentType(path),
		Size:        info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// ArtifactFromBytes selects in-memory content.
func ArtifactFromBytes(name string, data []byte) Artifact {
	return Artifact{
		Name:        name,
		ContentType: contentType(name),
		Size:        int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// IsZero reports whether no file is selected.
func (a Artifact) IsZero() bool { return a.open == nil }

// Ext returns the lower-cased file extension including the dot.
func (a Artifact) Ext() string { return strings.ToLower(filepath.Ext(a.Name)) }

// Open returns a reader over the artifact content.
func (a Artifact) Open() (io.ReadCloser, error) {
	if a.open == nil {
		return nil, fmt.Errorf("no file selected")
	}
	return a.open()
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
