// Package export encodes finished strips and hands them to a download target.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Blob is an encoded strip ready to be saved.
type Blob struct {
	Filename string
	MimeType string
	Data     []byte
}

// Export encodes img losslessly as PNG, named after the time now.
func Export(img image.Image, now time.Time) (Blob, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return Blob{}, fmt.Errorf("failed to encode strip: %w", err)
	}
	return Blob{
		Filename: Filename(now),
		MimeType: "image/png",
		Data:     buf.Bytes(),
	}, nil
}

// Filename is the download name of a strip exported at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("photobooth-strip-%d.png", t.UnixMilli())
}

// Saver accepts a blob and makes it available to the user.
type Saver interface {
	Save(ctx context.Context, blob Blob) (string, error)
}

// DirSaver writes blobs into a directory.
type DirSaver struct {
	Dir string
}

func NewDirSaver(dir string) *DirSaver {
	return &DirSaver{Dir: dir}
}

// Save writes blob to Dir and returns the file path.
func (s *DirSaver) Save(ctx context.Context, blob Blob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.Dir, filepath.Base(blob.Filename))
	if err := os.WriteFile(path, blob.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to save strip: %w", err)
	}

	slog.Info("Strip saved", "path", path, "bytes", len(blob.Data))
	return path, nil
}
