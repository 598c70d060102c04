package framesource

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Directory replays the images of a directory in name order, one per Frame
// call, wrapping around at the end.
type Directory struct {
	dir string

	mu    sync.Mutex
	files []string
	next  int
	live  bool
}

func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

func (d *Directory) Start(ctx context.Context) error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".gif":
			files = append(files, filepath.Join(d.dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no images in %s", ErrUnavailable, d.dir)
	}
	sort.Strings(files)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.files = files
	d.next = 0
	d.live = true
	slog.Debug("Directory frame source started", "dir", d.dir, "frames", len(files))
	return nil
}

func (d *Directory) Frame(ctx context.Context) (image.Image, error) {
	d.mu.Lock()
	if !d.live {
		d.mu.Unlock()
		return nil, ErrStopped
	}
	path := d.files[d.next%len(d.files)]
	d.next++
	d.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", path, err)
	}
	return img, nil
}

func (d *Directory) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live = false
}
