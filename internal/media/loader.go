package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Image is a candidate attachment found on disk. The chat core only ever sees
// Path, as an opaque handle.
type Image struct {
	Path     string
	FileName string
	Size     int64
}

// ListImages returns the supported images directly inside dir, sorted by
// file name. Subdirectories and hidden files are skipped.
func ListImages(ctx context.Context, dir string) ([]Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}

	var images []Image
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !IsImagePath(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		images = append(images, Image{
			Path:     filepath.Join(absDir, name),
			FileName: name,
			Size:     info.Size(),
		})
	}

	sort.Slice(images, func(i, j int) bool {
		return strings.ToLower(images[i].FileName) < strings.ToLower(images[j].FileName)
	})

	return images, nil
}

// DisplayName returns the file name of an image handle for display
func DisplayName(handle string) string {
	if handle == "" {
		return ""
	}
	return filepath.Base(handle)
}
