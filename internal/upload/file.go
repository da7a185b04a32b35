package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a picked file: its display name, declared media type and content
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// contentTypeFromName mirrors what a browser's picker would declare
func contentTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".pdf":
		return "application/pdf"
	default:
		return ""
	}
}

// LoadFile reads a file from disk the way a file picker would present it
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	name := filepath.Base(path)
	return File{
		Name:        name,
		ContentType: contentTypeFromName(name),
		Data:        data,
	}, nil
}
