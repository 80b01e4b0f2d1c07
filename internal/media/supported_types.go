package media

import (
	"path/filepath"
	"strings"
)

// SupportedExtensions defines file extensions that can be attached as images
var SupportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
	".tiff": false, // most terminals and viewers can't preview it
	".heic": false,
}

// IsSupported checks if a file extension is supported for attachment
func IsSupported(ext string) bool {
	supported, exists := SupportedExtensions[strings.ToLower(ext)]
	return exists && supported
}

// IsImagePath reports whether path has a supported image extension
func IsImagePath(path string) bool {
	return IsSupported(filepath.Ext(path))
}
