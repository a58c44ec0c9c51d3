package http

import (
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// DetectContentType infers the MIME type of an uploaded file from its
// extension, then from its content.
func DetectContentType(fileName string, data []byte) string {
	if ext := filepath.Ext(fileName); ext != "" {
		if ct := mime.TypeByExtension(strings.ToLower(ext)); ct != "" {
			return ct
		}
	}
	if len(data) > 0 {
		if mt := mimetype.Detect(data); mt != nil {
			return mt.String()
		}
	}
	return defaultContentType
}

// FileNameFromURL returns the last path segment of rawURL, or "download"
// when the URL has no usable segment.
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "download"
	}
	return name
}
