package utils

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	gcsPrefix      = "https://storage.googleapis.com/"
	firebasePrefix = "https://firebasestorage.googleapis.com/v0/b/"
)

// ExtractObjectPath returns the object path inside the bucket for a public
// storage URL. Both the plain GCS form and the Firebase download form
// (".../v0/b/<bucket>/o/<escaped path>?alt=media") are accepted.
func ExtractObjectPath(rawURL string) (string, error) {
	switch {
	case strings.HasPrefix(rawURL, gcsPrefix):
		parts := strings.SplitN(strings.TrimPrefix(rawURL, gcsPrefix), "/", 2)
		if len(parts) != 2 || parts[1] == "" {
			return "", fmt.Errorf("invalid URL format")
		}
		return parts[1], nil

	case strings.HasPrefix(rawURL, firebasePrefix):
		rest := strings.TrimPrefix(rawURL, firebasePrefix)
		if i := strings.IndexByte(rest, '?'); i >= 0 {
			rest = rest[:i]
		}
		parts := strings.SplitN(rest, "/o/", 2)
		if len(parts) != 2 || parts[1] == "" {
			return "", fmt.Errorf("invalid URL format")
		}
		return url.PathUnescape(parts[1])
	}
	return "", fmt.Errorf("invalid URL")
}
