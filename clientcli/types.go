package clientcli

import (
	"fmt"
	"strings"

	"github.com/helixmedia/helix"
)

// ListResult holds the resources of one kind returned by a list.
type ListResult struct {
	Kind  string             `json:"kind"`
	Items []helix.Attributes `json:"items"`
}

// ResourceResult holds one resource returned by find, create or update.
type ResourceResult struct {
	Kind       string           `json:"kind"`
	GUID       string           `json:"guid"`
	Attributes helix.Attributes `json:"attributes"`
}

// DownloadOptions configures a download, play or stillframe fetch.
type DownloadOptions struct {
	Kind        helix.Kind
	GUID        string
	Action      string // "file", "play" or "stillframe"
	ContentType string
	LocalPath   string // "-" = stdout
	Stillframe  helix.StillframeOptions
}

// DownloadResult represents the result of downloading a payload.
type DownloadResult struct {
	Kind      string `json:"kind"`
	GUID      string `json:"guid"`
	Action    string `json:"action"`
	LocalPath string `json:"local_path"`
	Size      int64  `json:"size_bytes"`
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath string `json:"local_path"`
	Filename  string `json:"filename"`
	Size      int64  `json:"size_bytes"`
	Response  string `json:"response,omitempty"`
	Err       error  `json:"-"` // nil on success
}

// DeleteResult represents the result of deleting a single resource.
type DeleteResult struct {
	GUID    string `json:"guid"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// SignatureResult reports a signature and whether it came from the cache.
type SignatureResult struct {
	Type   helix.SignatureType `json:"type"`
	Token  string              `json:"token"`
	Cached bool                `json:"cached"`
}

// StatsResult holds one statistics report.
type StatsResult struct {
	Media  string `json:"media"`
	Kind   string `json:"kind"`
	Report any    `json:"report"`
}

// ParseAttributes turns key=value arguments into attributes.
func ParseAttributes(args []string) (helix.Attributes, error) {
	if len(args) == 0 {
		return nil, ErrNoAttributes
	}

	attrs := make(helix.Attributes, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrAttributeFormat, arg)
		}
		attrs[key] = value
	}
	return attrs, nil
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// HasUploadErrors returns true if any upload failed.
func HasUploadErrors(results []UploadResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}
