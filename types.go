package helix

import (
	"fmt"
	"time"
)

// SignatureType selects which kind of authorization token the service issues.
type SignatureType string

const (
	SignatureIngest SignatureType = "ingest"
	SignatureUpdate SignatureType = "update"
	SignatureView   SignatureType = "view"
)

// ValidSignatureTypes lists the signature types the service understands, in canonical order.
var ValidSignatureTypes = []SignatureType{SignatureIngest, SignatureUpdate, SignatureView}

func (t SignatureType) IsValid() bool {
	switch t {
	case SignatureIngest, SignatureUpdate, SignatureView:
		return true
	default:
		return false
	}
}

// ParseSignatureType converts a string to a SignatureType.
func ParseSignatureType(s string) (SignatureType, error) {
	t := SignatureType(s)
	if !t.IsValid() {
		return "", &SignatureTypeError{Type: t}
	}
	return t, nil
}

// SignatureKey identifies one cached token: tokens are scoped to a license key and a type.
type SignatureKey struct {
	LicenseKey string
	Type       SignatureType
}

func (k SignatureKey) String() string {
	return fmt.Sprintf("%s/%s", k.LicenseKey, k.Type)
}

// CachedSignature is a memoized token and the instant it stops being usable.
type CachedSignature struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the signature can no longer be used at now.
// A zero expiry counts as expired.
func (s CachedSignature) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(s.ExpiresAt)
}

// Kind describes one media resource family and how the service names it.
type Kind struct {
	// Name is the singular label, also the root key of single-resource responses.
	Name string
	// Plural is the URL segment and the root key of list responses.
	Plural string
	// GUIDName is the attribute carrying the resource identifier.
	GUIDName string
}

var (
	VideoKind = Kind{Name: "video", Plural: "videos", GUIDName: "video_id"}
	TrackKind = Kind{Name: "track", Plural: "tracks", GUIDName: "track_id"}
	AlbumKind = Kind{Name: "album", Plural: "albums", GUIDName: "album_id"}
	ImageKind = Kind{Name: "image", Plural: "images", GUIDName: "image_id"}
)

// Kinds returns every media kind the client knows, keyed by plural label.
func Kinds() map[string]Kind {
	return map[string]Kind{
		VideoKind.Plural: VideoKind,
		TrackKind.Plural: TrackKind,
		AlbumKind.Plural: AlbumKind,
		ImageKind.Plural: ImageKind,
	}
}

// ParseKind accepts a singular or plural media label.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if s == k.Name || s == k.Plural {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("unknown media kind %q", s)
}
