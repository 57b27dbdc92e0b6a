package helix

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// DefaultStillframeServer is used when neither the call nor the credentials name one.
const DefaultStillframeServer = "service-staging"

// Video is a single video resource.
type Video struct{ *Resource }

// Download returns the video file. An empty contentType asks for the
// service's default encoding.
func (v *Video) Download(ctx context.Context, contentType string) ([]byte, error) {
	return v.fetchAction(ctx, "file", contentType)
}

// Play returns the playback payload for the video.
func (v *Video) Play(ctx context.Context, contentType string) ([]byte, error) {
	return v.fetchAction(ctx, "play", contentType)
}

// Stillframe returns JPEG data for a screenshot of the video.
func (v *Video) Stillframe(ctx context.Context, opts StillframeOptions) ([]byte, error) {
	return getStillframe(ctx, v.config, v.GUID(), opts)
}

// Track is a single audio track resource.
type Track struct{ *Resource }

// Download returns the audio file.
func (t *Track) Download(ctx context.Context, contentType string) ([]byte, error) {
	return t.fetchAction(ctx, "file", contentType)
}

// Play returns the playback payload for the track.
func (t *Track) Play(ctx context.Context, contentType string) ([]byte, error) {
	return t.fetchAction(ctx, "play", contentType)
}

// Image is a single image resource.
type Image struct{ *Resource }

// Album is a named group of images.
type Album struct{ *Resource }

var errAlbumUpdate = fmt.Errorf("albums update is not currently supported: %w", ErrUnsupported)

// Update always fails: the service does not accept album updates.
func (a *Album) Update(_ context.Context, _ Attributes) error {
	return errAlbumUpdate
}

// AlbumKnownAttributes lists the attributes an album carries.
var AlbumKnownAttributes = []string{"title", "description"}

// Videos is the collection of videos in the configured scope.
type Videos struct {
	*Collection[*Video]
	Uploads
}

// NewVideos returns the video collection for cfg.
func NewVideos(cfg *Config) *Videos {
	return &Videos{
		Collection: newCollection(cfg, VideoKind, func(r *Resource) *Video { return &Video{r} }),
		Uploads:    Uploads{config: cfg},
	}
}

// Stillframe returns JPEG data for a screenshot of the video guid.
func (v *Videos) Stillframe(ctx context.Context, guid string, opts StillframeOptions) ([]byte, error) {
	return getStillframe(ctx, v.Collection.config, guid, opts)
}

// Slice asks the service to cut a new video out of an existing one. attrs
// are sent as form fields; a "content_type" attribute selects the response
// format (xml by default).
func (v *Videos) Slice(ctx context.Context, attrs Attributes) ([]byte, error) {
	contentType := attrs.String("content_type")
	if contentType == "" {
		contentType = "xml"
	}
	rawURL := v.Collection.config.BuildURL(URLOptions{
		MediaType:   VideoKind.Plural,
		Action:      "slice",
		ContentType: contentType,
	})

	body, err := v.Collection.config.signedForm(ctx, http.MethodPost, rawURL, SignatureIngest, attrs.form(""))
	if err != nil {
		return nil, fmt.Errorf("slice video: %w", err)
	}
	return body, nil
}

// Tracks is the collection of audio tracks in the configured scope.
type Tracks struct {
	*Collection[*Track]
	Uploads
}

// NewTracks returns the track collection for cfg.
func NewTracks(cfg *Config) *Tracks {
	return &Tracks{
		Collection: newCollection(cfg, TrackKind, func(r *Resource) *Track { return &Track{r} }),
		Uploads:    Uploads{config: cfg},
	}
}

// Images is the collection of images in the configured scope.
type Images struct {
	*Collection[*Image]
	Uploads
}

// NewImages returns the image collection for cfg.
func NewImages(cfg *Config) *Images {
	return &Images{
		Collection: newCollection(cfg, ImageKind, func(r *Resource) *Image { return &Image{r} }),
		Uploads:    Uploads{config: cfg},
	}
}

// Albums is the collection of albums in the configured scope.
type Albums struct {
	*Collection[*Album]
}

// NewAlbums returns the album collection for cfg.
func NewAlbums(cfg *Config) *Albums {
	return &Albums{
		Collection: newCollection(cfg, AlbumKind, func(r *Resource) *Album { return &Album{r} }),
	}
}

// StillframeOptions selects the screenshot size and host.
type StillframeOptions struct {
	// Server overrides the stillframe host. A bare name becomes
	// http://{name}.twistage.com; a value with a scheme is used as is.
	Server string
	Width  int
	Height int
}

// StillframeURL returns the screenshot URL for guid.
func StillframeURL(creds Credentials, guid string, opts StillframeOptions) string {
	server := opts.Server
	if server == "" {
		server = creds.Server
	}
	if server == "" {
		server = DefaultStillframeServer
	}

	base := strings.TrimSuffix(server, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base + ".twistage.com"
	}

	var size string
	if opts.Width > 0 {
		size += strconv.Itoa(opts.Width) + "w"
	}
	if opts.Height > 0 {
		size += strconv.Itoa(opts.Height) + "h"
	}
	if size == "" {
		size = "original"
	}

	return base + "/videos/" + guid + "/screenshots/" + size + ".jpg"
}

func getStillframe(ctx context.Context, cfg *Config, guid string, opts StillframeOptions) ([]byte, error) {
	data, err := cfg.doRequest(ctx, http.MethodGet, StillframeURL(cfg.Credentials(), guid, opts), nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("stillframe %s: %w", guid, err)
	}
	return data, nil
}
