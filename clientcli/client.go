package clientcli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/helixmedia/helix"
)

// Client performs helix-cli operations against one helix.Config,
// dispatching on media kind.
type Client struct {
	config *helix.Config
	videos *helix.Videos
	tracks *helix.Tracks
	images *helix.Images
	albums *helix.Albums
	stats  *helix.Statistics
}

// New creates a Client over cfg.
func New(cfg *helix.Config) (*Client, error) {
	if cfg == nil {
		return nil, helix.ErrConfigRequired
	}

	return &Client{
		config: cfg,
		videos: helix.NewVideos(cfg),
		tracks: helix.NewTracks(cfg),
		images: helix.NewImages(cfg),
		albums: helix.NewAlbums(cfg),
		stats:  helix.NewStatistics(cfg),
	}, nil
}

// resource is the instance surface shared by every media kind.
type resource interface {
	GUID() string
	Attributes() helix.Attributes
	Load(ctx context.Context, params url.Values) error
	Update(ctx context.Context, attrs helix.Attributes) error
	Destroy(ctx context.Context) error
}

// player is a resource with a downloadable payload.
type player interface {
	resource
	Download(ctx context.Context, contentType string) ([]byte, error)
	Play(ctx context.Context, contentType string) ([]byte, error)
}

type uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) ([]byte, error)
}

func listAttributes[T resource](ctx context.Context, coll *helix.Collection[T], query url.Values) ([]helix.Attributes, error) {
	found, err := coll.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	items := make([]helix.Attributes, len(found))
	for i, r := range found {
		items[i] = r.Attributes()
	}
	return items, nil
}

func create[T resource](ctx context.Context, coll *helix.Collection[T], attrs helix.Attributes) (resource, error) {
	r, err := coll.Create(ctx, attrs)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List lists resources of kind matching query.
func (c *Client) List(ctx context.Context, kind helix.Kind, query url.Values) (*ListResult, error) {
	var items []helix.Attributes
	var err error

	switch kind {
	case helix.VideoKind:
		items, err = listAttributes(ctx, c.videos.Collection, query)
	case helix.TrackKind:
		items, err = listAttributes(ctx, c.tracks.Collection, query)
	case helix.ImageKind:
		items, err = listAttributes(ctx, c.images.Collection, query)
	case helix.AlbumKind:
		items, err = listAttributes(ctx, c.albums.Collection, query)
	default:
		return nil, unknownKind(kind)
	}
	if err != nil {
		return nil, err
	}

	return &ListResult{Kind: kind.Plural, Items: items}, nil
}

// Find loads the resource identified by guid.
func (c *Client) Find(ctx context.Context, kind helix.Kind, guid string) (*ResourceResult, error) {
	if guid == "" {
		return nil, ErrEmptyGUID
	}

	r, err := c.resourceFor(kind, helix.Attributes{kind.GUIDName: guid})
	if err != nil {
		return nil, err
	}
	if err := r.Load(ctx, nil); err != nil {
		return nil, err
	}
	return resourceResult(kind, r), nil
}

// Create creates a resource of kind from attrs.
func (c *Client) Create(ctx context.Context, kind helix.Kind, attrs helix.Attributes) (*ResourceResult, error) {
	if len(attrs) == 0 {
		return nil, ErrNoAttributes
	}

	var r resource
	var err error

	switch kind {
	case helix.VideoKind:
		r, err = create(ctx, c.videos.Collection, attrs)
	case helix.TrackKind:
		r, err = create(ctx, c.tracks.Collection, attrs)
	case helix.ImageKind:
		r, err = create(ctx, c.images.Collection, attrs)
	case helix.AlbumKind:
		r, err = create(ctx, c.albums.Collection, attrs)
	default:
		return nil, unknownKind(kind)
	}
	if err != nil {
		return nil, err
	}

	return resourceResult(kind, r), nil
}

// Update sends attrs for the resource identified by guid.
func (c *Client) Update(ctx context.Context, kind helix.Kind, guid string, attrs helix.Attributes) (*ResourceResult, error) {
	if guid == "" {
		return nil, ErrEmptyGUID
	}
	if len(attrs) == 0 {
		return nil, ErrNoAttributes
	}

	r, err := c.resourceFor(kind, helix.Attributes{kind.GUIDName: guid})
	if err != nil {
		return nil, err
	}
	if err := r.Update(ctx, attrs); err != nil {
		return nil, err
	}
	return resourceResult(kind, r), nil
}

// Delete deletes one or more resources.
// Continues on error, collecting results for all guids.
func (c *Client) Delete(ctx context.Context, kind helix.Kind, guids []string) ([]DeleteResult, error) {
	if len(guids) == 0 {
		return nil, ErrNoGUIDs
	}

	results := make([]DeleteResult, 0, len(guids))

	for _, guid := range guids {
		// Check context cancellation
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := DeleteResult{GUID: guid}
		r, err := c.resourceFor(kind, helix.Attributes{kind.GUIDName: guid})
		if err == nil {
			err = r.Destroy(ctx)
		}
		if err != nil {
			result.Err = err
		} else {
			result.Deleted = true
		}
		results = append(results, result)
	}

	return results, nil
}

// Download fetches a file, play payload or stillframe.
// If opts.LocalPath is "-", the content is returned and nothing is written.
// Otherwise, the content is written to the file and the returned slice is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, []byte, error) {
	if opts.GUID == "" {
		return nil, nil, ErrEmptyGUID
	}

	data, err := c.fetch(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = defaultLocalPath(opts)
	}

	result := &DownloadResult{
		Kind:      opts.Kind.Name,
		GUID:      opts.GUID,
		Action:    opts.Action,
		LocalPath: localPath,
		Size:      int64(len(data)),
	}

	if localPath == "-" {
		return result, data, nil
	}

	if dir := filepath.Dir(localPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(localPath, data, 0o600); err != nil {
		return nil, nil, fmt.Errorf("write file: %w", err)
	}

	return result, nil, nil
}

func (c *Client) fetch(ctx context.Context, opts DownloadOptions) ([]byte, error) {
	if opts.Action == "stillframe" {
		if opts.Kind != helix.VideoKind {
			return nil, fmt.Errorf("stillframe for %s: %w", opts.Kind.Plural, helix.ErrUnsupported)
		}
		return c.videos.Stillframe(ctx, opts.GUID, opts.Stillframe)
	}

	r, err := c.resourceFor(opts.Kind, helix.Attributes{opts.Kind.GUIDName: opts.GUID})
	if err != nil {
		return nil, err
	}
	p, ok := r.(player)
	if !ok {
		return nil, fmt.Errorf("%s for %s: %w", opts.Action, opts.Kind.Plural, helix.ErrUnsupported)
	}

	switch opts.Action {
	case "play":
		return p.Play(ctx, opts.ContentType)
	case "file", "":
		return p.Download(ctx, opts.ContentType)
	default:
		return nil, fmt.Errorf("unknown action %q: %w", opts.Action, helix.ErrUnsupported)
	}
}

// Upload uploads each local file through an upload session.
// Continues on error, collecting results for all paths.
func (c *Client) Upload(ctx context.Context, kind helix.Kind, paths []string) ([]UploadResult, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	var up uploader
	switch kind {
	case helix.VideoKind:
		up = c.videos
	case helix.TrackKind:
		up = c.tracks
	case helix.ImageKind:
		up = c.images
	case helix.AlbumKind:
		return nil, fmt.Errorf("upload %s: %w", kind.Plural, helix.ErrUnsupported)
	default:
		return nil, unknownKind(kind)
	}

	results := make([]UploadResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, uploadSingle(ctx, up, path))
	}
	return results, nil
}

func uploadSingle(ctx context.Context, up uploader, localPath string) UploadResult {
	result := UploadResult{LocalPath: localPath, Filename: filepath.Base(localPath)}

	f, err := os.Open(filepath.Clean(localPath))
	if err != nil {
		result.Err = fmt.Errorf("open file: %w", err)
		return result
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		result.Err = fmt.Errorf("stat file: %w", err)
		return result
	}
	result.Size = info.Size()

	resp, err := up.Upload(ctx, result.Filename, f)
	if err != nil {
		result.Err = err
		return result
	}
	result.Response = string(resp)
	return result
}

// Signature returns a signature of type t and whether it was already cached.
func (c *Client) Signature(ctx context.Context, t helix.SignatureType) (*SignatureResult, error) {
	if _, err := helix.ParseSignatureType(string(t)); err != nil {
		return nil, err
	}

	_, cached, err := c.config.ExistingSignature(ctx, t)
	if err != nil {
		return nil, err
	}

	token, err := c.config.Signature(ctx, t, nil)
	if err != nil {
		return nil, err
	}

	return &SignatureResult{Type: t, Token: token, Cached: cached}, nil
}

// Slice asks the service to cut a clip out of a video and returns its raw reply.
func (c *Client) Slice(ctx context.Context, attrs helix.Attributes) ([]byte, error) {
	if len(attrs) == 0 {
		return nil, ErrNoAttributes
	}
	return c.videos.Slice(ctx, attrs)
}

// Stats fetches one statistics report.
func (c *Client) Stats(ctx context.Context, media, kind string, opts url.Values) (*StatsResult, error) {
	report, err := c.stats.Report(ctx, media, kind, opts)
	if err != nil {
		return nil, err
	}
	return &StatsResult{Media: media, Kind: kind, Report: report}, nil
}

func (c *Client) resourceFor(kind helix.Kind, attrs helix.Attributes) (resource, error) {
	switch kind {
	case helix.VideoKind:
		return c.videos.New(attrs), nil
	case helix.TrackKind:
		return c.tracks.New(attrs), nil
	case helix.ImageKind:
		return c.images.New(attrs), nil
	case helix.AlbumKind:
		return c.albums.New(attrs), nil
	default:
		return nil, unknownKind(kind)
	}
}

func resourceResult(kind helix.Kind, r resource) *ResourceResult {
	return &ResourceResult{
		Kind:       kind.Name,
		GUID:       r.GUID(),
		Attributes: r.Attributes(),
	}
}

func defaultLocalPath(opts DownloadOptions) string {
	switch {
	case opts.Action == "stillframe":
		return opts.GUID + ".jpg"
	case opts.ContentType != "":
		return opts.GUID + "." + opts.ContentType
	default:
		return opts.GUID
	}
}

func unknownKind(kind helix.Kind) error {
	return fmt.Errorf("unknown media kind %q", kind.Name)
}
