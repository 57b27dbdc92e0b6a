package helix

import (
	"context"
	"fmt"
	"net/url"
)

// Statistics report kinds.
const (
	StatsDelivery = "delivery"
	StatsIngest   = "ingest"
	StatsStorage  = "storage"
)

// StatisticsMediaType is the URL segment for aggregate report endpoints.
const StatisticsMediaType = "statistics"

// Statistics reads delivery, ingest and storage reports.
//
// Report options are passed as url.Values. Three keys are interpreted
// rather than forwarded: "{media}_id" narrows a delivery report to one
// resource, "action" picks the ingest breakdown (encode, source or
// breakdown) and "content_type" replaces the json extension. Every other
// key is sent as a query parameter.
type Statistics struct {
	config *Config
}

// NewStatistics returns the statistics reports for cfg.
func NewStatistics(cfg *Config) *Statistics {
	return &Statistics{config: cfg}
}

// Report fetches one report. media is one of video, audio, track, image or
// album; kind is one of StatsDelivery, StatsIngest or StatsStorage.
func (s *Statistics) Report(ctx context.Context, media, kind string, opts url.Values) (any, error) {
	rawURL, query, err := s.reportURL(media, kind, opts)
	if err != nil {
		return nil, err
	}

	raw, err := s.config.GetResponse(ctx, rawURL, SignatureView, query)
	if err != nil {
		return nil, fmt.Errorf("%s %s statistics: %w", media, kind, err)
	}
	return standardizeRawStats(raw), nil
}

func (s *Statistics) reportURL(media, kind string, opts url.Values) (string, url.Values, error) {
	mediaName, ok := statsMediaName(media)
	if !ok {
		return "", nil, fmt.Errorf("unknown statistics media %q: %w", media, ErrUnsupported)
	}

	query := url.Values{}
	for k, v := range opts {
		query[k] = append([]string(nil), v...)
	}
	contentType := query.Get("content_type")
	query.Del("content_type")

	urlOpts := URLOptions{ContentType: contentType}

	switch kind {
	case StatsDelivery:
		idKey := mediaName + "_id"
		if id := query.Get(idKey); id != "" {
			query.Del(idKey)
			urlOpts.MediaType = mediaName + "s"
			urlOpts.GUID = id
			urlOpts.Action = "statistics"
		} else {
			urlOpts.MediaType = StatisticsMediaType
			urlOpts.Action = mediaName + "_delivery"
		}
	case StatsIngest:
		if mediaName == ImageKind.Name {
			return "", nil, fmt.Errorf("%s ingest statistics: %w", media, ErrUnsupported)
		}
		action := query.Get("action")
		query.Del("action")
		if action == "" {
			action = "breakdown"
		}
		urlOpts.MediaType = StatisticsMediaType
		urlOpts.Action = mediaName + "_" + statsPublishName(mediaName) + "/" + action
	case StatsStorage:
		urlOpts.MediaType = StatisticsMediaType
		urlOpts.Action = mediaName + "_" + statsPublishName(mediaName) + "/disk_usage"
	default:
		return "", nil, fmt.Errorf("unknown statistics kind %q: %w", kind, ErrUnsupported)
	}

	return s.config.BuildURL(urlOpts), query, nil
}

// statsMediaName maps a report label to the resource name the service uses.
func statsMediaName(media string) (string, bool) {
	switch media {
	case "video":
		return "video", true
	case "audio", "track":
		return "track", true
	case "image", "album":
		return "image", true
	default:
		return "", false
	}
}

func statsPublishName(mediaName string) string {
	if mediaName == VideoKind.Name {
		return "publish"
	}
	return "ingest"
}

// standardizeRawStats unwraps the statistics_reports envelope some reports carry.
func standardizeRawStats(raw any) any {
	if m, ok := raw.(map[string]any); ok {
		if reports, ok := m["statistics_reports"]; ok {
			return reports
		}
	}
	return raw
}

func (s *Statistics) VideoDelivery(ctx context.Context, opts url.Values) (any, error) {
	return s.Report(ctx, "video", StatsDelivery, opts)
}

func (s *Statistics) VideoIngest(ctx context.Context, opts url.Values) (any, error) {
	return s.Report(ctx, "video", StatsIngest, opts)
}

func (s *Statistics) VideoStorage(ctx context.Context, opts url.Values) (any, error) {
	return s.Report(ctx, "video", StatsStorage, opts)
}

func (s *Statistics) AudioDelivery(ctx context.Context, opts url.Values) (any, error) {
	return s.Report(ctx, "audio", StatsDelivery, opts)
}

func (s *Statistics) AudioIngest(ctx context.Context, opts url.Values) (any, error) {
	return s.Report(ctx, "audio", StatsIngest, opts)
}

func (s *Statistics) AudioStorage(ctx context.Context, opts url.Values) (any, error) {
	return s.Report(ctx, "audio", StatsStorage, opts)
}

// TrackDelivery is AudioDelivery.
func (s *Statistics) TrackDelivery(ctx context.Context, opts url.Values) (any, error) {
	return s.AudioDelivery(ctx, opts)
}

// TrackIngest is AudioIngest.
func (s *Statistics) TrackIngest(ctx context.Context, opts url.Values) (any, error) {
	return s.AudioIngest(ctx, opts)
}

// TrackStorage is AudioStorage.
func (s *Statistics) TrackStorage(ctx context.Context, opts url.Values) (any, error) {
	return s.AudioStorage(ctx, opts)
}

func (s *Statistics) ImageDelivery(ctx context.Context, opts url.Values) (any, error) {
	return s.Report(ctx, "image", StatsDelivery, opts)
}

func (s *Statistics) ImageStorage(ctx context.Context, opts url.Values) (any, error) {
	return s.Report(ctx, "image", StatsStorage, opts)
}

// AlbumDelivery is ImageDelivery.
func (s *Statistics) AlbumDelivery(ctx context.Context, opts url.Values) (any, error) {
	return s.ImageDelivery(ctx, opts)
}

// AlbumStorage is ImageStorage.
func (s *Statistics) AlbumStorage(ctx context.Context, opts url.Values) (any, error) {
	return s.ImageStorage(ctx, opts)
}
