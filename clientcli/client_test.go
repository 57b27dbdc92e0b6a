package clientcli_test

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/clientcli"
	"github.com/helixmedia/helix/helixtest"
)

const testLicenseKey = "test-license"

func newTestClient(t *testing.T) (*clientcli.Client, *helixtest.Server) {
	t.Helper()

	srv := helixtest.NewServer(t, testLicenseKey)
	cfg, err := helix.New(helix.Credentials{
		Site:        srv.URL(),
		Company:     "acme",
		LicenseKey:  testLicenseKey,
		Contributor: "tester",
	})
	require.NoError(t, err)

	client, err := clientcli.New(cfg)
	require.NoError(t, err)
	return client, srv
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		client, err := clientcli.New(nil)
		require.ErrorIs(t, err, helix.ErrConfigRequired)
		assert.Nil(t, client)
	})

	t.Run("valid config", func(t *testing.T) {
		cfg, err := helix.New(helix.Credentials{Site: "http://localhost", LicenseKey: "k"})
		require.NoError(t, err)

		client, err := clientcli.New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestClient_List(t *testing.T) {
	ctx := context.Background()

	t.Run("returns items in server order", func(t *testing.T) {
		client, srv := newTestClient(t)
		first := srv.Seed(helix.VideoKind, helix.Attributes{"title": "cats on film"})
		second := srv.Seed(helix.VideoKind, helix.Attributes{"title": "dogs on film"})

		result, err := client.List(ctx, helix.VideoKind, nil)
		require.NoError(t, err)

		assert.Equal(t, "videos", result.Kind)
		require.Len(t, result.Items, 2)
		assert.Equal(t, first, result.Items[0].String("video_id"))
		assert.Equal(t, second, result.Items[1].String("video_id"))
	})

	t.Run("query filters", func(t *testing.T) {
		client, srv := newTestClient(t)
		srv.Seed(helix.TrackKind, helix.Attributes{"title": "cats"})
		srv.Seed(helix.TrackKind, helix.Attributes{"title": "dogs"})

		result, err := client.List(ctx, helix.TrackKind, url.Values{"query": {"cats"}})
		require.NoError(t, err)

		require.Len(t, result.Items, 1)
		assert.Equal(t, "cats", result.Items[0].String("title"))

		req, ok := srv.LastRequest(http.MethodGet)
		require.True(t, ok)
		assert.Equal(t, "/companies/acme/tracks.json", req.Path)
	})

	t.Run("empty list", func(t *testing.T) {
		client, _ := newTestClient(t)

		result, err := client.List(ctx, helix.AlbumKind, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Items)
	})

	t.Run("unknown kind", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.List(ctx, helix.Kind{Name: "widget"}, nil)
		assert.Error(t, err)
	})
}

func TestClient_Find(t *testing.T) {
	ctx := context.Background()

	t.Run("loads attributes", func(t *testing.T) {
		client, srv := newTestClient(t)
		guid := srv.Seed(helix.ImageKind, helix.Attributes{"title": "sunset"})

		result, err := client.Find(ctx, helix.ImageKind, guid)
		require.NoError(t, err)

		assert.Equal(t, "image", result.Kind)
		assert.Equal(t, guid, result.GUID)
		assert.Equal(t, "sunset", result.Attributes.String("title"))
	})

	t.Run("missing resource", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.Find(ctx, helix.VideoKind, "nope")
		assert.ErrorIs(t, err, helix.ErrNotFound)
	})

	t.Run("empty guid", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.Find(ctx, helix.VideoKind, "")
		assert.ErrorIs(t, err, clientcli.ErrEmptyGUID)
	})
}

func TestClient_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates resource", func(t *testing.T) {
		client, srv := newTestClient(t)

		result, err := client.Create(ctx, helix.VideoKind, helix.Attributes{"title": "new"})
		require.NoError(t, err)
		require.NotEmpty(t, result.GUID)

		stored, ok := srv.Stored(helix.VideoKind, result.GUID)
		require.True(t, ok)
		assert.Equal(t, "new", stored.String("title"))
		assert.Equal(t, 1, srv.SignatureFetches(helix.SignatureIngest))
	})

	t.Run("no attributes", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.Create(ctx, helix.VideoKind, nil)
		assert.ErrorIs(t, err, clientcli.ErrNoAttributes)
	})
}

func TestClient_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates resource", func(t *testing.T) {
		client, srv := newTestClient(t)
		guid := srv.Seed(helix.TrackKind, helix.Attributes{"title": "old"})

		result, err := client.Update(ctx, helix.TrackKind, guid, helix.Attributes{"title": "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", result.Attributes.String("title"))

		stored, ok := srv.Stored(helix.TrackKind, guid)
		require.True(t, ok)
		assert.Equal(t, "new", stored.String("title"))
		assert.Equal(t, 1, srv.SignatureFetches(helix.SignatureUpdate))
	})

	t.Run("album update unsupported", func(t *testing.T) {
		client, srv := newTestClient(t)
		guid := srv.Seed(helix.AlbumKind, helix.Attributes{"title": "old"})

		_, err := client.Update(ctx, helix.AlbumKind, guid, helix.Attributes{"title": "new"})
		assert.ErrorIs(t, err, helix.ErrUnsupported)
		assert.Zero(t, srv.SignatureFetches(helix.SignatureUpdate))
	})

	t.Run("no attributes", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.Update(ctx, helix.TrackKind, "g1", nil)
		assert.ErrorIs(t, err, clientcli.ErrNoAttributes)
	})
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("continues on error", func(t *testing.T) {
		client, srv := newTestClient(t)
		guid := srv.Seed(helix.VideoKind, helix.Attributes{"title": "gone"})

		results, err := client.Delete(ctx, helix.VideoKind, []string{guid, "missing"})
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.True(t, results[0].Deleted)
		assert.NoError(t, results[0].Err)
		assert.False(t, results[1].Deleted)
		assert.ErrorIs(t, results[1].Err, helix.ErrNotFound)
		assert.True(t, clientcli.HasDeleteErrors(results))

		_, ok := srv.Stored(helix.VideoKind, guid)
		assert.False(t, ok)
	})

	t.Run("no guids", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.Delete(ctx, helix.VideoKind, nil)
		assert.ErrorIs(t, err, clientcli.ErrNoGUIDs)
	})

	t.Run("cancelled context", func(t *testing.T) {
		client, _ := newTestClient(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		results, err := client.Delete(cancelled, helix.VideoKind, []string{"a", "b"})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, results)
	})
}

func TestClient_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("file to stdout", func(t *testing.T) {
		client, srv := newTestClient(t)
		guid := srv.Seed(helix.VideoKind, nil)

		result, data, err := client.Download(ctx, clientcli.DownloadOptions{
			Kind:        helix.VideoKind,
			GUID:        guid,
			Action:      "file",
			ContentType: "mp4",
			LocalPath:   "-",
		})
		require.NoError(t, err)

		assert.Equal(t, "file:"+guid+":mp4", string(data))
		assert.Equal(t, int64(len(data)), result.Size)
		assert.Equal(t, "-", result.LocalPath)
	})

	t.Run("play without content type has no extension", func(t *testing.T) {
		client, srv := newTestClient(t)
		guid := srv.Seed(helix.TrackKind, nil)

		_, data, err := client.Download(ctx, clientcli.DownloadOptions{
			Kind:      helix.TrackKind,
			GUID:      guid,
			Action:    "play",
			LocalPath: "-",
		})
		require.NoError(t, err)
		assert.Equal(t, "play:"+guid+":", string(data))
	})

	t.Run("writes file", func(t *testing.T) {
		client, srv := newTestClient(t)
		guid := srv.Seed(helix.VideoKind, nil)
		localPath := filepath.Join(t.TempDir(), "nested", "out.mp4")

		result, data, err := client.Download(ctx, clientcli.DownloadOptions{
			Kind:        helix.VideoKind,
			GUID:        guid,
			Action:      "file",
			ContentType: "mp4",
			LocalPath:   localPath,
		})
		require.NoError(t, err)
		assert.Nil(t, data)
		assert.Equal(t, localPath, result.LocalPath)

		written, err := os.ReadFile(localPath)
		require.NoError(t, err)
		assert.Equal(t, "file:"+guid+":mp4", string(written))
	})

	t.Run("stillframe", func(t *testing.T) {
		client, srv := newTestClient(t)

		_, data, err := client.Download(ctx, clientcli.DownloadOptions{
			Kind:       helix.VideoKind,
			GUID:       "g1",
			Action:     "stillframe",
			LocalPath:  "-",
			Stillframe: helix.StillframeOptions{Server: srv.URL(), Width: 320},
		})
		require.NoError(t, err)

		assert.True(t, bytes.HasPrefix(data, helixtest.JPEGMagic))
		assert.Contains(t, string(data), "g1/320w.jpg")
	})

	t.Run("stillframe for image unsupported", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, _, err := client.Download(ctx, clientcli.DownloadOptions{
			Kind:   helix.ImageKind,
			GUID:   "g1",
			Action: "stillframe",
		})
		assert.ErrorIs(t, err, helix.ErrUnsupported)
	})

	t.Run("play for album unsupported", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, _, err := client.Download(ctx, clientcli.DownloadOptions{
			Kind:   helix.AlbumKind,
			GUID:   "g1",
			Action: "play",
		})
		assert.ErrorIs(t, err, helix.ErrUnsupported)
	})

	t.Run("empty guid", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, _, err := client.Download(ctx, clientcli.DownloadOptions{Kind: helix.VideoKind})
		assert.ErrorIs(t, err, clientcli.ErrEmptyGUID)
	})
}

func TestClient_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads through a session", func(t *testing.T) {
		client, srv := newTestClient(t)
		dir := t.TempDir()
		localPath := filepath.Join(dir, "clip.mp4")
		require.NoError(t, os.WriteFile(localPath, []byte("video bytes"), 0o600))

		results, err := client.Upload(ctx, helix.VideoKind, []string{localPath, filepath.Join(dir, "missing.mp4")})
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.NoError(t, results[0].Err)
		assert.Equal(t, "clip.mp4", results[0].Filename)
		assert.Equal(t, int64(len("video bytes")), results[0].Size)
		assert.Equal(t, "closed", results[0].Response)
		assert.Error(t, results[1].Err)
		assert.True(t, clientcli.HasUploadErrors(results))

		data, ok := srv.Uploaded("clip.mp4")
		require.True(t, ok)
		assert.Equal(t, "video bytes", string(data))

		queries := srv.SignatureQueries()
		require.NotEmpty(t, queries)
		assert.Equal(t, "tester", queries[0].Get("contributor"))
		assert.Equal(t, "acme", queries[0].Get("company_id"))
	})

	t.Run("albums unsupported", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.Upload(ctx, helix.AlbumKind, []string{"a.jpg"})
		assert.ErrorIs(t, err, helix.ErrUnsupported)
	})

	t.Run("no paths", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.Upload(ctx, helix.ImageKind, nil)
		assert.ErrorIs(t, err, clientcli.ErrNoPaths)
	})
}

func TestClient_Signature(t *testing.T) {
	ctx := context.Background()

	t.Run("second call is cached", func(t *testing.T) {
		client, srv := newTestClient(t)

		first, err := client.Signature(ctx, helix.SignatureView)
		require.NoError(t, err)
		assert.False(t, first.Cached)
		assert.NotEmpty(t, first.Token)

		second, err := client.Signature(ctx, helix.SignatureView)
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, first.Token, second.Token)
		assert.Equal(t, 1, srv.SignatureFetches(helix.SignatureView))
	})

	t.Run("invalid type", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.Signature(ctx, helix.SignatureType("bogus"))
		assert.ErrorIs(t, err, helix.ErrInvalidSignatureType)
	})
}

func TestClient_Stats(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	result, err := client.Stats(ctx, "audio", helix.StatsStorage, url.Values{"start_date": {"2024-01-01"}})
	require.NoError(t, err)

	assert.Equal(t, "audio", result.Media)
	reports, ok := result.Report.([]any)
	require.True(t, ok)
	require.Len(t, reports, 1)
	report := helix.Attributes(reports[0].(map[string]any))
	assert.Equal(t, "track_ingest/disk_usage", report.String("report"))
}

func TestClient_Slice(t *testing.T) {
	ctx := context.Background()

	t.Run("posts with ingest signature", func(t *testing.T) {
		client, srv := newTestClient(t)

		body, err := client.Slice(ctx, helix.Attributes{"video_id": "g1", "start": "10"})
		require.NoError(t, err)
		assert.Contains(t, string(body), "queued")

		req, ok := srv.LastRequest(http.MethodPost)
		require.True(t, ok)
		assert.Equal(t, "/companies/acme/videos/slice.xml", req.Path)
		assert.Equal(t, "10", req.Form.Get("start"))
		assert.Equal(t, 1, srv.SignatureFetches(helix.SignatureIngest))
	})

	t.Run("no attributes", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.Slice(ctx, nil)
		assert.ErrorIs(t, err, clientcli.ErrNoAttributes)
	})
}

func TestParseAttributes(t *testing.T) {
	t.Run("key value pairs", func(t *testing.T) {
		attrs, err := clientcli.ParseAttributes([]string{"title=cats", "description=a=b"})
		require.NoError(t, err)
		assert.Equal(t, helix.Attributes{"title": "cats", "description": "a=b"}, attrs)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := clientcli.ParseAttributes([]string{"title"})
		assert.ErrorIs(t, err, clientcli.ErrAttributeFormat)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := clientcli.ParseAttributes(nil)
		assert.ErrorIs(t, err, clientcli.ErrNoAttributes)
	})
}
