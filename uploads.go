package helix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// UploadSessionsMediaType is the URL segment for upload session endpoints.
const UploadSessionsMediaType = "upload_sessions"

// Uploads drives the upload-session endpoints shared by the media kinds that accept files.
//
// A session is addressed by an ingest signature: opening it returns the
// server URL that accepts the multipart file, closing it hands the file to
// the ingest pipeline.
type Uploads struct {
	config *Config
}

// UploadServerName opens an upload session and returns the URL that accepts the file.
func (u Uploads) UploadServerName(ctx context.Context) (string, error) {
	body, err := u.sessionCall(ctx, "http_open", u.ingestOpts())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// HTTPOpen is UploadServerName.
func (u Uploads) HTTPOpen(ctx context.Context) (string, error) {
	return u.UploadServerName(ctx)
}

// UploadOpen is UploadServerName.
func (u Uploads) UploadOpen(ctx context.Context) (string, error) {
	return u.UploadServerName(ctx)
}

// HTTPClose closes the current upload session.
func (u Uploads) HTTPClose(ctx context.Context) ([]byte, error) {
	return u.UploadGet(ctx, "http_close")
}

// UploadClose is HTTPClose.
func (u Uploads) UploadClose(ctx context.Context) ([]byte, error) {
	return u.HTTPClose(ctx)
}

// UploadGet calls an arbitrary session action.
func (u Uploads) UploadGet(ctx context.Context, action string) ([]byte, error) {
	return u.sessionCall(ctx, action, nil)
}

// Upload opens a session, posts content as the multipart "file" field under
// filename, and closes the session. It returns the close response.
func (u Uploads) Upload(ctx context.Context, filename string, content io.Reader) ([]byte, error) {
	server, err := u.UploadServerName(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	if _, err := u.config.doRequest(ctx, http.MethodPost, server, nil, &buf, mw.FormDataContentType()); err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}

	return u.HTTPClose(ctx)
}

// ingestOpts attributes an ingest signature to the contributor and scope.
func (u Uploads) ingestOpts() url.Values {
	creds := u.config.Credentials()
	opts := url.Values{}
	opts.Set("contributor", creds.Contributor)
	opts.Set("company_id", creds.Company)
	opts.Set("library_id", creds.Library)
	return opts
}

func (u Uploads) sessionCall(ctx context.Context, action string, sigOpts url.Values) ([]byte, error) {
	sig, err := u.config.Signature(ctx, SignatureIngest, sigOpts)
	if err != nil {
		return nil, err
	}

	rawURL := u.config.BuildURL(URLOptions{
		MediaType:     UploadSessionsMediaType,
		GUID:          sig,
		Action:        action,
		OmitExtension: true,
	})

	body, err := u.config.doRequest(ctx, http.MethodGet, rawURL, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("upload session %s: %w", action, err)
	}
	return body, nil
}
