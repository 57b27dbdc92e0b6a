package helixtest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/helixmedia/helix"
)

type cannedResponse struct {
	status int
	body   string
}

type mediaStore struct {
	order   []string
	records map[string]helix.Attributes
}

// Server is an in-memory Helix service.
type Server struct {
	licenseKey string

	mu         sync.Mutex
	tokens     map[string]string
	sigFetches map[string]int
	sigQueries []url.Values
	media      map[string]*mediaStore
	uploads    map[string][]byte
	requests   []Request
	canned     map[string]cannedResponse

	srv *httptest.Server
}

// New creates a fake that only issues signatures for licenseKey.
// Use Handler to serve it, or NewServer to start it.
func New(licenseKey string) *Server {
	s := &Server{
		licenseKey: licenseKey,
		tokens:     make(map[string]string),
		sigFetches: make(map[string]int),
		media:      make(map[string]*mediaStore),
		uploads:    make(map[string][]byte),
		canned:     make(map[string]cannedResponse),
	}
	for plural := range helix.Kinds() {
		s.media[plural] = &mediaStore{records: make(map[string]helix.Attributes)}
	}
	return s
}

// NewServer starts a fake on a local listener and closes it when tb finishes.
func NewServer(tb testing.TB, licenseKey string) *Server {
	tb.Helper()
	s := New(licenseKey)
	s.srv = httptest.NewServer(s.Handler())
	tb.Cleanup(s.srv.Close)
	return s
}

// URL returns the base URL of a server started with NewServer.
func (s *Server) URL() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.URL
}

// Handler returns the routes of the fake service.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recordMiddleware)
	r.Use(scopeMiddleware)

	r.Get("/api/{keyName}", s.handleSignature)
	r.Post("/upload/{session}", s.handleUpload)
	r.Get("/videos/{guid}/screenshots/{file}", s.handleStillframe)
	r.HandleFunc("/*", s.handleMedia)

	return r
}

// Seed stores a resource of kind and returns its guid. A guid already
// present in attrs under the kind's guid attribute is kept.
func (s *Server) Seed(kind helix.Kind, attrs helix.Attributes) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(kind, attrs)
}

func (s *Server) insert(kind helix.Kind, attrs helix.Attributes) string {
	record := make(helix.Attributes, len(attrs)+1)
	for k, v := range attrs {
		record[k] = v
	}
	guid := record.String(kind.GUIDName)
	if guid == "" {
		guid = uuid.NewString()
		record[kind.GUIDName] = guid
	}

	store := s.media[kind.Plural]
	if _, exists := store.records[guid]; !exists {
		store.order = append(store.order, guid)
	}
	store.records[guid] = record
	return guid
}

// Stored returns a copy of the resource held for guid.
func (s *Server) Stored(kind helix.Kind, guid string) (helix.Attributes, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.media[kind.Plural].records[guid]
	if !ok {
		return nil, false
	}
	out := make(helix.Attributes, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out, true
}

// Respond makes the fake answer method and path (scope prefix included)
// with status and body instead of routing the request.
func (s *Server) Respond(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned[method+" "+path] = cannedResponse{status: status, body: body}
}

// SignatureFetches returns how many times a signature of type t was issued.
func (s *Server) SignatureFetches(t helix.SignatureType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sigFetches[string(t)]
}

// SignatureQueries returns the query of every signature request, in order.
func (s *Server) SignatureQueries() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.sigQueries))
	copy(out, s.sigQueries)
	return out
}

// Requests returns every request received, in order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request whose method matches.
func (s *Server) LastRequest(method string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Method == method {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

// Uploaded returns the content of a file received through an upload session.
func (s *Server) Uploaded(filename string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[filename]
	return data, ok
}
