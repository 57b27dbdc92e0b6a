package helixtest

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Request is one request the fake received.
type Request struct {
	Method string
	// Path is the full request path, scope prefix included.
	Path  string
	Query url.Values
	// Form holds url-encoded body fields. It is empty for GET and multipart requests.
	Form url.Values
}

var scopeSegments = map[string]bool{
	"resellers": true,
	"companies": true,
	"libraries": true,
}

// recordMiddleware logs every request and serves canned responses before routing.
func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			_ = r.ParseForm()
		}

		req := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Form:   cloneValues(r.PostForm),
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		canned, ok := s.canned[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if ok {
			writeText(w, canned.status, canned.body)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// scopeMiddleware strips leading reseller, company and library segments so
// media routes match regardless of the tenancy the client is scoped to.
func scopeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		segs := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")

		i := 0
		for i+1 < len(segs) && scopeSegments[segs[i]] {
			i += 2
		}

		if i > 0 {
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				rctx.RoutePath = "/" + strings.Join(segs[i:], "/")
			}
		}

		next.ServeHTTP(w, r)
	})
}

// requireSignature rejects requests whose signature was not issued by this
// server for the given type.
func (s *Server) requireSignature(w http.ResponseWriter, r *http.Request, want string) bool {
	return s.checkToken(w, r.FormValue("signature"), want)
}

func (s *Server) checkToken(w http.ResponseWriter, token, want string) bool {
	s.mu.Lock()
	got, ok := s.tokens[token]
	s.mu.Unlock()

	if !ok {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unknown signature")
		return false
	}
	if got != want {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "signature of type "+got+" cannot be used for "+want)
		return false
	}
	return true
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
