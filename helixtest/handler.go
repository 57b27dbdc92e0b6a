package helixtest

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/helixmedia/helix"
)

const maxUploadMemory = 32 << 20

// JPEGMagic prefixes every stillframe body the fake serves.
var JPEGMagic = []byte{0xFF, 0xD8, 0xFF}

func (s *Server) handleSignature(w http.ResponseWriter, r *http.Request) {
	keyName := chi.URLParam(r, "keyName")
	if !strings.HasSuffix(keyName, "_key") {
		WriteError(w, http.StatusNotFound, "not_found", "unknown key endpoint")
		return
	}

	sigType := strings.TrimSuffix(keyName, "_key")
	if !helix.SignatureType(sigType).IsValid() {
		WriteError(w, http.StatusNotFound, "not_found", "unknown signature type")
		return
	}

	if r.URL.Query().Get("licenseKey") != s.licenseKey {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid license key")
		return
	}

	token := sigType + "-" + uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = sigType
	s.sigFetches[sigType]++
	s.sigQueries = append(s.sigQueries, r.URL.Query())
	s.mu.Unlock()

	writeText(w, http.StatusOK, token+"\n")
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	segs := strings.Split(strings.Trim(chi.URLParam(r, "*"), "/"), "/")

	last := len(segs) - 1
	var ext string
	if i := strings.LastIndex(segs[last], "."); i >= 0 {
		segs[last], ext = segs[last][:i], segs[last][i+1:]
	}

	switch segs[0] {
	case helix.StatisticsMediaType:
		s.handleStatistics(w, r, segs[1:])
		return
	case helix.UploadSessionsMediaType:
		s.handleUploadSession(w, r, segs[1:])
		return
	}

	kind, ok := helix.Kinds()[segs[0]]
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", "unknown media type")
		return
	}

	switch {
	case len(segs) == 1 && r.Method == http.MethodGet:
		s.handleList(w, r, kind)
	case len(segs) == 2 && r.Method == http.MethodPost && segs[1] == "create_many":
		s.handleCreate(w, r, kind)
	case len(segs) == 2 && r.Method == http.MethodPost && segs[1] == "slice" && kind == helix.VideoKind:
		s.handleSlice(w, r)
	case len(segs) == 2 && r.Method == http.MethodGet:
		s.handleShow(w, r, kind, segs[1])
	case len(segs) == 2 && r.Method == http.MethodPut:
		s.handleUpdate(w, r, kind, segs[1])
	case len(segs) == 2 && r.Method == http.MethodDelete:
		s.handleDestroy(w, r, kind, segs[1])
	case len(segs) == 3 && r.Method == http.MethodGet:
		s.handleAction(w, r, kind, segs[1], segs[2], ext)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" "+r.URL.Path)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, kind helix.Kind) {
	if !s.requireSignature(w, r, string(helix.SignatureView)) {
		return
	}

	filter := r.URL.Query().Get("query")

	s.mu.Lock()
	store := s.media[kind.Plural]
	results := make([]helix.Attributes, 0, len(store.order))
	for _, guid := range store.order {
		record := store.records[guid]
		if filter != "" && !strings.Contains(record.String("title"), filter) {
			continue
		}
		results = append(results, record)
	}
	s.mu.Unlock()

	_ = WriteJSON(w, http.StatusOK, map[string]any{kind.Plural: results})
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request, kind helix.Kind, guid string) {
	if !s.requireSignature(w, r, string(helix.SignatureView)) {
		return
	}

	record, ok := s.Stored(kind, guid)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", kind.Name+" not found")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{kind.Name: record})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, kind helix.Kind) {
	if !s.requireSignature(w, r, string(helix.SignatureIngest)) {
		return
	}

	attrs := helix.Attributes{}
	for k := range r.PostForm {
		if k == "signature" {
			continue
		}
		attrs[k] = r.PostForm.Get(k)
	}

	s.mu.Lock()
	guid := s.insert(kind, attrs)
	record := s.media[kind.Plural].records[guid]
	s.mu.Unlock()

	_ = WriteJSON(w, http.StatusOK, map[string]any{kind.Name: record})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, kind helix.Kind, guid string) {
	if !s.requireSignature(w, r, string(helix.SignatureUpdate)) {
		return
	}

	prefix := kind.Name + "["

	s.mu.Lock()
	record, ok := s.media[kind.Plural].records[guid]
	if ok {
		for k := range r.PostForm {
			if strings.HasPrefix(k, prefix) && strings.HasSuffix(k, "]") {
				record[strings.TrimSuffix(strings.TrimPrefix(k, prefix), "]")] = r.PostForm.Get(k)
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", kind.Name+" not found")
		return
	}
	writeXML(w, http.StatusOK, "<status>updated</status>")
}

func (s *Server) handleDestroy(w http.ResponseWriter, r *http.Request, kind helix.Kind, guid string) {
	if !s.requireSignature(w, r, string(helix.SignatureUpdate)) {
		return
	}

	s.mu.Lock()
	store := s.media[kind.Plural]
	_, ok := store.records[guid]
	if ok {
		delete(store.records, guid)
		for i, g := range store.order {
			if g == guid {
				store.order = append(store.order[:i], store.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", kind.Name+" not found")
		return
	}
	writeXML(w, http.StatusOK, "<status>deleted</status>")
}

// handleAction serves per-resource actions. file and play bodies are
// "{action}:{guid}:{ext}" so callers can tell which URL was requested.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, kind helix.Kind, guid, action, ext string) {
	if !s.requireSignature(w, r, string(helix.SignatureView)) {
		return
	}

	if _, ok := s.Stored(kind, guid); !ok {
		WriteError(w, http.StatusNotFound, "not_found", kind.Name+" not found")
		return
	}

	switch action {
	case "file", "play":
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "%s:%s:%s", action, guid, ext)
	case "statistics":
		_ = WriteJSON(w, http.StatusOK, map[string]any{
			"statistics_reports": []map[string]any{{
				"guid":  guid,
				"kind":  kind.Name,
				"query": reportQuery(r),
			}},
		})
	default:
		WriteError(w, http.StatusNotFound, "not_found", "unknown action "+action)
	}
}

func (s *Server) handleSlice(w http.ResponseWriter, r *http.Request) {
	if !s.requireSignature(w, r, string(helix.SignatureIngest)) {
		return
	}
	writeXML(w, http.StatusOK, "<slice><status>queued</status></slice>")
}

// handleStatistics answers every report with the report path and the
// parameters it was asked with.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request, segs []string) {
	if !s.requireSignature(w, r, string(helix.SignatureView)) {
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"statistics_reports": []map[string]any{{
			"report": strings.Join(segs, "/"),
			"query":  reportQuery(r),
		}},
	})
}

func (s *Server) handleUploadSession(w http.ResponseWriter, r *http.Request, segs []string) {
	if len(segs) != 2 || r.Method != http.MethodGet {
		WriteError(w, http.StatusNotFound, "not_found", "unknown upload session route")
		return
	}

	token, action := segs[0], segs[1]
	if !s.checkToken(w, token, string(helix.SignatureIngest)) {
		return
	}

	switch action {
	case "http_open":
		writeText(w, http.StatusOK, "http://"+r.Host+"/upload/"+token)
	case "http_close":
		writeText(w, http.StatusOK, "closed")
	default:
		writeText(w, http.StatusOK, action)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.checkToken(w, chi.URLParam(r, "session"), string(helix.SignatureIngest)) {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	s.mu.Lock()
	s.uploads[header.Filename] = data
	s.mu.Unlock()

	writeText(w, http.StatusOK, "received")
}

func (s *Server) handleStillframe(w http.ResponseWriter, r *http.Request) {
	guid := chi.URLParam(r, "guid")
	file := chi.URLParam(r, "file")
	if !strings.HasSuffix(file, ".jpg") {
		WriteError(w, http.StatusNotFound, "not_found", "unknown screenshot")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(JPEGMagic)
	_, _ = w.Write([]byte(guid + "/" + file))
}

func reportQuery(r *http.Request) map[string]string {
	out := map[string]string{}
	for k := range r.URL.Query() {
		if k == "signature" {
			continue
		}
		out[k] = r.URL.Query().Get(k)
	}
	return out
}
