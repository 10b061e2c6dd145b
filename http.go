package contactql

import (
	"encoding/json"
	"net/http"
	"strconv"

	servertiming "github.com/mitchellh/go-server-timing"
)

// searchResponse is the JSON body returned by the search handler.
type searchResponse struct {
	Query    string          `json:"query"`
	Total    int             `json:"total"`
	Contacts []searchContact `json:"contacts"`
}

type searchContact struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns an http.Handler serving GET /search?org=<id>&q=<query>.
// When Server-Timing is enabled it wraps the handler in the timing
// middleware so parse/compile/evaluate phases appear in the response
// header.
func (s *Searcher) Handler() http.Handler {
	var handler http.Handler = http.HandlerFunc(s.handleSearch)
	if s.obs.ServerTimingEnabled() {
		handler = servertiming.Middleware(handler, nil)
	}
	return handler
}

func (s *Searcher) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	orgID, err := strconv.ParseInt(r.URL.Query().Get("org"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid org id"})
		return
	}

	org, err := s.Org(r.Context(), orgID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no such org"})
		return
	}

	text := r.URL.Query().Get("q")
	contacts, err := s.Search(r.Context(), org, text)
	if err != nil {
		status := http.StatusInternalServerError
		if IsQueryError(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	response := searchResponse{
		Query:    text,
		Total:    len(contacts),
		Contacts: make([]searchContact, len(contacts)),
	}
	for i, contact := range contacts {
		response.Contacts[i] = searchContact{UUID: contact.UUID.String(), Name: contact.Name}
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
