package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hotel_acceptance/internal/app"
	"hotel_acceptance/internal/domain"
)

// Reports is the read side the handlers serve.
type Reports interface {
	GetRun(ctx context.Context, id string) (app.RunView, error)
	ListResults(ctx context.Context, runID string, q domain.ResultsQuery) (app.ResultsPage, error)
}

type Handlers struct{ Q Reports }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

const defaultLimit = 100

type resultsParams struct {
	Suite  string `validate:"omitempty,oneof=room-book send-email"`
	Status string `validate:"omitempty,oneof=passed soft_failed failed error"`
	Limit  int    `validate:"min=1,max=200"`
}

var validate = validator.New()

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/runs/{id}", h.getRun)
	s.mux.Get("/v1/runs/{id}/results", h.listResults)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "run not found")
		return
	}
	log.Error().Err(err).Msg("report lookup failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

// writeJSON answers with a weak ETag over the body and honours
// If-None-Match.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write response body failed")
	}
}

func (h *Handlers) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Q.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, r, run)
}

func (h *Handlers) listResults(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	p := resultsParams{Suite: qs.Get("suite"), Status: qs.Get("status"), Limit: defaultLimit}
	if ls := qs.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer")
			return
		}
		p.Limit = l
	}
	if err := validate.Struct(p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}

	q := domain.ResultsQuery{Limit: p.Limit}
	if p.Suite != "" {
		s := domain.Suite(p.Suite)
		q.Suite = &s
	}
	if p.Status != "" {
		s := domain.Status(p.Status)
		q.Status = &s
	}
	page, err := h.Q.ListResults(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, r, page)
}
