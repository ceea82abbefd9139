// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"trip_hotel/internal/app"
	"trip_hotel/internal/domain"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotels", h.searchHotels)
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
	s.mux.Get("/v1/banners", h.listBanners)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// parseSearchQuery validates the listing parameters. Blank text filters are dropped.
func parseSearchQuery(v url.Values) (domain.SearchQuery, string) {
	q := domain.SearchQuery{Page: 1, PageSize: defaultPageSize}

	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, "page must be a positive integer"
		}
		q.Page = n
	}
	if s := v.Get("pageSize"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxPageSize {
			return q, "pageSize must be an integer between 1 and 50"
		}
		q.PageSize = n
	}

	text := func(key string) *string {
		s := strings.TrimSpace(v.Get(key))
		if s == "" {
			return nil
		}
		return &s
	}
	q.Destination = text("city")
	q.Keyword = text("keyword")
	q.Tag = text("tag")

	if s := v.Get("star"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 5 {
			return q, "star must be an integer between 1 and 5"
		}
		q.StarRating = &n
	}
	prices := []struct {
		key string
		dst **float64
	}{{"minPrice", &q.PriceMin}, {"maxPrice", &q.PriceMax}}
	for _, p := range prices {
		s := v.Get(p.key)
		if s == "" {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return q, p.key + " must be a non-negative number"
		}
		*p.dst = &f
	}
	if q.PriceMin != nil && q.PriceMax != nil && *q.PriceMin > *q.PriceMax {
		return q, "minPrice must not exceed maxPrice"
	}
	return q, ""
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	q, bad := parseSearchQuery(r.URL.Query())
	if bad != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid query", bad)
		return
	}
	page, err := h.Q.SearchHotels(r.Context(), q)
	if err != nil {
		log.Error().Err(err).Int("page", q.Page).Msg("search hotels failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "search failed")
		return
	}
	writeJSON(w, page)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	resp, err := h.Q.GetHotel(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("hotel_id", id).Msg("get hotel failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "lookup failed")
		return
	}

	etag, body := calcETagAndBody(resp)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

func (h *Handlers) listBanners(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Banners(r.Context(), app.BannerLimit)
	if err != nil {
		log.Error().Err(err).Msg("list banners failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "banners unavailable")
		return
	}
	if out == nil {
		out = []domain.HotelSummary{}
	}
	writeJSON(w, map[string]any{"data": out})
}
