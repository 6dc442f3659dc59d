package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/felipemarinho97/torrent-streams/aggregator"
	"github.com/felipemarinho97/torrent-streams/cache"
	"github.com/felipemarinho97/torrent-streams/logging"
	"github.com/felipemarinho97/torrent-streams/schema"
)

// CacheOwner is a source that keeps a torrent cache, usually an indexer.
type CacheOwner interface {
	Label() string
	CacheStats() cache.TorrentCacheStats
	CachedTorrents() []string
	ClearCache()
}

type Handler struct {
	aggregator *aggregator.Aggregator
	caches     []CacheOwner
}

func NewHandler(agg *aggregator.Aggregator, caches ...CacheOwner) *Handler {
	return &Handler{aggregator: agg, caches: caches}
}

type StreamsResponse struct {
	Streams []schema.StreamDescriptor `json:"streams"`
}

type CacheResponse struct {
	Caches []CacheEntry `json:"caches"`
}

type CacheEntry struct {
	cache.TorrentCacheStats
	Torrents []string `json:"torrents,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.ErrorWithRequest(r).Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// parseQuery reads title, year, type, season and episode. Only title is
// required; numbers default to 0.
func parseQuery(r *http.Request) (schema.Query, string) {
	params := r.URL.Query()
	q := schema.Query{
		Title: strings.TrimSpace(params.Get("title")),
		Type:  schema.ParseContentType(params.Get("type")),
	}
	if q.Title == "" {
		return q, "missing title"
	}

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"year", &q.Year},
		{"season", &q.Season},
		{"episode", &q.Episode},
	} {
		raw := params.Get(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, "invalid " + f.name
		}
		*f.dst = n
	}
	return q, ""
}

// HandlerStreams answers with whatever the sources produced. Failing sources
// are dropped, so the status is 200 even when the list is empty.
func (h *Handler) HandlerStreams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q, problem := parseQuery(r)
	if problem != "" {
		logging.WarnWithRequest(r).Str("problem", problem).Msg("Rejected streams request")
		writeError(w, r, http.StatusBadRequest, problem)
		return
	}

	streams := h.aggregator.Streams(r.Context(), q)
	logging.InfoWithRequest(r).Str("title", q.Title).Str("type", string(q.Type)).Int("streams", len(streams)).Msg("Streams served")
	writeJSON(w, r, http.StatusOK, StreamsResponse{Streams: streams})
}

// HandlerCache reports the torrent caches on GET (add list=true for the
// cached URLs) and empties them on DELETE.
func (h *Handler) HandlerCache(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, _ := strconv.ParseBool(r.URL.Query().Get("list"))
		logging.DebugWithRequest(r).Bool("list", list).Msg("Reporting cache stats")
		resp := CacheResponse{Caches: make([]CacheEntry, 0, len(h.caches))}
		for _, c := range h.caches {
			entry := CacheEntry{TorrentCacheStats: c.CacheStats()}
			if list {
				entry.Torrents = c.CachedTorrents()
			}
			resp.Caches = append(resp.Caches, entry)
		}
		writeJSON(w, r, http.StatusOK, resp)
	case http.MethodDelete:
		for _, c := range h.caches {
			c.ClearCache()
		}
		logging.InfoWithRequest(r).Int("caches", len(h.caches)).Msg("Torrent caches cleared")
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}
