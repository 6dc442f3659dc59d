package handler

import (
	"net/http"

	"github.com/felipemarinho97/torrent-streams/consts"
)

func HandlerIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"build":     consts.GetBuildInfo(),
		"endpoints": []string{"/streams", "/cache"},
	})
}
