package rest

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/filex"
	"github.com/gorilla/mux"
)

type homeResponse struct {
	Content string `json:"content"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, homeResponse{Content: msgHome})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !filex.IsPlainName(name) {
		http.NotFound(w, r)
		return
	}

	body, contentType, err := s.images.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error(r.Context(), "open image", "name", name, "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", servedContentType(contentType))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		s.logger.Warn(r.Context(), "write image", "name", name, "error", err)
	}
}

// servedContentType passes raster image types through and downgrades
// everything else to a download.
func servedContentType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mt, "image/") || strings.Contains(mt, "svg") {
		return "application/octet-stream"
	}
	return mt
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.events.ServeUser(w, r, userIDFrom(r.Context()))
}
