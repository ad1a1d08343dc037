package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/server/images"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/gorilla/mux"
)

// imagePath is where stored images are served from.
const imagePath = "/uploads/notes/"

type createNoteRequest struct {
	Text  string          `json:"text"`
	Image *images.Payload `json:"image"`
}

type createNoteResponse struct {
	NoteID  string `json:"note_id"`
	Success string `json:"success"`
}

type updateNoteRequest struct {
	Text  *string         `json:"text"`
	Image *images.Payload `json:"image"`
}

type shareRequest struct {
	UserID string `json:"userID"`
}

type noteImage struct {
	URL string `json:"url"`
}

type noteResponse struct {
	ID              string     `json:"id"`
	Text            string     `json:"text"`
	Image           *noteImage `json:"image,omitempty"`
	AuthorizedUsers []string   `json:"authorized_users"`
}

type listNotesResponse struct {
	Notes []noteResponse `json:"notes"`
}

func toNoteResponse(n *models.Note) noteResponse {
	resp := noteResponse{
		ID:              n.ID,
		Text:            n.Text,
		AuthorizedUsers: n.AuthorizedUsers,
	}
	if resp.AuthorizedUsers == nil {
		resp.AuthorizedUsers = []string{}
	}
	if n.Image != nil && n.Image.URL != "" {
		resp.Image = &noteImage{URL: imagePath + n.Image.URL}
	}
	return resp
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	note, err := s.notes.Create(r.Context(), userIDFrom(r.Context()), req.Text, req.Image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, createNoteResponse{NoteID: note.ID, Success: msgNoteCreated})
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notes.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := listNotesResponse{Notes: make([]noteResponse, 0, len(notes))}
	for _, n := range notes {
		resp.Notes = append(resp.Notes, toNoteResponse(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.notes.Get(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	upd := services.NoteUpdate{Text: req.Text, Image: req.Image}
	if _, err := s.notes.Update(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"], upd); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: msgNoteUpdated})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Delete(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: msgNoteDeleted})
}

func (s *Server) handleShareNote(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	if err := s.notes.Share(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"], req.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: msgNoteShared})
}

func (s *Server) handleUnshareNote(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	if err := s.notes.Unshare(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"], req.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: msgNoteUnshared})
}
