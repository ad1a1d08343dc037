package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// messages for specific errors, checked in order.
var errorMessages = []struct {
	err error
	msg string
}{
	{common.ErrUsernameRequired, msgUsernameRequired},
	{common.ErrPasswordRequired, msgPasswordRequired},
	{common.ErrUsernameTaken, msgUsernameTaken},
	{common.ErrUserNotFound, msgUserNotFound},
	{common.ErrUserIDRequired, msgUserIDRequired},
	{common.ErrTextRequired, msgTextRequired},
	{common.ErrInvalidImage, msgInvalidImage},
	{common.ErrNoteNotFound, msgNoteNotFound},
	{common.ErrNoteAccessDenied, msgNoteAccessDenied},
}

// statusFor maps an error kind to its HTTP status. ok is false for errors
// that carry no kind.
func statusFor(err error) (status int, ok bool) {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrorNotFound):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, true
	default:
		return http.StatusInternalServerError, false
	}
}

func messageFor(err error) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return msgUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return msgNotFound
	default:
		return msgInvalidRequest
	}
}

// writeError answers with the status and message for err. Errors without a
// kind are logged and reported as a bare internal error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, ok := statusFor(err)
	if !ok {
		s.logger.Error(r.Context(), "request failed", "error", err, "request_id", requestIDFrom(r.Context()))
		writeJSON(w, status, errorResponse{Error: msgInternal})
		return
	}
	writeJSON(w, status, errorResponse{Error: messageFor(err)})
}
