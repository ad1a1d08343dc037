package models

// Note lifecycle event types.
const (
	EventNoteCreated  = "note.created"
	EventNoteUpdated  = "note.updated"
	EventNoteDeleted  = "note.deleted"
	EventNoteShared   = "note.shared"
	EventNoteUnshared = "note.unshared"
)

// NoteEvent describes a completed note mutation. ActorID is the user who
// performed it; TargetUserID is set for share and unshare.
type NoteEvent struct {
	Type         string `json:"type"`
	NoteID       string `json:"note_id"`
	ActorID      string `json:"actor_id"`
	TargetUserID string `json:"target_user_id,omitempty"`
}
