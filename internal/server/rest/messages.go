package rest

// Response texts. Clients match on some of these, so keep the wording.
const (
	msgUsernameRequired = "You must enter a username."
	msgPasswordRequired = "You must enter a password."
	msgUsernameTaken    = "That username is already in use."
	msgUserNotFound     = "User not found."
	msgUserIDRequired   = "You must enter a userID."
	msgTextRequired     = "You must enter a text."
	msgInvalidImage     = "Invalid image."
	msgNoteNotFound     = "Note not found."
	msgNoteAccessDenied = "You don't have access to this note"
	msgNotFound         = "Not found."
	msgInvalidRequest   = "Invalid request."
	msgInvalidBody      = "Invalid request body."
	msgUnauthorized     = "Unauthorized"
	msgInternal         = "internal error"

	msgUserCreated  = "User created Successfully."
	msgUserUpdated  = "User updated Successfully."
	msgUserDeleted  = "User deleted Successfully."
	msgNoteCreated  = "Note created Successfully."
	msgNoteUpdated  = "Note updated Successfully."
	msgNoteDeleted  = "Note deleted Successfully."
	msgNoteShared   = "Note shared Successfully."
	msgNoteUnshared = "Note unShared Successfully."

	msgHome = "API Home Page"
)
