// Package models holds the client-side view of API resources.
package models

// Note is a note as returned by the server.
type Note struct {
	ID              string     `json:"id"`
	Text            string     `json:"text"`
	Image           *NoteImage `json:"image,omitempty"`
	AuthorizedUsers []string   `json:"authorized_users"`
}

// NoteImage points at a stored image, relative to the server URL.
type NoteImage struct {
	URL string `json:"url"`
}

// Image is an image to upload with a note.
type Image struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	FileName    string `json:"fileName"`
}
