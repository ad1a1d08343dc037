package models

// Image is the stored form of a note image: only the file name the bytes
// were written under.
type Image struct {
	URL string `json:"url"`
}

// Note is the note-store document. AuthorizedUsers is ordered; the creator
// sits at index 0 and duplicates are possible after repeated shares.
type Note struct {
	ID              string
	Text            string
	Image           *Image
	AuthorizedUsers []string
}

// HasUser reports whether userID appears in the note's authorized list.
func (n *Note) HasUser(userID string) bool {
	for _, id := range n.AuthorizedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
