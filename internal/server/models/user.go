package models

// User is the credential-store document: the account row plus the set of
// note ids the user owns or has been given access to.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	Email        string
	FullName     string
	Notes        []string
}

// UserUpdate lists the fields a caller wants changed. Nil means untouched.
type UserUpdate struct {
	UserName *string
	Password *string
	Email    *string
	FullName *string
}
