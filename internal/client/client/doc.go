// Package client talks to the notes REST API.
//
// HTTPClient implements Client over net/http and JSON. Failed calls come
// back as *APIError carrying the status and the server's message; 403
// responses also match ErrUnauthorized and transport failures match
// ErrUnavailable, so callers can use errors.Is.
//
// TokenFile persists the login token between CLI invocations.
package client
