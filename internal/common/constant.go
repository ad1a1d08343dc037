// Package common contains shared constants, identifiers and sentinel errors
// used across gophnotes components.
package common

// AuthorizationHeaderName carries the access token on inbound REST and
// websocket requests.
const AuthorizationHeaderName = "Authorization"

// Token schemes accepted in the Authorization header. TokenSchemeJWT is the
// one handed out by login.
const (
	TokenSchemeJWT    = "JWT"
	TokenSchemeBearer = "Bearer"
)

// ObjectIDLength is the length of every user and note identifier:
// 12 random bytes, hex encoded.
const ObjectIDLength = 24
