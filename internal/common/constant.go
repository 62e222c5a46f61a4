// Package common contains shared constants and sentinel errors used across
// userauth components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme expected in AuthorizationHeaderName.
const BearerScheme = "Bearer"

// DefaultRole is granted to every newly registered user.
const DefaultRole = "USER"

// AdminRole gates the user administration endpoints.
const AdminRole = "ADMIN"
