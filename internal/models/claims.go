package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims are the bearer token claims minted by the campus identity
// provider. Subject carries the user id: a student index or professor id
// depending on Role.
type JWTClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}
