package rpc

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BuildJWTAuth signs an HS256 bearer token over the hex-encoded secret, for
// endpoints that gate their RPC interface behind engine-API style auth.
func BuildJWTAuth(secretHex string) (string, error) {
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("✘ invalid JWT secret hex: %w", err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
	})
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("✘ cannot sign JWT token: %w", err)
	}
	return "Bearer " + tokenString, nil
}
