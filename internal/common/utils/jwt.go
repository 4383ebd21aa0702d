// internal/common/utils/jwt.go
// JWT access token generation and validation

package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const TokenTypeAccess = "access"

// JWTClaims carries the authenticated user. The user ID travels as a string
// in the token to survive JSON number precision.
type JWTClaims struct {
	UserID int64
	Type   string
	jwt.RegisteredClaims
}

type wireClaims struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateJWT signs claims with HS256
func GenerateJWT(claims *JWTClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &wireClaims{
		UserID:           strconv.FormatInt(claims.UserID, 10),
		Type:             claims.Type,
		RegisteredClaims: claims.RegisteredClaims,
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// GenerateAccessToken is a shortcut for a short-lived access token.
func GenerateAccessToken(userID int64, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	return GenerateJWT(&JWTClaims{
		UserID: userID,
		Type:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}, secret)
}

// ValidateJWT validates a JWT token and returns claims
func ValidateJWT(tokenString string, secret string) (*JWTClaims, error) {
	parsed := &wireClaims{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	userID, err := strconv.ParseInt(parsed.UserID, 10, 64)
	if err != nil || userID <= 0 {
		return nil, errors.New("invalid user_id in token")
	}

	return &JWTClaims{
		UserID:           userID,
		Type:             parsed.Type,
		RegisteredClaims: parsed.RegisteredClaims,
	}, nil
}
