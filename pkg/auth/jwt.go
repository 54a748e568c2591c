// Package auth issues and validates the signed tokens handed out by the
// auth store, and hashes passwords with bcrypt.
//
// Tokens are signed but unprivileged: they identify a user for the
// storefront session and carry no roles.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shashiranjanraj/meatshop/config"
	"golang.org/x/crypto/bcrypt"
)

// Token purposes.
const (
	PurposeSession = "session"
	PurposeReset   = "reset"
)

const (
	sessionTTL = 24 * time.Hour
	resetTTL   = time.Hour
)

var (
	// ErrWrongPurpose is returned when a valid token was issued for a different use.
	ErrWrongPurpose = errors.New("auth: token issued for a different purpose")
	// ErrStaleToken is returned when the password changed after a reset
	// token was issued, including by a reset with that same token.
	ErrStaleToken = errors.New("auth: token issued for an older password")
)

// Claims holds the typed JWT payload. Stamp is set on reset tokens only.
type Claims struct {
	UserID  string `json:"user_id"`
	Purpose string `json:"purpose"`
	Stamp   string `json:"stamp,omitempty"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.JWTSecret())
}

func sign(userID, purpose, stamp string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		Stamp:   stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// GenerateToken creates a session token for the given user.
func GenerateToken(userID string) (string, error) {
	return sign(userID, PurposeSession, "", sessionTTL)
}

// GenerateResetToken creates a one-hour password reset token tied to the
// user's current password hash. Once the password changes the token stops
// validating, so each token resets at most once.
func GenerateResetToken(userID, passwordHash string) (string, error) {
	return sign(userID, PurposeReset, PasswordStamp(passwordHash), resetTTL)
}

// PasswordStamp fingerprints a password hash without exposing it.
func PasswordStamp(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}

// CheckStamp reports ErrStaleToken unless claims were issued for passwordHash.
func CheckStamp(claims *Claims, passwordHash string) error {
	if subtle.ConstantTimeCompare([]byte(claims.Stamp), []byte(PasswordStamp(passwordHash))) != 1 {
		return ErrStaleToken
	}
	return nil
}

// ValidateToken parses t and checks its signature, expiry and purpose.
func ValidateToken(t, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}

	return claims, nil
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
