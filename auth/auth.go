// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// OTPLength is the number of digits in a one-time code
const OTPLength = 6

// AdminTokenTTL is how long an admin bearer token stays valid
const AdminTokenTTL = 12 * time.Hour

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidPassword = errors.New("invalid password")
)

var otpSpace = big.NewInt(1_000_000)

// GenerateOTPCode creates a uniformly random 6-digit numeric code
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

// ValidOTPFormat checks that code is exactly six ASCII digits
func ValidOTPFormat(code string) bool {
	if len(code) != OTPLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// HashOTP binds a code to its voter with an HMAC so the stored value
// is useless without the salt.
func HashOTP(nim, code, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(nim))
	h.Write([]byte{0})
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}

// OTPMatches compares a submitted code against a stored hash in constant time
func OTPMatches(nim, code, storedHash, salt string) bool {
	expected := HashOTP(nim, code, salt)
	return hmac.Equal([]byte(expected), []byte(storedHash))
}

// HashPassword hashes an admin password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a bcrypt hash
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// AdminClaims identifies an authenticated admin
type AdminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueAdminToken signs an HS256 token for the admin email
func IssueAdminToken(email, secret string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(AdminTokenTTL)
	claims := AdminClaims{
		Email: strings.ToLower(email),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(email),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAdminToken validates signature, algorithm and expiry and returns
// the admin email
func ParseAdminToken(tokenString, secret string) (string, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}
