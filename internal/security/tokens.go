package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	MinSecretLength = 32
	DefaultTokenTTL = 30 * 24 * time.Hour

	RoleUser  = "user"
	RoleAdmin = "admin"

	signingKeyInfo = "cyclecore jwt signing key v1"
	tokenIssuer    = "cyclecore"
)

var (
	ErrWeakSecret   = errors.New("secret key is too weak")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

var placeholderSecrets = []string{"change_me", "changeme", "replace_me", "your_secret", "secret_key"}

type AuthClaims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ValidateSecret rejects short secrets and the placeholder values shipped in
// example configs.
func ValidateSecret(secret string) error {
	trimmed := strings.TrimSpace(secret)
	if len(trimmed) < MinSecretLength {
		return fmt.Errorf("%w: need at least %d characters", ErrWeakSecret, MinSecretLength)
	}
	lowered := strings.ToLower(trimmed)
	for _, placeholder := range placeholderSecrets {
		if strings.Contains(lowered, placeholder) {
			return fmt.Errorf("%w: placeholder value", ErrWeakSecret)
		}
	}
	return nil
}

// DeriveSigningKey expands the configured secret into a dedicated HMAC key so
// the raw secret is never used to sign tokens directly.
func DeriveSigningKey(secret string) ([]byte, error) {
	if err := ValidateSecret(secret); err != nil {
		return nil, err
	}
	reader := hkdf.New(sha256.New, []byte(strings.TrimSpace(secret)), nil, []byte(signingKeyInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	return key, nil
}

func IssueToken(key []byte, userID uint, role string, ttl time.Duration, now time.Time) (string, error) {
	if userID == 0 {
		return "", errors.New("user id is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if strings.TrimSpace(role) == "" {
		role = RoleUser
	}
	tokenID, err := NewTokenID()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}

	claims := AuthClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

func ParseToken(key []byte, raw string, now time.Time) (AuthClaims, error) {
	claims := AuthClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return key, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AuthClaims{}, ErrTokenExpired
		}
		return AuthClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 || !ValidTokenID(claims.ID) {
		return AuthClaims{}, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) {
		return AuthClaims{}, ErrTokenExpired
	}
	return claims, nil
}
