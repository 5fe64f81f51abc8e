package auth

import (
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"biolink/internal/platform/config"
)

const (
	PurposeMagicLink = "magic"
	PurposeSession   = "session"
)

var ErrWrongPurpose = errors.New("token purpose mismatch")

type Claims struct {
	Email   string `json:"email"`
	Purpose string `json:"pur"`
	jwt.RegisteredClaims
}

type TokenService struct {
	config config.JWTConfig
	now    func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{config: cfg, now: time.Now}
}

// GenerateMagicLinkToken issues the short-lived token embedded in login emails.
func (s *TokenService) GenerateMagicLinkToken(email string) (string, time.Time, error) {
	return s.generate(email, PurposeMagicLink, s.config.MagicLinkTTL)
}

// GenerateSessionToken issues the bearer token used by the dashboard.
func (s *TokenService) GenerateSessionToken(email string) (string, time.Time, error) {
	return s.generate(email, PurposeSession, s.config.SessionTTL)
}

func (s *TokenService) generate(email, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "biolink",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *TokenService) ValidateToken(tokenString, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// Digest hashes a token id so the raw jti never reaches the store.
func Digest(tokenID string) string {
	sum := blake2b.Sum256([]byte(tokenID))
	return hex.EncodeToString(sum[:])
}
