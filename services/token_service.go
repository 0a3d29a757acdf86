package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService signs and verifies short-lived HS256 tokens.
type TokenService interface {
	Issue(claims map[string]interface{}, ttl time.Duration) (string, error)
	Verify(token string) (map[string]interface{}, error)
}

type tokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string, now func() time.Time) TokenService {
	if now == nil {
		now = time.Now
	}
	return &tokenService{secret: []byte(secret), now: now}
}

func (s *tokenService) Issue(claims map[string]interface{}, ttl time.Duration) (string, error) {
	now := s.now()

	mapClaims := jwt.MapClaims{}
	for k, v := range claims {
		mapClaims[k] = v
	}
	mapClaims["iat"] = now.Unix()
	mapClaims["exp"] = now.Add(ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify fails closed: every failure is ErrInvalidToken.
func (s *tokenService) Verify(tokenString string) (map[string]interface{}, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithJSONNumber(),
		jwt.WithoutClaimsValidation(),
	)

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// claimID reads a positive integer id stored under key.
func claimID(claims map[string]interface{}, key string) (uint, bool) {
	switch v := claims[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil || n <= 0 {
			return 0, false
		}
		return uint(n), true
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return 0, false
		}
		return uint(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
