package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrIssueFailed wraps any failure of the external credential provider so the
// API can report it distinctly instead of as an opaque internal error.
var ErrIssueFailed = errors.New("credential issuance failed")

// Issuer mints opaque join credentials for the external media provider. The
// engine treats the credential as a black box.
type Issuer interface {
	Issue(identity, roomName string, canPublish bool) (string, error)
}

// VideoGrant mirrors the room-access claim shape the media provider expects.
type VideoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

type roomClaims struct {
	jwt.RegisteredClaims
	Video VideoGrant `json:"video"`
}

// JWTIssuer signs room access tokens with the provider api key pair.
type JWTIssuer struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
	now       func() time.Time
}

func NewJWTIssuer(apiKey, apiSecret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &JWTIssuer{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (i *JWTIssuer) Issue(identity, roomName string, canPublish bool) (string, error) {
	if i.apiKey == "" || i.apiSecret == "" {
		return "", fmt.Errorf("%w: api key or secret is not configured", ErrIssueFailed)
	}
	if identity == "" || roomName == "" {
		return "", fmt.Errorf("%w: identity and room name are required", ErrIssueFailed)
	}

	now := i.now()
	claims := roomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Video: VideoGrant{
			Room:         roomName,
			RoomJoin:     true,
			CanPublish:   canPublish,
			CanSubscribe: true,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.apiSecret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIssueFailed, err)
	}
	return signed, nil
}
