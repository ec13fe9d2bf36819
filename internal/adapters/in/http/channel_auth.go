package http

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"capacity/internal/core/domain/model/broadcast"

	"github.com/golang-jwt/jwt"
)

var (
	ErrMissingToken      = errors.New("channel token is required")
	ErrChannelNotGranted = errors.New("token does not grant the channel")
)

// channelClaims lists the private channels the bearer may subscribe to.
type channelClaims struct {
	Channels []string `json:"channels"`
	jwt.StandardClaims
}

// ChannelAuthorizer checks HMAC-signed channel tokens. The public channel
// needs no token.
type ChannelAuthorizer struct {
	secret []byte
}

func NewChannelAuthorizer(secret string) ChannelAuthorizer {
	return ChannelAuthorizer{secret: []byte(secret)}
}

// Authorize returns nil when token grants channel.
func (a ChannelAuthorizer) Authorize(token string, channel broadcast.ChannelID) error {
	if channel.IsPublic() {
		return nil
	}
	if token == "" {
		return ErrMissingToken
	}

	claims := &channelClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return fmt.Errorf("failed to verify token: %w", err)
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	if !slices.Contains(claims.Channels, channel.String()) {
		return ErrChannelNotGranted
	}
	return nil
}

// Issue signs a token granting channels until ttl elapses.
func (a ChannelAuthorizer) Issue(channels []broadcast.ChannelID, ttl time.Duration, now time.Time) (string, error) {
	names := make([]string, 0, len(channels))
	for _, c := range channels {
		if err := c.Validate(); err != nil {
			return "", err
		}
		names = append(names, c.String())
	}

	claims := channelClaims{
		Channels: names,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
