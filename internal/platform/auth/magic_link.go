package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"biolink/internal/platform/store"
)

var ErrTokenUsed = errors.New("magic link already used")

type usedMarker struct {
	Email  string `json:"email"`
	UsedAt int64  `json:"usedAt"`
}

// MagicLinkGuard makes magic links single-use by recording each consumed token id.
type MagicLinkGuard struct {
	store store.Store
}

func NewMagicLinkGuard(s store.Store) *MagicLinkGuard {
	return &MagicLinkGuard{store: s}
}

// Consume marks the token as used. A second call for the same token returns ErrTokenUsed.
func (g *MagicLinkGuard) Consume(ctx context.Context, claims *Claims) error {
	return g.store.Update(ctx, store.MagicLinkKey(Digest(claims.ID)), func(current []byte) ([]byte, error) {
		if current != nil {
			return nil, ErrTokenUsed
		}
		return json.Marshal(usedMarker{Email: claims.Email, UsedAt: time.Now().Unix()})
	})
}
