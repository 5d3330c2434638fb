package core

import (
	"context"

	"github.com/Evgen-Mutagen/finances/internal/model"
)

type ctxKey string

const identityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*model.Identity)
	return identity, ok && identity != nil
}
