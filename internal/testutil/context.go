package testutil

import (
	"context"

	"github.com/netbill/netbill/internal/types"
)

const DefaultUserID = "user_01JTEST00000000000000000"

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
