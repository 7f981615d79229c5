package model

import "context"

// ContextManager moves the resolved caller credential in and out of request
// contexts; the transport layer sets it, services read it.
type ContextManager interface {
	SetActorToContext(ctx context.Context, key VerifyKey) context.Context
	GetActorFromContext(ctx context.Context) (VerifyKey, bool)
}
