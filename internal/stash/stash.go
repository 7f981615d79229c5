// Package stash wraps the persistence layer with caller permission checks.
// A stash is the sole mutator of its record type: callers never write a
// record without going back through it, so the permission check and the
// storage mutation happen in the same logical operation.
package stash

import (
	"github.com/bayegaspard/datasite/internal/model"
)

// Grant is an explicit permission attached to a record when it is stored.
type Grant string

// GrantAllRead makes a record readable by any caller, not only its owner.
const GrantAllRead Grant = "ALL_READ"

// AccessPolicy supplies the per-record-type ownership and capability hooks.
type AccessPolicy[T any] interface {
	CanRead(caller model.VerifyKey, rec T) bool
	CanWrite(caller model.VerifyKey, rec T) bool
}

// Core implements the permission arithmetic shared by every concrete stash.
// Concrete stashes embed it and add typed accessors over their store.
type Core[T any] struct {
	policy AccessPolicy[T]
}

// NewCore builds a Core with the given policy.
func NewCore[T any](policy AccessPolicy[T]) Core[T] {
	return Core[T]{policy: policy}
}

// Readable returns the record if the caller may read it, otherwise
// ErrNotFound. Unreadable records are indistinguishable from missing ones.
func (c Core[T]) Readable(caller model.VerifyKey, rec T) (T, error) {
	if caller == model.RootAuthority || c.policy.CanRead(caller, rec) {
		return rec, nil
	}
	var zero T
	return zero, model.ErrNotFound
}

// Filter keeps the records the caller may read. With hasPermission the whole
// slice passes unchanged.
func (c Core[T]) Filter(caller model.VerifyKey, recs []T, hasPermission bool) []T {
	if caller == model.RootAuthority || hasPermission {
		return recs
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		if c.policy.CanRead(caller, rec) {
			out = append(out, rec)
		}
	}
	return out
}

// CheckWrite fails with ErrPermissionDenied before any storage mutation when
// the caller may not write the record. hasPermission is the root override
// used by internal service paths that have already authorized the mutation.
func (c Core[T]) CheckWrite(caller model.VerifyKey, rec T, hasPermission bool) error {
	if hasPermission || caller == model.RootAuthority || c.policy.CanWrite(caller, rec) {
		return nil
	}
	return model.NewPermissionDenied(model.ReasonRoleInsufficient,
		"caller has no write permission on this object")
}
