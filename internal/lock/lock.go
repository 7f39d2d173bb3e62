// Package lock provides the cross-instance guard for simulation runs.
package lock

import (
	"context"
	"time"
)

// Locker is a named, expiring mutual-exclusion lock.
type Locker interface {
	// TryLock attempts the lock once; false means another holder has it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Close() error
}

// NopLock always succeeds. It is used for single-instance deployments.
type NopLock struct{}

func NewNopLock() *NopLock { return &NopLock{} }

func (NopLock) TryLock(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (NopLock) Unlock(context.Context, string) error                         { return nil }
func (NopLock) Close() error                                                 { return nil }
