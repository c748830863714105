// Package cache provides the read-model invalidation sink. Every
// mutating lifecycle transition reports the keys it dirtied; the sink
// drops them so stale loan views are never served.
package cache

import (
	"context"
	"fmt"
)

// Invalidator drops cached read models by key. Implementations must be
// safe for concurrent use; invalidation failures are reported but are
// never allowed to fail the mutation that triggered them.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Cache keys follow the entity:{id}[:sub] convention.
func LoanKey(loanID int64) string {
	return fmt.Sprintf("loan:%d", loanID)
}

func LoanListKey() string {
	return "loan:list"
}

func LoanScheduleKey(loanID int64) string {
	return fmt.Sprintf("loan:%d:schedule", loanID)
}

// LoanKeys is the full key set dirtied by a loan mutation.
func LoanKeys(loanID int64) []string {
	return []string{LoanKey(loanID), LoanListKey(), LoanScheduleKey(loanID)}
}

// Noop is an Invalidator that drops nothing, for deployments without a
// cache tier and for tests.
type Noop struct{}

func (Noop) Invalidate(context.Context, ...string) error {
	return nil
}
