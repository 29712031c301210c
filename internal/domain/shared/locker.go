package shared

import (
	"context"
	"sort"
)

// Locker serialises mutations that re-read balances. Locks are held until the
// surrounding transaction ends.
type Locker interface {
	Lock(ctx context.Context, keys ...string) error
}

// StockLockKey is the lock key for stock mutations of one item code
func StockLockKey(itemCode string) string {
	return "stock:" + itemCode
}

// AccountLockKey is the lock key for ledger mutations of one account
func AccountLockKey(account string) string {
	return "account:" + account
}

// SortedUniqueKeys returns keys deduplicated and in ascending order, the order in
// which locks must be taken to avoid deadlocks.
func SortedUniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NoopLocker is used by stores that serialise writers on their own.
type NoopLocker struct{}

// Lock implements Locker
func (NoopLocker) Lock(context.Context, ...string) error { return nil }
