// Package cache provides a sharded LRU cache for immutable derived objects.
//
// Backends use it to memoize layouts that are expensive to derive and
// identical for equal inputs, such as DX12 root-signature layouts keyed by
// their binding signature.
//
//	layouts := cache.New[uint64, *RootLayout](64, cache.Uint64Hasher)
//	layout, err := layouts.GetOrCreate(key, func() (*RootLayout, error) {
//		return buildRootLayout(groups)
//	})
//
// # Thread Safety
//
// All operations are safe for concurrent use. Each of the 16 shards has its
// own lock; creation runs under the shard lock so a value is built at most
// once per key while it stays cached.
package cache
