// Package cache provides a generic key-value [Cache] with three backends:
// [Memory] (process-local, LRU), [File] (one file per key) and [Redis].
//
// Set takes a TTL: positive expires after that duration, zero uses the
// backend default and negative never expires. Every backend reports a
// missing, expired or undecodable entry as [ErrNotFound], so callers treat
// corruption exactly like a miss.
//
// Byte-oriented backends serialize with a [Marshaler]. [JSONMarshaler] is
// the default; [MsgpackMarshaler] is more compact and [BytesMarshaler]
// stores pre-encoded payloads as-is.
//
//	routes, err := cache.NewFile[[]byte](cfg.Cache.Dir, cache.BytesMarshaler{})
//	if err != nil {
//	    return err
//	}
//	table, err := cache.GetOrSet(ctx, routes, "routes", build)
//
// [GetOrSet] collapses concurrent misses on one key into a single call of
// the loader using singleflight.
//
// The File backend stores a msgpack envelope holding the encoded value and
// a Unix expiry; files are named by the md5 of the key with a ".cache"
// suffix. [File.GC] sweeps expired and corrupt files.
//
// The Redis backend writes keys as "{prefix}:{key}" with [DefaultPrefix]
// unless [WithPrefix] says otherwise; Clear removes only keys under the
// prefix.
package cache
