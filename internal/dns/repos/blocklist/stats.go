package blocklist

// CacheStats reports lightweight cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Capacity  int    `json:"capacity"`
	Size      int    `json:"size"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// StoreStats reports store counts and metadata.
type StoreStats struct {
	Domains     uint64 `json:"domains"`
	Version     uint64 `json:"version"`      // bumped on every write
	UpdatedUnix int64  `json:"updated_unix"` // 0 if never written
}

// Stats combines cache and store metrics.
type Stats struct {
	Cache CacheStats `json:"cache"`
	Store StoreStats `json:"store"`
}
