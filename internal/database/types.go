// Package database defines the storage types for the optional embedding
// cache. The cache lets repeated analysis runs over the same files skip
// the expensive embedding and fingerprint recomputation.
package database

import "time"

// StoredEmbedding is a cached visual signature for one photo file.
type StoredEmbedding struct {
	Filename  string
	Embedding []float32
	PHash     string
	Model     string
	Dim       int
	CreatedAt time.Time
}
