package duplicates

import (
	"github.com/coder/hnsw"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/fingerprint"
)

const (
	// DefaultClipThreshold is the max cosine distance between embeddings for
	// two photos to count as near-duplicates.
	DefaultClipThreshold = 0.10
	// DefaultHashThreshold is the max Hamming distance between perceptual
	// hashes for two photos to count as near-duplicates.
	DefaultHashThreshold = 10
	// hnswMaxNeighbors is the M parameter of the HNSW graph.
	hnswMaxNeighbors = 16
	// searchK bounds how many neighbors are examined per anchor.
	searchK = 32
)

// LocalFinder clusters photos by embedding and hash similarity without
// calling the remote similarity service. It mirrors the remote contract so
// reconciliation works identically on its output.
type LocalFinder struct {
	ClipThreshold float64
	HashThreshold int
}

// NewLocalFinder creates a finder with default thresholds.
func NewLocalFinder() *LocalFinder {
	return &LocalFinder{
		ClipThreshold: DefaultClipThreshold,
		HashThreshold: DefaultHashThreshold,
	}
}

// Find returns one cluster per entry that has at least one near-duplicate.
// Embedding neighbors come from an HNSW graph with cosine distance; hash
// neighbors from pairwise Hamming comparison.
func (f *LocalFinder) Find(entries []Entry) []Cluster {
	if len(entries) < 2 {
		return nil
	}

	graph := hnsw.NewGraph[int]()
	graph.M = hnswMaxNeighbors
	graph.Ml = 1.0 / float64(hnswMaxNeighbors)
	graph.Distance = hnsw.CosineDistance
	for i, e := range entries {
		if len(e.Embedding) > 0 {
			graph.Add(hnsw.MakeNode(i, e.Embedding))
		}
	}

	hashes := make([]uint64, len(entries))
	for i, e := range entries {
		if bits, err := fingerprint.ParseHash(e.PHash); err == nil {
			hashes[i] = bits
		}
	}

	var clusters []Cluster
	for i, anchor := range entries {
		cluster := Cluster{Anchor: anchor.Filename}

		if len(anchor.Embedding) > 0 {
			for _, node := range graph.Search(anchor.Embedding, searchK) {
				if node.Key == i {
					continue
				}
				dist := 1 - fingerprint.CosineSimilarity(anchor.Embedding, node.Value)
				if dist <= f.ClipThreshold {
					cluster.ClipDuplicates = append(cluster.ClipDuplicates, entries[node.Key].Filename)
				}
			}
		}

		if hashes[i] != 0 {
			for j, other := range hashes {
				if j == i || other == 0 {
					continue
				}
				if fingerprint.Similar(hashes[i], other, f.HashThreshold) {
					cluster.PHashDuplicates = append(cluster.PHashDuplicates, entries[j].Filename)
				}
			}
		}

		if len(cluster.ClipDuplicates) > 0 || len(cluster.PHashDuplicates) > 0 {
			clusters = append(clusters, cluster)
		}
	}
	return clusters
}
