package duplicates

import (
	"fmt"
	"testing"
)

// embedding returns a 512-dim unit-ish vector with small per-entry noise so
// near pairs stay under the cosine threshold while distinct pairs do not.
func embedding(axis int, noise float32) []float32 {
	v := make([]float32, 512)
	v[axis] = 1
	v[(axis+1)%512] = noise
	return v
}

func TestLocalFinder_ClustersNearPairs(t *testing.T) {
	entries := []Entry{
		{Filename: "a.jpg", Embedding: embedding(0, 0), PHash: "8f00000000000033"},
		{Filename: "b.jpg", Embedding: embedding(0, 0.04), PHash: "8f00000000000034"},
		{Filename: "clean.jpg", Embedding: embedding(5, 0), PHash: "70ffffffffffff00"},
	}

	clusters := NewLocalFinder().Find(entries)

	if len(clusters) != 2 {
		t.Fatalf("expected clusters for a.jpg and b.jpg only, got %+v", clusters)
	}
	byAnchor := map[string]Cluster{}
	for _, c := range clusters {
		byAnchor[c.Anchor] = c
	}

	a, ok := byAnchor["a.jpg"]
	if !ok {
		t.Fatal("expected a cluster anchored at a.jpg")
	}
	if len(a.ClipDuplicates) != 1 || a.ClipDuplicates[0] != "b.jpg" {
		t.Errorf("expected a.jpg's clip duplicate to be b.jpg, got %v", a.ClipDuplicates)
	}
	if len(a.PHashDuplicates) != 1 || a.PHashDuplicates[0] != "b.jpg" {
		t.Errorf("expected a.jpg's hash duplicate to be b.jpg, got %v", a.PHashDuplicates)
	}
	if _, ok := byAnchor["clean.jpg"]; ok {
		t.Error("expected clean.jpg to have no cluster")
	}
}

func TestLocalFinder_HashOnlyPair(t *testing.T) {
	// distinct embeddings, hashes 3 bits apart
	entries := []Entry{
		{Filename: "a.jpg", Embedding: embedding(0, 0), PHash: "00000000000000ff"},
		{Filename: "b.jpg", Embedding: embedding(7, 0), PHash: "00000000000000f8"},
	}

	clusters := NewLocalFinder().Find(entries)
	if len(clusters) != 2 {
		t.Fatalf("expected both anchors clustered via hashes, got %+v", clusters)
	}
	for _, c := range clusters {
		if len(c.ClipDuplicates) != 0 {
			t.Errorf("expected no clip duplicates for %s, got %v", c.Anchor, c.ClipDuplicates)
		}
		if len(c.PHashDuplicates) != 1 {
			t.Errorf("expected one hash duplicate for %s, got %v", c.Anchor, c.PHashDuplicates)
		}
	}
}

func TestLocalFinder_MissingSignalsTolerated(t *testing.T) {
	entries := []Entry{
		{Filename: "a.jpg", PHash: "00000000000000ff"},
		{Filename: "b.jpg", PHash: "00000000000000fe"},
		{Filename: "c.jpg", Embedding: embedding(0, 0)},
	}

	clusters := NewLocalFinder().Find(entries)
	if len(clusters) != 2 {
		t.Fatalf("expected hash-only pair to cluster, got %+v", clusters)
	}
}

func TestLocalFinder_TooFewEntries(t *testing.T) {
	if got := NewLocalFinder().Find([]Entry{{Filename: "only.jpg"}}); got != nil {
		t.Errorf("expected nil for a single entry, got %+v", got)
	}
	if got := NewLocalFinder().Find(nil); got != nil {
		t.Errorf("expected nil for no entries, got %+v", got)
	}
}

func TestLocalFinder_ThresholdBoundaries(t *testing.T) {
	f := NewLocalFinder()
	f.HashThreshold = 1

	entries := []Entry{
		{Filename: "a.jpg", PHash: "0000000000000001"},
		{Filename: "b.jpg", PHash: "0000000000000003"}, // 1 bit away
		{Filename: "c.jpg", PHash: "000000000000000f"}, // 2 bits from b
	}
	clusters := f.Find(entries)

	byAnchor := map[string][]string{}
	for _, c := range clusters {
		byAnchor[c.Anchor] = c.PHashDuplicates
	}
	if len(byAnchor["a.jpg"]) != 1 || byAnchor["a.jpg"][0] != "b.jpg" {
		t.Errorf("expected a.jpg paired only with b.jpg, got %v", byAnchor["a.jpg"])
	}
	if len(byAnchor["b.jpg"]) != 1 {
		t.Errorf("expected b.jpg paired only with a.jpg, got %v", byAnchor["b.jpg"])
	}
	if _, ok := byAnchor["c.jpg"]; ok {
		t.Errorf("expected c.jpg unclustered at threshold 1, got %v", byAnchor["c.jpg"])
	}
}

func TestLocalFinder_ManyEntries(t *testing.T) {
	var entries []Entry
	for i := 0; i < 40; i++ {
		entries = append(entries, Entry{
			Filename:  fmt.Sprintf("p%02d.jpg", i),
			Embedding: embedding(i%256*2, 0),
		})
	}
	// one deliberate near-pair
	entries = append(entries, Entry{Filename: "twin.jpg", Embedding: embedding(0, 0.03)})

	clusters := NewLocalFinder().Find(entries)

	found := false
	for _, c := range clusters {
		if c.Anchor == "twin.jpg" {
			found = true
			if len(c.ClipDuplicates) != 1 || c.ClipDuplicates[0] != "p00.jpg" {
				t.Errorf("expected twin.jpg to pair with p00.jpg, got %v", c.ClipDuplicates)
			}
		}
	}
	if !found {
		t.Error("expected a cluster anchored at twin.jpg")
	}
}
