// Package duplicates reconciles duplicate-cluster results onto the photo
// store and implements the review actions on duplicate groups.
package duplicates

import (
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
)

// Cluster is one duplicate cluster as reported by the similarity service:
// an anchor filename plus two independently computed duplicate lists, one from
// embedding (CLIP) similarity and one from perceptual hashes. Clusters are not
// guaranteed disjoint.
type Cluster struct {
	Anchor          string   `json:"filename"`
	ClipDuplicates  []string `json:"clip_duplicates"`
	PHashDuplicates []string `json:"phash_duplicates"`
}

// Union returns {anchor} + clip duplicates + phash duplicates, deduplicated by
// filename with first-occurrence order preserved.
func (c *Cluster) Union() []string {
	seen := make(map[string]struct{}, 1+len(c.ClipDuplicates)+len(c.PHashDuplicates))
	var union []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		union = append(union, name)
	}
	add(c.Anchor)
	for _, name := range c.ClipDuplicates {
		add(name)
	}
	for _, name := range c.PHashDuplicates {
		add(name)
	}
	return union
}

// contains reports whether the cluster mentions the filename as anchor or in
// either duplicate list.
func (c *Cluster) contains(name string) bool {
	if c.Anchor == name {
		return true
	}
	for _, d := range c.ClipDuplicates {
		if d == name {
			return true
		}
	}
	for _, d := range c.PHashDuplicates {
		if d == name {
			return true
		}
	}
	return false
}

// Entry is one photo's similarity signals, the input to duplicate search.
type Entry struct {
	Filename  string    `json:"filename"`
	Embedding []float32 `json:"embedding"`
	PHash     string    `json:"phash"`
}

// CollectEntries gathers the (filename, embedding, phash) triples of every
// photo carrying both signals. Returns a PreconditionError when no photo
// qualifies, in which case no external call should be made.
func CollectEntries(photos []album.Photo) ([]Entry, error) {
	var entries []Entry
	for _, p := range photos {
		if len(p.Embedding) == 0 || p.PHash == "" {
			continue
		}
		entries = append(entries, Entry{
			Filename:  p.Filename,
			Embedding: p.Embedding,
			PHash:     p.PHash,
		})
	}
	if len(entries) == 0 {
		return nil, &album.PreconditionError{Message: "no photos with embeddings and hashes to compare"}
	}
	return entries, nil
}

// Reconcile annotates every photo in the store with its duplicate-group
// membership derived from clusters. A photo belongs to the first cluster that
// names it (as anchor or in either list). Running Reconcile twice with the
// same cluster input leaves the store unchanged the second time.
func Reconcile(store *album.Store, clusters []Cluster) {
	for _, p := range store.List() {
		var match *Cluster
		for i := range clusters {
			if clusters[i].contains(p.Filename) {
				match = &clusters[i]
				break
			}
		}

		store.Update(p.ID, func(photo *album.Photo) {
			if match == nil {
				photo.DuplicateGroup = nil
				photo.IsDuplicate = false
				photo.Tags.Remove(album.TagDuplicate)
				return
			}
			union := match.Union()
			photo.DuplicateGroup = union
			photo.IsDuplicate = len(union) > 1
			photo.Tags.Set(album.TagDuplicate, photo.IsDuplicate)
		})
	}
}

// MarkKeep resolves a duplicate group in favor of keepFilename: the keeper is
// labeled green and sheds all duplicate marks (tag, flag and group) so it
// leaves the duplicates view; every other member of the group is labeled red.
func MarkKeep(store *album.Store, group []string, keepFilename string) {
	for _, name := range group {
		name := name
		store.UpdateByFilename(name, func(photo *album.Photo) {
			if name == keepFilename {
				photo.ColorLabel = album.LabelGreen
				photo.Tags.Remove(album.TagDuplicate)
				photo.IsDuplicate = false
				photo.DuplicateGroup = nil
			} else {
				photo.ColorLabel = album.LabelRed
			}
		})
	}
}

// DeleteGroup removes every photo named in the group from the store and
// returns the number removed.
func DeleteGroup(store *album.Store, group []string) int {
	return store.RemoveByFilenames(group)
}
