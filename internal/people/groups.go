// Package people derives person groups from the face clusters assigned by the
// analysis backend. The grouping is a pure function over the photo collection
// and can be recomputed at any time.
package people

import (
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
)

// Group is one person: every face occurrence sharing the externally assigned
// same_person_group id, plus the distinct photos those faces appear in.
type Group struct {
	ID                 string       `json:"group_id"`
	Photos             []album.Photo `json:"photos"`      // deduplicated by photo id
	Faces              []album.Face  `json:"faces"`       // one entry per occurrence
	PhotoCount         int          `json:"photo_count"` // distinct photos, never raw face count
	RepresentativeFace album.Face    `json:"representative_face"`

	repQuality    float64
	hasRepQuality bool
	photoSeen     map[string]struct{}
}

// BuildGroups clusters all faces of all photos by their same_person_group id.
// Faces without a group id never form single-member groups. The first face
// assigned to a group is its representative until a later face with a strictly
// higher quality replaces it; faces lacking a quality value never replace an
// existing representative. Output order follows first appearance of each id.
func BuildGroups(photos []album.Photo) []Group {
	byID := make(map[string]*Group)
	var order []string

	for _, photo := range photos {
		for _, face := range photo.Faces {
			id := face.SamePersonGroup
			if id == "" {
				continue
			}

			g, ok := byID[id]
			if !ok {
				g = &Group{
					ID:                 id,
					RepresentativeFace: face,
					repQuality:         face.Quality,
					hasRepQuality:      face.Quality > 0,
					photoSeen:          make(map[string]struct{}),
				}
				byID[id] = g
				order = append(order, id)
			} else if face.Quality > 0 && (!g.hasRepQuality || face.Quality > g.repQuality) {
				g.RepresentativeFace = face
				g.repQuality = face.Quality
				g.hasRepQuality = true
			}

			g.Faces = append(g.Faces, face)
			if _, seen := g.photoSeen[photo.ID]; !seen {
				g.photoSeen[photo.ID] = struct{}{}
				g.Photos = append(g.Photos, photo)
				g.PhotoCount++
			}
		}
	}

	groups := make([]Group, 0, len(order))
	for _, id := range order {
		g := byID[id]
		g.photoSeen = nil
		groups = append(groups, *g)
	}
	return groups
}

// GroupByID returns the group with the given id, if present.
func GroupByID(groups []Group, id string) (Group, bool) {
	for _, g := range groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}
