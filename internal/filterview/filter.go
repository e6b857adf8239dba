// Package filterview computes the currently visible photo subset from the
// store plus the active filter state. Apply is a pure function re-run whenever
// either input changes; filters run in a fixed order, each narrowing the
// previous result.
package filterview

import (
	"strings"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
)

// Category is the single-select category filter.
type Category string

const (
	CategoryAll           Category = "all"
	CategorySelected      Category = "selected"
	CategoryHighScore     Category = "high-score"
	CategoryApproved      Category = "approved"
	CategoryNotApproved   Category = "not-approved"
	CategoryHighlights    Category = "highlights"
	CategoryFlagged       Category = "flagged"
	CategoryBlurry        Category = "blurry"
	CategoryEyesClosed    Category = "eyes-closed"
	CategoryDuplicates    Category = "duplicates"
	CategoryPeople        Category = "people"
	CategoryEmotions      Category = "emotions"
	CategoryQualityIssues Category = "quality-issues"
)

// HighScoreThreshold is the minimum ai_score for the high-score category.
const HighScoreThreshold = 7

// State is the active filter configuration. Star bounds are on the 0-5 scale;
// -1 means the bound is unset.
type State struct {
	Category      Category `json:"category"`
	CaptionQuery  string   `json:"caption_query"`
	MinStars      float64  `json:"min_stars"`
	MaxStars      float64  `json:"max_stars"`
	PersonGroupID string   `json:"person_group_id"`
	AlbumID       string   `json:"album_id"`
}

// NewState returns a state that filters nothing.
func NewState() State {
	return State{Category: CategoryAll, MinStars: -1, MaxStars: -1}
}

// hasStarRange reports whether any star bound is set.
func (s *State) hasStarRange() bool {
	return s.MinStars >= 0 || s.MaxStars >= 0
}

// Apply runs the filter pipeline over photos in its fixed, non-reorderable
// order: album scope, caption substring, person group, star range, category.
// Every stage is total; an unknown category behaves like "all".
func Apply(photos []album.Photo, state State) []album.Photo {
	out := photos
	out = filterAlbum(out, state.AlbumID)
	out = filterCaption(out, state.CaptionQuery)
	out = filterPersonGroup(out, state.PersonGroupID)
	out = filterStars(out, state)
	out = filterCategory(out, state.Category)
	return out
}

func filterAlbum(photos []album.Photo, albumID string) []album.Photo {
	if albumID == "" {
		return photos
	}
	return keep(photos, func(p *album.Photo) bool {
		return p.AlbumID == albumID
	})
}

func filterCaption(photos []album.Photo, query string) []album.Photo {
	needle := Normalize(query)
	if needle == "" {
		return photos
	}
	return keep(photos, func(p *album.Photo) bool {
		if p.Caption == "" {
			return false
		}
		return strings.Contains(Normalize(p.Caption), needle)
	})
}

func filterPersonGroup(photos []album.Photo, groupID string) []album.Photo {
	if groupID == "" {
		return photos
	}
	return keep(photos, func(p *album.Photo) bool {
		return p.HasPersonGroup(groupID)
	})
}

// filterStars applies the inclusive star range. Unscored photos are always
// excluded once any bound is set: a zero ai_score means "not analyzed", not
// "zero stars".
func filterStars(photos []album.Photo, state State) []album.Photo {
	if !state.hasStarRange() {
		return photos
	}
	return keep(photos, func(p *album.Photo) bool {
		if p.Unscored() {
			return false
		}
		stars := p.Stars()
		if state.MinStars >= 0 && stars < state.MinStars {
			return false
		}
		if state.MaxStars >= 0 && stars > state.MaxStars {
			return false
		}
		return true
	})
}

func filterCategory(photos []album.Photo, category Category) []album.Photo {
	pred := categoryPredicate(category)
	if pred == nil {
		return photos
	}
	return keep(photos, pred)
}

// categoryPredicate returns nil for "all" and for unrecognized categories.
func categoryPredicate(category Category) func(*album.Photo) bool {
	switch category {
	case CategorySelected:
		return func(p *album.Photo) bool { return p.Selected }
	case CategoryHighScore:
		return func(p *album.Photo) bool { return p.AIScore >= HighScoreThreshold }
	case CategoryApproved:
		return func(p *album.Photo) bool { return p.Approved != nil && *p.Approved }
	case CategoryNotApproved:
		return func(p *album.Photo) bool { return p.Approved != nil && !*p.Approved }
	case CategoryHighlights:
		return func(p *album.Photo) bool { return len(p.Highlights) > 0 }
	case CategoryFlagged:
		return func(p *album.Photo) bool { return len(p.Flags) > 0 }
	case CategoryBlurry:
		return func(p *album.Photo) bool { return p.Tags.Has(album.TagBlurry) }
	case CategoryEyesClosed:
		return func(p *album.Photo) bool {
			return p.Tags.Has(album.TagClosedEyes) || (p.FaceSummary != nil && p.FaceSummary.EyesClosed > 0)
		}
	case CategoryDuplicates:
		return func(p *album.Photo) bool { return p.IsDuplicate || p.Tags.Has(album.TagDuplicate) }
	case CategoryPeople:
		return func(p *album.Photo) bool { return len(p.Faces) > 0 }
	case CategoryEmotions:
		return func(p *album.Photo) bool {
			for _, f := range p.Faces {
				if f.Emotion != "" {
					return true
				}
			}
			return false
		}
	case CategoryQualityIssues:
		return func(p *album.Photo) bool {
			if p.FaceSummary != nil && p.FaceSummary.QualityIssues > 0 {
				return true
			}
			return p.Tags.Has(album.TagBlurry) || p.Tags.Has(album.TagClosedEyes)
		}
	}

	if label := album.ColorLabel(category); label.Valid() {
		return func(p *album.Photo) bool { return p.ColorLabel == label }
	}
	return nil
}

func keep(photos []album.Photo, pred func(*album.Photo) bool) []album.Photo {
	out := make([]album.Photo, 0, len(photos))
	for i := range photos {
		if pred(&photos[i]) {
			out = append(out, photos[i])
		}
	}
	return out
}
