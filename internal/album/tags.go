package album

import "encoding/json"

// Well-known tags attached to photos during upload, analysis and review.
const (
	TagRaw        = "raw"
	TagDuplicate  = "duplicate"
	TagCulled     = "culled"
	TagBlurry     = "blurry"
	TagClosedEyes = "closed_eyes"
)

// TagSet is an ordered string set. The source of record for photo tags used to
// be a plain string slice with ad hoc membership scans; TagSet guarantees
// uniqueness while keeping first-insert order for stable JSON output.
type TagSet struct {
	order []string
	index map[string]struct{}
}

// NewTagSet creates a set containing the given tags, deduplicated.
func NewTagSet(tags ...string) TagSet {
	var s TagSet
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add inserts a tag if not already present. Returns true if the set changed.
func (s *TagSet) Add(tag string) bool {
	if tag == "" || s.Has(tag) {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[tag] = struct{}{}
	s.order = append(s.order, tag)
	return true
}

// Remove deletes a tag. Returns true if the set changed.
func (s *TagSet) Remove(tag string) bool {
	if !s.Has(tag) {
		return false
	}
	delete(s.index, tag)
	for i, t := range s.order {
		if t == tag {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Has reports membership.
func (s *TagSet) Has(tag string) bool {
	if s.index == nil {
		return false
	}
	_, ok := s.index[tag]
	return ok
}

// Set adds or removes the tag so that membership matches present.
func (s *TagSet) Set(tag string, present bool) {
	if present {
		s.Add(tag)
	} else {
		s.Remove(tag)
	}
}

// Len returns the number of tags.
func (s *TagSet) Len() int {
	return len(s.order)
}

// Values returns the tags in first-insert order. The returned slice is a copy.
func (s *TagSet) Values() []string {
	return append([]string(nil), s.order...)
}

// Clone returns an independent copy of the set.
func (s TagSet) Clone() TagSet {
	return NewTagSet(s.order...)
}

// MarshalJSON encodes the set as a plain string array.
func (s TagSet) MarshalJSON() ([]byte, error) {
	if s.order == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.order)
}

// UnmarshalJSON decodes a string array, deduplicating entries.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = NewTagSet(tags...)
	return nil
}
