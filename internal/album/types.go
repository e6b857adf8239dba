package album

// ColorLabel is a manual or derived classification overlay, independent of the
// AI score. Semantics follow the Ailbums review conventions: green = keep,
// red = reject, yellow = needs review, blue = client-marked, purple = duplicate.
type ColorLabel string

const (
	LabelGreen  ColorLabel = "green"
	LabelRed    ColorLabel = "red"
	LabelYellow ColorLabel = "yellow"
	LabelBlue   ColorLabel = "blue"
	LabelPurple ColorLabel = "purple"
)

// Valid returns true if the label is one of the known colors.
func (l ColorLabel) Valid() bool {
	switch l {
	case LabelGreen, LabelRed, LabelYellow, LabelBlue, LabelPurple:
		return true
	}
	return false
}

// Face is a single detected face inside a photo. Faces never exist on their
// own; they always belong to a parent Photo.
type Face struct {
	Box             [4]float64 `json:"box"` // [x1, y1, x2, y2] in source-image pixels
	Confidence      float64    `json:"confidence"`
	Quality         float64    `json:"face_quality,omitempty"`
	Age             int        `json:"age,omitempty"`
	Gender          string     `json:"gender,omitempty"`
	Emotion         string     `json:"emotion,omitempty"`
	Glasses         bool       `json:"glasses,omitempty"`
	Mask            bool       `json:"mask,omitempty"`
	EyesClosed      bool       `json:"eyes_closed,omitempty"`
	SamePersonGroup string     `json:"same_person_group,omitempty"` // externally assigned cluster id
	CropImage       string     `json:"crop_image,omitempty"`        // base64 crop, optional
}

// FaceSummary aggregates face issue counts for a photo.
type FaceSummary struct {
	TotalFaces    int `json:"total_faces"`
	EyesClosed    int `json:"eyes_closed"`
	Smiling       int `json:"smiling"`
	QualityIssues int `json:"quality_issues"`
}

// Photo is the canonical record for a single uploaded image. The Store owns
// all Photo data; derived structures (duplicate groups, person groups,
// filtered views) are recomputed views over it.
type Photo struct {
	ID             string      `json:"id"` // immutable, unique for the store's lifetime
	Filename       string      `json:"filename"`
	OriginalPath   string      `json:"original_path,omitempty"` // reference to the uploaded payload
	PreviewURL     string      `json:"preview_url,omitempty"`   // displayable image reference
	AIScore        float64     `json:"ai_score"`                // 0 = unscored, else 0-10
	ScoreType      string      `json:"score_type,omitempty"`
	Tags           TagSet      `json:"tags"`
	ColorLabel     ColorLabel  `json:"color_label,omitempty"`
	Faces          []Face      `json:"faces,omitempty"`
	FaceSummary    *FaceSummary `json:"face_summary,omitempty"`
	Caption        string      `json:"caption,omitempty"`
	Highlights     []string    `json:"event_highlights,omitempty"`
	Flags          []string    `json:"flags,omitempty"`
	Embedding      []float32   `json:"embedding,omitempty"`
	PHash          string      `json:"phash,omitempty"`
	Approved       *bool       `json:"approved,omitempty"` // server-determined
	Selected       bool        `json:"selected"`           // UI-local
	AlbumID        string      `json:"album_id,omitempty"`
	DuplicateGroup []string    `json:"duplicate_group,omitempty"`
	IsDuplicate    bool        `json:"is_duplicate"`
}

// Unscored reports whether the photo has not been analyzed yet. An AIScore of
// zero is never a valid analysis outcome.
func (p *Photo) Unscored() bool {
	return p.AIScore == 0
}

// Stars converts the 0-10 AI score to the 0-5 star scale used by filters.
func (p *Photo) Stars() float64 {
	return p.AIScore / 2
}

// HasPersonGroup reports whether any face of the photo carries the given
// person-group id.
func (p *Photo) HasPersonGroup(groupID string) bool {
	for _, f := range p.Faces {
		if f.SamePersonGroup == groupID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the photo so callers can hand records across
// goroutine boundaries without sharing slices.
func (p *Photo) Clone() Photo {
	c := *p
	c.Tags = p.Tags.Clone()
	if p.Faces != nil {
		c.Faces = make([]Face, len(p.Faces))
		copy(c.Faces, p.Faces)
	}
	if p.FaceSummary != nil {
		fs := *p.FaceSummary
		c.FaceSummary = &fs
	}
	if p.Highlights != nil {
		c.Highlights = append([]string(nil), p.Highlights...)
	}
	if p.Flags != nil {
		c.Flags = append([]string(nil), p.Flags...)
	}
	if p.Embedding != nil {
		c.Embedding = append([]float32(nil), p.Embedding...)
	}
	if p.Approved != nil {
		a := *p.Approved
		c.Approved = &a
	}
	if p.DuplicateGroup != nil {
		c.DuplicateGroup = append([]string(nil), p.DuplicateGroup...)
	}
	return c
}
