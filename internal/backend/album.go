package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
)

// SaveAlbumRequest describes one album persistence submission: the binary
// payload of every photo plus a structured metadata record mirroring the
// analysis fields.
type SaveAlbumRequest struct {
	UserID    string
	Name      string
	Title     string
	EventType string
	Photos    []album.Photo
}

// photoMetadata is the per-photo record inside the metadata part.
type photoMetadata struct {
	Filename        string             `json:"filename"`
	AIScore         float64            `json:"ai_score"`
	ScoreType       string             `json:"score_type,omitempty"`
	Tags            []string           `json:"tags"`
	ColorLabel      string             `json:"color_label,omitempty"`
	Caption         string             `json:"caption,omitempty"`
	EventHighlights []string           `json:"event_highlights,omitempty"`
	Flags           []string           `json:"flags,omitempty"`
	FaceSummary     *album.FaceSummary `json:"face_summary,omitempty"`
	Approved        *bool              `json:"approved,omitempty"`
	AlbumID         string             `json:"album_id,omitempty"`
}

type saveAlbumMetadata struct {
	UserID    string          `json:"user_id"`
	Name      string          `json:"album_name"`
	Title     string          `json:"album_title"`
	EventType string          `json:"event_type"`
	Photos    []photoMetadata `json:"photos"`
}

// SaveAlbumResponse is the acknowledgment from the save endpoint.
type SaveAlbumResponse struct {
	AlbumID string `json:"album_id"`
	Saved   int    `json:"saved"`
	Message string `json:"message,omitempty"`
}

// SaveAlbum submits the album to the remote persistence endpoint: one binary
// part per photo plus a single JSON metadata part. An empty title is a
// validation error and no request is sent.
func (c *Client) SaveAlbum(ctx context.Context, req SaveAlbumRequest) (*SaveAlbumResponse, error) {
	if req.Title == "" {
		return nil, &album.ValidationError{Field: "album_title", Message: "album title must not be empty"}
	}

	meta := saveAlbumMetadata{
		UserID:    req.UserID,
		Name:      req.Name,
		Title:     req.Title,
		EventType: req.EventType,
		Photos:    make([]photoMetadata, len(req.Photos)),
	}
	files := make([]multipartFile, len(req.Photos))
	for i, p := range req.Photos {
		meta.Photos[i] = photoMetadata{
			Filename:        p.Filename,
			AIScore:         p.AIScore,
			ScoreType:       p.ScoreType,
			Tags:            p.Tags.Values(),
			ColorLabel:      string(p.ColorLabel),
			Caption:         p.Caption,
			EventHighlights: p.Highlights,
			Flags:           p.Flags,
			FaceSummary:     p.FaceSummary,
			Approved:        p.Approved,
			AlbumID:         p.AlbumID,
		}
		files[i] = multipartFile{field: "files", filename: p.Filename, path: p.OriginalPath}
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("could not marshal album metadata: %w", err)
	}

	resp, err := doPostMultipart[SaveAlbumResponse](ctx, c, "save_album", map[string]string{
		"metadata": string(metaJSON),
	}, files)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
