package backend

import (
	"context"
	"fmt"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
)

// BatchMode selects the post-processing operation applied to a set of files.
type BatchMode string

const (
	BatchAutocorrect BatchMode = "autocorrect"
	BatchAutofix     BatchMode = "autofix"
)

// ProcessedImage is one post-processed file returned by the backend.
type ProcessedImage struct {
	Filename    string `json:"filename"`
	ImageBase64 string `json:"image_base64"`
}

type batchProcessResponse struct {
	Results []ProcessedImage `json:"results"`
}

// BatchProcess sends the files through the backend's bulk post-processing
// pipeline (exposure autocorrect or defect autofix).
func (c *Client) BatchProcess(ctx context.Context, paths []string, mode BatchMode) ([]ProcessedImage, error) {
	if mode != BatchAutocorrect && mode != BatchAutofix {
		return nil, fmt.Errorf("unknown batch mode %q", mode)
	}
	files := make([]multipartFile, len(paths))
	for i, path := range paths {
		files[i] = multipartFile{field: "files", path: path}
	}

	resp, err := doPostMultipart[batchProcessResponse](ctx, c, "batch_process", map[string]string{
		"mode": string(mode),
	}, files)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

type cullResponse struct {
	Photos []photoRecord `json:"photos"`
}

// Cull submits the photo list for bulk culling. The backend returns updated
// records (scores, culled tags, color labels) merged onto the inputs by
// filename; photos the backend did not mention come back unchanged.
func (c *Client) Cull(ctx context.Context, photos []album.Photo) ([]album.Photo, error) {
	type cullPhoto struct {
		Filename  string    `json:"filename"`
		AIScore   float64   `json:"ai_score"`
		Tags      []string  `json:"tags"`
		Embedding []float32 `json:"embedding,omitempty"`
		PHash     string    `json:"phash,omitempty"`
	}
	req := struct {
		Photos []cullPhoto `json:"photos"`
	}{Photos: make([]cullPhoto, len(photos))}
	for i, p := range photos {
		req.Photos[i] = cullPhoto{
			Filename:  p.Filename,
			AIScore:   p.AIScore,
			Tags:      p.Tags.Values(),
			Embedding: p.Embedding,
			PHash:     p.PHash,
		}
	}

	resp, err := doPostJSON[cullResponse](ctx, c, "cull", req)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*photoRecord, len(resp.Photos))
	for i := range resp.Photos {
		byName[resp.Photos[i].Filename] = &resp.Photos[i]
	}
	out := make([]album.Photo, len(photos))
	for i, p := range photos {
		if record, ok := byName[p.Filename]; ok {
			out[i] = record.apply(p)
		} else {
			out[i] = p.Clone()
		}
	}
	return out, nil
}
