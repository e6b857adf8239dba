package backend

import (
	"context"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/duplicates"
)

type findDuplicatesRequest struct {
	Filenames  []string    `json:"filenames"`
	Embeddings [][]float32 `json:"embeddings"`
	Hashes     []string    `json:"phashes"`
}

type findDuplicatesResponse struct {
	Duplicates []duplicates.Cluster `json:"duplicates"`
}

// FindDuplicates submits the similarity signals of every analyzed photo and
// returns the backend's duplicate clusters.
func (c *Client) FindDuplicates(ctx context.Context, entries []duplicates.Entry) ([]duplicates.Cluster, error) {
	req := findDuplicatesRequest{
		Filenames:  make([]string, len(entries)),
		Embeddings: make([][]float32, len(entries)),
		Hashes:     make([]string, len(entries)),
	}
	for i, e := range entries {
		req.Filenames[i] = e.Filename
		req.Embeddings[i] = e.Embedding
		req.Hashes[i] = e.PHash
	}

	resp, err := doPostJSON[findDuplicatesResponse](ctx, c, "find_duplicates", req)
	if err != nil {
		return nil, err
	}
	return resp.Duplicates, nil
}
