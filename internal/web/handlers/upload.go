package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/config"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/constants"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/fingerprint"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/workflow"
)

// UploadHandler handles photo upload endpoints.
type UploadHandler struct {
	config *config.Config
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(cfg *config.Config) *UploadHandler {
	return &UploadHandler{config: cfg}
}

// fileKind classifies a filename by extension: standard image, camera RAW, or
// unsupported.
type fileKind int

const (
	kindUnsupported fileKind = iota
	kindImage
	kindRaw
)

func classifyFile(filename string) fileKind {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if slices.Contains(constants.ImageExtensions, ext) {
		return kindImage
	}
	if slices.Contains(constants.RawExtensions, ext) {
		return kindRaw
	}
	return kindUnsupported
}

// rejectedFile reports one upload entry that was not accepted.
type rejectedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// saveUploadedFile spools one multipart file to dir and returns its path.
func saveUploadedFile(fileHeader *multipart.FileHeader, dir string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", fileHeader.Filename, err)
	}
	defer file.Close()

	safeName := filepath.Base(fileHeader.Filename)
	path := filepath.Join(dir, safeName)
	out, err := os.Create(path) //nolint:gosec // filename sanitized via filepath.Base
	if err != nil {
		return "", fmt.Errorf("failed to create spool file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path, nil
}

// Upload accepts a multipart batch of photos into the workspace. Standard
// image formats are accepted directly; RAW formats are accepted with a
// placeholder preview and a "raw" tag; anything else is rejected per file
// without failing the batch.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ws := mustGetWorkspace(w, r)
	if ws == nil {
		return
	}

	if stage := ws.Workflow.Stage(); stage != workflow.StageUpload {
		respondError(w, http.StatusPreconditionFailed,
			fmt.Sprintf("photos can only be added in the upload stage, current stage is %s", stage))
		return
	}

	maxSize := h.config.Upload.MaxSize
	if maxSize <= 0 {
		maxSize = constants.MaxUploadSize
	}
	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	albumID := r.FormValue("album_id")

	spoolBase := h.config.Upload.Dir
	if spoolBase == "" {
		spoolBase = os.TempDir()
	}
	spoolDir, err := os.MkdirTemp(spoolBase, "ailbums-upload-*")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create spool directory")
		return
	}

	var accepted []album.Photo
	var rejected []rejectedFile

	for _, fileHeader := range files {
		kind := classifyFile(fileHeader.Filename)
		if kind == kindUnsupported {
			rejected = append(rejected, rejectedFile{
				Filename: fileHeader.Filename,
				Reason:   "unsupported file format",
			})
			continue
		}

		path, err := saveUploadedFile(fileHeader, spoolDir)
		if err != nil {
			rejected = append(rejected, rejectedFile{
				Filename: fileHeader.Filename,
				Reason:   err.Error(),
			})
			continue
		}

		photo := album.Photo{
			ID:           uuid.NewString(),
			Filename:     filepath.Base(fileHeader.Filename),
			OriginalPath: path,
			AlbumID:      albumID,
		}

		switch kind {
		case kindRaw:
			photo.Tags.Add(album.TagRaw)
			photo.PreviewURL = constants.RawPlaceholderPreview
		case kindImage:
			photo.PreviewURL = "/api/v1/photos/" + photo.ID + "/file"
			// Local perceptual hash warms duplicate search before analysis.
			if data, err := os.ReadFile(path); err == nil {
				if hashes, err := fingerprint.Compute(data); err == nil {
					photo.PHash = hashes.PHash
				} else {
					log.Printf("fingerprint failed for %s: %v", sanitizeForLog(photo.Filename), err)
				}
			}
		}

		ws.Store.Add(photo)
		accepted = append(accepted, photo)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"accepted": accepted,
		"rejected": rejected,
		"total":    ws.Store.Len(),
	})
}
