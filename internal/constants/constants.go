// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// ImageExtensions are the standard image formats accepted for direct display.
var ImageExtensions = []string{"jpg", "jpeg", "png", "tiff", "bmp", "webp"}

// RawExtensions are camera RAW formats: accepted, tagged "raw", and shown with
// a placeholder preview until the backend converts them.
var RawExtensions = []string{"cr2", "cr3", "nef", "arw", "dng", "orf", "raf", "pef", "rw2", "srw", "x3f"}

// Session constants
const (
	// SessionCookieName is the cookie carrying the signed workspace session id.
	SessionCookieName = "ailbums_session"
)

// Upload constants
const (
	// MaxUploadSize is the default maximum multipart form size in bytes (512MB).
	MaxUploadSize = 512 << 20

	// RawPlaceholderPreview is the preview reference served for RAW files
	// until the backend has produced a converted preview.
	RawPlaceholderPreview = "/static/raw-placeholder.svg"
)
