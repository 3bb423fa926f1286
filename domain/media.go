package domain

import (
	"context"
	"mime/multipart"
)

const (
	// MediaKindVideo expresses that an Upload holds a video file.
	MediaKindVideo = "video"
	// MediaKindImage expresses that an Upload holds an image file.
	MediaKindImage = "image"

	// MaxImageSize limits thumbnail and avatar uploads.
	MaxImageSize int64 = 5 << 20 // 5 Megabyte
	// MaxVideoSize limits video file uploads.
	MaxVideoSize int64 = 200 << 20 // 200 Megabyte
)

// Upload is a media file on its way to the hosting service. Kind decides
// which validations run and whether a duration gets probed. Extension,
// ContentType and Size are filled in during validation.
type Upload struct {
	File     multipart.File
	Filename string
	Kind     string

	Extension   string
	ContentType string
	Size        int64
}

// UploadResult is what the hosting service reports back for a stored file.
// Duration is zero for images.
type UploadResult struct {
	SecureURL string  `json:"secure_url"`
	Duration  float64 `json:"duration"`
}

// MediaService stores media files with the external hosting service.
type MediaService interface {
	Upload(ctx context.Context, upload *Upload) (*UploadResult, error)
}
