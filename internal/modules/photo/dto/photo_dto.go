package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type UploadPhotoInput struct {
	Caption string `form:"caption" binding:"max=255"`
}

// PhotoFile is an uploaded progress photo.
type PhotoFile struct {
	Reader   io.Reader
	FileName string
}

type PhotoResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}
