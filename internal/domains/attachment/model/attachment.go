package model

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"pubops-backend/internal/shared/apperror"
)

// DefaultMaxUploadBytes caps a single upload at 25 MiB
const DefaultMaxUploadBytes int64 = 25 << 20

// Attachment is the metadata row of one stored file
type Attachment struct {
	ID          int64     `json:"id"`
	BookID      int64     `json:"book_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ObjectKey   string    `json:"object_key"`
	CreatedBy   *int64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedBy   *int64    `json:"updated_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Upload is a file received from a client, not yet stored
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BookPrefix is the key prefix every object of a book is stored under
func BookPrefix(bookID int64) string {
	return fmt.Sprintf("books/%d/", bookID)
}

// ObjectKey builds books/<book_id>/<token>/<file name>
func ObjectKey(bookID int64, token, fileName string) string {
	return BookPrefix(bookID) + token + "/" + fileName
}

// CleanFileName keeps the base name and drops characters that would break
// an object key or a Content-Disposition header
func CleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}

func NewAttachmentNotFound(id int64) *apperror.Error {
	return apperror.NotFound("ATTACHMENT_NOT_FOUND", "Attachment not found").WithDetail("attachment_id", id)
}

func NewFileTooLarge(size, limit int64) *apperror.Error {
	return apperror.Validation("FILE_TOO_LARGE", "File exceeds the upload limit").
		WithDetail("size_bytes", size).
		WithDetail("max_bytes", limit)
}

func NewMissingFile() *apperror.Error {
	return apperror.Validation("MISSING_FILE", "A non-empty file is required in the 'file' form field")
}
