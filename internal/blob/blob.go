// Package blob stores uploaded CV files and addresses them by URL.
package blob

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"jobboard/pkg/domain"
)

// Metadata keys recorded alongside each CV object.
const (
	MetaOriginalName = "originalName"
	MetaUserID       = "userId"
	MetaUploadedAt   = "uploadedAt"
)

// Object is a file to upload.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
	Metadata    map[string]string
}

// Store uploads objects and deletes them by the URL Upload returned.
type Store interface {
	Upload(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, url string) error
}

// CVKey returns a collision-resistant key of the form cvs/{userId}/{uuid}.{ext}.
func CVKey(userID domain.UserID, fileName string) string {
	return fmt.Sprintf("cvs/%d/%s.%s", int64(userID), uuid.NewString(), extension(fileName))
}

func extension(fileName string) string {
	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(fileName)), ".")
	ext = strings.ToLower(ext)
	if ext == "" || strings.ContainsAny(ext, "/\\ ") {
		return "bin"
	}
	return ext
}
