package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the 10MB limit")
	ErrUnsupportedType = errors.New("only PDF, image, Word and Excel files are allowed")
	ErrMissingFileName = errors.New("file name is required")
	ErrEmptyFile       = errors.New("file is empty")
	ErrObjectNotFound  = errors.New("object not found")
)

// MaxFileSize is the largest accepted lab report attachment.
const MaxFileSize = 10 << 20

// allowedTypes maps each accepted extension to the content types a client
// may declare for it.
var allowedTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".jpg":  {"image/jpeg", "image/jpg"},
	".jpeg": {"image/jpeg", "image/jpg"},
	".png":  {"image/png"},
	".doc":  {"application/msword"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	".xls":  {"application/vnd.ms-excel"},
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
}

// Store is the object storage backend for lab report files.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Delete(ctx context.Context, key string) error
	// SignedURL returns a time-limited download URL for key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ValidateFile checks name, declared content type and size before anything
// is read into memory.
func ValidateFile(name, contentType string, size int64) error {
	if strings.TrimSpace(name) == "" {
		return ErrMissingFileName
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	if size == 0 {
		return ErrEmptyFile
	}

	types, ok := allowedTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return ErrUnsupportedType
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, t := range types {
		if ct == t {
			return nil
		}
	}
	return ErrUnsupportedType
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// LabReportKey builds the object key lab-reports/<reportId>/<unix>-<name>.
func LabReportKey(reportID string, name string, now time.Time) string {
	clean := unsafeKeyChars.ReplaceAllString(filepath.Base(name), "_")
	return fmt.Sprintf("lab-reports/%s/%d-%s", reportID, now.Unix(), clean)
}
