// Package validation checks uploaded listing photos and avatars before their
// bytes are read.
package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrFileRequired = errors.New("no file provided")
	ErrFileSize     = errors.New("file too large")
	ErrFileType     = errors.New("unsupported file type")
)

// ImageRules limits one kind of upload.
type ImageRules struct {
	MaxBytes   int64
	Extensions []string
}

var (
	// PropertyPhoto applies to listing gallery images.
	PropertyPhoto = ImageRules{
		MaxBytes:   10 << 20,
		Extensions: []string{".jpg", ".jpeg", ".png", ".webp"},
	}
	Avatar = ImageRules{
		MaxBytes:   2 << 20,
		Extensions: []string{".jpg", ".jpeg", ".png", ".webp"},
	}
)

// Check validates the multipart header of an upload against r.
func (r ImageRules) Check(file *multipart.FileHeader) error {
	if file == nil {
		return ErrFileRequired
	}
	return r.CheckMeta(file.Filename, file.Size)
}

// CheckMeta validates a file name and size. Errors wrap the package sentinels
// and carry a message fit for the client.
func (r ImageRules) CheckMeta(filename string, size int64) error {
	if size <= 0 {
		return ErrFileRequired
	}
	if size > r.MaxBytes {
		return fmt.Errorf("%w: limit is %dMB", ErrFileSize, r.MaxBytes>>20)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(r.Extensions, ext) {
		return fmt.Errorf("%w %q, allowed: %s", ErrFileType, ext, strings.Join(r.Extensions, ", "))
	}
	return nil
}
