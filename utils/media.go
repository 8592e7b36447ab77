package utils

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Chandrasura25/Social-media-backend-case-study/apperror"
)

// MediaStore persists an uploaded attachment and returns its public URL.
type MediaStore interface {
	Save(ctx context.Context, userID uint, fh *multipart.FileHeader) (string, error)
}

var allowedMedia = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// LocalMediaStore writes uploads under Dir/yyyy/mm/dd and serves them from BaseURL.
type LocalMediaStore struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
	now      func() time.Time
}

func NewLocalMediaStore(dir, baseURL string, maxBytes int64) *LocalMediaStore {
	return &LocalMediaStore{Dir: dir, BaseURL: baseURL, MaxBytes: maxBytes, now: time.Now}
}

func (s *LocalMediaStore) Save(_ context.Context, userID uint, fh *multipart.FileHeader) (string, error) {
	tooLarge := apperror.NewValidation(fmt.Sprintf("File size exceeds %dMB", s.MaxBytes/(1024*1024)), nil)
	if fh.Size > s.MaxBytes {
		return "", tooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return "", apperror.NewValidation("File upload error", err)
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", apperror.NewValidation("File upload error", err)
	}
	ext, ok := allowedMedia[mt.String()]
	if !ok {
		return "", apperror.NewValidation("Only JPEG and PNG images are allowed", nil)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", apperror.NewInternal("rewind upload", err)
	}

	now := s.now()
	rel := path.Join(now.Format("2006"), now.Format("01"), now.Format("02"))
	baseDir := filepath.Join(s.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", apperror.NewInternal("create upload directory", err)
	}

	name := fmt.Sprintf("%d-%s%s", userID, uuid.NewString(), ext)
	dstPath := filepath.Join(baseDir, name)
	out, err := os.Create(dstPath)
	if err != nil {
		return "", apperror.NewInternal("create upload file", err)
	}

	// the header size is client supplied, enforce the limit on the bytes actually read
	lr := &io.LimitedReader{R: file, N: s.MaxBytes + 1}
	written, err := io.Copy(out, lr)
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		_ = os.Remove(dstPath)
		if err == nil {
			err = closeErr
		}
		return "", apperror.NewInternal("write upload file", err)
	}
	if written > s.MaxBytes {
		_ = os.Remove(dstPath)
		return "", tooLarge
	}

	return strings.TrimRight(s.BaseURL, "/") + "/" + rel + "/" + name, nil
}
