// Package document validates and stores the supporting files attached to a
// leave request.
package document

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	documenterrors "go-lcms/internal/document/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MaxFileSize = 10 << 20

// AllowedTypes are the accepted sniffed content types.
var AllowedTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/jpeg",
	"image/png",
}

// File is an upload as received from the client.
type File struct {
	Name    string
	Content []byte
}

// Stored is an uploaded blob, ready to be recorded on the request.
type Stored struct {
	Name        string
	URL         string
	Key         string
	ContentType string
	UploadedAt  time.Time
}

// Validate checks size and sniffed content type and returns the content type.
func Validate(f File) (string, error) {
	if len(f.Content) == 0 {
		return "", documenterrors.ErrEmptyFile
	}
	if len(f.Content) > MaxFileSize {
		return "", documenterrors.ErrFileTooLarge
	}

	for m := mimetype.Detect(f.Content); m != nil; m = m.Parent() {
		for _, allowed := range AllowedTypes {
			if m.Is(allowed) {
				return allowed, nil
			}
		}
	}
	return "", documenterrors.ErrUnsupportedType
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// SanitizeName keeps the base name of a client file name with only safe characters.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "..", "")
	name = unsafeName.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		return "file"
	}
	return name
}

// BlobKey is leave-requests/{requestID}/{unixMillis}-{token}-{name}. token keeps
// two uploads of the same file name apart.
func BlobKey(requestID string, at time.Time, token, name string) string {
	return fmt.Sprintf("leave-requests/%s/%d-%s-%s", requestID, at.UnixMilli(), token, SanitizeName(name))
}

func newBlobToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Uploader validates every file first, then uploads them in order. A failure
// part way removes whatever was already written so no orphan blob is left.
type Uploader struct {
	store  Storage
	now    func() time.Time
	token  func() string
	logger *zap.Logger
}

func NewUploader(store Storage, logger ...*zap.Logger) *Uploader {
	l := zap.L().Named("document.uploader")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.uploader")
	}
	return &Uploader{store: store, now: time.Now, token: newBlobToken, logger: l}
}

func (u *Uploader) ValidateAll(files []File) error {
	for _, f := range files {
		if _, err := Validate(f); err != nil {
			u.logger.Warn("document rejected", zap.String("name", f.Name), zap.Error(err))
			return err
		}
	}
	return nil
}

func (u *Uploader) UploadAll(ctx context.Context, requestID string, files []File) ([]Stored, error) {
	if err := u.ValidateAll(files); err != nil {
		return nil, err
	}

	stored := make([]Stored, 0, len(files))
	for _, f := range files {
		contentType, _ := Validate(f)
		at := u.now().UTC()
		key := BlobKey(requestID, at, u.token(), f.Name)

		url, err := u.store.Put(ctx, key, f.Content)
		if err != nil {
			u.logger.Error("document upload failed",
				zap.String("leave_id", requestID),
				zap.String("key", key),
				zap.Error(err),
			)
			u.Discard(ctx, stored)
			return nil, documenterrors.ErrUploadFailed
		}
		stored = append(stored, Stored{
			Name:        f.Name,
			URL:         url,
			Key:         key,
			ContentType: contentType,
			UploadedAt:  at,
		})
	}
	return stored, nil
}

// Open reads a stored blob back.
func (u *Uploader) Open(ctx context.Context, key string) ([]byte, error) {
	content, err := u.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, documenterrors.ErrBlobNotFound) {
			u.logger.Error("document read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}
	return content, nil
}

// Discard deletes uploaded blobs; failures are logged and otherwise ignored.
func (u *Uploader) Discard(ctx context.Context, stored []Stored) {
	for _, s := range stored {
		if err := u.store.Delete(context.WithoutCancel(ctx), s.Key); err != nil {
			u.logger.Warn("discard document failed", zap.String("key", s.Key), zap.Error(err))
		}
	}
}
