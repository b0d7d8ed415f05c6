package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"biolink/internal/config"
	"biolink/internal/middleware"
	"biolink/internal/models"
	"biolink/internal/observability"

	"github.com/google/uuid"
)

const (
	DefaultAvatarUploadDir       = "static/uploads"
	DefaultAvatarMaxUploadSizeMB = 5
	// AvatarPublicPrefix is the stored path prefix, relative to the static root.
	AvatarPublicPrefix = "uploads"
)

var allowedAvatarExtensions = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}

// AvatarUpload is a submitted avatar file.
type AvatarUpload struct {
	Filename string
	Content  []byte
}

type AvatarService struct {
	uploadDir          string
	maxUploadSizeBytes int64
	verifyContent      bool
	newToken           func() string
}

func NewAvatarService(cfg *config.Config) *AvatarService {
	uploadDir := DefaultAvatarUploadDir
	maxUploadSizeMB := DefaultAvatarMaxUploadSizeMB
	verify := false

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.AvatarMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.AvatarMaxUploadSizeMB
		}
		verify = cfg.AvatarVerifyContent
	}

	return &AvatarService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		verifyContent:      verify,
		newToken: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
}

// UploadDir is where accepted files are written.
func (s *AvatarService) UploadDir() string {
	return s.uploadDir
}

// Accept stores an allowed upload and returns its public path. It returns ok=false
// without an error when nothing was submitted or the file was rejected, so the
// caller keeps the previous avatar. Only IO failures are errors.
func (s *AvatarService) Accept(ctx context.Context, userID uint, upload *AvatarUpload) (string, bool, error) {
	if upload == nil || strings.TrimSpace(upload.Filename) == "" {
		return "", false, nil
	}

	ext := avatarExtension(upload.Filename)
	expectedType, allowed := allowedAvatarExtensions[ext]
	if !allowed {
		s.reject(ctx, userID, upload.Filename, "rejected_extension")
		return "", false, nil
	}
	if int64(len(upload.Content)) > s.maxUploadSizeBytes {
		s.reject(ctx, userID, upload.Filename, "rejected_size")
		return "", false, nil
	}
	if s.verifyContent && http.DetectContentType(upload.Content) != expectedType {
		s.reject(ctx, userID, upload.Filename, "rejected_content")
		return "", false, nil
	}

	name := fmt.Sprintf("user%d_%s.%s", userID, s.newToken(), ext)
	if err := writeBytesToFile(filepath.Join(s.uploadDir, name), upload.Content); err != nil {
		observability.AvatarUploads.WithLabelValues("failed").Inc()
		return "", false, models.NewStoreError("store avatar", err)
	}

	observability.AvatarUploads.WithLabelValues("accepted").Inc()
	stored := path.Join(AvatarPublicPrefix, name)
	middleware.Logger.InfoContext(ctx, "Saved new avatar", slog.String("avatar", stored))
	return stored, true, nil
}

// Discard removes a file previously returned by Accept. Paths outside the
// upload prefix are ignored.
func (s *AvatarService) Discard(stored string) {
	name, ok := strings.CutPrefix(stored, AvatarPublicPrefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return
	}
	_ = os.Remove(filepath.Join(s.uploadDir, name))
}

func (s *AvatarService) reject(ctx context.Context, userID uint, filename, reason string) {
	observability.AvatarUploads.WithLabelValues(reason).Inc()
	middleware.Logger.WarnContext(ctx, "Avatar upload rejected",
		slog.Uint64("user_id", uint64(userID)),
		slog.String("filename", filepath.Base(filename)),
		slog.String("reason", reason),
	)
}

// avatarExtension returns the lower-cased text after the last dot, or "".
func avatarExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
