package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newsroom-cms/config"
	"newsroom-cms/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type UploadService interface {
	SaveImage(ctx context.Context, actor models.Actor, file *multipart.FileHeader) (string, error)
}

type uploadService struct {
	cfg     config.UploadConfig
	baseURL string
	log     zerolog.Logger
	now     func() time.Time
}

func NewUploadService(cfg config.UploadConfig, baseURL string, log zerolog.Logger) UploadService {
	return &uploadService{
		cfg:     cfg,
		baseURL: baseURL,
		log:     log.With().Str("component", "upload").Logger(),
		now:     time.Now,
	}
}

// SaveImage writes the file into the upload directory under a collision-free
// name and returns its public URL.
func (s *uploadService) SaveImage(ctx context.Context, actor models.Actor, file *multipart.FileHeader) (string, error) {
	if err := requireRole(actor, models.RoleWriter, "upload images"); err != nil {
		return "", err
	}
	if file == nil {
		return "", models.ErrorValidation{Field: s.cfg.FormField, Message: "no image provided"}
	}
	if file.Size > s.cfg.MaxSize {
		return "", models.ErrorValidation{Field: s.cfg.FormField, Message: "image is too large"}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !s.allowed(ext) {
		return "", models.ErrorValidation{Field: s.cfg.FormField, Message: "unsupported image type " + ext}
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", models.ErrorInternalServer{Message: "could not store image", Err: err}
	}

	name := s.fileName(ext)
	if err := writeFile(file, filepath.Join(s.cfg.Dir, name)); err != nil {
		return "", models.ErrorInternalServer{Message: "could not store image", Err: err}
	}

	s.log.Info().Str("file", name).Int64("size", file.Size).Uint("user_id", actor.ID).Msg("Image uploaded")

	return s.baseURL + s.cfg.PublicPath + "/" + name, nil
}

func (s *uploadService) allowed(ext string) bool {
	for _, a := range s.cfg.AllowedExts {
		if a == ext {
			return true
		}
	}
	return false
}

// fileName is <unix millis>_<random suffix><ext>.
func (s *uploadService) fileName(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d_%s%s", s.now().UnixMilli(), suffix, ext)
}

func writeFile(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
