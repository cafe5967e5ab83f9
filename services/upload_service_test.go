package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"newsroom-cms/config"
	"newsroom-cms/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}

func newTestUploadService(dir string) *uploadService {
	svc := NewUploadService(config.UploadConfig{
		Dir:         dir,
		MaxSize:     1024,
		PublicPath:  "/images",
		FormField:   "image",
		AllowedExts: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	}, "http://localhost:8080", zerolog.Nop()).(*uploadService)
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return svc
}

func TestSaveImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	svc := newTestUploadService(dir)
	writer := models.Actor{ID: 3, Role: models.RoleWriter}

	url, err := svc.SaveImage(context.Background(), writer, fileHeader(t, "Photo.PNG", []byte("png-bytes")))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^http://localhost:8080/images/1700000000123_[0-9a-f]{12}\.png$`), url)

	name := url[strings.LastIndex(url, "/")+1:]
	stored, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(stored))

	other, err := svc.SaveImage(context.Background(), writer, fileHeader(t, "photo.png", []byte("again")))
	require.NoError(t, err)
	assert.NotEqual(t, url, other)
}

func TestSaveImageRejects(t *testing.T) {
	svc := newTestUploadService(t.TempDir())
	writer := models.Actor{ID: 3, Role: models.RoleWriter}
	ctx := context.Background()

	_, err := svc.SaveImage(ctx, writer, nil)
	assert.True(t, models.IsKind[models.ErrorValidation](err))

	_, err = svc.SaveImage(ctx, writer, fileHeader(t, "script.sh", []byte("#!/bin/sh")))
	assert.True(t, models.IsKind[models.ErrorValidation](err))

	_, err = svc.SaveImage(ctx, writer, fileHeader(t, "huge.jpg", bytes.Repeat([]byte("x"), 2048)))
	assert.True(t, models.IsKind[models.ErrorValidation](err))

	_, err = svc.SaveImage(ctx, models.Actor{ID: 4, Role: models.RoleReader}, fileHeader(t, "a.jpg", []byte("x")))
	assert.True(t, models.IsKind[models.ErrorForbidden](err))
}
