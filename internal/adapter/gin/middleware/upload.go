package middleware

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "auth-service/pkg/errors"
	"auth-service/pkg/logger"
)

// MsgInvalidMultipart is returned for multipart bodies that cannot be parsed.
const MsgInvalidMultipart = "Invalid multipart body"

// UploadedFile describes a file received in a multipart request and spooled
// to a temporary file.
type UploadedFile struct {
	Field        string `json:"field"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
	TempFilePath string `json:"tempFilePath"`
}

// UploadConfig bounds multipart parsing.
type UploadConfig struct {
	MaxBytes       int64
	MaxMemoryBytes int64
	TempDir        string
}

// Upload parses multipart/form-data requests. Form fields are stored under
// BodyKey, files are written to TempDir and listed under FilesKey. The
// temporary files are removed once the request has been handled.
func Upload(cfg UploadConfig, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if mediaType(c.Request) != "multipart/form-data" {
			c.Next()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxBytes)
		if err := c.Request.ParseMultipartForm(cfg.MaxMemoryBytes); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				AbortWithError(c, apperrors.PayloadTooLarge(MsgPayloadTooLarge))
				return
			}
			AbortWithError(c, apperrors.BadRequest(MsgInvalidMultipart))
			return
		}

		form := c.Request.MultipartForm
		l := logger.WithContext(c.Request.Context(), log)

		files, err := spoolFiles(form, cfg.TempDir)
		defer func() {
			removeFiles(files, l)
			if err := form.RemoveAll(); err != nil {
				l.Warn("failed to remove multipart spool files", zap.Error(err))
			}
		}()
		if err != nil {
			l.Error("failed to store uploaded file", zap.Error(err))
			AbortWithError(c, apperrors.Internal("failed to store uploaded file", err))
			return
		}

		c.Set(BodyKey, nestForm(form.Value))
		c.Set(FilesKey, files)
		c.Next()
	}
}

// Files returns the files received with the current request.
func Files(c *gin.Context) []UploadedFile {
	if v, ok := c.Get(FilesKey); ok {
		if files, ok := v.([]UploadedFile); ok {
			return files
		}
	}
	return []UploadedFile{}
}

// spoolFiles copies every uploaded file into dir. On error it returns the
// files written so far so the caller can remove them.
func spoolFiles(form *multipart.Form, dir string) ([]UploadedFile, error) {
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	files := []UploadedFile{}
	for _, field := range fields {
		for _, fh := range form.File[field] {
			path, size, err := spoolFile(fh, dir)
			if err != nil {
				return files, err
			}

			mimeType := fh.Header.Get("Content-Type")
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}

			files = append(files, UploadedFile{
				Field:        field,
				Name:         fh.Filename,
				Size:         size,
				MimeType:     mimeType,
				TempFilePath: path,
			})
		}
	}
	return files, nil
}

func spoolFile(fh *multipart.FileHeader, dir string) (string, int64, error) {
	src, err := fh.Open()
	if err != nil {
		return "", 0, fmt.Errorf("open %q: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}

	size, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", 0, fmt.Errorf("write %q: %w", fh.Filename, err)
	}
	return dst.Name(), size, nil
}

func removeFiles(files []UploadedFile, log *zap.Logger) {
	for _, f := range files {
		if err := os.Remove(f.TempFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to remove temp file", zap.String("path", f.TempFilePath), zap.Error(err))
		}
	}
}
