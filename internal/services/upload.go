package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/miaout11/forum-express-grading/pkg/logger"
)

// sniffLen is how much of an upload http.DetectContentType looks at.
const sniffLen = 512

// imageTypes maps the accepted extensions to the content type their bytes
// must sniff as.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// checkImage rejects uploads that are not png, jpeg, gif or webp images, by
// extension and by content. The returned Upload replays the sniffed bytes.
func checkImage(u *Upload) (*Upload, error) {
	want, ok := imageTypes[strings.ToLower(filepath.Ext(u.Filename))]
	if !ok {
		return nil, newError(ErrValidation, "Only png, jpg, gif and webp images can be uploaded!")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(u.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if got := http.DetectContentType(head); got != want {
		logger.Debug("upload rejected", zap.String("filename", u.Filename), zap.String("content_type", got))
		return nil, newError(ErrValidation, "The uploaded file is not a valid image!")
	}
	return &Upload{Filename: u.Filename, Content: io.MultiReader(bytes.NewReader(head), u.Content)}, nil
}

// discardUpload removes a stored upload whose owning write failed.
func discardUpload(ctx context.Context, files FileStore, path string) {
	if path == "" {
		return
	}
	if err := files.Remove(context.WithoutCancel(ctx), path); err != nil {
		logger.Warn("failed to remove orphaned upload", zap.String("path", path), zap.Error(err))
	}
}
