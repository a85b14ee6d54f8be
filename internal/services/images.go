package services

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxImageSize  = 10 << 20
	postImagesDir = "post_images"
)

// ImageStore 帖子配图保存在本地 media 目录
type ImageStore struct {
	root string
}

func NewImageStore(root string) *ImageStore {
	return &ImageStore{root: root}
}

func (s *ImageStore) Root() string {
	return s.root
}

// Save validates an uploaded image and writes it under post_images/ with a
// random name. It returns the path relative to the media root.
func (s *ImageStore) Save(header *multipart.FileHeader) (string, error) {
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", &ValidationError{Fields: map[string]string{"image": "Upload a valid image."}}
	}
	if header.Size > MaxImageSize {
		return "", &ValidationError{Fields: map[string]string{"image": "The image must not exceed 10 MB."}}
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	// 获取文件扩展名
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		// 根据 MIME 类型推断扩展名
		switch contentType {
		case "image/png":
			ext = ".png"
		case "image/gif":
			ext = ".gif"
		case "image/webp":
			ext = ".webp"
		default:
			ext = ".jpg"
		}
	}

	dir := filepath.Join(s.root, postImagesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path.Join(postImagesDir, name), nil
}

// Remove deletes a file written by Save. Empty paths are ignored.
func (s *ImageStore) Remove(rel string) {
	if rel == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		slog.Warn("remove image", "path", rel, "error", err)
	}
}
