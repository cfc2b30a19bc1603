package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khsgarden/members/internal/models"
	"gorm.io/gorm"
)

const maxImageBytes = 5 * 1024 * 1024

var (
	ErrImageNotFound    = errors.New("image not found")
	ErrImageTooLarge    = errors.New("image exceeds the 5 MiB upload limit")
	ErrUnsupportedImage = errors.New("unsupported image extension")
)

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

type ImageStore interface {
	Create(image *models.ImageUpload) error
	FindByID(imageID uint) (models.ImageUpload, error)
	Delete(imageID uint) error
	ListNewestFirst() ([]models.ImageUpload, error)
}

type ImageService struct {
	images    ImageStore
	uploadDir string
}

func NewImageService(images ImageStore, uploadDir string) *ImageService {
	return &ImageService{images: images, uploadDir: uploadDir}
}

// ValidateUpload rejects oversized files and unknown extensions before any
// bytes touch the disk.
func (service *ImageService) ValidateUpload(filename string, size int64) error {
	if size > maxImageBytes {
		return ErrImageTooLarge
	}
	extension := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageExtensions[extension]; !ok {
		return ErrUnsupportedImage
	}
	return nil
}

// StoragePathFor returns the absolute destination for an upload. The key is a
// fresh UUID plus the original extension, so concurrent uploads of the same
// filename never collide.
func (service *ImageService) StoragePathFor(filename string) (storageKey string, fullPath string, err error) {
	if err := os.MkdirAll(service.uploadDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload directory: %w", err)
	}
	storageKey = uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	return storageKey, filepath.Join(service.uploadDir, storageKey), nil
}

// Record persists the metadata row for a stored file. An empty title falls
// back to the original filename.
func (service *ImageService) Record(title string, originalFilename string, storageKey string) (models.ImageUpload, error) {
	if strings.TrimSpace(title) == "" {
		title = filepath.Base(originalFilename)
	}
	image := models.ImageUpload{
		Title:      title,
		StorageKey: storageKey,
		UploadedAt: time.Now(),
	}
	if err := service.images.Create(&image); err != nil {
		return models.ImageUpload{}, err
	}
	return image, nil
}

func (service *ImageService) List() ([]models.ImageUpload, error) {
	return service.images.ListNewestFirst()
}

// Delete removes the stored file and then the metadata row. File removal is
// best-effort: a missing file or a failed unlink is logged and never blocks
// deleting the row, so orphaned rows cannot pile up.
func (service *ImageService) Delete(imageID uint) error {
	image, err := service.images.FindByID(imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}

	if image.StorageKey != "" {
		fullPath := filepath.Join(service.uploadDir, image.StorageKey)
		if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("delete image file %s: %v", fullPath, err)
		}
	}

	return service.images.Delete(image.ID)
}
