package db

import (
	"github.com/khsgarden/members/internal/models"
	"gorm.io/gorm"
)

type ImageRepository struct {
	database *gorm.DB
}

func NewImageRepository(database *gorm.DB) *ImageRepository {
	return &ImageRepository{database: database}
}

func (repo *ImageRepository) Create(image *models.ImageUpload) error {
	return repo.database.Create(image).Error
}

func (repo *ImageRepository) FindByID(imageID uint) (models.ImageUpload, error) {
	var image models.ImageUpload
	if err := repo.database.First(&image, imageID).Error; err != nil {
		return models.ImageUpload{}, err
	}
	return image, nil
}

func (repo *ImageRepository) Delete(imageID uint) error {
	return repo.database.Delete(&models.ImageUpload{}, imageID).Error
}

func (repo *ImageRepository) ListNewestFirst() ([]models.ImageUpload, error) {
	images := make([]models.ImageUpload, 0)
	if err := repo.database.
		Order("uploaded_at DESC, id DESC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}
