package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/khsgarden/members/internal/models"
	"github.com/khsgarden/members/internal/services"
)

type imageView struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}

func buildImageView(image models.ImageUpload) imageView {
	return imageView{
		ID:         image.ID,
		Title:      image.Title,
		URL:        "/uploads/" + image.StorageKey,
		UploadedAt: image.UploadedAt.Format(viewTimestampLayout),
	}
}

func (handler *Handler) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image_file")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "image_file is required")
	}

	if err := handler.imageService.ValidateUpload(fileHeader.Filename, fileHeader.Size); err != nil {
		switch {
		case errors.Is(err, services.ErrImageTooLarge), errors.Is(err, services.ErrUnsupportedImage):
			return apiError(c, fiber.StatusBadRequest, err.Error())
		default:
			return apiError(c, fiber.StatusInternalServerError, "upload failed")
		}
	}

	storageKey, fullPath, err := handler.imageService.StoragePathFor(fileHeader.Filename)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "upload failed")
	}
	if err := c.SaveFile(fileHeader, fullPath); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to store image")
	}

	image, err := handler.imageService.Record(c.FormValue("title"), fileHeader.Filename, storageKey)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to record image")
	}
	return c.Status(fiber.StatusCreated).JSON(buildImageView(image))
}

func (handler *Handler) ListImages(c *fiber.Ctx) error {
	images, err := handler.imageService.List()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to list images")
	}

	views := make([]imageView, 0, len(images))
	for _, image := range images {
		views = append(views, buildImageView(image))
	}
	return c.JSON(fiber.Map{"images": views})
}

func (handler *Handler) DeleteImage(c *fiber.Ctx) error {
	imageID, err := parseIDParam(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid image id")
	}

	if err := handler.imageService.Delete(imageID); err != nil {
		if errors.Is(err, services.ErrImageNotFound) {
			return apiError(c, fiber.StatusNotFound, "image not found")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to delete image")
	}
	return c.JSON(fiber.Map{"ok": true})
}
