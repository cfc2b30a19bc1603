package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/khsgarden/members/internal/services"
	"gorm.io/gorm"
)

const maxImportBytes = 5 * 1024 * 1024

// ImportMembers accepts a multipart CSV upload plus the overwrite and
// dry_run flags, runs the import pipeline, and returns the counts alongside
// the accumulated per-row diagnostics.
func (handler *Handler) ImportMembers(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("csv_file")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "csv_file is required")
	}
	if fileHeader.Size > maxImportBytes {
		return apiError(c, fiber.StatusBadRequest, "file too large (max 5MB)")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		return apiError(c, fiber.StatusBadRequest, "only .csv files are accepted")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "failed to read uploaded file")
	}
	defer file.Close()

	actor, _ := currentMember(c)
	var actorID *uint
	if actor != nil {
		actorID = &actor.ID
	}

	options := services.ImportOptions{
		Overwrite: parseFlagValue(c.FormValue("overwrite")),
		DryRun:    parseFlagValue(c.FormValue("dry_run")),
		ActorID:   actorID,
	}

	// The whole batch commits or rolls back together.
	var report services.ImportReport
	err = handler.db.Transaction(func(tx *gorm.DB) error {
		service := services.NewImportService(
			handler.repositories.Members.WithTx(tx),
			handler.repositories.Histories.WithTx(tx),
		)
		var runErr error
		report, runErr = service.Run(file, options)
		return runErr
	})
	if err != nil {
		var missingColumns *services.MissingColumnsError
		if errors.As(err, &missingColumns) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":           missingColumns.Error(),
				"missing_columns": missingColumns.Columns,
			})
		}
		return apiError(c, fiber.StatusInternalServerError, "import failed")
	}

	return c.JSON(fiber.Map{
		"created":     report.Created,
		"updated":     report.Updated,
		"diagnostics": report.Diagnostics,
		"dry_run":     report.DryRun,
		"summary":     report.Summary(),
	})
}

func parseFlagValue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
