package api

import (
	"bytes"
	"encoding/csv"

	"github.com/gofiber/fiber/v2"
	"github.com/khsgarden/members/internal/services"
)

const exportFilename = "members_export.csv"

// ExportMembers streams the full member set as a CSV attachment with the
// fixed 13-column layout.
func (handler *Handler) ExportMembers(c *fiber.Ctx) error {
	rows, err := handler.exportService.BuildRows()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to fetch members")
	}

	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(services.ExportCSVHeaders); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}
	for _, row := range rows {
		if err := writer.Write(row.Columns()); err != nil {
			return apiError(c, fiber.StatusInternalServerError, "failed to build export")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+exportFilename+`"`)
	return c.Send(output.Bytes())
}
