package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/khsgarden/members/internal/models"
	"github.com/khsgarden/members/internal/services"
	"gorm.io/gorm"
)

type memberRequest struct {
	Username         string `json:"username" form:"username"`
	Email            string `json:"email" form:"email"`
	Password         string `json:"password" form:"password"`
	FirstName        string `json:"first_name" form:"first_name"`
	LastName         string `json:"last_name" form:"last_name"`
	AltName          string `json:"alt_name" form:"alt_name"`
	Phone            string `json:"phone" form:"phone"`
	Address          string `json:"address" form:"address"`
	MembershipType   string `json:"membership_type" form:"membership_type"`
	Status           string `json:"status" form:"status"`
	MemberID         string `json:"member_id" form:"member_id"`
	PaymentMode      string `json:"payment_mode" form:"payment_mode"`
	ContactPoint     string `json:"contact_point" form:"contact_point"`
	Notes            string `json:"notes" form:"notes"`
	IsActive         *bool  `json:"is_active" form:"is_active"`
	IsStaff          *bool  `json:"is_staff" form:"is_staff"`
	IsSuperuser      *bool  `json:"is_superuser" form:"is_superuser"`
	DateJoined       string `json:"date_joined" form:"date_joined"`
	RenewalDate      string `json:"renewal_date" form:"renewal_date"`
	MembershipExpiry string `json:"membership_expiry" form:"membership_expiry"`
}

func (request memberRequest) toInput() services.MemberInput {
	return services.MemberInput{
		Username:         request.Username,
		Email:            request.Email,
		Password:         request.Password,
		FirstName:        request.FirstName,
		LastName:         request.LastName,
		AltName:          request.AltName,
		Phone:            request.Phone,
		Address:          request.Address,
		MembershipType:   request.MembershipType,
		Status:           request.Status,
		MemberID:         request.MemberID,
		PaymentMode:      request.PaymentMode,
		ContactPoint:     request.ContactPoint,
		Notes:            request.Notes,
		IsActive:         request.IsActive,
		IsStaff:          request.IsStaff,
		IsSuperuser:      request.IsSuperuser,
		DateJoined:       request.DateJoined,
		RenewalDate:      request.RenewalDate,
		MembershipExpiry: request.MembershipExpiry,
	}
}

func (handler *Handler) ListMembers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	search := c.Query("search")

	memberPage, err := handler.memberService.ListMembers(search, page)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to list members")
	}

	return c.JSON(fiber.Map{
		"members":     buildMemberViews(memberPage.Members),
		"total":       memberPage.Total,
		"page":        memberPage.Page,
		"total_pages": memberPage.TotalPages,
	})
}

func (handler *Handler) GetMember(c *fiber.Ctx) error {
	memberID, err := parseIDParam(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid member id")
	}

	member, err := handler.memberService.GetMember(memberID)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return apiError(c, fiber.StatusNotFound, "member not found")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to load member")
	}
	return c.JSON(buildMemberView(member))
}

func (handler *Handler) CreateMember(c *fiber.Ctx) error {
	var request memberRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	member, fieldErrors, err := handler.memberService.CreateMember(request.toInput())
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create member")
	}
	if len(fieldErrors) > 0 {
		return fieldErrorsResponse(c, fieldErrors)
	}
	return c.Status(fiber.StatusCreated).JSON(buildMemberView(member))
}

func (handler *Handler) UpdateMember(c *fiber.Ctx) error {
	memberID, err := parseIDParam(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid member id")
	}

	var request memberRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor, _ := currentMember(c)
	var actorID *uint
	if actor != nil {
		actorID = &actor.ID
	}

	// The member save and its history row commit or roll back together.
	var member models.Member
	var fieldErrors []services.FieldError
	err = handler.db.Transaction(func(tx *gorm.DB) error {
		service := services.NewMemberService(
			handler.repositories.Members.WithTx(tx),
			handler.repositories.Histories.WithTx(tx),
		)
		var txErr error
		member, fieldErrors, txErr = service.UpdateMember(memberID, request.toInput(), actorID)
		return txErr
	})
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return apiError(c, fiber.StatusNotFound, "member not found")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to update member")
	}
	if len(fieldErrors) > 0 {
		return fieldErrorsResponse(c, fieldErrors)
	}
	return c.JSON(buildMemberView(member))
}

func (handler *Handler) DeleteMember(c *fiber.Ctx) error {
	memberID, err := parseIDParam(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid member id")
	}

	if err := handler.memberService.DeleteMember(memberID); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return apiError(c, fiber.StatusNotFound, "member not found")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to delete member")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) MemberHistory(c *fiber.Ctx) error {
	memberID, err := parseIDParam(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid member id")
	}

	entries, err := handler.memberService.MemberHistory(memberID)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return apiError(c, fiber.StatusNotFound, "member not found")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to load history")
	}
	return c.JSON(fiber.Map{"history": buildHistoryViews(entries)})
}

func (handler *Handler) Dashboard(c *fiber.Ctx) error {
	stats, err := handler.memberService.Dashboard()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	return c.JSON(stats)
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	raw, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(raw), nil
}
