package api

import (
	"time"

	"github.com/khsgarden/members/internal/models"
	"github.com/khsgarden/members/internal/services"
)

const (
	viewTimestampLayout = "2006-01-02 15:04:05"
	viewDateLayout      = "2006-01-02"
)

// memberView is the wire shape of a member. The password hash never leaves
// the server.
type memberView struct {
	ID                  uint   `json:"id"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	FullName            string `json:"full_name"`
	AltName             string `json:"alt_name,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Address             string `json:"address,omitempty"`
	MembershipType      string `json:"membership_type"`
	MembershipTypeLabel string `json:"membership_type_label"`
	Status              string `json:"status"`
	MemberID            string `json:"member_id,omitempty"`
	PaymentMode         string `json:"payment_mode,omitempty"`
	ContactPoint        string `json:"contact_point,omitempty"`
	DateJoined          string `json:"date_joined"`
	RenewalDate         string `json:"renewal_date,omitempty"`
	MembershipExpiry    string `json:"membership_expiry,omitempty"`
	Notes               string `json:"notes,omitempty"`
	IsActive            bool   `json:"is_active"`
	IsStaff             bool   `json:"is_staff"`
	IsSuperuser         bool   `json:"is_superuser"`
	HasUsableCredential bool   `json:"has_usable_credential"`
}

func buildMemberView(member models.Member) memberView {
	view := memberView{
		ID:                  member.ID,
		Username:            member.Username,
		Email:               member.Email,
		FirstName:           member.FirstName,
		LastName:            member.LastName,
		FullName:            member.FullName(),
		AltName:             member.AltName,
		Phone:               member.Phone,
		Address:             member.Address,
		MembershipType:      member.MembershipType,
		MembershipTypeLabel: services.MembershipTypeLabel(member.MembershipType),
		Status:              member.Status,
		MemberID:            member.MemberID,
		PaymentMode:         member.PaymentMode,
		ContactPoint:        member.ContactPoint,
		Notes:               member.Notes,
		IsActive:            member.IsActive,
		IsStaff:             member.IsStaff,
		IsSuperuser:         member.IsSuperuser,
		HasUsableCredential: member.HasUsablePassword(),
	}
	if !member.DateJoined.IsZero() {
		view.DateJoined = member.DateJoined.Format(viewTimestampLayout)
	}
	view.RenewalDate = formatOptionalDate(member.RenewalDate)
	view.MembershipExpiry = formatOptionalDate(member.MembershipExpiry)
	return view
}

func buildMemberViews(members []models.Member) []memberView {
	views := make([]memberView, 0, len(members))
	for _, member := range members {
		views = append(views, buildMemberView(member))
	}
	return views
}

func formatOptionalDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(viewDateLayout)
}

type historyView struct {
	ID                uint   `json:"id"`
	PreviousType      string `json:"previous_type"`
	PreviousTypeLabel string `json:"previous_type_label"`
	NewType           string `json:"new_type"`
	NewTypeLabel      string `json:"new_type_label"`
	ChangedByID       *uint  `json:"changed_by_id"`
	ChangeDate        string `json:"change_date"`
	Reason            string `json:"reason,omitempty"`
}

func buildHistoryViews(entries []models.MembershipHistory) []historyView {
	views := make([]historyView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, historyView{
			ID:                entry.ID,
			PreviousType:      entry.PreviousType,
			PreviousTypeLabel: services.MembershipTypeLabel(entry.PreviousType),
			NewType:           entry.NewType,
			NewTypeLabel:      services.MembershipTypeLabel(entry.NewType),
			ChangedByID:       entry.ChangedByID,
			ChangeDate:        entry.ChangeDate.Format(viewTimestampLayout),
			Reason:            entry.Reason,
		})
	}
	return views
}
