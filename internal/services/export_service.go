package services

import (
	"strconv"

	"github.com/khsgarden/members/internal/models"
)

// ExportCSVHeaders is the fixed 13-column layout of the member export.
var ExportCSVHeaders = []string{
	"ID",
	"First Name",
	"Last Name",
	"Email",
	"Phone",
	"Address",
	"Membership Type",
	"Date Joined",
	"Membership Expiry",
	"Notes",
	"Is Active",
	"Is Staff",
	"Is Superuser",
}

type ExportMemberReader interface {
	ListForExport() ([]models.Member, error)
}

type ExportService struct {
	members ExportMemberReader
}

func NewExportService(members ExportMemberReader) *ExportService {
	return &ExportService{members: members}
}

type ExportRow struct {
	ID               uint
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Address          string
	MembershipType   string
	DateJoined       string
	MembershipExpiry string
	Notes            string
	IsActive         bool
	IsStaff          bool
	IsSuperuser      bool
}

// BuildRows materializes the full member set ordered by (last name, first
// name) with human-readable field formatting.
func (service *ExportService) BuildRows() ([]ExportRow, error) {
	members, err := service.members.ListForExport()
	if err != nil {
		return nil, err
	}

	rows := make([]ExportRow, 0, len(members))
	for _, member := range members {
		row := ExportRow{
			ID:             member.ID,
			FirstName:      member.FirstName,
			LastName:       member.LastName,
			Email:          member.Email,
			Phone:          member.Phone,
			Address:        member.Address,
			MembershipType: MembershipTypeLabel(member.MembershipType),
			Notes:          member.Notes,
			IsActive:       member.IsActive,
			IsStaff:        member.IsStaff,
			IsSuperuser:    member.IsSuperuser,
		}
		if !member.DateJoined.IsZero() {
			row.DateJoined = member.DateJoined.Format(joinedTimestampLayout)
		}
		if member.MembershipExpiry != nil {
			row.MembershipExpiry = member.MembershipExpiry.Format(plainDateLayout)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (row ExportRow) Columns() []string {
	return []string{
		strconv.FormatUint(uint64(row.ID), 10),
		row.FirstName,
		row.LastName,
		row.Email,
		row.Phone,
		row.Address,
		row.MembershipType,
		row.DateJoined,
		row.MembershipExpiry,
		row.Notes,
		csvYesNo(row.IsActive),
		csvYesNo(row.IsStaff),
		csvYesNo(row.IsSuperuser),
	}
}

func csvYesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}
