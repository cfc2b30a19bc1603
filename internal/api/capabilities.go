package api

import "github.com/khsgarden/members/internal/models"

// Capabilities gate each operation. Superusers hold everything; staff hold
// the member-management set; other authenticated members are read-only.
type Capability string

const (
	CapViewMember    Capability = "members.view"
	CapAddMember     Capability = "members.add"
	CapChangeMember  Capability = "members.change"
	CapDeleteMember  Capability = "members.delete"
	CapImportMembers Capability = "members.import"
	CapExportMembers Capability = "members.export"
	CapViewHistory   Capability = "members.view_history"
	CapViewImages    Capability = "images.view"
	CapAddImages     Capability = "images.add"
	CapDeleteImages  Capability = "images.delete"
)

var readOnlyCapabilities = map[Capability]struct{}{
	CapViewMember: {},
	CapViewImages: {},
}

func hasCapability(member *models.Member, capability Capability) bool {
	if member == nil {
		return false
	}
	if member.IsSuperuser || member.IsStaff {
		return true
	}
	_, ok := readOnlyCapabilities[capability]
	return ok
}
