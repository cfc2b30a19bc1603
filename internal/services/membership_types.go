package services

import (
	"strings"

	"github.com/khsgarden/members/internal/models"
)

// The membership-type vocabulary shared by the import pipeline, the export
// pipeline, and rendering. Both tables are constructed once and never
// mutated.
var membershipTypeLabels = map[string]string{
	models.MembershipSingle:   "Single",
	models.MembershipDouble:   "Double",
	models.MembershipLifeTime: "LifeTime",
	models.MembershipGardener: "Gardener",
}

var membershipTypeCodes = map[string]string{
	"single":   models.MembershipSingle,
	"double":   models.MembershipDouble,
	"lifetime": models.MembershipLifeTime,
	"gardener": models.MembershipGardener,
}

var memberStatuses = map[string]struct{}{
	models.StatusActive:      {},
	models.StatusNeedToRenew: {},
	models.StatusExpired:     {},
}

// MembershipTypeLabel renders a stored code as its human-readable label.
// Unknown codes render as Single, the safe default.
func MembershipTypeLabel(code string) string {
	if label, ok := membershipTypeLabels[strings.TrimSpace(code)]; ok {
		return label
	}
	return membershipTypeLabels[models.MembershipSingle]
}

// MembershipTypeFromLabel maps a human-readable label (or a bare code) to the
// one-letter code. Anything outside the vocabulary maps to Single.
func MembershipTypeFromLabel(label string) string {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if code, ok := membershipTypeCodes[normalized]; ok {
		return code
	}
	if _, ok := membershipTypeLabels[strings.ToUpper(normalized)]; ok {
		return strings.ToUpper(normalized)
	}
	return models.MembershipSingle
}

// IsValidMembershipType reports whether code is one of the four stored codes.
func IsValidMembershipType(code string) bool {
	_, ok := membershipTypeLabels[code]
	return ok
}

// NormalizeStatus returns status if it is one of the known values, otherwise
// the Active default.
func NormalizeStatus(status string) string {
	trimmed := strings.TrimSpace(status)
	if _, ok := memberStatuses[trimmed]; ok {
		return trimmed
	}
	return models.StatusActive
}
