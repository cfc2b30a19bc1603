package models

import (
	"strings"
	"time"
)

// Membership type codes stored in the database. The human-readable labels
// live in the services package.
const (
	MembershipSingle   = "S"
	MembershipDouble   = "D"
	MembershipLifeTime = "L"
	MembershipGardener = "G"
)

const (
	StatusActive      = "Active"
	StatusNeedToRenew = "Need to Renew"
	StatusExpired     = "Expired"
)

// Member intentionally carries no gorm default tags: a tagged default makes
// Create silently replace a zero value, turning an explicit is_active=false
// into true. Column defaults live in the SQL migration; the services set
// application defaults explicitly.
type Member struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null;size:150"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	FirstName string `gorm:"size:50;not null"`
	LastName  string `gorm:"size:50;not null"`
	AltName   string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:15;not null"`
	Address   string `gorm:"not null"`

	MembershipType   string    `gorm:"size:1;not null"`
	Status           string    `gorm:"size:20;not null"`
	MemberID         string    `gorm:"size:20;index"`
	PaymentMode      string    `gorm:"size:50;not null"`
	OrderNumber      string    `gorm:"size:50;not null"`
	ContactPoint     string    `gorm:"size:100;not null"`
	DateJoined       time.Time `gorm:"not null"`
	RenewalDate      *time.Time
	MembershipExpiry *time.Time

	ProfileImage string `gorm:"not null"`
	Notes        string `gorm:"not null"`

	IsActive    bool `gorm:"not null"`
	IsStaff     bool `gorm:"not null"`
	IsSuperuser bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (member Member) FullName() string {
	return strings.TrimSpace(member.FirstName + " " + member.LastName)
}

// HasUsablePassword reports whether the account can authenticate at all.
// Members created by CSV import carry an empty hash until someone sets
// a password for them.
func (member Member) HasUsablePassword() bool {
	return strings.TrimSpace(member.PasswordHash) != ""
}
