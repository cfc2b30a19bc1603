package models

import "time"

// MembershipHistory records a single membership-type transition. Rows are
// written once and never updated; ChangedByID survives deletion of the acting
// member via ON DELETE SET NULL.
type MembershipHistory struct {
	ID           uint      `gorm:"primaryKey"`
	MemberID     uint      `gorm:"not null;index"`
	PreviousType string    `gorm:"size:1;not null"`
	NewType      string    `gorm:"size:1;not null"`
	ChangedByID  *uint     `gorm:"index"`
	ChangeDate   time.Time `gorm:"not null"`
	Reason       string    `gorm:"not null"`
}
