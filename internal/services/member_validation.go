package services

import (
	"net/mail"
	"regexp"
	"strings"
)

// phonePattern matches 8-15 digits with an optional leading +.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type MemberInput struct {
	Username         string
	Email            string
	Password         string
	FirstName        string
	LastName         string
	AltName          string
	Phone            string
	Address          string
	MembershipType   string
	Status           string
	MemberID         string
	PaymentMode      string
	ContactPoint     string
	Notes            string
	IsActive         *bool
	IsStaff          *bool
	IsSuperuser      *bool
	DateJoined       string
	RenewalDate      string
	MembershipExpiry string
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func validateUsername(username string) *FieldError {
	if strings.TrimSpace(username) == "" {
		return &FieldError{Field: "username", Message: "username is required"}
	}
	return nil
}

func validateEmail(email string) *FieldError {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return &FieldError{Field: "email", Message: "email is required"}
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return &FieldError{Field: "email", Message: "enter a valid email address"}
	}
	return nil
}

func validatePhone(phone string) *FieldError {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return nil
	}
	if !phonePattern.MatchString(trimmed) {
		return &FieldError{Field: "phone", Message: "phone number must be 8-15 digits, with optional + prefix"}
	}
	return nil
}

func validateMembershipType(code string) *FieldError {
	if code == "" {
		return nil
	}
	if !IsValidMembershipType(code) {
		return &FieldError{Field: "membership_type", Message: "membership type must be one of S, D, L, G"}
	}
	return nil
}

// ValidateMemberInput runs every field validator and returns the collected
// field-level errors. An empty slice means the input is acceptable.
func ValidateMemberInput(input MemberInput) []FieldError {
	fieldErrors := make([]FieldError, 0)
	for _, check := range []*FieldError{
		validateUsername(input.Username),
		validateEmail(input.Email),
		validatePhone(input.Phone),
		validateMembershipType(input.MembershipType),
	} {
		if check != nil {
			fieldErrors = append(fieldErrors, *check)
		}
	}
	return fieldErrors
}
