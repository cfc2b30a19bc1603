package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/khsgarden/members/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	joinedTimestampLayout = "2006-01-02 15:04:05"
	plainDateLayout       = "2006-01-02"
	membersPerPage        = 20
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMemberNotFound     = errors.New("member not found")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrUsernameTaken      = errors.New("username is already in use")
)

type MemberStore interface {
	FindByID(memberID uint) (models.Member, error)
	FindByUsername(username string) (models.Member, error)
	FindByNormalizedEmail(email string) (models.Member, error)
	ExistsByNormalizedEmail(email string, excludeID uint) (bool, error)
	ExistsByUsername(username string, excludeID uint) (bool, error)
	Create(member *models.Member) error
	Save(member *models.Member) error
	Delete(memberID uint) error
	ListPage(search string, offset int, limit int) ([]models.Member, int64, error)
	CountMembers() (int64, error)
	CountByFlag(column string, value bool) (int64, error)
	CountByMembershipType(code string) (int64, error)
}

type HistoryStore interface {
	Create(entry *models.MembershipHistory) error
	ListForMember(memberID uint) ([]models.MembershipHistory, error)
}

type MemberService struct {
	members   MemberStore
	histories HistoryStore
}

type MemberPage struct {
	Members    []models.Member
	Total      int64
	Page       int
	TotalPages int
}

type DashboardStats struct {
	TotalMembers  int64            `json:"total_members"`
	ActiveMembers int64            `json:"active_members"`
	ByType        map[string]int64 `json:"by_type"`
}

func NewMemberService(members MemberStore, histories HistoryStore) *MemberService {
	return &MemberService{members: members, histories: histories}
}

// CreateMember validates the input, enforces the username/email uniqueness
// rules, hashes the credential, and persists a new member. A blank password
// leaves the account unable to authenticate.
func (service *MemberService) CreateMember(input MemberInput) (models.Member, []FieldError, error) {
	fieldErrors := ValidateMemberInput(input)
	if len(fieldErrors) > 0 {
		return models.Member{}, fieldErrors, nil
	}

	email := NormalizeEmail(input.Email)
	if taken, err := service.members.ExistsByNormalizedEmail(email, 0); err != nil {
		return models.Member{}, nil, err
	} else if taken {
		return models.Member{}, []FieldError{{Field: "email", Message: ErrEmailTaken.Error()}}, nil
	}
	if taken, err := service.members.ExistsByUsername(input.Username, 0); err != nil {
		return models.Member{}, nil, err
	} else if taken {
		return models.Member{}, []FieldError{{Field: "username", Message: ErrUsernameTaken.Error()}}, nil
	}

	member := models.Member{
		Username:   input.Username,
		Email:      email,
		DateJoined: time.Now(),
		IsActive:   true,
	}
	if fieldError := applyMemberInput(&member, input); fieldError != nil {
		return models.Member{}, []FieldError{*fieldError}, nil
	}

	if input.Password != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.Member{}, nil, fmt.Errorf("hash password: %w", err)
		}
		member.PasswordHash = string(passwordHash)
	}

	if err := service.members.Create(&member); err != nil {
		return models.Member{}, nil, err
	}
	return member, nil, nil
}

// UpdateMember applies validated changes to an existing record. When the
// membership type changes, an append-only history row is written with the
// acting member attached.
func (service *MemberService) UpdateMember(memberID uint, input MemberInput, actorID *uint) (models.Member, []FieldError, error) {
	member, err := service.members.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Member{}, nil, ErrMemberNotFound
		}
		return models.Member{}, nil, err
	}

	fieldErrors := ValidateMemberInput(input)
	if len(fieldErrors) > 0 {
		return models.Member{}, fieldErrors, nil
	}

	email := NormalizeEmail(input.Email)
	if taken, err := service.members.ExistsByNormalizedEmail(email, member.ID); err != nil {
		return models.Member{}, nil, err
	} else if taken {
		return models.Member{}, []FieldError{{Field: "email", Message: ErrEmailTaken.Error()}}, nil
	}
	if taken, err := service.members.ExistsByUsername(input.Username, member.ID); err != nil {
		return models.Member{}, nil, err
	} else if taken {
		return models.Member{}, []FieldError{{Field: "username", Message: ErrUsernameTaken.Error()}}, nil
	}

	previousType := member.MembershipType
	member.Username = input.Username
	member.Email = email
	if fieldError := applyMemberInput(&member, input); fieldError != nil {
		return models.Member{}, []FieldError{*fieldError}, nil
	}

	if input.Password != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.Member{}, nil, fmt.Errorf("hash password: %w", err)
		}
		member.PasswordHash = string(passwordHash)
	}

	if err := service.members.Save(&member); err != nil {
		return models.Member{}, nil, err
	}

	if member.MembershipType != previousType {
		entry := models.MembershipHistory{
			MemberID:     member.ID,
			PreviousType: previousType,
			NewType:      member.MembershipType,
			ChangedByID:  actorID,
			ChangeDate:   time.Now(),
			Reason:       "admin update",
		}
		if err := service.histories.Create(&entry); err != nil {
			return models.Member{}, nil, fmt.Errorf("record membership change: %w", err)
		}
	}

	return member, nil, nil
}

func (service *MemberService) GetMember(memberID uint) (models.Member, error) {
	member, err := service.members.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Member{}, ErrMemberNotFound
		}
		return models.Member{}, err
	}
	return member, nil
}

func (service *MemberService) DeleteMember(memberID uint) error {
	if _, err := service.members.FindByID(memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	return service.members.Delete(memberID)
}

func (service *MemberService) ListMembers(search string, page int) (MemberPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * membersPerPage
	members, total, err := service.members.ListPage(search, offset, membersPerPage)
	if err != nil {
		return MemberPage{}, err
	}

	totalPages := int((total + membersPerPage - 1) / membersPerPage)
	if totalPages < 1 {
		totalPages = 1
	}
	return MemberPage{
		Members:    members,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

func (service *MemberService) MemberHistory(memberID uint) ([]models.MembershipHistory, error) {
	if _, err := service.members.FindByID(memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return service.histories.ListForMember(memberID)
}

// Authenticate checks a username/password pair. Accounts without a usable
// credential (for example those created by CSV import) never authenticate.
func (service *MemberService) Authenticate(username string, password string) (models.Member, error) {
	member, err := service.members.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Member{}, ErrInvalidCredentials
		}
		return models.Member{}, err
	}
	if !member.IsActive || !member.HasUsablePassword() {
		return models.Member{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)) != nil {
		return models.Member{}, ErrInvalidCredentials
	}
	return member, nil
}

func (service *MemberService) Dashboard() (DashboardStats, error) {
	total, err := service.members.CountMembers()
	if err != nil {
		return DashboardStats{}, err
	}
	active, err := service.members.CountByFlag("is_active", true)
	if err != nil {
		return DashboardStats{}, err
	}

	byType := make(map[string]int64, len(membershipTypeLabels))
	for code := range membershipTypeLabels {
		count, err := service.members.CountByMembershipType(code)
		if err != nil {
			return DashboardStats{}, err
		}
		byType[MembershipTypeLabel(code)] = count
	}

	return DashboardStats{
		TotalMembers:  total,
		ActiveMembers: active,
		ByType:        byType,
	}, nil
}

// applyMemberInput copies the non-identity fields onto the model. Date fields
// outside their expected layout are rejected as field errors here (the
// single-record form path is strict, unlike the import pipeline).
func applyMemberInput(member *models.Member, input MemberInput) *FieldError {
	member.FirstName = input.FirstName
	member.LastName = input.LastName
	member.AltName = input.AltName
	member.Phone = input.Phone
	member.Address = input.Address
	member.Notes = input.Notes
	member.MemberID = input.MemberID
	member.PaymentMode = input.PaymentMode
	member.ContactPoint = input.ContactPoint

	if input.MembershipType != "" {
		member.MembershipType = input.MembershipType
	} else if member.MembershipType == "" {
		member.MembershipType = models.MembershipSingle
	}
	member.Status = NormalizeStatus(input.Status)

	if input.IsActive != nil {
		member.IsActive = *input.IsActive
	}
	if input.IsStaff != nil {
		member.IsStaff = *input.IsStaff
	}
	if input.IsSuperuser != nil {
		member.IsSuperuser = *input.IsSuperuser
	}

	if input.DateJoined != "" {
		joined, err := time.ParseInLocation(joinedTimestampLayout, input.DateJoined, time.Local)
		if err != nil {
			return &FieldError{Field: "date_joined", Message: "expected format YYYY-MM-DD HH:MM:SS"}
		}
		member.DateJoined = joined
	}
	if input.RenewalDate != "" {
		renewal, err := time.ParseInLocation(plainDateLayout, input.RenewalDate, time.Local)
		if err != nil {
			return &FieldError{Field: "renewal_date", Message: "expected format YYYY-MM-DD"}
		}
		member.RenewalDate = &renewal
	}
	if input.MembershipExpiry != "" {
		expiry, err := time.ParseInLocation(plainDateLayout, input.MembershipExpiry, time.Local)
		if err != nil {
			return &FieldError{Field: "membership_expiry", Message: "expected format YYYY-MM-DD"}
		}
		member.MembershipExpiry = &expiry
	}

	return nil
}
