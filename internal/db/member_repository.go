package db

import (
	"strings"

	"github.com/khsgarden/members/internal/models"
	"gorm.io/gorm"
)

type MemberRepository struct {
	database *gorm.DB
}

func NewMemberRepository(database *gorm.DB) *MemberRepository {
	return &MemberRepository{database: database}
}

// WithTx returns a repository bound to the given transaction handle. The
// import pipeline uses this to run whole batches inside one transaction.
func (repo *MemberRepository) WithTx(tx *gorm.DB) *MemberRepository {
	return &MemberRepository{database: tx}
}

func (repo *MemberRepository) CountMembers() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Member{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *MemberRepository) CountByFlag(column string, value bool) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Member{}).
		Where(column+" = ?", value).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *MemberRepository) CountByMembershipType(code string) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Member{}).
		Where("membership_type = ?", code).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *MemberRepository) FindByID(memberID uint) (models.Member, error) {
	var member models.Member
	if err := repo.database.First(&member, memberID).Error; err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (repo *MemberRepository) FindByNormalizedEmail(email string) (models.Member, error) {
	var member models.Member
	if err := repo.database.Where("lower(trim(email)) = ?", email).First(&member).Error; err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (repo *MemberRepository) FindByUsername(username string) (models.Member, error) {
	var member models.Member
	if err := repo.database.Where("username = ?", username).First(&member).Error; err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (repo *MemberRepository) ExistsByNormalizedEmail(email string, excludeID uint) (bool, error) {
	var matched int64
	query := repo.database.Model(&models.Member{}).Where("lower(trim(email)) = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *MemberRepository) ExistsByUsername(username string, excludeID uint) (bool, error) {
	var matched int64
	query := repo.database.Model(&models.Member{}).Where("username = ?", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *MemberRepository) Create(member *models.Member) error {
	return repo.database.Create(member).Error
}

func (repo *MemberRepository) Save(member *models.Member) error {
	return repo.database.Save(member).Error
}

func (repo *MemberRepository) Delete(memberID uint) error {
	return repo.database.Delete(&models.Member{}, memberID).Error
}

// ListPage returns one page of members ordered by most recent join first,
// optionally filtered by a case-insensitive substring search across name,
// email, phone, and type code.
func (repo *MemberRepository) ListPage(search string, offset int, limit int) ([]models.Member, int64, error) {
	query := repo.database.Model(&models.Member{})
	search = strings.TrimSpace(search)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ? OR phone LIKE ? OR lower(membership_type) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	members := make([]models.Member, 0)
	if err := query.Order("date_joined DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// ListForExport materializes the full member set ordered by (last name,
// first name) ascending, the fixed export ordering.
func (repo *MemberRepository) ListForExport() ([]models.Member, error) {
	members := make([]models.Member, 0)
	if err := repo.database.
		Order("last_name ASC, first_name ASC, id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
