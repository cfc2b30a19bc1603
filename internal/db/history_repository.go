package db

import (
	"github.com/khsgarden/members/internal/models"
	"gorm.io/gorm"
)

type HistoryRepository struct {
	database *gorm.DB
}

func NewHistoryRepository(database *gorm.DB) *HistoryRepository {
	return &HistoryRepository{database: database}
}

func (repo *HistoryRepository) WithTx(tx *gorm.DB) *HistoryRepository {
	return &HistoryRepository{database: tx}
}

func (repo *HistoryRepository) Create(entry *models.MembershipHistory) error {
	return repo.database.Create(entry).Error
}

func (repo *HistoryRepository) ListForMember(memberID uint) ([]models.MembershipHistory, error) {
	entries := make([]models.MembershipHistory, 0)
	if err := repo.database.
		Where("member_id = ?", memberID).
		Order("change_date DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
