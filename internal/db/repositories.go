package db

import "gorm.io/gorm"

type Repositories struct {
	Members   *MemberRepository
	Histories *HistoryRepository
	Images    *ImageRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Members:   NewMemberRepository(database),
		Histories: NewHistoryRepository(database),
		Images:    NewImageRepository(database),
	}
}
