package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/khsgarden/members/internal/db"
	"github.com/khsgarden/members/internal/services"
	"gorm.io/gorm"
)

const (
	authCookieName = "members_auth"
	contextUserKey = "current_member"

	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour
)

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	cookieSecure bool

	repositories  *db.Repositories
	memberService *services.MemberService
	exportService *services.ExportService
	imageService  *services.ImageService
}

type authClaims struct {
	MemberID    uint `json:"uid"`
	IsStaff     bool `json:"staff"`
	IsSuperuser bool `json:"super"`
	jwt.RegisteredClaims
}

func NewHandler(database *gorm.DB, secretKey string, uploadDir string, cookieSecure bool) *Handler {
	repositories := db.NewRepositories(database)
	return &Handler{
		db:            database,
		secretKey:     []byte(secretKey),
		cookieSecure:  cookieSecure,
		repositories:  repositories,
		memberService: services.NewMemberService(repositories.Members, repositories.Histories),
		exportService: services.NewExportService(repositories.Members),
		imageService:  services.NewImageService(repositories.Images, uploadDir),
	}
}
