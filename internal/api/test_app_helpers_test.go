package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khsgarden/members/internal/db"
	"github.com/khsgarden/members/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, string) {
	t.Helper()

	tempDir := t.TempDir()
	databasePath := filepath.Join(tempDir, "members-test.db")
	uploadDir := filepath.Join(tempDir, "uploads")

	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	handler := NewHandler(database, "test-secret-key", uploadDir, false)

	app := fiber.New()
	RegisterRoutes(app, handler)
	return app, database, uploadDir
}

func createTestMember(t *testing.T, database *gorm.DB, username string, password string, staff bool, superuser bool) models.Member {
	t.Helper()

	member := models.Member{
		Username:       username,
		Email:          username + "@example.com",
		FirstName:      username,
		LastName:       "Tester",
		MembershipType: models.MembershipSingle,
		Status:         models.StatusActive,
		DateJoined:     time.Now(),
		IsActive:       true,
		IsStaff:        staff,
		IsSuperuser:    superuser,
	}
	if password != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		member.PasswordHash = string(passwordHash)
	}
	if err := database.Create(&member).Error; err != nil {
		t.Fatalf("create member %q: %v", username, err)
	}
	return member
}

func loginAndExtractAuthCookie(t *testing.T, app *fiber.App, username string, password string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		t.Fatalf("marshal login payload: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login status 200, got %d", response.StatusCode)
	}
	for _, cookie := range response.Cookies() {
		if cookie.Name == authCookieName && cookie.Value != "" {
			return cookie.Name + "=" + cookie.Value
		}
	}

	t.Fatal("auth cookie is missing in login response")
	return ""
}

func doJSONRequest(t *testing.T, app *fiber.App, method string, path string, cookie string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func decodeJSONBody(t *testing.T, response *http.Response, target any) {
	t.Helper()
	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

// multipartCSVRequest builds the multipart upload the import endpoint
// expects, with optional overwrite/dry_run form fields.
func multipartCSVRequest(t *testing.T, path string, cookie string, filename string, csvText string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("csv_file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(csvText)); err != nil {
		t.Fatalf("write csv payload: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write form field %q: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, path, &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	return request
}

func countMembers(t *testing.T, database *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := database.Model(&models.Member{}).Count(&count).Error; err != nil {
		t.Fatalf("count members: %v", err)
	}
	return count
}
