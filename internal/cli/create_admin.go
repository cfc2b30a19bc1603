package cli

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/khsgarden/members/internal/db"
	"github.com/khsgarden/members/internal/models"
	"github.com/khsgarden/members/internal/security"
	"golang.org/x/crypto/bcrypt"
)

// RunCreateAdminCommand bootstraps a superuser account. The password is read
// from the terminal without echo; when no terminal is available a random one
// is generated and printed.
func RunCreateAdminCommand(dbPath string, username string, email string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	if normalizedEmail == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(normalizedEmail); err != nil {
		return fmt.Errorf("invalid email address: %w", err)
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	repo := db.NewMemberRepository(database)

	if taken, err := repo.ExistsByUsername(username, 0); err != nil {
		return fmt.Errorf("check username: %w", err)
	} else if taken {
		return fmt.Errorf("username %s is already taken", username)
	}
	if taken, err := repo.ExistsByNormalizedEmail(normalizedEmail, 0); err != nil {
		return fmt.Errorf("check email: %w", err)
	} else if taken {
		return fmt.Errorf("email %s is already taken", normalizedEmail)
	}

	password, generated, err := resolveAdminPassword()
	if err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := models.Member{
		Username:     username,
		Email:        normalizedEmail,
		PasswordHash: string(passwordHash),
		DateJoined:   time.Now(),
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	if err := repo.Create(&admin); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	fmt.Printf("Admin account %s created.\n", username)
	if generated {
		fmt.Printf("Generated password: %s\n", password)
	}
	return nil
}

func resolveAdminPassword() (password string, generated bool, err error) {
	fmt.Print("Password (leave empty to generate): ")
	entered, promptErr := readPasswordNoEcho(os.Stdin)
	fmt.Println()
	if promptErr != nil {
		entered = nil
	}

	if len(entered) == 0 {
		const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
		random, randomErr := security.RandomString(16, alphabet)
		if randomErr != nil {
			return "", false, fmt.Errorf("generate password: %w", randomErr)
		}
		return random, true, nil
	}

	fmt.Print("Confirm password: ")
	confirmed, confirmErr := readPasswordNoEcho(os.Stdin)
	fmt.Println()
	if confirmErr != nil {
		return "", false, fmt.Errorf("read password confirmation: %w", confirmErr)
	}
	if string(entered) != string(confirmed) {
		return "", false, errors.New("passwords do not match")
	}
	return string(entered), false, nil
}
