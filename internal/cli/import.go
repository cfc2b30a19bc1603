package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/khsgarden/members/internal/db"
	"github.com/khsgarden/members/internal/models"
	"github.com/khsgarden/members/internal/services"
)

// Spreadsheet exports arrive with dates in several layouts; these are tried
// in priority order and an unrecognized date fails the row.
var importDateLayouts = []string{
	"01/02/2006",
	"02/01/2006",
	"2006-01-02",
	"01-02-2006",
}

// RunImportCommand is the strict command-line variant of the CSV import: one
// line per row to stdout on success or stderr on failure, no counts, and a
// failing row never aborts the run.
func RunImportCommand(dbPath string, csvPath string) error {
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	repo := db.NewMemberRepository(database)

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for index, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = index
	}

	for rowNum := 1; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error in row %d: %v\n", rowNum, err)
			continue
		}

		member, err := buildImportedMember(columns, record)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error in row %d: %v\nRow data: %v\n", rowNum, err, record)
			continue
		}
		if err := repo.Create(&member); err != nil {
			fmt.Fprintf(os.Stderr, "Error in row %d: %v\nRow data: %v\n", rowNum, err, record)
			continue
		}
		fmt.Printf("Successfully imported row %d: %s\n", rowNum, member.Username)
	}

	return nil
}

func buildImportedMember(columns map[string]int, record []string) (models.Member, error) {
	value := func(names ...string) string {
		for _, name := range names {
			if index, ok := columns[name]; ok && index < len(record) {
				return strings.TrimSpace(record[index])
			}
		}
		return ""
	}

	member := models.Member{
		Username:       value("username"),
		FirstName:      value("first_name"),
		LastName:       value("last_name"),
		Email:          services.NormalizeEmail(value("email")),
		Phone:          CleanPhone(value("phone")),
		AltName:        value("alt_name"),
		MembershipType: mapImportMembership(value("membership_type")),
		PaymentMode:    value("payment_mode"),
		Status:         services.NormalizeStatus(value("status")),
		ContactPoint:   value("contact_point", "contact point"),
		MemberID:       value("id"),
		IsActive:       true,
	}
	if member.Username == "" {
		return models.Member{}, errors.New("missing username")
	}
	if member.Email == "" {
		return models.Member{}, errors.New("missing email")
	}

	joined, err := ParseFlexibleDate(value("date_joined"))
	if err != nil {
		return models.Member{}, err
	}
	if joined != nil {
		member.DateJoined = *joined
	} else {
		member.DateJoined = time.Now()
	}

	renewal, err := ParseFlexibleDate(value("renewal_date"))
	if err != nil {
		return models.Member{}, err
	}
	member.RenewalDate = renewal

	return member, nil
}

// CleanPhone strips separators and repairs scientific-notation artifacts left
// behind by spreadsheet exports (for example "6.591234e+07").
func CleanPhone(raw string) string {
	phone := strings.TrimSpace(raw)
	if phone == "" || strings.EqualFold(phone, "nan") {
		return ""
	}

	if strings.Contains(strings.ToUpper(phone), "E+") {
		if parsed, err := strconv.ParseFloat(phone, 64); err == nil {
			return strconv.FormatInt(int64(parsed), 10)
		}
		if dot := strings.IndexByte(phone, '.'); dot > 0 {
			return phone[:dot]
		}
		return phone
	}

	replacer := strings.NewReplacer(" ", "", "-", "", "+", "")
	return replacer.Replace(phone)
}

// ParseFlexibleDate tries each known layout in priority order. An empty input
// is not an error; an unrecognized format is.
func ParseFlexibleDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	for _, layout := range importDateLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date format: %s", trimmed)
}

// mapImportMembership handles the long-form labels this feed uses
// ("Single Membership" and friends) on top of the shared vocabulary.
func mapImportMembership(label string) string {
	trimmed := strings.TrimSpace(label)
	trimmed = strings.TrimSuffix(trimmed, " Membership")
	return services.MembershipTypeFromLabel(trimmed)
}
