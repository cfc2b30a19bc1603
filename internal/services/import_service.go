package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/khsgarden/members/internal/models"
	"gorm.io/gorm"
)

var importRequiredHeaders = []string{"first_name", "last_name", "email"}

// MissingColumnsError aborts an import before any row is processed.
type MissingColumnsError struct {
	Columns []string
}

func (err *MissingColumnsError) Error() string {
	return "CSV missing required columns: " + strings.Join(err.Columns, ", ")
}

type ImportOptions struct {
	// Overwrite permits updating records whose email already exists.
	Overwrite bool
	// DryRun validates and maps every row but persists nothing.
	DryRun bool
	// ActorID is attached to membership-history rows written when an
	// overwrite changes an existing member's type.
	ActorID *uint
}

type ImportReport struct {
	Created     int
	Updated     int
	Diagnostics []string
	DryRun      bool
}

func (report ImportReport) Summary() string {
	summary := fmt.Sprintf("CSV import finished. Imported: %d, Updated: %d.", report.Created, report.Updated)
	if report.DryRun {
		summary += " Dry run: no changes were made to the database."
	}
	return summary
}

type ImportMemberStore interface {
	FindByNormalizedEmail(email string) (models.Member, error)
	ExistsByUsername(username string, excludeID uint) (bool, error)
	Create(member *models.Member) error
	Save(member *models.Member) error
}

type ImportHistoryStore interface {
	Create(entry *models.MembershipHistory) error
}

type ImportService struct {
	members   ImportMemberStore
	histories ImportHistoryStore
}

func NewImportService(members ImportMemberStore, histories ImportHistoryStore) *ImportService {
	return &ImportService{members: members, histories: histories}
}

// Run processes an uploaded CSV. The header row must contain first_name,
// last_name, and email or the whole batch is rejected. After that, one bad
// row never aborts the batch: skips and field errors are accumulated as
// diagnostics and processing continues.
func (service *ImportService) Run(input io.Reader, options ImportOptions) (ImportReport, error) {
	reader := csv.NewReader(input)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ImportReport{}, &MissingColumnsError{Columns: importRequiredHeaders}
		}
		return ImportReport{}, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for index, name := range header {
		// Excel exports prefix the first header cell with a UTF-8 BOM.
		name = strings.TrimPrefix(name, "\ufeff")
		columns[strings.ToLower(strings.TrimSpace(name))] = index
	}

	missing := make([]string, 0)
	for _, required := range importRequiredHeaders {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return ImportReport{}, &MissingColumnsError{Columns: missing}
	}

	report := ImportReport{Diagnostics: make([]string, 0), DryRun: options.DryRun}
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Diagnostics = append(report.Diagnostics,
				fmt.Sprintf("Row %d: unreadable row: %v", rowNum, err))
			continue
		}

		row := importRow{num: rowNum, columns: columns, record: record}
		if err := service.processRow(row, options, &report); err != nil {
			report.Diagnostics = append(report.Diagnostics,
				fmt.Sprintf("Error processing row %d (Email: %s): %v", rowNum, row.valueOr("email", "N/A"), err))
		}
	}

	return report, nil
}

type importRow struct {
	num     int
	columns map[string]int
	record  []string
}

func (row importRow) value(name string) (string, bool) {
	index, ok := row.columns[name]
	if !ok || index >= len(row.record) {
		return "", false
	}
	return strings.TrimSpace(row.record[index]), true
}

func (row importRow) valueOr(name string, fallback string) string {
	if value, ok := row.value(name); ok && value != "" {
		return value
	}
	return fallback
}

// processRow maps one CSV row to a member create or update. Anything that
// panics inside the mapping is caught and surfaced as a row diagnostic so the
// rest of the batch still runs.
func (service *ImportService) processRow(row importRow, options ImportOptions, report *ImportReport) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("unexpected failure: %v", recovered)
		}
	}()

	email := NormalizeEmail(row.valueOr("email", ""))
	if email == "" {
		report.Diagnostics = append(report.Diagnostics,
			fmt.Sprintf("Row %d: Missing email, skipping row.", row.num))
		return nil
	}

	existing, err := service.members.FindByNormalizedEmail(email)
	memberExists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if memberExists && !options.Overwrite {
		report.Diagnostics = append(report.Diagnostics,
			fmt.Sprintf("Row %d (Email: %s): Member already exists, skipping (overwrite not enabled).", row.num, email))
		return nil
	}

	var member models.Member
	isNew := !memberExists
	if memberExists {
		member = existing
		report.Updated++
	} else {
		// Import-created accounts carry an unusable credential until
		// someone sets a password for them.
		member = models.Member{
			PasswordHash: "",
			DateJoined:   time.Now(),
			IsActive:     true,
		}
		report.Created++
	}
	previousType := member.MembershipType

	member.Email = email
	member.FirstName = row.valueOr("first_name", "")
	member.LastName = row.valueOr("last_name", "")
	member.Phone = row.valueOr("phone", "")
	member.Address = row.valueOr("address", "")
	member.Notes = row.valueOr("notes", "")
	member.AltName = row.valueOr("alt_name", member.AltName)
	member.PaymentMode = row.valueOr("payment_mode", member.PaymentMode)
	member.ContactPoint = row.valueOr("contact_point", member.ContactPoint)

	member.MembershipType = MembershipTypeFromLabel(row.valueOr("membership_type", ""))
	if status, ok := row.value("status"); ok && status != "" {
		member.Status = NormalizeStatus(status)
	}

	member.IsActive = parseBoolColumn(row, "is_active", true)
	member.IsStaff = parseBoolColumn(row, "is_staff", false)
	member.IsSuperuser = parseBoolColumn(row, "is_superuser", false)

	if raw, ok := row.value("date_joined"); ok && raw != "" {
		joined, parseErr := time.ParseInLocation(joinedTimestampLayout, raw, time.Local)
		if parseErr != nil {
			report.Diagnostics = append(report.Diagnostics,
				fmt.Sprintf("Row %d (Email: %s): Invalid date_joined format. Expected YYYY-MM-DD HH:MM:SS.", row.num, email))
		} else {
			member.DateJoined = joined
		}
	}

	if raw, ok := row.value("membership_expiry"); ok && raw != "" {
		expiry, parseErr := time.ParseInLocation(plainDateLayout, raw, time.Local)
		if parseErr != nil {
			report.Diagnostics = append(report.Diagnostics,
				fmt.Sprintf("Row %d (Email: %s): Invalid membership_expiry format. Expected YYYY-MM-DD.", row.num, email))
		} else {
			member.MembershipExpiry = &expiry
		}
	}

	if isNew {
		username, usernameErr := service.resolveUsername(row, email)
		if usernameErr != nil {
			return usernameErr
		}
		member.Username = username
	}

	if options.DryRun {
		return nil
	}

	if isNew {
		if err := service.members.Create(&member); err != nil {
			return err
		}
	} else {
		if err := service.members.Save(&member); err != nil {
			return err
		}
	}

	if !isNew && member.MembershipType != previousType {
		entry := models.MembershipHistory{
			MemberID:     member.ID,
			PreviousType: previousType,
			NewType:      member.MembershipType,
			ChangedByID:  options.ActorID,
			ChangeDate:   time.Now(),
			Reason:       "csv import",
		}
		if err := service.histories.Create(&entry); err != nil {
			return fmt.Errorf("record membership change: %w", err)
		}
	}

	return nil
}

// resolveUsername takes the username column when present, otherwise derives
// one from the email local part, then uniquifies it with a numeric suffix.
func (service *ImportService) resolveUsername(row importRow, email string) (string, error) {
	base := row.valueOr("username", "")
	if base == "" {
		base = email
		if at := strings.IndexByte(email, '@'); at > 0 {
			base = email[:at]
		}
	}

	candidate := base
	for suffix := 2; ; suffix++ {
		taken, err := service.members.ExistsByUsername(candidate, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, suffix)
	}
}

func parseBoolColumn(row importRow, name string, fallback bool) bool {
	raw, ok := row.value(name)
	if !ok || raw == "" {
		return fallback
	}
	return strings.EqualFold(raw, "true")
}
