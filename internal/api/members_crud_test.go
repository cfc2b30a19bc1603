package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/khsgarden/members/internal/models"
)

func TestCreateGetUpdateDeleteMember(t *testing.T) {
	app, database, _ := newTestApp(t)
	createTestMember(t, database, "admin", "StrongPass1", false, true)
	cookie := loginAndExtractAuthCookie(t, app, "admin", "StrongPass1")

	createResponse := doJSONRequest(t, app, http.MethodPost, "/api/members", cookie, map[string]any{
		"username":        "ada",
		"email":           "Ada@Example.com",
		"first_name":      "Ada",
		"last_name":       "Lovelace",
		"phone":           "+6591234567",
		"membership_type": "S",
	})
	if createResponse.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from create, got %d", createResponse.StatusCode)
	}
	var created struct {
		ID                  uint   `json:"id"`
		Email               string `json:"email"`
		FullName            string `json:"full_name"`
		MembershipTypeLabel string `json:"membership_type_label"`
		HasUsableCredential bool   `json:"has_usable_credential"`
	}
	decodeJSONBody(t, createResponse, &created)
	if created.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email in view, got %q", created.Email)
	}
	if created.FullName != "Ada Lovelace" {
		t.Fatalf("expected full name, got %q", created.FullName)
	}
	if created.MembershipTypeLabel != "Single" {
		t.Fatalf("expected Single label, got %q", created.MembershipTypeLabel)
	}
	if created.HasUsableCredential {
		t.Fatalf("member created without a password must have no usable credential")
	}

	memberPath := fmt.Sprintf("/api/members/%d", created.ID)
	getResponse := doJSONRequest(t, app, http.MethodGet, memberPath, cookie, nil)
	if getResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from get, got %d", getResponse.StatusCode)
	}
	getResponse.Body.Close()

	// Changing the membership type both updates the record and appends a
	// history entry attributed to the acting admin.
	updateResponse := doJSONRequest(t, app, http.MethodPut, memberPath, cookie, map[string]any{
		"username":        "ada",
		"email":           "ada@example.com",
		"first_name":      "Ada",
		"last_name":       "Lovelace",
		"membership_type": "L",
	})
	if updateResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from update, got %d", updateResponse.StatusCode)
	}
	var updated struct {
		MembershipType string `json:"membership_type"`
	}
	decodeJSONBody(t, updateResponse, &updated)
	if updated.MembershipType != "L" {
		t.Fatalf("expected membership type L after update, got %q", updated.MembershipType)
	}

	historyResponse := doJSONRequest(t, app, http.MethodGet, memberPath+"/history", cookie, nil)
	if historyResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from history, got %d", historyResponse.StatusCode)
	}
	var history struct {
		History []struct {
			PreviousType string `json:"previous_type"`
			NewType      string `json:"new_type"`
			ChangedByID  *uint  `json:"changed_by_id"`
			Reason       string `json:"reason"`
		} `json:"history"`
	}
	decodeJSONBody(t, historyResponse, &history)
	if len(history.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history.History))
	}
	entry := history.History[0]
	if entry.PreviousType != "S" || entry.NewType != "L" {
		t.Fatalf("expected S -> L, got %s -> %s", entry.PreviousType, entry.NewType)
	}
	if entry.ChangedByID == nil {
		t.Fatalf("expected the acting admin on the history entry")
	}
	if entry.Reason != "admin update" {
		t.Fatalf("unexpected history reason %q", entry.Reason)
	}

	deleteResponse := doJSONRequest(t, app, http.MethodDelete, memberPath, cookie, nil)
	deleteResponse.Body.Close()
	if deleteResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from delete, got %d", deleteResponse.StatusCode)
	}

	missingResponse := doJSONRequest(t, app, http.MethodGet, memberPath, cookie, nil)
	missingResponse.Body.Close()
	if missingResponse.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", missingResponse.StatusCode)
	}
}

func TestUpdateMemberRollsBackWhenHistoryWriteFails(t *testing.T) {
	app, database, _ := newTestApp(t)
	createTestMember(t, database, "admin", "StrongPass1", false, true)
	member := createTestMember(t, database, "ada", "StrongPass1", false, false)
	cookie := loginAndExtractAuthCookie(t, app, "admin", "StrongPass1")

	// With the history table gone the appended entry cannot be written;
	// the membership change must roll back with it.
	if err := database.Exec("DROP TABLE membership_histories").Error; err != nil {
		t.Fatalf("drop history table: %v", err)
	}

	updateResponse := doJSONRequest(t, app, http.MethodPut, fmt.Sprintf("/api/members/%d", member.ID), cookie, map[string]any{
		"username":        "ada",
		"email":           "ada@example.com",
		"first_name":      "ada",
		"last_name":       "Tester",
		"membership_type": "L",
	})
	updateResponse.Body.Close()
	if updateResponse.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the history write fails, got %d", updateResponse.StatusCode)
	}

	var reloaded models.Member
	if err := database.First(&reloaded, member.ID).Error; err != nil {
		t.Fatalf("reload member: %v", err)
	}
	if reloaded.MembershipType != member.MembershipType {
		t.Fatalf("expected membership type %q after rollback, got %q", member.MembershipType, reloaded.MembershipType)
	}
}

func TestCreateMemberValidationErrors(t *testing.T) {
	app, database, _ := newTestApp(t)
	createTestMember(t, database, "admin", "StrongPass1", false, true)
	cookie := loginAndExtractAuthCookie(t, app, "admin", "StrongPass1")

	response := doJSONRequest(t, app, http.MethodPost, "/api/members", cookie, map[string]any{
		"username": "bad",
		"email":    "not-an-email",
		"phone":    "123",
	})
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid input, got %d", response.StatusCode)
	}
	var body struct {
		FieldErrors []struct {
			Field string `json:"field"`
		} `json:"field_errors"`
	}
	decodeJSONBody(t, response, &body)

	fields := make(map[string]bool, len(body.FieldErrors))
	for _, fieldError := range body.FieldErrors {
		fields[fieldError.Field] = true
	}
	if !fields["email"] || !fields["phone"] {
		t.Fatalf("expected email and phone field errors, got %v", fields)
	}
}

func TestCreateMemberDuplicateEmail(t *testing.T) {
	app, database, _ := newTestApp(t)
	createTestMember(t, database, "admin", "StrongPass1", false, true)
	createTestMember(t, database, "existing", "", false, false)
	cookie := loginAndExtractAuthCookie(t, app, "admin", "StrongPass1")

	response := doJSONRequest(t, app, http.MethodPost, "/api/members", cookie, map[string]any{
		"username": "someone-else",
		"email":    "existing@example.com",
	})
	response.Body.Close()
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a duplicate email, got %d", response.StatusCode)
	}
}

func TestListMembersSearchAndPaging(t *testing.T) {
	app, database, _ := newTestApp(t)
	createTestMember(t, database, "admin", "StrongPass1", false, true)
	createTestMember(t, database, "alice", "", false, false)
	createTestMember(t, database, "bob", "", false, false)
	cookie := loginAndExtractAuthCookie(t, app, "admin", "StrongPass1")

	response := doJSONRequest(t, app, http.MethodGet, "/api/members?search=alice", cookie, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from list, got %d", response.StatusCode)
	}
	var body struct {
		Members []struct {
			Username string `json:"username"`
		} `json:"members"`
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		TotalPages int   `json:"total_pages"`
	}
	decodeJSONBody(t, response, &body)

	if body.Total != 1 || len(body.Members) != 1 {
		t.Fatalf("expected exactly one search hit, got total=%d len=%d", body.Total, len(body.Members))
	}
	if body.Members[0].Username != "alice" {
		t.Fatalf("expected alice, got %q", body.Members[0].Username)
	}
	if body.Page != 1 || body.TotalPages != 1 {
		t.Fatalf("unexpected paging: page=%d total_pages=%d", body.Page, body.TotalPages)
	}
}

func TestDashboardCounts(t *testing.T) {
	app, database, _ := newTestApp(t)
	createTestMember(t, database, "admin", "StrongPass1", false, true)
	createTestMember(t, database, "gardener", "", false, false)
	cookie := loginAndExtractAuthCookie(t, app, "admin", "StrongPass1")

	response := doJSONRequest(t, app, http.MethodGet, "/api/dashboard", cookie, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from dashboard, got %d", response.StatusCode)
	}
	var stats struct {
		TotalMembers  int64            `json:"total_members"`
		ActiveMembers int64            `json:"active_members"`
		ByType        map[string]int64 `json:"by_type"`
	}
	decodeJSONBody(t, response, &stats)

	if stats.TotalMembers != 2 || stats.ActiveMembers != 2 {
		t.Fatalf("expected 2 total / 2 active, got %d / %d", stats.TotalMembers, stats.ActiveMembers)
	}
	if stats.ByType["Single"] != 2 {
		t.Fatalf("expected 2 Single members, got %v", stats.ByType)
	}
}
