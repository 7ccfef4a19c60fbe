// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/blackmarket/auth"
	"github.com/danielhkuo/blackmarket/cliparse"
	"github.com/danielhkuo/blackmarket/db"
	"github.com/danielhkuo/blackmarket/middleware"
	"github.com/danielhkuo/blackmarket/models"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                8888,
		DatabaseURL:         ":memory:",
		DatabaseType:        "sqlite",
		PasswordUpgradeCost: 1000,
		MaxPasswordLength:   7,
		SourceCodeMarketDir: "testdata",
		SessionTTL:          time.Hour,
	}
}

// CreateTestTeam inserts a team with the given balance
func CreateTestTeam(t *testing.T, db *sql.DB, name string, money int64) models.Team {
	t.Helper()

	team := models.Team{
		ID:    newID(t),
		UUID:  uuid.NewString(),
		Name:  name,
		Money: money,
	}
	_, err := db.Exec(`
		INSERT INTO team (id, uuid, name, money)
		VALUES ($1, $2, $3, $4)
	`, team.ID, team.UUID, team.Name, team.Money)
	if err != nil {
		t.Fatalf("Failed to create test team: %v", err)
	}

	return team
}

// CreateTestUser inserts a user whose password is hashed with algorithm
func CreateTestUser(t *testing.T, db *sql.DB, team models.Team, handle, password, algorithm string) models.User {
	t.Helper()

	hashed, err := auth.HashPassword(algorithm, password)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	user := models.User{
		ID:        newID(t),
		UUID:      uuid.NewString(),
		Handle:    handle,
		TeamID:    team.ID,
		Algorithm: algorithm,
		Password:  hashed,
		Team:      &team,
	}
	_, err = db.Exec(`
		INSERT INTO app_user (id, uuid, handle, team_id, algorithm, password)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.UUID, user.Handle, user.TeamID, user.Algorithm, user.Password)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// GiveTestItem gives a team a Black Market item
func GiveTestItem(t *testing.T, db *sql.DB, team models.Team, item string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO team_item (team_id, item_name) VALUES ($1, $2)
	`, team.ID, item)
	if err != nil {
		t.Fatalf("Failed to give test item: %v", err)
	}
}

// CreateTestBox inserts a box without source code
func CreateTestBox(t *testing.T, db *sql.DB, name string) models.Box {
	t.Helper()

	box := models.Box{ID: newID(t), UUID: uuid.NewString(), Name: name}
	_, err := db.Exec(`
		INSERT INTO box (id, uuid, name) VALUES ($1, $2, $3)
	`, box.ID, box.UUID, box.Name)
	if err != nil {
		t.Fatalf("Failed to create test box: %v", err)
	}

	return box
}

// CreateTestSourceCode puts source code for box on the market
func CreateTestSourceCode(t *testing.T, db *sql.DB, box models.Box, price int64, fileName string) models.SourceCode {
	t.Helper()

	code := models.SourceCode{
		ID:          newID(t),
		UUID:        uuid.NewString(),
		BoxID:       box.ID,
		Price:       price,
		FileName:    fileName,
		Description: "Leaked from " + box.Name,
	}
	_, err := db.Exec(`
		INSERT INTO source_code (id, uuid, box_id, price, file_name, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, code.ID, code.UUID, code.BoxID, code.Price, code.FileName, code.Description)
	if err != nil {
		t.Fatalf("Failed to create test source code: %v", err)
	}

	return code
}

// PurchaseTestSourceCode records that team owns code
func PurchaseTestSourceCode(t *testing.T, db *sql.DB, team models.Team, code models.SourceCode) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO team_source_code (team_id, source_code_id) VALUES ($1, $2)
	`, team.ID, code.ID)
	if err != nil {
		t.Fatalf("Failed to purchase test source code: %v", err)
	}
}

// CreateTestSession logs user in and returns the session token
func CreateTestSession(t *testing.T, db *sql.DB, user models.User, ttl time.Duration) string {
	t.Helper()

	token, err := auth.GenerateSessionToken()
	if err != nil {
		t.Fatalf("Failed to generate session token: %v", err)
	}
	_, err = db.Exec(`
		INSERT INTO session (token, user_id, expires_at) VALUES ($1, $2, $3)
	`, token, user.ID, time.Now().Add(ttl).Unix())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return token
}

// TeamMoney reads a team's current balance
func TeamMoney(t *testing.T, db *sql.DB, team models.Team) int64 {
	t.Helper()

	var money int64
	if err := db.QueryRow(`SELECT money FROM team WHERE id = $1`, team.ID).Scan(&money); err != nil {
		t.Fatalf("Failed to read team money: %v", err)
	}
	return money
}

// CountRows counts the rows of a table
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// PostForm creates a form-encoded POST request
func PostForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// AsUser attaches user to the request as if it passed the session check
func AsUser(req *http.Request, user models.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), &user))
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

func newID(t *testing.T) string {
	t.Helper()
	id, err := auth.GenerateID(16)
	if err != nil {
		t.Fatalf("Failed to generate ID: %v", err)
	}
	return id
}
