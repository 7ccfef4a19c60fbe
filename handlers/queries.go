// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/blackmarket/models"
)

// querier is satisfied by *sql.DB and *sql.Tx. Lookups take one so they can
// run inside the transaction of the operation that needs them.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const userColumns = `
	u.id, u.uuid, u.handle, u.team_id, u.algorithm, u.password,
	t.id, t.uuid, t.name, t.money
`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var t models.Team
	err := row.Scan(
		&u.ID, &u.UUID, &u.Handle, &u.TeamID, &u.Algorithm, &u.Password,
		&t.ID, &t.UUID, &t.Name, &t.Money,
	)
	if err != nil {
		return nil, err
	}
	u.Team = &t
	return &u, nil
}

// userWhere returns the single user matching the condition, with its team,
// or nil if there is none.
func userWhere(ctx context.Context, q querier, cond string, arg any) (*models.User, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM app_user u
		JOIN team t ON t.id = u.team_id
		WHERE `+cond, arg)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func userByID(ctx context.Context, q querier, id string) (*models.User, error) {
	return userWhere(ctx, q, "u.id = $1", id)
}

func userByHandle(ctx context.Context, q querier, handle string) (*models.User, error) {
	return userWhere(ctx, q, "u.handle = $1", handle)
}

func userByUUID(ctx context.Context, q querier, uuid string) (*models.User, error) {
	return userWhere(ctx, q, "u.uuid = $1", uuid)
}

// allUsers returns every user with its team, ordered by handle
func allUsers(ctx context.Context, q querier) ([]models.User, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM app_user u
		JOIN team t ON t.id = u.team_id
		ORDER BY u.handle
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func teamByName(ctx context.Context, q querier, name string) (*models.Team, error) {
	var t models.Team
	err := q.QueryRowContext(ctx, `
		SELECT id, uuid, name, money FROM team WHERE name = $1
	`, name).Scan(&t.ID, &t.UUID, &t.Name, &t.Money)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query team: %w", err)
	}
	return &t, nil
}

func teamMoney(ctx context.Context, q querier, teamID string) (int64, error) {
	var money int64
	err := q.QueryRowContext(ctx, `SELECT money FROM team WHERE id = $1`, teamID).Scan(&money)
	if err != nil {
		return 0, fmt.Errorf("failed to query team money: %w", err)
	}
	return money, nil
}

// adjustMoney adds delta (possibly negative) to a team's balance
func adjustMoney(ctx context.Context, q querier, teamID string, delta int64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE team SET money = money + $1 WHERE id = $2
	`, delta, teamID)
	if err != nil {
		return fmt.Errorf("failed to update team money: %w", err)
	}
	return nil
}

// debitMoney takes amount from a team unless the balance would go negative.
// Reports whether the debit happened.
func debitMoney(ctx context.Context, q querier, teamID string, amount int64) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE team SET money = money - $1 WHERE id = $2 AND money >= $1
	`, amount, teamID)
	if err != nil {
		return false, fmt.Errorf("failed to debit team money: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to debit team money: %w", err)
	}
	return n == 1, nil
}

// allTeams returns every team ordered by name
func allTeams(ctx context.Context, q querier) ([]models.Team, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, uuid, name, money FROM team ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.UUID, &t.Name, &t.Money); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// teamMemberHandles returns the handles of a team's members
func teamMemberHandles(ctx context.Context, q querier, teamID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT handle FROM app_user WHERE team_id = $1 ORDER BY handle
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	handles := []string{}
	for rows.Next() {
		var handle string
		if err := rows.Scan(&handle); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		handles = append(handles, handle)
	}
	return handles, rows.Err()
}

const boxColumns = `
	b.id, b.uuid, b.name,
	s.id, s.uuid, s.box_id, s.price, s.file_name, s.description
`

func scanBox(row interface{ Scan(...any) error }) (*models.Box, error) {
	var b models.Box
	var id, uuid, boxID, fileName, description sql.NullString
	var price sql.NullInt64
	err := row.Scan(&b.ID, &b.UUID, &b.Name, &id, &uuid, &boxID, &price, &fileName, &description)
	if err != nil {
		return nil, err
	}
	if id.Valid {
		b.SourceCode = &models.SourceCode{
			ID:          id.String,
			UUID:        uuid.String,
			BoxID:       boxID.String,
			Price:       price.Int64,
			FileName:    fileName.String,
			Description: description.String,
		}
	}
	return &b, nil
}

// boxByUUID returns a box and its source code, if any, or nil
func boxByUUID(ctx context.Context, q querier, uuid string) (*models.Box, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+boxColumns+`
		FROM box b
		LEFT JOIN source_code s ON s.box_id = b.id
		WHERE b.uuid = $1
	`, uuid)

	box, err := scanBox(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query box: %w", err)
	}
	return box, nil
}

// boxesWithSourceCode returns the boxes that have source code for sale
func boxesWithSourceCode(ctx context.Context, q querier) ([]models.Box, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+boxColumns+`
		FROM box b
		JOIN source_code s ON s.box_id = b.id
		ORDER BY b.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query boxes: %w", err)
	}
	defer rows.Close()

	boxes := []models.Box{}
	for rows.Next() {
		box, err := scanBox(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan box: %w", err)
		}
		boxes = append(boxes, *box)
	}
	return boxes, rows.Err()
}

// purchasedSourceCode returns the IDs of the source code a team owns
func purchasedSourceCode(ctx context.Context, q querier, teamID string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT source_code_id FROM team_source_code WHERE team_id = $1
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchased source code: %w", err)
	}
	defer rows.Close()

	owned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan purchased source code: %w", err)
		}
		owned[id] = true
	}
	return owned, rows.Err()
}

func teamOwnsSourceCode(ctx context.Context, q querier, teamID, sourceCodeID string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM team_source_code WHERE team_id = $1 AND source_code_id = $2
	`, teamID, sourceCodeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query purchased source code: %w", err)
	}
	return n > 0, nil
}

// withTx runs fn in a transaction, committing only if fn succeeds
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
