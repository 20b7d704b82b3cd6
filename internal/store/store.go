// Package store is the SQLite staging layer: it supplies the two
// pre-deduplicated signal pools and receives the matched/unmatched output
// tables. Alias columns hold JSON arrays, written and read leniently — a
// malformed cell reads back as empty rather than failing a run.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agenthands/cobalt/internal/core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracker_users (
	id TEXT PRIMARY KEY,
	display_name TEXT,
	email TEXT,
	alias_display_names TEXT,
	alias_emails TEXT
);

CREATE TABLE IF NOT EXISTS scm_users (
	id TEXT PRIMARY KEY,
	display_name TEXT,
	email TEXT,
	login TEXT,
	alias_display_names TEXT,
	alias_emails TEXT,
	alias_logins TEXT
);

CREATE TABLE IF NOT EXISTS matched_users (
	link_id TEXT PRIMARY KEY,
	tracker_id TEXT,
	scm_id TEXT,
	tracker_display_name TEXT,
	tracker_email TEXT,
	scm_display_name TEXT,
	scm_email TEXT,
	scm_login TEXT,
	alias_tracker_ids TEXT,
	alias_scm_ids TEXT,
	alias_display_names TEXT,
	alias_emails TEXT,
	alias_logins TEXT,
	matching_method TEXT,
	match_confidence REAL
);

CREATE TABLE IF NOT EXISTS unmatched_tracker_users (
	id TEXT PRIMARY KEY,
	display_name TEXT,
	email TEXT,
	alias_display_names TEXT,
	alias_emails TEXT
);

CREATE TABLE IF NOT EXISTS unmatched_scm_users (
	id TEXT PRIMARY KEY,
	display_name TEXT,
	email TEXT,
	login TEXT,
	alias_display_names TEXT,
	alias_emails TEXT,
	alias_logins TEXT
);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open staging db '%s': %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create staging schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadTrackerUsers returns the left pool (issue-tracker identities).
func (s *Store) LoadTrackerUsers(ctx context.Context) ([]model.RawIdentitySignal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, email, alias_display_names, alias_emails
		FROM tracker_users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker users: %w", err)
	}
	defer rows.Close()

	var out []model.RawIdentitySignal
	for rows.Next() {
		var id string
		var name, email, aliasNames, aliasEmails sql.NullString
		if err := rows.Scan(&id, &name, &email, &aliasNames, &aliasEmails); err != nil {
			return nil, fmt.Errorf("failed to scan tracker user: %w", err)
		}
		out = append(out, model.RawIdentitySignal{
			System:            model.SystemLeft,
			PrimaryID:         id,
			DisplayName:       name.String,
			Email:             email.String,
			AliasDisplayNames: listify(aliasNames.String),
			AliasEmails:       listify(aliasEmails.String),
		})
	}
	return out, rows.Err()
}

// LoadSCMUsers returns the right pool (source-control identities).
func (s *Store) LoadSCMUsers(ctx context.Context) ([]model.RawIdentitySignal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, email, login, alias_display_names, alias_emails, alias_logins
		FROM scm_users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load scm users: %w", err)
	}
	defer rows.Close()

	var out []model.RawIdentitySignal
	for rows.Next() {
		var id string
		var name, email, login, aliasNames, aliasEmails, aliasLogins sql.NullString
		if err := rows.Scan(&id, &name, &email, &login, &aliasNames, &aliasEmails, &aliasLogins); err != nil {
			return nil, fmt.Errorf("failed to scan scm user: %w", err)
		}
		out = append(out, model.RawIdentitySignal{
			System:            model.SystemRight,
			PrimaryID:         id,
			DisplayName:       name.String,
			Email:             email.String,
			Login:             login.String,
			AliasDisplayNames: listify(aliasNames.String),
			AliasEmails:       listify(aliasEmails.String),
			AliasLogins:       listify(aliasLogins.String),
		})
	}
	return out, rows.Err()
}

// SaveResolution replaces the previous run's output tables in one
// transaction.
func (s *Store) SaveResolution(ctx context.Context, res model.Resolution) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"matched_users", "unmatched_tracker_users", "unmatched_scm_users"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, link := range res.Links {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO matched_users (
				link_id, tracker_id, scm_id,
				tracker_display_name, tracker_email,
				scm_display_name, scm_email, scm_login,
				alias_tracker_ids, alias_scm_ids,
				alias_display_names, alias_emails, alias_logins,
				matching_method, match_confidence
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			link.LinkID, link.LeftID, link.RightID,
			link.LeftDisplayName, link.LeftEmail,
			link.RightDisplayName, link.RightEmail, link.RightLogin,
			jsonify(link.AliasLeftIDs), jsonify(link.AliasRightIDs),
			jsonify(link.AliasDisplayNames), jsonify(link.AliasEmails), jsonify(link.AliasLogins),
			string(link.Method), link.Confidence,
		)
		if err != nil {
			return fmt.Errorf("failed to insert link %s: %w", link.LinkID, err)
		}
	}

	for _, sig := range res.UnmatchedLeft {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO unmatched_tracker_users (id, display_name, email, alias_display_names, alias_emails)
			VALUES (?, ?, ?, ?, ?)`,
			sig.PrimaryID, sig.DisplayName, sig.Email,
			jsonify(sig.AliasDisplayNames), jsonify(sig.AliasEmails),
		)
		if err != nil {
			return fmt.Errorf("failed to insert unmatched tracker user %s: %w", sig.PrimaryID, err)
		}
	}

	for _, sig := range res.UnmatchedRight {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO unmatched_scm_users (id, display_name, email, login, alias_display_names, alias_emails, alias_logins)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sig.PrimaryID, sig.DisplayName, sig.Email, sig.Login,
			jsonify(sig.AliasDisplayNames), jsonify(sig.AliasEmails), jsonify(sig.AliasLogins),
		)
		if err != nil {
			return fmt.Errorf("failed to insert unmatched scm user %s: %w", sig.PrimaryID, err)
		}
	}

	return tx.Commit()
}

// LoadLinks reads back the matched_users table.
func (s *Store) LoadLinks(ctx context.Context) ([]model.ResolvedLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT link_id, tracker_id, scm_id,
			tracker_display_name, tracker_email,
			scm_display_name, scm_email, scm_login,
			alias_tracker_ids, alias_scm_ids,
			alias_display_names, alias_emails, alias_logins,
			matching_method, match_confidence
		FROM matched_users
		ORDER BY match_confidence DESC, link_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}
	defer rows.Close()

	var out []model.ResolvedLink
	for rows.Next() {
		var link model.ResolvedLink
		var method string
		var aliasL, aliasR, aliasNames, aliasEmails, aliasLogins sql.NullString
		var lName, lEmail, rName, rEmail, rLogin sql.NullString
		if err := rows.Scan(
			&link.LinkID, &link.LeftID, &link.RightID,
			&lName, &lEmail, &rName, &rEmail, &rLogin,
			&aliasL, &aliasR, &aliasNames, &aliasEmails, &aliasLogins,
			&method, &link.Confidence,
		); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		link.LeftDisplayName = lName.String
		link.LeftEmail = lEmail.String
		link.RightDisplayName = rName.String
		link.RightEmail = rEmail.String
		link.RightLogin = rLogin.String
		link.AliasLeftIDs = listify(aliasL.String)
		link.AliasRightIDs = listify(aliasR.String)
		link.AliasDisplayNames = listify(aliasNames.String)
		link.AliasEmails = listify(aliasEmails.String)
		link.AliasLogins = listify(aliasLogins.String)
		link.Method = model.Method(method)
		out = append(out, link)
	}
	return out, rows.Err()
}

// LoadUnmatched reads back both unmatched pools.
func (s *Store) LoadUnmatched(ctx context.Context) ([]model.RawIdentitySignal, []model.RawIdentitySignal, error) {
	left, err := s.loadUnmatchedTracker(ctx)
	if err != nil {
		return nil, nil, err
	}
	right, err := s.loadUnmatchedSCM(ctx)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (s *Store) loadUnmatchedTracker(ctx context.Context) ([]model.RawIdentitySignal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, email, alias_display_names, alias_emails
		FROM unmatched_tracker_users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load unmatched tracker users: %w", err)
	}
	defer rows.Close()

	var out []model.RawIdentitySignal
	for rows.Next() {
		var id string
		var name, email, aliasNames, aliasEmails sql.NullString
		if err := rows.Scan(&id, &name, &email, &aliasNames, &aliasEmails); err != nil {
			return nil, fmt.Errorf("failed to scan unmatched tracker user: %w", err)
		}
		out = append(out, model.RawIdentitySignal{
			System:            model.SystemLeft,
			PrimaryID:         id,
			DisplayName:       name.String,
			Email:             email.String,
			AliasDisplayNames: listify(aliasNames.String),
			AliasEmails:       listify(aliasEmails.String),
		})
	}
	return out, rows.Err()
}

func (s *Store) loadUnmatchedSCM(ctx context.Context) ([]model.RawIdentitySignal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, email, login, alias_display_names, alias_emails, alias_logins
		FROM unmatched_scm_users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load unmatched scm users: %w", err)
	}
	defer rows.Close()

	var out []model.RawIdentitySignal
	for rows.Next() {
		var id string
		var name, email, login, aliasNames, aliasEmails, aliasLogins sql.NullString
		if err := rows.Scan(&id, &name, &email, &login, &aliasNames, &aliasEmails, &aliasLogins); err != nil {
			return nil, fmt.Errorf("failed to scan unmatched scm user: %w", err)
		}
		out = append(out, model.RawIdentitySignal{
			System:            model.SystemRight,
			PrimaryID:         id,
			DisplayName:       name.String,
			Email:             email.String,
			Login:             login.String,
			AliasDisplayNames: listify(aliasNames.String),
			AliasEmails:       listify(aliasEmails.String),
			AliasLogins:       listify(aliasLogins.String),
		})
	}
	return out, rows.Err()
}

// SeedTrackerUsers and SeedSCMUsers load a pool into the staging tables,
// mainly for tests and local fixtures.
func (s *Store) SeedTrackerUsers(ctx context.Context, signals []model.RawIdentitySignal) error {
	for _, sig := range signals {
		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO tracker_users (id, display_name, email, alias_display_names, alias_emails)
			VALUES (?, ?, ?, ?, ?)`,
			sig.PrimaryID, sig.DisplayName, sig.Email,
			jsonify(sig.AliasDisplayNames), jsonify(sig.AliasEmails),
		)
		if err != nil {
			return fmt.Errorf("failed to seed tracker user %s: %w", sig.PrimaryID, err)
		}
	}
	return nil
}

func (s *Store) SeedSCMUsers(ctx context.Context, signals []model.RawIdentitySignal) error {
	for _, sig := range signals {
		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO scm_users (id, display_name, email, login, alias_display_names, alias_emails, alias_logins)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sig.PrimaryID, sig.DisplayName, sig.Email, sig.Login,
			jsonify(sig.AliasDisplayNames), jsonify(sig.AliasEmails), jsonify(sig.AliasLogins),
		)
		if err != nil {
			return fmt.Errorf("failed to seed scm user %s: %w", sig.PrimaryID, err)
		}
	}
	return nil
}

func jsonify(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func listify(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
