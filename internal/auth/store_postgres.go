// Copyright (c) 2026 Murof. All rights reserved.

// PostgreSQL implementation of the [IdentityRepository] interface.
//
// # err Mapping
//
// Storage-specific errors are mapped at this boundary: pgx.ErrNoRows becomes
// [apperr.NotFound], and unique-index violations become the domain sentinels
// [ErrUsernameExists] / [ErrEmailExists] keyed on the violated constraint.
// Nothing above this layer sees a pgx type.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/murof-net/backend/internal/platform/apperr"
)

// Unique constraint names from the identity table migration. The Create
// err mapping dispatches on these, so renaming one in SQL requires
// renaming it here.
const (
	constraintUsernameKey = "identity_username_key"
	constraintEmailKey    = "identity_email_key"
)

// DB is the slice of pgx used by the repository. Both [pgxpool.Pool] and the
// pgxmock pool satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresIdentityRepository implements the IdentityRepository interface using pgx.
type PostgresIdentityRepository struct {
	db DB
}

// NewIdentityRepository creates a new PostgreSQL implementation of the IdentityRepository.
func NewIdentityRepository(db DB) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{db: db}
}

/*
Create persists a new identity record into the auth.identity table.

Description: Inserts the full credential record. Uniqueness of username and
email is arbitrated here by the table's unique indexes, which makes this the
single point that resolves concurrent registration races.

Parameters:
  - context: context.Context
  - identity: *Identity (Entity to persist)

Returns:
  - error: ErrUsernameExists, ErrEmailExists, or connectivity errors
*/
func (repository *PostgresIdentityRepository) Create(context context.Context, identity *Identity) error {
	const query = `
		INSERT INTO auth.identity (
			id, username, email, passwordhash, isverified, createdat
		) VALUES ($1, $2, $3, $4, $5, $6)`

	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now().UTC()
	}

	_, err := repository.db.Exec(context, query,
		identity.ID,
		identity.Username,
		identity.Email,
		identity.PasswordHash,
		identity.IsVerified,
		identity.CreatedAt,
	)

	if err != nil {
		if sentinel := uniqueViolation(err); sentinel != nil {
			return sentinel
		}
		return fmt.Errorf("postgres_identity_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves an identity record by its primary key.
func (repository *PostgresIdentityRepository) FindByID(context context.Context, id string) (*Identity, error) {
	const query = `
		SELECT id, username, email, passwordhash, isverified, createdat, lastlogin
		FROM auth.identity
		WHERE id = $1`

	return repository.findOne(context, query, id)
}

// FindByUsername retrieves an identity record by its unique username.
func (repository *PostgresIdentityRepository) FindByUsername(context context.Context, username string) (*Identity, error) {
	const query = `
		SELECT id, username, email, passwordhash, isverified, createdat, lastlogin
		FROM auth.identity
		WHERE username = $1`

	return repository.findOne(context, query, username)
}

// FindByEmail retrieves an identity record by its unique email address.
func (repository *PostgresIdentityRepository) FindByEmail(context context.Context, email string) (*Identity, error) {
	const query = `
		SELECT id, username, email, passwordhash, isverified, createdat, lastlogin
		FROM auth.identity
		WHERE email = $1`

	return repository.findOne(context, query, email)
}

/*
MarkVerified transitions the identity to the verified state.

Description: Sets the monotonic isverified flag. The WHERE clause makes the
statement a no-op on already-verified rows, so repeated verification links
never touch the row twice.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Database errors; a missing or already-verified row is not an error
*/
func (repository *PostgresIdentityRepository) MarkVerified(context context.Context, id string) error {
	const query = `
		UPDATE auth.identity
		SET isverified = TRUE
		WHERE id = $1 AND isverified = FALSE`

	if _, err := repository.db.Exec(context, query, id); err != nil {
		return fmt.Errorf("postgres_identity_repo_mark_verified_failed: %w", err)
	}

	return nil
}

// UpdatePassword replaces the stored password hash for the identity.
func (repository *PostgresIdentityRepository) UpdatePassword(context context.Context, id, passwordHash string) error {
	const query = `
		UPDATE auth.identity
		SET passwordhash = $2
		WHERE id = $1`

	tag, err := repository.db.Exec(context, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("postgres_identity_repo_update_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdateLastLogin records the time of a successful login.
func (repository *PostgresIdentityRepository) UpdateLastLogin(context context.Context, id string, at time.Time) error {
	const query = `
		UPDATE auth.identity
		SET lastlogin = $2
		WHERE id = $1`

	if _, err := repository.db.Exec(context, query, id, at); err != nil {
		return fmt.Errorf("postgres_identity_repo_update_last_login_failed: %w", err)
	}

	return nil
}

/*
Delete permanently removes the identity record.

Description: Hard delete. The credential record is the only thing this
subsystem owns about a member, so removal is a single-row DELETE with no
cascade concerns.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound if no row matched, or database errors
*/
func (repository *PostgresIdentityRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM auth.identity WHERE id = $1`

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_identity_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// findOne runs a single-row lookup and hydrates the entity.
func (repository *PostgresIdentityRepository) findOne(context context.Context, query string, arg any) (*Identity, error) {
	identity := &Identity{}
	err := repository.db.QueryRow(context, query, arg).Scan(
		&identity.ID,
		&identity.Username,
		&identity.Email,
		&identity.PasswordHash,
		&identity.IsVerified,
		&identity.CreatedAt,
		&identity.LastLogin,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_identity_repo_find_failed: %w", err)
	}

	return identity, nil
}

// uniqueViolation maps a unique-index violation to its domain sentinel, or
// returns nil when the error is anything else.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case constraintUsernameKey:
		return ErrUsernameExists
	case constraintEmailKey:
		return ErrEmailExists
	}

	return nil
}
