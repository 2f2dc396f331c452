// Copyright (c) 2026 Murof. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murof-net/backend/internal/auth"
	"github.com/murof-net/backend/internal/platform/apperr"
)

var identityColumns = []string{
	"id", "username", "email", "passwordhash", "isverified", "createdat", "lastlogin",
}

func uniqueViolationErr(constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: constraint,
	}
}

func TestPostgresIdentityRepository_Create(t *testing.T) {
	identity := &auth.Identity{
		ID:           "0191e9a0-0000-7000-8000-000000000001",
		Username:     "johndoe",
		Email:        "johndoe@example.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC(),
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "success",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO auth.identity`).
					WithArgs(identity.ID, identity.Username, identity.Email,
						identity.PasswordHash, identity.IsVerified, identity.CreatedAt).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate_username",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO auth.identity`).
					WithArgs(identity.ID, identity.Username, identity.Email,
						identity.PasswordHash, identity.IsVerified, identity.CreatedAt).
					WillReturnError(uniqueViolationErr("identity_username_key"))
			},
			wantErr: auth.ErrUsernameExists,
		},
		{
			name: "duplicate_email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO auth.identity`).
					WithArgs(identity.ID, identity.Username, identity.Email,
						identity.PasswordHash, identity.IsVerified, identity.CreatedAt).
					WillReturnError(uniqueViolationErr("identity_email_key"))
			},
			wantErr: auth.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			repo := auth.NewIdentityRepository(mock)
			err = repo.Create(context.Background(), identity)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresIdentityRepository_FindByEmail(t *testing.T) {
	createdAt := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows(identityColumns).
			AddRow("id-1", "johndoe", "johndoe@example.com", "$2a$10$hash", true, createdAt, nil)
		mock.ExpectQuery(`SELECT (.+) FROM auth.identity`).
			WithArgs("johndoe@example.com").
			WillReturnRows(rows)

		repo := auth.NewIdentityRepository(mock)
		identity, err := repo.FindByEmail(context.Background(), "johndoe@example.com")
		require.NoError(t, err)

		assert.Equal(t, "id-1", identity.ID)
		assert.Equal(t, "johndoe", identity.Username)
		assert.True(t, identity.IsVerified)
		assert.Nil(t, identity.LastLogin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not_found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM auth.identity`).
			WithArgs("ghost@example.com").
			WillReturnError(pgx.ErrNoRows)

		repo := auth.NewIdentityRepository(mock)
		_, err = repo.FindByEmail(context.Background(), "ghost@example.com")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("connectivity_error_is_wrapped", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM auth.identity`).
			WithArgs("johndoe@example.com").
			WillReturnError(errors.New("connection refused"))

		repo := auth.NewIdentityRepository(mock)
		_, err = repo.FindByEmail(context.Background(), "johndoe@example.com")
		require.Error(t, err)
		assert.Nil(t, apperr.As(err))
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestPostgresIdentityRepository_MarkVerified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE auth.identity`).
		WithArgs("id-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := auth.NewIdentityRepository(mock)
	assert.NoError(t, repo.MarkVerified(context.Background(), "id-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresIdentityRepository_UpdatePassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE auth.identity`).
			WithArgs("id-1", "$2a$10$newhash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := auth.NewIdentityRepository(mock)
		assert.NoError(t, repo.UpdatePassword(context.Background(), "id-1", "$2a$10$newhash"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE auth.identity`).
			WithArgs("ghost", "$2a$10$newhash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := auth.NewIdentityRepository(mock)
		err = repo.UpdatePassword(context.Background(), "ghost", "$2a$10$newhash")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})
}

func TestPostgresIdentityRepository_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM auth.identity`).
			WithArgs("id-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := auth.NewIdentityRepository(mock)
		assert.NoError(t, repo.Delete(context.Background(), "id-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM auth.identity`).
			WithArgs("ghost").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := auth.NewIdentityRepository(mock)
		err = repo.Delete(context.Background(), "ghost")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})
}
