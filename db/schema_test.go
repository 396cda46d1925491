// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain path", "vote.db", "file:vote.db?" + sqlitePragmas},
		{"file url", "file:vote.db", "file:vote.db?" + sqlitePragmas},
		{"custom params kept", "file:vote.db?mode=ro", "file:vote.db?mode=ro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLiteDSN(tt.url))
		})
	}
}

func TestOpenUnsupportedType(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, CreateSchema(conn, TypeSQLite))
	require.NoError(t, CreateSchema(conn, TypeSQLite))

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM app_settings").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestConstraintTranslation(t *testing.T) {
	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "constraints.db"))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, CreateSchema(conn, TypeSQLite))

	now := time.Now().UTC()
	_, err = conn.Exec(`INSERT INTO voter (nim, email, created_at) VALUES ($1, $2, $3)`, "202012345", "a@x.id", now)
	require.NoError(t, err)

	// Same email for a different NIM
	_, err = conn.Exec(`INSERT INTO voter (nim, email, created_at) VALUES ($1, $2, $3)`, "202099999", "a@x.id", now)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))

	// Vote for a candidate that doesn't exist
	_, err = conn.Exec(`INSERT INTO vote (id, voter_nim, candidate_id, cast_at) VALUES ($1, $2, $3, $4)`, "v1", "202012345", 42, now)
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))

	// One vote per voter
	var candidateID int64
	require.NoError(t, conn.QueryRow(`INSERT INTO candidate (chair, vice_chair) VALUES ('A', 'B') RETURNING id`).Scan(&candidateID))
	_, err = conn.Exec(`INSERT INTO vote (id, voter_nim, candidate_id, cast_at) VALUES ($1, $2, $3, $4)`, "v1", "202012345", candidateID, now)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO vote (id, voter_nim, candidate_id, cast_at) VALUES ($1, $2, $3, $4)`, "v2", "202012345", candidateID, now)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.False(t, IsUniqueViolation(nil))
}
