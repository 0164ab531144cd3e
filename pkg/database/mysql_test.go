package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDSN(t *testing.T) {
	cfg, err := parseDSN("resetter:secret@tcp(db:3306)/resetter")
	require.NoError(t, err)

	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "resetter", cfg.DBName)
	assert.NotNil(t, cfg.Loc)
}

func TestParseDSNInvalid(t *testing.T) {
	_, err := parseDSN("resetter:secret@tcp(db:3306)")
	require.Error(t, err)
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString("").Valid)
	assert.Equal(t, "boom", nullString("boom").String)
}
