package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsSetAndGet(t *testing.T) {
	store := tempStore(t)
	settings := NewSettingsRepo(store)

	require.NoError(t, settings.Set(SettingCheckoutLimit, "5"))

	limit, err := settings.GetInt(SettingCheckoutLimit)
	require.NoError(t, err)
	require.Equal(t, 5, limit)

	all, err := settings.GetAll()
	require.NoError(t, err)
	require.Equal(t, "5", all[SettingCheckoutLimit])
	require.Equal(t, "120", all[SettingTokenTTLSeconds])
}

func TestSettingsGetPropagatesDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbErr := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT value FROM settings").
		WithArgs(SettingTokenTTLSeconds).
		WillReturnError(dbErr)

	settings := NewSettingsRepo(NewStore(db))

	_, err = settings.GetInt(SettingTokenTTLSeconds)
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
