package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// unreachableDB returns a handle whose every query fails to connect.
func unreachableDB(t *testing.T) {
	t.Helper()
	gdb, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=bapp dbname=bapp sslmode=disable connect_timeout=1"),
		&gorm.Config{DisableAutomaticPing: true, Logger: gormlogger.Discard})
	require.NoError(t, err)
	prevDB, prevLogger := db, logger
	db = gdb
	t.Cleanup(func() { db, logger = prevDB, prevLogger })
}

func captureLogs(t *testing.T) *test.Hook {
	t.Helper()
	l, hook := test.NewNullLogger()
	logger = l
	return hook
}

func TestSeedRolesLogsFailures(t *testing.T) {
	unreachableDB(t)
	hook := captureLogs(t)

	seedRoles()

	entries := hook.AllEntries()
	require.Len(t, entries, 3, "one entry per default role")
	for _, e := range entries {
		require.Equal(t, logrus.ErrorLevel, e.Level)
		require.Equal(t, "db", e.Data["module"])
		require.Equal(t, "seedRoles", e.Data["funcName"])
	}
}

func TestRevokeRefreshTokenReportsFailure(t *testing.T) {
	unreachableDB(t)
	hook := captureLogs(t)

	err := revokeRefreshToken(42)
	require.Error(t, err)

	last := hook.LastEntry()
	require.NotNil(t, last)
	require.Equal(t, logrus.ErrorLevel, last.Level)
	require.Equal(t, "revokeRefreshToken", last.Data["funcName"])
	require.Equal(t, logrus.Fields{"refresh_token_id": uint(42)}, last.Data["data"])
}
