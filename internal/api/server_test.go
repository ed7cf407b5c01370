package api

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/eyeward-labs/overseer/internal/eventbus"
	"github.com/eyeward-labs/overseer/internal/pipeline"
	"github.com/eyeward-labs/overseer/internal/policy"
	"github.com/eyeward-labs/overseer/internal/settings"
	"github.com/eyeward-labs/overseer/internal/store"
)

// newTestServer wires a Server against a sqlmock-backed store.Client, the
// same shape NewServer builds in production, for handler tests that need a
// real request flow without a live database.
func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	storeClient := store.NewClientFromDB(db)
	enforcer := policy.NewEnforcer(storeClient.APIKeys, storeClient.Audit, policy.NewMemoryCounter())
	engine := pipeline.NewEngine(storeClient.Sessions)
	settingsSvc := settings.NewService(storeClient.Profiles, storeClient.Sessions)
	events := eventbus.NewManager(storeClient.Events, settingsSvc, 5*time.Second, 50)

	s := NewServer(storeClient, enforcer, engine, settingsSvc, events, "enterprise", "https://portal.example.com")
	return s, mock
}
