package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createApplicationTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE applications (
		id TEXT PRIMARY KEY,
		version INTEGER NOT NULL DEFAULT 1,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		description TEXT,
		environment TEXT NOT NULL DEFAULT 'PRODUCTION',
		access_type TEXT NOT NULL DEFAULT 'STANDARD',
		state TEXT NOT NULL DEFAULT 'TESTING',
		state_requested_by TEXT,
		state_actor_id TEXT,
		state_updated_on DATETIME,
		verification_code TEXT UNIQUE,
		verification_sent_at DATETIME,
		blocked INTEGER NOT NULL DEFAULT 0,
		rate_limit_tier TEXT NOT NULL DEFAULT 'BRONZE',
		client_id TEXT UNIQUE NOT NULL,
		server_token TEXT UNIQUE NOT NULL,
		ip_allowlist TEXT,
		check_information TEXT,
		last_access DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE collaborators (
		id TEXT PRIMARY KEY,
		application_id TEXT NOT NULL,
		email TEXT NOT NULL,
		email_lower TEXT NOT NULL,
		role TEXT NOT NULL,
		user_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE client_secrets (
		id TEXT PRIMARY KEY,
		application_id TEXT NOT NULL,
		secret_hint TEXT NOT NULL,
		secret_hash TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME
	);`)
}

func createSubscriptionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE subscriptions (
		application_id TEXT NOT NULL,
		api_context TEXT NOT NULL,
		api_version TEXT NOT NULL,
		created_at DATETIME,
		PRIMARY KEY (application_id, api_context, api_version)
	);`)
}

func createStateTransitionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE state_transitions (
		id TEXT PRIMARY KEY,
		application_id TEXT NOT NULL,
		from_state TEXT NOT NULL,
		to_state TEXT NOT NULL,
		actor_email TEXT,
		actor_user_id TEXT,
		reason TEXT,
		created_at DATETIME
	);`)
}
