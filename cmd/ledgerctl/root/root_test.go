package root

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskledger/internal/auth"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", filepath.Join(t.TempDir(), "ledger.db"))
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLedgerctl_UserLifecycle(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")

	out, err = run(t, "user", "create", "--handle", "alice", "--password", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")

	out, err = run(t, "presets", "seed", "--user", "alice")
	require.NoError(t, err)
	assert.Equal(t, "created 0 preset categories\n", out)

	out, err = run(t, "balance", "-u", "alice", "-n", "5")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "balance: 0\n"))

	out, err = run(t, "token", "--user", "alice")
	require.NoError(t, err)
	claims, err := auth.NewJWTService("cli-test-secret").ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Handle)

	out, err = run(t, "reconcile")
	require.NoError(t, err)
	assert.Equal(t, "repaired 0 users\n", out)
}

func TestLedgerctl_Errors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	_, err = run(t, "user", "create", "--handle", "alice")
	assert.EqualError(t, err, "--handle and --password are required")

	_, err = run(t, "balance", "--user", "nobody")
	assert.Error(t, err)

	_, err = run(t, "token")
	assert.Error(t, err)
}
