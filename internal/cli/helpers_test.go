package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/store"
)

// cliEnv is a database file plus the options shared by every invocation
// against it.
type cliEnv struct {
	t    *testing.T
	db   string
	opts *RootOptions
}

// newCLIEnv creates an empty database in a temp dir. ids, when given, are
// handed out to created items in order.
func newCLIEnv(t *testing.T, ids ...string) *cliEnv {
	t.Helper()
	t.Setenv("TALLY_DB", "")
	t.Setenv("TALLY_LOG_LEVEL", "error")
	env := &cliEnv{
		t:    t,
		db:   filepath.Join(t.TempDir(), "tally.db"),
		opts: &RootOptions{},
	}
	if len(ids) > 0 {
		env.opts.IDs = ledger.NewFixedGenerator(ids...)
	}
	return env
}

// run executes one command line against the env's database.
func (e *cliEnv) run(args ...string) (stdout, stderr string, err error) {
	e.t.Helper()
	cmd := newRootCommand(e.opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--db", e.db))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// mustRun executes a command line that is expected to succeed.
func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run(args...)
	require.NoError(e.t, err, "tally %v\nstdout: %s\nstderr: %s", args, out, errOut)
	return out
}

// withStore opens the env's database directly, for setting up states the
// commands never produce.
func (e *cliEnv) withStore(fn func(tx *store.Tx) error) {
	e.t.Helper()
	st, err := store.Open(e.db)
	require.NoError(e.t, err)
	defer st.Close()
	require.NoError(e.t, st.InTx(context.Background(), fn))
}
