package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/clouddemo/internal/backend"
	"github.com/dmitrijs2005/clouddemo/internal/client/config"
	"github.com/dmitrijs2005/clouddemo/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BackendURL = baseURL
	cfg.AnonKey = "anon"
	return cfg
}

func execute(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(cfg, logging.Discard())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(bytes.NewReader(nil))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_RunsDashboard(t *testing.T) {
	orig := runDashboard
	t.Cleanup(func() { runDashboard = orig })

	var got *config.Config
	runDashboard = func(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) error {
		got = cfg
		return nil
	}

	cfg := testConfig("http://backend")
	_, err := execute(t, cfg)
	require.NoError(t, err)
	assert.Same(t, cfg, got)

	_, err = execute(t, cfg, "extra")
	require.Error(t, err)
}

func TestRoot_Version(t *testing.T) {
	out, err := execute(t, testConfig(""), "--version")
	require.NoError(t, err)
	assert.Equal(t, "dev (commit: unknown, built: unknown)\n", out)
}

func TestMigrateCommand(t *testing.T) {
	origOpen, origMigrate := openBackend, migrateBackend
	t.Cleanup(func() { openBackend, migrateBackend = origOpen, origMigrate })

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	var dsn string
	openBackend = func(ctx context.Context, d string) (*sql.DB, error) {
		dsn = d
		return db, nil
	}
	migrateBackend = func(ctx context.Context, got *sql.DB, log logging.Logger) (int64, error) {
		assert.Same(t, db, got)
		return 3, nil
	}

	cfg := testConfig("")
	cfg.DatabaseDSN = "postgres://db"
	out, err := execute(t, cfg, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "postgres://db", dsn)
	assert.Contains(t, out, "Schema at version 3")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateCommand_Errors(t *testing.T) {
	origOpen, origMigrate := openBackend, migrateBackend
	t.Cleanup(func() { openBackend, migrateBackend = origOpen, origMigrate })

	openBackend = func(context.Context, string) (*sql.DB, error) { return nil, errors.New("refused") }
	_, err := execute(t, testConfig(""), "migrate")
	require.EqualError(t, err, "refused")

	openBackend = func(context.Context, string) (*sql.DB, error) { return nil, backend.ErrNoDSN }
	_, err = execute(t, testConfig(""), "migrate")
	require.ErrorIs(t, err, backend.ErrNoDSN)
	assert.Contains(t, err.Error(), "CLOUDDEMO_DATABASE_DSN")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	openBackend = func(context.Context, string) (*sql.DB, error) { return db, nil }
	migrateBackend = func(context.Context, *sql.DB, logging.Logger) (int64, error) {
		return 0, errors.New("bad migration")
	}
	_, err = execute(t, testConfig(""), "migrate")
	require.EqualError(t, err, "bad migration")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/health", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"auth"}`))
	}))
	defer srv.Close()

	out, err := execute(t, testConfig(srv.URL), "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend is healthy")
	assert.Contains(t, out, srv.URL)
}

func TestHealthCommand_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	out, err := execute(t, testConfig(srv.URL), "health")
	require.Error(t, err)
	assert.Contains(t, out, "Backend unreachable:")
}

func TestInvokeCommand(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/functions/v1/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"kaboom"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Hello anonymous!","status":"success"}`))
	}))
	defer srv.Close()

	out, err := execute(t, testConfig(srv.URL), "invoke")
	require.NoError(t, err)
	assert.Contains(t, out, `"message": "Hello anonymous!"`)

	out, err = execute(t, testConfig(srv.URL), "invoke", "broken")
	require.Error(t, err)
	assert.Contains(t, out, "kaboom")

	assert.Equal(t, []string{"/functions/v1/hello-world", "/functions/v1/broken"}, paths)
}
