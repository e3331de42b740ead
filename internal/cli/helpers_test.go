package cli

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	apitesting "github.com/rileyhilliard/plantdash/internal/api/testing"
	"github.com/rileyhilliard/plantdash/internal/config"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// cliEnv is a fake backend plus a config file pointing at it.
type cliEnv struct {
	fake    *apitesting.FakeBackend
	server  *httptest.Server
	dir     string
	cfgPath string
}

// newCLIEnv serves a fake backend, writes a config for it and points the
// global flags at that config for the duration of the test.
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	fake := apitesting.NewFakeBackend()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL + "/api"
	cfg.Log.File = filepath.Join(dir, "logs", "plantdash.log")
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, config.Write(path, cfg))

	setFlag(t, &cfgFile, path)
	setFlag(t, &logFileFlag, "")
	t.Chdir(dir)

	return &cliEnv{fake: fake, server: srv, dir: dir, cfgPath: path}
}

// setFlag overrides a package-level flag variable and restores it after
// the test.
func setFlag[T any](t *testing.T, p *T, v T) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}
