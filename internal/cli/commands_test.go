package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/config"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basilRequest() dashboard.SetupRequest {
	return dashboard.SetupRequest{
		PlantName:       "Basil",
		Location:        "Kitchen",
		PlantType:       "ficus-lyrata",
		SamplingSeconds: 30,
	}
}

func TestSetupCommand(t *testing.T) {
	env := newCLIEnv(t)

	var buf bytes.Buffer
	require.NoError(t, setupCommand(t.Context(), &buf, basilRequest(), false))

	active := env.fake.ActiveConfig()
	assert.Equal(t, "Basil", active.PlantName)
	assert.Equal(t, "Kitchen", active.Location)
	assert.Equal(t, 30, active.SamplingSeconds)
	assert.NotEmpty(t, active.PlantConfigID)

	out := buf.String()
	assert.Contains(t, out, dashboard.StatusSetupSaved)
	assert.Contains(t, out, "Active plant: Basil (Kitchen), sampling every 30s")
}

func TestSetupCommand_SaveListsProfiles(t *testing.T) {
	newCLIEnv(t)

	var buf bytes.Buffer
	require.NoError(t, setupCommand(t.Context(), &buf, basilRequest(), true))
	assert.Contains(t, buf.String(), dashboard.StatusProfileSaved)
	assert.Contains(t, buf.String(), "Basil (Kitchen)")
}

func TestSetupCommand_UnknownType(t *testing.T) {
	env := newCLIEnv(t)

	req := basilRequest()
	req.PlantType = "triffid"
	err := setupCommand(t.Context(), &bytes.Buffer{}, req, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInput))
	assert.Contains(t, err.Error(), "Unknown plant type 'triffid'")

	// Nothing was written.
	assert.Equal(t, "SmartPlant", env.fake.ActiveConfig().PlantName)
}

func TestSetupCommand_EmptyName(t *testing.T) {
	newCLIEnv(t)

	req := basilRequest()
	req.PlantName = "  "
	err := setupCommand(t.Context(), &bytes.Buffer{}, req, false)
	require.Error(t, err)
	assert.Equal(t, dashboard.StatusEnterName, errors.MessageOf(err))
}

func TestProfilesCommand_Empty(t *testing.T) {
	newCLIEnv(t)

	var buf bytes.Buffer
	require.NoError(t, profilesCommand(t.Context(), &buf, false))
	assert.Contains(t, buf.String(), "No saved profiles yet")
}

func TestProfilesCommand_JSON(t *testing.T) {
	newCLIEnv(t)
	require.NoError(t, setupCommand(t.Context(), &bytes.Buffer{}, basilRequest(), false))

	var buf bytes.Buffer
	require.NoError(t, profilesCommand(t.Context(), &buf, true))

	var env struct {
		Success bool            `json:"success"`
		Data    []profileOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Basil", env.Data[0].PlantName)
	assert.Equal(t, "ficus-lyrata", env.Data[0].PlantType)
	assert.Equal(t, 30, env.Data[0].SamplingSeconds)
}

func TestProfilesCommand_JSONFailure(t *testing.T) {
	env := newCLIEnv(t)
	env.server.Close()

	var buf bytes.Buffer
	err := profilesCommand(t.Context(), &buf, true)
	assert.Equal(t, errSilent, err)

	var out JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.False(t, out.Success)
	require.NotNil(t, out.Error)
	assert.Equal(t, ErrCodeBackendUnreachable, out.Error.Code)
}

func TestActivateCommand(t *testing.T) {
	env := newCLIEnv(t)
	ctx := t.Context()

	require.NoError(t, setupCommand(ctx, &bytes.Buffer{}, basilRequest(), false))
	fern := dashboard.SetupRequest{PlantName: "Fern", Location: "Bathroom", PlantType: "sansevieria", SamplingSeconds: 90}
	require.NoError(t, setupCommand(ctx, &bytes.Buffer{}, fern, false))
	require.Equal(t, "Fern", env.fake.ActiveConfig().PlantName)

	saved, err := api.NewClient(env.server.URL + "/api").ListSavedConfigs(ctx)
	require.NoError(t, err)
	var basilID string
	for _, s := range saved {
		if s.PlantName == "Basil" {
			basilID = s.ID
		}
	}
	require.NotEmpty(t, basilID)

	var buf bytes.Buffer
	require.NoError(t, activateCommand(ctx, &buf, basilID))
	assert.Equal(t, "Basil", env.fake.ActiveConfig().PlantName)
	assert.Contains(t, buf.String(), dashboard.StatusActivated)
	assert.Contains(t, buf.String(), basilID)
}

func TestActivateCommand_UnknownID(t *testing.T) {
	newCLIEnv(t)

	err := activateCommand(t.Context(), &bytes.Buffer{}, "no-such-id")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBackend))
	assert.Equal(t, dashboard.StatusActivateFailed, errors.MessageOf(err))
}

func TestIntervalCommand_KeepsIdentity(t *testing.T) {
	env := newCLIEnv(t)

	var buf bytes.Buffer
	require.NoError(t, intervalCommand(t.Context(), &buf, 120))

	active := env.fake.ActiveConfig()
	assert.Equal(t, 120, active.SamplingSeconds)
	assert.Equal(t, "SmartPlant", active.PlantName)
	assert.Equal(t, "Living Room", active.Location)
	assert.Contains(t, buf.String(), dashboard.StatusSamplingUpdated)
}

func TestWatchCommand_PrintsOneCycle(t *testing.T) {
	env := newCLIEnv(t)
	env.fake.AddObservation(api.Sample{
		Timestamp:   time.Now().UTC(),
		Temperature: api.Float(22.4),
		Humidity:    api.Float(55),
		Illuminance: api.Float(61),
	})

	var buf bytes.Buffer
	err := watchCommand(t.Context(), &buf, watchOptions{Interval: time.Hour, Count: 1})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Current plant: SmartPlant")
	assert.Contains(t, out, dashboard.DeviceConnected)
	assert.Contains(t, out, "Temperature")
	assert.Contains(t, out, "22.4")
	assert.Contains(t, out, "Light (%)")
}

func TestWatchCommand_BackendDown(t *testing.T) {
	env := newCLIEnv(t)
	env.server.Close()

	err := watchCommand(t.Context(), &bytes.Buffer{}, watchOptions{Count: 1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
}

func TestDashboardCommand_FallsBackToWatchWhenPiped(t *testing.T) {
	newCLIEnv(t)

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	var buf bytes.Buffer
	require.NoError(t, dashboardCommand(ctx, &buf))
	assert.Contains(t, buf.String(), "plantdash")
	assert.Contains(t, buf.String(), dashboard.DeviceWaiting)
}

func TestDoctorCommand_Healthy(t *testing.T) {
	newCLIEnv(t)

	var buf bytes.Buffer
	require.NoError(t, doctorCommand(t.Context(), &buf, false, false))

	out := buf.String()
	assert.Contains(t, out, "plantdash diagnostic report")
	assert.Contains(t, out, "BACKEND")
	assert.Contains(t, out, "DEVICE")
	assert.Contains(t, out, "No readings yet for the active plant")
}

func TestDoctorCommand_JSON(t *testing.T) {
	newCLIEnv(t)

	var buf bytes.Buffer
	require.NoError(t, doctorCommand(t.Context(), &buf, true, false))

	var out DoctorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 0, out.Summary.Fail)
	assert.GreaterOrEqual(t, out.Summary.Warn, 1)
	assert.False(t, out.Summary.AllClear)

	var names []string
	for _, c := range out.Categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"CONFIG", "LOGGING", "BACKEND", "DEVICE"}, names)
}

func TestDoctorCommand_FixCreatesLogDir(t *testing.T) {
	env := newCLIEnv(t)
	logDir := filepath.Join(env.dir, "logs")
	_, err := os.Stat(logDir)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, doctorCommand(t.Context(), &bytes.Buffer{}, false, true))

	info, err := os.Stat(logDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDoctorCommand_UnreachableFails(t *testing.T) {
	env := newCLIEnv(t)
	env.server.Close()

	var buf bytes.Buffer
	err := doctorCommand(t.Context(), &buf, false, false)
	assert.Equal(t, errSilent, err)
	assert.Contains(t, buf.String(), "Cannot reach")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	require.NoError(t, initCommand(&buf, dir, false))
	assert.Contains(t, buf.String(), "Created")

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, config.DefaultPollInterval, cfg.Poll.Interval)
}

func TestInitCommand_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	setFlag(t, &confirmOverwrite, func(string) (bool, error) { return false, nil })
	var buf bytes.Buffer
	require.NoError(t, initCommand(&buf, dir, false))
	assert.Contains(t, buf.String(), "Cancelled.")
	data, _ := os.ReadFile(path)
	assert.Equal(t, "version: 1\n", string(data))

	// --force skips the question.
	setFlag(t, &confirmOverwrite, func(string) (bool, error) {
		t.Fatal("confirm should not be asked with --force")
		return false, nil
	})
	require.NoError(t, initCommand(&bytes.Buffer{}, dir, true))
	data, _ = os.ReadFile(path)
	assert.Contains(t, string(data), "base_url")
}

func TestConfigSetCommand(t *testing.T) {
	env := newCLIEnv(t)

	var buf bytes.Buffer
	require.NoError(t, configSetCommand(&buf, "poll.interval", "30s"))
	assert.Contains(t, buf.String(), "poll.interval = 30s")

	cfg, err := config.Load(env.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Poll.Interval)
}

func TestConfigSetCommand_InvalidValue(t *testing.T) {
	newCLIEnv(t)

	var buf bytes.Buffer
	err := configSetCommand(&buf, "output.color", "sometimes")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, buf.String(), "fails validation")
}

func TestConfigSetCommand_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	setFlag(t, &cfgFile, "")

	err := configSetCommand(&bytes.Buffer{}, "poll.limit", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plantdash init")
}

func TestFakeBackendCommand_ServesAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	addrCh := make(chan string, 1)
	done := make(chan error, 1)
	var buf bytes.Buffer
	access := &lockedBuffer{}
	go func() {
		done <- fakeBackendCommand(ctx, &buf, fakeBackendOptions{
			Addr:      "127.0.0.1:0",
			Interval:  time.Hour,
			Backfill:  3,
			AccessLog: access,
			ready:     func(addr string) { addrCh <- addr },
		})
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case err := <-done:
		t.Fatalf("fake backend exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("fake backend did not start")
	}

	client := api.NewClient("http://" + addr + "/api")
	samples, err := client.LatestObservations(ctx, api.Query{Limit: 10, PlantType: "monstera-deliciosa"})
	require.NoError(t, err)
	// Three seeded readings, plus the simulator's first once it has run.
	assert.GreaterOrEqual(t, len(samples), 3)

	resp, err := http.Get("http://" + addr + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("fake backend did not stop")
	}
	assert.Contains(t, access.String(), "GET /api/health")
	assert.Contains(t, access.String(), "GET /api/observations/latest")
}

func TestAccessLogWriter(t *testing.T) {
	var buf bytes.Buffer
	assert.Nil(t, accessLogWriter(false, &buf))
	assert.Equal(t, &buf, accessLogWriter(true, &buf))
}

// lockedBuffer is written from server goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFakeBackendCommand_BadDropRate(t *testing.T) {
	err := fakeBackendCommand(t.Context(), &bytes.Buffer{}, fakeBackendOptions{DropRate: 2})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInput))
}
