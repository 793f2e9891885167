package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postsurvey/internal/config"
	"postsurvey/internal/lock"
	"postsurvey/internal/model"
)

func testConfig(backend string) *config.Config {
	cfg := config.Default()
	cfg.StoreBackend = backend
	return cfg
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close(context.Background())) })
	return a
}

func TestNew_MemoryBackend(t *testing.T) {
	a := newApp(t, testConfig(config.BackendMemory))

	assert.IsType(t, &lock.LocalLocker{}, a.Locker)

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_BoltBackendPersists(t *testing.T) {
	cfg := testConfig(config.BackendBolt)
	cfg.BoltPath = filepath.Join(t.TempDir(), "surveys.db")
	ctx := context.Background()

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	created, err := a.SurveyService.CreateSurvey(ctx, model.SurveyInput{
		Question: "Did it arrive on time?",
		Options:  []string{"Yes", "No"},
	})
	require.NoError(t, err)
	require.NoError(t, a.Close(ctx))

	reopened := newApp(t, cfg)
	got, found := reopened.SurveyService.GetSurvey(ctx, created.ID)
	require.True(t, found)
	assert.Equal(t, "Did it arrive on time?", got.Question)
}

func TestNew_RedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(config.BackendMemory)
	cfg.RedisURI = "redis://" + mr.Addr()
	a := newApp(t, cfg)
	assert.IsType(t, &lock.RedisLocker{}, a.Locker)

	cfg = testConfig(config.BackendMemory)
	cfg.RedisURI = mr.Addr()
	a = newApp(t, cfg)
	assert.IsType(t, &lock.RedisLocker{}, a.Locker)
}

func TestNew_Failures(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	tests := []struct {
		name string
		cfg  func() *config.Config
	}{
		{"bad mongo uri", func() *config.Config {
			cfg := testConfig(config.BackendMongo)
			cfg.MongoURI = "not-a-mongo-uri"
			return cfg
		}},
		{"unknown backend", func() *config.Config { return testConfig("postgres") }},
		{"bad redis url", func() *config.Config {
			cfg := testConfig(config.BackendMemory)
			cfg.RedisURI = "http://" + addr
			return cfg
		}},
		{"redis down", func() *config.Config {
			cfg := testConfig(config.BackendMemory)
			cfg.RedisURI = addr
			return cfg
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(context.Background(), tt.cfg())
			assert.Error(t, err)
			assert.Nil(t, a)
		})
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(config.BackendMemory))

	res, err := a.Seed(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Surveys: 3, Responses: 12}, res)

	active, err := a.SurveyService.GetActiveSurvey(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "¿Cómo nos conociste?", active.Question)
	assert.Equal(t, 12, active.ResponseCount)

	surveys, err := a.SurveyService.ListSurveys(ctx)
	require.NoError(t, err)
	require.Len(t, surveys, 3)
	activeCount := 0
	for _, s := range surveys {
		if s.IsActive {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)

	dash, err := a.DashboardService.GetSurveyDashboard(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, dash.TotalResponses)
	require.Len(t, dash.Distribution, 6)
	assert.Equal(t, model.OptionCount{Option: "Instagram", Count: 4, Percentage: 33.33}, dash.Distribution[0])
	assert.Equal(t, model.OtherOption, dash.Distribution[5].Option)

	res, err = a.Seed(ctx, false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	res, err = a.Seed(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Surveys: 3, Responses: 12}, res)

	active2, err := a.SurveyService.GetActiveSurvey(ctx)
	require.NoError(t, err)
	require.NotNil(t, active2)
	assert.NotEqual(t, active.ID, active2.ID)
	_, found := a.SurveyService.GetSurvey(ctx, active.ID)
	assert.True(t, found)
}
