package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/location-directive-service/internal/infrastructure/catalog"
	"github.com/wms-platform/location-directive-service/internal/infrastructure/memory"
	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
	"github.com/wms-platform/location-directive-service/shared/pkg/metrics"
	"github.com/wms-platform/location-directive-service/shared/pkg/mongodb"
	"github.com/wms-platform/location-directive-service/shared/pkg/tracing"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("LOCATION_DIRECTIVE_TEST_ENV", "value")

	assert.Equal(t, "value", getEnv("LOCATION_DIRECTIVE_TEST_ENV", "default"))
	assert.Equal(t, "default", getEnv("LOCATION_DIRECTIVE_MISSING_ENV", "default"))
}

func TestLoadConfig(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("MONGODB_URI", "mongodb://example:27017")
	t.Setenv("MONGODB_DATABASE", "directives_test")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("DIRECTIVE_PRIORITY_ORDER", "descending")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, "mongodb://example:27017", cfg.MongoDB.URI)
	assert.Equal(t, "directives_test", cfg.MongoDB.Database)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "descending", cfg.PriorityOrder)
}

func TestLoadConfig_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_ADDR=:7070\n"), 0o600))
	chdirForTest(t, dir)
	t.Setenv("SERVER_ADDR", "")
	os.Unsetenv("SERVER_ADDR")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ServerAddr)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"priority order", "DIRECTIVE_PRIORITY_ORDER", "sideways"},
		{"mongo uri", "MONGODB_URI", "postgres://db"},
		{"log level", "LOG_LEVEL", "loud"},
		{"missing catalog", "DIRECTIVE_CATALOG_FILE", "/does/not/exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirForTest(t, t.TempDir())
			t.Setenv(tt.key, tt.val)
			_, err := loadConfig()
			assert.Error(t, err)
		})
	}
}

type fakeTracerProvider struct {
	shutdownCalls int
}

func (f *fakeTracerProvider) Shutdown(context.Context) error {
	f.shutdownCalls++
	return nil
}

type fakeServer struct {
	handler       http.Handler
	listenCalls   int
	shutdownCalls int
}

func (f *fakeServer) ListenAndServe() error {
	f.listenCalls++
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdownCalls++
	return nil
}

func testConfig() *Config {
	return &Config{
		ServerAddr:    ":0",
		Environment:   "test",
		LogLevel:      "error",
		MongoDB:       mongodb.DefaultConfig(),
		PriorityOrder: "ascending",
	}
}

func TestRun_WiresAndShutsDown(t *testing.T) {
	tp := &fakeTracerProvider{}
	server := &fakeServer{}
	closed := 0
	directives := memory.NewLocationDirectiveRepository()

	cfg := testConfig()
	cfg.CatalogFile = "catalog.yaml"

	deps := appDependencies{
		initTracing: func(context.Context, *tracing.Config) (tracerProvider, error) { return tp, nil },
		openStore: func(context.Context, *mongodb.Config, *metrics.Metrics, *logging.Logger) (*store, error) {
			return &store{
				directives:  directives,
				attributes:  memory.NewLocationAttributeRepository(nil),
				healthCheck: func(context.Context) error { return nil },
				close:       func(context.Context) error { closed++; return nil },
			}, nil
		},
		loadCatalog: func(path string) (*catalog.File, error) {
			assert.Equal(t, "catalog.yaml", path)
			return &catalog.File{Directives: []catalog.DirectiveEntry{{
				ID:            "5b0c7a52-8f8e-4a8b-9d2c-0c7f6f1f6a10",
				Name:          "Fixed pick",
				OperationType: "pick",
				Strategy:      "fixed",
				Priority:      1,
			}}}, nil
		},
		newHTTPServer: func(_ string, handler http.Handler) httpServer {
			server.handler = handler
			return server
		},
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- syscall.SIGTERM
	require.NoError(t, run(context.Background(), cfg, deps, signalCh))

	assert.Equal(t, 1, server.shutdownCalls)
	assert.Equal(t, 1, tp.shutdownCalls)
	assert.Equal(t, 1, closed)

	n, err := directives.CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NotNil(t, server.handler)
	for _, path := range []string{"/health", "/ready", "/api/v1/directives"} {
		w := httptest.NewRecorder()
		server.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRun_StoreFailure(t *testing.T) {
	want := errors.New("connection refused")
	deps := appDependencies{
		initTracing: func(context.Context, *tracing.Config) (tracerProvider, error) { return nil, errors.New("no collector") },
		openStore: func(context.Context, *mongodb.Config, *metrics.Metrics, *logging.Logger) (*store, error) {
			return nil, want
		},
	}

	err := run(context.Background(), testConfig(), deps, nil)
	assert.ErrorIs(t, err, want)
}

func TestNewEventPublisher_KafkaDisabled(t *testing.T) {
	publisher := newEventPublisher(testConfig(), metrics.New(metrics.DefaultConfig(serviceName)), logging.NewNop())
	_, ok := publisher.(inMemoryEventPublisher)
	assert.True(t, ok)
	assert.NoError(t, publisher.Close())
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
