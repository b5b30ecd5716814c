package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/relevance-backend/internal/connectors"
	"github.com/xela07ax/relevance-backend/internal/console/handler"
	"github.com/xela07ax/relevance-backend/internal/console/service"
	"github.com/xela07ax/relevance-backend/internal/domain"
	"github.com/xela07ax/relevance-backend/internal/infra"
)

type testEnv struct {
	server  *ConsoleServer
	metrics *infra.Metrics
	reg     *prometheus.Registry
}

func newTestEnv(t *testing.T, rev domain.Revision, c *connectors.StaticConnector) *testEnv {
	t.Helper()
	cfg := &infra.Config{
		Server:  infra.ServerConfig{Host: "127.0.0.1", Port: 8000},
		API:     infra.APIConfig{Revision: string(rev)},
		Metrics: infra.MetricsConfig{Enabled: true},
	}
	require.NoError(t, cfg.Validate())

	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	metrics := infra.NewMetrics(reg)
	svc := service.NewAgentService(c, metrics, logger)
	s := NewConsoleServer(cfg, logger, metrics, reg, handler.NewAgentHandler(svc, logger))
	return &testEnv{server: s, metrics: metrics, reg: reg}
}

func (e *testEnv) do(method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func sampleAgents() *connectors.StaticConnector {
	return &connectors.StaticConnector{Agents: []*domain.AgentRecord{
		{AgentID: "abc123", Name: "Sales Agent", Metadata: &domain.AgentMetadata{Name: "Sales Agent"}},
		{AgentID: "xyz", Name: "Support Bot", Metadata: &domain.AgentMetadata{Name: "Support Bot"}},
	}}
}

func TestRootIgnoresAdapterState(t *testing.T) {
	for _, rev := range []domain.Revision{domain.RevisionV1, domain.RevisionV2, domain.RevisionV3} {
		env := newTestEnv(t, rev, &connectors.StaticConnector{ListErr: errors.New("down"), RetrieveErr: errors.New("down")})

		rec := env.do(http.MethodGet, "/", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Relevance AI Backend API"}`, rec.Body.String())
	}
}

func TestV2Routes(t *testing.T) {
	env := newTestEnv(t, domain.RevisionV2, sampleAgents())

	rec := env.do(http.MethodGet, "/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"agent_id":"abc123","name":"Sales Agent","description":null},
		{"agent_id":"xyz","name":"Support Bot","description":null}
	]`, rec.Body.String())

	rec = env.do(http.MethodGet, "/agents/abc123", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"agent_id":"abc123","name":"Sales Agent","description":null}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/agents/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Agent not found: agent missing does not exist"}`, rec.Body.String())
}

func TestV3Routes(t *testing.T) {
	env := newTestEnv(t, domain.RevisionV3, &connectors.StaticConnector{Agents: []*domain.AgentRecord{
		{AgentID: "xyz", Metadata: &domain.AgentMetadata{Name: "Support Bot"}},
	}})

	rec := env.do(http.MethodGet, "/agents/details", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"xyz","name":"Support Bot","status":"active","lastActive":"","tasksCompleted":0,"successRate":0,"currentTask":""}]`, rec.Body.String())

	rec = env.do(http.MethodGet, "/agents/xyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"xyz","name":"Support Bot","status":"active","lastActive":"","tasksCompleted":0,"successRate":0,"currentTask":""}`, rec.Body.String())

	// в v3 простого списка нет
	rec = env.do(http.MethodGet, "/agents", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())
}

func TestListFailureV1(t *testing.T) {
	env := newTestEnv(t, domain.RevisionV1, &connectors.StaticConnector{ListErr: errors.New("relevance: list agents returned status 401")})

	rec := env.do(http.MethodGet, "/agents", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"relevance: list agents returned status 401"}`, rec.Body.String())
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, domain.RevisionV2, sampleAgents())

	rec := env.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())

	rec = env.do(http.MethodDelete, "/", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"detail":"Method Not Allowed"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, domain.RevisionV3, sampleAgents())

	rec := env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSIsOpen(t *testing.T) {
	env := newTestEnv(t, domain.RevisionV2, sampleAgents())

	rec := env.do(http.MethodGet, "/agents", http.Header{
		"Origin": {"http://localhost:3000"},
		"Cookie": {"session=1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = env.do(http.MethodOptions, "/agents", http.Header{
		"Origin":                         {"http://example.com"},
		"Access-Control-Request-Method":  {http.MethodDelete},
		"Access-Control-Request-Headers": {"X-Custom-Header"},
	})
	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

func TestTrailingSlashRedirects(t *testing.T) {
	env := newTestEnv(t, domain.RevisionV2, sampleAgents())

	rec := env.do(http.MethodGet, "/agents/", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "/agents"), rec.Header().Get("Location"))

	rec = env.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEscapedAgentIDReachesAdapterDecoded(t *testing.T) {
	env := newTestEnv(t, domain.RevisionV2, &connectors.StaticConnector{Agents: []*domain.AgentRecord{
		{AgentID: "Abc", Name: "Escaped"},
	}})

	rec := env.do(http.MethodGet, "/agents/%41bc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"agent_id":"Abc","name":"Escaped","description":null}`, rec.Body.String())
}

func TestTraceIDHeader(t *testing.T) {
	env := newTestEnv(t, domain.RevisionV2, sampleAgents())

	rec := env.do(http.MethodGet, "/", nil)
	assert.NotEmpty(t, rec.Header().Get(TraceHeader))

	rec = env.do(http.MethodGet, "/", http.Header{TraceHeader: {"trace-42"}})
	assert.Equal(t, "trace-42", rec.Header().Get(TraceHeader))
}

func TestMetricsEndpointAndRouteLabels(t *testing.T) {
	env := newTestEnv(t, domain.RevisionV2, sampleAgents())

	env.do(http.MethodGet, "/agents/abc123", nil)
	env.do(http.MethodGet, "/agents/xyz", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/agents/{agentID}", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.UpstreamCalls.WithLabelValues("retrieve_agent", "success")))

	rec := env.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "relevance_http_requests_total")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := &infra.Config{API: infra.APIConfig{Revision: "v2"}}
	logger := zap.NewNop()
	svc := service.NewAgentService(sampleAgents(), nil, logger)
	s := NewConsoleServer(cfg, logger, nil, prometheus.NewRegistry(), handler.NewAgentHandler(svc, logger))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecovererRespondsWithDetail(t *testing.T) {
	h := Recoverer(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, rec.Body.String())
}

func TestRunServesAndShutsDown(t *testing.T) {
	// свободный порт
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	env := newTestEnv(t, domain.RevisionV2, sampleAgents())
	env.server.cfg.Server.Port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Run(ctx) }()

	url := "http://" + env.server.cfg.Server.Addr() + "/"
	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		body = string(data)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.True(t, strings.Contains(body, "Relevance AI Backend API"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
