package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Easy-Infra-Ltd/easy-content-gate/src/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func metricsStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "metrics ok")
	})
}

func TestNewUpstream_createsServer(t *testing.T) {
	u := NewUpstream(config.ServerConfig{Transport: config.TransportStdio}, nil, testLogger())
	require.NotNil(t, u.Server)
}

func TestUpstream_runUnsupported(t *testing.T) {
	u := NewUpstream(config.ServerConfig{Transport: "grpc"}, nil, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, u.Run(ctx))
}

func TestUpstream_toolRegistration(t *testing.T) {
	u := NewUpstream(config.ServerConfig{Transport: config.TransportStdio}, nil, testLogger())

	u.Server.AddTool(&mcp.Tool{
		Name:        "test_tool",
		Description: "a test tool",
		InputSchema: map[string]any{"type": "object"},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "response"}},
		}, nil
	})

	srvTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = u.Server.Run(ctx, srvTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	var tools []*mcp.Tool
	for tool, err := range session.Tools(ctx, nil) {
		require.NoError(t, err)
		tools = append(tools, tool)
	}
	require.Len(t, tools, 1)
	assert.Equal(t, "test_tool", tools[0].Name)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "test_tool"})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected *TextContent, got %T", result.Content[0])
	assert.Equal(t, "response", tc.Text)
}

func TestUpstream_handlerMountsMetrics(t *testing.T) {
	cfg := config.Default().Server
	u := NewUpstream(cfg, metricsStub(), testLogger())

	rec := httptest.NewRecorder()
	u.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, cfg.HTTP.MetricsPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "metrics ok", rec.Body.String())
}

func TestUpstream_handlerWithoutMetrics(t *testing.T) {
	cfg := config.Default().Server
	u := NewUpstream(cfg, nil, testLogger())

	rec := httptest.NewRecorder()
	u.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, cfg.HTTP.MetricsPath, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpstream_runHTTP(t *testing.T) {
	cfg := config.Default().Server
	cfg.Transport = config.TransportHTTP
	cfg.HTTP.Addr = "127.0.0.1:0"
	u := NewUpstream(cfg, metricsStub(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- u.Run(ctx) }()

	addrCtx, addrCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer addrCancel()
	addr, err := u.Addr(addrCtx)
	require.NoError(t, err)

	resp, err := http.Get(fmt.Sprintf("http://%s%s", addr, cfg.HTTP.MetricsPath))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "metrics ok", string(body))

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
