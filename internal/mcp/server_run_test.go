package mcp

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-annot-fixer/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServer_Run_StdioEOF(t *testing.T) {
	server, _ := newTestServer(t, nil)
	server.stdin = strings.NewReader("")
	server.stdout = io.Discard

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("stdio server did not stop at end of input")
	}
}

func TestServer_Run_StdioContextCancellation(t *testing.T) {
	server, _ := newTestServer(t, nil)
	reader, writer := io.Pipe()
	defer writer.Close()
	server.stdin = reader
	server.stdout = io.Discard

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stdio server did not stop after cancellation")
	}
}

func TestServer_Run_ServerMode(t *testing.T) {
	server, _ := newTestServer(t, nil)
	server.config.Mode = config.ModeServer
	server.config.Port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	addr := server.config.Address()
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond, "SSE server never accepted connections")

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("SSE server did not shut down")
	}
}

func TestServer_Run_ImmediateCancellation(t *testing.T) {
	server, _ := newTestServer(t, nil)
	server.config.Mode = config.ModeServer
	server.config.Port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	select {
	case err := <-runAsync(ctx, server):
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("SSE server did not shut down")
	}
}

func TestServer_Run_NonMCPMode(t *testing.T) {
	server, _ := newTestServer(t, nil)
	server.config.Mode = config.ModeBatch

	err := server.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not run an MCP server")
}

func runAsync(ctx context.Context, server *Server) <-chan error {
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()
	return done
}
