package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/playerledger/internal/api"
	"github.com/mcoot/playerledger/internal/factory"
	"github.com/mcoot/playerledger/internal/services/token"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath   string
	serverURL    string
	tokenFile    string
	scratchToken string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "ledgerctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/ledgerctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:   binaryPath,
		serverURL:    serverURL,
		tokenFile:    filepath.Join(t.TempDir(), "token"),
		scratchToken: filepath.Join(t.TempDir(), "scratch-token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--token-file", r.scratchToken,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs the real API on a free port until the test ends
func startTestServer(t *testing.T) string {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(context.Background(), factory.Config{
		Logger: logger,
		TokenConfig: token.Config{
			Secret: "e2e-secret",
			Issuer: "playerledger",
			TTL:    time.Hour,
		},
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Random:      app.Random,
		Metrics:     app.Metrics,
		AuthService: app.AuthService,
		Facade:      app.LedgerFacade,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
		_ = app.Close()
	})

	return serverURL
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type authResponse struct {
	Player struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"player"`
	Token string `json:"token"`
}

type accountResponse struct {
	ID     int64  `json:"id"`
	Amount string `json:"amount"`
}

type operationResponse struct {
	ID     int64  `json:"id"`
	Type   string `json:"type"`
	Amount string `json:"amount"`
}

type actionResponse struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

func parseJSON[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

func TestCLI(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	serverURL := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	t.Run("health", func(t *testing.T) {
		out, err := cli.run("health")
		require.NoError(t, err, out)
		assert.Equal(t, "ok", parseJSON[map[string]string](t, out)["status"])
	})

	var alice authResponse
	t.Run("register saves token", func(t *testing.T) {
		out, err := cli.run("player", "register", "--name", "alice", "--pass", "secret")
		require.NoError(t, err, out)
		alice = parseJSON[authResponse](t, out)
		assert.Equal(t, "alice", alice.Player.Name)

		saved, err := os.ReadFile(cli.tokenFile)
		require.NoError(t, err)
		assert.Equal(t, alice.Token, string(saved))

		out, err = cli.run("player", "me")
		require.NoError(t, err, out)
		me := parseJSON[struct {
			ID int64 `json:"id"`
		}](t, out)
		assert.Equal(t, alice.Player.ID, me.ID)
	})

	var acc accountResponse
	t.Run("account flow", func(t *testing.T) {
		out, err := cli.run("account", "create")
		require.NoError(t, err, out)
		acc = parseJSON[accountResponse](t, out)
		assert.Equal(t, "0.00", acc.Amount)
		id := strconv.FormatInt(acc.ID, 10)

		out, err = cli.run("account", "credit", id, "100")
		require.NoError(t, err, out)

		out, err = cli.run("account", "debit", id, "40.25")
		require.NoError(t, err, out)
		assert.Equal(t, "59.75", parseJSON[accountResponse](t, out).Amount)

		out, err = cli.run("account", "debit", id, "1000")
		require.Error(t, err)
		assert.Contains(t, out, "INSUFFICIENT_FUNDS")

		out, err = cli.run("account", "operations", id)
		require.NoError(t, err, out)
		ops := parseJSON[[]operationResponse](t, out)
		require.Len(t, ops, 2)
		assert.Equal(t, "DEBIT", ops[1].Type)

		out, err = cli.run("operation", "get", strconv.FormatInt(ops[0].ID, 10))
		require.NoError(t, err, out)
		assert.Equal(t, "100.00", parseJSON[operationResponse](t, out).Amount)
	})

	t.Run("actions", func(t *testing.T) {
		out, err := cli.run("actions")
		require.NoError(t, err, out)
		actions := parseJSON[[]actionResponse](t, out)
		require.NotEmpty(t, actions)
		assert.Equal(t, "CREATE_ACCOUNT", actions[0].Type)
	})

	t.Run("other player is forbidden", func(t *testing.T) {
		out, err := cli.runWithToken("", "player", "register", "--name", "bob", "--pass", "secret")
		require.NoError(t, err, out)
		bob := parseJSON[authResponse](t, out)

		out, err = cli.runWithToken(bob.Token, "account", "get", strconv.FormatInt(acc.ID, 10))
		require.Error(t, err)
		assert.Contains(t, out, "FORBIDDEN")
	})

	t.Run("missing token", func(t *testing.T) {
		out, err := cli.runWithToken("", "--token-file", filepath.Join(t.TempDir(), "none"), "account", "list")
		require.Error(t, err)
		assert.Contains(t, out, "MISSING_TOKEN")
	})

	t.Run("invalid id is rejected locally", func(t *testing.T) {
		out, err := cli.run("account", "get", "abc")
		require.Error(t, err)
		assert.Contains(t, out, "invalid id")
	})
}

func TestCLILogout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	cli := newCLIRunner(t, startTestServer(t))

	out, err := cli.run("player", "register", "--name", "carol", "--pass", "secret")
	require.NoError(t, err, out)

	out, err = cli.run("player", "logout")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Logged out")

	_, statErr := os.Stat(cli.tokenFile)
	assert.True(t, os.IsNotExist(statErr))

	out, err = cli.run("player", "me")
	require.Error(t, err)
	assert.Contains(t, out, "MISSING_TOKEN")
}
