package e2e_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/trucogame/internal/api"
	"github.com/mcoot/trucogame/internal/factory"
	"github.com/mcoot/trucogame/internal/services/view"
	"github.com/mcoot/trucogame/internal/testutil"
	"github.com/mcoot/trucogame/internal/web"
)

var (
	buildOnce  sync.Once
	binaryPath string
	buildErr   error
	buildOut   []byte
)

// cliRunner runs the CLI binary as one player with its own token file
type cliRunner struct {
	serverURL string
	tokenFile string
}

func buildCLI(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		projectRoot := findProjectRoot(t)
		binaryPath = filepath.Join(projectRoot, "bin", "trucoctl-test")
		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/trucoctl")
		cmd.Dir = projectRoot
		buildOut, buildErr = cmd.CombinedOutput()
	})
	require.NoError(t, buildErr, "failed to build CLI: %s", string(buildOut))
	return binaryPath
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()
	buildCLI(t)

	return &cliRunner{
		serverURL: serverURL,
		tokenFile: filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "TRUCO_TOKEN=", "TRUCO_ROOM=")
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

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	app := factory.NewInstantTestApp()
	logger := testutil.NopLogger()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
	})
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		HubManager:     app.HubManager,
		WSManager:      app.WSManager,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		app.Shutdown()
		server.Close()
	})
	return server
}

type joinResponse struct {
	SessionToken string     `json:"session_token"`
	Room         string     `json:"room"`
	View         *view.View `json:"view"`
}

type stateResponse struct {
	View     *view.View `json:"view"`
	Rejected string     `json:"rejected"`
}

type leaveResponse struct {
	Left       bool `json:"left"`
	RoomClosed bool `json:"room_closed"`
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

func seatTable(t *testing.T, serverURL, room string) []*cliRunner {
	t.Helper()

	names := []string{"Ana", "Bruno", "Carla", "Davi"}
	players := make([]*cliRunner, 0, len(names))
	for _, name := range names {
		p := newCLIRunner(t, serverURL)
		output, err := p.run("join", room, name)
		require.NoError(t, err, "output: %s", output)

		resp := decode[joinResponse](t, output)
		assert.Equal(t, room, resp.Room)
		assert.NotEmpty(t, resp.SessionToken)
		assert.Equal(t, name, resp.View.Name)
		players = append(players, p)
	}
	return players
}

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.URL)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	resp := decode[struct {
		Status string `json:"status"`
	}](t, output)
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_JoinSavesSession(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.URL)

	output, err := cli.run("join", "MESA", "Ana")
	require.NoError(t, err, "output: %s", output)

	data, err := os.ReadFile(cli.tokenFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "MESA")

	output, err = cli.run("state")
	require.NoError(t, err, "output: %s", output)

	resp := decode[stateResponse](t, output)
	assert.Equal(t, "Ana", resp.View.Name)
	assert.False(t, resp.View.Started)
}

func TestCLI_FullRound(t *testing.T) {
	ts := startTestServer(t)
	players := seatTable(t, ts.URL, "MESA")

	output, err := players[0].run("state")
	require.NoError(t, err, "output: %s", output)
	first := decode[stateResponse](t, output)
	require.True(t, first.View.Started)
	require.Len(t, first.View.Hand, 3)

	roundOver := false
	for play := 0; play < 12 && !roundOver; play++ {
		var onTurn *cliRunner
		var idle *cliRunner
		for _, p := range players {
			output, err := p.run("state")
			require.NoError(t, err, "output: %s", output)
			if decode[stateResponse](t, output).View.MyTurn {
				onTurn = p
			} else {
				idle = p
			}
		}
		require.NotNil(t, onTurn, "nobody on turn at play %d", play)

		// Out-of-turn plays are rejected without changing anything
		output, err = idle.run("play", "0")
		require.NoError(t, err, "output: %s", output)
		assert.NotEmpty(t, decode[stateResponse](t, output).Rejected)

		output, err = onTurn.run("play", "0")
		require.NoError(t, err, "output: %s", output)
		resp := decode[stateResponse](t, output)
		require.Empty(t, resp.Rejected)
		roundOver = resp.View.RoundOver
	}
	require.True(t, roundOver, "round did not finish")

	output, err = players[1].run("state")
	require.NoError(t, err, "output: %s", output)
	over := decode[stateResponse](t, output)
	assert.Equal(t, 1, over.View.Score[0]+over.View.Score[1])

	output, err = players[2].run("round", "new")
	require.NoError(t, err, "output: %s", output)
	next := decode[stateResponse](t, output)
	assert.True(t, next.View.Started)
	assert.Len(t, next.View.Hand, 3)
}

func TestCLI_TrucoOnFirstHandIsRejected(t *testing.T) {
	ts := startTestServer(t)
	players := seatTable(t, ts.URL, "MESA")

	for _, p := range players {
		output, err := p.run("truco", "call")
		require.NoError(t, err, "output: %s", output)
		assert.NotEmpty(t, decode[stateResponse](t, output).Rejected)
	}
}

func TestCLI_Leave(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.URL)

	_, err := cli.run("join", "MESA", "Ana")
	require.NoError(t, err)

	output, err := cli.run("leave")
	require.NoError(t, err, "output: %s", output)
	resp := decode[leaveResponse](t, output)
	assert.True(t, resp.Left)
	assert.True(t, resp.RoomClosed)

	_, err = os.Stat(cli.tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.URL)

	output, err := cli.run("state")
	assert.Error(t, err)
	assert.Contains(t, output, "no room given")

	output, err = cli.run("--room", "MESA", "--token", "bogus", "state")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "unauthorized")

	_, err = cli.run("join", "MESA", "Ana")
	require.NoError(t, err)
	other := newCLIRunner(t, ts.URL)
	output, err = other.run("join", "MESA", "Ana")
	assert.Error(t, err)
	assert.Contains(t, output, "NAME_TAKEN")
}
