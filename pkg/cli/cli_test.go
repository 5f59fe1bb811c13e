package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/getmockd/canaryd/pkg/config"
	"github.com/getmockd/canaryd/pkg/engine"
	"github.com/getmockd/canaryd/pkg/notify"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pingConfig = `
server:
  host: 127.0.0.1
  port: 8080
routes:
  - path: /ping
    response: pong
    response_code: 200
    comment: health probe
  - path: /ping
    response: shadowed
    response_code: 500
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func parseFlags(t *testing.T, args ...string) (*ServerFlags, *pflag.FlagSet) {
	t.Helper()
	f := &ServerFlags{}
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse(args))
	return f, fs
}

func TestResolveArgs(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{in: nil, want: []string{"serve"}},
		{in: []string{"--port", "9000"}, want: []string{"serve", "--port", "9000"}},
		{in: []string{"-c", "x.yaml"}, want: []string{"serve", "-c", "x.yaml"}},
		{in: []string{"--help"}, want: []string{"--help"}},
		{in: []string{"validate", "-c", "x.yaml"}, want: []string{"validate", "-c", "x.yaml"}},
		{in: []string{"version"}, want: []string{"version"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveArgs(tt.in), "%v", tt.in)
	}
}

func TestLoadConfiguration_Precedence(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 7000
notifier:
  bot_token: file-token
  chat_id: file-chat
routes:
  - {path: /a, response: a, response_code: 200}
`)
	t.Setenv(config.EnvBotToken, "env-token")
	t.Setenv(config.EnvPort, "7100")

	f, fs := parseFlags(t, "--config", path, "--port", "7200", "--log-level", "debug")
	cfg, err := LoadConfiguration(f, fs)
	require.NoError(t, err)

	assert.Equal(t, 7200, cfg.Server.Port, "flag beats env and file")
	assert.Equal(t, config.SourceFlag, cfg.Sources["port"])
	assert.Equal(t, "env-token", cfg.Notifier.BotToken, "env beats file")
	assert.Equal(t, "file-chat", cfg.Notifier.ChatID)
	assert.Equal(t, config.DefaultHost, cfg.Server.Host, "unset flag keeps document value")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfiguration_ConfigFromEnv(t *testing.T) {
	path := writeConfig(t, "routes:\n  - {path: /a, response: a, response_code: 200}\n")
	t.Setenv(config.EnvConfig, path)

	f, fs := parseFlags(t)
	cfg, err := LoadConfiguration(f, fs)
	require.NoError(t, err)
	assert.Len(t, cfg.Routes, 1)
}

func TestLoadConfiguration_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		f, fs := parseFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := LoadConfiguration(f, fs)
		assert.ErrorIs(t, err, config.ErrFileNotFound)
	})

	t.Run("no routes", func(t *testing.T) {
		f, fs := parseFlags(t, "--config", writeConfig(t, "server:\n  port: 9000\n"))
		_, err := LoadConfiguration(f, fs)
		assert.ErrorIs(t, err, config.ErrNoRoutes)
	})

	t.Run("invalid port in environment", func(t *testing.T) {
		t.Setenv(config.EnvPort, "eighty")
		f, fs := parseFlags(t, "--config", writeConfig(t, pingConfig))
		_, err := LoadConfiguration(f, fs)
		var verr *config.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, config.EnvPort, verr.Field)
	})

	t.Run("invalid route", func(t *testing.T) {
		f, fs := parseFlags(t, "--config", writeConfig(t, "routes:\n  - {path: nope, response: a, response_code: 200}\n"))
		_, err := LoadConfiguration(f, fs)
		var verr *config.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestNewNotifier(t *testing.T) {
	var logs bytes.Buffer
	log, _ := newLogger(config.LoggingConfig{Level: "info"}, &logs)

	n, err := newNotifier(config.NotifierConfig{}, log)
	require.NoError(t, err)
	assert.IsType(t, notify.Nop{}, n)
	assert.Contains(t, logs.String(), "notifier disabled")

	n, err = newNotifier(config.NotifierConfig{BotToken: "t", ChatID: "c", APIURL: "http://localhost"}, log)
	require.NoError(t, err)
	assert.IsType(t, &notify.Telegram{}, n)
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	var stderr bytes.Buffer
	mirror := false

	log, closer := newLogger(config.LoggingConfig{File: path, Level: "warn", MaxBackups: 30, Stderr: &mirror}, &stderr)
	log.Info("below level")
	log.Warn("Matched route | Path: /ping")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Matched route | Path: /ping")
	assert.Contains(t, string(data), "time=")
	assert.NotContains(t, string(data), "below level")
	assert.Empty(t, stderr.String(), "stderr mirroring disabled")
}

// fakeTelegram records sendMessage calls.
type fakeTelegram struct {
	mu    sync.Mutex
	forms []url.Values
	paths []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(body))
	f.mu.Lock()
	f.forms = append(f.forms, form)
	f.paths = append(f.paths, r.URL.Path)
	f.mu.Unlock()
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func TestServe_EndToEnd(t *testing.T) {
	tg := &fakeTelegram{}
	api := httptest.NewServer(tg)
	defer api.Close()

	t.Setenv(config.EnvBotToken, "123:abc")
	t.Setenv(config.EnvChatID, "-100")

	logFile := filepath.Join(t.TempDir(), "server.log")
	path := writeConfig(t, pingConfig+"notifier:\n  api_url: "+api.URL+"\n")
	f, fs := parseFlags(t, "--config", path, "--port", "0", "--log-file", logFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan *engine.Server, 1)
	done := make(chan error, 1)
	var stderr bytes.Buffer
	go func() {
		done <- serve(ctx, f, fs, &stderr, func(s *engine.Server) { started <- s })
	}()

	var srv *engine.Server
	select {
	case srv = <-started:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	base := "http://" + srv.Addr()

	resp, err := client.Get(base + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))

	resp, err = client.Get(base + "/missing")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "404 Not Found", string(body))

	cancel()
	require.NoError(t, <-done)

	tg.mu.Lock()
	defer tg.mu.Unlock()
	require.Len(t, tg.forms, 1, "one notification for the match, none for the miss")
	assert.Equal(t, "/bot123:abc/sendMessage", tg.paths[0])
	assert.Equal(t, "-100", tg.forms[0].Get("chat_id"))
	assert.Contains(t, tg.forms[0].Get("text"), "Comment: health probe")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	logText := string(data)
	assert.Contains(t, logText, "Starting server on")
	assert.Contains(t, logText, "route shadowed")
	assert.Equal(t, 1, strings.Count(logText, "Matched route"))
	assert.Contains(t, logText, "Path: /ping")
	assert.Contains(t, logText, "Response: pong")
	assert.NotContains(t, logText, "/missing")
	assert.Contains(t, stderr.String(), "Matched route", "stderr mirrors the file by default")
}

func TestServe_InvalidConfigDoesNotStart(t *testing.T) {
	f, fs := parseFlags(t, "--config", writeConfig(t, "routes: []\n"))
	called := false
	err := serve(context.Background(), f, fs, io.Discard, func(*engine.Server) { called = true })
	assert.ErrorIs(t, err, config.ErrNoRoutes)
	assert.False(t, called)
}

func TestValidateCommand(t *testing.T) {
	t.Setenv(config.EnvBotToken, "")
	t.Setenv(config.EnvChatID, "")

	var out bytes.Buffer
	err := ExecuteArgs([]string{"validate", "--config", writeConfig(t, pingConfig)}, &out, io.Discard)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "2 routes OK")
	assert.Contains(t, out.String(), "routes[1] /ping is shadowed")
	assert.Contains(t, out.String(), "notifier: disabled")
}

func TestValidateCommand_Invalid(t *testing.T) {
	err := ExecuteArgs([]string{"validate", "--config", writeConfig(t, "routes:\n  - {path: /a, response_code: 9}\n")}, io.Discard, io.Discard)
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "routes[0].response_code", verr.Field)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ExecuteArgs([]string{"version"}, &out, io.Discard))
	assert.Contains(t, out.String(), "canaryd "+Version)
}

func TestInitCommand(t *testing.T) {
	t.Setenv(config.EnvBotToken, "")
	t.Setenv(config.EnvChatID, "")
	out := filepath.Join(t.TempDir(), "config.yaml")
	args := []string{"init", "--output", out, "--path", "/wp-login.php", "--response", "Forbidden", "--code", "403", "--comment", "wordpress probe"}

	var stdout bytes.Buffer
	require.NoError(t, ExecuteArgs(args, &stdout, io.Discard))
	assert.Contains(t, stdout.String(), "Wrote "+out)

	cfg, err := config.Load(out)
	require.NoError(t, err)
	require.Len(t, cfg.Routes, 1)
	assert.Equal(t, config.RouteConfig{Path: "/wp-login.php", Response: "Forbidden", ResponseCode: 403, Comment: "wordpress probe"}, cfg.Routes[0])
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)

	err = ExecuteArgs(args, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, ExecuteArgs(append(args, "--force", "--code", "418"), io.Discard, io.Discard))
	cfg, err = config.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 418, cfg.Routes[0].ResponseCode)
}

func TestStarterConfig_RejectsInvalidRoute(t *testing.T) {
	_, err := starterConfig(config.RouteConfig{Path: "no-slash", ResponseCode: 200})
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "routes[0].path", verr.Field)
}

func TestInitPromptValidators(t *testing.T) {
	codes := []struct {
		in      string
		wantErr bool
	}{
		{in: "200"},
		{in: " 403 "},
		{in: "599"},
		{in: "103", wantErr: true},
		{in: "101", wantErr: true},
		{in: "600", wantErr: true},
		{in: "teapot", wantErr: true},
	}
	for _, tt := range codes {
		err := validateCodeInput(tt.in)
		assert.Equal(t, tt.wantErr, err != nil, "code %q", tt.in)
	}

	assert.NoError(t, validatePathInput("/wp-login.php"))
	assert.Error(t, validatePathInput("wp-login.php"))
}

func TestInitCommand_RejectsInformationalStatus(t *testing.T) {
	out := filepath.Join(t.TempDir(), "config.yaml")
	err := ExecuteArgs([]string{"init", "--output", out, "--path", "/hint", "--response", "early", "--code", "103"}, io.Discard, io.Discard)

	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "routes[0].response_code", verr.Field)
	assert.NoFileExists(t, out)
}
