package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/hopsgo/internal/hops"
	"github.com/specialistvlad/hopsgo/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, code, exitErr.Code, "unexpected exit code for %q", exitErr.Message)
	return exitErr
}

func TestVersion(t *testing.T) {
	t.Parallel()
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hopsgo dev")
}

func TestUsageErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		msg  string
	}{
		{name: "unknown flag", args: []string{"serve", "--no-such-flag"}, msg: "unknown flag"},
		{name: "unknown command", args: []string{"launch"}, msg: "unknown command"},
		{name: "eval without route", args: []string{"eval"}, msg: "requires at least 1 arg"},
		{name: "serve with args", args: []string{"serve", "extra"}, msg: "unknown command"},
		{name: "bad log level", args: []string{"eval", "--log-level", "loud", "add", "1", "2"}, msg: "invalid configuration"},
		{name: "bad output", args: []string{"components", "-o", "xml"}, msg: "unknown output format"},
		{name: "bad transport", args: []string{"call", "--transport", "grpc", "add"}, msg: "unknown transport"},
		{name: "unknown route", args: []string{"eval", "nope"}, msg: "nope"},
		{name: "missing config file", args: []string{"eval", "--config", "/does/not/exist.yaml", "add", "1", "2"}, msg: "reading config file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := execute(t, tc.args...)
			exitErr := requireExitCode(t, err, 2)
			assert.Contains(t, exitErr.Message, tc.msg)
		})
	}
}

func TestEval(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "eval", "add", "2", "3")
	require.NoError(t, err)
	assert.Equal(t, "Sum = 5\n", out)

	out, _, err = execute(t, "eval", "-o", "json", "/average_speed", "100", "20")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Speed": 5}`, out)

	out, _, err = execute(t, "eval", "-o", "json", "vector_addition_02", "[0,0,0]", "[1,0,0]", `{"X":1,"Y":2,"Z":0}`)
	require.NoError(t, err)
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 3)
}

func TestEval_RuntimeErrors(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "eval", "average_speed", "5", "0")
	exitErr := requireExitCode(t, err, 1)
	assert.Contains(t, exitErr.Message, "handler_execution")

	_, _, err = execute(t, "eval", "add", "two", "3")
	exitErr = requireExitCode(t, err, 1)
	assert.Contains(t, exitErr.Message, "type_mismatch")
}

func TestComponents(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "components", "-o", "json")
	require.NoError(t, err)
	var views []componentView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 32)
	assert.Equal(t, "/add", views[0].Route)
	assert.Equal(t, "Sum", views[0].Outputs[0].Name)

	out, _, err = execute(t, "components", "-o", "yaml")
	require.NoError(t, err)
	var fromYAML []componentView
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, views, fromYAML)

	out, _, err = execute(t, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "ROUTE")
	assert.Contains(t, out, "/srf4pt")
	assert.Contains(t, out, "A:number, B:number")
}

func TestComponents_DefaultsListed(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "components", "-o", "json")
	require.NoError(t, err)
	var views []componentView
	require.NoError(t, json.Unmarshal([]byte(out), &views))

	for _, v := range views {
		if v.Route != "/pointat" {
			continue
		}
		require.Len(t, v.Inputs, 2)
		assert.Equal(t, "0", v.Inputs[1].Default)
		return
	}
	t.Fatal("/pointat not listed")
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hopsgo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_format: xml\n"), 0o600))

	_, _, err := execute(t, "eval", "--config", path, "add", "1", "2")
	exitErr := requireExitCode(t, err, 2)
	assert.Contains(t, exitErr.Message, "log_format")

	// Flags take precedence over the file.
	out, _, err := execute(t, "eval", "--config", path, "--log-format", "json", "add", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "Sum = 3\n", out)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("HOPSGO_LOG_LEVEL", "loud")

	_, _, err := execute(t, "components")
	exitErr := requireExitCode(t, err, 2)
	assert.Contains(t, exitErr.Message, "log_level")
}

func TestManifestsPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, _, err := execute(t, "components", "--manifests-path", dir)
	exitErr := requireExitCode(t, err, 1)
	assert.Contains(t, exitErr.Message, dir)
}

func TestCall_HTTP(t *testing.T) {
	t.Parallel()

	h := testutil.NewHarness(t)
	srv := httptest.NewServer(hops.NewServer(h.Dispatcher).Handler())
	t.Cleanup(srv.Close)

	out, _, err := execute(t, "call", "--url", srv.URL, "add", "2", "3")
	require.NoError(t, err)
	assert.Equal(t, "5.0\n", out)

	_, _, err = execute(t, "call", "--url", srv.URL, "nope")
	exitErr := requireExitCode(t, err, 1)
	assert.Contains(t, exitErr.Message, "404")
}
