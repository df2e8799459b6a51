package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Easy-Infra-Ltd/easy-content-gate/src/gateway"
	"github.com/Easy-Infra-Ltd/easy-content-gate/src/sanitizer"
)

// run executes the command tree with args and returns captured stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(slog.New(slog.DiscardHandler))

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRoot_printsHelp(t *testing.T) {
	out, err := run(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "contentgate")
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "check")
}

func TestCheckPrompt_sanitizes(t *testing.T) {
	out, err := run(t, "", "check", "prompt", "a", "<b>red</b>", "fox")
	require.NoError(t, err)
	assert.Equal(t, "a red fox\n", out)
}

func TestCheckPrompt_stdin(t *testing.T) {
	out, err := run(t, "  a quiet lake at dawn \n", "check", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "a quiet lake at dawn\n", out)
}

func TestCheckPrompt_rejects(t *testing.T) {
	out, err := run(t, "", "check", "prompt", "<script>alert(1)</script>")
	require.ErrorIs(t, err, sanitizer.ErrUnsafeContent)
	assert.Empty(t, out)
}

func TestCheckPrompt_json(t *testing.T) {
	out, err := run(t, "", "check", "--json", "prompt", "DROP TABLE users")
	require.ErrorIs(t, err, sanitizer.ErrUnsafeContent)

	var res gateway.PromptOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "drop_table")
}

func TestCheckPrompt_configLimit(t *testing.T) {
	path := writeConfig(t, "gate.yaml", "gate:\n  maxScriptLength: 5\n")

	_, err := run(t, "", "--config", path, "check", "prompt", "far too long")
	require.ErrorIs(t, err, sanitizer.ErrScriptTooLong)

	out, err := run(t, "", "--config", path, "check", "prompt", "short")
	require.NoError(t, err)
	assert.Equal(t, "short\n", out)
}

func TestCheckPrompt_badConfig(t *testing.T) {
	_, err := run(t, "", "--config", filepath.Join(t.TempDir(), "missing.json"), "check", "prompt", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")
}

func TestCheckUpload(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		out, err := run(t, "", "check", "upload", "--name", "../holiday pic.PNG", "--mime", "Image/PNG")
		require.NoError(t, err)
		assert.Equal(t, "holidaypic.PNG\timage/png\n", out)
	})

	t.Run("json without name", func(t *testing.T) {
		out, err := run(t, "", "check", "upload", "--json", "--mime", "image/webp")
		require.NoError(t, err)

		var res gateway.UploadOutput
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.True(t, res.Allowed)
		assert.Nil(t, res.Filename)
		assert.Equal(t, "image/webp", res.MimeType)
	})

	t.Run("rejected mime", func(t *testing.T) {
		out, err := run(t, "", "check", "upload", "--name", "a.svg", "--mime", "image/svg+xml")
		require.ErrorIs(t, err, sanitizer.ErrUnsupportedMimeType)
		assert.Empty(t, out)
	})

	t.Run("mime required", func(t *testing.T) {
		_, err := run(t, "", "check", "upload", "--name", "a.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mime")
	})
}

func TestServe_unsupportedTransport(t *testing.T) {
	_, err := run(t, "", "serve", "--transport", "grpc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport")
}

func TestServe_badConfig(t *testing.T) {
	path := writeConfig(t, "gate.json", `{"gate": {"customPatterns": ["[bad"]}}`)
	_, err := run(t, "", "--config", path, "serve")
	require.Error(t, err)
}
