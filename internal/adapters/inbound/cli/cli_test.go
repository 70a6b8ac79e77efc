package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdidvp/slopwatch/internal/adapters/inbound/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analyzerFixture = "../../../../testdata/analyzer/fake_analyzer.sh"

func analyzer(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs(analyzerFixture)
	require.NoError(t, err)
	return abs
}

// run executes the root command with the fake analyzer and returns stdout
// and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append(args, "--executable", analyzer(t)))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	out, _, err := run(t, "analyze", path, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"deficit_score": 62.4`)
	assert.Contains(t, out, `"applied": true`)
	assert.Contains(t, out, `"SLOP: 62.4 (critical_deficit)"`)
}

func TestAnalyzeCommand_DefaultTUI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	out, _, err := run(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "slopwatch")
	assert.Contains(t, out, "62.4")
	assert.Contains(t, out, "Bare except")
	assert.Contains(t, out, "Mutable default")
	assert.NotContains(t, out, "TODO left in code")
}

func TestAnalyzeCommand_CIFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	_, _, err := run(t, "analyze", path, "--ci")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail threshold")
}

func TestAnalyzeCommand_CIPassesWithRaisedThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	_, _, err := run(t, "analyze", path, "--ci", "--warn", "80", "--fail", "90")
	assert.NoError(t, err)
}

func TestAnalyzeCommand_AnalyzerCrash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crash.py")
	_, stderr, err := run(t, "analyze", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-zero")
	assert.Contains(t, stderr, "[-] Analysis failed")
}

func TestAnalyzeCommand_MalformedOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.py")
	_, _, err := run(t, "analyze", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result contract")
}

func TestAnalyzeCommand_UnsupportedFile(t *testing.T) {
	_, _, err := run(t, "analyze", filepath.Join(t.TempDir(), "README.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was not analyzed")
}

func TestAnalyzeCommand_InvalidSettingsFile(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("warn_threshold: -1\n"), 0644))

	_, _, err := run(t, "analyze", "app.py", "--settings", settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading settings")
}

func TestWorkspaceCommand_JSONRecordsRun(t *testing.T) {
	root := t.TempDir()
	out, _, err := run(t, "workspace", root, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"total_files": 3`)
	assert.Contains(t, out, `"average_score": 38`)
	assert.Contains(t, out, `"overall_status": "warning"`)

	_, err = os.Stat(filepath.Join(root, ".slopwatch", "history", "workspace.json"))
	assert.NoError(t, err)
}

func TestWorkspaceCommand_History(t *testing.T) {
	root := t.TempDir()
	_, _, err := run(t, "workspace", root, "--quiet")
	require.NoError(t, err)

	out, stderr, err := run(t, "workspace", root, "--quiet", "--history")
	require.NoError(t, err)
	assert.Contains(t, out, "38.0")
	assert.Contains(t, out, "Workspace history")
	assert.Contains(t, stderr, "[+] Workspace Analysis Complete")

	out, _, err = run(t, "history", root, "--workspace", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Score: 38.0 (warning)"`)
}

func TestHistoryCommand(t *testing.T) {
	out, _, err := run(t, "history", filepath.Join(t.TempDir(), "app.py"))
	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-01T10:00:00")
	assert.Contains(t, out, "Score: 62.4 (critical_deficit)")
	assert.Contains(t, out, "↓7.8")
}

func TestHistoryCommand_Empty(t *testing.T) {
	out, stderr, err := run(t, "history", filepath.Join(t.TempDir(), "fresh.py"))
	require.NoError(t, err)
	assert.Contains(t, out, "No history found")
	assert.Contains(t, stderr, "[+] No history found for this file")
}

func TestHookInstallCommand(t *testing.T) {
	out, stderr, err := run(t, "hook", "install", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "pre-commit hook written")
	assert.Contains(t, stderr, "[+] Git pre-commit hook installed successfully!")
}

func TestInitCmd_CreatesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	root := cli.NewRootCmdForTest()
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{"init", tmpDir})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(tmpDir, ".slopwatch.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "warn_threshold: 30")
	assert.Contains(t, string(data), "lint_on_save: true")
}

func TestInitCmd_FailsIfExists(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".slopwatch.yaml"), []byte("enable: true\n"), 0644))

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir})
	assert.Error(t, root.Execute())

	root = cli.NewRootCmdForTest()
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{"init", tmpDir, "--force"})
	assert.NoError(t, root.Execute())
}

func TestInitThenAnalyzeUsesSettings(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, ".slopwatch.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("enable: false\n"), 0644))

	_, _, err := run(t, "analyze", filepath.Join(dir, "app.py"), "--settings", settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis disabled")
}

func TestVersionCommand(t *testing.T) {
	root := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "slopwatch")
}

func TestLongRunningCommandsExist(t *testing.T) {
	for _, args := range [][]string{{"serve", "--help"}, {"watch", "--help"}, {"hook", "--help"}} {
		root := cli.NewRootCmdForTest()
		root.SetOut(new(bytes.Buffer))
		root.SetArgs(args)
		assert.NoError(t, root.Execute(), args)
	}
}
