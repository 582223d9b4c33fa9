package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath string
	scriptPath string
}

func setupCLITestEnv(t *testing.T) cliTestEnv {
	t.Helper()
	base := t.TempDir()

	configPath := filepath.Join(base, "config.toml")
	configBody := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[tts]
provider = "inflect"
api_key = "test"

[logging]
format = "json"
level = "error"
`, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(configBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	scriptPath := filepath.Join(base, "episode.txt")
	script := "HOST: [cheerfully] Good morning!\nGUEST: [thoughtfully] Thanks for having me.\n"
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	return cliTestEnv{configPath: configPath, scriptPath: scriptPath}
}

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestCreateAndListAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{
		"-c", env.configPath, "create",
		"--script", env.scriptPath,
		"--title", "Morning Brief",
		"--host-voice", "voice-h",
		"--guest-voice", "voice-g",
	})
	if err != nil {
		t.Fatalf("create: %v\n%s", err, out)
	}
	requireContains(t, out, "Created job ")
	requireContains(t, out, "Lines: 2")

	var jobID string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Created job ") {
			jobID = strings.TrimPrefix(line, "Created job ")
		}
	}
	if jobID == "" {
		t.Fatalf("job id not found in output:\n%s", out)
	}

	out, err = runCLI(t, []string{"-c", env.configPath, "queue", "list"})
	if err != nil {
		t.Fatalf("queue list: %v\n%s", err, out)
	}
	requireContains(t, out, jobID)
	requireContains(t, out, "pending")
	requireContains(t, out, "Morning Brief")

	out, err = runCLI(t, []string{"-c", env.configPath, "status", jobID})
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "pending")
	requireContains(t, out, "0/2")
}

func TestStatusUnknownJob(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := runCLI(t, []string{"-c", env.configPath, "status", "no-such-job"})
	if err == nil {
		t.Fatal("expected error for unknown job id")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want a not-found message", err)
	}
}

func TestCreateRejectsEmptyScript(t *testing.T) {
	env := setupCLITestEnv(t)
	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, []byte("no speakers here\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	_, err := runCLI(t, []string{
		"-c", env.configPath, "create",
		"--script", empty,
		"--host-voice", "voice-h",
		"--guest-voice", "voice-g",
	})
	if err == nil {
		t.Fatal("expected error for unparseable script")
	}
}

func TestCreateRequiresVoices(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := runCLI(t, []string{"-c", env.configPath, "create", "--script", env.scriptPath})
	if err == nil {
		t.Fatal("expected error for missing voice flags")
	}
}

func TestValidateCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, []string{"validate", "--script", env.scriptPath})
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	requireContains(t, out, "Parsed 2 line(s): 1 HOST, 1 GUEST")
	requireContains(t, out, "supported vocabulary")
}

func TestQueueHealthEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, []string{"-c", env.configPath, "queue", "health"})
	if err != nil {
		t.Fatalf("queue health: %v\n%s", err, out)
	}
	requireContains(t, out, "Queue Health")
	requireContains(t, out, "Total")
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite must refuse.
	if _, err := runCLI(t, []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected error for existing config file")
	}
}
