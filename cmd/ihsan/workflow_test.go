package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestEndToEndWorkflow drives a prebuilt binary named by IHSAN_BIN.
func TestEndToEndWorkflow(t *testing.T) {
	bin := os.Getenv("IHSAN_BIN")
	if bin == "" {
		t.Skip("IHSAN_BIN not set")
	}
	bin, err := filepath.Abs(bin)
	if err != nil {
		t.Fatalf("Failed to resolve binary path: %v", err)
	}

	// Isolate config, logs and data in a temp home.
	tempDir := t.TempDir()
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "XDG_CONFIG_HOME=") && !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "IHSAN_") {
			env = append(env, e)
		}
	}
	env = append(env, "XDG_CONFIG_HOME="+tempDir, "HOME="+tempDir, "IHSAN_USER=amina")
	db := filepath.Join(tempDir, "ihsan", "ihsan.db")

	run := func(args ...string) string {
		t.Helper()
		return runCmd(t, bin, env, append([]string{"--config", db}, args...)...)
	}

	run("init")
	run("settings", "--timezone", "UTC")

	out := run("prayer", "set", "Fajr", "on_time")
	if !strings.Contains(out, "+20 XP") {
		t.Errorf("prayer set output = %q, want +20 XP", out)
	}

	run("challenge", "start", "quran-juz")
	out = run("challenge", "complete", "quran-juz")
	if !strings.Contains(out, "level up") {
		t.Errorf("challenge complete output = %q, want a level up", out)
	}

	out = run("status")
	for _, want := range []string{"User: amina", "Level 2", "XP: 120 / 400", "Challenges: 0 active, 1 completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}
