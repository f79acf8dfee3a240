package e2e

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const TEST_SERVER_TIMEOUT = 15 * time.Second

// TestEndToEndWorkflow drives a built grind binary through a full session in
// an isolated HOME. Build it first with: go build -o bin/grind ./cmd/grind
func TestEndToEndWorkflow(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("GRIND_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	cliPath := filepath.Join(binDir, "grind")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s", cliPath)
	}

	tempDir := t.TempDir()
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "GRIND_") {
			env = append(env, e)
		}
	}
	env = append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		"GRIND_TIMEZONE=UTC",
	)

	t.Log("Initializing storage...")
	out := runCmd(t, cliPath, env, "init")
	expectContains(t, out, "Initialized grind storage at:")
	dbPath := filepath.Join(tempDir, ".config", "grind", "grind.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database not created at %s: %v", dbPath, err)
	}

	t.Log("Adding habits...")
	expectContains(t, runCmd(t, cliPath, env, "habit", "add", "Read"), "Added habit: Read")
	expectContains(t, runCmd(t, cliPath, env, "habit", "add", "Gym", "-f", "weekly", "-n", "3"), "3x per week")

	t.Log("Logging today...")
	runCmd(t, cliPath, env, "log", "set", "Read", "completed")
	out = runCmd(t, cliPath, env, "log", "set", "Gym", "completed")
	expectContains(t, out, "All habits completed today!")

	out = runCmd(t, cliPath, env, "today")
	expectContains(t, out, "2/2 completed")

	t.Log("Cycling a past day...")
	runCmd(t, cliPath, env, "log", "cycle", "Read", "--day", "yesterday")
	runCmd(t, cliPath, env, "history", "--days", "3")

	t.Log("Milestones and stats...")
	expectContains(t, runCmd(t, cliPath, env, "milestone", "add", "Sprint", "--start", "today", "--end", time.Now().UTC().AddDate(0, 0, 13).Format("2006-01-02")), "Sprint")
	expectContains(t, runCmd(t, cliPath, env, "stats"), "Sprint")

	t.Log("Archiving...")
	expectContains(t, runCmd(t, cliPath, env, "habit", "archive", "Gym"), "Archived habit: Gym")
	expectContains(t, runCmd(t, cliPath, env, "habit", "list", "--archived"), "Gym")

	t.Log("Backups...")
	expectContains(t, runCmd(t, cliPath, env, "backup", "create"), "Backup created")
	expectContains(t, runCmd(t, cliPath, env, "backup", "list"), "grind-")

	t.Log("Running doctor...")
	expectContains(t, runCmd(t, cliPath, env, "doctor"), "All diagnostics passed!")

	t.Log("Serving the API...")
	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server := exec.CommandContext(ctx, cliPath, "serve", "--addr", addr)
	server.Env = env
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer func() {
		cancel()
		_ = server.Wait()
	}()
	waitForHTTP(t, "http://"+addr+"/healthz", TEST_SERVER_TIMEOUT)

	resp, err := http.Get("http://" + addr + "/api/snapshot")
	if err != nil {
		t.Fatalf("GET /api/snapshot failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/snapshot status = %d", resp.StatusCode)
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

func expectContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve a port: %v", err)
	}
	defer l.Close()
	return l.Addr().String()
}

func waitForHTTP(t *testing.T, url string, timeout time.Duration) {
	t.Helper()
	start := time.Now()
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		if time.Since(start) > timeout {
			t.Fatalf("Timed out waiting for %s", url)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
