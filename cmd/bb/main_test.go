package main

import (
	"os"
	"sync"
	"testing"

	"betboard/internal/config"
	"betboard/internal/db"
	"betboard/internal/queue"
)

var cliOnce sync.Once

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cliOnce.Do(func() {
		addPersistentFlags()
		registerCommands()
	})
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writeWorkspaceConfig(t *testing.T, workspace, offlineQueue string) {
	t.Helper()
	yml := `board:
  name: testboard
  seed_users:
    - Steve P

remote:
  base_url: http://127.0.0.1:1
  timeout_seconds: 1
  offline_queue: ` + offlineQueue + `
`
	if err := os.WriteFile(config.Path(workspace), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
}

func createArgs(workspace string) []string {
	return []string{
		"--workspace", workspace,
		"bet", "create",
		"--owner", "Steve P",
		"--what", "Ship the importer",
		"--why", "Unblocks reporting",
		"--how", "Pair on it for a week",
		"--when", "2026-09-30",
	}
}

func TestBetCreateQueuesWhenRemoteUnreachable(t *testing.T) {
	workspace := t.TempDir()
	writeWorkspaceConfig(t, workspace, "true")

	if err := runCLI(t, createArgs(workspace)...); err != nil {
		t.Fatalf("bet create: %v", err)
	}

	q, err := queue.Open(db.QueuePath(workspace))
	if err != nil {
		t.Fatalf("open queue: %v", err)
	}
	defer q.Close()
	actions, err := q.Batch(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 {
		t.Fatalf("queued actions = %d, want 1", len(actions))
	}
	if actions[0].Type != queue.TypeCreate {
		t.Errorf("action type = %s, want %s", actions[0].Type, queue.TypeCreate)
	}
	if actions[0].Endpoint != "bets" {
		t.Errorf("action endpoint = %s, want bets", actions[0].Endpoint)
	}
}

func TestBetCreateFailsWhenOfflineQueueDisabled(t *testing.T) {
	workspace := t.TempDir()
	writeWorkspaceConfig(t, workspace, "false")

	if err := runCLI(t, createArgs(workspace)...); err == nil {
		t.Fatal("expected an error when the remote is down and the queue is disabled")
	}

	q, err := queue.Open(db.QueuePath(workspace))
	if err != nil {
		t.Fatalf("open queue: %v", err)
	}
	defer q.Close()
	n, err := q.Len()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("queue length = %d, want 0", n)
	}
}

func TestBetCreateSkipsMirrorWithoutRemote(t *testing.T) {
	workspace := t.TempDir()

	if err := runCLI(t, createArgs(workspace)...); err != nil {
		t.Fatalf("bet create: %v", err)
	}
	if _, err := os.Stat(db.QueuePath(workspace)); !os.IsNotExist(err) {
		t.Errorf("queue database should not exist without a remote, stat err = %v", err)
	}
}
