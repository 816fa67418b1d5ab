package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/twiced-technology-gmbh/pawglance/internal/config"
	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
	"github.com/twiced-technology-gmbh/pawglance/internal/tasksource"
)

func TestPublishDryRunSkipsSharedStore(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Init(dir, "Tekir")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	// A regular file where the store directory should be makes the shared
	// store impossible to open.
	if err := os.WriteFile(filepath.Join(dir, "blocked"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.Store.Dir = "blocked"
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	task := snapshot.Task{ID: "feed", Title: "Feed", Time: "08:00"}
	if err := tasksource.Write(filepath.Join(cfg.TasksPath(), tasksource.FileName(task)),
		&tasksource.Entry{Task: task}); err != nil {
		t.Fatal(err)
	}

	oldDir := flagDir
	flagDir = dir
	t.Cleanup(func() { flagDir = oldDir })

	if e, err := openEnv(); err == nil {
		e.close()
		t.Fatal("shared store opened; the test setup should make it unusable")
	}
	if err := runPublishDryRun(); err != nil {
		t.Errorf("dry run touched the shared store: %v", err)
	}
}
