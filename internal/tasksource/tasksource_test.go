package tasksource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestReadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-vaccine.md", "---\nid: t2\ntitle: Vaccine\ncategory: Vaccine\n---\n\nRabies booster.\n")
	writeFile(t, dir, "a-feed.md", "---\nid: t1\ntitle: Feed\ncategory: food\ntime: \"08:00\"\n---\n")
	writeFile(t, dir, "c-brush.md", "---\ntitle: Brush\ncategory: grooming\ntime: 18:00\ncompleted: true\n---\n")
	writeFile(t, dir, "notes.txt", "ignored")

	tasks, err := ReadAll(dir)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}

	want := []snapshot.Task{
		{ID: "t1", Title: "Feed", Category: snapshot.CategoryFood, Time: "08:00"},
		{ID: "t2", Title: "Vaccine", Category: snapshot.CategoryVaccine},
		{ID: "c-brush", Title: "Brush", Category: snapshot.CategoryGrooming, Time: "18:00", Completed: true},
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Errorf("task %d = %+v, want %+v", i, tasks[i], want[i])
		}
	}
}

func TestReadAllMissingDir(t *testing.T) {
	tasks, err := ReadAll(filepath.Join(t.TempDir(), "absent"))
	if err != nil || tasks != nil {
		t.Errorf("ReadAll(missing) = %v, %v; want nil, nil", tasks, err)
	}
}

func TestReadAllStrictFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.md", "---\ntitle: Feed\n---\n")
	writeFile(t, dir, "bad.md", "no frontmatter here")

	if _, err := ReadAll(dir); err == nil || !strings.Contains(err.Error(), "bad.md") {
		t.Errorf("ReadAll error = %v, want one naming bad.md", err)
	}
}

func TestReadAllLenient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1.md", "---\nid: walk\ntitle: Walk\n---\n")
	writeFile(t, dir, "2.md", "---\nid: walk\ntitle: Walk again\n---\n")
	writeFile(t, dir, "3.md", "---\ntitle: [unclosed\n---\n")
	writeFile(t, dir, "4.md", "---\nid: no-title\n---\n")
	writeFile(t, dir, "5.md", "---\ntitle: Pills\ncategory: medicine\n")

	tasks, warnings, err := ReadAllLenient(dir)
	if err != nil {
		t.Fatalf("ReadAllLenient: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "walk" || tasks[0].Title != "Walk" {
		t.Errorf("tasks = %+v", tasks)
	}
	if len(warnings) != 4 {
		t.Fatalf("got %d warnings, want 4: %v", len(warnings), warnings)
	}
	if warnings[0].File != "2.md" || !strings.Contains(warnings[0].Err.Error(), "duplicate") {
		t.Errorf("first warning = %s: %v", warnings[0].File, warnings[0].Err)
	}
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	e := &Entry{
		Task:  snapshot.Task{ID: "t1", Title: "Feed", Category: snapshot.CategoryFood, Time: "08:00"},
		Notes: "Half a cup.",
	}
	path := filepath.Join(dir, FileName(e.Task))
	if err := Write(path, e); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "t1.md" {
		t.Errorf("FileName = %s", filepath.Base(path))
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Task != e.Task || got.Notes != "Half a cup.\n" {
		t.Errorf("Read = %+v", got)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Morning Walk!":         "morning-walk",
		"  --vet 2pm--  ":       "vet-2pm",
		strings.Repeat("a", 60): strings.Repeat("a", 50),
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
