// Package tasksource reads the "relevant today" task set exported by the
// main application: one markdown file per task with YAML frontmatter.
package tasksource

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
)

const (
	fileMode      = 0o600
	ext           = ".md"
	maxSlugLength = 50
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Entry is one parsed task file.
type Entry struct {
	snapshot.Task `yaml:",inline"`

	// Notes is the markdown below the frontmatter. Not published.
	Notes string `yaml:"-"`
	// File is the path the entry was read from.
	File string `yaml:"-"`
}

// Read parses one task file. A missing id defaults to the file name without
// its extension. The category is normalized.
func Read(path string) (*Entry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the configured tasks dir
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}

	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var e Entry
	if err := yaml.Unmarshal(fm, &e); err != nil {
		return nil, fmt.Errorf("parsing frontmatter in %s: %w", path, err)
	}
	if e.ID == "" {
		e.ID = strings.TrimSuffix(filepath.Base(path), ext)
	}
	if strings.TrimSpace(e.Title) == "" {
		return nil, fmt.Errorf("%s: title is required", path)
	}
	e.Time = strings.TrimSpace(e.Time)
	e.Category = snapshot.NormalizeCategory(string(e.Category))
	e.Notes = body
	e.File = path

	return &e, nil
}

// Write serializes an entry to a markdown file with YAML frontmatter.
func Write(path string, e *Entry) error {
	fm, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	if e.Notes != "" {
		buf.WriteString("\n")
		buf.WriteString(e.Notes)
		if !strings.HasSuffix(e.Notes, "\n") {
			buf.WriteString("\n")
		}
	}

	return os.WriteFile(path, buf.Bytes(), fileMode)
}

// FileName returns the file name Write should use for t.
func FileName(t snapshot.Task) string {
	slug := Slug(t.ID)
	if slug == "" {
		slug = Slug(t.Title)
	}
	return slug + ext
}

// Slug converts s to a lowercase, hyphenated file-name stem.
func Slug(s string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// Warning describes a file skipped during lenient reading.
type Warning struct {
	File string // base filename
	Err  error
}

// ReadAll reads every task file in dir in file-name order. The first
// malformed file aborts the read. A missing dir yields no tasks.
func ReadAll(dir string) ([]snapshot.Task, error) {
	tasks, warnings, err := read(dir)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		return nil, fmt.Errorf("reading %s: %w", warnings[0].File, warnings[0].Err)
	}
	return tasks, nil
}

// ReadAllLenient reads every task file in dir, skipping malformed files and
// duplicate ids. Skipped files are reported as warnings.
func ReadAllLenient(dir string) ([]snapshot.Task, []Warning, error) {
	return read(dir)
}

func read(dir string) ([]snapshot.Task, []Warning, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var tasks []snapshot.Task
	var warnings []Warning
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}

		e, readErr := Read(filepath.Join(dir, entry.Name()))
		if readErr != nil {
			warnings = append(warnings, Warning{File: entry.Name(), Err: readErr})
			continue
		}
		if first, dup := seen[e.ID]; dup {
			warnings = append(warnings, Warning{
				File: entry.Name(),
				Err:  fmt.Errorf("duplicate id %q (already used by %s)", e.ID, first),
			})
			continue
		}
		seen[e.ID] = entry.Name()
		tasks = append(tasks, e.Task)
	}

	return tasks, warnings, nil
}

// splitFrontmatter splits a markdown file into YAML frontmatter and body.
func splitFrontmatter(data []byte) ([]byte, string, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(content, "---\n") {
		return nil, "", errors.New("file does not start with YAML frontmatter (---)")
	}

	rest := content[4:]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		if !strings.HasSuffix(rest, "\n---") {
			return nil, "", errors.New("unclosed frontmatter (missing closing ---)")
		}
		idx = len(rest) - len("\n---")
	}

	fm := rest[:idx]
	body := ""
	if closingEnd := idx + len("\n---\n"); closingEnd < len(rest) {
		body = strings.TrimLeft(rest[closingEnd:], "\n")
	}

	return []byte(fm), body, nil
}
