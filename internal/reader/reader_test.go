package reader

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/pawglance/internal/metrics"
	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
	"github.com/twiced-technology-gmbh/pawglance/internal/store"
	"github.com/twiced-technology-gmbh/pawglance/internal/writer"
)

var generated = time.Date(2026, 10, 19, 6, 30, 0, 0, time.UTC)

func encode(t *testing.T, s *snapshot.Snapshot) []byte {
	t.Helper()
	data, err := snapshot.Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func fiveTasks() *snapshot.Snapshot {
	s := &snapshot.Snapshot{Version: snapshot.CurrentVersion, GeneratedAt: generated}
	for _, id := range []string{"t1", "t2", "t3", "t4", "t5"} {
		s.Tasks = append(s.Tasks, snapshot.Task{ID: id, Title: "Task " + id})
	}
	s.PendingCount = 5
	return s
}

func TestDeriveTruncates(t *testing.T) {
	m := Derive(encode(t, fiveTasks()), 3)

	if m.State != StateReady {
		t.Fatalf("State = %s, want ready", m.State)
	}
	if len(m.Items) != 3 || m.Overflow != 2 {
		t.Errorf("visible=%d overflow=%d, want 3 and 2", len(m.Items), m.Overflow)
	}
	if m.Items[0].ID != "t1" || m.Items[2].ID != "t3" {
		t.Errorf("visible rows are not the stored prefix: %+v", m.Items)
	}
	if m.PendingCount != 5 {
		t.Errorf("PendingCount = %d, want 5 carried through", m.PendingCount)
	}
	if got := m.OverflowLabel(); got != "+2 more" {
		t.Errorf("OverflowLabel = %q", got)
	}
}

func TestDeriveMaxItemsBounds(t *testing.T) {
	raw := encode(t, fiveTasks())
	tests := []struct {
		max      int
		visible  int
		overflow int
	}{
		{0, 0, 5},
		{-1, 0, 5},
		{5, 5, 0},
		{10, 5, 0},
	}
	for _, tt := range tests {
		m := Derive(raw, tt.max)
		if len(m.Items) != tt.visible || m.Overflow != tt.overflow {
			t.Errorf("max=%d: visible=%d overflow=%d, want %d and %d",
				tt.max, len(m.Items), m.Overflow, tt.visible, tt.overflow)
		}
	}
	if Derive(raw, 10).OverflowLabel() != "" {
		t.Error("OverflowLabel without overflow should be empty")
	}
}

func TestDeriveEmptyState(t *testing.T) {
	inputs := map[string][]byte{
		"absent":    nil,
		"empty":     {},
		"truncated": []byte(`{"todayTasks":[{"id":"t1","tit`),
		"garbage":   []byte("\x00\xff"),
		"invalid":   []byte(`{"todayTasks":[{"id":"a","title":"x"}],"pendingCount":0}`),
		"null":      []byte(`null`),
		"no fields": []byte(`{}`),
		"renamed":   []byte(`{"tasks":[{"id":"t1","title":"Feed"}],"pending":1}`),
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			m := Derive(raw, 3)
			if !m.Empty() || m.State != StateEmpty {
				t.Errorf("State = %s, want empty", m.State)
			}
			if m.NoTasks || m.AllDone {
				t.Error("EmptyState must not look like a valid zero-task snapshot")
			}
		})
	}
}

func TestDeriveZeroTasksIsNotEmptyState(t *testing.T) {
	m := Derive(encode(t, &snapshot.Snapshot{GeneratedAt: generated}), 3)
	if m.State != StateReady || !m.NoTasks || m.AllDone {
		t.Errorf("zero-task snapshot = %+v", m)
	}
}

func TestDeriveAllDone(t *testing.T) {
	s := &snapshot.Snapshot{Tasks: []snapshot.Task{{ID: "a", Title: "Walk", Completed: true}}}
	m := Derive(encode(t, s), 3)
	if !m.AllDone || m.NoTasks {
		t.Errorf("AllDone=%v NoTasks=%v", m.AllDone, m.NoTasks)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	raw := encode(t, fiveTasks())
	a := Derive(raw, 3, WithLocation(time.UTC))
	b := Derive(raw, 3, WithLocation(time.UTC))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("derive not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestDeriveDisplayFields(t *testing.T) {
	s := &snapshot.Snapshot{
		Tasks: []snapshot.Task{
			{ID: "a", Title: "Feed", Category: "food", Time: "08:00"},
			{ID: "b", Title: "Swim", Category: "hydrotherapy"},
			{ID: "c", Title: "Pill", Category: "Medicine"},
		},
		PendingCount: 3,
		DisplayName:  "Tekir",
		GeneratedAt:  generated,
	}
	istanbul := time.FixedZone("TRT", 3*60*60)
	m := Derive(encode(t, s), 3, WithLocation(istanbul))

	if m.Items[0].Text != "08:00 - Feed" || m.Items[1].Text != "Swim" {
		t.Errorf("texts = %q, %q", m.Items[0].Text, m.Items[1].Text)
	}
	if m.Items[1].Category != snapshot.CategoryOther || m.Items[1].Style != StyleFor(snapshot.CategoryOther) {
		t.Errorf("unknown category mapped to %q %+v", m.Items[1].Category, m.Items[1].Style)
	}
	if m.Items[2].Category != snapshot.CategoryMedicine {
		t.Errorf("category not normalized: %q", m.Items[2].Category)
	}
	if m.Updated != "09:30" {
		t.Errorf("Updated = %q, want 09:30", m.Updated)
	}
	if m.DisplayName != "Tekir" {
		t.Errorf("DisplayName = %q", m.DisplayName)
	}
}

func TestDeriveInvalidTimeShownUntimed(t *testing.T) {
	raw := []byte(`{"todayTasks":[{"id":"a","title":"Feed","time":"07:00"},{"id":"b","title":"Walk","time":"8am"}],"pendingCount":2}`)
	m := Derive(raw, 3)
	if m.State != StateReady || len(m.Items) != 2 {
		t.Fatalf("model = %+v", m)
	}
	if m.Items[1].Text != "Walk" || m.Items[1].Time != "" {
		t.Errorf("invalid time rendered: text=%q time=%q", m.Items[1].Text, m.Items[1].Time)
	}
}

func TestStyleForCoversEveryCategory(t *testing.T) {
	for _, c := range append(snapshot.Categories, "", "future-kind") {
		s := StyleFor(c)
		if s.Icon == "" || s.Color == "" {
			t.Errorf("StyleFor(%q) = %+v", c, s)
		}
	}
	if StyleFor(snapshot.CategoryVaccine) == StyleFor(snapshot.CategoryOther) {
		t.Error("vaccine should not use the fallback style")
	}
}

func TestEndToEnd(t *testing.T) {
	st := store.NewMemory()
	w, err := writer.New(st, "tekir", writer.WithClock(func() time.Time { return generated }))
	if err != nil {
		t.Fatal(err)
	}
	_, err = w.Publish(context.Background(), []snapshot.Task{
		{ID: "t1", Title: "Feed", Category: "food", Time: "08:00"},
		{ID: "t2", Title: "Vaccine", Category: "vaccine"},
		{ID: "t3", Title: "Brush", Category: "grooming", Time: "18:00", Completed: true},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	r, err := New(st, "tekir", WithDisplayLocation(time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	m := r.Load(context.Background(), 3)

	want := []struct {
		text      string
		completed bool
	}{
		{"08:00 - Feed", false},
		{"Vaccine", false},
		{"18:00 - Brush", true},
	}
	if len(m.Items) != len(want) {
		t.Fatalf("visible = %d items, want %d", len(m.Items), len(want))
	}
	for i, w := range want {
		if m.Items[i].Text != w.text || m.Items[i].Completed != w.completed {
			t.Errorf("item %d = %q completed=%v, want %q completed=%v",
				i, m.Items[i].Text, m.Items[i].Completed, w.text, w.completed)
		}
	}
	if m.PendingCount != 2 || m.Overflow != 0 {
		t.Errorf("pending=%d overflow=%d, want 2 and 0", m.PendingCount, m.Overflow)
	}
	if m.Updated != "06:30" {
		t.Errorf("Updated = %q", m.Updated)
	}
}

type brokenStore struct{ store.Store }

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.Join(store.ErrUnavailable, errors.New("disk gone"))
}

func TestLoadDegrades(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	_ = mem.Put(ctx, "bad", []byte("{"))

	tests := map[string]struct {
		st  store.Store
		key string
	}{
		"absent":      {mem, "missing"},
		"malformed":   {mem, "bad"},
		"unavailable": {brokenStore{mem}, "any"},
	}
	m := metrics.New()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := New(tt.st, tt.key, WithMetrics(m))
			if err != nil {
				t.Fatal(err)
			}
			if got := r.Load(ctx, 3); got.State != StateEmpty {
				t.Errorf("Load state = %s, want empty", got.State)
			}
		})
	}
}
