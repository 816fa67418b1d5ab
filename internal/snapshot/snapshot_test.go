package snapshot

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func ids(tasks []Task) string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return strings.Join(out, ",")
}

func TestOrderIncompleteTimedUntimedCompleted(t *testing.T) {
	tasks := []Task{
		{ID: "C", Title: "Brush", Time: "08:00", Completed: true},
		{ID: "B", Title: "Vaccine"},
		{ID: "A", Title: "Feed", Time: "09:00"},
	}

	got := ids(Order(tasks))
	if got != "A,B,C" {
		t.Errorf("Order = %s, want A,B,C", got)
	}
	if tasks[0].ID != "C" {
		t.Error("Order modified its input")
	}
}

func TestOrderTimeAndTies(t *testing.T) {
	tasks := []Task{
		{ID: "t5", Title: "x", Completed: true},
		{ID: "t4", Title: "x", Time: "18:00", Completed: true},
		{ID: "t3", Title: "x"},
		{ID: "t2", Title: "x", Time: "9:30"},
		{ID: "t1", Title: "x", Time: "09:30"},
		{ID: "t0", Title: "x", Time: "07:15"},
		{ID: "t6", Title: "x", Time: "later"},
	}

	got := ids(Order(tasks))
	want := "t0,t1,t2,t3,t6,t4,t5"
	if got != want {
		t.Errorf("Order = %s, want %s", got, want)
	}
}

func TestOrderDeterministic(t *testing.T) {
	a := []Task{{ID: "b", Title: "x"}, {ID: "a", Title: "x"}}
	b := []Task{{ID: "a", Title: "x"}, {ID: "b", Title: "x"}}
	if ids(Order(a)) != ids(Order(b)) {
		t.Errorf("ordering depends on input order: %s vs %s", ids(Order(a)), ids(Order(b)))
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"08:00", 480, true},
		{"8:05", 485, true},
		{"23:59", 1439, true},
		{"00:00", 0, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"", 0, false},
		{"noon", 0, false},
		{"+1:00", 0, false},
		{"1:5", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseClock(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseClock(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCountPending(t *testing.T) {
	tasks := []Task{
		{ID: "a", Completed: false},
		{ID: "b", Completed: true},
		{ID: "c", Completed: false},
	}
	if got := CountPending(tasks); got != 2 {
		t.Errorf("CountPending = %d, want 2", got)
	}
}

func TestEncodeDecodeLayout(t *testing.T) {
	s := &Snapshot{
		Version: CurrentVersion,
		Tasks: []Task{
			{ID: "t1", Title: "Feed", Category: CategoryFood, Time: "08:00"},
		},
		PendingCount: 1,
		DisplayName:  "Tekir",
		GeneratedAt:  time.Date(2026, 10, 19, 8, 0, 0, 500, time.UTC),
	}

	data, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, field := range []string{`"todayTasks"`, `"pendingCount":1`, `"lastUpdate":"2026-10-19T08:00:00Z"`, `"type":"food"`, `"isCompleted":false`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("encoded snapshot missing %s: %s", field, data)
		}
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.GeneratedAt.Equal(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("GeneratedAt = %v, want second precision", got.GeneratedAt)
	}
	if got.DisplayName != "Tekir" || got.PendingCount != 1 || len(got.Tasks) != 1 {
		t.Errorf("Decode = %+v", got)
	}
}

func TestDecodeTolerant(t *testing.T) {
	data := `{
		"todayTasks": [{"id": "t1", "title": "Walk", "type": "exercise", "extra": 1}],
		"pendingCount": 1,
		"lastUpdate": "2026-10-19T07:30:00",
		"futureField": {"nested": true}
	}`

	s, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Tasks[0].Category != "exercise" || s.Tasks[0].Category.Known() {
		t.Errorf("unknown category not preserved: %q", s.Tasks[0].Category)
	}
	if s.Tasks[0].HasTime() {
		t.Error("absent time decoded as present")
	}
	if s.DisplayName != "" {
		t.Errorf("DisplayName = %q, want empty", s.DisplayName)
	}
	if s.GeneratedAt.Hour() != 7 || s.GeneratedAt.Location() != time.UTC {
		t.Errorf("legacy timestamp parsed as %v", s.GeneratedAt)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":         `{"todayTasks": [`,
		"wrong type":       `{"todayTasks": "nope"}`,
		"negative pending": `{"todayTasks": [], "pendingCount": -1}`,
		"bad timestamp":    `{"todayTasks": [], "lastUpdate": "yesterday"}`,
		"missing id":       `{"todayTasks": [{"title": "x"}], "pendingCount": 1}`,
		"missing title":    `{"todayTasks": [{"id": "x"}], "pendingCount": 1}`,
		"pending too low":  `{"todayTasks": [{"id": "a", "title": "x"}], "pendingCount": 0}`,
		"empty input":      ``,
		"null document":    `null`,
		"empty object":     `{}`,
		"null tasks":       `{"todayTasks": null, "pendingCount": 0}`,
		"renamed fields":   `{"tasks": [{"id": "t1", "title": "Feed"}], "pending": 1}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	if got := NormalizeCategory("  Vaccine "); got != CategoryVaccine {
		t.Errorf("NormalizeCategory = %q", got)
	}
	if got := NormalizeCategory(""); got != CategoryOther {
		t.Errorf("NormalizeCategory(\"\") = %q, want other", got)
	}
}

func TestHasTimeMatchesOrder(t *testing.T) {
	tests := map[string]bool{
		"08:00": true,
		"9:30":  true,
		"":      false,
		"8am":   false,
		"25:00": false,
	}
	for in, want := range tests {
		if got := (Task{Time: in}).HasTime(); got != want {
			t.Errorf("HasTime(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestEncodeNilTasksDecodes(t *testing.T) {
	data, err := Encode(&Snapshot{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), `"todayTasks":[]`) {
		t.Errorf("nil tasks encoded as %s", data)
	}
	if _, err := Decode(data); err != nil {
		t.Errorf("Decode of zero-task snapshot: %v", err)
	}
}
