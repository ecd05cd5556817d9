package chat

import "testing"

func TestCycleModelWraps(t *testing.T) {
	s, _, _ := newTestState()
	if got := s.CycleModel(1); got != "gpt-4.1" {
		t.Fatalf("CycleModel(1) = %q", got)
	}
	if got := s.CycleModel(-2); got != "gpt-4o" {
		t.Fatalf("CycleModel(-2) = %q", got)
	}
	if got := s.CycleModel(1); got != "gemini-2.0-flash" {
		t.Fatalf("CycleModel(1) = %q", got)
	}
}

func TestCycledModelIsUsedForNextRequest(t *testing.T) {
	s, d, _ := newTestState()
	want := s.CycleModel(-1)
	s.Send("x")
	if d.submitted[0].Model != want {
		t.Fatalf("request model = %q, want %q", d.submitted[0].Model, want)
	}
}

func TestNewAddsUnlistedDefaultModel(t *testing.T) {
	s := New(Options{Models: []string{"a", "a", " ", "b"}, Model: "c"})
	models := s.Models()
	if len(models) != 3 || models[2] != "c" || s.Model() != "c" {
		t.Fatalf("models = %v model = %q", models, s.Model())
	}
}

func TestResolveModel(t *testing.T) {
	models := []string{"gemini-2.0-flash", "gpt-4.1", "gpt-4o-mini", "gpt-4o"}
	cases := []struct {
		query string
		want  string
		ok    bool
	}{
		{query: "GPT-4o", want: "gpt-4o", ok: true},
		{query: "gemini", want: "gemini-2.0-flash", ok: true},
		{query: "4o-mini", want: "gpt-4o-mini", ok: true},
		{query: "zzz", ok: false},
		{query: " ", ok: false},
	}
	for _, tc := range cases {
		got, ok := ResolveModel(models, tc.query)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ResolveModel(%q) = %q, %v; want %q, %v", tc.query, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseAwaitingHistory.String() != "awaiting_history" || Phase(42).String() != "unknown" {
		t.Fatalf("unexpected phase strings")
	}
}
