package golang

import "testing"

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"volume", "volume"},
		{"type", "type_"},
		{"func", "func_"},
		{"interface", "interface_"},
		{"3d", "_3d"},
		{"foo-bar", "foo_bar"},
		{"", "_"},
		{"runtime", "runtime_"},
	}
	for _, tt := range tests {
		if got := sanitizeIdentifier(tt.in); got != tt.want {
			t.Errorf("sanitizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bark", "Bark"},
		{"Bark", "Bark"},
		{"_internal", "Internal"},
		{"type", "Type_"},
	}
	for _, tt := range tests {
		if got := exportName(tt.in); got != tt.want {
			t.Errorf("exportName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScopeReserve(t *testing.T) {
	s := NewScope("args")

	if got := s.Reserve("volume"); got != "volume" {
		t.Errorf("Reserve(volume) = %q, want volume", got)
	}
	// Taken names disambiguate with trailing underscores.
	if got := s.Reserve("volume"); got != "volume_" {
		t.Errorf("second Reserve(volume) = %q, want volume_", got)
	}
	if got := s.Reserve("volume"); got != "volume__" {
		t.Errorf("third Reserve(volume) = %q, want volume__", got)
	}
	if got := s.Reserve("args"); got != "args_" {
		t.Errorf("Reserve(args) = %q, want args_", got)
	}
	// Reserved words escape before disambiguation.
	if got := s.Reserve("range"); got != "range_" {
		t.Errorf("Reserve(range) = %q, want range_", got)
	}
}

func TestScopeReserve_Deterministic(t *testing.T) {
	run := func() []string {
		s := NewScope()
		return []string{s.Reserve("x"), s.Reserve("x"), s.Reserve("type"), s.Reserve("type_")}
	}
	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Reserve sequence diverged at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestScopeChild(t *testing.T) {
	parent := NewScope("v")
	child := parent.Child()
	if got := child.Reserve("v"); got != "v_" {
		t.Errorf("child Reserve(v) = %q, want v_", got)
	}
	// Child reservations do not leak back into the parent.
	if got := parent.Reserve("v_"); got != "v_" {
		t.Errorf("parent Reserve(v_) = %q, want v_", got)
	}
}
