package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple", "types.go", false},
		{"nested", "pkga/dog.go", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"windows drive", `C:\temp\x.go`, true},
		{"traversal", "../escape.go", true},
		{"embedded traversal", "a/../b.go", true},
		{"unclean", "a//b.go", true},
		{"dot prefix", "./a.go", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestFilesystemSink_WriteFile(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root)

	content := []byte("package pkga\n")
	if err := s.WriteFile(context.Background(), "pkga/dog.go", content); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "pkga", "dog.go"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("file content = %q, want %q", got, content)
	}

	// Overwrites are atomic replacements.
	if err := s.WriteFile(context.Background(), "pkga/dog.go", []byte("v2")); err != nil {
		t.Fatalf("second WriteFile() error = %v", err)
	}
	got, _ = os.ReadFile(filepath.Join(root, "pkga", "dog.go"))
	if string(got) != "v2" {
		t.Errorf("file content after overwrite = %q, want v2", got)
	}
}

func TestFilesystemSink_RejectsEscape(t *testing.T) {
	s := NewFilesystemSink(t.TempDir())
	if err := s.WriteFile(context.Background(), "../outside.go", []byte("x")); err == nil {
		t.Fatal("WriteFile() escaped the root, want error")
	}
}

func TestMemorySink(t *testing.T) {
	s := NewMemorySink()
	if err := s.WriteFile(context.Background(), "a.go", []byte("one")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if got := s.Get("a.go"); string(got) != "one" {
		t.Errorf("Get() = %q, want one", got)
	}
	if got := s.Get("missing.go"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}

	files := s.Files()
	if len(files) != 1 {
		t.Errorf("Files() = %d entries, want 1", len(files))
	}

	// Returned slices are copies.
	files["a.go"][0] = 'X'
	if got := s.Get("a.go"); string(got) != "one" {
		t.Errorf("Get() after external mutation = %q, want one", got)
	}
}

func TestSink_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewMemorySink().WriteFile(ctx, "a.go", []byte("x")); err == nil {
		t.Error("MemorySink.WriteFile() with canceled context succeeded")
	}
	if err := NewFilesystemSink(t.TempDir()).WriteFile(ctx, "a.go", []byte("x")); err == nil {
		t.Error("FilesystemSink.WriteFile() with canceled context succeeded")
	}
}
