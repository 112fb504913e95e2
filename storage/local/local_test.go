package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/minutes/storage"
)

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := storage.WriteAll(ctx, s, "meetings/a.json", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if err := storage.WriteAll(ctx, s, "meetings/a.json", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("overwrite error: %v", err)
	}
	data, err := storage.ReadAll(ctx, s, "meetings/a.json")
	if err != nil || string(data) != `{"v":2}` {
		t.Errorf("ReadAll() = %s, %v", data, err)
	}

	ok, err := s.Exists(ctx, "meetings/a.json")
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v", ok, err)
	}
	if ok, _ := s.Exists(ctx, "meetings"); ok {
		t.Error("directories are not objects")
	}

	if err := s.Delete(ctx, "meetings/a.json"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "meetings/a.json"); err != nil {
		t.Errorf("deleting a missing file should succeed, got %v", err)
	}
	if _, err := s.Download(ctx, "meetings/a.json"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStorage_CannotEscapeRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	base := filepath.Join(root, "base")
	s, err := NewStorage(base)
	if err != nil {
		t.Fatal(err)
	}

	if err := storage.WriteAll(ctx, s, "../../escaped.json", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "escaped.json")); !os.IsNotExist(err) {
		t.Error("upload escaped the base path")
	}
	if _, err := os.Stat(filepath.Join(base, "escaped.json")); err != nil {
		t.Errorf("expected file inside base path: %v", err)
	}
}

func TestStorage_List(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"b_transcript_1.json", "a_transcript_1.json", "a_analysis_1.json", "nested/c.json"} {
		if err := storage.WriteAll(ctx, s, p, []byte(p)); err != nil {
			t.Fatal(err)
		}
	}

	files, err := s.List(ctx, "a_")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Path != "a_analysis_1.json" || files[1].Path != "a_transcript_1.json" {
		t.Errorf("List(a_) = %+v", files)
	}

	all, _ := s.List(ctx, "")
	if len(all) != 4 {
		t.Errorf("List() = %+v", all)
	}
	for _, f := range all {
		if strings.Contains(f.Path, ".upload-") {
			t.Errorf("temporary file listed: %s", f.Path)
		}
		if f.Size != int64(len(f.Path)) {
			t.Errorf("size of %s = %d", f.Path, f.Size)
		}
	}
}
