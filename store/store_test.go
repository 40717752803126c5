package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func setupStore(t *testing.T) (*Store, string) {
	t.Helper()
	s := New()
	t.Cleanup(func() { s.Locker().ReleaseAll() })
	return s, t.TempDir()
}

func TestSaveLoadBytes(t *testing.T) {
	s, dir := setupStore(t)
	path := filepath.Join(dir, "data.mk")

	content := []byte("some raw payload\n")
	if err := s.SaveBytes(path, content, 0o660); err != nil {
		t.Fatalf("SaveBytes failed: %v", err)
	}

	got, err := s.LoadBytes(path, nil, false)
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("LoadBytes = %q, want %q", got, content)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o660 {
		t.Errorf("file mode = %o, want 660", perm)
	}
}

func TestLoadDefaults(t *testing.T) {
	s, dir := setupStore(t)

	t.Run("missing file", func(t *testing.T) {
		got, err := s.LoadText(filepath.Join(dir, "absent.mk"), "fallback", false)
		if err != nil {
			t.Fatalf("LoadText failed: %v", err)
		}
		if got != "fallback" {
			t.Errorf("LoadText = %q, want the default", got)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.mk")
		if err := os.WriteFile(path, nil, 0o660); err != nil {
			t.Fatal(err)
		}
		got, err := s.LoadBytes(path, []byte("def"), false)
		if err != nil {
			t.Fatalf("LoadBytes failed: %v", err)
		}
		if string(got) != "def" {
			t.Errorf("LoadBytes = %q, want the default", got)
		}
	})

	t.Run("missing object", func(t *testing.T) {
		def := map[string]any{"hosts": []any{}}
		got, err := s.LoadObject(filepath.Join(dir, "absent.mk"), def, false)
		if err != nil {
			t.Fatalf("LoadObject failed: %v", err)
		}
		if !reflect.DeepEqual(got, def) {
			t.Errorf("LoadObject = %#v, want the default", got)
		}
	})
}

func TestSaveLoadObject(t *testing.T) {
	s, dir := setupStore(t)
	path := filepath.Join(dir, "object.mk")

	value := map[string]any{"a": 1, "b": []any{1, 2, 3}}
	if err := s.SaveObject(path, value, true); err != nil {
		t.Fatalf("SaveObject failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Error("rendered object should end with a newline")
	}

	got, err := s.LoadObject(path, nil, false)
	if err != nil {
		t.Fatalf("LoadObject failed: %v", err)
	}
	if !reflect.DeepEqual(got, value) {
		t.Errorf("round trip = %#v, want %#v", got, value)
	}
}

func TestLoadObjectParseError(t *testing.T) {
	s, dir := setupStore(t)
	path := filepath.Join(dir, "broken.mk")
	if err := os.WriteFile(path, []byte("{'a': @}"), 0o660); err != nil {
		t.Fatal(err)
	}

	_, err := s.LoadObject(path, nil, false)
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("LoadObject error = %v, want a *ReadError", err)
	}
	if !filepath.IsAbs(readErr.Path) {
		t.Errorf("ReadError.Path = %q, want a resolved path", readErr.Path)
	}
}

func TestSaveToMKFileAndLoadBack(t *testing.T) {
	s, dir := setupStore(t)

	t.Run("list variable concatenates onto the default", func(t *testing.T) {
		path := filepath.Join(dir, "groups.mk")
		if err := s.SaveToMKFile(path, "groups", []any{"linux", "windows"}, false); err != nil {
			t.Fatalf("SaveToMKFile failed: %v", err)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(raw), "# Written by mkstore\n") {
			t.Errorf("missing generator header, got %q", raw)
		}

		got, err := s.LoadFromMKFile(path, "groups", []any{"default"})
		if err != nil {
			t.Fatalf("LoadFromMKFile failed: %v", err)
		}
		want := []any{"default", "linux", "windows"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("LoadFromMKFile = %#v, want %#v", got, want)
		}
	})

	t.Run("map variable merges into the default", func(t *testing.T) {
		path := filepath.Join(dir, "attrs.mk")
		if err := s.SaveToMKFile(path, "attrs", map[string]any{"site": "central"}, false); err != nil {
			t.Fatalf("SaveToMKFile failed: %v", err)
		}

		got, err := s.LoadFromMKFile(path, "attrs", map[string]any{"tier": 1})
		if err != nil {
			t.Fatalf("LoadFromMKFile failed: %v", err)
		}
		want := map[string]any{"tier": 1, "site": "central"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("LoadFromMKFile = %#v, want %#v", got, want)
		}
	})
}

func TestLoadFromMKFileWithoutTypedDefault(t *testing.T) {
	s, dir := setupStore(t)

	// Reading back without knowing the variable's type must work for both
	// statement forms SaveToMKFile emits.
	t.Run("list", func(t *testing.T) {
		path := filepath.Join(dir, "untyped_list.mk")
		if err := s.SaveToMKFile(path, "groups", []any{"linux"}, false); err != nil {
			t.Fatalf("SaveToMKFile failed: %v", err)
		}
		got, err := s.LoadFromMKFile(path, "groups", nil)
		if err != nil {
			t.Fatalf("LoadFromMKFile failed: %v", err)
		}
		if !reflect.DeepEqual(got, []any{"linux"}) {
			t.Errorf("LoadFromMKFile = %#v, want [linux]", got)
		}
	})

	t.Run("map", func(t *testing.T) {
		path := filepath.Join(dir, "untyped_map.mk")
		if err := s.SaveToMKFile(path, "attrs", map[string]any{"site": "central"}, false); err != nil {
			t.Fatalf("SaveToMKFile failed: %v", err)
		}
		got, err := s.LoadFromMKFile(path, "attrs", nil)
		if err != nil {
			t.Fatalf("LoadFromMKFile failed: %v", err)
		}
		if !reflect.DeepEqual(got, map[string]any{"site": "central"}) {
			t.Errorf("LoadFromMKFile = %#v, want the stored mapping", got)
		}
	})
}

func TestLoadMKFileRequiresDefaults(t *testing.T) {
	s, dir := setupStore(t)
	if _, err := s.LoadMKFile(filepath.Join(dir, "x.mk"), nil, false); err == nil {
		t.Fatal("LoadMKFile with nil defaults should fail")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s, dir := setupStore(t)
	path := filepath.Join(dir, "data.mk")

	if err := s.SaveText(path, "content", 0o660); err != nil {
		t.Fatalf("SaveText failed: %v", err)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".data.mk.new*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestFailedSaveLeavesNoTempFile(t *testing.T) {
	s, dir := setupStore(t)

	// A directory at the target path makes the save fail.
	path := filepath.Join(dir, "target")
	if err := os.Mkdir(path, 0o770); err != nil {
		t.Fatal(err)
	}

	err := s.SaveText(path, "content", 0o660)
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("SaveText error = %v, want a *WriteError", err)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".target.new*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind after failed save: %v", leftovers)
	}
}

func TestConcurrentReadersSeeWholeFiles(t *testing.T) {
	s, dir := setupStore(t)
	path := filepath.Join(dir, "data.mk")

	const size = 8192
	contents := [][]byte{
		bytes.Repeat([]byte{'a'}, size),
		bytes.Repeat([]byte{'b'}, size),
	}
	if err := s.SaveBytes(path, contents[0], 0o660); err != nil {
		t.Fatalf("initial SaveBytes failed: %v", err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				data, err := os.ReadFile(path)
				if err != nil {
					t.Errorf("read failed: %v", err)
					return
				}
				if len(data) != size {
					t.Errorf("torn read: got %d bytes, want %d", len(data), size)
					return
				}
				for _, b := range data[1:] {
					if b != data[0] {
						t.Errorf("torn read: mixed content %q and %q", data[0], b)
						return
					}
				}
			}
		}()
	}

	writer := New()
	for i := 0; i < 50; i++ {
		if err := writer.SaveBytes(path, contents[i%2], 0o660); err != nil {
			t.Fatalf("SaveBytes failed: %v", err)
		}
	}
	close(done)
	wg.Wait()
}
