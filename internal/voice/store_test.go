package voice

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeStyleFixture(t *testing.T, dir string, id ID) {
	t.Helper()

	content := `{
		"style_ttl": {"dims": [1, 2, 2], "data": [[[1, 2], [3, 4]]]},
		"style_dp": {"dims": [1, 1, 3], "data": [[[5, 6, 7]]]}
	}`

	path := filepath.Join(dir, string(id)+".json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestStore_ResolveAndCache(t *testing.T) {
	dir := t.TempDir()
	writeStyleFixture(t, dir, F1)

	store := NewStore(dir)

	style, err := store.Resolve(F1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(style.StyleTTL.Dims) != 3 || style.StyleTTL.Dims[0] != 1 {
		t.Errorf("unexpected style_ttl dims: %v", style.StyleTTL.Dims)
	}

	wantTTL := []float32{1, 2, 3, 4}
	if len(style.StyleTTL.Data) != len(wantTTL) {
		t.Fatalf("style_ttl data length = %d, want %d", len(style.StyleTTL.Data), len(wantTTL))
	}
	for i, v := range wantTTL {
		if style.StyleTTL.Data[i] != v {
			t.Errorf("style_ttl data[%d] = %v, want %v (nested array not flattened row-major)", i, style.StyleTTL.Data[i], v)
		}
	}

	wantDP := []float32{5, 6, 7}
	if len(style.StyleDP.Data) != len(wantDP) {
		t.Fatalf("style_dp data length = %d, want %d", len(style.StyleDP.Data), len(wantDP))
	}
	for i, v := range wantDP {
		if style.StyleDP.Data[i] != v {
			t.Errorf("style_dp data[%d] = %v, want %v", i, style.StyleDP.Data[i], v)
		}
	}

	// Remove the backing file; a cached resolve must still succeed.
	if err := os.Remove(filepath.Join(dir, string(F1)+".json")); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}

	again, err := store.Resolve(F1)
	if err != nil {
		t.Fatalf("Resolve from cache: %v", err)
	}

	if again != style {
		t.Errorf("expected cached pointer identity, got a different value")
	}
}

func TestStore_RejectsDimsShapeMismatch(t *testing.T) {
	dir := t.TempDir()

	// dims claims a 2x2 style_ttl but the nested data is only 1x2.
	content := `{
		"style_ttl": {"dims": [1, 2, 2], "data": [[[1, 2]]]},
		"style_dp": {"dims": [1, 1, 3], "data": [[[5, 6, 7]]]}
	}`

	path := filepath.Join(dir, string(F2)+".json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewStore(dir)

	_, err := store.Resolve(F2)
	if err == nil {
		t.Fatal("expected error for dims/data shape mismatch")
	}
}

func TestStore_UnknownVoice(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Resolve(ID("X9"))
	if err == nil {
		t.Fatal("expected error for unknown voice identifier")
	}
}

func TestStore_ConcurrentResolveConverges(t *testing.T) {
	dir := t.TempDir()
	writeStyleFixture(t, dir, M1)

	store := NewStore(dir)

	var wg sync.WaitGroup

	results := make([]*Style, 16)

	for i := range results {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			style, err := store.Resolve(M1)
			if err != nil {
				t.Errorf("Resolve: %v", err)
				return
			}

			results[i] = style
		}(i)
	}

	wg.Wait()

	for i, r := range results {
		if r != results[0] {
			t.Errorf("result[%d] pointer differs from result[0]; cache did not converge", i)
		}
	}
}
