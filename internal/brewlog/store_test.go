package brewlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"brewlog/internal/database"
	"brewlog/internal/files"
	"brewlog/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

var dateComparer = cmp.Comparer(func(a, b models.Date) bool { return a.SameDay(b) })

type testEnv struct {
	store *Store
	kv    *database.MemoryStore
	fs    *files.OSFileSystem
	logs  *bytes.Buffer
	clock *fakeClock
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	fsys, err := files.NewOSFileSystem(filepath.Join(t.TempDir(), "documents"))
	if err != nil {
		t.Fatalf("NewOSFileSystem() error = %v", err)
	}
	env := &testEnv{
		kv:    database.NewMemoryStore(),
		fs:    fsys,
		logs:  &bytes.Buffer{},
		clock: &fakeClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)},
	}
	base := []Option{WithLogger(zerolog.New(env.logs)), WithClock(env.clock.Now)}
	env.store = New(env.kv, fsys, append(base, opts...)...)
	return env
}

func newEntry(id int64, name string) models.BrewLogEntry {
	e := models.BrewLogEntry{
		ID:         id,
		Date:       models.NewDate(2025, time.May, 20),
		Name:       name,
		BrewMethod: models.MethodPourOver,
		Image:      "https://example.com/" + name + ".jpg",
		CoffeeBeanDetail: models.CoffeeBeanDetail{
			CoffeeName: "Yirgacheffe",
			Origin:     "Ethiopia",
			RoastDate:  models.NewDate(2025, time.May, 1),
			RoastLevel: "Light",
			BagWeight:  250,
		},
		BrewDetail: models.BrewDetail{
			GrindSize:   "Medium-fine",
			BeanWeight:  15,
			WaterAmount: 250,
			Ratio:       16.7,
			BrewTime:    180,
			Temperature: 93,
		},
		Rating: 4,
	}
	e.TasteRating[models.Fruity] = 3
	e.TasteRating[models.Sweet] = 2
	e.TasteRating[models.Clean] = 1
	return e
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("missing collection is empty", func(t *testing.T) {
		env := newTestEnv(t)
		entries, err := env.store.LoadAll(ctx)
		if err != nil {
			t.Fatalf("LoadAll() error = %v", err)
		}
		if entries == nil || len(entries) != 0 {
			t.Errorf("LoadAll() = %v, want empty non-nil slice", entries)
		}
	})

	t.Run("corrupt payload", func(t *testing.T) {
		env := newTestEnv(t)
		env.kv.Set(ctx, DefaultKey, "{not json")

		_, err := env.store.LoadAll(ctx)
		var corrupt *StorageCorruptionError
		if !errors.As(err, &corrupt) {
			t.Fatalf("LoadAll() error = %v, want StorageCorruptionError", err)
		}
		if corrupt.Key != DefaultKey {
			t.Errorf("corrupt.Key = %q, want %q", corrupt.Key, DefaultKey)
		}
	})

	t.Run("invalid taste rating is corruption", func(t *testing.T) {
		env := newTestEnv(t)
		env.kv.Set(ctx, DefaultKey, `{"version":1,"entries":[{"id":1,"tasteRating":{"Umami":1}}]}`)

		_, err := env.store.LoadAll(ctx)
		var corrupt *StorageCorruptionError
		if !errors.As(err, &corrupt) {
			t.Fatalf("LoadAll() error = %v, want StorageCorruptionError", err)
		}
	})

	t.Run("newer schema version is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		env.kv.Set(ctx, DefaultKey, `{"version":99,"entries":[]}`)

		_, err := env.store.LoadAll(ctx)
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Fatalf("LoadAll() error = %v, want ErrUnsupportedVersion", err)
		}
	})

	t.Run("reads legacy bare array", func(t *testing.T) {
		env := newTestEnv(t)
		legacy, err := encodeEntries([]models.BrewLogEntry{newEntry(7, "legacy")})
		if err != nil {
			t.Fatal(err)
		}
		// Strip the envelope to mimic the old layout
		start := strings.Index(legacy, "[")
		bare := legacy[start : len(legacy)-1]
		env.kv.Set(ctx, DefaultKey, bare)

		entries, err := env.store.LoadAll(ctx)
		if err != nil {
			t.Fatalf("LoadAll() error = %v", err)
		}
		if len(entries) != 1 || entries[0].ID != 7 {
			t.Errorf("LoadAll() = %+v, want the legacy entry", entries)
		}
	})

	t.Run("missing local image becomes placeholder", func(t *testing.T) {
		env := newTestEnv(t)
		e := newEntry(1001, "missing")
		e.Image = "file:///tmp/x-does-not-exist.jpg"
		if err := env.store.SaveAll(ctx, []models.BrewLogEntry{e}); err != nil {
			t.Fatalf("SaveAll() error = %v", err)
		}

		entries, err := env.store.LoadAll(ctx)
		if err != nil {
			t.Fatalf("LoadAll() error = %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("LoadAll() returned %d entries, want 1", len(entries))
		}
		if entries[0].Image != DefaultPlaceholder {
			t.Errorf("Image = %q, want placeholder", entries[0].Image)
		}

		want := e
		want.Image = DefaultPlaceholder
		if diff := cmp.Diff(want, entries[0], dateComparer); diff != "" {
			t.Errorf("entry mismatch (-want +got):\n%s", diff)
		}

		// The stored value keeps the original path
		raw, _, _ := env.kv.Get(ctx, DefaultKey)
		if !strings.Contains(raw, "x-does-not-exist.jpg") {
			t.Error("validation should not rewrite the stored image")
		}
	})
}

func TestSaveAll_RoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	local := filepath.Join(env.fs.DocumentsDir(), "images", "brew_2_1.jpg")
	writeFile(t, local, "jpeg")

	a := newEntry(1, "a")
	b := newEntry(2, "b")
	b.Image = local
	b.BrewMethod = models.MethodFrenchPress
	b.Date = models.Date{Time: time.Date(2025, 5, 21, 17, 45, 12, 0, time.FixedZone("CET", 3600))}
	want := []models.BrewLogEntry{a, b}

	if err := env.store.SaveAll(ctx, want); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	got, err := env.store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if diff := cmp.Diff(want, got, dateComparer); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	raw, _, _ := env.kv.Get(ctx, DefaultKey)
	if !strings.HasPrefix(raw, `{"version":1,`) {
		t.Errorf("stored payload should be a versioned envelope, got %.40s", raw)
	}
	if !strings.Contains(raw, `"date":"2025-05-21T16:45:12Z"`) {
		t.Errorf("dates should be stored as ISO-8601 UTC strings, got %s", raw)
	}
}

func TestSaveAll_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	bad := newEntry(1, "bad")
	bad.Rating = 9
	err := env.store.SaveAll(ctx, []models.BrewLogEntry{bad})
	if !errors.Is(err, models.ErrInvalidEntry) {
		t.Fatalf("SaveAll() error = %v, want ErrInvalidEntry", err)
	}
	if _, ok, _ := env.kv.Get(ctx, DefaultKey); ok {
		t.Error("nothing should be written when validation fails")
	}
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("two adds are both present", func(t *testing.T) {
		env := newTestEnv(t)
		if _, err := env.store.Add(ctx, newEntry(1, "a")); err != nil {
			t.Fatalf("Add(a) error = %v", err)
		}
		if _, err := env.store.Add(ctx, newEntry(2, "b")); err != nil {
			t.Fatalf("Add(b) error = %v", err)
		}
		entries, err := env.store.LoadAll(ctx)
		if err != nil {
			t.Fatalf("LoadAll() error = %v", err)
		}
		ids := map[int64]bool{}
		for _, e := range entries {
			ids[e.ID] = true
		}
		if len(entries) != 2 || !ids[1] || !ids[2] {
			t.Errorf("LoadAll() ids = %v, want {1, 2}", ids)
		}
	})

	t.Run("assigns id, image and date", func(t *testing.T) {
		env := newTestEnv(t)
		e := newEntry(0, "fresh")
		e.Image = ""
		e.Date = models.Date{}

		stored, err := env.store.Add(ctx, e)
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if stored.ID == 0 {
			t.Error("Add() should assign an id")
		}
		if stored.Image != DefaultPlaceholder {
			t.Errorf("Image = %q, want placeholder", stored.Image)
		}
		if stored.Date.IsZero() {
			t.Error("Add() should default the date")
		}
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		env := newTestEnv(t)
		if _, err := env.store.Add(ctx, newEntry(5, "a")); err != nil {
			t.Fatal(err)
		}
		_, err := env.store.Add(ctx, newEntry(5, "b"))
		if !errors.Is(err, ErrDuplicateID) {
			t.Errorf("Add() error = %v, want ErrDuplicateID", err)
		}
	})

	t.Run("rejects invalid entry", func(t *testing.T) {
		env := newTestEnv(t)
		e := newEntry(1, "a")
		e.BrewMethod = "Siphon"
		if _, err := env.store.Add(ctx, e); !errors.Is(err, models.ErrInvalidEntry) {
			t.Errorf("Add() error = %v, want ErrInvalidEntry", err)
		}
	})

	t.Run("rejects ids that cannot become record keys", func(t *testing.T) {
		env := newTestEnv(t)
		for _, id := range []int64{-1, models.MaxEntryID + 1} {
			if _, err := env.store.Add(ctx, newEntry(id, "a")); !errors.Is(err, models.ErrInvalidEntry) {
				t.Errorf("Add(id %d) error = %v, want ErrInvalidEntry", id, err)
			}
		}
		if _, err := env.store.Add(ctx, newEntry(models.MaxEntryID, "a")); err != nil {
			t.Errorf("Add(MaxEntryID) error = %v", err)
		}
	})

	t.Run("concurrent adds are not lost", func(t *testing.T) {
		env := newTestEnv(t)
		const n = 25
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if _, err := env.store.Add(ctx, newEntry(0, fmt.Sprintf("brew-%d", i))); err != nil {
					errs <- err
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("Add() error = %v", err)
		}

		entries, err := env.store.LoadAll(ctx)
		if err != nil {
			t.Fatalf("LoadAll() error = %v", err)
		}
		if len(entries) != n {
			t.Errorf("LoadAll() returned %d entries, want %d", len(entries), n)
		}
		seen := map[int64]bool{}
		for _, e := range entries {
			if seen[e.ID] {
				t.Errorf("duplicate id %d", e.ID)
			}
			seen[e.ID] = true
		}
	})
}

func TestUpdateAndGet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	if _, err := env.store.Add(ctx, newEntry(1, "a")); err != nil {
		t.Fatal(err)
	}
	if _, err := env.store.Add(ctx, newEntry(2, "b")); err != nil {
		t.Fatal(err)
	}

	updated := newEntry(2, "b-renamed")
	updated.Rating = 5
	if err := env.store.Update(ctx, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := env.store.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "b-renamed" || got.Rating != 5 {
		t.Errorf("Get() = %+v, want updated entry", got)
	}

	entries, _ := env.store.LoadAll(ctx)
	if len(entries) != 2 || entries[1].ID != 2 {
		t.Errorf("Update() should replace in place, got %+v", entries)
	}

	if err := env.store.Update(ctx, newEntry(99, "ghost")); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Update(unknown) error = %v, want ErrEntryNotFound", err)
	}
	if _, err := env.store.Get(ctx, 99); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrEntryNotFound", err)
	}
}

func TestModify(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the change and returns the saved entry", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Add(ctx, newEntry(1, "a"))

		got, err := env.store.Modify(ctx, 1, func(e *models.BrewLogEntry) error {
			e.Rating = 2.5
			e.ID = 99
			return nil
		})
		if err != nil {
			t.Fatalf("Modify() error = %v", err)
		}
		if got.ID != 1 || got.Rating != 2.5 {
			t.Errorf("Modify() = %+v, want id 1 rating 2.5", got)
		}
		stored, _ := env.store.Get(ctx, 1)
		if stored.Rating != 2.5 {
			t.Errorf("stored Rating = %v, want 2.5", stored.Rating)
		}
	})

	t.Run("errors leave storage untouched", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Add(ctx, newEntry(1, "a"))
		before, _, _ := env.kv.Get(ctx, DefaultKey)

		boom := errors.New("boom")
		if _, err := env.store.Modify(ctx, 1, func(e *models.BrewLogEntry) error { return boom }); !errors.Is(err, boom) {
			t.Errorf("Modify() error = %v, want boom", err)
		}
		_, err := env.store.Modify(ctx, 1, func(e *models.BrewLogEntry) error {
			e.Rating = 9
			return nil
		})
		if !errors.Is(err, models.ErrInvalidEntry) {
			t.Errorf("Modify() error = %v, want ErrInvalidEntry", err)
		}
		if _, err := env.store.Modify(ctx, 7, func(e *models.BrewLogEntry) error { return nil }); !errors.Is(err, ErrEntryNotFound) {
			t.Errorf("Modify(unknown) error = %v, want ErrEntryNotFound", err)
		}

		after, _, _ := env.kv.Get(ctx, DefaultKey)
		if after != before {
			t.Error("failed Modify() changed the stored payload")
		}
	})

	t.Run("stat failure does not replace the stored photo", func(t *testing.T) {
		env := newTestEnv(t)
		flaky := &faultyFS{FileSystem: env.fs}
		store := New(env.kv, flaky, WithLogger(zerolog.New(env.logs)))

		photo := filepath.Join(env.fs.DocumentsDir(), "images", "brew_1_1.jpg")
		writeFile(t, photo, "jpeg")
		e := newEntry(1, "a")
		e.Image = photo
		if _, err := store.Add(ctx, e); err != nil {
			t.Fatal(err)
		}

		flaky.existsErr = errors.New("stale handle")
		got, err := store.Modify(ctx, 1, func(e *models.BrewLogEntry) error {
			return e.TasteRating.Set(models.Gritty, 2)
		})
		if err != nil {
			t.Fatalf("Modify() error = %v", err)
		}
		if got.Image != DefaultPlaceholder {
			t.Errorf("returned Image = %q, want placeholder while the stat fails", got.Image)
		}

		raw, err := store.load(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if raw[0].Image != photo {
			t.Errorf("stored Image = %q, want %q", raw[0].Image, photo)
		}

		flaky.existsErr = nil
		res, err := store.DeleteByID(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if res.Cleanup != CleanupRemoved {
			t.Errorf("Cleanup = %q, want removed", res.Cleanup)
		}
		if _, err := os.Stat(photo); !os.IsNotExist(err) {
			t.Error("photo should be removed with its entry")
		}
	})

	t.Run("concurrent changes are not lost", func(t *testing.T) {
		env := newTestEnv(t)
		e := newEntry(1, "a")
		e.BrewDetail.BrewTime = 0
		env.store.Add(ctx, e)

		const n = 32
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.store.Modify(ctx, 1, func(e *models.BrewLogEntry) error {
					e.BrewDetail.BrewTime++
					return nil
				})
				if err != nil {
					t.Errorf("Modify() error = %v", err)
				}
			}()
		}
		wg.Wait()

		got, err := env.store.Get(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if got.BrewDetail.BrewTime != n {
			t.Errorf("BrewTime = %d, want %d", got.BrewDetail.BrewTime, n)
		}
	})
}

func TestAttachImage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	imagesDir := filepath.Join(env.fs.DocumentsDir(), "images")

	first := filepath.Join(imagesDir, "brew_1_1.jpg")
	writeFile(t, first, "one")
	e := newEntry(1, "a")
	e.Image = first
	env.store.Add(ctx, e)

	second := filepath.Join(imagesDir, "brew_1_2.jpg")
	writeFile(t, second, "two")
	got, err := env.store.AttachImage(ctx, 1, second)
	if err != nil {
		t.Fatalf("AttachImage() error = %v", err)
	}
	if got.Image != second {
		t.Errorf("Image = %q, want %q", got.Image, second)
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Error("replaced photo should be removed")
	}
	if _, err := os.Stat(second); err != nil {
		t.Errorf("new photo missing: %v", err)
	}

	t.Run("same path keeps the file", func(t *testing.T) {
		if _, err := env.store.AttachImage(ctx, 1, second); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(second); err != nil {
			t.Errorf("photo removed when re-attached: %v", err)
		}
	})

	t.Run("remote and placeholder images are left alone", func(t *testing.T) {
		env.store.Add(ctx, newEntry(2, "b"))
		third := filepath.Join(imagesDir, "brew_2_3.jpg")
		writeFile(t, third, "three")
		if _, err := env.store.AttachImage(ctx, 2, third); err != nil {
			t.Fatal(err)
		}
		if _, err := env.store.AttachImage(ctx, 2, DefaultPlaceholder); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(third); !os.IsNotExist(err) {
			t.Error("local photo replaced by the placeholder should be removed")
		}
	})

	t.Run("unknown entry discards the new photo", func(t *testing.T) {
		orphan := filepath.Join(imagesDir, "brew_9_4.jpg")
		writeFile(t, orphan, "four")
		if _, err := env.store.AttachImage(ctx, 9, orphan); !errors.Is(err, ErrEntryNotFound) {
			t.Errorf("AttachImage() error = %v, want ErrEntryNotFound", err)
		}
		if _, err := os.Stat(orphan); !os.IsNotExist(err) {
			t.Error("photo with no owner should be removed")
		}
	})
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()

	t.Run("removes entry and local photo", func(t *testing.T) {
		env := newTestEnv(t)
		photo := filepath.Join(env.fs.DocumentsDir(), "images", "brew_1_1.jpg")
		writeFile(t, photo, "jpeg")

		e := newEntry(1, "a")
		e.Image = photo
		env.store.Add(ctx, e)
		env.store.Add(ctx, newEntry(2, "b"))

		res, err := env.store.DeleteByID(ctx, 1)
		if err != nil {
			t.Fatalf("DeleteByID() error = %v", err)
		}
		if !res.Deleted || res.Cleanup != CleanupRemoved || res.CleanupErr != nil {
			t.Errorf("DeleteByID() = %+v, want deleted with photo removed", res)
		}
		if _, err := os.Stat(photo); !os.IsNotExist(err) {
			t.Error("photo should be removed")
		}

		entries, _ := env.store.LoadAll(ctx)
		if len(entries) != 1 || entries[0].ID != 2 {
			t.Errorf("remaining entries = %+v, want only id 2", entries)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Add(ctx, newEntry(1, "a"))
		env.store.Add(ctx, newEntry(2, "b"))

		if _, err := env.store.DeleteByID(ctx, 1); err != nil {
			t.Fatal(err)
		}
		once, _, _ := env.kv.Get(ctx, DefaultKey)

		res, err := env.store.DeleteByID(ctx, 1)
		if err != nil {
			t.Fatalf("second DeleteByID() error = %v", err)
		}
		if res.Deleted {
			t.Error("second DeleteByID() should report nothing deleted")
		}
		twice, _, _ := env.kv.Get(ctx, DefaultKey)
		if once != twice {
			t.Error("second delete changed the stored collection")
		}
	})

	t.Run("only first duplicate is removed", func(t *testing.T) {
		env := newTestEnv(t)
		first := newEntry(3, "first")
		second := newEntry(3, "second")
		env.store.SaveAll(ctx, []models.BrewLogEntry{first, second})

		if _, err := env.store.DeleteByID(ctx, 3); err != nil {
			t.Fatal(err)
		}
		entries, _ := env.store.LoadAll(ctx)
		if len(entries) != 1 || entries[0].Name != "second" {
			t.Errorf("remaining = %+v, want only the second duplicate", entries)
		}
	})

	t.Run("remote and missing photos need no cleanup", func(t *testing.T) {
		env := newTestEnv(t)
		missing := newEntry(2, "missing")
		missing.Image = filepath.Join(env.fs.DocumentsDir(), "gone.jpg")
		env.store.SaveAll(ctx, []models.BrewLogEntry{newEntry(1, "remote"), missing})

		for _, id := range []int64{1, 2} {
			res, err := env.store.DeleteByID(ctx, id)
			if err != nil {
				t.Fatalf("DeleteByID(%d) error = %v", id, err)
			}
			if !res.Deleted || res.Cleanup != CleanupNone {
				t.Errorf("DeleteByID(%d) = %+v, want deleted with no cleanup", id, res)
			}
		}
	})

	t.Run("cleanup failure does not undo delete", func(t *testing.T) {
		env := newTestEnv(t)
		broken := &faultyFS{FileSystem: env.fs, deleteErr: errors.New("permission denied")}
		store := New(env.kv, broken, WithLogger(zerolog.New(env.logs)))

		photo := filepath.Join(env.fs.DocumentsDir(), "images", "brew_1_1.jpg")
		writeFile(t, photo, "jpeg")
		e := newEntry(1, "a")
		e.Image = photo
		store.SaveAll(ctx, []models.BrewLogEntry{e})

		res, err := store.DeleteByID(ctx, 1)
		if err != nil {
			t.Fatalf("DeleteByID() error = %v", err)
		}
		if !res.Deleted || res.Cleanup != CleanupFailed || res.CleanupErr == nil {
			t.Errorf("DeleteByID() = %+v, want deleted with failed cleanup", res)
		}
		entries, _ := store.LoadAll(ctx)
		if len(entries) != 0 {
			t.Errorf("entry should be gone despite cleanup failure, got %+v", entries)
		}
		if !strings.Contains(env.logs.String(), "permission denied") {
			t.Errorf("cleanup failure should be logged, got: %s", env.logs.String())
		}
	})

	t.Run("write failure propagates", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.Add(ctx, newEntry(1, "a"))
		failing := New(&failingKV{Store: env.kv}, env.fs)

		if _, err := failing.DeleteByID(ctx, 1); err == nil {
			t.Error("DeleteByID() should fail when the write fails")
		}
	})
}

func TestNextID(t *testing.T) {
	now := time.UnixMilli(1_000)
	tests := []struct {
		name    string
		entries []models.BrewLogEntry
		want    int64
	}{
		{"empty", nil, 1_000},
		{"older ids", []models.BrewLogEntry{{ID: 5}, {ID: 999}}, 1_000},
		{"collision", []models.BrewLogEntry{{ID: 1_000}}, 1_001},
		{"ids ahead of clock", []models.BrewLogEntry{{ID: 1_005}, {ID: 1_002}}, 1_006},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextID(tt.entries, now); got != tt.want {
				t.Errorf("NextID() = %d, want %d", got, tt.want)
			}
		})
	}
}

// faultyFS wraps a FileSystem and injects errors
type faultyFS struct {
	files.FileSystem
	existsErr error
	deleteErr error
	copyErr   error
	// skipCopy pretends the copy worked without writing anything
	skipCopy bool
}

func (f *faultyFS) Exists(ctx context.Context, path string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.FileSystem.Exists(ctx, path)
}

func (f *faultyFS) Delete(ctx context.Context, path string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.FileSystem.Delete(ctx, path)
}

func (f *faultyFS) Copy(ctx context.Context, from, to string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	if f.skipCopy {
		return nil
	}
	return f.FileSystem.Copy(ctx, from, to)
}

type failingKV struct {
	database.Store
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	return errors.New("disk full")
}
