package phones_test

import (
	"context"
	"errors"
	"testing"

	"github.com/taksi8637-pixel/taksi2/pkg/gate"
	"github.com/taksi8637-pixel/taksi2/pkg/phones"
	"github.com/taksi8637-pixel/taksi2/pkg/store"
	"github.com/taksi8637-pixel/taksi2/pkg/toast"
)

// allow is an Authorizer that always grants access.
type allow struct{}

func (allow) Authorized() bool { return true }

// deny is an Authorizer that never grants access.
type deny struct{}

func (deny) Authorized() bool { return false }

func newRegistry(t *testing.T) (*phones.Registry, *toast.Recorder, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	rec := toast.NewRecorder()
	reg := phones.New(context.Background(), st, allow{}, phones.WithNotifier(rec))
	return reg, rec, st
}

func TestNew_SeedsDefaults(t *testing.T) {
	reg, _, _ := newRegistry(t)

	records := reg.List()
	if len(records) != 1 {
		t.Fatalf("expected 1 seed record, got %d", len(records))
	}
	seed := records[0]
	if seed.ID != 1 || seed.Number != "+905401490040" || seed.Label != "Ana Telefon" {
		t.Errorf("unexpected seed %+v", seed)
	}
	if seed.Formatted != "0540 149 00 40" {
		t.Errorf("unexpected seed formatting %q", seed.Formatted)
	}
}

func TestNew_LoadsPersistedCollection(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	first := phones.New(ctx, st, allow{})
	if _, err := first.Add(ctx, "05321112233", "Gece Hattı"); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A second registry over the same store sees the persisted state.
	second := phones.New(ctx, st, allow{})
	if second.Len() != 2 {
		t.Fatalf("expected 2 records after reload, got %d", second.Len())
	}
	if second.List()[1].Label != "Gece Hattı" {
		t.Errorf("unexpected reloaded record %+v", second.List()[1])
	}
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	reg, rec, _ := newRegistry(t)

	added, err := reg.Add(ctx, " 05321112233 ", " Gece Hattı ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.Number != "05321112233" || added.Label != "Gece Hattı" {
		t.Errorf("expected trimmed fields, got %+v", added)
	}
	if added.Formatted != "0532 111 22 33" {
		t.Errorf("unexpected formatting %q", added.Formatted)
	}
	if added.ID == 1 {
		t.Error("expected a fresh id")
	}

	records := reg.List()
	if len(records) != 2 || records[1].ID != added.ID {
		t.Errorf("expected appended record, got %+v", records)
	}

	last, ok := rec.Last()
	if !ok || last.Level != toast.LevelSuccess || last.Message != "Telefon numarası eklendi!" {
		t.Errorf("unexpected toast %+v ok=%v", last, ok)
	}
}

func TestAdd_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newRegistry(t)

	seen := map[int64]bool{1: true}
	for i := 0; i < 5; i++ {
		rec, err := reg.Add(ctx, "05321112233", "Hat")
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if seen[rec.ID] {
			t.Fatalf("duplicate id %d", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestAdd_BlankInput(t *testing.T) {
	ctx := context.Background()
	reg, rec, _ := newRegistry(t)

	for _, tc := range []struct{ number, label string }{
		{"", "Label"},
		{"05321112233", ""},
		{"   ", "Label"},
		{"05321112233", "   "},
	} {
		if _, err := reg.Add(ctx, tc.number, tc.label); !errors.Is(err, phones.ErrEmptyInput) {
			t.Errorf("Add(%q, %q): expected ErrEmptyInput, got %v", tc.number, tc.label, err)
		}
	}

	if reg.Len() != 1 {
		t.Errorf("expected collection unchanged, got %d records", reg.Len())
	}
	if _, ok := rec.Last(); ok {
		t.Error("expected no toast for rejected input")
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	reg, rec, _ := newRegistry(t)

	if err := reg.Update(ctx, 1, "05329998877", "Yeni Etiket"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got := reg.List()[0]
	if got.Number != "05329998877" || got.Label != "Yeni Etiket" {
		t.Errorf("unexpected record %+v", got)
	}
	if got.Formatted != "0532 999 88 77" {
		t.Errorf("expected re-derived formatting, got %q", got.Formatted)
	}
	if got.ID != 1 {
		t.Error("expected id to be immutable")
	}

	last, _ := rec.Last()
	if last.Message != "Telefon numarası güncellendi!" {
		t.Errorf("unexpected toast %q", last.Message)
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	ctx := context.Background()
	reg, rec, _ := newRegistry(t)

	if err := reg.Update(ctx, 999, "05329998877", "X"); !errors.Is(err, phones.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if reg.List()[0].Number != "+905401490040" {
		t.Error("expected records unchanged")
	}
	if _, ok := rec.Last(); ok {
		t.Error("expected no toast for unknown id")
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	reg, rec, _ := newRegistry(t)

	added, _ := reg.Add(ctx, "05321112233", "Gece Hattı")
	rec.Reset()

	if err := reg.Remove(ctx, added.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 record, got %d", reg.Len())
	}

	last, _ := rec.Last()
	if last.Message != "Telefon numarası silindi!" {
		t.Errorf("unexpected toast %q", last.Message)
	}
}

func TestRemove_LastRecordRefused(t *testing.T) {
	ctx := context.Background()
	reg, rec, _ := newRegistry(t)

	err := reg.Remove(ctx, 1)
	if !errors.Is(err, phones.ErrLastRecord) {
		t.Fatalf("expected ErrLastRecord, got %v", err)
	}
	if reg.Len() != 1 {
		t.Error("expected record kept")
	}

	last, ok := rec.Last()
	if !ok || last.Level != toast.LevelError {
		t.Fatalf("expected error toast, got %+v ok=%v", last, ok)
	}
	if last.Message != "En az bir telefon numarası kalmalı!" {
		t.Errorf("unexpected toast %q", last.Message)
	}
}

func TestRemove_UnknownID(t *testing.T) {
	ctx := context.Background()
	reg, rec, _ := newRegistry(t)

	if err := reg.Remove(ctx, 999); !errors.Is(err, phones.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, ok := rec.Last(); ok {
		t.Error("expected no toast for unknown id")
	}
}

func TestPrimary_IsFirstRecord(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newRegistry(t)

	reg.Add(ctx, "05321112233", "Gece Hattı")

	if got := reg.Primary(); got.Number != "+905401490040" {
		t.Errorf("expected seed as primary, got %+v", got)
	}
}

func TestMutations_RequireAuthorization(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	rec := toast.NewRecorder()
	reg := phones.New(ctx, st, deny{}, phones.WithNotifier(rec))

	if _, err := reg.Add(ctx, "05321112233", "Hat"); !errors.Is(err, gate.ErrUnauthorized) {
		t.Errorf("Add: expected ErrUnauthorized, got %v", err)
	}
	if err := reg.Update(ctx, 1, "05321112233", "Hat"); !errors.Is(err, gate.ErrUnauthorized) {
		t.Errorf("Update: expected ErrUnauthorized, got %v", err)
	}
	if err := reg.Remove(ctx, 1); !errors.Is(err, gate.ErrUnauthorized) {
		t.Errorf("Remove: expected ErrUnauthorized, got %v", err)
	}

	if reg.Len() != 1 {
		t.Error("expected records untouched")
	}
	if _, ok := rec.Last(); ok {
		t.Error("expected no toast for unauthorized calls")
	}

	// Reads stay open to everyone.
	if reg.Primary().Number != "+905401490040" {
		t.Error("expected reads to work unauthorized")
	}
}

func TestAdd_PersistsSynchronously(t *testing.T) {
	ctx := context.Background()
	reg, _, st := newRegistry(t)

	reg.Add(ctx, "05321112233", "Gece Hattı")

	data, err := st.Load(ctx, phones.StorageKey)
	if err != nil || data == nil {
		t.Fatalf("expected persisted payload, got %v err=%v", data, err)
	}
}
