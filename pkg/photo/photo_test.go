package photo

import (
	"errors"
	"testing"
)

func TestNewListCaps(t *testing.T) {
	var photos []Photo
	for range 12 {
		photos = append(photos, New("x.png"))
	}
	l := NewList(photos...)
	if l.Len() != MaxPhotos {
		t.Errorf("Len = %d, want %d", l.Len(), MaxPhotos)
	}
	if !l.Full() {
		t.Error("list of MaxPhotos should be full")
	}
}

func TestAppend(t *testing.T) {
	l := NewList()
	v := l.Version()

	next, err := l.Append(New("a.png"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("original list mutated: Len = %d", l.Len())
	}
	if next.Len() != 1 {
		t.Errorf("Len = %d, want 1", next.Len())
	}
	if next.Version() == v {
		t.Error("appended list must carry a new version")
	}

	full := NewList(make([]Photo, MaxPhotos)...)
	same, err := full.Append(New("b.png"))
	if !errors.Is(err, ErrListFull) {
		t.Errorf("err = %v, want ErrListFull", err)
	}
	if same.Version() != full.Version() {
		t.Error("failed append should return the same list")
	}
}

func TestAllIsCopy(t *testing.T) {
	l := NewList(Photo{ID: "1", URL: "a"})
	all := l.All()
	all[0].URL = "changed"
	if l.At(0).URL != "a" {
		t.Error("All exposed internal storage")
	}
}

func TestNewUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		p := New("x")
		if seen[p.ID] {
			t.Fatalf("duplicate id %s", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestZeroList(t *testing.T) {
	var l List
	if l.Len() != 0 || l.Version() != 0 || l.Full() {
		t.Errorf("zero list = %+v", l)
	}
}
