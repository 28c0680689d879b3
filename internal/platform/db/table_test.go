package db

import (
	"errors"
	"sync"
	"testing"
)

type row struct {
	ID   int64
	Name string
}

func TestTable_InsertAssignsSequentialIDs(t *testing.T) {
	tbl := NewTable[row]("rows")
	a := tbl.Insert(func(id int64) row { return row{ID: id, Name: "a"} })
	b := tbl.Insert(func(id int64) row { return row{ID: id, Name: "b"} })

	if a.ID != 1 || b.ID != 2 {
		t.Errorf("expected ids 1 and 2, got %d and %d", a.ID, b.ID)
	}
	if tbl.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", tbl.Len())
	}
}

func TestTable_GetUpdateDelete(t *testing.T) {
	tbl := NewTable[row]("rows")
	r := tbl.Insert(func(id int64) row { return row{ID: id, Name: "a"} })

	got, err := tbl.Get(r.ID)
	if err != nil || got.Name != "a" {
		t.Fatalf("get: %+v %v", got, err)
	}

	updated, err := tbl.Update(r.ID, func(old row) row {
		old.Name = "aa"
		return old
	})
	if err != nil || updated.Name != "aa" {
		t.Fatalf("update: %+v %v", updated, err)
	}

	if err := tbl.Delete(r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tbl.Get(r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTable_MissingRows(t *testing.T) {
	tbl := NewTable[row]("rows")
	if _, err := tbl.Get(9); !errors.Is(err, ErrNotFound) {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := tbl.Update(9, func(r row) row { return r }); !errors.Is(err, ErrNotFound) {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if err := tbl.Delete(9); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestTable_ListKeepsInsertionOrder(t *testing.T) {
	tbl := NewTable[row]("rows")
	for _, n := range []string{"a", "b", "c"} {
		n := n
		tbl.Insert(func(id int64) row { return row{ID: id, Name: n} })
	}
	tbl.Delete(2)

	list := tbl.List()
	if len(list) != 2 || list[0].Name != "a" || list[1].Name != "c" {
		t.Errorf("unexpected list %+v", list)
	}
}

func TestTable_Find(t *testing.T) {
	tbl := NewTable[row]("rows")
	tbl.Insert(func(id int64) row { return row{ID: id, Name: "a"} })
	tbl.Insert(func(id int64) row { return row{ID: id, Name: "b"} })

	got, ok := tbl.Find(func(r row) bool { return r.Name == "b" })
	if !ok || got.ID != 2 {
		t.Errorf("expected row 2, got %+v %v", got, ok)
	}
	if _, ok := tbl.Find(func(r row) bool { return r.Name == "z" }); ok {
		t.Error("expected no match")
	}
}

func TestTable_ConcurrentInsert(t *testing.T) {
	tbl := NewTable[row]("rows")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tbl.Insert(func(id int64) row { return row{ID: id} })
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, r := range tbl.List() {
		if seen[r.ID] {
			t.Fatalf("duplicate id %d", r.ID)
		}
		seen[r.ID] = true
	}
	if len(seen) != 50 {
		t.Errorf("expected 50 rows, got %d", len(seen))
	}
}

func TestTable_Truncate(t *testing.T) {
	tbl := NewTable[row]("rows")
	tbl.Insert(func(id int64) row { return row{ID: id, Name: "a"} })
	tbl.Insert(func(id int64) row { return row{ID: id, Name: "b"} })

	tbl.Truncate()
	if tbl.Len() != 0 || len(tbl.List()) != 0 {
		t.Fatalf("expected empty table, got %d rows", tbl.Len())
	}
	got := tbl.Insert(func(id int64) row { return row{ID: id, Name: "c"} })
	if got.ID != 1 {
		t.Errorf("expected ids to restart at 1, got %d", got.ID)
	}
}
