package vm

import (
	"fmt"
	"testing"
)

func makeString(s string) *ObjString {
	return &ObjString{Obj: Obj{kind: KindString}, Chars: s, Hash: HashString(s)}
}

func TestTableSetGet(t *testing.T) {
	var table Table
	key := makeString("answer")

	if _, ok := table.Get(key); ok {
		t.Fatal("empty table reported a hit")
	}

	if isNew := table.Set(key, NumberVal(42)); !isNew {
		t.Error("first Set should report a new key")
	}
	if isNew := table.Set(key, NumberVal(43)); isNew {
		t.Error("overwrite should not report a new key")
	}

	got, ok := table.Get(key)
	if !ok {
		t.Fatal("key missing after Set")
	}
	if got.AsNumber() != 43 {
		t.Errorf("got=%v, want=43", got.AsNumber())
	}
}

func TestTableDeleteAndTombstones(t *testing.T) {
	var table Table

	keys := make([]*ObjString, 20)
	for i := range keys {
		keys[i] = makeString(fmt.Sprintf("key%d", i))
		table.Set(keys[i], NumberVal(float64(i)))
	}

	if !table.Delete(keys[7]) {
		t.Fatal("delete of present key failed")
	}
	if table.Delete(keys[7]) {
		t.Fatal("delete of absent key succeeded")
	}
	if _, ok := table.Get(keys[7]); ok {
		t.Fatal("deleted key still present")
	}

	// probe chains must survive the tombstone
	for i, key := range keys {
		if i == 7 {
			continue
		}
		got, ok := table.Get(key)
		if !ok {
			t.Fatalf("key%d lost after delete", i)
		}
		if got.AsNumber() != float64(i) {
			t.Errorf("key%d: got=%v, want=%d", i, got.AsNumber(), i)
		}
	}

	if table.Len() != 19 {
		t.Errorf("Len()=%d, want=19", table.Len())
	}

	// a new insert may reclaim the tombstone
	table.Set(keys[7], NumberVal(77))
	got, _ := table.Get(keys[7])
	if got.AsNumber() != 77 {
		t.Errorf("reinserted key: got=%v, want=77", got.AsNumber())
	}
}

func TestTableGrowthKeepsEntries(t *testing.T) {
	var table Table

	const n = 500
	keys := make([]*ObjString, n)
	for i := range keys {
		keys[i] = makeString(fmt.Sprintf("entry-%d", i))
		table.Set(keys[i], NumberVal(float64(i)))
	}

	for i, key := range keys {
		got, ok := table.Get(key)
		if !ok || got.AsNumber() != float64(i) {
			t.Fatalf("entry-%d: ok=%t got=%v", i, ok, got)
		}
	}
}

func TestTableFindString(t *testing.T) {
	var table Table
	key := makeString("needle")
	table.Set(key, NilVal())

	// content lookup finds the same object, not an equal one
	found := table.FindString("needle", HashString("needle"))
	if found != key {
		t.Errorf("FindString returned %p, want %p", found, key)
	}

	if table.FindString("missing", HashString("missing")) != nil {
		t.Error("FindString found a string that was never added")
	}

	// same content via a different ObjString must still find the original
	clone := makeString("needle")
	if got := table.FindString(clone.Chars, clone.Hash); got != key {
		t.Error("content lookup did not resolve to the canonical string")
	}
}

func TestTableAddAll(t *testing.T) {
	var src, dst Table
	a, b := makeString("a"), makeString("b")
	src.Set(a, NumberVal(1))
	src.Set(b, NumberVal(2))
	dst.Set(a, NumberVal(10))

	dst.AddAll(&src)

	got, _ := dst.Get(a)
	if got.AsNumber() != 1 {
		t.Errorf("AddAll should overwrite: got=%v, want=1", got.AsNumber())
	}
	got, _ = dst.Get(b)
	if got.AsNumber() != 2 {
		t.Errorf("AddAll missed a key: got=%v", got.AsNumber())
	}
}
