package vm

// Table is an open-addressed hash table with linear probing, keyed by
// interned strings. It backs the string interner, globals, class method
// tables, and instance fields. Deleted slots become tombstones
// (key == nil, value == true) that probing walks through but insertion may
// reclaim.
type Table struct {
	count   int // live entries plus tombstones
	entries []Entry
}

type Entry struct {
	Key   *ObjString
	Value Value
}

const tableMaxLoad = 0.75

// Get looks up key and reports whether it was present.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if t.count == 0 {
		return NilVal(), false
	}

	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return NilVal(), false
	}
	return entry.Value, true
}

// Set inserts or overwrites key. It reports whether the key was new.
func (t *Table) Set(key *ObjString, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	entry := findEntry(t.entries, key)
	isNew := entry.Key == nil
	// reusing a tombstone doesn't change the load
	if isNew && entry.Value.IsNil() {
		t.count++
	}

	entry.Key = key
	entry.Value = value
	return isNew
}

// Delete removes key, leaving a tombstone so probe chains stay intact.
// It reports whether the key was present.
func (t *Table) Delete(key *ObjString) bool {
	if t.count == 0 {
		return false
	}

	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return false
	}

	entry.Key = nil
	entry.Value = BoolVal(true)
	return true
}

// AddAll copies every entry of from into t. Used by class inheritance.
func (t *Table) AddAll(from *Table) {
	for i := range from.entries {
		entry := &from.entries[i]
		if entry.Key != nil {
			t.Set(entry.Key, entry.Value)
		}
	}
}

// FindString looks up an entry by string content rather than identity.
// This is the interner's lookup: it is the one place where keys are
// compared byte-wise.
func (t *Table) FindString(chars string, hash uint32) *ObjString {
	if t.count == 0 {
		return nil
	}

	index := hash % uint32(len(t.entries))
	for {
		entry := &t.entries[index]
		if entry.Key == nil {
			// stop at a truly empty slot, skip tombstones
			if entry.Value.IsNil() {
				return nil
			}
		} else if len(entry.Key.Chars) == len(chars) &&
			entry.Key.Hash == hash &&
			entry.Key.Chars == chars {
			return entry.Key
		}

		index = (index + 1) % uint32(len(t.entries))
	}
}

// RemoveWhite deletes every entry whose key is unmarked. The GC calls this
// on the interner just before sweeping so dead strings don't leave dangling
// table keys.
func (t *Table) RemoveWhite() {
	for i := range t.entries {
		entry := &t.entries[i]
		if entry.Key != nil && !entry.Key.isMarked {
			t.Delete(entry.Key)
		}
	}
}

func findEntry(entries []Entry, key *ObjString) *Entry {
	index := key.Hash % uint32(len(entries))
	var tombstone *Entry

	for {
		entry := &entries[index]

		if entry.Key == key {
			return entry
		} else if entry.Key == nil {
			if entry.Value.IsNil() {
				// empty entry; prefer an earlier tombstone as the
				// insertion site
				if tombstone != nil {
					return tombstone
				}
				return entry
			}
			if tombstone == nil {
				tombstone = entry
			}
		}

		index = (index + 1) % uint32(len(entries))
	}
}

func (t *Table) adjustCapacity(capacity int) {
	newEntries := make([]Entry, capacity)
	for i := range newEntries {
		newEntries[i].Value = NilVal()
	}

	// rebuild without tombstones, recounting live entries
	t.count = 0
	for i := range t.entries {
		entry := &t.entries[i]
		if entry.Key == nil {
			continue
		}

		dest := findEntry(newEntries, entry.Key)
		dest.Key = entry.Key
		dest.Value = entry.Value
		t.count++
	}

	t.entries = newEntries
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}

// Len returns the number of live entries (tombstones excluded).
func (t *Table) Len() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].Key != nil {
			n++
		}
	}
	return n
}
