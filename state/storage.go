package state

import (
	"encoding/json"
	"fmt"

	"github.com/eth2030/coreintp/word"
)

// Storage is an unordered Word -> Word mapping. Absent keys read as
// word.Zero.
type Storage map[word.Word]word.Word

// Get returns the value at key, or word.Zero if absent.
func (s Storage) Get(key word.Word) word.Word {
	if v, ok := s[key]; ok {
		return v
	}
	return word.Zero
}

// StorageStatus classifies the effect of a single set_storage write.
type StorageStatus int

const (
	// Unchanged: the new value equals a nonzero previous value.
	Unchanged StorageStatus = iota
	// Modified: a nonzero previous value was replaced by a different
	// nonzero value.
	Modified
	// ModifiedAgain is reserved for multi-phase transaction semantics
	// (dirty-then-reverted-then-redirtied within one transaction) that
	// the in-memory reference WorldState does not implement; it returns
	// Modified in its place.
	ModifiedAgain
	// Added: the key had no previous value (or it was zero), whatever
	// the new value is -- a zero write to an absent key is Added too.
	Added
	// Deleted: a nonzero previous value was overwritten with zero.
	Deleted
)

// String names the status for logging/debugging.
func (s StorageStatus) String() string {
	switch s {
	case Unchanged:
		return "Unchanged"
	case Modified:
		return "Modified"
	case ModifiedAgain:
		return "ModifiedAgain"
	case Added:
		return "Added"
	case Deleted:
		return "Deleted"
	default:
		return fmt.Sprintf("StorageStatus(%d)", int(s))
	}
}

// classifyWrite applies the classification rule from the set_storage
// contract: previous value p, new value v.
func classifyWrite(prev, next word.Word) StorageStatus {
	switch {
	case prev.IsZero():
		return Added
	case next.IsZero():
		return Deleted
	case next.Eq(prev):
		return Unchanged
	default:
		return Modified
	}
}

// MarshalJSON encodes Storage as an object whose keys and values are
// Word-hex strings.
func (s Storage) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(s))
	for k, v := range s {
		m[k.Hex()] = v.Hex()
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes Storage from an object of Word-hex keys/values.
func (s *Storage) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Storage, len(m))
	for k, v := range m {
		key, err := word.FromHex(k)
		if err != nil {
			return fmt.Errorf("state: storage key: %w", err)
		}
		val, err := word.FromHex(v)
		if err != nil {
			return fmt.Errorf("state: storage value: %w", err)
		}
		out[key] = val
	}
	*s = out
	return nil
}
