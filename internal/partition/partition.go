package partition

import (
	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

/*
Responsibilities

- Own the named, versioned cache partitions
- Map request identities to captured response snapshots
- Expose enumeration and deletion for lifecycle sweeps

Partition Semantics

- Entries are append/overwrite-only; last writer wins
- Individual entries are never deleted, only whole partitions
- A lookup miss is a (zero, false, nil) result, not an error
- All implementations must be safe for concurrent use

The partition layer never touches the network; it only stores what the
strategy layer hands it.
*/

type Partition interface {
	// Match returns the entry stored under key, if any.
	Match(key string) (Entry, bool, failure.ClassifiedError)
	// Put stores entry under key, overwriting any previous entry.
	Put(key string, entry Entry) failure.ClassifiedError
	// Keys lists every stored key, in no particular order.
	Keys() ([]string, failure.ClassifiedError)
}

type Store interface {
	// Open returns the named partition, creating it if absent.
	Open(name string) (Partition, failure.ClassifiedError)
	// Names lists every existing partition name, in no particular order.
	Names() ([]string, failure.ClassifiedError)
	// Delete destroys the named partition and all of its entries.
	// Deleting a partition that does not exist is not an error.
	Delete(name string) failure.ClassifiedError
}

// MatchAny looks key up across every partition in the store, in no guaranteed
// order. First hit wins. This is the whole-storage lookup Cache-First uses.
func MatchAny(store Store, key string) (Entry, bool, failure.ClassifiedError) {
	names, err := store.Names()
	if err != nil {
		return Entry{}, false, err
	}

	for _, name := range names {
		p, err := store.Open(name)
		if err != nil {
			return Entry{}, false, err
		}
		entry, ok, err := p.Match(key)
		if err != nil {
			return Entry{}, false, err
		}
		if ok {
			return entry, true, nil
		}
	}
	return Entry{}, false, nil
}
