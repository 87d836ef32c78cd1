// Package badger is the production EventStore, an embedded key/value
// store. Grounded on the teacher's pkg/database package: badger.DefaultOptions
// tuned for write-heavy event ingestion, and one transaction per logical
// write so secondary indexes never diverge from the primary record.
package badger

import (
	"encoding/binary"
	"fmt"
	"os"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
	"relaymere.dev/pkg/encoders/event"
	"relaymere.dev/pkg/encoders/ident"
	"relaymere.dev/pkg/store"
	"relaymere.dev/pkg/utils/chk"
	"relaymere.dev/pkg/utils/context"
	"relaymere.dev/pkg/utils/log"
)

const (
	prefixEvent       = 'e' // e<32-byte id>                -> msgpack(event.E)
	prefixByTime      = 't' // t<8-byte be created_at><id>  -> id (secondary index)
	prefixContactList = 'c' // c<32-byte pubkey>            -> msgpack(event.E)
)

// Store is a Badger-backed store.I.
type Store struct {
	ctx    context.T
	cancel context.F
	dir    string
	db     *badgerdb.DB
}

var _ store.I = (*Store)(nil)

// New opens (creating if necessary) a Badger database rooted at dir.
func New(ctx context.T, cancel context.F, dir string) (s *Store, err error) {
	if err = os.MkdirAll(dir, 0o700); chk.E(err) {
		return nil, fmt.Errorf("badger: create data dir: %w", err)
	}
	opts := badgerdb.DefaultOptions(dir).
		WithLogger(nil).
		WithCompactL0OnClose(true).
		WithLmaxCompaction(true)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}
	s = &Store{ctx: ctx, cancel: cancel, dir: dir, db: db}
	go func() {
		<-ctx.Done()
		log.I.Ln("badger: closing", dir)
		if cerr := db.Close(); cerr != nil {
			log.E.Ln("badger: close:", cerr)
		}
	}()
	return s, nil
}

// Close cancels s's context, then closes the underlying database. The
// background goroutine watching that context wakes and calls db.Close as
// well, logging any error that second close returns.
func (s *Store) Close() error {
	s.cancel()
	return s.db.Close()
}

func eventKey(id ident.EventId) []byte {
	k := make([]byte, 0, 33)
	k = append(k, prefixEvent)
	return append(k, id[:]...)
}

func timeKey(createdAt int64, id ident.EventId) []byte {
	k := make([]byte, 0, 1+8+32)
	k = append(k, prefixByTime)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(createdAt))
	k = append(k, ts[:]...)
	return append(k, id[:]...)
}

func contactListKey(pk ident.Pubkey) []byte {
	k := make([]byte, 0, 33)
	k = append(k, prefixContactList)
	return append(k, pk[:]...)
}

func encodeEvent(ev *event.E) ([]byte, error) { return msgpack.Marshal(ev) }

func decodeEvent(b []byte) (*event.E, error) {
	var ev event.E
	if err := msgpack.Unmarshal(b, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Put persists ev and its time-ordered secondary index in one transaction.
func (s *Store) Put(_ context.T, ev *event.E) error {
	val, err := encodeEvent(ev)
	if err != nil {
		return fmt.Errorf("badger: encode event: %w", err)
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		if err := txn.Set(eventKey(ev.Id), val); err != nil {
			return err
		}
		return txn.Set(timeKey(ev.CreatedAt, ev.Id), ev.Id[:])
	})
}

// PutContactListIfNewer enforces the conditional write atomically inside
// a single Badger transaction: read-then-write under the txn's conflict
// detection means a concurrent writer of the same pubkey fails the commit
// with a conflict error, returned to the caller, rather than silently
// losing the race. No retry is made here.
func (s *Store) PutContactListIfNewer(_ context.T, ev *event.E) error {
	val, err := encodeEvent(ev)
	if err != nil {
		return fmt.Errorf("badger: encode contact list: %w", err)
	}
	key := contactListKey(ev.Pubkey)
	return s.db.Update(func(txn *badgerdb.Txn) error {
		item, gerr := txn.Get(key)
		if gerr != nil && gerr != badgerdb.ErrKeyNotFound {
			return gerr
		}
		if gerr == nil {
			var cur []byte
			if verr := item.Value(func(v []byte) error {
				cur = append(cur[:0], v...)
				return nil
			}); verr != nil {
				return verr
			}
			storedEv, derr := decodeEvent(cur)
			if derr != nil {
				return derr
			}
			if storedEv.CreatedAt >= ev.CreatedAt {
				return nil
			}
		}
		return txn.Set(key, val)
	})
}

// Scan returns every event with CreatedAt in [since, until] by walking
// the time-ordered secondary index.
func (s *Store) Scan(_ context.T, since, until *int64) (out []*event.E, err error) {
	err = s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()
		start := []byte{prefixByTime}
		if since != nil {
			start = timeKey(*since, ident.EventId{})
		}
		for it.Seek(start); it.ValidForPrefix([]byte{prefixByTime}); it.Next() {
			key := it.Item().KeyCopy(nil)
			createdAt := int64(binary.BigEndian.Uint64(key[1:9]))
			if until != nil && createdAt > *until {
				break
			}
			var id ident.EventId
			copy(id[:], key[9:41])
			item, gerr := txn.Get(eventKey(id))
			if gerr != nil {
				if gerr == badgerdb.ErrKeyNotFound {
					continue
				}
				return gerr
			}
			if verr := item.Value(func(v []byte) error {
				ev, derr := decodeEvent(v)
				if derr != nil {
					return derr
				}
				out = append(out, ev)
				return nil
			}); verr != nil {
				return verr
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) GetContactList(_ context.T, pubkey ident.Pubkey) (ev *event.E, err error) {
	key := contactListKey(pubkey)
	err = s.db.View(func(txn *badgerdb.Txn) error {
		item, gerr := txn.Get(key)
		if gerr == badgerdb.ErrKeyNotFound {
			return nil
		}
		if gerr != nil {
			return gerr
		}
		return item.Value(func(v []byte) error {
			var derr error
			ev, derr = decodeEvent(v)
			return derr
		})
	})
	return ev, err
}
