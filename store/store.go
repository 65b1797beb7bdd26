// Package store implements the transactional persistence of spec.md §4.2:
// id-keyed storage with a kind-based replace-by-latest policy, and the
// secondary indexes needed to answer author-restricted filter queries.
// Grounded on the teacher's database package (badger-backed, sequence-leased
// serials, a dedicated Logger), generalized from its ad-hoc multi-index
// scheme down to the four lookups spec.md §4.2 actually names.
package store

import (
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"beacon.dev/store/indexes"
	"beacon.dev/utils/chk"
	"beacon.dev/utils/context"
	"beacon.dev/utils/log"
	"beacon.dev/utils/units"
)

// D is the relay's event store.
type D struct {
	ctx     context.T
	cancel  context.F
	dataDir string
	db      *badger.DB
	seq     *badger.Sequence
}

// New opens (creating if absent) a badger store rooted at dataDir.
func New(ctx context.T, cancel context.F, dataDir string) (d *D, err error) {
	d = &D{ctx: ctx, cancel: cancel, dataDir: dataDir}
	if err = os.MkdirAll(dataDir, 0755); chk.E(err) {
		return nil, err
	}
	opts := badger.DefaultOptions(dataDir)
	opts.BlockCacheSize = int64(units.Gb)
	opts.BlockSize = units.Gb
	opts.CompactL0OnClose = true
	opts.LmaxCompaction = true
	opts.Logger = nil
	if d.db, err = badger.Open(opts); chk.E(err) {
		return nil, err
	}
	log.T.Ln("getting event sequence lease", dataDir)
	if d.seq, err = d.db.GetSequence([]byte("EVENTS"), 1000); chk.E(err) {
		return nil, err
	}
	go func() {
		<-d.ctx.Done()
		_ = d.Close()
	}()
	return d, nil
}

// Path returns the directory the store is rooted at.
func (d *D) Path() string { return filepath.Clean(d.dataDir) }

// Close releases the sequence lease and closes the underlying database.
func (d *D) Close() (err error) {
	if d.seq != nil {
		if err = d.seq.Release(); chk.E(err) {
			return err
		}
	}
	if d.db != nil {
		if err = d.db.Close(); chk.E(err) {
			return err
		}
	}
	return nil
}

// Sync flushes badger's buffers to disk.
func (d *D) Sync() (err error) { return d.db.Sync() }

func (d *D) nextSerial() (indexes.Serial, error) {
	n, err := d.seq.Next()
	if err != nil {
		return 0, err
	}
	return indexes.Serial(n), nil
}

// update runs fn inside a read-write transaction, retrying once on a
// conflict, per spec.md §4.2's "retried at most once" failure semantics.
func (d *D) update(fn func(txn *badger.Txn) error) (err error) {
	if err = d.db.Update(fn); err != nil {
		if err == badger.ErrConflict {
			err = d.db.Update(fn)
		}
	}
	if err != nil {
		return fail("Something went wrong", err)
	}
	return nil
}

func (d *D) view(fn func(txn *badger.Txn) error) (err error) {
	if err = d.db.View(fn); err != nil {
		return fail("Something went wrong", err)
	}
	return nil
}
