package store

import (
	"github.com/dgraph-io/badger/v4"

	"beacon.dev/encoders/event"
	"beacon.dev/store/indexes"
	"beacon.dev/utils/chk"
	"beacon.dev/utils/errorf"
)

// PutRegular implements spec.md §4.2 put_regular: insert if id not present;
// a duplicate id is a no-op that still reports Ok.
func (d *D) PutRegular(ev *event.E) (err error) {
	return d.update(
		func(txn *badger.Txn) (err error) {
			idKey := indexes.IdKey(ev.Id)
			if _, err = txn.Get(idKey); err == nil {
				// already stored, no-op success
				return nil
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			_, err = d.writeNew(txn, ev, idKey)
			return err
		},
	)
}

// PutReplaceable implements spec.md §4.2 put_replaceable: keep only the
// latest event per (pubkey, kind).
func (d *D) PutReplaceable(ev *event.E) (err error) {
	return d.update(
		func(txn *badger.Txn) (err error) {
			key := indexes.KindPubkeyKey(ev.Kind.K, ev.Pubkey)
			return d.replace(txn, key, ev)
		},
	)
}

// PutParameterized implements spec.md §4.2 put_parameterized: keep only the
// latest event per (pubkey, kind, d_tag).
func (d *D) PutParameterized(ev *event.E) (err error) {
	return d.update(
		func(txn *badger.Txn) (err error) {
			key := indexes.KindPubkeyDTagKey(ev.Kind.K, ev.Pubkey, ev.DTag())
			return d.replace(txn, key, ev)
		},
	)
}

// replace looks up the current holder of a replaceable-family key and
// overwrites it only if ev is newer per spec.md §3's tie-break (higher
// created_at, ties broken by greater id).
func (d *D) replace(txn *badger.Txn, key []byte, ev *event.E) (err error) {
	item, getErr := txn.Get(key)
	if getErr != nil && getErr != badger.ErrKeyNotFound {
		return getErr
	}
	if getErr == nil {
		var serBytes []byte
		if serBytes, err = item.ValueCopy(nil); chk.E(err) {
			return err
		}
		ser := indexes.SerialFromBytes(serBytes)
		var existing *event.E
		if existing, err = d.getEventBySerial(txn, ser); chk.E(err) {
			return err
		}
		if existing != nil && !isNewer(ev, existing) {
			// existing wins, drop ev
			return nil
		}
		if err = d.deleteSerial(txn, ser, existing); chk.E(err) {
			return err
		}
	}
	idKey := indexes.IdKey(ev.Id)
	var ser indexes.Serial
	if ser, err = d.writeNew(txn, ev, idKey); chk.E(err) {
		return err
	}
	return txn.Set(key, ser.Bytes())
}

// isNewer reports whether a supersedes b under the "Latest" rule of
// spec.md §3.
func isNewer(a, b *event.E) bool {
	if a.CreatedAt.I64() != b.CreatedAt.I64() {
		return a.CreatedAt.I64() > b.CreatedAt.I64()
	}
	return greaterId(a.Id, b.Id)
}

func greaterId(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return len(a) > len(b)
}

// writeNew allocates a serial, writes the event record and its id/pubkey
// indexes, and returns the new serial. An id that carries a deletion
// tombstone is refused with an error.
func (d *D) writeNew(txn *badger.Txn, ev *event.E, idKey []byte) (ser indexes.Serial, err error) {
	if _, err = txn.Get(indexes.TombstoneKey(ev.Id)); err == nil {
		return 0, errorf.E("store: event %x was deleted", ev.Id)
	} else if err != badger.ErrKeyNotFound {
		return 0, err
	}
	if ser, err = d.nextSerial(); chk.E(err) {
		return 0, err
	}
	var val []byte
	if val, err = encodeEvent(ev); chk.E(err) {
		return 0, err
	}
	if err = txn.Set(indexes.EventKey(ser), val); chk.E(err) {
		return 0, err
	}
	if err = txn.Set(idKey, ser.Bytes()); chk.E(err) {
		return 0, err
	}
	pcaKey := indexes.PubkeyCreatedAtKey(ev.Pubkey, ev.CreatedAt.I64(), ser)
	if err = txn.Set(pcaKey, nil); chk.E(err) {
		return 0, err
	}
	return ser, nil
}
