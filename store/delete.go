package store

import (
	"github.com/dgraph-io/badger/v4"

	"beacon.dev/encoders/event"
	"beacon.dev/encoders/timestamp"
	"beacon.dev/store/indexes"
	"beacon.dev/utils/chk"
)

// deleteSerial removes an event record, its id entry and its
// pubkey/created_at entry from within an existing transaction. The
// (kind, pubkey) and (kind, pubkey, d_tag) entries are not removed here;
// replace overwrites them with the new holder's serial. When ev is nil
// (the record was already absent) only the record key is deleted.
func (d *D) deleteSerial(txn *badger.Txn, ser indexes.Serial, ev *event.E) (err error) {
	if err = txn.Delete(indexes.EventKey(ser)); chk.E(err) {
		return err
	}
	if ev == nil {
		return nil
	}
	if err = txn.Delete(indexes.IdKey(ev.Id)); chk.E(err) {
		return err
	}
	pcaKey := indexes.PubkeyCreatedAtKey(ev.Pubkey, ev.CreatedAt.I64(), ser)
	if err = txn.Delete(pcaKey); chk.E(err) {
		return err
	}
	return nil
}

// DeleteEvent implements the NIP-09 deletion behavior supplemented into
// this store (spec.md is silent on deletion; the teacher's
// database.DeleteEvent is the grounding). It removes the stored event and
// its indexes, and — unless tombstone is explicitly suppressed — records a
// tombstone so a resubmission of the same id is provably a replay rather
// than new content.
func (d *D) DeleteEvent(id []byte, tombstone bool) (err error) {
	return d.update(
		func(txn *badger.Txn) (err error) {
			item, getErr := txn.Get(indexes.IdKey(id))
			if getErr == badger.ErrKeyNotFound {
				return nil
			}
			if getErr != nil {
				return getErr
			}
			var serBytes []byte
			if serBytes, err = item.ValueCopy(nil); chk.E(err) {
				return err
			}
			ser := indexes.SerialFromBytes(serBytes)
			var ev *event.E
			if ev, err = d.getEventBySerial(txn, ser); chk.E(err) {
				return err
			}
			if err = d.deleteSerial(txn, ser, ev); chk.E(err) {
				return err
			}
			if tombstone {
				ts := timestamp.Now()
				if err = txn.Set(indexes.TombstoneKey(id), ts.Marshal(nil)); chk.E(err) {
					return err
				}
			}
			return nil
		},
	)
}
