package store

import (
	"github.com/dgraph-io/badger/v4"

	"beacon.dev/encoders/event"
	"beacon.dev/store/indexes"
	"beacon.dev/utils/chk"
)

func (d *D) getEventBySerial(txn *badger.Txn, ser indexes.Serial) (ev *event.E, err error) {
	item, err := txn.Get(indexes.EventKey(ser))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if chk.E(err) {
		return nil, err
	}
	var val []byte
	if val, err = item.ValueCopy(nil); chk.E(err) {
		return nil, err
	}
	return decodeEvent(val)
}

// GetById fetches a stored event by its 32-byte id, or (nil, nil) if absent.
func (d *D) GetById(id []byte) (ev *event.E, err error) {
	err = d.view(
		func(txn *badger.Txn) (err error) {
			item, getErr := txn.Get(indexes.IdKey(id))
			if getErr == badger.ErrKeyNotFound {
				return nil
			}
			if getErr != nil {
				return getErr
			}
			var serBytes []byte
			if serBytes, err = item.ValueCopy(nil); err != nil {
				return err
			}
			ser := indexes.SerialFromBytes(serBytes)
			ev, err = d.getEventBySerial(txn, ser)
			return err
		},
	)
	return
}

// IsTombstoned reports whether id was previously deleted.
func (d *D) IsTombstoned(id []byte) (yes bool, err error) {
	err = d.view(
		func(txn *badger.Txn) error {
			_, getErr := txn.Get(indexes.TombstoneKey(id))
			if getErr == badger.ErrKeyNotFound {
				return nil
			}
			if getErr != nil {
				return getErr
			}
			yes = true
			return nil
		},
	)
	return
}
