package store

import (
	"sort"

	"github.com/dgraph-io/badger/v4"

	"beacon.dev/encoders/event"
	"beacon.dev/encoders/filter"
	"beacon.dev/store/indexes"
	"beacon.dev/utils/chk"
)

// Query implements spec.md §4.2 query: collects events matching any filter
// in the list, merges, deduplicates by id, sorts by (created_at desc, id
// desc), and truncates to the smallest limit among matching filters, when
// one is present. Per the indexing design note, each filter's candidate set
// is restricted to its authors before tag/kind/time constraints are applied
// in memory.
func (d *D) Query(filters []*filter.F) (out event.S, err error) {
	seen := map[string]*event.E{}
	minLimit := 0
	err = d.view(
		func(txn *badger.Txn) (err error) {
			for _, f := range filters {
				var matched []*event.E
				if matched, err = d.candidatesForFilter(txn, f); chk.E(err) {
					return err
				}
				for _, ev := range matched {
					seen[ev.IdString()] = ev
				}
				if f.Limit > 0 && (minLimit == 0 || f.Limit < minLimit) {
					minLimit = f.Limit
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	out = make(event.S, 0, len(seen))
	for _, ev := range seen {
		out = append(out, ev)
	}
	sort.Sort(out)
	if minLimit > 0 && len(out) > minLimit {
		out = out[:minLimit]
	}
	return out, nil
}

// candidatesForFilter returns every stored event matching f, restricting
// the scan to f's ids or authors before applying the remaining constraints.
func (d *D) candidatesForFilter(txn *badger.Txn, f *filter.F) (out []*event.E, err error) {
	if f.Ids.Len() > 0 {
		for _, id := range f.Ids.ToSlice() {
			item, getErr := txn.Get(indexes.IdKey(id))
			if getErr == badger.ErrKeyNotFound {
				continue
			}
			if getErr != nil {
				return nil, getErr
			}
			var serBytes []byte
			if serBytes, err = item.ValueCopy(nil); chk.E(err) {
				return nil, err
			}
			ser := indexes.SerialFromBytes(serBytes)
			var ev *event.E
			if ev, err = d.getEventBySerial(txn, ser); chk.E(err) {
				return nil, err
			}
			if ev != nil && f.Matches(ev) {
				out = append(out, ev)
			}
		}
		return out, nil
	}
	for _, author := range f.Authors.ToSlice() {
		prefix := indexes.PubkeyCreatedAtPrefix(author)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			ser := indexes.SerialFromBytes(key[len(key)-8:])
			var ev *event.E
			if ev, err = d.getEventBySerial(txn, ser); chk.E(err) {
				it.Close()
				return nil, err
			}
			if ev == nil {
				continue
			}
			if f.Until != nil && ev.CreatedAt.I64() > f.Until.I64() {
				continue
			}
			if f.Since != nil && ev.CreatedAt.I64() < f.Since.I64() {
				// keys are in descending created_at order per author:
				// once we're below Since, nothing further qualifies.
				break
			}
			if f.Matches(ev) {
				out = append(out, ev)
			}
		}
		it.Close()
	}
	return out, nil
}
