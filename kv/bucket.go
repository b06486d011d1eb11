// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides a logical namespace inside a kv store. Every record type
// lives in its own bucket so it can be scanned on its own.
type Bucket string

func (b Bucket) key(k []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(k)), b...), k...)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) { return src.Get(b.key(key)) },
		func(key []byte) (bool, error) { return src.Has(b.key(key)) },
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error { return src.Put(b.key(key), val) },
		func(key []byte) error { return src.Delete(b.key(key)) },
	}
}

// NewBulk wraps a bulk so that its keys land in the bucket.
func (b Bucket) NewBulk(src Bulk) Bulk {
	return &struct {
		Putter
		LenFunc
		WriteFunc
	}{
		b.NewPutter(src),
		src.Len,
		src.Write,
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		SnapshotFunc
		BulkFunc
		IterateFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func() Snapshot {
			snapshot := src.Snapshot()
			return &struct {
				Getter
				ReleaseFunc
			}{
				b.NewGetter(snapshot),
				snapshot.Release,
			}
		},
		func() Bulk { return b.NewBulk(src.Bulk()) },
		func(r Range) Iterator { return b.Iterate(src, r) },
	}
}

// Iterate scans the bucket range of src. Keys handed out by the iterator have
// the bucket prefix stripped.
func (b Bucket) Iterate(src interface{ Iterate(Range) Iterator }, r Range) Iterator {
	r.Start = b.key(r.Start)
	if len(r.Limit) == 0 {
		r.Limit = util.BytesPrefix([]byte(b)).Limit
	} else {
		r.Limit = b.key(r.Limit)
	}
	iter := src.Iterate(r)
	return &struct {
		FirstFunc
		NextFunc
		KeyFunc
		ValueFunc
		ReleaseFunc
		ErrorFunc
	}{
		iter.First,
		iter.Next,
		// strip the bucket
		func() []byte { return iter.Key()[len(b):] },
		iter.Value,
		iter.Release,
		iter.Error,
	}
}
