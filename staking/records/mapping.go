// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/nezha-labs/staking/kv"
)

// Record is a persisted value with a bounded encoding.
type Record interface {
	// MaxLen is the largest encoded length the record can reach.
	MaxLen() int
}

// Key addresses a record inside a mapping.
type Key interface {
	Bytes() []byte
}

// Index is an integer key such as an epoch index.
type Index uint64

func (i Index) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(i))
}

// PageKey addresses one winners page of an epoch.
type PageKey struct {
	Epoch uint64
	Page  uint64
}

func (p PageKey) Bytes() []byte {
	b := binary.BigEndian.AppendUint64(nil, p.Epoch)
	return binary.BigEndian.AppendUint64(b, p.Page)
}

// ErrRecordTooLarge is returned when an encoding exceeds the record's MaxLen.
var ErrRecordTooLarge = errors.New("record exceeds max length")

// Position returns the store key of key inside the named bucket.
func Position(bucket kv.Bucket, key []byte) []byte {
	h := blake2b.Sum256(key)
	return append([]byte(bucket), h[:]...)
}

// Mapping is a key/value record table, similar to a mapping in a contract.
// Values are RLP encoded; a missing key decodes to the zero value.
type Mapping[K Key, V Record] struct {
	ctx    *Context
	bucket kv.Bucket
}

func NewMapping[K Key, V Record](ctx *Context, bucket kv.Bucket) *Mapping[K, V] {
	return &Mapping[K, V]{ctx: ctx, bucket: bucket}
}

// Get returns the value of key and whether it exists.
func (m *Mapping[K, V]) Get(key K) (value V, found bool, err error) {
	raw, err := m.ctx.get(Position(m.bucket, key.Bytes()))
	if err != nil || len(raw) == 0 {
		return value, false, err
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrapf(err, "decode %s", m.bucket)
	}
	return value, true, nil
}

// Set stores value under key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := encode(&value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", m.bucket)
	}
	m.ctx.put(Position(m.bucket, key.Bytes()), raw)
	return nil
}

// Delete removes key.
func (m *Mapping[K, V]) Delete(key K) {
	m.ctx.put(Position(m.bucket, key.Bytes()), nil)
}

// Slot is a single record stored at a fixed position.
type Slot[V Record] struct {
	ctx *Context
	pos []byte
}

func NewSlot[V Record](ctx *Context, bucket kv.Bucket) *Slot[V] {
	return &Slot[V]{ctx: ctx, pos: Position(bucket, nil)}
}

// Get returns the stored value and whether it exists.
func (s *Slot[V]) Get() (value V, found bool, err error) {
	raw, err := s.ctx.get(s.pos)
	if err != nil || len(raw) == 0 {
		return value, false, err
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrap(err, "decode slot")
	}
	return value, true, nil
}

// Set stores value.
func (s *Slot[V]) Set(value V) error {
	raw, err := encode(&value)
	if err != nil {
		return errors.Wrap(err, "encode slot")
	}
	s.ctx.put(s.pos, raw)
	return nil
}

func encode[V Record](value *V) ([]byte, error) {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return nil, err
	}
	if limit := (*value).MaxLen(); len(raw) > limit {
		return nil, errors.Wrapf(ErrRecordTooLarge, "%d > %d", len(raw), limit)
	}
	return raw, nil
}

// Scan decodes every record stored in bucket, stopping early when fn returns false.
func Scan[V Record](store kv.Store, bucket kv.Bucket, fn func(V) bool) error {
	it := bucket.Iterate(store, kv.Range{})
	defer it.Release()

	for it.Next() {
		var value V
		if err := rlp.DecodeBytes(it.Value(), &value); err != nil {
			return errors.Wrapf(err, "decode %s", bucket)
		}
		if !fn(value) {
			break
		}
	}
	return it.Error()
}
