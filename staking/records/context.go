// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/kv"
)

// Context buffers the record reads and writes of a single instruction. Reads
// see the instruction's own writes; nothing reaches the store until Commit.
type Context struct {
	src   kv.Getter
	dirty map[string][]byte
}

// NewContext creates a context reading through to src.
func NewContext(src kv.Getter) *Context {
	return &Context{
		src:   src,
		dirty: make(map[string][]byte),
	}
}

func (c *Context) get(key []byte) ([]byte, error) {
	if val, ok := c.dirty[string(key)]; ok {
		return val, nil
	}
	val, err := c.src.Get(key)
	if err != nil {
		if c.src.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read record")
	}
	return val, nil
}

func (c *Context) put(key, val []byte) {
	c.dirty[string(key)] = val
}

// Dirty returns the number of buffered writes.
func (c *Context) Dirty() int {
	return len(c.dirty)
}

// Commit flushes the buffered writes into p in key order. An empty value
// deletes the key.
func (c *Context) Commit(p kv.Putter) error {
	keys := make([]string, 0, len(c.dirty))
	for k := range c.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		val := c.dirty[k]
		var err error
		if len(val) == 0 {
			err = p.Delete([]byte(k))
		} else {
			err = p.Put([]byte(k), val)
		}
		if err != nil {
			return errors.Wrap(err, "commit record")
		}
	}
	return nil
}
