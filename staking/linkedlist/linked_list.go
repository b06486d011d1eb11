// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/nezha-labs/staking/kv"
	"github.com/nezha-labs/staking/staking/records"
)

type link struct {
	Addr common.Address
}

func (link) MaxLen() int { return records.ListSize(records.SizeAddress) }

type counter struct {
	N uint64
}

func (counter) MaxLen() int { return records.ListSize(records.SizeUint64) }

// LinkedList is a FIFO queue of addresses kept in records. Each address can be
// in the list at most once.
type LinkedList struct {
	head  *records.Slot[link]
	tail  *records.Slot[link]
	count *records.Slot[counter]
	next  *records.Mapping[common.Address, link]
	prev  *records.Mapping[common.Address, link]
}

// New creates a linked list whose records live under the name prefix.
func New(ctx *records.Context, name string) *LinkedList {
	return &LinkedList{
		head:  records.NewSlot[link](ctx, kv.Bucket(name+"/head")),
		tail:  records.NewSlot[link](ctx, kv.Bucket(name+"/tail")),
		count: records.NewSlot[counter](ctx, kv.Bucket(name+"/count")),
		next:  records.NewMapping[common.Address, link](ctx, kv.Bucket(name+"/next")),
		prev:  records.NewMapping[common.Address, link](ctx, kv.Bucket(name+"/prev")),
	}
}

func (l *LinkedList) addCount(delta int64) error {
	c, _, err := l.count.Get()
	if err != nil {
		return err
	}
	if delta < 0 && c.N < uint64(-delta) {
		return errors.New("linked list count underflow")
	}
	c.N = uint64(int64(c.N) + delta)
	return l.count.Set(c)
}

// Add appends an address to the end of the list.
func (l *LinkedList) Add(address common.Address) error {
	if address == (common.Address{}) {
		return errors.New("zero address")
	}
	in, err := l.Contains(address)
	if err != nil {
		return err
	}
	if in {
		return errors.New("address already queued")
	}

	oldTail, _, err := l.tail.Get()
	if err != nil {
		return err
	}

	if oldTail.Addr == (common.Address{}) {
		// the list is currently empty, set this entry to head & tail
		if err := l.head.Set(link{address}); err != nil {
			return err
		}
		if err := l.tail.Set(link{address}); err != nil {
			return err
		}
		return l.addCount(1)
	}

	if err := l.next.Set(oldTail.Addr, link{address}); err != nil {
		return err
	}
	if err := l.prev.Set(address, oldTail); err != nil {
		return err
	}
	if err := l.tail.Set(link{address}); err != nil {
		return err
	}
	return l.addCount(1)
}

// Contains reports whether address is queued.
func (l *LinkedList) Contains(address common.Address) (bool, error) {
	prev, _, err := l.prev.Get(address)
	if err != nil {
		return false, err
	}
	if prev.Addr != (common.Address{}) {
		return true, nil
	}
	head, err := l.Head()
	if err != nil {
		return false, err
	}
	return head == address && head != (common.Address{}), nil
}

// Remove extracts an address from anywhere in the list. Removing an address
// that is not queued is a no-op.
func (l *LinkedList) Remove(address common.Address) error {
	in, err := l.Contains(address)
	if err != nil || !in {
		return err
	}

	prev, _, err := l.prev.Get(address)
	if err != nil {
		return err
	}
	next, _, err := l.next.Get(address)
	if err != nil {
		return err
	}

	if prev.Addr != (common.Address{}) {
		if err := l.setOrDelete(l.next, prev.Addr, next); err != nil {
			return err
		}
	} else if err := l.head.Set(next); err != nil {
		return err
	}

	if next.Addr != (common.Address{}) {
		if err := l.setOrDelete(l.prev, next.Addr, prev); err != nil {
			return err
		}
	} else if err := l.tail.Set(prev); err != nil {
		return err
	}

	// clear the removed node's pointers
	l.next.Delete(address)
	l.prev.Delete(address)

	return l.addCount(-1)
}

func (l *LinkedList) setOrDelete(m *records.Mapping[common.Address, link], key common.Address, value link) error {
	if value.Addr == (common.Address{}) {
		m.Delete(key)
		return nil
	}
	return m.Set(key, value)
}

// Pop removes and returns the head.
func (l *LinkedList) Pop() (common.Address, error) {
	head, err := l.Head()
	if err != nil {
		return common.Address{}, err
	}
	if head == (common.Address{}) {
		return common.Address{}, errors.New("list is empty")
	}
	if err := l.Remove(head); err != nil {
		return common.Address{}, err
	}
	return head, nil
}

// Head returns the oldest address, or the zero address when empty.
func (l *LinkedList) Head() (common.Address, error) {
	head, _, err := l.head.Get()
	return head.Addr, err
}

// Len returns the number of queued addresses.
func (l *LinkedList) Len() (uint64, error) {
	c, _, err := l.count.Get()
	return c.N, err
}

// Iter traverses the list in FIFO order until completion or error.
func (l *LinkedList) Iter(callback func(common.Address) error) error {
	ptr, err := l.Head()
	if err != nil {
		return err
	}
	for ptr != (common.Address{}) {
		if err := callback(ptr); err != nil {
			return err
		}
		next, _, err := l.next.Get(ptr)
		if err != nil {
			return err
		}
		ptr = next.Addr
	}
	return nil
}
