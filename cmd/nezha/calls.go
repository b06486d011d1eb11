// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nezha-labs/staking/instruction"
	"github.com/nezha-labs/staking/staking"
)

// callDoc is one YAML document of a call file:
//
//	instruction: createEpoch
//	signers: [0x...]
//	timestamp: 1700000000
//	args:
//	  expectedEndAt: 1700600000
//	  cfg: {...}
type callDoc struct {
	Instruction string           `yaml:"instruction"`
	Signers     []common.Address `yaml:"signers,omitempty"`
	Timestamp   uint64           `yaml:"timestamp,omitempty"`
	Args        yaml.Node        `yaml:"args"`
}

// decodeCalls reads every document of r in order.
func decodeCalls(r io.Reader) ([]*staking.Call, error) {
	var (
		calls []*staking.Call
		dec   = yaml.NewDecoder(r)
	)
	for n := 0; ; n++ {
		var doc callDoc
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return calls, nil
			}
			return nil, errors.Wrapf(err, "document %d", n)
		}
		tag, ok := instruction.TagByName(doc.Instruction)
		if !ok {
			return nil, errors.Errorf("document %d: unknown instruction %q", n, doc.Instruction)
		}
		ins, err := instruction.New(tag)
		if err != nil {
			return nil, err
		}
		if !doc.Args.IsZero() {
			if err := doc.Args.Decode(ins); err != nil {
				return nil, errors.Wrapf(err, "document %d: %v args", n, tag)
			}
		}
		calls = append(calls, &staking.Call{
			Signers:     doc.Signers,
			Timestamp:   doc.Timestamp,
			Instruction: ins,
		})
	}
}

// encodeCalls writes calls as a multi-document stream that decodeCalls reads back.
func encodeCalls(w io.Writer, calls []*staking.Call) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, c := range calls {
		doc := callDoc{
			Instruction: c.Instruction.Tag().String(),
			Signers:     c.Signers,
			Timestamp:   c.Timestamp,
		}
		if err := doc.Args.Encode(c.Instruction); err != nil {
			return errors.Wrapf(err, "encode %v", c.Instruction.Tag())
		}
		if err := enc.Encode(&doc); err != nil {
			return err
		}
	}
	return enc.Close()
}
