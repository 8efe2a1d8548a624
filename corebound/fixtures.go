package corebound

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/dispatch"
	"github.com/hedera-core/txcore/core/round"
)

// EventFixture is the YAML shape one test event is authored in: a flat,
// human-editable list of transactions rather than the wire encoding the
// platform actually produces.
type EventFixture struct {
	Transactions []TransactionFixture `yaml:"transactions"`
}

// TransactionFixture is one YAML-authored transaction within an
// EventFixture.
type TransactionFixture struct {
	Functionality  string `yaml:"functionality"`
	Payer          string `yaml:"payer"`
	SubmittingNode string `yaml:"submittingNode"`
	ValidStartSecs int64  `yaml:"validStartSecs"`
	ValidStartNans int32  `yaml:"validStartNanos"`
	BodyHex        string `yaml:"bodyHex"`
}

// LoadEventFixtures decodes a sequence of EventFixture documents from path
// and converts each into a round.Event ready for RoundHandle.OnRound.
func LoadEventFixtures(path string) ([]round.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw []EventFixture
	dec := yaml.NewDecoder(f)
	for {
		var fixture EventFixture
		if err := dec.Decode(&fixture); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("corebound: decoding fixture %s: %w", path, err)
		}
		raw = append(raw, fixture)
	}

	events := make([]round.Event, 0, len(raw))
	for _, fx := range raw {
		ev := round.Event{Transactions: make([]round.UserTransaction, 0, len(fx.Transactions))}
		for _, tx := range fx.Transactions {
			body, err := decodeHex(tx.BodyHex)
			if err != nil {
				return nil, fmt.Errorf("corebound: fixture %s: bad bodyHex: %w", path, err)
			}
			ev.Transactions = append(ev.Transactions, round.UserTransaction{
				Body:          body,
				Functionality: dispatch.Functionality(tx.Functionality),
				Payer:         common.AccountID{Shard: 0, Realm: 0, Num: int64(hashString(tx.Payer))},
				ValidStart: common.ConsensusTimestamp{
					Seconds: tx.ValidStartSecs,
					Nanos:   tx.ValidStartNans,
				},
				SubmittingNode: common.AccountID{Shard: 0, Realm: 0, Num: int64(hashString(tx.SubmittingNode))},
			})
		}
		events = append(events, ev)
	}
	return events, nil
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

// hashString derives a stable synthetic account number from a fixture's
// human-readable identifier, so fixtures can name payers/nodes by string
// without every test needing to assign numeric ids by hand.
func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
