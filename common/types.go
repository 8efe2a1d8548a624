package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AccountID identifies an account by shard/realm/num triple, the host
// platform's addressing scheme for payers, nodes, and transfer endpoints.
type AccountID struct {
	Shard int64
	Realm int64
	Num   int64
}

// String renders the canonical "shard.realm.num" form.
func (a AccountID) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Shard, a.Realm, a.Num)
}

// IsZero reports whether a is the zero-value account.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// ParseAccountID parses the canonical "shard.realm.num" form.
func ParseAccountID(s string) (AccountID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return AccountID{}, fmt.Errorf("common: malformed account id %q", s)
	}
	nums := make([]int64, 3)
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return AccountID{}, fmt.Errorf("common: malformed account id %q: %w", s, err)
		}
		nums[i] = n
	}
	return AccountID{Shard: nums[0], Realm: nums[1], Num: nums[2]}, nil
}

// ConsensusTimestamp is a deterministic, cluster-agreed instant with
// nanosecond resolution, sufficient to total-order every record a round
// emits.
type ConsensusTimestamp struct {
	Seconds int64
	Nanos   int32
}

// ConsensusTimestampFromTime truncates a wall-clock time to consensus-time
// resolution. Used only at the platform boundary (corebound), never inside
// the deterministic core.
func ConsensusTimestampFromTime(t time.Time) ConsensusTimestamp {
	return ConsensusTimestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Add returns the timestamp advanced by the given number of nanoseconds.
// Negative deltas move the timestamp earlier, used to assign preceding
// offsets.
func (c ConsensusTimestamp) Add(deltaNanos int64) ConsensusTimestamp {
	total := c.Seconds*int64(time.Second) + int64(c.Nanos) + deltaNanos
	sec := total / int64(time.Second)
	nanos := total % int64(time.Second)
	if nanos < 0 {
		nanos += int64(time.Second)
		sec--
	}
	return ConsensusTimestamp{Seconds: sec, Nanos: int32(nanos)}
}

// Compare returns -1, 0, or 1 as c sorts before, equal to, or after other.
func (c ConsensusTimestamp) Compare(other ConsensusTimestamp) int {
	if c.Seconds != other.Seconds {
		if c.Seconds < other.Seconds {
			return -1
		}
		return 1
	}
	if c.Nanos != other.Nanos {
		if c.Nanos < other.Nanos {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether c strictly precedes other.
func (c ConsensusTimestamp) Before(other ConsensusTimestamp) bool { return c.Compare(other) < 0 }

// After reports whether c strictly follows other.
func (c ConsensusTimestamp) After(other ConsensusTimestamp) bool { return c.Compare(other) > 0 }

// String renders "seconds.nanos", the conventional wire form.
func (c ConsensusTimestamp) String() string {
	return fmt.Sprintf("%d.%09d", c.Seconds, c.Nanos)
}

// TransactionID identifies a transaction by its payer, the consensus-valid
// start time the payer selected, and a nonce distinguishing synthetic
// children sharing the same payer/validStart.
type TransactionID struct {
	Payer      AccountID
	ValidStart ConsensusTimestamp
	Nonce      uint32
	Scheduled  bool
}

// String renders a debug-friendly representation.
func (t TransactionID) String() string {
	scheduled := ""
	if t.Scheduled {
		scheduled = "/scheduled"
	}
	return fmt.Sprintf("%s@%s/%d%s", t.Payer, t.ValidStart, t.Nonce, scheduled)
}

// WithNonce returns a copy of t with the nonce replaced, used when a record
// builder mints a child transaction id from its parent's.
func (t TransactionID) WithNonce(nonce uint32) TransactionID {
	t.Nonce = nonce
	return t
}

// Hash is a 32-byte opaque digest, used for block/record hashes produced by
// the external hashing collaborator.
type Hash [32]byte

// BytesToHash right-aligns b into a Hash, truncating on the left if b is
// longer than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > len(h) {
		b = b[len(b)-len(h):]
	}
	copy(h[len(h)-len(b):], b)
	return h
}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}
