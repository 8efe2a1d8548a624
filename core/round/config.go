// Package round drives a single consensus round through the state machine
// and publishes migration records once per software upgrade. CLI,
// configuration loading, and packaging are out of scope for the core;
// this package only consumes a validated Config.
package round

import (
	"fmt"

	"github.com/hedera-core/txcore/core/dispatch"
)

// Config is the node's validated runtime configuration, assembled from
// wherever the host process loads it (e.g. naoina/toml for file-based
// config, urfave/cli for flags) before being handed to NewExecutor.
type Config struct {
	dispatch.Config

	// RecordCacheCapacity bounds the record cache's index entries.
	RecordCacheCapacity int
	// RecordCacheBlobBytes bounds the fastcache-backed blob store.
	RecordCacheBlobBytes int
	// RecordCacheTTLSeconds is validated (> 0) but not read by NewExecutor:
	// the record cache keeps records.DefaultTTLSeconds.
	RecordCacheTTLSeconds int64

	// ConsensusTickNanos is validated (> 0) but not read by the executor or
	// the record lists, which space synthetic consensus timestamps one
	// nanosecond apart.
	ConsensusTickNanos int64
}

// DefaultConfig returns a Config with conservative defaults.
func DefaultConfig() Config {
	return Config{
		Config: dispatch.Config{
			MaxPrecedingRecords: 10,
			MaxFollowingRecords: 20,
		},
		RecordCacheCapacity:   100_000,
		RecordCacheBlobBytes:  64 << 20,
		RecordCacheTTLSeconds: 180,
		ConsensusTickNanos:    1,
	}
}

// Validate rejects a Config with internally inconsistent or nonsensical
// values before the executor starts driving rounds against it.
func (c Config) Validate() error {
	if c.MaxPrecedingRecords < 0 {
		return fmt.Errorf("round: MaxPrecedingRecords must be >= 0, got %d", c.MaxPrecedingRecords)
	}
	if c.MaxFollowingRecords < 0 {
		return fmt.Errorf("round: MaxFollowingRecords must be >= 0, got %d", c.MaxFollowingRecords)
	}
	if c.RecordCacheCapacity <= 0 {
		return fmt.Errorf("round: RecordCacheCapacity must be > 0, got %d", c.RecordCacheCapacity)
	}
	if c.RecordCacheBlobBytes <= 0 {
		return fmt.Errorf("round: RecordCacheBlobBytes must be > 0, got %d", c.RecordCacheBlobBytes)
	}
	if c.RecordCacheTTLSeconds <= 0 {
		return fmt.Errorf("round: RecordCacheTTLSeconds must be > 0, got %d", c.RecordCacheTTLSeconds)
	}
	if c.ConsensusTickNanos <= 0 {
		return fmt.Errorf("round: ConsensusTickNanos must be > 0, got %d", c.ConsensusTickNanos)
	}
	return nil
}
