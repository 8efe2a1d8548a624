package corebound

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/holiman/billy"

	"github.com/hedera-core/txcore/core/records"
	"github.com/hedera-core/txcore/log"
)

// recordSlotter buckets encoded records into billy's fixed-size shelves.
// Records are small, bounded structs; a handful of size classes is enough
// to keep space amplification low without billy's own size estimation.
func recordSlotter(size int) uint32 {
	switch {
	case size <= 512:
		return 512
	case size <= 2048:
		return 2048
	case size <= 8192:
		return 8192
	default:
		return uint32(((size / 8192) + 1) * 8192)
	}
}

// ReplaySink is a RecordStreamSink backed by a billy.Database: an
// append-only, slot-allocated local store used to replay the records a
// round produced, independent of whatever long-term archive downstream
// mirrors them into. Emit calls downstream synchronously, so a slow
// downstream slows Emit.
type ReplaySink struct {
	mu    sync.Mutex
	store billy.Database
	log   log.Logger

	downstream RecordStreamSink
}

// RecordStreamSink is satisfied by round.RecordStreamSink; declared again
// here so this file only imports round.Record's constituent package.
type RecordStreamSink interface {
	Emit(r records.Record, sidecars [][]byte) error
}

// OpenReplaySink opens (or creates) a billy-backed replay buffer rooted at
// dir. Every emitted record is appended there before being forwarded to
// downstream, so a downstream outage never loses records already reached
// by consensus.
func OpenReplaySink(dir string, downstream RecordStreamSink) (*ReplaySink, error) {
	s := &ReplaySink{downstream: downstream, log: log.New("module", "corebound", "component", "replaysink")}
	store, err := billy.Open(billy.Options{Path: dir}, recordSlotter, s.onReuse)
	if err != nil {
		return nil, fmt.Errorf("corebound: opening replay store at %s: %w", dir, err)
	}
	s.store = store
	return s, nil
}

// onReuse is billy's notification hook, invoked for every slot billy
// reclaims and reassigns to a new record on startup compaction. The
// replay buffer treats reclaimed ids as free for reuse, so there is
// nothing to reconcile here beyond logging.
func (s *ReplaySink) onReuse(id uint64, data []byte) {
	s.log.Trace("replay slot reclaimed", "id", id)
}

// Emit appends r (and its sidecars) to the local replay buffer, then
// forwards to downstream. A downstream failure is logged and swallowed:
// the round has already reached consensus and the record stays in the
// replay buffer. Nothing in this package retries the downstream emit.
func (s *ReplaySink) Emit(r records.Record, sidecars [][]byte) error {
	enc, err := encodeRecord(r, sidecars)
	if err != nil {
		return fmt.Errorf("corebound: encoding record %s: %w", r.TransactionID, err)
	}

	s.mu.Lock()
	_, err = s.store.Put(enc)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("corebound: appending record %s to replay buffer: %w", r.TransactionID, err)
	}

	if s.downstream != nil {
		if err := s.downstream.Emit(r, sidecars); err != nil {
			s.log.Error("downstream record emit failed, record retained in replay buffer",
				"txID", r.TransactionID, "err", err)
		}
	}
	return nil
}

// Close releases the underlying billy store's file handles.
func (s *ReplaySink) Close() error {
	return s.store.Close()
}

// encodeRecord is a minimal, stable, length-prefixed encoding: the exact
// wire format downstream archives use is out of scope here, so this keeps
// only what the replay buffer itself needs to round-trip a record's
// transaction id and status alongside its raw body and sidecars.
func encodeRecord(r records.Record, sidecars [][]byte) ([]byte, error) {
	var buf []byte
	buf = appendUvarintBytes(buf, []byte(r.TransactionID.String()))
	buf = appendUvarintBytes(buf, []byte{byte(r.Status)})
	buf = appendUvarintBytes(buf, r.Body)
	lenBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(lenBuf, uint64(len(sidecars)))
	buf = append(buf, lenBuf[:n]...)
	for _, s := range sidecars {
		buf = appendUvarintBytes(buf, s)
	}
	return buf, nil
}

func appendUvarintBytes(dst, src []byte) []byte {
	lenBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(lenBuf, uint64(len(src)))
	dst = append(dst, lenBuf[:n]...)
	return append(dst, src...)
}
