// Package journal provides the registry's append-only audit log.
//
// Every registry operation that commits emits one or more event records:
// submission, challenge, slash, finalize, withdraw. Records carry a
// unique id, a timestamp, and the event payload as JSON.
//
// # Framing
//
// On disk each record is framed as
//
//	[4-byte big-endian length][payload][4-byte big-endian CRC32]
//
// so torn tails and bit rot are detected on read. Files rotate into
// numbered segments (journal-00000, journal-00001, ...) once they exceed
// the segment size; a Reader iterates all segments in order.
//
// # Replay
//
// Replay folds a journal back into a claim store, reconstructing the
// claim table (including terminal flags and zeroed bonds) after a crash
// of a deployment that used a volatile store. Challenge records are
// audit-only and do not change state during replay.
package journal
