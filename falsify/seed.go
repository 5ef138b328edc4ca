package falsify

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"
)

// DeriveSeed derives a per-trial RNG seed from the campaign master seed,
// a namespace (the claim id), and the trial index. The derivation is
// the first 8 bytes of sha256(master | "|" | namespace | "|" | idx), so
// any single trial can be replayed without rerunning the campaign.
func DeriveSeed(masterSeed, namespace string, idx int) int64 {
	h := sha256.New()
	h.Write([]byte(masterSeed))
	h.Write([]byte("|"))
	h.Write([]byte(namespace))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.Itoa(idx)))
	return int64(binary.BigEndian.Uint64(h.Sum(nil)[:8]))
}

// RNGCommit is the campaign's public commitment to its seed derivation:
// sha256(master | "|" | claimID | "|" | implName) in hex. It goes into
// the certificate so a challenger can verify a replay used the same
// seeds without the master seed ever leaving the certificate author.
func RNGCommit(masterSeed, claimID, implName string) string {
	h := sha256.Sum256([]byte(masterSeed + "|" + claimID + "|" + implName))
	return hex.EncodeToString(h[:])
}
