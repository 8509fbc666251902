package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// hashString returns a short deterministic hash of s.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:8])
}

// memberKey identifies a record independent of capture order.
func memberKey(r RawRecord) string {
	return r.SourceName + "\x00" + r.Text
}

// ClusterID derives a stable identifier from a cluster's member identity.
// The same set of (source, text) pairs always yields the same ID, so
// repeated runs recognize previously seen signals regardless of the order
// sources completed in.
func ClusterID(c EvidenceCluster) string {
	keys := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		keys = append(keys, memberKey(m))
	}
	sort.Strings(keys)
	var joined string
	for i, k := range keys {
		if i > 0 {
			joined += "\x1f"
		}
		joined += k
	}
	return hashString(joined)
}

// RecordID derives a stable identifier for a single raw record.
func RecordID(r RawRecord) string {
	return hashString(memberKey(r))
}
