package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeAlertID computes a deterministic alert_id using SHA256.
// Formula: SHA256(mint|discovered_at|sent_at)
// Returns hex-encoded hash (64 characters).
func ComputeAlertID(mint string, discoveredAt, sentAt int64) string {
	data := fmt.Sprintf("%s|%d|%d", mint, discoveredAt, sentAt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
