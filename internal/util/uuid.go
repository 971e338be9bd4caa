// Package util provides small content-hashing helpers shared by the
// messaging layer for deterministic envelope IDs.
package util

import (
	"crypto/md5"
	"encoding/json"

	"github.com/google/uuid"
)

// HashUUID marshals value to JSON and folds its MD5 digest into a
// UUID, so two calls with equal values always produce the same ID.
// internal/messaging uses this for NewDeterministicMessage, so
// re-sending an identical payload after a dropped ack reuses the same
// envelope ID instead of minting a new one.
func HashUUID(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	hasher := md5.New()
	hasher.Write([]byte(raw))
	hash := hasher.Sum(nil)
	uuid, err := uuid.FromBytes(hash[:16])
	if err != nil {
		return ""
	}
	return uuid.String()
}
