package dq

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Signature returns the stable identity hash of an issue: SHA-256 over a
// canonical JSON object of (issue type, entity type, sorted distinct member
// ids, keys). Member-id ordering and key insertion order do not affect the
// result; json.Marshal emits map keys sorted and without whitespace, so equal
// logical inputs always hash equal. The whole upsert/resolve lifecycle
// depends on that.
func Signature(issueType IssueType, entity EntityType, memberIDs []uint64, keys map[string]string) string {
	members := sortedUniqueIDs(memberIDs)
	if keys == nil {
		keys = map[string]string{}
	}

	payload := map[string]any{
		"issue_type": string(issueType),
		"model":      string(entity),
		"members":    members,
		"keys":       keys,
	}
	raw, _ := json.Marshal(payload)

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func sortedUniqueIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
