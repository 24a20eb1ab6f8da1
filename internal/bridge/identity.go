// ABOUTME: Identity derivation from Matrix user IDs
// ABOUTME: The dialog core keys everything on opaque int64 identities

package bridge

import "hash/fnv"

// Identity maps a Matrix user ID to the stable opaque integer identity the
// core operates on. FNV-1a keeps it deterministic across restarts so the
// configured admin list hashes to the same set every run.
func Identity(userID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	return int64(h.Sum64())
}

// AdminIdentities hashes the configured admin user IDs for the policy.
func AdminIdentities(userIDs []string) []int64 {
	ids := make([]int64, len(userIDs))
	for i, uid := range userIDs {
		ids[i] = Identity(uid)
	}
	return ids
}
