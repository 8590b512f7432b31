// Package sync reconciles the local cache with the remote store. The conflict
// policy is whole-document last-writer-wins by updatedAt: there is no field
// level reconciliation, so concurrent edits to the same trip within one poll
// window lose one side entirely. Merge isolates the policy behind a single
// function so a finer-grained strategy could replace it without touching
// callers.
package sync

import "github.com/YulanysYula/TravelPuzzle/internal/domain"

// Merge resolves one trip id present on both sides. The remote document wins
// only when strictly newer; on a tie the local copy is kept, so a session
// never regresses its own edit just because the remote echoed it back.
func Merge(local, remote domain.Trip) domain.Trip {
	if remote.UpdatedAt.After(local.UpdatedAt) {
		return remote
	}
	return local
}

// MergeLists folds a remote snapshot into the local trip list.
//
// For each remote trip: absent locally → inserted; present → replaced only if
// the remote copy is strictly newer. Trips present locally but absent from
// the remote are preserved; deletions do not propagate in this direction.
//
// Returns the merged list plus the subset of remote documents that were
// inserted or won a comparison; the caller persists those back to the local
// cache. Merging the same snapshot twice changes nothing the second time.
func MergeLists(local, remote []domain.Trip) (merged, changed []domain.Trip) {
	merged = make([]domain.Trip, len(local))
	copy(merged, local)

	for _, r := range remote {
		idx := -1
		for i := range merged {
			if merged[i].ID == r.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, r)
			changed = append(changed, r)
			continue
		}
		if winner := Merge(merged[idx], r); winner.UpdatedAt.After(merged[idx].UpdatedAt) {
			merged[idx] = winner
			changed = append(changed, winner)
		}
	}
	return merged, changed
}
