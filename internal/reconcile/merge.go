// Package reconcile implements the client side of the message protocol: the
// merge algorithm every inbound event funnels through, and the timeline that
// owns the optimistic message state.
package reconcile

import (
	"sort"

	"github.com/commonground-app/backend/internal/model/chat"
)

// Merge folds serverMessages into existingMessages under the authority rules
// of the protocol:
//
//  1. index existing messages by id or temp id
//  2. server messages confirm and replace their temp identities (server wins
//     on conflict), removing the confirmed key from pending
//  3. still-pending messages not already represented are re-inserted
//  4. the result is ordered by timestamp, with the id/temp id as a
//     lexicographic tiebreak, so output is deterministic regardless of
//     arrival order
//
// The same call serves initial history, live pushes, pagination pages, and
// reconciliation updates; only the argument roles change. pending is mutated:
// confirmed entries are deleted.
func Merge(serverMessages, existingMessages []chat.Message, pending map[string]chat.Message) []chat.Message {
	index := make(map[string]chat.Message, len(existingMessages)+len(serverMessages))
	for _, msg := range existingMessages {
		if key := msg.Key(); key != "" {
			index[key] = msg
		}
	}

	for _, msg := range serverMessages {
		if msg.TempID != "" {
			delete(pending, msg.TempID)
			delete(index, msg.TempID)
		}
		if key := msg.Key(); key != "" {
			index[key] = msg
		}
	}

	for tempID, msg := range pending {
		if _, ok := index[tempID]; !ok {
			index[tempID] = msg
		}
	}

	merged := make([]chat.Message, 0, len(index))
	for _, msg := range index {
		merged = append(merged, msg)
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].Timestamp.Equal(merged[j].Timestamp) {
			return merged[i].Timestamp.Before(merged[j].Timestamp)
		}
		return merged[i].Key() < merged[j].Key()
	})
	return merged
}
