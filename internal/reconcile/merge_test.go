package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonground-app/backend/internal/model/chat"
)

func ts(sec int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, sec, 0, time.UTC)
}

func TestMergeConfirmsPendingMessage(t *testing.T) {
	pending := map[string]chat.Message{
		"tmp-1": {TempID: "tmp-1", Text: "hi", Status: chat.StatusSending, Timestamp: ts(1)},
	}
	existing := []chat.Message{pending["tmp-1"]}
	server := []chat.Message{{ID: "msg-1", TempID: "tmp-1", Text: "hi", Timestamp: ts(1)}}

	merged := Merge(server, existing, pending)

	require.Len(t, merged, 1, "confirmed message must appear exactly once")
	assert.Equal(t, "msg-1", merged[0].ID)
	assert.Empty(t, pending, "confirmed temp id must leave the pending map")
}

func TestMergeIdempotent(t *testing.T) {
	server := []chat.Message{
		{ID: "msg-1", Timestamp: ts(1)},
		{ID: "msg-2", Timestamp: ts(2)},
	}
	existing := []chat.Message{{ID: "msg-0", Timestamp: ts(0)}}

	first := Merge(server, existing, map[string]chat.Message{})
	second := Merge(server, first, map[string]chat.Message{})

	assert.Equal(t, first, second, "merging the same server messages twice must be stable")
}

func TestMergeServerWinsOnConflict(t *testing.T) {
	existing := []chat.Message{{ID: "msg-1", Text: "local stale", Timestamp: ts(1)}}
	server := []chat.Message{{ID: "msg-1", Text: "server copy", Timestamp: ts(1)}}

	merged := Merge(server, existing, map[string]chat.Message{})

	require.Len(t, merged, 1)
	assert.Equal(t, "server copy", merged[0].Text)
}

func TestMergeDeterministicOrderOnEqualTimestamps(t *testing.T) {
	server := []chat.Message{
		{ID: "msg-b", Timestamp: ts(5)},
		{ID: "msg-a", Timestamp: ts(5)},
		{ID: "msg-c", Timestamp: ts(5)},
	}

	merged := Merge(server, nil, map[string]chat.Message{})

	require.Len(t, merged, 3)
	assert.Equal(t, []string{"msg-a", "msg-b", "msg-c"},
		[]string{merged[0].ID, merged[1].ID, merged[2].ID})
}

func TestMergeEmptyServerLeavesExisting(t *testing.T) {
	existing := []chat.Message{
		{ID: "msg-1", Timestamp: ts(1)},
		{ID: "msg-2", Timestamp: ts(2)},
	}

	merged := Merge(nil, existing, map[string]chat.Message{})

	assert.Equal(t, existing, merged)
}

func TestMergeOlderPageWithoutDuplicates(t *testing.T) {
	existing := []chat.Message{
		{ID: "msg3", Timestamp: ts(3)},
		{ID: "msg2", Timestamp: ts(2)},
	}
	page := []chat.Message{
		{ID: "msg2", Timestamp: ts(2)},
		{ID: "msg1", Timestamp: ts(1)},
	}

	merged := Merge(page, existing, map[string]chat.Message{})

	require.Len(t, merged, 3, "msg2 must not duplicate")
	assert.Equal(t, []string{"msg1", "msg2", "msg3"},
		[]string{merged[0].ID, merged[1].ID, merged[2].ID})
}

func TestMergeReinsertsStillPending(t *testing.T) {
	pending := map[string]chat.Message{
		"tmp-9": {TempID: "tmp-9", Text: "on its way", Status: chat.StatusSending, Timestamp: ts(9)},
	}
	server := []chat.Message{{ID: "msg-1", Timestamp: ts(1)}}

	merged := Merge(server, nil, pending)

	require.Len(t, merged, 2)
	assert.Equal(t, "tmp-9", merged[1].TempID)
	assert.Contains(t, pending, "tmp-9", "unconfirmed entries stay pending")
}
