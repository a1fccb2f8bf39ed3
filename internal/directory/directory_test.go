// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

import (
	"testing"
	"time"

	"github.com/opsdeck/opsdeck-tui/internal/model"
)

func conv(id int64, createdAt time.Time) model.Conversation {
	return model.Conversation{ID: id, Title: "c", CreatedAt: createdAt}
}

func TestGroupByRecency(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	conversations := []model.Conversation{
		conv(1, now.Add(-1*time.Hour)),                 // today
		conv(2, time.Date(2025, 3, 15, 0, 5, 0, 0, time.UTC)),  // today, early morning
		conv(3, time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)), // yesterday by calendar date
		conv(4, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)),  // 5 days ago
		conv(5, time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)),   // 7 days ago, still in week bucket
		conv(6, time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)),   // 8 days ago, older
		conv(7, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),    // much older
	}

	groups := GroupByRecency(conversations, now)

	want := []struct {
		label string
		ids   []int64
	}{
		{BucketToday, []int64{1, 2}},
		{BucketYesterday, []int64{3}},
		{BucketWeek, []int64{4, 5}},
		{BucketOlder, []int64{6, 7}},
	}

	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(groups), len(want))
	}
	for i, w := range want {
		if groups[i].Label != w.label {
			t.Errorf("group %d label = %q, want %q", i, groups[i].Label, w.label)
			continue
		}
		if len(groups[i].Conversations) != len(w.ids) {
			t.Errorf("%s has %d members, want %d", w.label, len(groups[i].Conversations), len(w.ids))
			continue
		}
		for j, id := range w.ids {
			if groups[i].Conversations[j].ID != id {
				t.Errorf("%s[%d] = %d, want %d", w.label, j, groups[i].Conversations[j].ID, id)
			}
		}
	}
}

func TestGroupByRecency_EmptyBucketsOmitted(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	groups := GroupByRecency([]model.Conversation{
		conv(1, now),
		conv(2, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}, now)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Label != BucketToday || groups[1].Label != BucketOlder {
		t.Errorf("labels = %q, %q", groups[0].Label, groups[1].Label)
	}
}

func TestGroupByRecency_NoConversations(t *testing.T) {
	if groups := GroupByRecency(nil, time.Now()); len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
}

func TestGroupByRecency_FutureTimestampIsToday(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	// Clock skew between client and server should not invent a bucket.
	groups := GroupByRecency([]model.Conversation{conv(1, now.Add(2*time.Hour))}, now)
	if len(groups) != 1 || groups[0].Label != BucketToday {
		t.Errorf("future-dated conversation should land in Today, got %+v", groups)
	}
}

func TestGroupByRecency_DSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tz database unavailable")
	}

	// DST began 2024-03-10 in New York, making that day 23 hours long.
	// Calendar-date comparison must not be fooled by the short day.
	now := time.Date(2024, 3, 11, 14, 0, 0, 0, loc)
	groups := GroupByRecency([]model.Conversation{
		conv(1, time.Date(2024, 3, 10, 20, 0, 0, 0, loc)),
	}, now)
	if len(groups) != 1 || groups[0].Label != BucketYesterday {
		t.Errorf("conversation from the spring-forward day should be Yesterday the day after, got %+v", groups)
	}

	// Eight calendar days back across the transition is only 191 elapsed
	// hours; it still belongs in Older.
	now = time.Date(2024, 3, 15, 14, 0, 0, 0, loc)
	groups = GroupByRecency([]model.Conversation{
		conv(2, time.Date(2024, 3, 7, 14, 0, 0, 0, loc)),
	}, now)
	if len(groups) != 1 || groups[0].Label != BucketOlder {
		t.Errorf("8 days back across spring-forward should be Older, got %+v", groups)
	}
}

func TestGroupByRecency_ZeroTimeIsOlder(t *testing.T) {
	// Unparseable server timestamps arrive as the zero time.
	groups := GroupByRecency([]model.Conversation{conv(1, time.Time{})}, time.Now())
	if len(groups) != 1 || groups[0].Label != BucketOlder {
		t.Errorf("zero-time conversation should land in Older, got %+v", groups)
	}
}
