// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package directory groups conversations into recency buckets for the
// sidebar: Today, Yesterday, Previous 7 Days, Older.
package directory

import (
	"time"

	"github.com/opsdeck/opsdeck-tui/internal/model"
)

// Bucket labels in display priority order.
const (
	BucketToday     = "Today"
	BucketYesterday = "Yesterday"
	BucketWeek      = "Previous 7 Days"
	BucketOlder     = "Older"
)

// Group is one non-empty recency bucket with its conversations in the order
// the server returned them.
type Group struct {
	Label         string
	Conversations []model.Conversation
}

// GroupByRecency buckets conversations by the calendar date of CreatedAt
// relative to now. Each conversation lands in the first bucket whose
// predicate matches; empty buckets are omitted. Server ordering within a
// bucket is preserved.
func GroupByRecency(conversations []model.Conversation, now time.Time) []Group {
	buckets := map[string][]model.Conversation{}
	for _, c := range conversations {
		label := bucketFor(c.CreatedAt, now)
		buckets[label] = append(buckets[label], c)
	}

	order := []string{BucketToday, BucketYesterday, BucketWeek, BucketOlder}
	groups := make([]Group, 0, len(order))
	for _, label := range order {
		if members := buckets[label]; len(members) > 0 {
			groups = append(groups, Group{Label: label, Conversations: members})
		}
	}
	return groups
}

// bucketFor compares calendar dates, not elapsed durations; a conversation
// from 23:59 is "Yesterday" one minute later.
func bucketFor(createdAt, now time.Time) string {
	switch days := dayNumber(now) - dayNumber(createdAt.In(now.Location())); {
	case days <= 0:
		return BucketToday
	case days == 1:
		return BucketYesterday
	case days <= 7:
		return BucketWeek
	default:
		return BucketOlder
	}
}

// dayNumber maps a time to its calendar day count. Anchoring the date at
// noon UTC keeps the count exact across DST transitions, where the
// midnight-to-midnight gap is 23 or 25 hours.
func dayNumber(t time.Time) int {
	year, month, day := t.Date()
	return int(time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Unix() / 86400)
}
