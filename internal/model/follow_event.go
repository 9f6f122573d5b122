package model

import "time"

const (
	FollowEventFollow   = "follow"
	FollowEventUnfollow = "unfollow"
)

type FollowEvent struct {
	Type       string    `json:"type"`
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
