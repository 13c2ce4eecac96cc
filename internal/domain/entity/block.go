package entity

import "time"

type BlockedUser struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// BlockList is a point-in-time view of the users a viewer has blocked.
// Stale is set when it was served from the persisted fallback instead of
// the marketplace API.
type BlockList struct {
	Users     []BlockedUser `json:"users"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Stale     bool          `json:"stale"`

	ids map[string]struct{}
}

func NewBlockList(users []BlockedUser, fetchedAt time.Time) *BlockList {
	list := &BlockList{Users: users, FetchedAt: fetchedAt, ids: make(map[string]struct{}, len(users))}
	for _, u := range users {
		list.ids[u.UserID] = struct{}{}
	}
	return list
}

func (b *BlockList) Contains(userID string) bool {
	if b == nil || userID == "" {
		return false
	}
	_, ok := b.ids[userID]
	return ok
}

func (b *BlockList) UserIDs() []string {
	if b == nil {
		return nil
	}
	ids := make([]string, 0, len(b.Users))
	for _, u := range b.Users {
		ids = append(ids, u.UserID)
	}
	return ids
}
