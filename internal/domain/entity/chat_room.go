package entity

import (
	"strings"
	"time"
)

// ParticipantInfo is copied into the room at creation time and never re-synced.
type ParticipantInfo struct {
	ID     string `json:"id" firestore:"id"` // identity string (email)
	UserID string `json:"userId" firestore:"userId"`
	Name   string `json:"name" firestore:"name"`
	Avatar string `json:"avatar" firestore:"avatar"`
}

type ListingSnapshot struct {
	Title    string  `json:"title" firestore:"title"`
	Price    float64 `json:"price" firestore:"price"`
	ImageURL string  `json:"imageUrl" firestore:"imageUrl"`
}

type LastMessage struct {
	Text      string    `json:"text" firestore:"text"`
	SenderID  string    `json:"senderId" firestore:"senderId"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

type ChatRoom struct {
	ID               string                `json:"id" firestore:"-"`
	Participants     []string              `json:"participants" firestore:"participants"`
	ParticipantsInfo []ParticipantInfo     `json:"participantsInfo" firestore:"participantsInfo"`
	Listing          *ListingSnapshot      `json:"listing" firestore:"listing"`
	LastMessage      *LastMessage          `json:"lastMessage" firestore:"lastMessage"`
	LastRead         map[string]*time.Time `json:"lastRead" firestore:"lastRead"`
	DeletedFor       []string              `json:"deletedFor" firestore:"deletedFor"`
	CreatedAt        time.Time             `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	LastUpdated      time.Time             `json:"lastUpdated" firestore:"lastUpdated,serverTimestamp"`
}

// RoomID is the deterministic join key for (listing, buyer, seller).
func RoomID(listingID, buyer, seller string) string {
	return listingID + "_" + buyer + "_" + seller
}

// ParticipantKey is the lastRead map key for an identity. Existing clients
// write these keys with '.' replaced by '_'.
func ParticipantKey(identity string) string {
	return strings.ReplaceAll(identity, ".", "_")
}

// NewChatRoom builds a room that has never been written. Both lastRead
// entries start out null.
func NewChatRoom(listingID string, buyer, seller ParticipantInfo, listing *ListingSnapshot) *ChatRoom {
	return &ChatRoom{
		ID:               RoomID(listingID, buyer.ID, seller.ID),
		Participants:     []string{buyer.ID, seller.ID},
		ParticipantsInfo: []ParticipantInfo{buyer, seller},
		Listing:          listing,
		LastRead: map[string]*time.Time{
			ParticipantKey(buyer.ID):  nil,
			ParticipantKey(seller.ID): nil,
		},
		DeletedFor: []string{},
	}
}

func (r *ChatRoom) HasParticipant(identity string) bool {
	return containsString(r.Participants, identity)
}

func (r *ChatRoom) IsDeletedFor(identity string) bool {
	return containsString(r.DeletedFor, identity)
}

// LastReadBy returns nil when the viewer has never read the room.
func (r *ChatRoom) LastReadBy(identity string) *time.Time {
	if r.LastRead == nil {
		return nil
	}
	return r.LastRead[ParticipantKey(identity)]
}

// IsUnreadFor reports whether the latest message is from someone else and
// newer than the viewer's last-read marker.
func (r *ChatRoom) IsUnreadFor(viewer string) bool {
	if r.LastMessage == nil || r.LastMessage.SenderID == viewer {
		return false
	}
	lastRead := r.LastReadBy(viewer)
	if lastRead == nil {
		return true
	}
	return r.LastMessage.CreatedAt.After(*lastRead)
}

// OtherParticipant returns the snapshot of the participant that is not viewer.
func (r *ChatRoom) OtherParticipant(viewer string) *ParticipantInfo {
	for i := range r.ParticipantsInfo {
		if r.ParticipantsInfo[i].ID != viewer {
			return &r.ParticipantsInfo[i]
		}
	}
	return nil
}

// RoomPatch is the set of field-level drifts the resolver repairs on an
// existing room.
type RoomPatch struct {
	RestoreFor      []string
	ListingImageURL string
	// Listing replaces a null stored snapshot as a whole.
	Listing *ListingSnapshot
}

func (p RoomPatch) IsEmpty() bool {
	return len(p.RestoreFor) == 0 && p.ListingImageURL == "" && p.Listing == nil
}

// DriftFrom computes what must change on the stored room so that buyer sees it
// again and the listing snapshot carries an image when one is now known.
func (r *ChatRoom) DriftFrom(buyer string, listing *ListingSnapshot) RoomPatch {
	var patch RoomPatch
	if r.IsDeletedFor(buyer) {
		patch.RestoreFor = []string{buyer}
	}
	if listing == nil || listing.ImageURL == "" {
		return patch
	}
	switch {
	case r.Listing == nil:
		snapshot := *listing
		patch.Listing = &snapshot
	case r.Listing.ImageURL == "":
		patch.ListingImageURL = listing.ImageURL
	}
	return patch
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
