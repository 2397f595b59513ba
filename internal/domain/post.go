package domain

import (
	"math"
	"time"
)

type Post struct {
	ID        string    `json:"id" bson:"_id"`
	Caption   string    `json:"caption" bson:"caption"`
	Tags      []string  `json:"tags" bson:"tags"`
	ImgURL    string    `json:"imgUrl" bson:"imgUrl"`
	ImgID     string    `json:"imgId" bson:"imgId"`
	Location  string    `json:"location" bson:"location"`
	CreatorID string    `json:"creatorId" bson:"creatorId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	LikedBy   []string  `json:"likedBy" bson:"likedBy"`
}

// PostContent carries the mutable post fields.
type PostContent struct {
	Caption  string
	Tags     []string
	ImgURL   string
	ImgID    string
	Location string
}

// Apply returns a copy of p with the content replaced. ID, creator, creation
// time and the liked-by set are carried over.
func (c PostContent) Apply(p *Post) *Post {
	next := *p
	next.Caption = c.Caption
	next.Tags = cloneIDs(c.Tags)
	next.ImgURL = c.ImgURL
	next.ImgID = c.ImgID
	next.Location = c.Location
	next.LikedBy = cloneIDs(p.LikedBy)
	return &next
}

// LikedByProfile reports whether profileID is in the liked-by set.
func (p *Post) LikedByProfile(profileID string) bool { return contains(p.LikedBy, profileID) }

// Page is a zero-based page request.
type Page struct {
	Number int
	Limit  int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

func (p Page) Valid() bool {
	return p.Number >= 0 && p.Limit >= 1 && p.Limit <= MaxPageLimit
}

// Skip is the number of posts before the page. It saturates at
// math.MaxInt64, which every store treats as past the end.
func (p Page) Skip() int64 {
	if p.Limit > 0 && int64(p.Number) > math.MaxInt64/int64(p.Limit) {
		return math.MaxInt64
	}
	return int64(p.Number) * int64(p.Limit)
}
