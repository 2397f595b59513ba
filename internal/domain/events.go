package domain

import "time"

// Event topics written to the outbox.
const (
	TopicUserRegistered = "user.registered"
	TopicProfileUpdated = "profile.updated"
	TopicPostCreated    = "post.created"
	TopicPostUpdated    = "post.updated"
	TopicPostDeleted    = "post.deleted"
	TopicPostLiked      = "post.liked"
	TopicPostUnliked    = "post.unliked"
	TopicPostSaved      = "post.saved"
	TopicPostUnsaved    = "post.unsaved"
)

// Event is a pending outbox entry.
type Event struct {
	ID          string     `bson:"_id"`
	Topic       string     `bson:"topic"`
	Key         string     `bson:"key"`
	Payload     []byte     `bson:"payload"`
	CreatedAt   time.Time  `bson:"createdAt"`
	PublishedAt *time.Time `bson:"publishedAt,omitempty"`
}

// InteractionPayload is the body of like/save events.
type InteractionPayload struct {
	ProfileID string `json:"profile_id"`
	PostID    string `json:"post_id"`
}
