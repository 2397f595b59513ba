package domain

// Profile is the public user record, 1:1 with an Account.
type Profile struct {
	ID         string   `json:"id" bson:"_id"`
	AccountID  string   `json:"accountId" bson:"accountId"`
	Username   string   `json:"username" bson:"username"`
	Name       string   `json:"name" bson:"name"`
	Email      string   `json:"email" bson:"email"`
	Bio        string   `json:"bio" bson:"bio"`
	ImgURL     string   `json:"imgUrl" bson:"imgUrl"`
	ImgID      string   `json:"imgId" bson:"imgId"`
	LikedPosts []string `json:"likedPosts" bson:"likedPosts"`
	SavedPosts []string `json:"savedPosts" bson:"savedPosts"`
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Name   string
	Email  string
	Bio    string
	ImgURL string
	ImgID  string
}

// Apply returns a copy of p with the mutable fields replaced. Identity and
// engagement fields are carried over.
func (u ProfileUpdate) Apply(p *Profile) *Profile {
	next := *p
	next.Name = u.Name
	next.Email = u.Email
	next.Bio = u.Bio
	next.ImgURL = u.ImgURL
	next.ImgID = u.ImgID
	next.LikedPosts = cloneIDs(p.LikedPosts)
	next.SavedPosts = cloneIDs(p.SavedPosts)
	return &next
}

// HasLiked reports whether postID is in the liked set.
func (p *Profile) HasLiked(postID string) bool { return contains(p.LikedPosts, postID) }

// HasSaved reports whether postID is in the saved set.
func (p *Profile) HasSaved(postID string) bool { return contains(p.SavedPosts, postID) }

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
