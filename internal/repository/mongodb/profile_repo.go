package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/repository"
)

type ProfileRepo struct{ C *mongo.Collection }

func NewProfileRepo(db *mongo.Database) *ProfileRepo {
	return &ProfileRepo{C: db.Collection(profilesCollection)}
}

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	_, err := r.C.InsertOne(ctx, p)
	return err
}

func (r *ProfileRepo) Get(ctx context.Context, id string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProfileRepo) GetByAccountID(ctx context.Context, accountID string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"accountId": accountID})
}

func (r *ProfileRepo) findOne(ctx context.Context, filter bson.M) (*domain.Profile, error) {
	var p domain.Profile
	err := r.C.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepo) List(ctx context.Context) ([]*domain.Profile, error) {
	cur, err := r.C.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Profile](ctx, cur)
}

func (r *ProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	res, err := r.C.UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"name":   p.Name,
		"email":  p.Email,
		"bio":    p.Bio,
		"imgUrl": p.ImgURL,
		"imgId":  p.ImgID,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// AddToSet pushes postID only when the set does not already hold it. The
// guard lives in the filter, so the check and the write are one atomic step.
func (r *ProfileRepo) AddToSet(ctx context.Context, profileID string, set repository.ProfileSet, postID string) (bool, error) {
	field := string(set)
	res, err := r.C.UpdateOne(ctx,
		bson.M{"_id": profileID, field: bson.M{"$ne": postID}},
		bson.M{"$addToSet": bson.M{field: postID}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *ProfileRepo) RemoveFromSet(ctx context.Context, profileID string, set repository.ProfileSet, postID string) (bool, error) {
	field := string(set)
	res, err := r.C.UpdateOne(ctx,
		bson.M{"_id": profileID, field: postID},
		bson.M{"$pull": bson.M{field: postID}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *ProfileRepo) PullPost(ctx context.Context, postID string) ([]string, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{string(repository.LikedPosts): postID},
		bson.M{string(repository.SavedPosts): postID},
	}}

	cur, err := r.C.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	_, err = r.C.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$pull": bson.M{
			string(repository.LikedPosts): postID,
			string(repository.SavedPosts): postID,
		}})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
