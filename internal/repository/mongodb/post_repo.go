package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freebook/backend/internal/domain"
)

// newestFirst keeps page boundaries stable when createdAt collides.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}

type PostRepo struct{ C *mongo.Collection }

func NewPostRepo(db *mongo.Database) *PostRepo {
	return &PostRepo{C: db.Collection(postsCollection)}
}

func (r *PostRepo) Create(ctx context.Context, p *domain.Post) error {
	_, err := r.C.InsertOne(ctx, p)
	return err
}

func (r *PostRepo) Get(ctx context.Context, id string) (*domain.Post, error) {
	var p domain.Post
	err := r.C.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}
	return &p, nil
}

func (r *PostRepo) List(ctx context.Context) ([]*domain.Post, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *PostRepo) Recent(ctx context.Context, page domain.Page) ([]*domain.Post, error) {
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *PostRepo) Search(ctx context.Context, query string) ([]*domain.Post, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"caption": re},
		bson.M{"tags": re},
	}}
	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

func (r *PostRepo) ByCreator(ctx context.Context, creatorID string) ([]*domain.Post, error) {
	return r.find(ctx, bson.M{"creatorId": creatorID}, options.Find().SetSort(newestFirst))
}

func (r *PostRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Post, error) {
	cur, err := r.C.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Post](ctx, cur)
}

func (r *PostRepo) Update(ctx context.Context, p *domain.Post) error {
	res, err := r.C.UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"caption":  p.Caption,
		"tags":     p.Tags,
		"imgUrl":   p.ImgURL,
		"imgId":    p.ImgID,
		"location": p.Location,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepo) Delete(ctx context.Context, id string) error {
	res, err := r.C.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepo) AddLiker(ctx context.Context, postID, profileID string) (bool, error) {
	res, err := r.C.UpdateOne(ctx,
		bson.M{"_id": postID, "likedBy": bson.M{"$ne": profileID}},
		bson.M{"$addToSet": bson.M{"likedBy": profileID}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *PostRepo) RemoveLiker(ctx context.Context, postID, profileID string) (bool, error) {
	res, err := r.C.UpdateOne(ctx,
		bson.M{"_id": postID, "likedBy": profileID},
		bson.M{"$pull": bson.M{"likedBy": profileID}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
