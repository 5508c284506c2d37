package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"matrimony-service/internal/models"
)

// ProfileRepository reads profiles owned by the profile collaborator.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	GetProfiles(ctx context.Context, userIDs []string) (map[string]models.Profile, error)
	Search(ctx context.Context, viewerID string, criteria models.ProfileSearch) ([]models.Profile, error)
}

// ProfileRepo is the MongoDB implementation of ProfileRepository.
type ProfileRepo struct {
	coll *mongo.Collection
}

// NewProfileRepo constructs a ProfileRepo over the given collection.
func NewProfileRepo(coll *mongo.Collection) *ProfileRepo {
	return &ProfileRepo{coll: coll}
}

// GetProfile fetches one profile by owner id.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Profile{}, models.ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// GetProfiles fetches many profiles keyed by owner id. Missing ids are simply absent.
func (r *ProfileRepo) GetProfiles(ctx context.Context, userIDs []string) (map[string]models.Profile, error) {
	out := make(map[string]models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"userId": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p models.Profile
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		out[p.UserID] = p
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	return out, nil
}

// Search returns approved, complete profiles matching criteria, excluding the viewer.
// Privacy rules are applied by the caller.
func (r *ProfileRepo) Search(ctx context.Context, viewerID string, criteria models.ProfileSearch) ([]models.Profile, error) {
	criteria = criteria.Normalize()

	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "userId", Value: 1}}).
		SetSkip(int64((criteria.Page - 1) * criteria.Limit)).
		SetLimit(int64(criteria.Limit))

	cursor, err := r.coll.Find(ctx, SearchFilter(viewerID, criteria), opts)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

// SearchFilter builds the Mongo filter for discovery search.
func SearchFilter(viewerID string, criteria models.ProfileSearch) bson.M {
	filter := bson.M{
		"approvalStatus": models.ApprovalApproved,
		"isComplete":     true,
		"userId":         bson.M{"$ne": viewerID},
	}

	exact := map[string]string{
		"gender":           criteria.Gender,
		"religion":         criteria.Religion,
		"community":        criteria.Community,
		"motherTongue":     criteria.MotherTongue,
		"location.city":    criteria.City,
		"location.country": criteria.Country,
	}
	for field, value := range exact {
		if value != "" {
			filter[field] = value
		}
	}

	age := bson.M{}
	if criteria.MinAge > 0 {
		age["$gte"] = criteria.MinAge
	}
	if criteria.MaxAge > 0 {
		age["$lte"] = criteria.MaxAge
	}
	if len(age) > 0 {
		filter["age"] = age
	}
	return filter
}
