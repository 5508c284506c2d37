package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfilesCollection is the Mongo collection the profile collaborator writes to.
const ProfilesCollection = "profiles"

// ConnectMongo connects to the profile document store and makes sure the
// lookup indexes exist.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	mdb := client.Database(database)
	if err := ensureProfileIndexes(ctx, mdb.Collection(ProfilesCollection)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ensure profile indexes: %w", err)
	}

	log.Info().Str("database", database).Msg("connected to mongodb")
	return client, mdb, nil
}

func ensureProfileIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user"),
		},
		{
			Keys: bson.D{
				{Key: "approvalStatus", Value: 1},
				{Key: "isComplete", Value: 1},
				{Key: "gender", Value: 1},
				{Key: "age", Value: 1},
			},
			Options: options.Index().SetName("ix_discovery"),
		},
		{
			Keys:    bson.D{{Key: "location.city", Value: 1}},
			Options: options.Index().SetName("ix_city"),
		},
	})
	return err
}

// DisconnectMongo closes the client with a bounded timeout.
func DisconnectMongo(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
