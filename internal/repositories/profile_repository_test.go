package repositories

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"matrimony-service/internal/models"
)

func TestSearchFilterDefaults(t *testing.T) {
	filter := SearchFilter("me", models.ProfileSearch{})

	assert.Equal(t, bson.M{
		"approvalStatus": models.ApprovalApproved,
		"isComplete":     true,
		"userId":         bson.M{"$ne": "me"},
	}, filter)
}

func TestSearchFilterCriteria(t *testing.T) {
	filter := SearchFilter("me", models.ProfileSearch{
		Gender:   "female",
		City:     "Pune",
		Religion: "hindu",
		MinAge:   25,
		MaxAge:   32,
	})

	assert.Equal(t, "female", filter["gender"])
	assert.Equal(t, "Pune", filter["location.city"])
	assert.Equal(t, "hindu", filter["religion"])
	assert.Equal(t, bson.M{"$gte": 25, "$lte": 32}, filter["age"])
	assert.NotContains(t, filter, "community")
}

func TestSearchNormalize(t *testing.T) {
	c := models.ProfileSearch{Limit: 1000, Page: -2}.Normalize()
	assert.Equal(t, models.MaxSearchLimit, c.Limit)
	assert.Equal(t, 1, c.Page)

	c = models.ProfileSearch{Page: math.MaxInt}.Normalize()
	assert.Equal(t, models.MaxSearchPage, c.Page)

	c = models.ProfileSearch{}.Normalize()
	assert.Equal(t, models.DefaultSearchLimit, c.Limit)
}
