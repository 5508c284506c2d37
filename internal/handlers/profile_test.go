package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"matrimony-service/internal/mocks"
	"matrimony-service/internal/models"
	"matrimony-service/internal/services"
)

func setupProfileRouter(userID string) (*gin.Engine, *mocks.ProfileRepositoryMock, *mocks.InterestRepositoryMock) {
	profiles := new(mocks.ProfileRepositoryMock)
	interests := new(mocks.InterestRepositoryMock)
	handler := NewProfileHandler(services.NewProfileService(profiles, interests))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.GET("/profiles/search", handler.Search)
	r.GET("/profiles/:user_id", handler.GetProfile)
	return r, profiles, interests
}

func TestGetProfileRedactsForViewer(t *testing.T) {
	router, profiles, interests := setupProfileRouter("bob")
	hide := false
	p := approved("alice")
	p.AnnualIncome = "30L"
	p.Privacy.ShowIncome = &hide
	p.Location = models.Location{Address: "12 MG Road", City: "Pune"}
	p.Privacy.ShowLocation = &hide
	profiles.On("GetProfile", mock.Anything, "alice").Return(p, nil).Once()
	interests.On("HasAccepted", mock.Anything, "bob", "alice").Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/profiles/alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "30L")
	assert.NotContains(t, body, "MG Road")
	assert.Contains(t, body, `"city":"Pune"`)
	assert.NotContains(t, body, "showIncome")
}

func TestGetProfileDeniedLooksLikeNotFound(t *testing.T) {
	blocked := approved("alice")
	blocked.Privacy.BlockedUsers = []string{"bob"}
	hidden := approved("alice")
	hidden.Privacy.IsHidden = true

	tests := []struct {
		name    string
		profile models.Profile
		err     error
	}{
		{name: "missing", err: models.ErrProfileNotFound},
		{name: "blocked", profile: blocked},
		{name: "hidden", profile: hidden},
	}

	var bodies []string
	for _, tc := range tests {
		router, profiles, interests := setupProfileRouter("bob")
		profiles.On("GetProfile", mock.Anything, "alice").Return(tc.profile, tc.err).Once()
		interests.On("HasAccepted", mock.Anything, "bob", "alice").Return(false, nil).Maybe()

		req := httptest.NewRequest(http.MethodGet, "/profiles/alice", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code, tc.name)
		bodies = append(bodies, rec.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[0], bodies[2])
}

func TestSearchEndpoint(t *testing.T) {
	router, profiles, interests := setupProfileRouter("bob")
	criteria := models.ProfileSearch{Gender: "female", City: "Pune", MinAge: 25, MaxAge: 32, Page: 2, Limit: 10}
	profiles.On("Search", mock.Anything, "bob", criteria).Return([]models.Profile{approved("alice")}, nil).Once()
	interests.On("AcceptedCounterparts", mock.Anything, "bob").Return([]string{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/profiles/search?gender=female&city=Pune&minAge=25&maxAge=32&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"alice"`)
	profiles.AssertExpectations(t)
	interests.AssertExpectations(t)
}

func TestSearchBadParams(t *testing.T) {
	for _, query := range []string{"minAge=abc", "minAge=40&maxAge=30", "page=9223372036854775807", "page=1001"} {
		t.Run(query, func(t *testing.T) {
			router, profiles, _ := setupProfileRouter("bob")

			req := httptest.NewRequest(http.MethodGet, "/profiles/search?"+query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			profiles.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDebugRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	disabled := gin.New()
	RegisterDebugRoutes(disabled, nil, false)
	rec := httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	recorder := new(mocks.ActivityRecorderMock)
	recorder.On("Record", mock.Anything, mock.MatchedBy(func(a models.Activity) bool {
		return a.Action == "debug.audit_test"
	})).Once()
	enabled := gin.New()
	RegisterDebugRoutes(enabled, recorder, true)
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil)
	req.Header.Set("X-Request-ID", "req-7")
	enabled.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_id":"req-7"`)
	recorder.AssertExpectations(t)
}
