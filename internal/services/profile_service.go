package services

import (
	"context"
	"fmt"

	"matrimony-service/internal/models"
	"matrimony-service/internal/privacy"
	"matrimony-service/internal/repositories"
)

// ProfileService serves redacted profiles for direct lookups and discovery search.
type ProfileService struct {
	profiles  repositories.ProfileRepository
	interests repositories.InterestRepository
}

func NewProfileService(profiles repositories.ProfileRepository, interests repositories.InterestRepository) *ProfileService {
	return &ProfileService{profiles: profiles, interests: interests}
}

// GetProfile returns userID's profile as viewerID may see it when opening it directly.
func (s *ProfileService) GetProfile(ctx context.Context, viewerID, userID string) (privacy.RedactedProfile, error) {
	ctx, span := tracer.Start(ctx, "ProfileService.GetProfile")
	defer span.End()

	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return privacy.RedactedProfile{}, err
	}

	connected := false
	if viewerID != userID {
		connected, err = s.interests.HasAccepted(ctx, viewerID, userID)
		if err != nil {
			return privacy.RedactedProfile{}, err
		}
	}
	return privacy.Apply(p, privacy.Viewer{ID: viewerID, Path: privacy.PathDirect, Connected: connected})
}

// Search runs discovery search. Profiles the viewer may not see are omitted.
func (s *ProfileService) Search(ctx context.Context, viewerID string, criteria models.ProfileSearch) ([]privacy.RedactedProfile, error) {
	ctx, span := tracer.Start(ctx, "ProfileService.Search")
	defer span.End()

	if criteria.MinAge < 0 || criteria.MaxAge < 0 {
		return nil, models.NewInputError("age", "must not be negative")
	}
	if criteria.MinAge > 0 && criteria.MaxAge > 0 && criteria.MinAge > criteria.MaxAge {
		return nil, models.NewInputError("age", "minAge must not exceed maxAge")
	}
	if criteria.Page > models.MaxSearchPage {
		return nil, models.NewInputError("page", fmt.Sprintf("must not exceed %d", models.MaxSearchPage))
	}

	found, err := s.profiles.Search(ctx, viewerID, criteria.Normalize())
	if err != nil {
		return nil, err
	}
	matches, err := s.interests.AcceptedCounterparts(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	matched := make(map[string]struct{}, len(matches))
	for _, id := range matches {
		matched[id] = struct{}{}
	}

	return privacy.ApplyAll(found, privacy.Viewer{ID: viewerID, Path: privacy.PathDiscovery}, func(ownerID string) bool {
		_, ok := matched[ownerID]
		return ok
	}), nil
}
