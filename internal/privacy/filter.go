// Package privacy projects stored profiles into the view a given viewer is
// allowed to see. Nothing in here touches storage or logs.
package privacy

import (
	"errors"

	"matrimony-service/internal/models"
)

var (
	// ErrAccessDenied means the owner blocked the viewer. Callers render it as not found.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound means the profile is hidden from this viewer on this path.
	ErrNotFound = errors.New("profile not found")
)

// Path identifies how the viewer reached the profile.
type Path string

const (
	PathDiscovery    Path = "discovery"
	PathDirect       Path = "direct"
	PathRelationship Path = "relationship"
)

// Viewer describes who is looking and from where. Connected is true when an
// accepted interest exists between viewer and owner.
type Viewer struct {
	ID        string
	Path      Path
	Connected bool
}

// RedactedProfile is the outward view of a profile.
type RedactedProfile struct {
	UserID        string          `json:"userId"`
	DisplayName   string          `json:"displayName"`
	Gender        string          `json:"gender"`
	Age           int             `json:"age"`
	Religion      string          `json:"religion,omitempty"`
	Community     string          `json:"community,omitempty"`
	MotherTongue  string          `json:"motherTongue,omitempty"`
	MaritalStatus string          `json:"maritalStatus,omitempty"`
	Education     string          `json:"education,omitempty"`
	Occupation    string          `json:"occupation,omitempty"`
	AnnualIncome  string          `json:"annualIncome,omitempty"`
	Bio           string          `json:"bio,omitempty"`
	Photos        []string        `json:"photos"`
	Contact       *models.Contact `json:"contact,omitempty"`
	Location      models.Location `json:"location"`
	IsOwner       bool            `json:"isOwner"`

	// Owner-only fields.
	Privacy        *models.Privacy       `json:"privacy,omitempty"`
	ApprovalStatus models.ApprovalStatus `json:"approvalStatus,omitempty"`

	source models.Profile
}

// Source returns a copy of the redacted profile the view was built from.
func (r RedactedProfile) Source() models.Profile {
	return cloneProfile(r.source)
}

// Apply returns the view of p that v may see. The block check runs before
// anything else; field rules are independent of each other.
func Apply(p models.Profile, v Viewer) (RedactedProfile, error) {
	if v.ID != "" && v.ID == p.UserID {
		return buildView(cloneProfile(p), true), nil
	}
	if p.Privacy.Blocks(v.ID) {
		return RedactedProfile{}, ErrAccessDenied
	}
	if p.Privacy.IsHidden && !v.Connected && v.Path != PathRelationship {
		return RedactedProfile{}, ErrNotFound
	}

	src := cloneProfile(p)
	if !src.Privacy.PhotosVisible() {
		src.Photos = []string{}
	}
	if !contactAllowed(src.Privacy, v) {
		src.Contact = models.Contact{}
	}
	if !src.Privacy.IncomeVisible() {
		src.AnnualIncome = ""
	}
	if !src.Privacy.LocationVisible() {
		src.Location.Address = ""
	}
	return buildView(src, false), nil
}

// ApplyAll filters a list for discovery: denied profiles are dropped rather
// than reported. connected reports whether the viewer is matched with an owner.
func ApplyAll(profiles []models.Profile, v Viewer, connected func(ownerID string) bool) []RedactedProfile {
	out := make([]RedactedProfile, 0, len(profiles))
	for _, p := range profiles {
		pv := v
		if connected != nil {
			pv.Connected = connected(p.UserID)
		}
		r, err := Apply(p, pv)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

// IsDenied reports whether err came from the filter.
func IsDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrNotFound)
}

func contactAllowed(p models.Privacy, v Viewer) bool {
	if !p.ContactVisible() {
		return false
	}
	switch p.ContactPolicy() {
	case models.ContactNone:
		return false
	case models.ContactMatches:
		return v.Connected
	default:
		return true
	}
}

func buildView(src models.Profile, owner bool) RedactedProfile {
	r := RedactedProfile{
		UserID:        src.UserID,
		DisplayName:   src.DisplayName,
		Gender:        src.Gender,
		Age:           src.Age,
		Religion:      src.Religion,
		Community:     src.Community,
		MotherTongue:  src.MotherTongue,
		MaritalStatus: src.MaritalStatus,
		Education:     src.Education,
		Occupation:    src.Occupation,
		AnnualIncome:  src.AnnualIncome,
		Bio:           src.Bio,
		Photos:        make([]string, len(src.Photos)),
		Location:      src.Location,
		IsOwner:       owner,
		source:        src,
	}
	copy(r.Photos, src.Photos)
	if src.Contact != (models.Contact{}) {
		contact := src.Contact
		r.Contact = &contact
	}
	if owner {
		privacy := clonePrivacy(src.Privacy)
		r.Privacy = &privacy
		r.ApprovalStatus = src.ApprovalStatus
	}
	return r
}

func cloneProfile(p models.Profile) models.Profile {
	out := p
	out.Photos = cloneStrings(p.Photos)
	out.Privacy = clonePrivacy(p.Privacy)
	return out
}

func clonePrivacy(p models.Privacy) models.Privacy {
	out := p
	out.ShowPhotos = cloneBool(p.ShowPhotos)
	out.ShowContact = cloneBool(p.ShowContact)
	out.ShowIncome = cloneBool(p.ShowIncome)
	out.ShowLocation = cloneBool(p.ShowLocation)
	out.BlockedUsers = cloneStrings(p.BlockedUsers)
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// cloneStrings keeps nil and empty distinct.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
