package models

import "time"

// ContactPolicy controls who may see a profile's contact details.
type ContactPolicy string

const (
	ContactAll     ContactPolicy = "all"
	ContactMatches ContactPolicy = "matches"
	ContactNone    ContactPolicy = "none"
)

// ApprovalStatus is the moderation state of a profile.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Profile is the matrimonial profile document owned by the profile collaborator.
type Profile struct {
	UserID         string         `bson:"userId" json:"userId"`
	DisplayName    string         `bson:"displayName" json:"displayName"`
	Gender         string         `bson:"gender" json:"gender"`
	Age            int            `bson:"age" json:"age"`
	Religion       string         `bson:"religion,omitempty" json:"religion,omitempty"`
	Community      string         `bson:"community,omitempty" json:"community,omitempty"`
	MotherTongue   string         `bson:"motherTongue,omitempty" json:"motherTongue,omitempty"`
	MaritalStatus  string         `bson:"maritalStatus,omitempty" json:"maritalStatus,omitempty"`
	Education      string         `bson:"education,omitempty" json:"education,omitempty"`
	Occupation     string         `bson:"occupation,omitempty" json:"occupation,omitempty"`
	AnnualIncome   string         `bson:"annualIncome,omitempty" json:"annualIncome,omitempty"`
	Bio            string         `bson:"bio,omitempty" json:"bio,omitempty"`
	Photos         []string       `bson:"photos" json:"photos"`
	Contact        Contact        `bson:"contact" json:"contact"`
	Location       Location       `bson:"location" json:"location"`
	Privacy        Privacy        `bson:"privacy" json:"privacy"`
	ApprovalStatus ApprovalStatus `bson:"approvalStatus" json:"approvalStatus"`
	IsComplete     bool           `bson:"isComplete" json:"isComplete"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Contact holds the fields guarded by showContact / whoCanContact.
type Contact struct {
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// Location separates the fine-grained address from the coarse region.
type Location struct {
	Address string `bson:"address,omitempty" json:"address,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// Privacy is the owner's visibility configuration. Unset show* flags mean true.
type Privacy struct {
	ShowPhotos    *bool         `bson:"showPhotos,omitempty" json:"showPhotos,omitempty"`
	ShowContact   *bool         `bson:"showContact,omitempty" json:"showContact,omitempty"`
	ShowIncome    *bool         `bson:"showIncome,omitempty" json:"showIncome,omitempty"`
	ShowLocation  *bool         `bson:"showLocation,omitempty" json:"showLocation,omitempty"`
	IsHidden      bool          `bson:"isHidden" json:"isHidden"`
	WhoCanContact ContactPolicy `bson:"whoCanContact,omitempty" json:"whoCanContact,omitempty"`
	BlockedUsers  []string      `bson:"blockedUsers,omitempty" json:"blockedUsers,omitempty"`
}

func flag(v *bool) bool { return v == nil || *v }

func (p Privacy) PhotosVisible() bool   { return flag(p.ShowPhotos) }
func (p Privacy) ContactVisible() bool  { return flag(p.ShowContact) }
func (p Privacy) IncomeVisible() bool   { return flag(p.ShowIncome) }
func (p Privacy) LocationVisible() bool { return flag(p.ShowLocation) }

// ContactPolicy returns the effective policy, defaulting to ContactAll.
func (p Privacy) ContactPolicy() ContactPolicy {
	if p.WhoCanContact == "" {
		return ContactAll
	}
	return p.WhoCanContact
}

// Blocks reports whether userID is on the block list.
func (p Privacy) Blocks(userID string) bool {
	for _, id := range p.BlockedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Eligible reports whether the profile may receive new interests.
func (p Profile) Eligible() bool {
	return p.ApprovalStatus == ApprovalApproved && p.IsComplete && !p.Privacy.IsHidden
}

// ProfileSearch is the criteria accepted by discovery search.
type ProfileSearch struct {
	Gender       string
	Religion     string
	Community    string
	MotherTongue string
	City         string
	Country      string
	MinAge       int
	MaxAge       int
	Page         int
	Limit        int
}

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
	MaxSearchPage      = 1000
)

// Normalize clamps paging values.
func (s ProfileSearch) Normalize() ProfileSearch {
	if s.Limit <= 0 {
		s.Limit = DefaultSearchLimit
	}
	if s.Limit > MaxSearchLimit {
		s.Limit = MaxSearchLimit
	}
	if s.Page < 1 {
		s.Page = 1
	}
	if s.Page > MaxSearchPage {
		s.Page = MaxSearchPage
	}
	return s
}
