package model

import (
	"time"

	"gorm.io/datatypes"
)

// Organization is the tenant root; every other row belongs to exactly one.
type Organization struct {
	Root
	Name     string                                   `gorm:"type:varchar(128);not null;comment:organization name" json:"name"`
	Slug     string                                   `gorm:"uniqueIndex;type:varchar(64);not null;comment:url-safe identifier" json:"slug"`
	Domain   *string                                  `gorm:"type:varchar(128);comment:email domain" json:"domain,omitempty"`
	IsActive bool                                     `gorm:"not null" json:"isActive"`
	Settings datatypes.JSONType[OrganizationSettings] `gorm:"comment:tenant level settings" json:"settings"`
}

// OrganizationSettings holds tenant preferences stored as JSON.
type OrganizationSettings struct {
	Currency       string `json:"currency,omitempty"`
	FiscalYearFrom int    `json:"fiscalYearFrom,omitempty"` // month, 1-12
	Timezone       string `json:"timezone,omitempty"`
}

func (Organization) Kind() Kind { return KindOrganization }

// User is a member of one organization.
type User struct {
	Base
	Email            string     `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	FirstName        string     `gorm:"type:varchar(64);not null" json:"firstName"`
	LastName         string     `gorm:"type:varchar(64);not null" json:"lastName"`
	Role             UserRole   `gorm:"type:varchar(32);not null;default:PROJECT_MANAGER;comment:role in organization" json:"role"`
	PasswordHash     *string    `gorm:"type:varchar(128)" json:"-"`
	IsActive         bool       `gorm:"not null" json:"isActive"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	RefreshTokenHash *string    `gorm:"type:varchar(128)" json:"-"`
}

func (User) Kind() Kind { return KindUser }

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
