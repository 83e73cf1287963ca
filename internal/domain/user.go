package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ParseRole maps an optional requested role to a Role. Empty means buyer.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "", RoleBuyer:
		return RoleBuyer, true
	case RoleSeller:
		return RoleSeller, true
	}
	return "", false
}

type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"           json:"_id"`
	FullName     string             `bson:"full_name"               json:"fullName"`
	Email        string             `bson:"email"                   json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Phone        string             `bson:"phone,omitempty"         json:"phone,omitempty"`
	Avatar       string             `bson:"avatar,omitempty"        json:"avatar,omitempty"`
	Location     string             `bson:"location,omitempty"      json:"location,omitempty"`
	Role         Role               `bson:"role"                    json:"role"`
	GoogleID     string             `bson:"google_id,omitempty"     json:"googleId,omitempty"`
	Provider     Provider           `bson:"provider"                json:"provider"`
	IsVerified   bool               `bson:"is_verified"             json:"isVerified"`
	SellerInfo   *SellerInfo        `bson:"seller_info,omitempty"   json:"sellerInfo,omitempty"`
	Preferences  Preferences        `bson:"preferences"             json:"preferences"`
	Addresses    []Address          `bson:"addresses"               json:"addresses"`
	LastLogin    *time.Time         `bson:"last_login,omitempty"    json:"lastLogin,omitempty"`
	IsActive     bool               `bson:"is_active"               json:"isActive"`
	CreatedAt    time.Time          `bson:"created_at"              json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at"              json:"updatedAt"`
}

type SellerInfo struct {
	BusinessName string   `bson:"business_name" json:"businessName"`
	Description  string   `bson:"description"   json:"description"`
	Rating       float64  `bson:"rating"        json:"rating"`
	TotalReviews int      `bson:"total_reviews" json:"totalReviews"`
	TotalSales   int      `bson:"total_sales"   json:"totalSales"`
	ResponseTime string   `bson:"response_time" json:"responseTime"`
	Policies     Policies `bson:"policies"      json:"policies"`
	Badges       []string `bson:"badges"        json:"badges"`
}

type Policies struct {
	Returns  string `bson:"returns"  json:"returns"`
	Shipping string `bson:"shipping" json:"shipping"`
	Warranty string `bson:"warranty" json:"warranty"`
}

type Preferences struct {
	Notifications NotificationPrefs `bson:"notifications" json:"notifications"`
	Privacy       PrivacyPrefs      `bson:"privacy"       json:"privacy"`
}

type NotificationPrefs struct {
	Email bool `bson:"email" json:"email"`
	SMS   bool `bson:"sms"   json:"sms"`
	Push  bool `bson:"push"  json:"push"`
}

type PrivacyPrefs struct {
	ShowProfile  bool `bson:"show_profile"  json:"showProfile"`
	ShowActivity bool `bson:"show_activity" json:"showActivity"`
}

type Address struct {
	Type      string `bson:"type,omitempty"    json:"type,omitempty"`
	Street    string `bson:"street"            json:"street"`
	City      string `bson:"city"              json:"city"`
	State     string `bson:"state"             json:"state"`
	ZipCode   string `bson:"zip_code"          json:"zipCode"`
	Country   string `bson:"country,omitempty" json:"country,omitempty"`
	IsDefault bool   `bson:"is_default"        json:"isDefault"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Notifications: NotificationPrefs{Email: true, SMS: false, Push: true},
		Privacy:       PrivacyPrefs{ShowProfile: true, ShowActivity: false},
	}
}

// NewSellerInfo returns the profile every new seller starts with.
func NewSellerInfo(businessName string) *SellerInfo {
	return &SellerInfo{
		BusinessName: businessName,
		ResponseTime: "< 2 hours",
		Policies: Policies{
			Returns:  "7-day return policy",
			Shipping: "Free shipping on orders above ₹2000",
			Warranty: "6 months warranty",
		},
		Badges: []string{"New Seller"},
	}
}

// NewUser fills the defaults shared by every account regardless of provider.
func NewUser(fullName, email string, role Role, provider Provider, now time.Time) *User {
	u := &User{
		FullName:    fullName,
		Email:       email,
		Role:        role,
		Provider:    provider,
		Preferences: DefaultPreferences(),
		Addresses:   []Address{},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if role == RoleSeller {
		u.SellerInfo = NewSellerInfo(fullName)
	}
	return u
}

func (u *User) IsSeller() bool { return u.Role == RoleSeller }
