package domain

// UserView is the redacted user returned alongside tokens.
type UserView struct {
	ID          string      `json:"id"`
	FullName    string      `json:"fullName"`
	Email       string      `json:"email"`
	Role        Role        `json:"role"`
	Avatar      string      `json:"avatar"`
	Location    string      `json:"location"`
	IsVerified  bool        `json:"isVerified"`
	Phone       string      `json:"phone"`
	Preferences Preferences `json:"preferences"`
	SellerInfo  *SellerInfo `json:"sellerInfo,omitempty"`
}

func (u *User) View() UserView {
	v := UserView{
		ID:          u.ID.Hex(),
		FullName:    u.FullName,
		Email:       u.Email,
		Role:        u.Role,
		Avatar:      u.Avatar,
		Location:    u.Location,
		IsVerified:  u.IsVerified,
		Phone:       u.Phone,
		Preferences: u.Preferences,
	}
	if u.IsSeller() {
		v.SellerInfo = u.SellerInfo
	}
	return v
}

// ProfileUpdate lists the fields a user may change on their own profile.
// Nil means "leave as is".
type ProfileUpdate struct {
	FullName    *string       `json:"fullName"`
	Phone       *string       `json:"phone"`
	Location    *string       `json:"location"`
	Avatar      *string       `json:"avatar"`
	Preferences *Preferences  `json:"preferences"`
	Addresses   *[]Address    `json:"addresses"`
	Seller      *SellerUpdate `json:"sellerInfo"`
}

// SellerUpdate excludes rating and counters, which users cannot set.
type SellerUpdate struct {
	BusinessName *string   `json:"businessName"`
	Description  *string   `json:"description"`
	ResponseTime *string   `json:"responseTime"`
	Policies     *Policies `json:"policies"`
}

func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil && p.Phone == nil && p.Location == nil && p.Avatar == nil &&
		p.Preferences == nil && p.Addresses == nil && p.Seller == nil
}

// Apply copies the set fields onto u. Seller fields are ignored for buyers.
func (p ProfileUpdate) Apply(u *User) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Preferences != nil {
		u.Preferences = *p.Preferences
	}
	if p.Addresses != nil {
		u.Addresses = *p.Addresses
	}
	if p.Seller != nil && u.IsSeller() {
		if u.SellerInfo == nil {
			u.SellerInfo = NewSellerInfo(u.FullName)
		}
		s := p.Seller
		if s.BusinessName != nil {
			u.SellerInfo.BusinessName = *s.BusinessName
		}
		if s.Description != nil {
			u.SellerInfo.Description = *s.Description
		}
		if s.ResponseTime != nil {
			u.SellerInfo.ResponseTime = *s.ResponseTime
		}
		if s.Policies != nil {
			u.SellerInfo.Policies = *s.Policies
		}
	}
}
