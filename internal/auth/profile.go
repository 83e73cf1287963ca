package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
	"github.com/Marcella2706/task2-GeekHaven/internal/repo"
)

// Profile returns the full stored account. The password hash never serializes.
func (s *Service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	id, ok := parseID(userID)
	if !ok {
		return nil, domain.NotFound(MsgUserNotFound)
	}
	u, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound(MsgUserNotFound)
	}
	return u, nil
}

// UpdateProfile applies the whitelisted fields of upd and returns the stored result.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (u *domain.User, err error) {
	defer func() { observe("update_profile", err) }()

	u, err = s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		if name == "" {
			return nil, domain.Validation(MsgFullNameEmpty)
		}
		upd.FullName = &name
	}
	if upd.Seller != nil && !u.IsSeller() {
		return nil, domain.Validation(MsgSellerFieldsOnly)
	}
	if upd.Empty() {
		return u, nil
	}

	upd.Apply(u)
	u.UpdatedAt = s.now()
	if err := s.store.SaveProfile(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, domain.NotFound(MsgUserNotFound)
		}
		return nil, err
	}
	return u, nil
}

// SellerProfile returns the seller block of a seller account.
func (s *Service) SellerProfile(ctx context.Context, userID string) (*domain.SellerInfo, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsSeller() || u.SellerInfo == nil {
		return nil, domain.NotFound(MsgNotSeller)
	}
	return u.SellerInfo, nil
}
