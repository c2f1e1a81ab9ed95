package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

// UserService manages user profiles. Balances are left to WalletService.
type UserService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewUserService constructs a UserService with its dependencies.
func NewUserService(store repository.Store, logger *zap.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

func normalizeUser(name, email string, role model.Role) (string, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if err := required("name", name); err != nil {
		return "", "", err
	}
	if err := required("email", email); err != nil {
		return "", "", err
	}
	if !isValidEmail(email) {
		return "", "", invalid("email is not a valid email address")
	}
	if !role.Valid() {
		return "", "", invalid("unknown role %q", role)
	}
	return name, email, nil
}

// Create stores a new user with an empty wallet. The role defaults to
// ATTENDEE.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if req.Role == "" {
		req.Role = model.RoleAttendee
	}
	name, email, err := normalizeUser(req.Name, req.Email, req.Role)
	if err != nil {
		return nil, err
	}

	ts := now()
	u := &model.User{
		ID:            uuid.NewString(),
		Name:          name,
		Email:         email,
		Role:          req.Role,
		WalletBalance: decimal.Zero,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.store.GetUser(ctx, id)
}

// List returns all users in creation order.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.store.ListUsers(ctx)
}

// Update applies the non-nil profile fields of req.
func (s *UserService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error) {
	var user *model.User
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		current, err := q.GetUser(ctx, id)
		if err != nil {
			return err
		}
		name, email, role := current.Name, current.Email, current.Role
		if req.Name != nil {
			name = *req.Name
		}
		if req.Email != nil {
			email = *req.Email
		}
		if req.Role != nil {
			role = *req.Role
		}
		if current.Name, current.Email, err = normalizeUser(name, email, role); err != nil {
			return err
		}
		current.Role = role
		current.UpdatedAt = now()
		if err := q.UpdateUser(ctx, current); err != nil {
			return err
		}
		user, err = q.GetUser(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user that has no registrations in any status and
// organizes no events, together with the user's wallet history and
// notifications.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		if _, err := q.GetUser(ctx, id); err != nil {
			return err
		}
		holdings, err := q.CountUserHoldings(ctx, id)
		if err != nil {
			return err
		}
		if holdings > 0 {
			return fmt.Errorf("user has registrations or organizes events: %w", model.ErrInvalidState)
		}
		return q.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}
