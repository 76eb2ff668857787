package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"github.com/zipgate/zipgate-core/pkg/ratelimit"
	"gorm.io/gorm"
)

type UserService struct {
	db        *gorm.DB
	validator *validator.Validate
	policy    ratelimit.Policy
	counters  ratelimit.CounterStore
}

func NewUserService(db *gorm.DB, validator *validator.Validate, policy ratelimit.Policy, counters ratelimit.CounterStore) *UserService {
	return &UserService{
		db:        db,
		validator: validator,
		policy:    policy,
		counters:  counters,
	}
}

func (s *UserService) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("User not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get user")
	}

	return &user, nil
}

// PlanOf resolves a user to their subscription plan. It implements
// ratelimit.PlanResolver; an unknown user is an authentication failure, never
// a fallback to a default plan.
func (s *UserService) PlanOf(ctx context.Context, userID uuid.UUID) (ratelimit.Plan, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("subscription_plan").Where("id = ?", userID).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", errors.NewUnauthorizedError("User not found")
		}
		return "", err
	}

	return user.SubscriptionPlan, nil
}

// UpdatePlan moves a user to another subscription plan. Plans without
// configured ceilings are rejected before anything is written.
func (s *UserService) UpdatePlan(id uuid.UUID, req *models.UserUpdatePlanDto) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}

	if _, err := s.policy.LimitsFor(req.SubscriptionPlan); err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}

	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	user.SubscriptionPlan = req.SubscriptionPlan
	if err := s.db.Save(user).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update user")
	}

	return user, nil
}

// DeleteUser removes the account along with its API keys and quota counters.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}

	if err := s.db.Where("user_id = ?", id).Delete(&models.APIKey{}).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to delete API keys")
	}

	if _, err := s.counters.DeleteForUser(ctx, id); err != nil {
		return errors.NewInternalServerError(err, "Failed to delete rate limit counters")
	}

	if err := s.db.Delete(user).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to delete user")
	}

	return nil
}
