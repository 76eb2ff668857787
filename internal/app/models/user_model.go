package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/zipgate/zipgate-core/pkg/ratelimit"
)

type User struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email            string         `json:"email" gorm:"type:varchar(255);not null;unique"`
	PasswordHash     string         `json:"-" gorm:"type:text;not null"`
	SubscriptionPlan ratelimit.Plan `json:"subscription_plan" gorm:"type:varchar(20);not null;default:'free'"`
	CreatedAt        time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

type UserRegisterDto struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type UserLoginDto struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserUpdatePlanDto struct {
	SubscriptionPlan ratelimit.Plan `json:"subscription_plan" validate:"required"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
