package services

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/zipgate/zipgate-core/internal/app/errors"
	"github.com/zipgate/zipgate-core/internal/app/models"
	"github.com/zipgate/zipgate-core/pkg/ratelimit"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	db        *gorm.DB
	validator *validator.Validate
	secret    []byte
}

func NewAuthService(db *gorm.DB, validator *validator.Validate) *AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "zipgate-dev-secret"
	}
	return &AuthService{
		db:        db,
		validator: validator,
		secret:    []byte(secret),
	}
}

func (s *AuthService) Register(req *models.UserRegisterDto) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}

	var existing models.User
	err := s.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, errors.NewBadRequestError("User already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, errors.NewInternalServerError(err, "Failed to register user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to hash password")
	}

	user := &models.User{
		Email:            req.Email,
		PasswordHash:     string(hash),
		SubscriptionPlan: ratelimit.PlanFree,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create user")
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(req *models.UserLoginDto) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}

	var user models.User
	err := s.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewUnauthorizedError("Invalid credentials")
		}
		return nil, errors.NewInternalServerError(err, "Failed to log in")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, errors.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{User: &user, Token: token}, nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(user.ID.String()).
		IssuedAt(now).
		Expiration(now.Add(tokenTTL)).
		Claim("email", user.Email).
		Claim("plan", string(user.SubscriptionPlan)).
		Build()
	if err != nil {
		return "", errors.NewInternalServerError(err, "Failed to build token")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", errors.NewInternalServerError(err, "Failed to sign token")
	}

	return string(signed), nil
}

// VerifyToken validates a JWT and loads the current user record, so plan
// changes take effect immediately regardless of the claims in the token.
func (s *AuthService) VerifyToken(token string) (*models.User, error) {
	parsed, err := jwt.Parse([]byte(token), jwt.WithKey(jwa.HS256, s.secret), jwt.WithValidate(true))
	if err != nil {
		return nil, errors.NewUnauthorizedError("Invalid or expired token")
	}

	userID, err := uuid.Parse(parsed.Subject())
	if err != nil {
		return nil, errors.NewUnauthorizedError("Invalid token subject")
	}

	var user models.User
	err = s.db.Where("id = ?", userID).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewUnauthorizedError("User not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to verify token")
	}

	return &user, nil
}
