package services

import (
	"net/http"
	"time"

	"github.com/raipur-smart-connect/raipur_api/dto"
	"github.com/raipur-smart-connect/raipur_api/model"
	"github.com/raipur-smart-connect/raipur_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	context.DefaultService

	postgresSvc *PostgresService
	jwtSvc      *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	svc.postgresSvc = ctx.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = ctx.Service(JWT_SVC).(*JWTService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	return nil
}

// ==================== ACCOUNTS ====================

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	existing, err := svc.postgresSvc.GetUserByEmailOrUsername(req.Email)
	if err == nil && existing != nil && existing.ID != "" {
		return nil, shared.NewConflictError("Email already registered")
	}
	existing, err = svc.postgresSvc.GetUserByEmailOrUsername(req.Username)
	if err == nil && existing != nil && existing.ID != "" {
		return nil, shared.NewConflictError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewAppError(http.StatusInternalServerError, "Failed to hash password", nil)
	}

	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Username:  req.Username,
		Password:  string(hashed),
		Role:      shared.RoleCitizen,
		Ward:      req.Ward,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := svc.postgresSvc.CreateUser(user); err != nil {
		return nil, svc.postgresSvc.HandleError(err)
	}

	log.WithFields(log.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")

	return &dto.RegisterResponse{
		UserID:  user.ID,
		Message: "Registration successful.",
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.postgresSvc.GetUserByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.NewUnauthorizedError("Invalid credentials")
		}
		return nil, svc.postgresSvc.HandleError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError("Invalid credentials")
	}

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewAppError(http.StatusInternalServerError, "Failed to issue token", nil)
	}

	user.LastLogin = time.Now()
	if err := svc.postgresSvc.UpdateUser(user); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	return &dto.LoginResponse{
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
		User: dto.UserInfo{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			Role:      user.Role,
			Ward:      user.Ward,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}

// ==================== MIDDLEWARE ====================

func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", err.Error())
		}

		userID, role, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}

		if userID == "" {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, userID)
		c.Locals(shared.UserRole, role)
		return c.Next()
	}
}

// OptionalAuth resolves the user when a valid token is present but lets the
// request through either way. Anonymous requests are tracked by IP further in.
func (svc *AuthService) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return c.Next()
		}

		userID, role, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil || userID == "" {
			return c.Next()
		}

		c.Locals(shared.UserID, userID)
		c.Locals(shared.UserRole, role)
		return c.Next()
	}
}

func (svc *AuthService) RequireOfficial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(shared.UserRole).(string)
		if role != shared.RoleOfficial {
			return shared.ResponseJSON(c, http.StatusForbidden, "Forbidden", "Official role required")
		}
		return c.Next()
	}
}
