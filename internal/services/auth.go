package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	userrepo "github.com/VAshish07243/Chai-Shots/internal/data/repos/user"
	"github.com/VAshish07243/Chai-Shots/internal/domain/user"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/ctxutil"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

var errInvalidCredentials = apierr.New(http.StatusUnauthorized, apierr.CodeInvalidCredentials, errors.New("invalid email or password"))

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *user.User, error)
	// ParseToken verifies a bearer token and returns the caller it names.
	ParseToken(ctx context.Context, tokenString string) (*ctxutil.RequestData, error)
	Me(ctx context.Context) (*user.User, error)
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	log      *logger.Logger
	userRepo userrepo.UserRepo
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(log *logger.Logger, userRepo userrepo.UserRepo, jwtSecret string, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &authService{
		log:      log.With("service", "AuthService"),
		userRepo: userRepo,
		secret:   []byte(jwtSecret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, apierr.Validation("email and password are required")
	}
	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", nil, fmt.Errorf("load user by email: %w", err)
	}
	if len(users) == 0 {
		return "", nil, errInvalidCredentials
	}
	u := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errInvalidCredentials
	}

	now := as.now()
	claims := Claims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	as.log.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return token, u, nil
}

func (as *authService) ParseToken(ctx context.Context, tokenString string) (*ctxutil.RequestData, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("no token provided"))
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return as.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, fmt.Errorf("invalid token: %w", err))
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("invalid token subject"))
	}
	return &ctxutil.RequestData{UserID: id, Email: claims.Email, Role: claims.Role}, nil
}

func (as *authService) Me(ctx context.Context) (*user.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("no authenticated user"))
	}
	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("user")
	}
	return users[0], nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns the bcrypt hash stored in User.Password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apierr.Validation("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
