package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"boliche-os/internal/models"
	"boliche-os/internal/storage"
)

var (
	ErrInvalidPIN   = errors.New("invalid PIN")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Service exchanges an operator PIN for a signed token. Operators log in
// once per shift; the token carries who they are so every mutation lands in
// the audit trail with a name attached.
type Service struct {
	store    storage.Store
	secret   []byte
	tokenTTL time.Duration
}

func NewService(store storage.Store, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Role      models.UserRole `json:"role"`
}

func (s *Service) Login(pin string) (*LoginResult, error) {
	user, err := s.store.GetUserByPIN(pin)
	if err != nil {
		return nil, ErrInvalidPIN
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    string(user.Role),
		"exp":     expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResult{
		Token:     signed,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Name:      user.Name,
		Role:      user.Role,
	}, nil
}

// Identity is what the middleware extracts from a valid token.
type Identity struct {
	Actor models.Actor
	Role  models.UserRole
}

func (s *Service) ParseToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || name == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		Actor: models.Actor{ID: userID, Name: name},
		Role:  models.UserRole(role),
	}, nil
}
