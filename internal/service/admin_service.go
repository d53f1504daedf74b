package service

import (
	"context"
	"errors"
	"time"

	"mini-shop-be/internal/config"
	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/entity"
	"mini-shop-be/internal/pkg/logger"
	"mini-shop-be/internal/repository/memory"
	"mini-shop-be/pkg/admin/dashboard"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthorized covers bad credentials, bad tokens and revoked sessions.
var ErrUnauthorized = errors.New("unauthorized")

type IAdminService interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
	Logout(tokenStr string) error
	Authorize(tokenStr string) error
	DailySummary(records []*entity.Payment) []dto.DailySummaryEntry
}

// adminService is the session guard: one fixed credential pair, but
// tokens are issued per login with an expiry and tracked server-side so
// they can be revoked. It replaces the old everlasting shared token
// while keeping the gate-before-mutate placement.
type adminService struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
	sessionTTL   time.Duration
	sessions     *memory.SessionRepository
	aggregator   *dashboard.Aggregator
	logger       logger.ILogger
}

func NewAdminService(cfg config.AdminConfig, sessions *memory.SessionRepository, aggregator *dashboard.Aggregator, log logger.ILogger) IAdminService {
	// Hash once at startup so login never compares plaintext.
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("AdminService", "Failed to hash admin password", map[string]interface{}{"error": err.Error()})
	}

	return &adminService{
		username:     cfg.Username,
		passwordHash: hash,
		jwtSecret:    []byte(cfg.JWTSecret),
		sessionTTL:   time.Duration(cfg.SessionTTLHours) * time.Hour,
		sessions:     sessions,
		aggregator:   aggregator,
		logger:       log,
	}
}

func (s *adminService) Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	if req.Username != s.username {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)); err != nil {
		return nil, ErrUnauthorized
	}

	now := time.Now()
	session := &memory.AdminSession{
		Id:       uuid.NewString(),
		Username: s.username,
		IssuedAt: now,
	}

	claims := jwt.MapClaims{
		"sid":      session.Id,
		"username": session.Username,
		"role":     "admin",
		"iat":      now.Unix(),
		"exp":      now.Add(s.sessionTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	s.sessions.Save(session)
	s.logger.Info("AdminService", "Admin logged in", map[string]interface{}{"session_id": session.Id})

	return &dto.AdminLoginResponse{
		Ok:       true,
		Token:    token,
		Username: s.username,
	}, nil
}

func (s *adminService) Logout(tokenStr string) error {
	sid, err := s.sessionIdFromToken(tokenStr)
	if err != nil {
		return ErrUnauthorized
	}
	s.sessions.Delete(sid)
	return nil
}

// Authorize validates signature, expiry and that the session has not
// been revoked.
func (s *adminService) Authorize(tokenStr string) error {
	sid, err := s.sessionIdFromToken(tokenStr)
	if err != nil {
		return ErrUnauthorized
	}
	if _, found := s.sessions.Get(sid); !found {
		return ErrUnauthorized
	}
	return nil
}

func (s *adminService) sessionIdFromToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrUnauthorized
	}
	return sid, nil
}

func (s *adminService) DailySummary(records []*entity.Payment) []dto.DailySummaryEntry {
	return s.aggregator.DailySummary(records)
}
