// Package auth содержит логику регистрации, входа и проверки сессий пользователей.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/jwt"
	"github.com/magabrotheeeer/app-despesas/internal/lib/metrics"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

const (
	minNameLen     = 2
	maxNameLen     = 100
	minPasswordLen = 8
	// bcrypt учитывает только первые 72 байта пароля.
	maxPasswordBytes = 72
	tokenType        = "Bearer"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserRepository хранилище учетных записей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// RefreshTokenRepository хранилище refresh-токенов.
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, token models.RefreshToken) error
	GetRefreshToken(ctx context.Context, id string) (*models.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID string, next models.RefreshToken) error
	RevokeRefreshToken(ctx context.Context, userID, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) (int64, error)
}

// Revoker список отозванных access-токенов.
type Revoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// EntitlementResolver вычисляет актуальные права пользователя.
type EntitlementResolver interface {
	Resolve(ctx context.Context, user *models.User) (models.Entitlement, error)
}

// PasswordHasher хеширует и проверяет пароли.
type PasswordHasher interface {
	GetHash(password string) (string, error)
	CompareHash(originalHash, externalPassword string) error
	CompareDummy(externalPassword string)
}

// Deps зависимости Service.
type Deps struct {
	Users        UserRepository
	Tokens       RefreshTokenRepository
	Revoker      Revoker
	Entitlements EntitlementResolver
	Hasher       PasswordHasher
	JWTMaker     jwt.Maker
	RefreshTTL   time.Duration
	Log          *slog.Logger
}

// Service регистрирует пользователей, выпускает и проверяет токены.
type Service struct {
	users        UserRepository
	tokens       RefreshTokenRepository
	revoker      Revoker
	entitlements EntitlementResolver
	hasher       PasswordHasher
	jwtMaker     jwt.Maker
	refreshTTL   time.Duration
	log          *slog.Logger
	now          func() time.Time
}

// NewService создает Service.
func NewService(d Deps) *Service {
	return &Service{
		users:        d.Users,
		tokens:       d.Tokens,
		revoker:      d.Revoker,
		entitlements: d.Entitlements,
		hasher:       d.Hasher,
		jwtMaker:     d.JWTMaker,
		refreshTTL:   d.RefreshTTL,
		log:          d.Log,
		now:          time.Now,
	}
}

// Session пара токенов, выданная при входе или обновлении.
type Session struct {
	User         models.PublicUser `json:"user"`
	Token        string            `json:"token"`
	RefreshToken string            `json:"refreshToken"`
	TokenType    string            `json:"tokenType"`
	ExpiresIn    int64             `json:"expiresIn"`
}

// Profile текущий пользователь с состоянием подписки.
type Profile struct {
	User         models.PublicUser  `json:"user"`
	Subscription models.Entitlement `json:"subscription"`
}

// Register создает пользователя. Email приводится к нижнему регистру,
// дубликат без учета регистра возвращает apperr.ErrUserExists.
func (s *Service) Register(ctx context.Context, name, email, password string) (pub models.PublicUser, err error) {
	const op = "auth.Register"
	defer func() { metrics.AuthEvents.WithLabelValues("register", metrics.AuthResult(err)).Inc() }()

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateRegistration(name, email, password); err != nil {
		return models.PublicUser{}, err
	}

	hash, err := s.hasher.GetHash(password)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, models.User{Name: name, Email: email, PasswordHash: hash})
	if errors.Is(err, apperr.ErrConflict) {
		return models.PublicUser{}, apperr.ErrUserExists
	}
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("op", op), slog.String("user_id", user.ID))
	return user.Public(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return apperr.ErrMissingFields
	}
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		return apperr.ErrInvalidName
	}
	if !emailRe.MatchString(email) {
		return apperr.ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return apperr.ErrInvalidPassword
	}
	if len(password) > maxPasswordBytes {
		return apperr.Validation("INVALID_PASSWORD", "password must be at most 72 bytes long")
	}
	return nil
}

// Login проверяет пароль и выдает пару токенов. Неизвестный email и неверный
// пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, email, password string) (sess *Session, err error) {
	const op = "auth.Login"
	defer func() { metrics.AuthEvents.WithLabelValues("login", metrics.AuthResult(err)).Inc() }()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("MISSING_FIELDS", "email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		s.hasher.CompareDummy(password)
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.hasher.CompareHash(user.PasswordHash, password); err != nil {
		s.log.Info("login failed", slog.String("op", op), slog.String("user_id", user.ID))
		return nil, apperr.ErrInvalidCredentials
	}

	if _, err := s.entitlements.Resolve(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := s.newRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.tokens.CreateRefreshToken(ctx, refresh.record); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess, err = s.session(user, refresh.plain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user logged in", slog.String("op", op), slog.String("user_id", user.ID))
	return sess, nil
}

// Refresh обменивает refresh-токен на новую пару. Повторное предъявление
// уже использованного токена отзывает все refresh-токены пользователя.
func (s *Service) Refresh(ctx context.Context, presented string) (sess *Session, err error) {
	const op = "auth.Refresh"
	defer func() { metrics.AuthEvents.WithLabelValues("refresh", metrics.AuthResult(err)).Inc() }()

	id, secret, ok := splitRefreshToken(presented)
	if !ok {
		return nil, apperr.ErrInvalidRefreshToken
	}

	stored, err := s.tokens.GetRefreshToken(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if subtle.ConstantTimeCompare([]byte(hashSecret(secret)), []byte(stored.TokenHash)) != 1 {
		return nil, apperr.ErrInvalidRefreshToken
	}
	if stored.RevokedAt != nil {
		s.revokeFamily(ctx, op, stored.UserID)
		return nil, apperr.ErrInvalidRefreshToken
	}
	if !stored.ExpiresAt.After(s.now()) {
		return nil, apperr.ErrInvalidRefreshToken
	}

	user, err := s.users.GetUser(ctx, stored.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.entitlements.Resolve(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	next, err := s.newRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = s.tokens.RotateRefreshToken(ctx, stored.ID, next.record)
	if errors.Is(err, apperr.ErrConflict) {
		// токен отозван параллельным запросом между чтением и ротацией
		s.revokeFamily(ctx, op, user.ID)
		return nil, apperr.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess, err = s.session(user, next.plain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

func (s *Service) revokeFamily(ctx context.Context, op, userID string) {
	n, err := s.tokens.RevokeUserRefreshTokens(ctx, userID)
	if err != nil {
		s.log.Error("failed to revoke refresh tokens", slog.String("op", op), sl.Err(err))
		return
	}
	s.log.Warn("refresh token reuse detected",
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.Int64("revoked", n),
	)
}

// Authenticate проверяет access-токен и возвращает пользователя запроса
// с правами, вычисленными по хранилищу подписок.
func (s *Service) Authenticate(ctx context.Context, token string) (p *models.Principal, err error) {
	const op = "auth.Authenticate"
	defer func() { metrics.AuthEvents.WithLabelValues("authenticate", metrics.AuthResult(err)).Inc() }()

	if token == "" {
		return nil, apperr.ErrTokenRequired
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if errors.Is(err, jwt.ErrExpired) {
		return nil, apperr.ErrTokenExpired
	}
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrCacheUnavailable, err)
	}
	if revoked {
		return nil, apperr.ErrInvalidToken
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ent, err := s.entitlements.Resolve(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p = &models.Principal{
		UserID:                user.ID,
		Name:                  user.Name,
		Email:                 user.Email,
		IsPremium:             ent.IsPremium,
		IsAdmin:               ent.IsAdmin,
		SubscriptionStatus:    ent.Status,
		SubscriptionExpiresAt: ent.ExpiresAt,
		TokenID:               claims.ID,
	}
	if claims.ExpiresAt != nil {
		p.TokenExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// Logout отзывает access-токен principal и, если передан, refresh-токен.
// Повторный вызов не ошибка.
func (s *Service) Logout(ctx context.Context, p *models.Principal, refreshToken string) (err error) {
	const op = "auth.Logout"
	defer func() { metrics.AuthEvents.WithLabelValues("logout", metrics.AuthResult(err)).Inc() }()

	if err := s.revoker.RevokeToken(ctx, p.TokenID, p.TokenExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrCacheUnavailable, err)
	}

	if refreshToken != "" {
		if id, _, ok := splitRefreshToken(refreshToken); ok {
			if err := s.tokens.RevokeRefreshToken(ctx, p.UserID, id); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}
	s.log.Info("user logged out", slog.String("op", op), slog.String("user_id", p.UserID))
	return nil
}

// Profile возвращает текущего пользователя и состояние его подписки.
func (s *Service) Profile(ctx context.Context, p *models.Principal) (*Profile, error) {
	const op = "auth.Profile"

	user, err := s.users.GetUser(ctx, p.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ent, err := s.entitlements.Resolve(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Profile{User: user.Public(), Subscription: ent}, nil
}

func (s *Service) session(user *models.User, refresh string) (*Session, error) {
	token, _, err := s.jwtMaker.GenerateToken(jwt.Subject{
		UserID:    user.ID,
		Email:     user.Email,
		IsPremium: user.IsPremium,
		IsAdmin:   user.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	return &Session{
		User:         user.Public(),
		Token:        token,
		RefreshToken: refresh,
		TokenType:    tokenType,
		ExpiresIn:    int64(s.jwtMaker.TokenTTL().Seconds()),
	}, nil
}

type issuedRefresh struct {
	plain  string
	record models.RefreshToken
}

// newRefreshToken формирует токен вида "<id>.<secret>"; в базу попадает только sha256 секрета.
func (s *Service) newRefreshToken(userID string) (issuedRefresh, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return issuedRefresh{}, err
	}
	secret := hex.EncodeToString(buf)
	id := uuid.NewString()
	return issuedRefresh{
		plain: id + "." + secret,
		record: models.RefreshToken{
			ID:        id,
			UserID:    userID,
			TokenHash: hashSecret(secret),
			ExpiresAt: s.now().Add(s.refreshTTL),
		},
	}, nil
}

func splitRefreshToken(token string) (id, secret string, ok bool) {
	id, secret, ok = strings.Cut(strings.TrimSpace(token), ".")
	if !ok || secret == "" {
		return "", "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", "", false
	}
	return id, secret, true
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
