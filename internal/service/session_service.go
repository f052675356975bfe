package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"artmarket/internal/domain"
	"artmarket/internal/email"
	"artmarket/internal/repository"
)

// SessionService coordina registro, login, logout y refresh de sesiones.
type SessionService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	tokens      *TokenService
	emailSender email.Sender
	limiter     RateLimiter
}

const verificationTTL = 24 * time.Hour

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func NewSessionService(logger *zap.Logger, users repository.UserRepository, tokens *TokenService, emailSender email.Sender, limiter RateLimiter) *SessionService {
	if limiter == nil {
		limiter = NewMemoryRateLimiter(verificationTTL, 3)
	}
	return &SessionService{
		logger:      logger,
		users:       users,
		tokens:      tokens,
		emailSender: emailSender,
		limiter:     limiter,
	}
}

// TokenPair agrupa los tokens emitidos para una sesión.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RegisterInput struct {
	Username string
	Name     string
	Email    string
	Password string
	Role     string
	Client   string
	// Campos específicos de rol.
	Skills  []domain.Skill
	Company domain.Company
}

// Register valida la entrada, crea usuario y perfil de rol en una sola
// transacción, envía el código de verificación y abre la primera sesión.
func (s *SessionService) Register(ctx context.Context, input RegisterInput) (domain.User, TokenPair, error) {
	username := strings.TrimSpace(input.Username)
	name := strings.TrimSpace(input.Name)
	emailAddr := normalizeEmail(input.Email)

	if err := validateRegistration(username, name, emailAddr, input.Password, input.Role); err != nil {
		return domain.User{}, TokenPair{}, err
	}

	taken, err := s.users.TakenField(ctx, username, emailAddr)
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	if taken != "" {
		return domain.User{}, TokenPair{}, &DuplicateFieldError{Field: taken}
	}

	passwordHash, err := HashPassword(input.Password)
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}

	code, codeHash, codeExpires, err := generateVerificationCode()
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:                       uuid.NewString(),
		Username:                 strings.ToLower(username),
		Name:                     name,
		Email:                    emailAddr,
		PasswordHash:             passwordHash,
		Role:                     input.Role,
		IsEmailVerified:          false,
		EmailVerificationToken:   codeHash,
		EmailVerificationExpires: &codeExpires,
		Active:                   true,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	pair, entry, err := s.issuePair(user, input.Client, now)
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	user.AppendRefreshToken(entry)

	var (
		artist    *domain.ArtistProfile
		requester *domain.RequesterProfile
	)
	switch input.Role {
	case domain.RoleArtist:
		artist = &domain.ArtistProfile{
			ID:                 uuid.NewString(),
			UserID:             user.ID,
			Skills:             domain.Skills{Primary: input.Skills},
			VerificationStatus: "pending",
			CreatedAt:          now,
			UpdatedAt:          now,
		}
	case domain.RoleRequester:
		requester = &domain.RequesterProfile{
			ID:                 uuid.NewString(),
			UserID:             user.ID,
			Company:            input.Company,
			Preferences:        domain.RequesterPreferences{JobAlerts: true, EmailNotifications: true, Currency: "USD"},
			VerificationStatus: "pending",
			CreatedAt:          now,
			UpdatedAt:          now,
		}
	}

	if err := s.users.CreateWithProfile(ctx, user, artist, requester); err != nil {
		return domain.User{}, TokenPair{}, err
	}

	s.sendVerification(ctx, user.Email, code, codeExpires)

	return user, pair, nil
}

// Login autentica por username y password aplicando el lockout de la cuenta.
func (s *SessionService) Login(ctx context.Context, username, password, client string) (domain.User, TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, TokenPair{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, TokenPair{}, ErrUserNotFound
		}
		return domain.User{}, TokenPair{}, err
	}

	now := time.Now().UTC()
	if user.Locked(now) {
		return domain.User{}, TokenPair{}, ErrAccountLocked
	}

	if !CheckPassword(password, user.PasswordHash) {
		attempts := user.FailedLoginAttempts + 1
		lockUntil := user.AccountLockUntil
		if attempts >= MaxFailedLogins {
			t := now.Add(LockoutDuration * time.Minute)
			lockUntil = &t
		}
		if err := s.users.UpdateLockout(ctx, user.ID, attempts, lockUntil); err != nil {
			s.logger.Warn("persist failed login attempt", zap.Error(err), zap.String("user_id", user.ID))
		}
		return domain.User{}, TokenPair{}, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.AccountLockUntil != nil {
		if err := s.users.UpdateLockout(ctx, user.ID, 0, nil); err != nil {
			return domain.User{}, TokenPair{}, err
		}
		user.FailedLoginAttempts = 0
		user.AccountLockUntil = nil
	}

	if !user.IsEmailVerified {
		return domain.User{}, TokenPair{}, ErrEmailNotVerified
	}
	if !user.Active {
		return domain.User{}, TokenPair{}, ErrAccountDeactivated
	}

	pair, entry, err := s.issuePair(user, client, now)
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	user.AppendRefreshToken(entry)
	if err := s.users.SaveRefreshTokens(ctx, user.ID, user.RefreshTokens); err != nil {
		return domain.User{}, TokenPair{}, err
	}
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("persist last login", zap.Error(err), zap.String("user_id", user.ID))
	}
	user.LastLogin = &now

	return user, pair, nil
}

// Logout quita solo el refresh token presentado; otras sesiones sobreviven.
// Un jti vacío o desconocido no es un error: las cookies se limpian igual.
func (s *SessionService) Logout(ctx context.Context, userID, refreshJTI string) error {
	if refreshJTI == "" {
		return nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if !user.RemoveRefreshToken(refreshJTI) {
		return nil
	}
	return s.users.SaveRefreshTokens(ctx, user.ID, user.RefreshTokens)
}

// Refresh rota la sesión: el token presentado debe figurar en la lista del
// usuario y no estar vencido según los metadatos guardados. El token viejo se
// invalida en la rotación.
func (s *SessionService) Refresh(ctx context.Context, refreshToken, client string) (domain.User, TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return domain.User{}, TokenPair{}, ErrTokenExpired
		}
		return domain.User{}, TokenPair{}, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, TokenPair{}, ErrInvalidRefreshToken
		}
		return domain.User{}, TokenPair{}, err
	}
	if !user.Active {
		return domain.User{}, TokenPair{}, ErrInvalidRefreshToken
	}

	now := time.Now().UTC()
	entry, ok := user.FindRefreshToken(claims.ID)
	if !ok {
		return domain.User{}, TokenPair{}, ErrInvalidRefreshToken
	}
	if entry.ExpiresAt.Before(now) {
		user.RemoveRefreshToken(claims.ID)
		if err := s.users.SaveRefreshTokens(ctx, user.ID, user.RefreshTokens); err != nil {
			s.logger.Warn("drop expired refresh token", zap.Error(err), zap.String("user_id", user.ID))
		}
		return domain.User{}, TokenPair{}, ErrInvalidRefreshToken
	}

	user.RemoveRefreshToken(claims.ID)
	pair, newEntry, err := s.issuePair(user, client, now)
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	user.AppendRefreshToken(newEntry)
	if err := s.users.SaveRefreshTokens(ctx, user.ID, user.RefreshTokens); err != nil {
		return domain.User{}, TokenPair{}, err
	}

	return user, pair, nil
}

// VerifyEmail valida el código enviado por correo y marca la cuenta.
func (s *SessionService) VerifyEmail(ctx context.Context, emailAddr, code string) error {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" || !isValidVerificationCode(code) {
		return ErrVerificationInvalid
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsEmailVerified {
		return nil
	}
	if user.EmailVerificationToken == "" || user.EmailVerificationExpires == nil {
		return ErrVerificationInvalid
	}
	if time.Now().UTC().After(*user.EmailVerificationExpires) {
		return ErrVerificationExpired
	}
	if !verifyCode(code, user.EmailVerificationToken) {
		return ErrVerificationInvalid
	}

	return s.users.MarkEmailVerified(ctx, user.ID)
}

// ResendVerification genera y envía un código nuevo, con rate limit por email.
func (s *SessionService) ResendVerification(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return &ValidationError{Field: "email", Reason: "invalid format"}
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsEmailVerified {
		return nil
	}

	code, codeHash, codeExpires, err := generateVerificationCode()
	if err != nil {
		return err
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, codeHash, codeExpires); err != nil {
		return err
	}
	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendVerificationCode(ctx, user.Email, code, codeExpires); err != nil {
		s.logger.Warn("send verification code failed", zap.Error(err), zap.String("email", user.Email))
		return ErrEmailSendFailure
	}
	return nil
}

func (s *SessionService) issuePair(user domain.User, client string, now time.Time) (TokenPair, domain.RefreshToken, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return TokenPair{}, domain.RefreshToken{}, err
	}
	refresh, jti, expiresAt, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return TokenPair{}, domain.RefreshToken{}, err
	}
	entry := domain.RefreshToken{
		ID:         jti,
		ExpiresAt:  expiresAt,
		Client:     strings.TrimSpace(client),
		LastUsedAt: now,
		CreatedAt:  now,
	}
	pair := TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}
	return pair, entry, nil
}

func (s *SessionService) sendVerification(ctx context.Context, to, code string, expiresAt time.Time) {
	if s.emailSender == nil {
		return
	}
	if err := s.emailSender.SendVerificationCode(ctx, to, code, expiresAt); err != nil {
		s.logger.Warn("send verification code failed", zap.Error(err), zap.String("email", to))
	}
}

func validateRegistration(username, name, emailAddr, password, role string) error {
	if username == "" {
		return &ValidationError{Field: "username", Reason: "required"}
	}
	if len(username) < 3 {
		return &ValidationError{Field: "username", Reason: "must be at least 3 characters"}
	}
	if name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if emailAddr == "" {
		return &ValidationError{Field: "email", Reason: "required"}
	}
	if !emailPattern.MatchString(emailAddr) {
		return &ValidationError{Field: "email", Reason: "invalid format"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Reason: "required"}
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return err
	}
	if role != domain.RoleArtist && role != domain.RoleRequester {
		return &ValidationError{Field: "role", Reason: "must be artist or requester"}
	}
	return nil
}

func generateVerificationCode() (string, string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", time.Time{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", time.Time{}, err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	expiresAt := time.Now().UTC().Add(verificationTTL)
	return code, saltStr + ":" + hash, expiresAt, nil
}

func verifyCode(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	saltStr := parts[0]
	expectedHash := parts[1]
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidVerificationCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
