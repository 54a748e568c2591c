package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/meatshop/app/events"
	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
	"github.com/shashiranjanraj/meatshop/config"
	"github.com/shashiranjanraj/meatshop/pkg/auth"
	"github.com/shashiranjanraj/meatshop/pkg/event"
	"github.com/shashiranjanraj/meatshop/pkg/kv"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
	"github.com/shashiranjanraj/meatshop/pkg/metrics"
	"github.com/shashiranjanraj/meatshop/pkg/validate"
	"github.com/shashiranjanraj/meatshop/pkg/workerpool"
)

// Auth errors carry the exact text shown to shoppers.
var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrNotLoggedIn        = errors.New("No user logged in")
	ErrInvalidOTP         = errors.New("Invalid OTP")
	ErrEmailNotFound      = errors.New("Email not found")
	ErrPhoneRequired      = errors.New("Phone number is required")
	ErrInvalidResetToken  = errors.New("Invalid or expired reset token")
)

// Result messages of the auth operations.
const (
	MsgOTPSent       = "OTP sent successfully"
	MsgOTPVerified   = "OTP verified successfully"
	MsgResetSent     = "Password reset email sent"
	MsgResetComplete = "Password reset successful"
)

// OTP verification modes.
const (
	OTPModeMock   = "mock"
	OTPModeStrict = "strict"
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"    validate:"nullable,digits=10"`
	Address  string `json:"address"  validate:"nullable,max=500"`
}

// Session is what a successful login or registration returns.
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// AuthOption configures an AuthStore.
type AuthOption func(*AuthStore)

// WithOTPMode overrides OTP_MODE.
func WithOTPMode(mode string) AuthOption {
	return func(a *AuthStore) { a.otpMode = mode }
}

// AuthStore owns the signed-in session. The current user and its token are
// persisted under kv.KeyUser and kv.KeyToken and restored on construction.
type AuthStore struct {
	mu      sync.Mutex
	users   repositories.UserRepository
	store   kv.Store
	pool    *workerpool.Pool
	bus     *event.Bus
	otpMode string
	otps    map[string]string // phone → last issued code (strict mode)
	current *models.User
	token   string
	events  *event.Emitter[*models.User]
	log     *slog.Logger
}

func NewAuthStore(users repositories.UserRepository, store kv.Store, pool *workerpool.Pool, bus *event.Bus, opts ...AuthOption) *AuthStore {
	a := &AuthStore{
		users:   users,
		store:   store,
		pool:    pool,
		bus:     bus,
		otpMode: config.OTPMode(),
		otps:    make(map[string]string),
		log:     logger.Component("auth"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.restore()
	a.events = event.NewEmitter(a.currentCopy())
	return a
}

func (a *AuthStore) restore() {
	var u models.User
	ok, err := kv.GetJSON(a.store, kv.KeyUser, &u)
	if err != nil {
		a.log.Warn("discarding unreadable session", "error", err)
		return
	}
	if !ok || u.ID == "" {
		return
	}
	var token string
	if _, err := kv.GetJSON(a.store, kv.KeyToken, &token); err != nil {
		a.log.Warn("discarding unreadable token", "error", err)
	}
	a.current = &u
	a.token = token
}

// ─── Session ──────────────────────────────────────────────────────────────────

// Login checks the password and starts a session. A failed attempt leaves
// any existing session untouched.
func (a *AuthStore) Login(email, password string) *workerpool.Future[Session] {
	return workerpool.Go(a.pool, func() (Session, error) {
		s, err := a.login(context.Background(), email, password)
		metrics.RecordAuth("login", err)
		return s, err
	})
}

func (a *AuthStore) login(ctx context.Context, email, password string) (Session, error) {
	u, err := a.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("auth: login: %w", err)
	}
	if !auth.CheckPassword(u.Password, password) {
		return Session{}, ErrInvalidCredentials
	}
	return a.startSession(u)
}

// Register creates an account and signs it in.
func (a *AuthStore) Register(in RegisterInput) *workerpool.Future[Session] {
	return workerpool.Go(a.pool, func() (Session, error) {
		s, err := a.register(context.Background(), in)
		metrics.RecordAuth("register", err)
		return s, err
	})
}

func (a *AuthStore) register(ctx context.Context, in RegisterInput) (Session, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return Session{}, &ValidationError{Fields: errs}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, fmt.Errorf("auth: register: %w", err)
	}
	u := models.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Password: hash,
	}
	if err := a.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("auth: register: %w", err)
	}

	a.log.Info("user registered", "user_id", u.ID)
	a.bus.Fire(events.UserRegistered, u.Public())
	return a.startSession(u)
}

// Logout ends the session and emits the absent user.
func (a *AuthStore) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.current = nil
	a.token = ""
	for _, key := range []string{kv.KeyUser, kv.KeyToken} {
		if err := a.store.Delete(key); err != nil && !errors.Is(err, kv.ErrNotFound) {
			a.log.Error("clear session", "key", key, "error", err)
		}
	}
	metrics.RecordAuth("logout", nil)
	a.events.Emit(nil)
}

func (a *AuthStore) IsLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current != nil
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (a *AuthStore) CurrentUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentCopy()
}

// Token returns the session token, or "" when signed out.
func (a *AuthStore) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// Subscribe calls fn with the current user (nil when signed out) and then on
// every change. fn must not call back into the AuthStore.
func (a *AuthStore) Subscribe(fn func(*models.User)) (unsubscribe func()) {
	return a.events.Subscribe(fn)
}

// ─── OTP ──────────────────────────────────────────────────────────────────────

// SendOTP issues a 6-digit code for phone and hands it to the OTPRequested
// listeners for delivery.
func (a *AuthStore) SendOTP(phone string) *workerpool.Future[string] {
	return workerpool.Go(a.pool, func() (string, error) {
		phone = strings.TrimSpace(phone)
		if phone == "" {
			return "", ErrPhoneRequired
		}
		code, err := otpCode()
		if err != nil {
			return "", fmt.Errorf("auth: send otp: %w", err)
		}

		a.mu.Lock()
		a.otps[phone] = code
		a.mu.Unlock()

		a.log.Debug("otp issued", "phone", phone, "mode", a.otpMode)
		a.bus.Fire(events.OTPRequested, events.OTPPayload{Phone: phone, Code: code})
		metrics.RecordAuth("otp_send", nil)
		return MsgOTPSent, nil
	})
}

// VerifyOTP checks otp for phone. In mock mode any 6-digit code passes; in
// strict mode only the last code issued to phone does, and only once.
func (a *AuthStore) VerifyOTP(phone, otp string) *workerpool.Future[string] {
	return workerpool.Go(a.pool, func() (string, error) {
		err := a.verifyOTP(strings.TrimSpace(phone), strings.TrimSpace(otp))
		metrics.RecordAuth("otp_verify", err)
		if err != nil {
			return "", err
		}
		return MsgOTPVerified, nil
	})
}

func (a *AuthStore) verifyOTP(phone, otp string) error {
	if !isSixDigits(otp) {
		return ErrInvalidOTP
	}
	if a.otpMode != OTPModeStrict {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	want, ok := a.otps[phone]
	if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(otp)) != 1 {
		return ErrInvalidOTP
	}
	delete(a.otps, phone)
	return nil
}

// ─── Profile ──────────────────────────────────────────────────────────────────

// UpdateProfile merges the non-empty fields of patch into the signed-in
// user and persists the result.
func (a *AuthStore) UpdateProfile(patch models.ProfilePatch) *workerpool.Future[models.User] {
	return workerpool.Go(a.pool, func() (models.User, error) {
		if errs := validate.Struct(patch); validate.HasErrors(errs) {
			return models.User{}, &ValidationError{Fields: errs}
		}

		ctx := context.Background()

		a.mu.Lock()
		defer a.mu.Unlock()

		if a.current == nil {
			return models.User{}, ErrNotLoggedIn
		}

		var next models.User
		stored, err := a.users.FindByID(ctx, a.current.ID)
		switch {
		case err == nil:
			updated := patch.Apply(stored)
			if err := a.users.Update(ctx, &updated); err != nil {
				return models.User{}, fmt.Errorf("auth: update profile: %w", err)
			}
			next = updated.Public()
		case errors.Is(err, repositories.ErrNotFound):
			// Session restored from a store the repository never saw.
			a.log.Warn("profile owner missing from repository", "user_id", a.current.ID)
			next = patch.Apply(*a.current)
		default:
			return models.User{}, fmt.Errorf("auth: update profile: %w", err)
		}

		a.current = &next
		a.persist()
		a.events.Emit(a.currentCopy())
		return next, nil
	})
}

// ─── Password reset ───────────────────────────────────────────────────────────

// SendPasswordResetEmail issues a one-hour reset token and fires
// PasswordResetRequested so the mail gets queued.
func (a *AuthStore) SendPasswordResetEmail(email string) *workerpool.Future[string] {
	return workerpool.Go(a.pool, func() (string, error) {
		u, err := a.users.FindByEmail(context.Background(), normalizeEmail(email))
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrEmailNotFound
		}
		if err != nil {
			return "", fmt.Errorf("auth: password reset: %w", err)
		}
		token, err := auth.GenerateResetToken(u.ID, u.Password)
		if err != nil {
			return "", fmt.Errorf("auth: password reset: %w", err)
		}

		a.bus.Fire(events.PasswordResetRequested, events.PasswordResetPayload{User: u.Public(), Token: token})
		metrics.RecordAuth("password_forgot", nil)
		return MsgResetSent, nil
	})
}

// VerifyResetToken reports whether token is a live reset token for an
// existing account.
func (a *AuthStore) VerifyResetToken(token string) *workerpool.Future[bool] {
	return workerpool.Go(a.pool, func() (bool, error) {
		if _, err := a.resetTarget(context.Background(), token); err != nil {
			return false, err
		}
		return true, nil
	})
}

// ResetPassword stores a new password for the owner of token.
func (a *AuthStore) ResetPassword(token, password string) *workerpool.Future[string] {
	return workerpool.Go(a.pool, func() (string, error) {
		err := a.resetPassword(context.Background(), token, password)
		metrics.RecordAuth("password_reset", err)
		if err != nil {
			return "", err
		}
		return MsgResetComplete, nil
	})
}

func (a *AuthStore) resetPassword(ctx context.Context, token, password string) error {
	in := struct {
		Password string `json:"password" validate:"required,min=6"`
	}{password}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return &ValidationError{Fields: errs}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("auth: reset password: %w", err)
	}

	// Held from the stamp check to the write so a token resets only once.
	a.mu.Lock()
	defer a.mu.Unlock()

	u, err := a.resetTarget(ctx, token)
	if err != nil {
		return err
	}
	u.Password = hash
	if err := a.users.Update(ctx, &u); err != nil {
		return fmt.Errorf("auth: reset password: %w", err)
	}
	a.log.Info("password reset", "user_id", u.ID)
	return nil
}

func (a *AuthStore) resetTarget(ctx context.Context, token string) (models.User, error) {
	claims, err := auth.ValidateToken(token, auth.PurposeReset)
	if err != nil {
		return models.User{}, ErrInvalidResetToken
	}
	u, err := a.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, ErrInvalidResetToken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("auth: reset token: %w", err)
	}
	if err := auth.CheckStamp(claims, u.Password); err != nil {
		return models.User{}, ErrInvalidResetToken
	}
	return u, nil
}

// ─── internals ────────────────────────────────────────────────────────────────

func (a *AuthStore) startSession(u models.User) (Session, error) {
	token, err := auth.GenerateToken(u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("auth: sign token: %w", err)
	}
	pub := u.Public()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.current = &pub
	a.token = token
	a.persist()
	a.events.Emit(a.currentCopy())
	return Session{User: pub, Token: token}, nil
}

// persist writes the session. Failures are logged; the in-memory session
// stays valid for this process. a.mu must be held.
func (a *AuthStore) persist() {
	if err := kv.SetJSON(a.store, kv.KeyUser, a.current); err != nil {
		a.log.Error("persist current user", "error", err)
	}
	if err := kv.SetJSON(a.store, kv.KeyToken, a.token); err != nil {
		a.log.Error("persist token", "error", err)
	}
}

func (a *AuthStore) currentCopy() *models.User {
	if a.current == nil {
		return nil
	}
	u := *a.current
	return &u
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func otpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
