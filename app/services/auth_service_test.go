package services_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/meatshop/app/events"
	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/auth"
	"github.com/shashiranjanraj/meatshop/pkg/kv"
)

func TestAuth_LoginPersistsAndRestores(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.auth.IsLoggedIn())

	s := f.login(t)
	assert.Equal(t, repositories.DemoUserID, s.User.ID)
	assert.Empty(t, s.User.Password)
	assert.True(t, f.auth.IsLoggedIn())
	assert.Equal(t, s.Token, f.auth.Token())

	claims, err := auth.ValidateToken(s.Token, auth.PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, repositories.DemoUserID, claims.UserID)

	restored := services.NewAuthStore(f.users, f.kv, nil, f.bus)
	require.NotNil(t, restored.CurrentUser())
	assert.Equal(t, "Test User", restored.CurrentUser().Name)
	assert.Equal(t, s.Token, restored.Token())
}

func TestAuth_LoginIsCaseInsensitiveOnEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Login("  TEST@example.com ", repositories.DemoUserPassword).Await(ctx(t))
	assert.NoError(t, err)
}

func TestAuth_FailedLoginLeavesSessionAlone(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	rec := &recorder[*models.User]{}
	defer f.auth.Subscribe(rec.record)()

	_, err := f.auth.Login(repositories.DemoUserEmail, "wrong").Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.EqualError(t, err, "Invalid email or password")

	_, err = f.auth.Login("nobody@example.com", "password123").Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	assert.True(t, f.auth.IsLoggedIn())
	assert.Len(t, rec.values(), 1, "only the initial value")
}

func TestAuth_RegisterSignsIn(t *testing.T) {
	f := newFixture(t)

	s, err := f.auth.Register(services.RegisterInput{
		Name:     "Asha",
		Email:    "Asha@Example.com",
		Password: "secret1",
	}).Await(ctx(t))
	require.NoError(t, err)
	assert.NotEmpty(t, s.User.ID)
	assert.Equal(t, "asha@example.com", s.User.Email)
	assert.Equal(t, s.User.ID, f.auth.CurrentUser().ID)

	_, err = f.auth.Login("asha@example.com", "secret1").Await(ctx(t))
	assert.NoError(t, err)
}

func TestAuth_RegisterRejectsTakenEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(services.RegisterInput{
		Name:     "Dup",
		Email:    "TEST@example.com",
		Password: "secret1",
	}).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	assert.False(t, f.auth.IsLoggedIn())
}

func TestAuth_RegisterValidates(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(services.RegisterInput{Email: "bad", Password: "123"}).Await(ctx(t))
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestAuth_LogoutClearsSession(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	rec := &recorder[*models.User]{}
	defer f.auth.Subscribe(rec.record)()

	f.auth.Logout()

	assert.False(t, f.auth.IsLoggedIn())
	assert.Nil(t, f.auth.CurrentUser())
	assert.Empty(t, f.auth.Token())

	got := rec.values()
	require.Len(t, got, 2)
	assert.NotNil(t, got[0])
	assert.Nil(t, got[1])

	_, err := f.kv.Get(kv.KeyUser)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = f.kv.Get(kv.KeyToken)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestAuth_OTPMockAcceptsAnySixDigits(t *testing.T) {
	f := newFixture(t, services.WithOTPMode(services.OTPModeMock))

	msg, err := f.auth.SendOTP("9876543210").Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, services.MsgOTPSent, msg)

	msg, err = f.auth.VerifyOTP("9876543210", "000000").Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, services.MsgOTPVerified, msg)

	for _, bad := range []string{"12345", "1234567", "12a456", ""} {
		_, err = f.auth.VerifyOTP("9876543210", bad).Await(ctx(t))
		assert.ErrorIs(t, err, services.ErrInvalidOTP, bad)
	}

	_, err = f.auth.SendOTP("  ").Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrPhoneRequired)
}

func TestAuth_OTPStrictAcceptsOnlyIssuedCodeOnce(t *testing.T) {
	f := newFixture(t, services.WithOTPMode(services.OTPModeStrict))

	var mu sync.Mutex
	var issued string
	f.bus.Listen(events.OTPRequested, func(p any) {
		mu.Lock()
		issued = p.(events.OTPPayload).Code
		mu.Unlock()
	})

	_, err := f.auth.SendOTP("9876543210").Await(ctx(t))
	require.NoError(t, err)
	mu.Lock()
	code := issued
	mu.Unlock()
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = f.auth.VerifyOTP("9876543210", wrong).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidOTP)

	_, err = f.auth.VerifyOTP("1111111111", code).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidOTP, "code is bound to its phone")

	_, err = f.auth.VerifyOTP("9876543210", code).Await(ctx(t))
	assert.NoError(t, err)

	_, err = f.auth.VerifyOTP("9876543210", code).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidOTP, "codes are single use")
}

func TestAuth_UpdateProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.UpdateProfile(models.ProfilePatch{Name: "X"}).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrNotLoggedIn)

	f.login(t)
	u, err := f.auth.UpdateProfile(models.ProfilePatch{Address: "42 New Road"}).Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, "Test User", u.Name)
	assert.Equal(t, "42 New Road", u.Address)
	assert.Equal(t, "42 New Road", f.auth.CurrentUser().Address)

	stored, err := f.users.FindByID(ctx(t), repositories.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "42 New Road", stored.Address)
	assert.NotEmpty(t, stored.Password, "hash survives a profile update")

	_, err = f.auth.UpdateProfile(models.ProfilePatch{Phone: "12"}).Await(ctx(t))
	var verr *services.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAuth_PasswordResetRoundTrip(t *testing.T) {
	f := newFixture(t)

	var mu sync.Mutex
	var token string
	f.bus.Listen(events.PasswordResetRequested, func(p any) {
		mu.Lock()
		token = p.(events.PasswordResetPayload).Token
		mu.Unlock()
	})

	_, err := f.auth.SendPasswordResetEmail("nobody@example.com").Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrEmailNotFound)

	msg, err := f.auth.SendPasswordResetEmail(repositories.DemoUserEmail).Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, services.MsgResetSent, msg)
	mu.Lock()
	reset := token
	mu.Unlock()
	require.NotEmpty(t, reset)

	ok, err := f.auth.VerifyResetToken(reset).Await(ctx(t))
	require.NoError(t, err)
	assert.True(t, ok)

	session := f.login(t)
	_, err = f.auth.ResetPassword(session.Token, "newpass1").Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidResetToken, "session tokens cannot reset passwords")

	msg, err = f.auth.ResetPassword(reset, "newpass1").Await(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, services.MsgResetComplete, msg)

	_, err = f.auth.ResetPassword(reset, "another1").Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidResetToken, "a used token cannot reset again")
	ok, err = f.auth.VerifyResetToken(reset).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidResetToken)
	assert.False(t, ok)

	_, err = f.auth.Login(repositories.DemoUserEmail, repositories.DemoUserPassword).Await(ctx(t))
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = f.auth.Login(repositories.DemoUserEmail, "newpass1").Await(ctx(t))
	assert.NoError(t, err)
}
