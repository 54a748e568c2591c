package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/response"
)

type AuthController struct {
	auth *services.AuthStore
}

func NewAuthController(auth *services.AuthStore) *AuthController {
	return &AuthController{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type otpSendRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type otpVerifyRequest struct {
	Phone string `json:"phone" validate:"required"`
	OTP   string `json:"otp"   validate:"required"`
}

type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := c.auth.Login(req.Email, req.Password).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "Login successful", s)
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if !decode(w, r, &req) {
		return
	}
	s, err := c.auth.Register(req).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, s)
}

func (c *AuthController) Logout(w http.ResponseWriter, _ *http.Request) {
	c.auth.Logout()
	response.Message(w, "Logged out", nil)
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	u := c.auth.CurrentUser()
	if u == nil {
		fail(w, r, services.ErrNotLoggedIn)
		return
	}
	response.Success(w, u)
}

func (c *AuthController) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpSendRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := c.auth.SendOTP(req.Phone).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, msg, nil)
}

func (c *AuthController) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := c.auth.VerifyOTP(req.Phone, req.OTP).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, msg, nil)
}

func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := c.auth.SendPasswordResetEmail(req.Email).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, msg, nil)
}

// VerifyResetToken checks ?token= before the reset form is shown.
func (c *AuthController) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	ok, err := c.auth.VerifyResetToken(r.URL.Query().Get("token")).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]bool{"valid": ok})
}

func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := c.auth.ResetPassword(req.Token, req.Password).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, msg, nil)
}

// UpdateProfile requires the bearer token of the signed-in user.
func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if _, err := sessionUser(c.auth, r); err != nil {
		fail(w, r, err)
		return
	}
	var patch models.ProfilePatch
	if !decode(w, r, &patch) {
		return
	}
	u, err := c.auth.UpdateProfile(patch).Await(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "Profile updated", u)
}
