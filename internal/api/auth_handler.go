package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"github.com/vikrantan5/FitSphere-sub000/internal/apiclient"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/service"
	"github.com/vikrantan5/FitSphere-sub000/internal/session"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

// SessionResponse never includes the token; it stays server side.
type SessionResponse struct {
	Authenticated bool                `json:"authenticated"`
	Role          domain.Role         `json:"role,omitempty"`
	User          *domain.UserProfile `json:"user,omitempty"`
	Redirect      string              `json:"redirect,omitempty"`
}

func sessionResponse(s domain.Session, redirect string) SessionResponse {
	return SessionResponse{Authenticated: s.Valid(), Role: s.Role, User: s.Profile, Redirect: redirect}
}

// landingPage is where a fresh login goes.
func landingPage(role domain.Role) string {
	if role == domain.RoleAdmin {
		return "/admin/dashboard"
	}
	return "/dashboard"
}

// --- Handler Methods ---

// Login godoc
// @Summary Log in a member
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, domain.RoleUser)
}

// AdminLogin godoc
// @Summary Log in an administrator
// @Tags Auth
// @Router /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	h.login(c, domain.RoleAdmin)
}

func (h *AuthHandler) login(c *gin.Context, role domain.Role) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	sess, err := h.authService.Login(c.Request.Context(), getSessionID(c), role, apiclient.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		// A wrong password is a 401 from the login endpoint, not an expired session.
		var ae *apiclient.AuthError
		if errors.As(err, &ae) {
			detail := ae.Detail
			if detail == "" {
				detail = "Invalid email or password"
			}
			abortWithError(c, http.StatusUnauthorized, detail)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess, landingPage(role)))
}

// Register godoc
// @Summary Register a new member
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} SessionResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	sess, err := h.authService.Register(c.Request.Context(), getSessionID(c), apiclient.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse(sess, landingPage(domain.RoleUser)))
}

// Logout clears the session triple.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), getSessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Redirect: session.LoginPath})
}

// Session reports whether this browser is signed in, from stored state only.
func (h *AuthHandler) Session(c *gin.Context) {
	sess, err := h.authService.Current(c.Request.Context(), getSessionID(c))
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess, ""))
}

// Me refreshes the profile from the backend.
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.authService.Me(c.Request.Context(), getSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// CSRFToken hands the browser the token it must echo in X-CSRF-Token.
func CSRFToken(c *gin.Context) {
	c.Header("X-CSRF-Token", csrf.Token(c.Request))
	c.JSON(http.StatusOK, gin.H{"csrf_token": csrf.Token(c.Request)})
}
