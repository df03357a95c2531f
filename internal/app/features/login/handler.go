// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: the uuid of a users row and the subject of
//     every credential issued here
//   - Email: what users type to log in; compared folded

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/normalize"
	"github.com/dalemusser/placementhub/internal/app/system/ratelimit"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore is the part of userstore.Store login needs.
type CredentialStore interface {
	GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error)
	Create(ctx context.Context, fullName, email string, role models.Role, passwordHash string) (models.Identity, error)
}

type Handler struct {
	Users      CredentialStore
	Issuer     *auth.Issuer
	Limiter    *ratelimit.LoginLimiter
	Audit      *auditlog.Logger
	BcryptCost int
	Log        *zap.Logger

	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewHandler(users CredentialStore, issuer *auth.Issuer, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, bcryptCost int, logger *zap.Logger) *Handler {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("placementhub-dummy-password"), bcryptCost)
	return &Handler{
		Users:      users,
		Issuer:     issuer,
		Limiter:    limiter,
		Audit:      audit,
		BcryptCost: bcryptCost,
		Log:        logger,
		dummyHash:  dummy,
	}
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

var errBadLogin = apperr.ErrInvalidCredential.WithMessage("Invalid email or password")

// HandleLogin handles POST /auth/login and issues a bearer credential.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		respond.Error(w, r, h.Log, apperr.MissingField("email"))
		return
	case in.Password == "":
		respond.Error(w, r, h.Log, apperr.MissingField("password"))
		return
	}
	if h.Limiter != nil {
		if err := h.Limiter.Check(r, email); err != nil {
			h.Log.Warn("login rate limited", zap.String("ip", ratelimit.ClientIP(r)))
			h.Audit.LoginFailedRateLimit(r.Context(), email)
			respond.Error(w, r, h.Log, err)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "login")
	defer cancel()

	cred, err := h.Users.GetCredentialByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, storeerr.ErrNotFound) {
			respond.Error(w, r, h.Log, apperr.Internal(err))
			return
		}
		_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(in.Password))
		h.Audit.LoginFailedUnknownEmail(r.Context(), email)
		respond.Error(w, r, h.Log, errBadLogin)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(in.Password)); err != nil {
		h.Audit.LoginFailedWrongPassword(r.Context(), cred.Identity.ID, email)
		respond.Error(w, r, h.Log, errBadLogin)
		return
	}
	if !cred.Identity.Approved {
		h.Audit.LoginFailedUnapproved(r.Context(), cred.Identity.ID, email)
		respond.Error(w, r, h.Log, apperr.ErrAccessDenied.WithMessage("Account is pending approval"))
		return
	}

	token, expiresAt, err := h.Issuer.Issue(cred.Identity.ID)
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Internal(err))
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}

	h.Log.Info("credential issued", zap.String("user_id", cred.Identity.ID), zap.String("role", string(cred.Identity.Role)))
	h.Audit.LoginSuccess(r.Context(), cred.Identity.ID, email)
	respond.JSON(w, http.StatusOK, "Login successful", respond.Payload{
		"token":     token,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
		"user":      cred.Identity,
	})
}

// HandleRegister handles POST /auth/register. New identities start
// unapproved; admins cannot be self-registered.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	name := normalize.Name(in.FullName)
	role, ok := models.ParseRole(strings.TrimSpace(in.Role))
	switch {
	case name == "":
		respond.Error(w, r, h.Log, apperr.MissingField("fullName"))
		return
	case strings.TrimSpace(in.Email) == "":
		respond.Error(w, r, h.Log, apperr.MissingField("email"))
		return
	case !inputval.IsValidEmail(in.Email):
		respond.Error(w, r, h.Log, apperr.InvalidField("email"))
		return
	case !inputval.IsValidPassword(in.Password):
		respond.Error(w, r, h.Log, apperr.ErrInvalidField.WithMessage("password must be 8 to 72 characters"))
		return
	case !ok || role == models.RoleAdmin:
		respond.Error(w, r, h.Log, apperr.InvalidField("role"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.BcryptCost)
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Internal(err))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Request(), h.Log, "register")
	defer cancel()

	who, err := h.Users.Create(ctx, name, in.Email, role, string(hash))
	if err != nil {
		if errors.Is(err, storeerr.ErrDuplicate) {
			respond.Error(w, r, h.Log, apperr.ErrDuplicateEmail)
			return
		}
		respond.Error(w, r, h.Log, apperr.Internal(err))
		return
	}

	h.Log.Info("identity registered", zap.String("user_id", who.ID), zap.String("role", string(who.Role)))
	h.Audit.UserRegistered(r.Context(), who.ID, string(who.Role))
	respond.JSON(w, http.StatusCreated, "Registration received; an admin must approve the account", respond.Payload{"user": who})
}
