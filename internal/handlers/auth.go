package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/weather-history/internal/auth"
	"github.com/ukydev/weather-history/internal/db"
	"github.com/ukydev/weather-history/internal/middleware"
	"github.com/ukydev/weather-history/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := decodeJSON(w, r, &loginReq); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := validateStruct(loginReq); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userCollection.FindUserByUsername(r.Context(), loginReq.Username)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			writeServiceError(w, r, err)
			return
		}
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.IsActive {
		middleware.WriteError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID.Hex()).Warn("Failed to update last login")
	}

	middleware.WriteJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: *user})
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := decodeJSON(w, r, &registerReq); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := validateStruct(registerReq); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if registerReq.Role == "" {
		registerReq.Role = models.RoleViewer
	}
	if !models.IsValidRole(registerReq.Role) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid role")
		return
	}
	// Self-registration yields viewers; other roles are granted by a user manager.
	if registerReq.Role != models.RoleViewer && !h.callerCan(r, models.PermManageUsers) {
		middleware.WriteError(w, http.StatusForbidden, "Insufficient permissions to assign role")
		return
	}

	if _, err := h.userCollection.FindUserByUsername(r.Context(), registerReq.Username); err == nil {
		middleware.WriteError(w, http.StatusConflict, "Username already exists")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		writeServiceError(w, r, err)
		return
	}

	if _, err := h.userCollection.FindUserByEmail(r.Context(), registerReq.Email); err == nil {
		middleware.WriteError(w, http.StatusConflict, "Email already exists")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		writeServiceError(w, r, err)
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userCollection.InsertUser(r.Context(), models.User{
		ID:           primitive.NewObjectID(),
		Username:     registerReq.Username,
		Email:        registerReq.Email,
		PasswordHash: passwordHash,
		Role:         registerReq.Role,
		FirstName:    registerReq.FirstName,
		LastName:     registerReq.LastName,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			middleware.WriteError(w, http.StatusConflict, "Username or email already exists")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.WithFields(log.Fields{"user_id": user.ID.Hex(), "role": user.Role}).Info("User registered")
	middleware.WriteJSON(w, http.StatusCreated, models.LoginResponse{Token: token, User: *user})
}

func (h *AuthHandler) callerCan(r *http.Request, action string) bool {
	token, err := h.authService.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return false
	}
	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		return false
	}
	return claims.Role.HasPermission(action)
}

// GetProfile handles GET /auth/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, user)
}
