package http

import (
	"errors"
	"net/http"

	"yundao/internal/domain"

	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	Account  string `json:"account"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Status   string `json:"status"`
	Role     string `json:"role"`
}

func userJSON(u domain.User) gin.H {
	// Password hash stays server-side.
	return gin.H{
		"id":      u.ID,
		"account": u.Account,
		"name":    u.Name,
		"status":  u.Status,
		"role":    u.Role,
	}
}

func (s *Server) handleListUsers(c *gin.Context) {
	page, size := parsePage(c)
	result, err := s.store.Users.List(c.Request.Context(), page, size)
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeGeneric, "list users failed")
		return
	}
	items := make([]gin.H, 0, len(result.Items))
	for _, u := range result.Items {
		items = append(items, userJSON(u))
	}
	writeOK(c, "ok", pageJSON(result, items))
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Account == "" || req.Password == "" {
		writeError(c, http.StatusBadRequest, codeGeneric, "account and password are required")
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleUser
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		writeError(c, http.StatusBadRequest, codeGeneric, "invalid password")
		return
	}
	id, err := s.store.Users.Create(c.Request.Context(), domain.User{
		Account:      req.Account,
		Name:         req.Name,
		PasswordHash: hash,
		Status:       domain.StatusNormal,
		Role:         req.Role,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeGeneric, "create user failed")
		return
	}
	writeOK(c, "user created", gin.H{"id": id})
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.store.Users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "user not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "get user failed")
		return
	}
	writeOK(c, "ok", userJSON(*user))
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeGeneric, "invalid request body")
		return
	}
	user := domain.User{
		ID:     c.Param("id"),
		Name:   req.Name,
		Status: req.Status,
		Role:   req.Role,
	}
	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			writeError(c, http.StatusBadRequest, codeGeneric, "invalid password")
			return
		}
		user.PasswordHash = hash
	}
	if err := s.store.Users.Update(c.Request.Context(), user); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "user not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "update user failed")
		return
	}
	writeOK(c, "user updated", nil)
}

type bindDeviceRequest struct {
	OpenID string `json:"openId"`
}

// handleBindDevice registers a device identifier for a user so the app
// login route can resolve it without a password.
func (s *Server) handleBindDevice(c *gin.Context) {
	var req bindDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OpenID == "" {
		writeError(c, http.StatusBadRequest, codeGeneric, "openId is required")
		return
	}
	userID := c.Param("id")
	if _, err := s.store.Users.FindByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "user not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "bind device failed")
		return
	}
	id, err := s.store.Users.BindDevice(c.Request.Context(), userID, req.OpenID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, codeGeneric, "bind device failed")
		return
	}
	writeOK(c, "device bound", gin.H{"id": id})
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	if err := s.store.Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, codeGeneric, "user not found")
			return
		}
		writeError(c, http.StatusInternalServerError, codeGeneric, "delete user failed")
		return
	}
	writeOK(c, "user deleted", nil)
}
