package http

import (
	"log"
	"net/http"
	"strconv"

	"yundao/internal/domain"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Account  string `form:"account" json:"account"`
	Password string `form:"password" json:"password"`
}

// handleLogin is the primary account/password entry route. A successful
// login writes the refresh marker and returns the first access token in
// both the body and the token header.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil || req.Account == "" || req.Password == "" {
		writeError(c, http.StatusBadRequest, codeGeneric, "account and password are required")
		return
	}

	principal, err := s.engine.Authenticate(c.Request.Context(), req.Account, req.Password)
	if err != nil {
		s.writeAuthFailure(c, err)
		return
	}
	s.issueSession(c, principal)
}

// handleAppLogin is the secondary device-identifier route for app
// clients: a pre-registered device binding stands in for the password.
func (s *Server) handleAppLogin(c *gin.Context) {
	openID := c.Query("openId")
	if openID == "" {
		writeError(c, http.StatusBadRequest, codeGeneric, "openId is required")
		return
	}

	principal, err := s.engine.AuthenticateDevice(c.Request.Context(), openID)
	if err != nil {
		s.writeAuthFailure(c, err)
		return
	}
	s.issueSession(c, principal)
}

// issueSession mints the first access token of a session and installs its
// marker as the one rotation-eligible value for the account. A login while
// another session is live overwrites the marker, making the older
// session's tokens non-rotatable.
func (s *Server) issueSession(c *gin.Context, principal domain.Principal) {
	marker := s.now().UnixMilli()
	key := domain.RefreshKey(principal.Account)
	if err := s.cache.Set(c.Request.Context(), key, strconv.FormatInt(marker, 10), s.cfg.RefreshTTL()); err != nil {
		log.Printf("login: refresh marker write failed for %s: %v", principal.Account, err)
		writeError(c, http.StatusUnauthorized, codeGeneric, "unauthorized")
		return
	}
	accessToken, err := s.codec.Issue(principal.Account, marker)
	if err != nil {
		log.Printf("login: token issue failed for %s: %v", principal.Account, err)
		writeError(c, http.StatusUnauthorized, codeGeneric, "unauthorized")
		return
	}

	c.Header(s.cfg.TokenHeader, accessToken)
	c.Header(exposeHeadersHeader, s.cfg.TokenHeader)
	writeOK(c, "login succeeded", gin.H{
		"id":          principal.ID,
		"account":     principal.Account,
		"name":        principal.Name,
		"roles":       principal.Roles,
		"permissions": principal.Permissions,
		"token":       accessToken,
	})
}

// handleLogout deletes the refresh marker, so outstanding tokens for the
// account can expire but never rotate.
func (s *Server) handleLogout(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, codeGeneric, "unauthorized")
		return
	}
	if err := s.cache.Delete(c.Request.Context(), domain.RefreshKey(principal.Account)); err != nil {
		log.Printf("logout: refresh marker delete failed for %s: %v", principal.Account, err)
		writeError(c, http.StatusInternalServerError, codeGeneric, "logout failed")
		return
	}
	writeOK(c, "logout succeeded", nil)
}

func (s *Server) handleMe(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, codeGeneric, "unauthorized")
		return
	}
	writeOK(c, "ok", gin.H{
		"id":          principal.ID,
		"account":     principal.Account,
		"name":        principal.Name,
		"roles":       principal.Roles,
		"permissions": principal.Permissions,
	})
}

func (s *Server) writeAuthFailure(c *gin.Context, err error) {
	code, message, known := reasonCode(err)
	if !known {
		log.Printf("login: internal error: %v", err)
	}
	writeError(c, http.StatusUnauthorized, code, message)
}
