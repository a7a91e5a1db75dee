package http

import (
	"errors"
	"net/http"
	"strconv"

	"yundao/internal/domain"

	"github.com/gin-gonic/gin"
)

// Stable machine-readable codes surfaced to callers. The values are part
// of the wire contract and must not be renumbered.
const (
	codeOK                  = 200
	codeGeneric             = 400
	codeForbidden           = 403
	codeMissingToken        = 801
	codeAccountDisabled     = 803
	codeUnknownAccount      = 804
	codeLockedAccount       = 805
	codeSessionExpired      = 806
	codeIncorrectCredential = 807
	codeTokenMalformed      = 808
	codeSignatureInvalid    = 809
	codeSessionSuperseded   = 810
)

// apiResponse is serialized with exactly these three keys in this order;
// existing clients depend on the shape.
type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, apiResponse{Code: codeOK, Message: message, Data: data})
}

func writeError(c *gin.Context, status, code int, message string) {
	c.JSON(status, apiResponse{Code: code, Message: message, Data: nil})
}

// reasonCode maps a gateway or engine failure to its wire code. Unknown
// errors map to the generic code; callers log the original server-side.
func reasonCode(err error) (int, string, bool) {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return codeMissingToken, "missing access token", true
	case errors.Is(err, domain.ErrTokenMalformed):
		return codeTokenMalformed, "access token malformed", true
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		return codeSignatureInvalid, "access token signature invalid", true
	case errors.Is(err, domain.ErrSessionExpired):
		return codeSessionExpired, "session expired, login required", true
	case errors.Is(err, domain.ErrSessionSuperseded):
		return codeSessionSuperseded, "session superseded by a later login", true
	case errors.Is(err, domain.ErrUnknownAccount):
		return codeUnknownAccount, "unknown account", true
	case errors.Is(err, domain.ErrLockedAccount):
		return codeLockedAccount, "account locked", true
	case errors.Is(err, domain.ErrAccountDisabled):
		return codeAccountDisabled, "account disabled", true
	case errors.Is(err, domain.ErrIncorrectCredential):
		return codeIncorrectCredential, "incorrect credential", true
	case errors.Is(err, domain.ErrUnknownDevice):
		return codeUnknownAccount, "unknown device binding", true
	default:
		return codeGeneric, "unauthorized", false
	}
}

func parsePage(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 || size > 200 {
		size = 20
	}
	return page, size
}

func pageJSON[T any](p domain.Page[T], items []gin.H) gin.H {
	return gin.H{
		"items": items,
		"total": p.Total,
		"page":  p.Page,
		"size":  p.Size,
	}
}
