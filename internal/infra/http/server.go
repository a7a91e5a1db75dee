package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"yundao/internal/config"
	"yundao/internal/domain"
	"yundao/internal/infra/db"
	"yundao/internal/infra/password"
	"yundao/internal/infra/policyrego"
	"yundao/internal/infra/refreshcache"
	"yundao/internal/infra/token"
	"yundao/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	codec      *token.Codec
	cache      domain.RefreshCache
	engine     *usecase.AuthenticationEngine
	gateway    *Gateway
	authorizer *policyrego.Authorizer
	hasher     password.Hasher

	now func() time.Time
}

func NewServer(cfg config.Config, store *db.Store) (*Server, error) {
	codec, err := token.NewCodec(cfg.TokenSecret, cfg.TokenTTL(), nil)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	var cache domain.RefreshCache
	if cfg.RedisAddr != "" {
		cache, err = refreshcache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("refresh cache: %w", err)
		}
	} else {
		cache = refreshcache.NewMemory(nil)
	}

	authorizer, err := policyrego.NewAuthorizer(context.Background())
	if err != nil {
		return nil, fmt.Errorf("authorizer: %w", err)
	}

	hasher := password.NewArgon2()
	engine := usecase.NewAuthenticationEngine(store.Users, hasher)
	return newServer(cfg, store, codec, cache, engine, authorizer, hasher, time.Now), nil
}

// ServerDeps lets tests assemble a server from fakes.
type ServerDeps struct {
	Codec      *token.Codec
	Cache      domain.RefreshCache
	Engine     *usecase.AuthenticationEngine
	Authorizer *policyrego.Authorizer
	Hasher     password.Hasher
	Now        func() time.Time
}

func NewServerWithDeps(cfg config.Config, store *db.Store, deps ServerDeps) *Server {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = password.NewArgon2()
	}
	return newServer(cfg, store, deps.Codec, deps.Cache, deps.Engine, deps.Authorizer, hasher, now)
}

func newServer(cfg config.Config, store *db.Store, codec *token.Codec, cache domain.RefreshCache, engine *usecase.AuthenticationEngine, authorizer *policyrego.Authorizer, hasher password.Hasher, now func() time.Time) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:        cfg,
		store:      store,
		r:          r,
		codec:      codec,
		cache:      cache,
		engine:     engine,
		authorizer: authorizer,
		hasher:     hasher,
		now:        now,
	}
	s.gateway = NewGateway(codec, cache, engine, cfg.TokenHeader, cfg.RefreshTTL(), cfg.LoginPaths, now)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "no-db"
		if s.store != nil && s.store.DB != nil {
			mode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	s.r.POST("/login", s.handleLogin)
	s.r.GET("/app/login", s.handleAppLogin)

	authed := s.r.Group("")
	authed.Use(s.gateway.Middleware())
	{
		authed.POST("/logout", s.handleLogout)
		authed.GET("/me", s.handleMe)

		authed.GET("/users", s.requirePermission(domain.PermissionView, s.handleListUsers))
		authed.POST("/users", s.requirePermission(domain.PermissionAdd, s.handleCreateUser))
		authed.GET("/users/:id", s.requirePermission(domain.PermissionView, s.handleGetUser))
		authed.PUT("/users/:id", s.requirePermission(domain.PermissionModify, s.handleUpdateUser))
		authed.DELETE("/users/:id", s.requirePermission(domain.PermissionDelete, s.handleDeleteUser))
		authed.POST("/users/:id/bindings", s.requirePermission(domain.PermissionModify, s.handleBindDevice))

		authed.GET("/subjects", s.requirePermission(domain.PermissionView, s.handleListSubjects))
		authed.POST("/subjects", s.requirePermission(domain.PermissionAdd, s.handleCreateSubject))
		authed.GET("/subjects/:id", s.requirePermission(domain.PermissionView, s.handleGetSubject))
		authed.PUT("/subjects/:id", s.requirePermission(domain.PermissionModify, s.handleUpdateSubject))
		authed.DELETE("/subjects/:id", s.requirePermission(domain.PermissionDelete, s.handleDeleteSubject))

		authed.GET("/departs", s.requirePermission(domain.PermissionView, s.handleListDeparts))
		authed.POST("/departs", s.requirePermission(domain.PermissionAdd, s.handleCreateDepart))
		authed.GET("/departs/:id", s.requirePermission(domain.PermissionView, s.handleGetDepart))
		authed.PUT("/departs/:id", s.requirePermission(domain.PermissionModify, s.handleUpdateDepart))
		authed.DELETE("/departs/:id", s.requirePermission(domain.PermissionDelete, s.handleDeleteDepart))

		authed.GET("/activities", s.requirePermission(domain.PermissionView, s.handleListActivities))
		authed.POST("/activities", s.requirePermission(domain.PermissionAdd, s.handleCreateActivity))
		authed.GET("/activities/:id", s.requirePermission(domain.PermissionView, s.handleGetActivity))
		authed.PUT("/activities/:id", s.requirePermission(domain.PermissionModify, s.handleUpdateActivity))
		authed.DELETE("/activities/:id", s.requirePermission(domain.PermissionDelete, s.handleDeleteActivity))
		authed.POST("/activities/:id/release", s.requirePermission(domain.PermissionRelease, s.handleReleaseActivity))
	}
}

// requirePermission is the capability check run after the gateway has
// admitted the request; the gateway decides who the caller is, this
// decides what they may do.
func (s *Server) requirePermission(permission string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := getPrincipal(c)
		if !ok {
			writeError(c, http.StatusUnauthorized, codeGeneric, "unauthorized")
			c.Abort()
			return
		}
		if err := s.authorizer.Require(c.Request.Context(), principal, permission); err != nil {
			if errors.Is(err, domain.ErrForbidden) {
				writeError(c, http.StatusForbidden, codeForbidden, "forbidden")
			} else {
				writeError(c, http.StatusInternalServerError, codeGeneric, "authorization check failed")
			}
			c.Abort()
			return
		}
		handler(c)
	}
}

func (s *Server) Handler() http.Handler {
	return s.r
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}
