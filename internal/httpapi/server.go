// Package httpapi exposes the project-tracking domain over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vibetracker/vibetracker/internal/auth"
	"github.com/vibetracker/vibetracker/internal/identity"
	"github.com/vibetracker/vibetracker/internal/steps"
)

// claimsKey is the gin context key holding the verified auth.Claims.
const claimsKey = "claims"

// StartOpts holds configuration for the API server.
type StartOpts struct {
	DB          *gorm.DB
	Catalog     *steps.Catalog
	Verifier    auth.Verifier
	Log         *zap.Logger
	Port        int
	CORSOrigins []string
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("httpapi: db is required")
	}
	if opts.Catalog == nil {
		return fmt.Errorf("httpapi: catalog is required")
	}
	if opts.Verifier == nil {
		return fmt.Errorf("httpapi: verifier is required")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	router := newRouter(opts)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	opts.Log.Info("api server listening", zap.Int("port", opts.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("httpapi: %w", err)
	}
	return nil
}

// newRouter builds the gin engine with CORS, auth middleware, and routes.
func newRouter(opts StartOpts) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = opts.CORSOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(corsCfg))

	registerRoutes(router, opts)
	return router
}

// requireAuth verifies the bearer credential and binds the local user
// record. Binding is non-fatal: claims without a subject still pass
// through, and the owner-scoped stores simply find nothing for them.
func requireAuth(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := opts.Verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if err := identity.EnsureUser(opts.DB, claims); err != nil {
			opts.Log.Warn("ensure user failed", zap.String("subject", claims.Subject), zap.Error(err))
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// claimsFrom returns the verified claims set by requireAuth.
func claimsFrom(c *gin.Context) auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(auth.Claims); ok {
			return claims
		}
	}
	return auth.Claims{}
}
