// Package api exposes the HTTP surface of the social network: account
// registration, direct messaging, the follow graph and extended profiles.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-lab/auth"
	"social-lab/observability"
	"social-lab/services"
	"social-lab/storage"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	auth      services.IAuthService
	accounts  services.IAccountService
	messaging services.IMessagingService
	social    services.ISocialService
	profiles  services.IProfileService
	media     *storage.MediaStore
	tokens    *auth.TokenManager
	monitor   *observability.Monitor
	log       *slog.Logger
}

func NewServer(
	authService services.IAuthService,
	accounts services.IAccountService,
	messaging services.IMessagingService,
	social services.ISocialService,
	profiles services.IProfileService,
	media *storage.MediaStore,
	tokens *auth.TokenManager,
	monitor *observability.Monitor,
	log *slog.Logger,
) *Server {
	return &Server{
		auth:      authService,
		accounts:  accounts,
		messaging: messaging,
		social:    social,
		profiles:  profiles,
		media:     media,
		tokens:    tokens,
		monitor:   monitor,
		log:       log,
	}
}

// Router builds the gin engine. Register, login and healthz are public;
// everything else sits behind the JWT middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLog())

	router.POST("/register/", s.register)
	router.POST("/login/", s.login)
	router.GET("/healthz", s.healthz)

	private := router.Group("/", auth.Middleware(s.tokens))
	{
		private.GET("/profile/", s.me)
		private.PUT("/profile/update/", s.updateAccount)
		private.DELETE("/profile/delete/", s.deleteAccount)

		private.GET("/messages/", s.listMessages)
		private.POST("/messages/", s.sendMessage)
		private.PUT("/messages/:id/", s.markMessageRead)
		private.GET("/messages/search/", s.searchMessages)
		private.GET("/messages/conversation/:user_id/", s.conversation)

		private.POST("/follow/:user_id/", s.follow)
		private.POST("/unfollow/:user_id/", s.unfollow)
		private.GET("/following/", s.following)
		private.GET("/followers/", s.followers)

		private.GET("/cover_profile/", s.listCoverProfiles)
		private.POST("/cover_profile/", s.createCoverProfile)
		private.GET("/cover_profile/:id/", s.getCoverProfile)
		private.PUT("/cover_profile/:id/", s.updateCoverProfile)
		private.DELETE("/cover_profile/:id/", s.deleteCoverProfile)

		private.GET("/notifications/", s.notifications)
	}

	return router
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.Snapshot())
}

// requestLog logs every request and feeds the health counters.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		s.monitor.IncrRequests()
		if status >= http.StatusInternalServerError {
			s.monitor.IncrFailures()
		}
		s.log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status)
	}
}
