package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"artmarket/internal/domain"
	"artmarket/internal/repository"
	"artmarket/internal/service"
)

// RouterDeps agrupa todo lo que el router necesita para armar las rutas.
type RouterDeps struct {
	Logger *zap.Logger
	Pool   *pgxpool.Pool
	Tokens *service.TokenService
	Users  repository.UserRepository

	Sessions     *SessionHandler
	UserH        *UserHandler
	Artists      *ArtistHandler
	Requesters   *RequesterHandler
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Messages     *MessageHandler
	Statistics   *StatisticsHandler
	WS           *WSHandler
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(d.Logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		if err := d.Pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := RequireAuth(d.Tokens, d.Users)
	optional := OptionalAuth(d.Tokens, d.Users)

	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("/register", d.Sessions.Register)
	users.POST("/login", d.Sessions.Login)
	users.POST("/refresh-token", d.Sessions.RefreshToken)
	users.POST("/logout", optional, d.Sessions.Logout)
	users.POST("/verify-email", d.Sessions.VerifyEmail)
	users.POST("/resend-verification", d.Sessions.ResendVerification)
	users.GET("/check-auth", auth, d.Sessions.CheckAuth)
	users.GET("", auth, d.UserH.List)
	users.GET("/:id", auth, d.UserH.Get)
	users.PUT("/:id", auth, d.UserH.Update)
	users.DELETE("/:id", auth, d.UserH.Delete)

	artists := api.Group("/artists")
	artists.GET("", d.Artists.List)
	artists.GET("/:userId", optional, d.Artists.Get)
	artists.PUT("/:userId", auth, RequireRole(domain.RoleArtist), d.Artists.Update)
	artists.POST("/:userId/portfolio", auth, RequireRole(domain.RoleArtist), d.Artists.AddPortfolioItem)
	artists.PUT("/:userId/portfolio/:itemId", auth, RequireRole(domain.RoleArtist), d.Artists.UpdatePortfolioItem)
	artists.DELETE("/:userId/portfolio/:itemId", auth, RequireRole(domain.RoleArtist), d.Artists.DeletePortfolioItem)
	artists.GET("/:userId/statistics", d.Statistics.Artist)

	requesters := api.Group("/requesters")
	requesters.GET("", d.Requesters.List)
	requesters.GET("/:userId", optional, d.Requesters.Get)
	requesters.PUT("/:userId", auth, RequireRole(domain.RoleRequester), d.Requesters.Update)
	requesters.GET("/:userId/jobs", d.Requesters.Jobs)
	requesters.POST("/:userId/reviews", auth, d.Requesters.CreateReview)
	requesters.GET("/:userId/statistics", d.Statistics.Requester)

	jobs := api.Group("/jobs")
	jobs.GET("", d.Jobs.List)
	jobs.GET("/search", d.Jobs.List)
	jobs.GET("/:id", optional, d.Jobs.Get)
	jobs.POST("", auth, RequireRole(domain.RoleRequester), d.Jobs.Create)
	jobs.PUT("/:id", auth, RequireRole(domain.RoleRequester), d.Jobs.Update)
	jobs.DELETE("/:id", auth, RequireRole(domain.RoleRequester), d.Jobs.Delete)
	jobs.POST("/:id/apply", auth, RequireRole(domain.RoleArtist), d.Jobs.Apply)
	jobs.PUT("/:id/applications/:appId", auth, d.Jobs.UpdateApplication)

	applications := api.Group("/applications", auth)
	applications.GET("/my", RequireRole(domain.RoleArtist), d.Applications.Mine)
	applications.GET("/artist/:artistId", RequireRole(domain.RoleArtist), d.Applications.ByArtist)
	applications.GET("/:id", d.Applications.Get)

	messages := api.Group("/messages", auth)
	messages.GET("/conversations", d.Messages.Conversations)
	messages.GET("/conversation/:userId", d.Messages.Conversation)
	messages.POST("/send", d.Messages.Send)
	messages.POST("/mark-read/:senderId", d.Messages.MarkRead)
	messages.GET("/unread-count", d.Messages.UnreadCount)
	messages.DELETE("/:id", d.Messages.Delete)

	statistics := api.Group("/statistics")
	statistics.GET("/requester/:userId", d.Statistics.Requester)
	statistics.GET("/artist/:userId", d.Statistics.Artist)

	r.GET("/ws", auth, d.WS.Serve)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
