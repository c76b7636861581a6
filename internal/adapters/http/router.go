package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Estimate/internal/adapters/signal"
	"github.com/dkeye/Estimate/internal/app/orch"
	"github.com/dkeye/Estimate/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sessionName    = "EstimateSessions"
	clientTokenKey = "ct"
)

// ClientTokenMiddleware keeps a per-browser token in the cookie session. The
// token lets a device resume its seat after a reload.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			sess.Set(clientTokenKey, token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save client token")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidators()

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 24 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}
	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": o.Rooms.Count()})
	})

	h := &roomHandlers{orch: o}
	api := r.Group("/api")
	api.GET("/rooms", h.list)
	api.GET("/rooms/:id", h.check)
	api.POST("/rooms", h.create)

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:        cfg.ReadLimit,
		PingPeriod:       cfg.PingPeriod,
		PongWait:         cfg.PongWait,
		WriteWait:        cfg.WriteWait,
		SendBuffer:       cfg.SendBuffer,
		ReactionLimit:    cfg.ReactionLimit,
		ReactionInterval: cfg.ReactionInterval,
	})
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("device", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
