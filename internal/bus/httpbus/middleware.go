package httpbus

import (
	"log/slog"

	"github.com/alkime/broadcast/internal/config"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// setupTransportHardening applies the subset of gin-contrib/secure's
// headers that make sense for a machine-to-machine JSON/SSE bus: HSTS
// (this is still served over HTTPS in production) and nosniff. Frame
// deny, the XSS filter, and a Content-Security-Policy all guard against
// a browser rendering attacker-controlled HTML, which this server never
// serves to anything — every route returns application/json or an SSE
// event stream to a broadcastctl/busd peer, not a user agent.
func setupTransportHardening(router *gin.Engine, cfg *config.Config, log *slog.Logger) {
	stsSeconds := int64(0)
	if cfg.Env == config.EnvProduction {
		stsSeconds = int64(cfg.HSTSMaxAge)
	}

	//nolint:exhaustruct // Using default values for other secure.Config fields
	hardening := secure.New(secure.Config{
		STSSeconds:           stsSeconds,
		STSIncludeSubdomains: true,
		ContentTypeNosniff:   true,
	})
	router.Use(hardening)

	log.Debug("configured transport hardening", "hsts_enabled", cfg.Env == config.EnvProduction)
}
