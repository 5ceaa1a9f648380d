package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/guide/internal/auth"
	"github.com/MrSnakeDoc/guide/internal/facade"
	"github.com/MrSnakeDoc/guide/internal/logger"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Facade  *facade.Facade // typed entry point for every store operation
	Gateway *auth.Gateway  // credential extraction and session validation

	SessionTTL    time.Duration // cookie lifetime, mirrors the session slot TTL
	TrustProxy    bool          // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RedisClient   *redis.Client // Redis client connection, used by readiness checks
	ReloadTrigger chan struct{} // Channel to trigger manual seed reload (nil if seeding disabled)
}
