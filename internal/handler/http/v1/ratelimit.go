package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimitObserver получает решения ограничителя частоты
type RateLimitObserver interface {
	OnAllow(route string)
	OnDeny(route string)
}

// fallbackRate применяется, если RATE_LIMIT задан некорректно
var fallbackRate = limiter.Rate{Period: time.Minute, Limit: 30}

// rateLimitMiddleware ограничивает операции записи по IP клиента.
// Один limiter на все маршруты группы, ключ - IP.
func (h *Handler) rateLimitMiddleware() gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(h.cfg.RateLimit)
	if err != nil {
		h.logger.WithError(err).WithField("rate_limit", h.cfg.RateLimit).Warn("Invalid rate limit, using default")
		rate = fallbackRate
	}

	lim := limiter.New(memory.NewStore(), rate)
	limited := mgin.NewMiddleware(lim,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			h.observeRate(c, false)
			h.logger.WithFields(logrus.Fields{
				"method":    "rateLimit",
				"client_ip": c.ClientIP(),
				"route":     c.FullPath(),
			}).Warn("Rate limit exceeded")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			h.logger.WithError(err).Error("Rate limiter store failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}),
	)

	return func(c *gin.Context) {
		limited(c)
		if c.IsAborted() {
			return
		}
		h.observeRate(c, true)
	}
}

func (h *Handler) observeRate(c *gin.Context, allowed bool) {
	if h.rateObserver == nil {
		return
	}
	route := c.FullPath()
	if allowed {
		h.rateObserver.OnAllow(route)
	} else {
		h.rateObserver.OnDeny(route)
	}
}
