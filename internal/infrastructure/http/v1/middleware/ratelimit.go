package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"peopledesk/internal/core/apperror"
)

// RateLimit limits requests per client IP. rate uses the limiter format,
// e.g. "600-M" for 600 requests a minute.
func RateLimit(rate string) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}
	return RateLimitWithStore(memory.NewStore(), r), nil
}

// RateLimitWithStore limits requests using an explicit store.
func RateLimitWithStore(store limiter.Store, rate limiter.Rate) gin.HandlerFunc {
	return mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			_ = c.Error(apperror.NewRateLimited())
			c.Abort()
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			_ = c.Error(apperror.NewInternal(err))
			c.Abort()
		}),
	)
}
