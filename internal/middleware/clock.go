package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const nowKey = "request_now"

// RequestClock reads the clock once per request. Every visibility check of
// the request uses that instant, so a post cannot change state halfway
// through a response. A nil clock means time.Now.
func RequestClock(clock func() time.Time) gin.HandlerFunc {
	if clock == nil {
		clock = time.Now
	}
	return func(c *gin.Context) {
		c.Set(nowKey, clock().UTC())
		c.Next()
	}
}

// RequestTime returns the instant captured by RequestClock.
func RequestTime(c *gin.Context) time.Time {
	if v, ok := c.Get(nowKey); ok {
		if now, ok := v.(time.Time); ok {
			return now
		}
	}
	now := time.Now().UTC()
	c.Set(nowKey, now)
	return now
}
