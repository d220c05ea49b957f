package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const UserIDKey = "user_id"

// UserID lifts the caller identity supplied by the upstream auth layer from
// the X-User-ID header into the request context. Identity verification is
// not this service's concern; an absent or malformed header simply leaves
// the request anonymous.
func UserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-User-ID")
		if header != "" {
			if userID, err := strconv.ParseInt(header, 10, 64); err == nil {
				c.Set(UserIDKey, userID)
			}
		}
		c.Next()
	}
}

// UserIDFrom returns the caller identity set by UserID, if any.
func UserIDFrom(c *gin.Context) *int64 {
	value, ok := c.Get(UserIDKey)
	if !ok {
		return nil
	}
	userID, ok := value.(int64)
	if !ok {
		return nil
	}
	return &userID
}
