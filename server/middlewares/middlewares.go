package middlewares

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/openhive/hivemux/utils"
	Logger "github.com/openhive/hivemux/utils/log"
	"github.com/pkg/errors"
)

var (
	// jwtSecret verifies caller tokens. Token issuance lives in the identity
	// service; this middleware only verifies and forwards the identity.
	jwtSecret []byte
)

// Setup initialized all package scoped variables that are needed to perform
// middleware functionalities. This function must be called before any
// middleware is used.
func Setup() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		Logger.Log.Fatal("JWT_SECRET is not set, refusing to start without auth")
	}
	jwtSecret = []byte(secret)
}

// JWT middleware fetch user jwt in the http header, looking for field "token".
// It then parse the JWT and add a new field "sub" stores user's id. It returns
// error on token not provided or token is invalid (wrong token or expired).
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("token")

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  "empty jwt token",
			})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  "invalid jwt token",
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		sub, _ := claims["sub"].(string)
		if !ok || sub == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  "jwt token carries no subject",
			})
			c.Abort()
			return
		}

		// Successfully validated the jwt token, replace the header field "token"
		// with the user's sub (id). Any client-supplied "sub" must be dropped
		// first: Add appends, and downstream handlers read the first value.
		c.Request.Header.Del("token")
		c.Request.Header.Del("sub")
		c.Request.Header.Add("sub", sub)

		// before request
		c.Next()
	}
}

// RateLimit counts requests per caller per route against the shared Redis
// window. A limiter outage lets requests through: availability over
// throttling accuracy.
func RateLimit(limiter *utils.RedisRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.Request.Header.Get("sub")
		if caller == "" {
			caller = c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), caller, c.FullPath())
		if err != nil {
			Logger.Log.Warnf("rate limiter unavailable, letting request through: %s", err)
			c.Next()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code": utils.ErrorRateLimited,
				"msg":  "too many requests",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
