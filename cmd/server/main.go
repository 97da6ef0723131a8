package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/openhive/hivemux/server"
	"github.com/openhive/hivemux/server/middlewares"
	"github.com/openhive/hivemux/utils"
	"github.com/openhive/hivemux/utils/dotenv"
	. "github.com/openhive/hivemux/utils/flag"
	. "github.com/openhive/hivemux/utils/log"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

const (
	claimRateLimit  = 30
	claimRateWindow = time.Minute
)

func cleanup() {
	utils.CloseProfiler()
	utils.CloseTracer()
	Log.Info("api server shutdown")
}

func main() {
	defer cleanup()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	if !ByPassAuth {
		middlewares.Setup()
	}

	db, err := utils.GetDBConnection()
	if err != nil {
		Log.Fatalf("cannot connect to DB: %s", err)
	}

	limiter, err := utils.GetRedisRateLimiter(claimRateLimit, claimRateWindow)
	if err != nil {
		Log.Fatalf("cannot connect to redis: %s", err)
	}

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(ServiceName))
	if !ByPassAuth {
		router.Use(middlewares.JWT())
	}
	router.Use(middlewares.RateLimit(limiter))

	server.NewServer(db).RegisterRoutes(router)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	Log.Info("api server starts up")
	router.Run(":8080")
}
