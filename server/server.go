// Package server exposes the REST surface: the merged community feed and the
// claim endpoints for every race-sensitive action.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openhive/hivemux/claim"
	"github.com/openhive/hivemux/feed"
	Logger "github.com/openhive/hivemux/utils/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Server holds the request-scoped collaborators. It is stateless between
// requests; every handler may run fully in parallel with any other.
type Server struct {
	DB     *gorm.DB
	Merger *feed.Merger
	Claims *claim.Engine
}

func NewServer(db *gorm.DB) *Server {
	return &Server{
		DB:     db,
		Merger: feed.NewMerger(feed.DefaultSourceTimeout, feed.AllAdapters(db)...),
		Claims: claim.NewEngine(db),
	}
}

// RegisterRoutes binds every handler. Auth and rate limiting middlewares are
// attached by the caller before this.
func (s *Server) RegisterRoutes(router gin.IRouter) {
	router.GET("/feed", s.getFeed)

	router.POST("/contests/:id/submissions", s.submitContestEntry)
	router.POST("/contests/:id/submissions/:submissionId/votes", s.voteContestSubmission)
	router.POST("/events/:id/roles", s.claimEventRole)
	router.POST("/assignments/:id/submissions", s.submitAssignment)
	router.POST("/tours/:id/bookings", s.bookTourSeat)

	router.POST("/tours", s.createTour)
	router.POST("/courses", s.createCourse)
}

// callerId returns the authenticated caller set by the JWT middleware, or ""
// when the request is unauthenticated.
func callerId(c *gin.Context) string {
	return c.Request.Header.Get("sub")
}

// respondClaim maps a claim result onto the HTTP surface. Every rejection
// carries the classified outcome and a human readable reason.
func respondClaim(c *gin.Context, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	var cerr *claim.Error
	if errors.As(err, &cerr) {
		status := http.StatusBadRequest
		if cerr.Outcome == claim.OutcomeNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"success": false,
			"reason":  string(cerr.Outcome),
			"msg":     cerr.Reason,
		})
		return
	}

	Logger.Log.Errorf("claim failed with unclassified error: %s", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "internal error"})
}
