package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openhive/hivemux/feed"
	"github.com/openhive/hivemux/utils"
	Logger "github.com/openhive/hivemux/utils/log"
)

const (
	defaultFeedPageLimit = 10
	maxFeedPageLimit     = 50
)

// getFeed serves one merged feed page. Omitting the cursor yields the first
// page; a malformed cursor is rejected rather than silently restarted.
func (s *Server) getFeed(c *gin.Context) {
	limit := defaultFeedPageLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "limit must be a positive integer"})
			return
		}
		limit = utils.Min(parsed, maxFeedPageLimit)
	}

	var cur *feed.Cursor
	if token := c.Query("cursor"); token != "" {
		decoded, err := feed.DecodeCursor(token)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code": utils.ErrorInvalidCursor,
				"msg":  "invalid cursor",
			})
			return
		}
		cur = &decoded
	}

	page, err := s.Merger.MergePage(c.Request.Context(), cur, limit)
	if err != nil {
		Logger.Log.Errorf("feed page failed: %s", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"msg": "feed temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, page)
}
