package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openhive/hivemux/claim"
)

func (s *Server) submitContestEntry(c *gin.Context) {
	userId := callerId(c)
	if userId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authentication required"})
		return
	}

	var input claim.ContestEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "malformed submission body"})
		return
	}

	err := s.Claims.TryClaim(c.Request.Context(), claim.ContestEntry(c.Param("id"), userId, input))
	respondClaim(c, err)
}

func (s *Server) voteContestSubmission(c *gin.Context) {
	userId := callerId(c)
	if userId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authentication required"})
		return
	}

	err := s.Claims.TryClaim(c.Request.Context(),
		claim.ContestVote(c.Param("id"), c.Param("submissionId"), userId))
	respondClaim(c, err)
}

type eventRoleInput struct {
	Role  string `json:"role"`
	Topic string `json:"topic"`
}

func (s *Server) claimEventRole(c *gin.Context) {
	userId := callerId(c)
	if userId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authentication required"})
		return
	}

	var input eventRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "malformed role body"})
		return
	}

	switch input.Role {
	case "moderator":
		respondClaim(c, s.Claims.TryUpdate(c.Request.Context(), claim.EventModerator(c.Param("id"), userId)))
	case "lecturer":
		respondClaim(c, s.Claims.TryClaim(c.Request.Context(), claim.EventLecturer(c.Param("id"), userId, input.Topic)))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"msg": "unknown role, expected moderator or lecturer"})
	}
}

type assignmentSubmissionInput struct {
	Body string `json:"body"`
}

func (s *Server) submitAssignment(c *gin.Context) {
	userId := callerId(c)
	if userId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authentication required"})
		return
	}

	var input assignmentSubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "malformed submission body"})
		return
	}

	err := s.Claims.TryClaim(c.Request.Context(), claim.AssignmentEntry(c.Param("id"), userId, input.Body))
	respondClaim(c, err)
}

func (s *Server) bookTourSeat(c *gin.Context) {
	userId := callerId(c)
	if userId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authentication required"})
		return
	}

	err := s.Claims.TryClaim(c.Request.Context(), claim.TourSeat(c.Param("id"), userId))
	respondClaim(c, err)
}
