package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openhive/hivemux/claim"
	"github.com/openhive/hivemux/model"
	"github.com/openhive/hivemux/utils"
	Logger "github.com/openhive/hivemux/utils/log"
	"github.com/pkg/errors"
)

const slugMaxAttempts = 3

// slugGenerator tries the plain slug first and appends a random suffix on
// collision, a fresh one per attempt.
func slugGenerator(title string) func(attempt int) string {
	base := utils.Slugify(title)
	return func(attempt int) string {
		if attempt == 0 {
			return base
		}
		return base + "-" + utils.RandomAlphabetString(4)
	}
}

func respondCreate(c *gin.Context, id string, slug string, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "id": id, "slug": slug})
		return
	}
	if errors.Is(err, claim.ErrExhaustedAttempts) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "msg": "could not find a free slug, try a different title"})
		return
	}
	Logger.Log.Errorf("create failed: %s", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "internal error"})
}

type createTourInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	SeatCap     int    `json:"seatCap" binding:"required"`
}

func (s *Server) createTour(c *gin.Context) {
	userId := callerId(c)
	if userId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authentication required"})
		return
	}

	var input createTourInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "malformed tour body"})
		return
	}

	tourId := uuid.New().String()
	slug, err := claim.WithUniqueRetry(slugMaxAttempts, slugGenerator(input.Title), func(slug string) error {
		return s.DB.WithContext(c.Request.Context()).Create(&model.Tour{
			Id:          tourId,
			CreatedAt:   time.Now(),
			Title:       input.Title,
			Description: input.Description,
			Slug:        slug,
			Status:      model.TourStatusOpen,
			SeatCap:     input.SeatCap,
		}).Error
	})
	respondCreate(c, tourId, slug, err)
}

type createCourseInput struct {
	Title      string `json:"title" binding:"required"`
	PriceCents int64  `json:"priceCents"`
}

func (s *Server) createCourse(c *gin.Context) {
	userId := callerId(c)
	if userId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "authentication required"})
		return
	}

	var input createCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "malformed course body"})
		return
	}

	courseId := uuid.New().String()
	slug, err := claim.WithUniqueRetry(slugMaxAttempts, slugGenerator(input.Title), func(slug string) error {
		return s.DB.WithContext(c.Request.Context()).Create(&model.Course{
			Id:         courseId,
			CreatedAt:  time.Now(),
			Title:      input.Title,
			Slug:       slug,
			AuthorID:   userId,
			PriceCents: input.PriceCents,
		}).Error
	})
	respondCreate(c, courseId, slug, err)
}
