package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openhive/hivemux/model"
	"github.com/openhive/hivemux/utils"
	"github.com/openhive/hivemux/utils/dotenv"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

// newTestRouter wires the server without auth middleware; tests impersonate
// callers by setting the "sub" header the middleware would have set.
func newTestRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	NewServer(db).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, caller string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		req.Header.Set("sub", caller)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type feedPageResp struct {
	Items []struct {
		Id        string    `json:"id"`
		Kind      string    `json:"kind"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"items"`
	NextCursor *string `json:"nextCursor"`
}

func TestGetFeedPagesAcrossSources(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)

	seed := func(sec int64, create func(ts time.Time) error) {
		require.NoError(t, create(time.Unix(sec, 0).UTC()))
	}
	seed(10, func(ts time.Time) error {
		return db.Create(&model.Post{Id: "p1", CreatedAt: ts, Title: "post 1"}).Error
	})
	seed(9, func(ts time.Time) error {
		return db.Create(&model.Review{Id: "r1", CreatedAt: ts, Subject: "book", Rating: 5}).Error
	})
	seed(8, func(ts time.Time) error {
		return db.Create(&model.Post{Id: "p2", CreatedAt: ts, Title: "post 2"}).Error
	})
	seed(7, func(ts time.Time) error {
		return db.Create(&model.Review{Id: "r2", CreatedAt: ts, Subject: "cafe", Rating: 3}).Error
	})
	seed(6, func(ts time.Time) error {
		return db.Create(&model.Post{Id: "p3", CreatedAt: ts, Title: "post 3"}).Error
	})

	rec := doJSON(t, router, http.MethodGet, "/feed?limit=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page feedPageResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 3)
	require.Equal(t, "p1", page.Items[0].Id)
	require.Equal(t, "r1", page.Items[1].Id)
	require.Equal(t, "p2", page.Items[2].Id)
	require.NotNil(t, page.NextCursor)

	rec = doJSON(t, router, http.MethodGet, "/feed?limit=3&cursor="+*page.NextCursor, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 2)
	require.Equal(t, "r2", page.Items[0].Id)
	require.Equal(t, "p3", page.Items[1].Id)
	require.Nil(t, page.NextCursor)
}

func TestGetFeedRejectsMalformedCursor(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)

	rec := doJSON(t, router, http.MethodGet, "/feed?cursor=garbage!!!", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFeedRejectsBadLimit(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)

	rec := doJSON(t, router, http.MethodGet, "/feed?limit=-1", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFeedClampsLimit(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)

	for i := 0; i < 55; i++ {
		require.NoError(t, db.Create(&model.Post{
			Id:        fmt.Sprintf("p%02d", i),
			CreatedAt: time.Unix(int64(1000-i), 0).UTC(),
			Title:     "post",
		}).Error)
	}

	rec := doJSON(t, router, http.MethodGet, "/feed?limit=999", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page feedPageResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 50, "limit above the maximum must be clamped")
	require.NotNil(t, page.NextCursor)

	rec = doJSON(t, router, http.MethodGet, "/feed?limit=999&cursor="+*page.NextCursor, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 5)
	require.Nil(t, page.NextCursor)
}

func TestSubmitAssignmentEndpoint(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)
	require.NoError(t, db.Create(&model.Assignment{
		Id: "a1", CourseID: "course-1", Title: "homework",
		Status: model.AssignmentStatusOpen, DueAt: time.Now().Add(time.Hour),
	}).Error)

	body := map[string]string{"body": "my answer"}

	rec := doJSON(t, router, http.MethodPost, "/assignments/a1/submissions", "student-1", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/assignments/a1/submissions", "student-1", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "already_claimed", resp.Reason)

	rec = doJSON(t, router, http.MethodPost, "/assignments/missing/submissions", "student-1", body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/assignments/a1/submissions", "", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitContestEntryEndpoint(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)
	require.NoError(t, db.Create(&model.Contest{Id: "c1", Title: "photo contest", Status: model.ContestStatusActive}).Error)

	body := map[string]string{"title": "my entry", "url": "https://example.com/1"}

	rec := doJSON(t, router, http.MethodPost, "/contests/c1/submissions", "user-1", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/contests/c1/submissions", "user-1", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Reason string `json:"reason"`
		Msg    string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "already_claimed", resp.Reason)
	require.NotEmpty(t, resp.Msg)

	rec = doJSON(t, router, http.MethodPost, "/contests/missing/submissions", "user-1", body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/contests/c1/submissions", "", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventRoleEndpoint(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)
	require.NoError(t, db.Create(&model.Event{
		Id: "e1", Title: "meetup", Status: model.EventStatusScheduled,
		StartsAt: time.Now().Add(24 * time.Hour), LecturerCap: 2,
	}).Error)

	rec := doJSON(t, router, http.MethodPost, "/events/e1/roles", "user-1", map[string]string{"role": "moderator"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/events/e1/roles", "user-2", map[string]string{"role": "moderator"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/events/e1/roles", "user-2", map[string]string{"role": "lecturer", "topic": "go"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/events/e1/roles", "user-3", map[string]string{"role": "dj"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTourAssignsUniqueSlugs(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)

	body := map[string]interface{}{"title": "City Walk", "seatCap": 10}

	rec := doJSON(t, router, http.MethodPost, "/tours", "guide-1", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var first struct {
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Equal(t, "city-walk", first.Slug)

	rec = doJSON(t, router, http.MethodPost, "/tours", "guide-2", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var second struct {
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.NotEqual(t, first.Slug, second.Slug)
	require.Contains(t, second.Slug, "city-walk-")

	var count int64
	db.Model(&model.Tour{}).Count(&count)
	require.Equal(t, int64(2), count)
}

func TestBookTourSeatEndpoint(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)
	require.NoError(t, db.Create(&model.Tour{
		Id: "t1", Title: "hike", Slug: "hike", Status: model.TourStatusOpen, SeatCap: 1,
	}).Error)

	rec := doJSON(t, router, http.MethodPost, "/tours/t1/bookings", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/tours/t1/bookings", "user-2", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "capacity_exhausted", resp.Reason)
}

func TestVoteEndpoint(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)
	require.NoError(t, db.Create(&model.Contest{Id: "c1", Title: "contest", Status: model.ContestStatusVoting}).Error)
	require.NoError(t, db.Create(&model.ContestSubmission{
		Id: "s1", ContestID: "c1", UserID: "author", Title: "entry",
	}).Error)

	path := fmt.Sprintf("/contests/%s/submissions/%s/votes", "c1", "s1")

	rec := doJSON(t, router, http.MethodPost, path, "voter-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, path, "voter-1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var submission model.ContestSubmission
	require.Equal(t, int64(1), db.Where("id = ?", "s1").First(&submission).RowsAffected)
	require.Equal(t, 1, submission.VoteCount)
}
