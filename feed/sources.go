package feed

import (
	"context"
	"time"

	"github.com/jinzhu/copier"
	"github.com/openhive/hivemux/model"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// One adapter per entity store. Each runs the same shaped query, the
// cursor scope plus "created_at desc, id asc" and a limit, and projects the
// native record into the envelope with a kind-specific payload.

type PostPayload struct {
	Title     string         `json:"title"`
	AuthorID  string         `json:"authorId"`
	LikeCount int            `json:"likeCount"`
	Tags      datatypes.JSON `json:"tags,omitempty"`
}

type PostAdapter struct {
	DB *gorm.DB
}

func (a *PostAdapter) Kind() Kind { return KindPost }

func (a *PostAdapter) FetchPage(ctx context.Context, cur *Cursor, limit int) ([]FeedItem, error) {
	var posts []*model.Post
	err := a.DB.WithContext(ctx).
		Scopes(cursorScope(cur, KindPost)).
		Order("created_at desc, id asc").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetch posts page")
	}

	items := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		var payload PostPayload
		if err := copier.Copy(&payload, p); err != nil {
			return nil, errors.Wrap(err, "project post")
		}
		items = append(items, FeedItem{Id: p.Id, Kind: KindPost, CreatedAt: p.CreatedAt, Payload: payload})
	}
	return items, nil
}

type ReviewPayload struct {
	Subject  string `json:"subject"`
	Rating   int    `json:"rating"`
	AuthorID string `json:"authorId"`
}

type ReviewAdapter struct {
	DB *gorm.DB
}

func (a *ReviewAdapter) Kind() Kind { return KindReview }

func (a *ReviewAdapter) FetchPage(ctx context.Context, cur *Cursor, limit int) ([]FeedItem, error) {
	var reviews []*model.Review
	err := a.DB.WithContext(ctx).
		Scopes(cursorScope(cur, KindReview)).
		Order("created_at desc, id asc").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetch reviews page")
	}

	items := make([]FeedItem, 0, len(reviews))
	for _, r := range reviews {
		var payload ReviewPayload
		if err := copier.Copy(&payload, r); err != nil {
			return nil, errors.Wrap(err, "project review")
		}
		items = append(items, FeedItem{Id: r.Id, Kind: KindReview, CreatedAt: r.CreatedAt, Payload: payload})
	}
	return items, nil
}

type EventPayload struct {
	Title         string    `json:"title"`
	StartsAt      time.Time `json:"startsAt"`
	Status        string    `json:"status"`
	LecturerCount int       `json:"lecturerCount"`
}

type EventAdapter struct {
	DB *gorm.DB
}

func (a *EventAdapter) Kind() Kind { return KindEvent }

func (a *EventAdapter) FetchPage(ctx context.Context, cur *Cursor, limit int) ([]FeedItem, error) {
	var events []*model.Event
	err := a.DB.WithContext(ctx).
		Scopes(cursorScope(cur, KindEvent)).
		Order("created_at desc, id asc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetch events page")
	}

	items := make([]FeedItem, 0, len(events))
	for _, e := range events {
		var payload EventPayload
		if err := copier.Copy(&payload, e); err != nil {
			return nil, errors.Wrap(err, "project event")
		}
		items = append(items, FeedItem{Id: e.Id, Kind: KindEvent, CreatedAt: e.CreatedAt, Payload: payload})
	}
	return items, nil
}

type CoursePayload struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	AuthorID   string `json:"authorId"`
	PriceCents int64  `json:"priceCents"`
}

type CourseAdapter struct {
	DB *gorm.DB
}

func (a *CourseAdapter) Kind() Kind { return KindCourse }

func (a *CourseAdapter) FetchPage(ctx context.Context, cur *Cursor, limit int) ([]FeedItem, error) {
	var courses []*model.Course
	err := a.DB.WithContext(ctx).
		Scopes(cursorScope(cur, KindCourse)).
		Order("created_at desc, id asc").
		Limit(limit).
		Find(&courses).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetch courses page")
	}

	items := make([]FeedItem, 0, len(courses))
	for _, c := range courses {
		var payload CoursePayload
		if err := copier.Copy(&payload, c); err != nil {
			return nil, errors.Wrap(err, "project course")
		}
		items = append(items, FeedItem{Id: c.Id, Kind: KindCourse, CreatedAt: c.CreatedAt, Payload: payload})
	}
	return items, nil
}

type TourPayload struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Status    string `json:"status"`
	SeatCap   int    `json:"seatCap"`
	SeatCount int    `json:"seatCount"`
}

type TourAdapter struct {
	DB *gorm.DB
}

func (a *TourAdapter) Kind() Kind { return KindTour }

func (a *TourAdapter) FetchPage(ctx context.Context, cur *Cursor, limit int) ([]FeedItem, error) {
	var tours []*model.Tour
	err := a.DB.WithContext(ctx).
		Scopes(cursorScope(cur, KindTour)).
		Order("created_at desc, id asc").
		Limit(limit).
		Find(&tours).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetch tours page")
	}

	items := make([]FeedItem, 0, len(tours))
	for _, t := range tours {
		var payload TourPayload
		if err := copier.Copy(&payload, t); err != nil {
			return nil, errors.Wrap(err, "project tour")
		}
		items = append(items, FeedItem{Id: t.Id, Kind: KindTour, CreatedAt: t.CreatedAt, Payload: payload})
	}
	return items, nil
}

type ChapterPayload struct {
	Title        string `json:"title"`
	Ordinal      int    `json:"ordinal"`
	ProjectID    string `json:"projectId"`
	ProjectTitle string `json:"projectTitle"`
}

type ChapterAdapter struct {
	DB *gorm.DB
}

func (a *ChapterAdapter) Kind() Kind { return KindChapter }

func (a *ChapterAdapter) FetchPage(ctx context.Context, cur *Cursor, limit int) ([]FeedItem, error) {
	var chapters []*model.Chapter
	err := a.DB.WithContext(ctx).
		Preload("Project").
		Scopes(cursorScope(cur, KindChapter)).
		Order("created_at desc, id asc").
		Limit(limit).
		Find(&chapters).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetch chapters page")
	}

	items := make([]FeedItem, 0, len(chapters))
	for _, ch := range chapters {
		var payload ChapterPayload
		if err := copier.Copy(&payload, ch); err != nil {
			return nil, errors.Wrap(err, "project chapter")
		}
		payload.ProjectTitle = ch.Project.Title
		items = append(items, FeedItem{Id: ch.Id, Kind: KindChapter, CreatedAt: ch.CreatedAt, Payload: payload})
	}
	return items, nil
}

// AllAdapters wires one adapter per entity store against the given DB.
func AllAdapters(db *gorm.DB) []SourceAdapter {
	return []SourceAdapter{
		&PostAdapter{DB: db},
		&ReviewAdapter{DB: db},
		&EventAdapter{DB: db},
		&CourseAdapter{DB: db},
		&TourAdapter{DB: db},
		&ChapterAdapter{DB: db},
	}
}
