package model

import (
	"time"

	"gorm.io/gorm"
)

type EventStatus = string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusFinished  EventStatus = "finished"
)

/*

Event is a scheduled community gathering with claimable roles

Id: primary key
CreatedAt: time when entity is created, also the feed ordering key
Title, Description, StartsAt: rendering fields
Status: scheduled | cancelled | finished, role claims only allowed on scheduled

ModeratorID: single moderator slot, claimed atomically, nil means free
LecturerCap: maximum number of lecturers
LecturerCount: denormalized counter, bumped in the same transaction as the
               lecturer row insert; the conditional bump is what enforces the cap
Lecturers: claimed lecturer slots, "has-many" relation

*/

type Event struct {
	Id            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	DeletedAt     gorm.DeletedAt
	Title         string
	Description   string
	StartsAt      time.Time
	Status        EventStatus
	ModeratorID   *string
	LecturerCap   int
	LecturerCount int
	Lecturers     []*EventLecturer `json:"lecturers" gorm:"foreignKey:EventID"`
}

// EventLecturer is one claimed lecturer slot. The composite primary key is the
// uniqueness constraint the claim engine races on.
type EventLecturer struct {
	EventID   string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	Topic     string
	CreatedAt time.Time
}
