package model

import (
	"time"

	"gorm.io/gorm"
)

type TourStatus = string

const (
	TourStatusOpen   TourStatus = "open"
	TourStatusClosed TourStatus = "closed"
)

/*

Tour is a guided trip with a fixed number of seats

Id: primary key
CreatedAt: time when entity is created, also the feed ordering key
Title, Description: rendering fields
Slug: unique URL handle, assigned at creation with bounded retry on collision
Status: open | closed, bookings only allowed while open
SeatCap: maximum number of participants
SeatCount: denormalized counter, bumped in the same transaction as the booking
           row insert; the conditional bump is what enforces the cap

*/

type Tour struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt
	Title       string
	Description string
	Slug        string `gorm:"uniqueIndex"`
	Status      TourStatus
	SeatCap     int
	SeatCount   int
	Bookings    []*TourBooking `json:"bookings" gorm:"foreignKey:TourID"`
}

// TourBooking is one claimed seat, at most one per user per tour.
type TourBooking struct {
	TourID    string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}
