package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Review is a rated opinion about some subject (a place, a book, a venue)

Id: primary key
CreatedAt: time when entity is created, also the feed ordering key
AuthorID:
Author: user who wrote the review, "belongs-to" relation
Subject: what is being reviewed, plain text
Rating: 1..5
Body: review text

*/

type Review struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt
	AuthorID  string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Author    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Subject   string
	Rating    int
	Body      string
}
