package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*

Post is a short community write-up shown on the home feed

Id: primary key
CreatedAt: time when entity is created, also the feed ordering key
DeletedAt: time when entity is deleted
AuthorID:
Author: user who wrote the post, "belongs-to" relation

Title: post's title in plain text
Content: post's content in plain text
LikeCount: denormalized like counter for rendering
Tags: free-form JSON list of topic tags, opaque to this core

*/

type Post struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt
	AuthorID  string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Author    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Title     string
	Content   string
	LikeCount int
	Tags      datatypes.JSON
}
