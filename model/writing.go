package model

import (
	"time"

	"gorm.io/gorm"
)

// WritingProject is a serialized book written chapter by chapter.
type WritingProject struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt
	AuthorID  string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Author    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Title     string
	Chapters  []*Chapter `json:"chapters" gorm:"foreignKey:ProjectID"`
}

/*

Chapter is one published installment of a writing project

Id: primary key
CreatedAt: time when entity is created, also the feed ordering key
ProjectID:
Project: owning book, "belongs-to" relation
Title: chapter title
Ordinal: 1-based position inside the book
Body: chapter text

*/

type Chapter struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt
	ProjectID string         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Project   WritingProject `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Title     string
	Ordinal   int
	Body      string
}
