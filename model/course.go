package model

import (
	"time"

	"gorm.io/gorm"
)

type AssignmentStatus = string

const (
	AssignmentStatusOpen   AssignmentStatus = "open"
	AssignmentStatusClosed AssignmentStatus = "closed"
)

/*

Course is a paid series of lessons with assignments

Id: primary key
CreatedAt: time when entity is created, also the feed ordering key
Title: course display name
Slug: unique URL handle, assigned at creation with bounded retry on collision
AuthorID:
Author: user teaching the course, "belongs-to" relation
PriceCents: price in minor units, price math happens outside this core
Assignments: homework attached to the course, "has-many" relation

*/

type Course struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt
	Title       string
	Slug        string `gorm:"uniqueIndex"`
	AuthorID    string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Author      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	PriceCents  int64
	Assignments []*Assignment `json:"assignments" gorm:"foreignKey:CourseID"`
}

type Assignment struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	CourseID  string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Title     string
	DueAt     time.Time
	Status    AssignmentStatus
}

// AssignmentSubmission is a student's once-only submission. The unique index
// over (assignment_id, user_id) is the uniqueness constraint the claim engine
// races on; the row keeps its own id so graders can reference it directly.
type AssignmentSubmission struct {
	Id           string `gorm:"primaryKey"`
	AssignmentID string `gorm:"uniqueIndex:idx_assignment_submissions_assignment_user"`
	UserID       string `gorm:"uniqueIndex:idx_assignment_submissions_assignment_user"`
	Body         string
	CreatedAt    time.Time
}
