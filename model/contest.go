package model

import (
	"time"

	"gorm.io/gorm"
)

type ContestStatus = string

const (
	ContestStatusDraft  ContestStatus = "draft"
	ContestStatusActive ContestStatus = "active"
	ContestStatusVoting ContestStatus = "voting"
	ContestStatusClosed ContestStatus = "closed"
)

/*

Contest is a community competition with one submission per user and one vote
per user per submission

Id: primary key
CreatedAt: time when entity is created
Title: contest display name
Status: draft -> active -> voting -> closed
        submissions are only accepted while active, votes only while voting
Submissions: entries, "has-many" relation

*/

type Contest struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt
	Title       string
	Status      ContestStatus
	Submissions []*ContestSubmission `json:"submissions" gorm:"foreignKey:ContestID"`
}

// ContestSubmission is one user's entry. The unique index over
// (contest_id, user_id) is the uniqueness constraint the claim engine races
// on. VoteCount is bumped in the same transaction as the vote row insert.
type ContestSubmission struct {
	Id        string `gorm:"primaryKey"`
	ContestID string `gorm:"uniqueIndex:idx_contest_submissions_contest_user"`
	UserID    string `gorm:"uniqueIndex:idx_contest_submissions_contest_user"`
	Title     string
	Url       string
	VoteCount int
	CreatedAt time.Time
}

// ContestVote is one user's vote on one submission, at most one per pair.
type ContestVote struct {
	SubmissionID string `gorm:"primaryKey"`
	UserID       string `gorm:"primaryKey"`
	CreatedAt    time.Time
}
