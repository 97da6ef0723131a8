package claim

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openhive/hivemux/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Claim constructors for every race-sensitive endpoint. Each pairs the
// conditional write with a diagnoser that classifies a rejection for the
// caller. The diagnoser reads the same predicates the claim checked, just
// non-atomically and after the fact; a store failure during that read is
// surfaced as-is, never converted into a classification.

type ContestEntryInput struct {
	Title string `json:"title"`
	Url   string `json:"url"`
}

// ContestEntry claims the one-submission-per-user slot on an active contest.
func ContestEntry(contestId, userId string, input ContestEntryInput) Claim {
	return Claim{
		Slot: Slot{
			Table:   "contest_submissions",
			Columns: []string{"id", "contest_id", "user_id", "title", "url", "vote_count", "created_at"},
			Values:  []interface{}{uuid.New().String(), contestId, userId, input.Title, input.Url, 0, time.Now()},
		},
		Guard: Guard{
			Query: "SELECT 1 FROM contests WHERE id = ? AND status = ? AND deleted_at IS NULL",
			Args:  []interface{}{contestId, model.ContestStatusActive},
		},
		Diagnose: func(tx *gorm.DB) (*Error, error) {
			var contest model.Contest
			found, err := loadAggregate(tx, &contest, contestId)
			if err != nil {
				return nil, err
			}
			if !found {
				return NewError(OutcomeNotFound, "contest not found"), nil
			}
			if contest.Status != model.ContestStatusActive {
				return NewError(OutcomePreconditionFailed, fmt.Sprintf("contest is %s, submissions are not accepted", contest.Status)), nil
			}
			taken, err := slotTaken(tx, &model.ContestSubmission{}, "contest_id = ? AND user_id = ?", contestId, userId)
			if err != nil {
				return nil, err
			}
			if taken {
				return NewError(OutcomeAlreadyClaimed, "you already submitted an entry to this contest"), nil
			}
			return nil, nil
		},
	}
}

// ContestVote claims the one-vote-per-user slot on a submission while the
// contest is in its voting phase, and bumps the submission's vote counter in
// the same transaction.
func ContestVote(contestId, submissionId, userId string) Claim {
	return Claim{
		Slot: Slot{
			Table:   "contest_votes",
			Columns: []string{"submission_id", "user_id", "created_at"},
			Values:  []interface{}{submissionId, userId, time.Now()},
		},
		Guard: Guard{
			Query: "SELECT 1 FROM contests JOIN contest_submissions ON contest_submissions.contest_id = contests.id " +
				"WHERE contests.id = ? AND contests.status = ? AND contests.deleted_at IS NULL AND contest_submissions.id = ?",
			Args: []interface{}{contestId, model.ContestStatusVoting, submissionId},
		},
		Effect: &Effect{
			Table: "contest_submissions",
			Set:   "vote_count = vote_count + 1",
			Where: "id = ?",
			Args:  []interface{}{submissionId},
		},
		Diagnose: func(tx *gorm.DB) (*Error, error) {
			var contest model.Contest
			found, err := loadAggregate(tx, &contest, contestId)
			if err != nil {
				return nil, err
			}
			if !found {
				return NewError(OutcomeNotFound, "contest not found"), nil
			}
			exists, err := slotTaken(tx, &model.ContestSubmission{}, "id = ? AND contest_id = ?", submissionId, contestId)
			if err != nil {
				return nil, err
			}
			if !exists {
				return NewError(OutcomeNotFound, "submission not found in this contest"), nil
			}
			if contest.Status != model.ContestStatusVoting {
				return NewError(OutcomePreconditionFailed, fmt.Sprintf("contest is %s, voting is not open", contest.Status)), nil
			}
			taken, err := slotTaken(tx, &model.ContestVote{}, "submission_id = ? AND user_id = ?", submissionId, userId)
			if err != nil {
				return nil, err
			}
			if taken {
				return NewError(OutcomeAlreadyClaimed, "you already voted for this submission"), nil
			}
			return nil, nil
		},
	}
}

// EventModerator claims the single moderator slot on a scheduled event.
func EventModerator(eventId, userId string) Update {
	return Update{
		Table: "events",
		Set:   "moderator_id = ?",
		Where: "id = ? AND status = ? AND moderator_id IS NULL AND deleted_at IS NULL",
		Args:  []interface{}{userId, eventId, model.EventStatusScheduled},
		Diagnose: func(tx *gorm.DB) (*Error, error) {
			var event model.Event
			found, err := loadAggregate(tx, &event, eventId)
			if err != nil {
				return nil, err
			}
			if !found {
				return NewError(OutcomeNotFound, "event not found"), nil
			}
			if event.Status != model.EventStatusScheduled {
				return NewError(OutcomePreconditionFailed, fmt.Sprintf("event is %s, roles can not be claimed", event.Status)), nil
			}
			if event.ModeratorID != nil && *event.ModeratorID == userId {
				return NewError(OutcomeAlreadyClaimed, "you already moderate this event"), nil
			}
			if event.ModeratorID != nil {
				return NewError(OutcomeAlreadyClaimed, "the moderator role is already taken"), nil
			}
			return nil, nil
		},
	}
}

// EventLecturer claims one of the capped lecturer slots on a scheduled event,
// at most one per user.
func EventLecturer(eventId, userId, topic string) Claim {
	return Claim{
		Slot: Slot{
			Table:   "event_lecturers",
			Columns: []string{"event_id", "user_id", "topic", "created_at"},
			Values:  []interface{}{eventId, userId, topic, time.Now()},
		},
		Capacity: &Capacity{
			Table:   "events",
			Counter: "lecturer_count",
			Cap:     "lecturer_cap",
			Where:   "id = ? AND status = ? AND deleted_at IS NULL",
			Args:    []interface{}{eventId, model.EventStatusScheduled},
		},
		Diagnose: func(tx *gorm.DB) (*Error, error) {
			var event model.Event
			found, err := loadAggregate(tx, &event, eventId)
			if err != nil {
				return nil, err
			}
			if !found {
				return NewError(OutcomeNotFound, "event not found"), nil
			}
			if event.Status != model.EventStatusScheduled {
				return NewError(OutcomePreconditionFailed, fmt.Sprintf("event is %s, roles can not be claimed", event.Status)), nil
			}
			taken, err := slotTaken(tx, &model.EventLecturer{}, "event_id = ? AND user_id = ?", eventId, userId)
			if err != nil {
				return nil, err
			}
			if taken {
				return NewError(OutcomeAlreadyClaimed, "you are already registered as a lecturer"), nil
			}
			if event.LecturerCount >= event.LecturerCap {
				return NewError(OutcomeCapacityExhausted, fmt.Sprintf("all %d lecturer slots are taken", event.LecturerCap)), nil
			}
			return nil, nil
		},
	}
}

// AssignmentEntry claims the once-only submission slot on an open assignment
// before its due date.
func AssignmentEntry(assignmentId, userId, body string) Claim {
	return Claim{
		Slot: Slot{
			Table:   "assignment_submissions",
			Columns: []string{"id", "assignment_id", "user_id", "body", "created_at"},
			Values:  []interface{}{uuid.New().String(), assignmentId, userId, body, time.Now()},
		},
		Guard: Guard{
			Query: "SELECT 1 FROM assignments WHERE id = ? AND status = ? AND due_at > ?",
			Args:  []interface{}{assignmentId, model.AssignmentStatusOpen, time.Now()},
		},
		Diagnose: func(tx *gorm.DB) (*Error, error) {
			var assignment model.Assignment
			found, err := loadAggregate(tx, &assignment, assignmentId)
			if err != nil {
				return nil, err
			}
			if !found {
				return NewError(OutcomeNotFound, "assignment not found"), nil
			}
			if assignment.Status != model.AssignmentStatusOpen || !assignment.DueAt.After(time.Now()) {
				return NewError(OutcomePreconditionFailed, "assignment is closed for submissions"), nil
			}
			taken, err := slotTaken(tx, &model.AssignmentSubmission{}, "assignment_id = ? AND user_id = ?", assignmentId, userId)
			if err != nil {
				return nil, err
			}
			if taken {
				return NewError(OutcomeAlreadyClaimed, "you already submitted this assignment"), nil
			}
			return nil, nil
		},
	}
}

// TourSeat claims one of the capped seats on an open tour, at most one per
// user.
func TourSeat(tourId, userId string) Claim {
	return Claim{
		Slot: Slot{
			Table:   "tour_bookings",
			Columns: []string{"tour_id", "user_id", "created_at"},
			Values:  []interface{}{tourId, userId, time.Now()},
		},
		Capacity: &Capacity{
			Table:   "tours",
			Counter: "seat_count",
			Cap:     "seat_cap",
			Where:   "id = ? AND status = ? AND deleted_at IS NULL",
			Args:    []interface{}{tourId, model.TourStatusOpen},
		},
		Diagnose: func(tx *gorm.DB) (*Error, error) {
			var tour model.Tour
			found, err := loadAggregate(tx, &tour, tourId)
			if err != nil {
				return nil, err
			}
			if !found {
				return NewError(OutcomeNotFound, "tour not found"), nil
			}
			if tour.Status != model.TourStatusOpen {
				return NewError(OutcomePreconditionFailed, fmt.Sprintf("tour is %s, bookings are not accepted", tour.Status)), nil
			}
			taken, err := slotTaken(tx, &model.TourBooking{}, "tour_id = ? AND user_id = ?", tourId, userId)
			if err != nil {
				return nil, err
			}
			if taken {
				return NewError(OutcomeAlreadyClaimed, "you already booked a seat on this tour"), nil
			}
			if tour.SeatCount >= tour.SeatCap {
				return NewError(OutcomeCapacityExhausted, fmt.Sprintf("all %d seats are taken", tour.SeatCap)), nil
			}
			return nil, nil
		},
	}
}

// loadAggregate reads one aggregate row for diagnosis. found is false only on
// a definitive missing row; any other store failure comes back as err.
func loadAggregate(tx *gorm.DB, dest interface{}, id string) (found bool, err error) {
	err = tx.Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func slotTaken(tx *gorm.DB, slotModel interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(slotModel).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
