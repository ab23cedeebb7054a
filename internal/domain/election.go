package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxElectionNameLength  = 100
	MaxQuestionTitleLength = 200
	MaxDescriptionLength   = 1000
	MaxOptionValueLength   = 200
)

type ElectionStatus string

const (
	ElectionDraft    ElectionStatus = "draft"
	ElectionLaunched ElectionStatus = "launched"
	ElectionEnded    ElectionStatus = "ended"
)

type Election struct {
	ID         uint           `json:"id"`
	Name       string         `json:"name"`
	OwnerID    uint           `json:"owner_id"`
	Status     ElectionStatus `json:"status"`
	Questions  []Question     `json:"questions,omitempty"`
	LaunchedAt *time.Time     `json:"launched_at,omitempty"`
	EndedAt    *time.Time     `json:"ended_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (e Election) IsOwnedBy(userID uint) bool {
	return e.OwnerID == userID
}

func (e Election) IsDraft() bool    { return e.Status == ElectionDraft }
func (e Election) IsLaunched() bool { return e.Status == ElectionLaunched }
func (e Election) IsEnded() bool    { return e.Status == ElectionEnded }

// Launch moves a draft election to launched. Any other state is rejected,
// including an election that is already launched.
func (e *Election) Launch(at time.Time) error {
	if e.Status != ElectionDraft {
		return ErrElectionNotDraft
	}
	e.Status = ElectionLaunched
	e.LaunchedAt = &at
	return nil
}

// End moves a launched election to ended.
func (e *Election) End(at time.Time) error {
	if e.Status != ElectionLaunched {
		return ErrElectionNotLaunched
	}
	e.Status = ElectionEnded
	e.EndedAt = &at
	return nil
}

// CheckBallotEditable reports whether questions and options may be changed.
func (e Election) CheckBallotEditable() error {
	if e.Status != ElectionDraft {
		return ErrBallotLocked
	}
	return nil
}

// BallotIssues lists what would make the ballot unusable for voters. It is
// advisory: launching is never blocked by it.
func (e Election) BallotIssues() []string {
	var issues []string
	if len(e.Questions) == 0 {
		issues = append(issues, "the ballot has no questions")
	}
	for _, q := range e.Questions {
		if len(q.Options) < 2 {
			issues = append(issues, `question "`+q.Title+`" needs at least two options`)
		}
	}
	return issues
}

// NormalizeElectionName trims the name and checks its length.
func NormalizeElectionName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrElectionNameRequired
	}
	if utf8.RuneCountInString(name) > MaxElectionNameLength {
		return "", ErrElectionNameTooLong
	}
	return name, nil
}
