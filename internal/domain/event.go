package domain

import "time"

type ElectionEventType string

const (
	EventElectionCreated  ElectionEventType = "election.created"
	EventElectionRenamed  ElectionEventType = "election.renamed"
	EventElectionLaunched ElectionEventType = "election.launched"
	EventElectionEnded    ElectionEventType = "election.ended"
	EventElectionDeleted  ElectionEventType = "election.deleted"
	EventQuestionAdded    ElectionEventType = "question.added"
	EventQuestionUpdated  ElectionEventType = "question.updated"
	EventQuestionDeleted  ElectionEventType = "question.deleted"
	EventOptionAdded      ElectionEventType = "option.added"
	EventOptionUpdated    ElectionEventType = "option.updated"
	EventOptionDeleted    ElectionEventType = "option.deleted"
)

// ElectionEvent describes a change that was committed to an election.
type ElectionEvent struct {
	Type       ElectionEventType `json:"type"`
	ElectionID uint              `json:"election_id"`
	OwnerID    uint              `json:"-"`
	Status     ElectionStatus    `json:"status"`
	QuestionID uint              `json:"question_id,omitempty"`
	OptionID   uint              `json:"option_id,omitempty"`
	At         time.Time         `json:"at"`
}
