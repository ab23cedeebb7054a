package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vietanh2810/election-admin/internal/domain"
	"github.com/vietanh2810/election-admin/internal/metrics"
)

var (
	ErrElectionNotFound = domain.ErrElectionNotFound
	ErrQuestionNotFound = domain.ErrQuestionNotFound
	ErrOptionNotFound   = domain.ErrOptionNotFound
	ErrNotElectionOwner = domain.ErrNotElectionOwner
)

type ElectionRepository interface {
	Create(ctx context.Context, election domain.Election) (domain.Election, error)
	FindByOwnerID(ctx context.Context, ownerID uint) ([]domain.Election, error)
	FindByID(ctx context.Context, id uint) (domain.Election, error)
	FindWithBallot(ctx context.Context, id uint) (domain.Election, error)
	UpdateName(ctx context.Context, id uint, name string) error
	UpdateStatus(ctx context.Context, election domain.Election, from domain.ElectionStatus) error
	Delete(ctx context.Context, id uint) error

	FindQuestions(ctx context.Context, electionID uint) ([]domain.Question, error)
	FindQuestion(ctx context.Context, electionID, questionID uint) (domain.Question, error)
	CreateQuestion(ctx context.Context, question domain.Question) (domain.Question, error)
	UpdateQuestion(ctx context.Context, question domain.Question) (domain.Question, error)
	DeleteQuestion(ctx context.Context, electionID, questionID uint) error

	FindOptions(ctx context.Context, questionID uint) ([]domain.Option, error)
	FindOption(ctx context.Context, questionID, optionID uint) (domain.Option, error)
	CreateOption(ctx context.Context, option domain.Option) (domain.Option, error)
	UpdateOption(ctx context.Context, option domain.Option) (domain.Option, error)
	DeleteOption(ctx context.Context, questionID, optionID uint) error
}

// EventPublisher receives every committed election change.
type EventPublisher interface {
	Publish(event domain.ElectionEvent)
}

type ElectionService struct {
	repo   ElectionRepository
	events EventPublisher
	now    func() time.Time
}

// NewElectionService returns a service backed by repo. events may be nil.
func NewElectionService(repo ElectionRepository, events EventPublisher) *ElectionService {
	return &ElectionService{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

func (s *ElectionService) CreateElection(ctx context.Context, user domain.User, name string) (domain.Election, error) {
	name, err := domain.NormalizeElectionName(name)
	if err != nil {
		return domain.Election{}, err
	}

	created, err := s.repo.Create(ctx, domain.Election{
		Name:    name,
		OwnerID: user.ID,
		Status:  domain.ElectionDraft,
	})
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.publish(domain.EventElectionCreated, created, 0, 0)
	return created, nil
}

func (s *ElectionService) ListElections(ctx context.Context, user domain.User) ([]domain.Election, error) {
	elections, err := s.repo.FindByOwnerID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByOwnerID -> %w", err)
	}

	return elections, nil
}

// GetElection returns the election with its ordered questions and options.
func (s *ElectionService) GetElection(ctx context.Context, user domain.User, id uint) (domain.Election, error) {
	election, err := s.repo.FindWithBallot(ctx, id)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.FindWithBallot -> %w", err)
	}
	if !election.IsOwnedBy(user.ID) {
		return domain.Election{}, ErrNotElectionOwner
	}

	return election, nil
}

func (s *ElectionService) RenameElection(ctx context.Context, user domain.User, id uint, name string) (domain.Election, error) {
	election, err := s.ownedElection(ctx, user, id)
	if err != nil {
		return domain.Election{}, err
	}

	name, err = domain.NormalizeElectionName(name)
	if err != nil {
		return domain.Election{}, err
	}

	if err = s.repo.UpdateName(ctx, id, name); err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.UpdateName -> %w", err)
	}
	election.Name = name

	s.publish(domain.EventElectionRenamed, election, 0, 0)
	return election, nil
}

// DeleteElection removes the election with all its questions and options,
// whatever its status.
func (s *ElectionService) DeleteElection(ctx context.Context, user domain.User, id uint) error {
	election, err := s.ownedElection(ctx, user, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.publish(domain.EventElectionDeleted, election, 0, 0)
	return nil
}

func (s *ElectionService) LaunchElection(ctx context.Context, user domain.User, id uint) (domain.Election, error) {
	election, err := s.ownedElection(ctx, user, id)
	if err != nil {
		return domain.Election{}, err
	}

	from := election.Status
	if err = election.Launch(s.now()); err != nil {
		return domain.Election{}, err
	}
	if err = s.repo.UpdateStatus(ctx, election, from); err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	s.publish(domain.EventElectionLaunched, election, 0, 0)
	return election, nil
}

func (s *ElectionService) EndElection(ctx context.Context, user domain.User, id uint) (domain.Election, error) {
	election, err := s.ownedElection(ctx, user, id)
	if err != nil {
		return domain.Election{}, err
	}

	from := election.Status
	if err = election.End(s.now()); err != nil {
		return domain.Election{}, err
	}
	if err = s.repo.UpdateStatus(ctx, election, from); err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	s.publish(domain.EventElectionEnded, election, 0, 0)
	return election, nil
}

// BallotReadiness lists the problems voters would hit on the election's
// ballot. It never blocks a launch.
func (s *ElectionService) BallotReadiness(election domain.Election) []string {
	return election.BallotIssues()
}

func (s *ElectionService) ListQuestions(ctx context.Context, user domain.User, electionID uint) ([]domain.Question, error) {
	if _, err := s.ownedElection(ctx, user, electionID); err != nil {
		return nil, err
	}

	questions, err := s.repo.FindQuestions(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindQuestions -> %w", err)
	}

	return questions, nil
}

func (s *ElectionService) GetQuestion(ctx context.Context, user domain.User, electionID, questionID uint) (domain.Question, error) {
	if _, err := s.ownedElection(ctx, user, electionID); err != nil {
		return domain.Question{}, err
	}

	question, err := s.repo.FindQuestion(ctx, electionID, questionID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("s.repo.FindQuestion -> %w", err)
	}

	return question, nil
}

func (s *ElectionService) AddQuestion(ctx context.Context, user domain.User, electionID uint, title, description string) (domain.Question, error) {
	election, err := s.ownedElection(ctx, user, electionID)
	if err != nil {
		return domain.Question{}, err
	}
	if err = election.CheckBallotEditable(); err != nil {
		return domain.Question{}, err
	}

	title, description, err = domain.NormalizeQuestion(title, description)
	if err != nil {
		return domain.Question{}, err
	}

	created, err := s.repo.CreateQuestion(ctx, domain.Question{
		ElectionID:  electionID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return domain.Question{}, fmt.Errorf("s.repo.CreateQuestion -> %w", err)
	}

	s.publish(domain.EventQuestionAdded, election, created.ID, 0)
	return created, nil
}

func (s *ElectionService) EditQuestion(ctx context.Context, user domain.User, electionID, questionID uint, title, description string) (domain.Question, error) {
	election, question, err := s.ownedQuestion(ctx, user, electionID, questionID)
	if err != nil {
		return domain.Question{}, err
	}
	if err = election.CheckBallotEditable(); err != nil {
		return domain.Question{}, err
	}

	question.Title, question.Description, err = domain.NormalizeQuestion(title, description)
	if err != nil {
		return domain.Question{}, err
	}

	updated, err := s.repo.UpdateQuestion(ctx, question)
	if err != nil {
		return domain.Question{}, fmt.Errorf("s.repo.UpdateQuestion -> %w", err)
	}

	s.publish(domain.EventQuestionUpdated, election, questionID, 0)
	return updated, nil
}

// DeleteQuestion removes the question and its options.
func (s *ElectionService) DeleteQuestion(ctx context.Context, user domain.User, electionID, questionID uint) error {
	election, _, err := s.ownedQuestion(ctx, user, electionID, questionID)
	if err != nil {
		return err
	}
	if err = election.CheckBallotEditable(); err != nil {
		return err
	}

	if err = s.repo.DeleteQuestion(ctx, electionID, questionID); err != nil {
		return fmt.Errorf("s.repo.DeleteQuestion -> %w", err)
	}

	s.publish(domain.EventQuestionDeleted, election, questionID, 0)
	return nil
}

func (s *ElectionService) ListOptions(ctx context.Context, user domain.User, electionID, questionID uint) ([]domain.Option, error) {
	if _, _, err := s.ownedQuestion(ctx, user, electionID, questionID); err != nil {
		return nil, err
	}

	options, err := s.repo.FindOptions(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindOptions -> %w", err)
	}

	return options, nil
}

func (s *ElectionService) GetOption(ctx context.Context, user domain.User, electionID, questionID, optionID uint) (domain.Option, error) {
	if _, _, err := s.ownedQuestion(ctx, user, electionID, questionID); err != nil {
		return domain.Option{}, err
	}

	option, err := s.repo.FindOption(ctx, questionID, optionID)
	if err != nil {
		return domain.Option{}, fmt.Errorf("s.repo.FindOption -> %w", err)
	}

	return option, nil
}

// AddOption appends an option to the question. Values do not have to be
// unique within the question.
func (s *ElectionService) AddOption(ctx context.Context, user domain.User, electionID, questionID uint, value string) (domain.Option, error) {
	election, _, err := s.ownedQuestion(ctx, user, electionID, questionID)
	if err != nil {
		return domain.Option{}, err
	}
	if err = election.CheckBallotEditable(); err != nil {
		return domain.Option{}, err
	}

	value, err = domain.NormalizeOptionValue(value)
	if err != nil {
		return domain.Option{}, err
	}

	created, err := s.repo.CreateOption(ctx, domain.Option{
		QuestionID: questionID,
		Value:      value,
	})
	if err != nil {
		return domain.Option{}, fmt.Errorf("s.repo.CreateOption -> %w", err)
	}

	s.publish(domain.EventOptionAdded, election, questionID, created.ID)
	return created, nil
}

func (s *ElectionService) EditOption(ctx context.Context, user domain.User, electionID, questionID, optionID uint, value string) (domain.Option, error) {
	election, option, err := s.ownedOption(ctx, user, electionID, questionID, optionID)
	if err != nil {
		return domain.Option{}, err
	}
	if err = election.CheckBallotEditable(); err != nil {
		return domain.Option{}, err
	}

	option.Value, err = domain.NormalizeOptionValue(value)
	if err != nil {
		return domain.Option{}, err
	}

	updated, err := s.repo.UpdateOption(ctx, option)
	if err != nil {
		return domain.Option{}, fmt.Errorf("s.repo.UpdateOption -> %w", err)
	}

	s.publish(domain.EventOptionUpdated, election, questionID, optionID)
	return updated, nil
}

func (s *ElectionService) DeleteOption(ctx context.Context, user domain.User, electionID, questionID, optionID uint) error {
	election, _, err := s.ownedOption(ctx, user, electionID, questionID, optionID)
	if err != nil {
		return err
	}
	if err = election.CheckBallotEditable(); err != nil {
		return err
	}

	if err = s.repo.DeleteOption(ctx, questionID, optionID); err != nil {
		return fmt.Errorf("s.repo.DeleteOption -> %w", err)
	}

	s.publish(domain.EventOptionDeleted, election, questionID, optionID)
	return nil
}

// ownedElection loads the election without its ballot and checks that user
// owns it.
func (s *ElectionService) ownedElection(ctx context.Context, user domain.User, id uint) (domain.Election, error) {
	election, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !election.IsOwnedBy(user.ID) {
		return domain.Election{}, ErrNotElectionOwner
	}

	return election, nil
}

func (s *ElectionService) ownedQuestion(ctx context.Context, user domain.User, electionID, questionID uint) (domain.Election, domain.Question, error) {
	election, err := s.ownedElection(ctx, user, electionID)
	if err != nil {
		return domain.Election{}, domain.Question{}, err
	}

	question, err := s.repo.FindQuestion(ctx, electionID, questionID)
	if err != nil {
		return domain.Election{}, domain.Question{}, fmt.Errorf("s.repo.FindQuestion -> %w", err)
	}

	return election, question, nil
}

func (s *ElectionService) ownedOption(ctx context.Context, user domain.User, electionID, questionID, optionID uint) (domain.Election, domain.Option, error) {
	election, _, err := s.ownedQuestion(ctx, user, electionID, questionID)
	if err != nil {
		return domain.Election{}, domain.Option{}, err
	}

	option, err := s.repo.FindOption(ctx, questionID, optionID)
	if err != nil {
		return domain.Election{}, domain.Option{}, fmt.Errorf("s.repo.FindOption -> %w", err)
	}

	return election, option, nil
}

func (s *ElectionService) publish(eventType domain.ElectionEventType, election domain.Election, questionID, optionID uint) {
	metrics.IncElectionEvent(string(eventType))
	if s.events == nil {
		return
	}

	s.events.Publish(domain.ElectionEvent{
		Type:       eventType,
		ElectionID: election.ID,
		OwnerID:    election.OwnerID,
		Status:     election.Status,
		QuestionID: questionID,
		OptionID:   optionID,
		At:         s.now(),
	})
}
