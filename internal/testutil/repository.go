// Package testutil holds in-memory repositories used by service and handler
// tests in place of the gorm backed ones.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietanh2810/election-admin/internal/domain"
	"github.com/vietanh2810/election-admin/internal/repository"
)

type MemoryUserRepository struct {
	mu      sync.Mutex
	users   map[uint]domain.User
	byEmail map[string]uint
	nextID  uint
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[uint]domain.User),
		byEmail: make(map[string]uint),
		nextID:  1,
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return domain.User{}, repository.ErrUserEmailExists
	}

	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id uint) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return r.users[id], nil
}

// MemoryElectionRepository mirrors the cascade and ordering rules of the
// postgres repository.
type MemoryElectionRepository struct {
	mu        sync.Mutex
	elections map[uint]domain.Election
	questions map[uint]domain.Question
	options   map[uint]domain.Option

	// Like postgres serial columns, each table has its own sequence.
	nextElectionID uint
	nextQuestionID uint
	nextOptionID   uint
}

func NewMemoryElectionRepository() *MemoryElectionRepository {
	return &MemoryElectionRepository{
		elections: make(map[uint]domain.Election),
		questions: make(map[uint]domain.Question),
		options:   make(map[uint]domain.Option),
	}
}

func next(seq *uint) uint {
	*seq++
	return *seq
}

func (r *MemoryElectionRepository) Create(_ context.Context, election domain.Election) (domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	election.ID = next(&r.nextElectionID)
	election.Questions = nil
	election.CreatedAt = time.Now()
	election.UpdatedAt = election.CreatedAt
	r.elections[election.ID] = election
	return election, nil
}

func (r *MemoryElectionRepository) FindByOwnerID(_ context.Context, ownerID uint) ([]domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := []domain.Election{}
	for _, e := range r.elections {
		if e.OwnerID == ownerID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *MemoryElectionRepository) FindByID(_ context.Context, id uint) (domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	election, ok := r.elections[id]
	if !ok {
		return domain.Election{}, domain.ErrElectionNotFound
	}
	return election, nil
}

func (r *MemoryElectionRepository) FindWithBallot(_ context.Context, id uint) (domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	election, ok := r.elections[id]
	if !ok {
		return domain.Election{}, domain.ErrElectionNotFound
	}
	for _, q := range r.questionsOf(id) {
		q.Options = r.optionsOf(q.ID)
		election.Questions = append(election.Questions, q)
	}
	return election, nil
}

func (r *MemoryElectionRepository) UpdateName(_ context.Context, id uint, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	election, ok := r.elections[id]
	if !ok {
		return domain.ErrElectionNotFound
	}
	election.Name = name
	election.UpdatedAt = time.Now()
	r.elections[id] = election
	return nil
}

func (r *MemoryElectionRepository) UpdateStatus(_ context.Context, election domain.Election, from domain.ElectionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.elections[election.ID]
	if !ok {
		return domain.ErrElectionNotFound
	}
	if stored.Status != from {
		if from == domain.ElectionLaunched {
			return domain.ErrElectionNotLaunched
		}
		return domain.ErrElectionNotDraft
	}
	stored.Status = election.Status
	stored.LaunchedAt = election.LaunchedAt
	stored.EndedAt = election.EndedAt
	stored.UpdatedAt = time.Now()
	r.elections[election.ID] = stored
	return nil
}

func (r *MemoryElectionRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.elections[id]; !ok {
		return domain.ErrElectionNotFound
	}
	for _, q := range r.questionsOf(id) {
		r.deleteQuestion(q.ID)
	}
	delete(r.elections, id)
	return nil
}

func (r *MemoryElectionRepository) FindQuestions(_ context.Context, electionID uint) ([]domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.questionsOf(electionID), nil
}

func (r *MemoryElectionRepository) FindQuestion(_ context.Context, electionID, questionID uint) (domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	question, ok := r.questions[questionID]
	if !ok || question.ElectionID != electionID {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	question.Options = r.optionsOf(questionID)
	return question, nil
}

func (r *MemoryElectionRepository) CreateQuestion(_ context.Context, question domain.Question) (domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	last := 0
	for _, q := range r.questions {
		if q.ElectionID == question.ElectionID && q.Position > last {
			last = q.Position
		}
	}

	question.ID = next(&r.nextQuestionID)
	question.Position = last + 1
	question.Options = nil
	question.CreatedAt = time.Now()
	question.UpdatedAt = question.CreatedAt
	r.questions[question.ID] = question
	return question, nil
}

func (r *MemoryElectionRepository) UpdateQuestion(_ context.Context, question domain.Question) (domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.questions[question.ID]
	if !ok || stored.ElectionID != question.ElectionID {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	stored.Title = question.Title
	stored.Description = question.Description
	stored.UpdatedAt = time.Now()
	r.questions[stored.ID] = stored

	stored.Options = r.optionsOf(stored.ID)
	return stored, nil
}

func (r *MemoryElectionRepository) DeleteQuestion(_ context.Context, electionID, questionID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	question, ok := r.questions[questionID]
	if !ok || question.ElectionID != electionID {
		return domain.ErrQuestionNotFound
	}
	r.deleteQuestion(questionID)
	return nil
}

func (r *MemoryElectionRepository) FindOptions(_ context.Context, questionID uint) ([]domain.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.optionsOf(questionID), nil
}

func (r *MemoryElectionRepository) FindOption(_ context.Context, questionID, optionID uint) (domain.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	option, ok := r.options[optionID]
	if !ok || option.QuestionID != questionID {
		return domain.Option{}, domain.ErrOptionNotFound
	}
	return option, nil
}

func (r *MemoryElectionRepository) CreateOption(_ context.Context, option domain.Option) (domain.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	last := 0
	for _, o := range r.options {
		if o.QuestionID == option.QuestionID && o.Position > last {
			last = o.Position
		}
	}

	option.ID = next(&r.nextOptionID)
	option.Position = last + 1
	option.CreatedAt = time.Now()
	option.UpdatedAt = option.CreatedAt
	r.options[option.ID] = option
	return option, nil
}

func (r *MemoryElectionRepository) UpdateOption(_ context.Context, option domain.Option) (domain.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.options[option.ID]
	if !ok || stored.QuestionID != option.QuestionID {
		return domain.Option{}, domain.ErrOptionNotFound
	}
	stored.Value = option.Value
	stored.UpdatedAt = time.Now()
	r.options[stored.ID] = stored
	return stored, nil
}

func (r *MemoryElectionRepository) DeleteOption(_ context.Context, questionID, optionID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	option, ok := r.options[optionID]
	if !ok || option.QuestionID != questionID {
		return domain.ErrOptionNotFound
	}
	delete(r.options, optionID)
	return nil
}

// Counts reports how many questions and options are stored, across all
// elections.
func (r *MemoryElectionRepository) Counts() (questions, options int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.questions), len(r.options)
}

func (r *MemoryElectionRepository) questionsOf(electionID uint) []domain.Question {
	res := []domain.Question{}
	for _, q := range r.questions {
		if q.ElectionID == electionID {
			res = append(res, q)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Position != res[j].Position {
			return res[i].Position < res[j].Position
		}
		return res[i].ID < res[j].ID
	})
	return res
}

func (r *MemoryElectionRepository) optionsOf(questionID uint) []domain.Option {
	res := []domain.Option{}
	for _, o := range r.options {
		if o.QuestionID == questionID {
			res = append(res, o)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Position != res[j].Position {
			return res[i].Position < res[j].Position
		}
		return res[i].ID < res[j].ID
	})
	return res
}

func (r *MemoryElectionRepository) deleteQuestion(questionID uint) {
	for id, o := range r.options {
		if o.QuestionID == questionID {
			delete(r.options, id)
		}
	}
	delete(r.questions, questionID)
}

// RecordingPublisher keeps every published event in order.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []domain.ElectionEvent
}

func (p *RecordingPublisher) Publish(event domain.ElectionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
}

func (p *RecordingPublisher) Events() []domain.ElectionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]domain.ElectionEvent(nil), p.events...)
}

func (p *RecordingPublisher) Types() []domain.ElectionEventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]domain.ElectionEventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}
