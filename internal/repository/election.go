package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vietanh2810/election-admin/internal/domain"
	"github.com/vietanh2810/election-admin/internal/repository/dao"
)

type ElectionDAO interface {
	Insert(ctx context.Context, election dao.Election) (dao.Election, error)
	FindByOwnerID(ctx context.Context, ownerID uint) ([]dao.Election, error)
	FindByID(ctx context.Context, id uint) (dao.Election, error)
	FindWithBallot(ctx context.Context, id uint) (dao.Election, error)
	UpdateName(ctx context.Context, id uint, name string) error
	UpdateStatus(ctx context.Context, election dao.Election, fromStatus string) error
	Delete(ctx context.Context, id uint) error

	FindQuestions(ctx context.Context, electionID uint) ([]dao.Question, error)
	FindQuestion(ctx context.Context, electionID, questionID uint) (dao.Question, error)
	InsertQuestion(ctx context.Context, question dao.Question) (dao.Question, error)
	UpdateQuestion(ctx context.Context, question dao.Question) (dao.Question, error)
	DeleteQuestion(ctx context.Context, electionID, questionID uint) error

	FindOptions(ctx context.Context, questionID uint) ([]dao.Option, error)
	FindOption(ctx context.Context, questionID, optionID uint) (dao.Option, error)
	InsertOption(ctx context.Context, option dao.Option) (dao.Option, error)
	UpdateOption(ctx context.Context, option dao.Option) (dao.Option, error)
	DeleteOption(ctx context.Context, questionID, optionID uint) error
}

type ElectionRepository struct {
	dao ElectionDAO
}

func NewElectionRepository(dao ElectionDAO) *ElectionRepository {
	return &ElectionRepository{
		dao: dao,
	}
}

// toDomainErr turns dao sentinels into the domain errors the service and
// handlers classify on.
func toDomainErr(err error, from domain.ElectionStatus) error {
	switch {
	case errors.Is(err, dao.ErrElectionNotFound):
		return domain.ErrElectionNotFound
	case errors.Is(err, dao.ErrQuestionNotFound):
		return domain.ErrQuestionNotFound
	case errors.Is(err, dao.ErrOptionNotFound):
		return domain.ErrOptionNotFound
	case errors.Is(err, dao.ErrStatusChanged):
		if from == domain.ElectionLaunched {
			return domain.ErrElectionNotLaunched
		}
		return domain.ErrElectionNotDraft
	}
	return err
}

func (r *ElectionRepository) Create(ctx context.Context, election domain.Election) (domain.Election, error) {
	created, err := r.dao.Insert(ctx, dao.Election{
		Name:    election.Name,
		OwnerID: election.OwnerID,
		Status:  string(election.Status),
	})
	if err != nil {
		return domain.Election{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return electionDaoToDomain(created), nil
}

func (r *ElectionRepository) FindByOwnerID(ctx context.Context, ownerID uint) ([]domain.Election, error) {
	found, err := r.dao.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOwnerID -> %w", err)
	}

	elections := make([]domain.Election, 0, len(found))
	for _, e := range found {
		elections = append(elections, electionDaoToDomain(e))
	}
	return elections, nil
}

func (r *ElectionRepository) FindByID(ctx context.Context, id uint) (domain.Election, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Election{}, fmt.Errorf("r.dao.FindByID -> %w", toDomainErr(err, ""))
	}

	return electionDaoToDomain(found), nil
}

func (r *ElectionRepository) FindWithBallot(ctx context.Context, id uint) (domain.Election, error) {
	found, err := r.dao.FindWithBallot(ctx, id)
	if err != nil {
		return domain.Election{}, fmt.Errorf("r.dao.FindWithBallot -> %w", toDomainErr(err, ""))
	}

	return electionDaoToDomain(found), nil
}

func (r *ElectionRepository) UpdateName(ctx context.Context, id uint, name string) error {
	if err := r.dao.UpdateName(ctx, id, name); err != nil {
		return fmt.Errorf("r.dao.UpdateName -> %w", toDomainErr(err, ""))
	}
	return nil
}

// UpdateStatus stores election's new status, failing with an invalid state
// error when the stored status is no longer from.
func (r *ElectionRepository) UpdateStatus(ctx context.Context, election domain.Election, from domain.ElectionStatus) error {
	err := r.dao.UpdateStatus(ctx, dao.Election{
		ID:         election.ID,
		Status:     string(election.Status),
		LaunchedAt: election.LaunchedAt,
		EndedAt:    election.EndedAt,
	}, string(from))
	if err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", toDomainErr(err, from))
	}
	return nil
}

func (r *ElectionRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", toDomainErr(err, ""))
	}
	return nil
}

func (r *ElectionRepository) FindQuestions(ctx context.Context, electionID uint) ([]domain.Question, error) {
	found, err := r.dao.FindQuestions(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindQuestions -> %w", err)
	}

	questions := make([]domain.Question, 0, len(found))
	for _, q := range found {
		questions = append(questions, questionDaoToDomain(q))
	}
	return questions, nil
}

func (r *ElectionRepository) FindQuestion(ctx context.Context, electionID, questionID uint) (domain.Question, error) {
	found, err := r.dao.FindQuestion(ctx, electionID, questionID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("r.dao.FindQuestion -> %w", toDomainErr(err, ""))
	}

	return questionDaoToDomain(found), nil
}

func (r *ElectionRepository) CreateQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	created, err := r.dao.InsertQuestion(ctx, dao.Question{
		ElectionID:  question.ElectionID,
		Title:       question.Title,
		Description: question.Description,
	})
	if err != nil {
		return domain.Question{}, fmt.Errorf("r.dao.InsertQuestion -> %w", err)
	}

	return questionDaoToDomain(created), nil
}

func (r *ElectionRepository) UpdateQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	updated, err := r.dao.UpdateQuestion(ctx, dao.Question{
		ID:          question.ID,
		ElectionID:  question.ElectionID,
		Title:       question.Title,
		Description: question.Description,
	})
	if err != nil {
		return domain.Question{}, fmt.Errorf("r.dao.UpdateQuestion -> %w", toDomainErr(err, ""))
	}

	return questionDaoToDomain(updated), nil
}

func (r *ElectionRepository) DeleteQuestion(ctx context.Context, electionID, questionID uint) error {
	if err := r.dao.DeleteQuestion(ctx, electionID, questionID); err != nil {
		return fmt.Errorf("r.dao.DeleteQuestion -> %w", toDomainErr(err, ""))
	}
	return nil
}

func (r *ElectionRepository) FindOptions(ctx context.Context, questionID uint) ([]domain.Option, error) {
	found, err := r.dao.FindOptions(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindOptions -> %w", err)
	}

	options := make([]domain.Option, 0, len(found))
	for _, o := range found {
		options = append(options, optionDaoToDomain(o))
	}
	return options, nil
}

func (r *ElectionRepository) FindOption(ctx context.Context, questionID, optionID uint) (domain.Option, error) {
	found, err := r.dao.FindOption(ctx, questionID, optionID)
	if err != nil {
		return domain.Option{}, fmt.Errorf("r.dao.FindOption -> %w", toDomainErr(err, ""))
	}

	return optionDaoToDomain(found), nil
}

func (r *ElectionRepository) CreateOption(ctx context.Context, option domain.Option) (domain.Option, error) {
	created, err := r.dao.InsertOption(ctx, dao.Option{
		QuestionID: option.QuestionID,
		Value:      option.Value,
	})
	if err != nil {
		return domain.Option{}, fmt.Errorf("r.dao.InsertOption -> %w", err)
	}

	return optionDaoToDomain(created), nil
}

func (r *ElectionRepository) UpdateOption(ctx context.Context, option domain.Option) (domain.Option, error) {
	updated, err := r.dao.UpdateOption(ctx, dao.Option{
		ID:         option.ID,
		QuestionID: option.QuestionID,
		Value:      option.Value,
	})
	if err != nil {
		return domain.Option{}, fmt.Errorf("r.dao.UpdateOption -> %w", toDomainErr(err, ""))
	}

	return optionDaoToDomain(updated), nil
}

func (r *ElectionRepository) DeleteOption(ctx context.Context, questionID, optionID uint) error {
	if err := r.dao.DeleteOption(ctx, questionID, optionID); err != nil {
		return fmt.Errorf("r.dao.DeleteOption -> %w", toDomainErr(err, ""))
	}
	return nil
}

func electionDaoToDomain(e dao.Election) domain.Election {
	election := domain.Election{
		ID:         e.ID,
		Name:       e.Name,
		OwnerID:    e.OwnerID,
		Status:     domain.ElectionStatus(e.Status),
		LaunchedAt: e.LaunchedAt,
		EndedAt:    e.EndedAt,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	for _, q := range e.Questions {
		election.Questions = append(election.Questions, questionDaoToDomain(q))
	}
	return election
}

func questionDaoToDomain(q dao.Question) domain.Question {
	question := domain.Question{
		ID:          q.ID,
		ElectionID:  q.ElectionID,
		Title:       q.Title,
		Description: q.Description,
		Position:    q.Position,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
	for _, o := range q.Options {
		question.Options = append(question.Options, optionDaoToDomain(o))
	}
	return question
}

func optionDaoToDomain(o dao.Option) domain.Option {
	return domain.Option{
		ID:         o.ID,
		QuestionID: o.QuestionID,
		Value:      o.Value,
		Position:   o.Position,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
