package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrElectionNotFound = errors.New("election not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("option not found")
	// ErrStatusChanged is returned when a conditional status update matched no
	// row because another request moved the election first.
	ErrStatusChanged = errors.New("election status changed concurrently")
)

type Election struct {
	ID         uint       `gorm:"primaryKey"`
	Name       string     `gorm:"not null"`
	OwnerID    uint       `gorm:"not null;index"`
	Owner      User       `gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT"`
	Status     string     `gorm:"not null;default:draft;index"`
	Questions  []Question `gorm:"foreignKey:ElectionID;constraint:OnDelete:RESTRICT"`
	LaunchedAt *time.Time
	EndedAt    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Question struct {
	ID          uint     `gorm:"primaryKey"`
	ElectionID  uint     `gorm:"not null;index"`
	Title       string   `gorm:"not null"`
	Description string   `gorm:"not null;default:''"`
	Position    int      `gorm:"not null"`
	Options     []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:RESTRICT"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Option struct {
	ID         uint   `gorm:"primaryKey"`
	QuestionID uint   `gorm:"not null;index"`
	Value      string `gorm:"not null"`
	Position   int    `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const (
	questionOrder = "questions.position ASC, questions.id ASC"
	optionOrder   = "options.position ASC, options.id ASC"
)

type ElectionDAO struct {
	db *gorm.DB
}

func NewElectionDAO(db *gorm.DB) *ElectionDAO {
	return &ElectionDAO{
		db: db,
	}
}

func (d *ElectionDAO) Insert(ctx context.Context, election Election) (Election, error) {
	if err := d.db.WithContext(ctx).Omit("Owner", "Questions").Create(&election).Error; err != nil {
		return Election{}, err
	}
	return election, nil
}

func (d *ElectionDAO) FindByOwnerID(ctx context.Context, ownerID uint) ([]Election, error) {
	var elections []Election
	if err := d.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&elections).Error; err != nil {
		return nil, err
	}
	return elections, nil
}

func (d *ElectionDAO) FindByID(ctx context.Context, id uint) (Election, error) {
	var election Election
	if err := d.db.WithContext(ctx).First(&election, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Election{}, ErrElectionNotFound
		}
		return Election{}, err
	}
	return election, nil
}

// FindWithBallot loads the election with its ordered questions and options.
func (d *ElectionDAO) FindWithBallot(ctx context.Context, id uint) (Election, error) {
	var election Election
	err := d.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order(questionOrder) }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order(optionOrder) }).
		First(&election, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Election{}, ErrElectionNotFound
		}
		return Election{}, err
	}
	return election, nil
}

func (d *ElectionDAO) UpdateName(ctx context.Context, id uint, name string) error {
	result := d.db.WithContext(ctx).Model(&Election{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrElectionNotFound
	}
	return nil
}

// UpdateStatus persists a status transition only if the stored status is
// still fromStatus.
func (d *ElectionDAO) UpdateStatus(ctx context.Context, election Election, fromStatus string) error {
	result := d.db.WithContext(ctx).Model(&Election{}).
		Where("id = ? AND status = ?", election.ID, fromStatus).
		Updates(map[string]interface{}{
			"status":      election.Status,
			"launched_at": election.LaunchedAt,
			"ended_at":    election.EndedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// Delete removes the election together with its questions and their options.
func (d *ElectionDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questionIDs := tx.Model(&Question{}).Select("id").Where("election_id = ?", id)

		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("election_id = ?", id).Delete(&Question{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Election{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrElectionNotFound
		}
		return nil
	})
}

func (d *ElectionDAO) FindQuestions(ctx context.Context, electionID uint) ([]Question, error) {
	var questions []Question
	if err := d.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order(questionOrder).
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (d *ElectionDAO) FindQuestion(ctx context.Context, electionID, questionID uint) (Question, error) {
	var question Question
	err := d.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order(optionOrder) }).
		Where("election_id = ?", electionID).
		First(&question, questionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Question{}, ErrQuestionNotFound
		}
		return Question{}, err
	}
	return question, nil
}

func (d *ElectionDAO) InsertQuestion(ctx context.Context, question Question) (Question, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&Question{}).
			Where("election_id = ?", question.ElectionID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		question.Position = last + 1
		return tx.Omit("Options").Create(&question).Error
	})
	if err != nil {
		return Question{}, err
	}
	return question, nil
}

func (d *ElectionDAO) UpdateQuestion(ctx context.Context, question Question) (Question, error) {
	result := d.db.WithContext(ctx).Model(&Question{}).
		Where("id = ? AND election_id = ?", question.ID, question.ElectionID).
		Updates(map[string]interface{}{
			"title":       question.Title,
			"description": question.Description,
		})
	if result.Error != nil {
		return Question{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Question{}, ErrQuestionNotFound
	}
	return d.FindQuestion(ctx, question.ElectionID, question.ID)
}

// DeleteQuestion removes the question and its options.
func (d *ElectionDAO) DeleteQuestion(ctx context.Context, electionID, questionID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Question{}).
			Where("id = ? AND election_id = ?", questionID, electionID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrQuestionNotFound
		}

		if err := tx.Where("question_id = ?", questionID).Delete(&Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Question{}, questionID).Error
	})
}

func (d *ElectionDAO) FindOptions(ctx context.Context, questionID uint) ([]Option, error) {
	var options []Option
	if err := d.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order(optionOrder).
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (d *ElectionDAO) FindOption(ctx context.Context, questionID, optionID uint) (Option, error) {
	var option Option
	err := d.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		First(&option, optionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Option{}, ErrOptionNotFound
		}
		return Option{}, err
	}
	return option, nil
}

func (d *ElectionDAO) InsertOption(ctx context.Context, option Option) (Option, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&Option{}).
			Where("question_id = ?", option.QuestionID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		option.Position = last + 1
		return tx.Create(&option).Error
	})
	if err != nil {
		return Option{}, err
	}
	return option, nil
}

func (d *ElectionDAO) UpdateOption(ctx context.Context, option Option) (Option, error) {
	result := d.db.WithContext(ctx).Model(&Option{}).
		Where("id = ? AND question_id = ?", option.ID, option.QuestionID).
		Update("value", option.Value)
	if result.Error != nil {
		return Option{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Option{}, ErrOptionNotFound
	}
	return d.FindOption(ctx, option.QuestionID, option.ID)
}

func (d *ElectionDAO) DeleteOption(ctx context.Context, questionID, optionID uint) error {
	result := d.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Delete(&Option{}, optionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOptionNotFound
	}
	return nil
}
