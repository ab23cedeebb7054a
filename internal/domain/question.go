package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

type Question struct {
	ID          uint      `json:"id"`
	ElectionID  uint      `json:"election_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	Options     []Option  `json:"options,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Option struct {
	ID         uint      `json:"id"`
	QuestionID uint      `json:"question_id"`
	Value      string    `json:"value"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NormalizeQuestion(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || utf8.RuneCountInString(title) > MaxQuestionTitleLength {
		return "", "", ErrQuestionTitleInvalid
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", "", ErrDescriptionTooLong
	}
	return title, description, nil
}

// NormalizeOptionValue trims the value. Identical values within one question
// are allowed.
func NormalizeOptionValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" || utf8.RuneCountInString(value) > MaxOptionValueLength {
		return "", ErrOptionValueInvalid
	}
	return value, nil
}
