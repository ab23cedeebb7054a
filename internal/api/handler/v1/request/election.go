package request

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/election-admin/internal/domain"
)

type ElectionRequest struct {
	Name string `json:"name" form:"name"`
}

func (req *ElectionRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)

	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, domain.MaxElectionNameLength)),
	)
}

type QuestionRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

func (req *QuestionRequest) Validate() error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.RuneLength(1, domain.MaxQuestionTitleLength)),
		validation.Field(&req.Description, validation.RuneLength(0, domain.MaxDescriptionLength)),
	)
}

// AddOptionRequest is posted by the add-option form, whose field is named
// "option".
type AddOptionRequest struct {
	Option string `json:"option" form:"option"`
}

func (req *AddOptionRequest) Validate() error {
	req.Option = strings.TrimSpace(req.Option)

	return validation.ValidateStruct(req,
		validation.Field(&req.Option, validation.Required, validation.RuneLength(1, domain.MaxOptionValueLength)),
	)
}

type UpdateOptionRequest struct {
	Value string `json:"value" form:"value"`
}

func (req *UpdateOptionRequest) Validate() error {
	req.Value = strings.TrimSpace(req.Value)

	return validation.ValidateStruct(req,
		validation.Field(&req.Value, validation.Required, validation.RuneLength(1, domain.MaxOptionValueLength)),
	)
}
