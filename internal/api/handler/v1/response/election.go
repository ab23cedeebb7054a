package response

import "github.com/vietanh2810/election-admin/internal/domain"

type ElectionsResponse struct {
	Elections []domain.Election `json:"elections"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
