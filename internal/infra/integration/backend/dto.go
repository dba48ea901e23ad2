package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginOutput struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

type addAudienceRequest struct {
	ContactIDs []string `json:"contact_ids"`
}

// AddAllAudienceInput é o DTO limpo que o controller monta.
type AddAllAudienceInput struct {
	Filters     entity.Filters
	CurrentPage int
	PerPage     int
}

type addAllAudienceRequest struct {
	Filters     map[string]string `json:"filters"`
	CurrentPage int               `json:"current_page"`
	PerPage     int               `json:"per_page"`
}

// APIError is returned for every non-2xx answer from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s %s retornou status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
