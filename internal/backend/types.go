package backend

import (
	"encoding/json"
	"fmt"

	"github.com/attireworks/wardrobe/internal/rental"
)

// envelope is the response wrapper the rental backend puts around
// every payload.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// LoginParams are the credentials for the login endpoint.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields before the request is built.
func (p LoginParams) Validate() error {
	if p.Email == "" {
		return fmt.Errorf("email is required")
	}
	if p.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// loginData is the payload returned by the login endpoint.
type loginData struct {
	User  rental.User `json:"user"`
	Token string      `json:"token"`
}

// Session identifies an authenticated backend session.
type Session struct {
	User  rental.User
	Token string
}

// CreateReservationParams are the fields for creating a reservation.
type CreateReservationParams struct {
	CostumeID int64  `json:"costume_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Validate checks the date range locally before hitting the backend,
// which re-validates authoritatively.
func (p CreateReservationParams) Validate() error {
	if p.CostumeID <= 0 {
		return fmt.Errorf("costume_id is required")
	}
	start, err := rental.ParseDate(p.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := rental.ParseDate(p.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end_date: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("end_date must be after start_date")
	}
	return nil
}

// AddCostumeParams are the fields for adding a costume (admin only).
type AddCostumeParams struct {
	Name  string  `json:"name"`
	Size  string  `json:"size"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// Validate checks required fields.
func (p AddCostumeParams) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

// APIError is a backend-reported failure, carrying the server's
// message and HTTP status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}
