package inbound

import (
	"net/http"
	"strconv"
	"time"
)

type RegisterResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

func (RegisterResponse) StatusCode() int {
	return http.StatusCreated
}

func (RegisterResponse) Message() string {
	return "Registration successful"
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

func (ValidateResponse) Message() string {
	return "Validation passed"
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
