package api

import (
	"time"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Envelope wraps every response from the contacts API.
type Envelope[T any] struct {
	Success  bool     `json:"success"`
	Messages []string `json:"messages"`
	Data     *T       `json:"data"`
	Status   int      `json:"status"`
}

type UserDTO struct {
	ID              string `json:"id"`
	CreatedAt       string `json:"createdAt"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// UserRequest is the body of both create and update calls.
type UserRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

type UserList struct {
	Users []UserDTO `json:"users"`
}

type UploadResult struct {
	ImageURL string `json:"imageUrl"`
}

// Empty is the data payload of a delete.
type Empty struct{}

type ErrorType string

const (
	ErrNetworkConnection ErrorType = "network_connection"
	ErrTimeout           ErrorType = "timeout"
	ErrRejected          ErrorType = "rejected"
	ErrUnauthorized      ErrorType = "unauthorized"
	ErrNotFound          ErrorType = "not_found"
	ErrServer            ErrorType = "server"
	ErrBadResponse       ErrorType = "bad_response"
	ErrUnsupportedFile   ErrorType = "unsupported_file"
)

type Error struct {
	Type    ErrorType
	Message string
	Status  int
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Endpoint names used for metrics and span attributes.
const (
	EndpointList   = "list"
	EndpointGet    = "get"
	EndpointCreate = "create"
	EndpointUpdate = "update"
	EndpointDelete = "delete"
	EndpointUpload = "upload"
)
