package models

// Identity is a directory row. UserID is stored lowercase.
type Identity struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
}

// Student is an identity resolved for the attendance form, carrying the
// derived email and the correlation token.
type Student struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// DefaultIdentity is seeded into an empty directory.
var DefaultIdentity = Identity{Name: "Whohoo Jerry", UserID: "jerry"}

// NotFoundResponse is the body of a lookup miss.
type NotFoundResponse struct {
	Message string `json:"message"`
}

const MessageStudentNotFound = "Student not found"
