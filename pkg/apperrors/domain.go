package apperrors

import (
	"net/http"
)

// ErrNotFound - 404 для ошибок репозитория вида ErrXNotFound
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", err.Error(), http.StatusNotFound)
}

// ErrAlreadyExists - 409 для конфликтов уникальности
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", err.Error(), http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Auth ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid username/email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Token has expired, refresh it",
	http.StatusUnauthorized,
)

var ErrAccountDisabled = New(
	CodeAccountDisabled,
	"auth",
	"Your account has been disabled",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrNotOwner = New(
	CodeForbidden,
	"content",
	"You can only modify your own content",
	http.StatusForbidden,
)

var ErrCannotModifySelf = New(
	CodeForbidden,
	"user",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

// --- Analytics ---

var ErrTaskBusy = New(
	CodeTaskBusy,
	"scheduler",
	"Task is already running, try again later",
	http.StatusConflict,
)

var ErrUnknownTask = New(
	CodeNotFound,
	"scheduler",
	"Unknown scheduled task",
	http.StatusNotFound,
)

var ErrCategoryInUse = New(
	CodeConflict,
	"category",
	"Category still has articles",
	http.StatusConflict,
)
