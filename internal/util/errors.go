package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrModuleNotFound     = errors.New("module not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrSessionNotFound    = errors.New("consultation session not found")
	ErrCertNotFound       = errors.New("certification not found")
	ErrRecommendationGone = errors.New("recommendation not found")
	ErrInsightUnavailable = errors.New("ai insight service unavailable")
	ErrInvalidFileType    = errors.New("invalid file type")
	ErrInvalidQuestion    = errors.New("correct answer must match one of the options")
	ErrEmptyMessage       = errors.New("message content is empty")
	ErrInvalidExpiry      = errors.New("expiry date is before the issue date")
)
