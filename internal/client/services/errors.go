package services

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrFileTooLarge     = errors.New("file exceeds the upload size limit")
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidFileName  = errors.New("invalid file name")
)
