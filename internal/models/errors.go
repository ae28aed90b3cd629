package models

import "errors"

var (
	// ErrValidation - входные данные отсутствуют или некорректны
	ErrValidation = errors.New("validation error")
	// ErrAlertNotFound - алерт с указанным id не существует
	ErrAlertNotFound = errors.New("alert not found")
	// ErrDuplicateVote - токен уже голосовал за этот алерт
	ErrDuplicateVote = errors.New("duplicate vote")
)
