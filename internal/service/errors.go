package service

import "errors"

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	// ErrNotFound maps to 404.
	ErrNotFound = errors.New("not found")
	// ErrLoginTaken maps to 409 on registration.
	ErrLoginTaken = errors.New("Пользователь с таким логином уже существует")
	// ErrInvalidCredentials maps to 401 on login.
	ErrInvalidCredentials = errors.New("Неверный логин или пароль")
	// ErrInvalidInput maps to 400.
	ErrInvalidInput = errors.New("invalid input")
)
