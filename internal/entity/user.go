package entity

import (
	"context"
	"errors"
)

var ErrTokenNotFound = errors.New("nenhuma sessão salva")

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenRepository persiste o token de acesso entre execuções do cliente.
type TokenRepository interface {
	Load(ctx context.Context) (string, error)
	Store(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
