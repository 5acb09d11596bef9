package service

import (
	"context"
	"crypto/subtle"
	"fmt"
)

type AdminCredentials struct {
	Login    string
	Password string
}

type Login struct {
	credentials  AdminCredentials
	tokenFactory TokenFactory
}

func NewLogin(credentials AdminCredentials, tokenFactory TokenFactory) *Login {
	return &Login{
		credentials:  credentials,
		tokenFactory: tokenFactory,
	}
}

func (l *Login) Login(_ context.Context, login string, password string) (string, error) {
	if l.credentials.Login == "" || l.credentials.Password == "" {
		return "", ErrInvalidCredentials
	}
	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(l.credentials.Login)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(l.credentials.Password)) == 1
	if !loginOK || !passwordOK {
		return "", ErrInvalidCredentials
	}

	token, err := l.tokenFactory.Generate(login)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}
