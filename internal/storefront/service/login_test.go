package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	login := NewLogin(AdminCredentials{Login: "admin", Password: "pa55"}, fakeTokens{})

	token, err := login.Login(context.Background(), "admin", "pa55")
	require.NoError(t, err)
	assert.Equal(t, "token-for-admin", token)

	_, err = login.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = login.Login(context.Background(), "root", "pa55")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledWithoutCredentials(t *testing.T) {
	login := NewLogin(AdminCredentials{}, fakeTokens{})

	_, err := login.Login(context.Background(), "", "")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
