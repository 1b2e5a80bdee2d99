package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"taskledger/internal/db/dbtest"
	"taskledger/internal/model"
	"taskledger/internal/repository"
)

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.New(dbtest.Open(t))
}

func createUser(t *testing.T, repos *repository.Repositories, handle string) *model.User {
	t.Helper()
	user := &model.User{Handle: handle, PasswordHash: "hash", DisplayName: handle, Level: 1}
	require.NoError(t, repos.Users.Create(context.Background(), user))
	return user
}

func createAttribute(t *testing.T, repos *repository.Repositories, owner *model.User, name string, value, maxValue int64) *model.Attribute {
	t.Helper()
	attr := &model.Attribute{UserID: owner.ID, Name: name, Value: value, MaxValue: maxValue}
	require.NoError(t, repos.Attributes.Create(context.Background(), attr))
	return attr
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
