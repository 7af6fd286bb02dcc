// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/astra-tui/internal/api"
	"github.com/jeranaias/astra-tui/internal/model"
)

type fakeBackend struct {
	profile   model.Profile
	getErr    error
	updateErr error
	updates   []model.ProfileUpdate
}

func (f *fakeBackend) GetProfile(context.Context) (model.Profile, error) {
	return f.profile, f.getErr
}

func (f *fakeBackend) UpdateProfile(_ context.Context, upd model.ProfileUpdate) (model.Profile, error) {
	f.updates = append(f.updates, upd)
	if f.updateErr != nil {
		return model.Profile{}, f.updateErr
	}
	p := f.profile
	p.Username = *upd.Username
	p.Email = *upd.Email
	p.FullName = upd.FullName
	p.ImageURL = upd.ImageURL
	return p, nil
}

func strPtr(s string) *string { return &s }

func loaded(t *testing.T, b *fakeBackend) *Editor {
	t.Helper()
	e := NewEditor(b)
	require.NoError(t, e.Load(context.Background()))
	return e
}

func TestOpen_SeedsForm(t *testing.T) {
	b := &fakeBackend{profile: model.Profile{ID: 1, Username: "abhi", Email: "a@x.io", FullName: strPtr("Abhi K")}}
	e := loaded(t, b)

	e.Open()

	assert.True(t, e.IsOpen())
	assert.Equal(t, Form{Username: "abhi", Email: "a@x.io", FullName: "Abhi K"}, e.Form())
	assert.Empty(t, e.Error())
}

func TestSubmit_RequiresUsernameAndEmail(t *testing.T) {
	b := &fakeBackend{profile: model.Profile{Username: "abhi", Email: "a@x.io"}}
	e := loaded(t, b)
	e.Open()

	f := e.Form()
	f.SetField(1, "  ")
	e.SetForm(f)

	err := e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrRequiredFields)
	assert.Equal(t, "username and email are required", e.Error())
	assert.Empty(t, b.updates, "backend is not called")
	assert.True(t, e.IsOpen())
}

func TestSubmit_Success(t *testing.T) {
	b := &fakeBackend{profile: model.Profile{ID: 1, Username: "abhi", Email: "a@x.io"}}
	e := loaded(t, b)
	e.Open()
	f := e.Form()
	f.FullName = "Abhishek"
	e.SetForm(f)

	require.NoError(t, e.Submit(context.Background()))

	assert.False(t, e.IsOpen())
	p, ok := e.Profile()
	require.True(t, ok)
	assert.Equal(t, "Abhishek", p.DisplayName())
}

func TestSubmit_FailureKeepsProfile(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend message", &api.Error{Status: 409, Message: "username taken"}, "username taken"},
		{"no message", errors.New("timeout"), UpdateFailedText},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &fakeBackend{profile: model.Profile{Username: "abhi", Email: "a@x.io"}}
			e := loaded(t, b)
			b.updateErr = tc.err
			e.Open()
			f := e.Form()
			f.Username = "other"
			e.SetForm(f)

			require.Error(t, e.Submit(context.Background()))
			assert.Equal(t, tc.want, e.Error())
			assert.True(t, e.IsOpen())
			p, _ := e.Profile()
			assert.Equal(t, "abhi", p.Username)
		})
	}
}

func TestLoad_FailureClearsProfile(t *testing.T) {
	b := &fakeBackend{profile: model.Profile{Username: "abhi"}}
	e := loaded(t, b)
	b.getErr = errors.New("down")

	require.Error(t, e.Load(context.Background()))
	_, ok := e.Profile()
	assert.False(t, ok)

	e.Open()
	assert.Equal(t, Form{}, e.Form())
}

func TestCancel(t *testing.T) {
	e := loaded(t, &fakeBackend{})
	e.Open()
	e.Cancel()
	assert.False(t, e.IsOpen())
}
