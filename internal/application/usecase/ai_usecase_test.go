package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/calldesk-api/internal/application/dto"
	"github.com/jhoicas/calldesk-api/internal/application/usecase"
	"github.com/jhoicas/calldesk-api/internal/domain"
	"github.com/jhoicas/calldesk-api/internal/domain/access"
)

type fakeTriage struct {
	got         dto.TriageRequest
	hasDeadline bool
	err         error
}

func (f *fakeTriage) Triage(ctx context.Context, req dto.TriageRequest) (string, error) {
	f.got = req
	_, f.hasDeadline = ctx.Deadline()
	if f.err != nil {
		return "", f.err
	}
	return "riepilogo", nil
}

func TestTrigger_Officina(t *testing.T) {
	triage := &fakeTriage{}
	uc := usecase.NewAIUseCase(triage, access.NewResolver(nil), time.Second, zerolog.Nop())

	out, err := uc.Trigger(context.Background(), officinaEmail)
	require.NoError(t, err)

	assert.Equal(t, "riepilogo", out)
	assert.Equal(t, officinaEmail, triage.got.UserEmail)
	assert.Equal(t, "officina", triage.got.UserRole)
	assert.Equal(t, []string{"SERVICE", "PARTS"}, triage.got.AllowedRequestTypes)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, triage.got.Timestamp)
	assert.True(t, triage.hasDeadline, "la llamada debe llevar timeout")
}

func TestTrigger_AdminSinRestriccion(t *testing.T) {
	triage := &fakeTriage{}
	uc := usecase.NewAIUseCase(triage, access.NewResolver(nil), 0, zerolog.Nop())

	_, err := uc.Trigger(context.Background(), adminEmail)
	require.NoError(t, err)
	assert.Equal(t, "admin", triage.got.UserRole)
	assert.Nil(t, triage.got.AllowedRequestTypes)
}

func TestTrigger_ErrorDelServicio(t *testing.T) {
	triage := &fakeTriage{err: domain.ErrNotConfigured}
	uc := usecase.NewAIUseCase(triage, access.NewResolver(nil), time.Second, zerolog.Nop())

	_, err := uc.Trigger(context.Background(), salesEmail)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
