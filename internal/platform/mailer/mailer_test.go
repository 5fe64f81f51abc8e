package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "biolink/internal/pkg/errors"
	"biolink/internal/platform/config"
)

func TestSMTPSender_ComposesMessage(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "mail.local", Port: 2525, FromAddress: "no-reply@biolink.test", FromName: "Biolink"})

	var gotAddr string
	var gotMsg []byte
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		assert.Nil(t, a)
		assert.Equal(t, []string{"owner@example.com"}, to)
		return nil
	}

	err := s.SendMagicLink(context.Background(), "owner@example.com", "https://app/auth/verify?token=x", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.True(t, strings.Contains(string(gotMsg), "https://app/auth/verify?token=x"))
}

func TestSMTPSender_WrapsFailure(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "mail.local", Port: 25})
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := s.SendMagicLink(context.Background(), "owner@example.com", "u", time.Now())
	assert.ErrorContains(t, err, "connection refused")
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}
