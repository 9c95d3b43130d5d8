package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodePinMismatch, CodeOf(E(CodePinMismatch, "Incorrect transaction pin")))
	assert.Equal(t, CodeUnexpected, CodeOf(errors.New("boom")))

	wrapped := fmt.Errorf("handler: %w", E(CodeInsufficientBalance, "Insufficient balance"))
	assert.Equal(t, CodeInsufficientBalance, CodeOf(wrapped))
}

func TestMessageOf_ShieldsPlainErrors(t *testing.T) {
	assert.Equal(t, "An unknown error occurred", MessageOf(errors.New("dial tcp: timeout")))
	assert.Equal(t, "Incorrect transaction pin", MessageOf(E(CodePinMismatch, "Incorrect transaction pin")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(CodeCommitFailed, "could not finalize", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "COMMIT_FAILED")
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "₦500.00", Money(50000).String())
	assert.Equal(t, "₦1.50", Money(150).String())
	assert.Equal(t, Money(50000), NairaToMoney(500))
}

func TestSettingsKindEnabled(t *testing.T) {
	s := Settings{Enabled: map[string]bool{"data": true}}
	assert.True(t, s.KindEnabled(KindData))
	assert.False(t, s.KindEnabled(KindAirtime))
	assert.False(t, Settings{}.KindEnabled(KindData))
}
