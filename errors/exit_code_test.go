package errors

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "explicit exit code", err: WithExitCode(errors.New("boom"), 7), want: 7},
		{name: "wrapped exit code", err: fmt.Errorf("wrapped: %w", WithExitCode(errors.New("boom"), 4)), want: 4},
		{name: "invalid target", err: errors.Wrap(ErrInvalidTarget, "pattern web9"), want: ExitCodeOptionsError},
		{name: "missing host", err: ErrMissingHost, want: ExitCodeOptionsError},
		{name: "removal failure", err: errors.Wrap(ErrRemoval, "x.yml"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestWithExitCode_NilError(t *testing.T) {
	assert.NoError(t, WithExitCode(nil, 2))
}

func TestExitCoder_Unwrap(t *testing.T) {
	err := WithExitCode(ErrSourceLoad, 2)

	assert.True(t, errors.Is(err, ErrSourceLoad))
	assert.Equal(t, ErrSourceLoad.Error(), err.Error())
}

func TestExit_UsesOsExit(t *testing.T) {
	original := OsExit
	defer func() { OsExit = original }()

	var got int
	OsExit = func(code int) { got = code }

	Exit(5)
	assert.Equal(t, 5, got)
}
