package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(OptionOutOfRange, "config.Validate"),
			want: "flatintern: option_out_of_range: config.Validate",
		},
		{
			name: "with cause",
			err:  Wrap(SourceFailure, "buffer.Refill", stderrors.New("disk on fire")),
			want: "flatintern: source_failure: buffer.Refill: disk on fire",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(Inconsistent, "matrix.Check", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, cause))
}

func TestError_IsMatchesOnKind(t *testing.T) {
	a := New(UnknownVersion, "wire.Decode")
	b := Wrap(UnknownVersion, "wire.Decode2", stderrors.New("x"))
	c := New(BufferTooSmall, "buffer.New")

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}
