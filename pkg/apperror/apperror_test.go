package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "transport", err: Transport("loader.Load", base), want: KindTransport},
		{name: "service", err: Service("embedding.Generate", base), want: KindService},
		{name: "logic", err: Logic("answerer.Ask", base), want: KindLogic},
		{name: "wrapped", err: fmt.Errorf("train: %w", Service("store.Add", base)), want: KindService},
		{name: "plain", err: base, want: KindUnknown},
		{name: "nil", err: nil, want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := Transport("loader.Load", base)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "loader.Load: boom", err.Error())
	assert.True(t, Is(err, KindTransport))
	assert.False(t, Is(err, KindService))
	assert.False(t, Is(nil, KindTransport))
}
