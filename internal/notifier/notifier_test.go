package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diegoclair/checkin-scheduler/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		channel  string
		token    string
		wantNil  bool
		wantErr  bool
		wantName string
	}{
		{name: "Should disable on none", channel: "none", token: "x", wantNil: true},
		{name: "Should soft-skip without token", channel: "telegram", wantNil: true},
		{name: "Should build telegram", channel: "telegram", token: "1:a", wantName: "telegram"},
		{name: "Should build slack", channel: "slack", token: "xoxb", wantName: "slack"},
		{name: "Should build discord", channel: "discord", token: "abc", wantName: "discord"},
		{name: "Should reject unknown channel", channel: "fax", token: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := New(tt.channel, tt.token, 1, time.Second, zerolog.Nop())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, n)
				return
			}
			require.NotNil(t, n)
			assert.Equal(t, tt.wantName, n.Name())
			assert.False(t, n.Ready())
		})
	}
}

func TestThrottled_Delegates(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockNotifier(ctrl)
	ctx := context.Background()

	next.EXPECT().Name().Return("slack")
	next.EXPECT().Ready().Return(true)
	next.EXPECT().Init(ctx).Return(nil)
	next.EXPECT().Send(ctx, "C1", "hello").Return(nil)

	th := NewThrottled(next, 10)
	assert.Equal(t, "slack", th.Name())
	assert.True(t, th.Ready())
	require.NoError(t, th.Init(ctx))
	require.NoError(t, th.Send(ctx, "C1", "hello"))
}

func TestThrottled_WaitRespectsContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockNotifier(ctrl)
	next.EXPECT().Send(gomock.Any(), "C1", "first").Return(nil).Times(1)

	th := NewThrottled(next, 1)
	require.NoError(t, th.Send(context.Background(), "C1", "first"))

	// the bucket is empty; the next token is a second away
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := th.Send(ctx, "C1", "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
}

func TestThrottled_PropagatesSendError(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockNotifier(ctrl)
	boom := errors.New("boom")
	next.EXPECT().Send(gomock.Any(), "C1", "x").Return(boom)

	th := NewThrottled(next, 5)
	assert.ErrorIs(t, th.Send(context.Background(), "C1", "x"), boom)
}

func TestDiscord_NotReady(t *testing.T) {
	d := NewDiscord("token", zerolog.Nop())
	assert.Equal(t, "discord", d.Name())
	assert.False(t, d.Ready())
	assert.ErrorIs(t, d.Send(context.Background(), "123", "hi"), ErrNotReady)
}
