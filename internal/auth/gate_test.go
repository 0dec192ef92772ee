package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"MediaSearchBot/internal/models"
)

type fakeBans map[int64]bool

func (f fakeBans) IsBanned(id int64) bool { return f[id] }

type fakeMembers struct {
	member bool
	err    error
	calls  int
}

func (f *fakeMembers) IsMember(_ context.Context, _ string, _ int64) (bool, error) {
	f.calls++
	return f.member, f.err
}

func TestCheckOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("admin bypasses everything", func(t *testing.T) {
		members := &fakeMembers{member: false}
		g := NewGate([]int64{1}, []int64{2}, "@channel", fakeBans{}, members, zap.NewNop())
		d := g.Check(ctx, 1)
		assert.True(t, d.Allowed)
		assert.Zero(t, members.calls, "admin check must short-circuit")
	})

	t.Run("ban wins over allow-list and subscription", func(t *testing.T) {
		members := &fakeMembers{member: true}
		g := NewGate(nil, []int64{5}, "@channel", fakeBans{5: true}, members, zap.NewNop())
		d := g.Check(ctx, 5)
		assert.False(t, d.Allowed)
		assert.Equal(t, models.DeniedBanned, d.Reason)
		assert.Zero(t, members.calls)
	})

	t.Run("allow-list miss", func(t *testing.T) {
		g := NewGate(nil, []int64{7}, "", fakeBans{}, nil, zap.NewNop())
		d := g.Check(ctx, 8)
		assert.False(t, d.Allowed)
		assert.Equal(t, models.DeniedNotAuthorized, d.Reason)
	})

	t.Run("empty allow-list means unrestricted", func(t *testing.T) {
		g := NewGate(nil, nil, "", fakeBans{}, nil, zap.NewNop())
		assert.True(t, g.Check(ctx, 8).Allowed)
	})

	t.Run("subscription required carries channel", func(t *testing.T) {
		g := NewGate(nil, nil, "@mychannel", fakeBans{}, &fakeMembers{member: false}, zap.NewNop())
		d := g.Check(ctx, 9)
		assert.False(t, d.Allowed)
		assert.Equal(t, models.DeniedSubscriptionRequired, d.Reason)
		assert.Equal(t, "@mychannel", d.JoinChannel)
	})

	t.Run("member passes", func(t *testing.T) {
		g := NewGate(nil, nil, "@mychannel", fakeBans{}, &fakeMembers{member: true}, zap.NewNop())
		assert.True(t, g.Check(ctx, 9).Allowed)
	})

	t.Run("membership errors fail open", func(t *testing.T) {
		g := NewGate(nil, nil, "@mychannel", fakeBans{}, &fakeMembers{err: errors.New("api down")}, zap.NewNop())
		assert.True(t, g.Check(ctx, 9).Allowed)
	})
}

func TestIsAdmin(t *testing.T) {
	g := NewGate([]int64{1, 2}, nil, "", fakeBans{}, nil, zap.NewNop())
	assert.True(t, g.IsAdmin(1))
	assert.False(t, g.IsAdmin(3))
}
