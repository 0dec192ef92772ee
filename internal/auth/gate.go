// Package auth evaluates requesters against the ban list, allow-list and
// subscription requirement.
package auth

import (
	"context"

	"go.uber.org/zap"

	"MediaSearchBot/internal/models"
)

// BanChecker exposes the ban list lookup the gate needs.
type BanChecker interface {
	IsBanned(identity int64) bool
}

// MembershipChecker reports whether a user is a member of a channel.
type MembershipChecker interface {
	IsMember(ctx context.Context, channel string, identity int64) (bool, error)
}

// Decision is a terminal authorization outcome. JoinChannel is set only for
// subscription denials so the caller can present a join prompt.
type Decision struct {
	Allowed     bool
	Reason      models.DenialReason
	JoinChannel string
}

var allowed = Decision{Allowed: true}

// Gate applies the authorization rules in fixed order. Evaluation is
// side-effect-free and safe for concurrent use.
type Gate struct {
	admins      map[int64]struct{}
	allowList   map[int64]struct{}
	joinChannel string
	bans        BanChecker
	members     MembershipChecker
	log         *zap.Logger
}

// NewGate builds the gate. An empty allowList means unrestricted; an empty
// joinChannel disables the subscription requirement.
func NewGate(admins, allowList []int64, joinChannel string, bans BanChecker, members MembershipChecker, log *zap.Logger) *Gate {
	return &Gate{
		admins:      toSet(admins),
		allowList:   toSet(allowList),
		joinChannel: joinChannel,
		bans:        bans,
		members:     members,
		log:         log,
	}
}

// Check evaluates identity. First matching rule wins: admin, ban list,
// allow-list, subscription channel.
func (g *Gate) Check(ctx context.Context, identity int64) Decision {
	if g.IsAdmin(identity) {
		return allowed
	}
	if g.bans.IsBanned(identity) {
		return Decision{Reason: models.DeniedBanned}
	}
	if len(g.allowList) > 0 {
		if _, ok := g.allowList[identity]; !ok {
			return Decision{Reason: models.DeniedNotAuthorized}
		}
	}
	if g.joinChannel != "" && g.members != nil {
		member, err := g.members.IsMember(ctx, g.joinChannel, identity)
		if err != nil {
			// membership lookup failures fail open rather than locking
			// everyone out
			g.log.Warn("membership check failed",
				zap.String("channel", g.joinChannel),
				zap.Int64("user_id", identity),
				zap.Error(err))
			return allowed
		}
		if !member {
			return Decision{
				Reason:      models.DeniedSubscriptionRequired,
				JoinChannel: g.joinChannel,
			}
		}
	}
	return allowed
}

// IsAdmin reports whether identity is a configured admin.
func (g *Gate) IsAdmin(identity int64) bool {
	_, ok := g.admins[identity]
	return ok
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
