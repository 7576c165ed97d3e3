// Package policy holds the access rules evaluated before every session,
// participation and directory operation.
package policy

import (
	"github.com/yogastudio/booking/internal/core/domain"
)

// Action identifies an operation subject to authorization.
type Action string

const (
	ActionSessionCreate        Action = "session:create"
	ActionSessionUpdate        Action = "session:update"
	ActionSessionDelete        Action = "session:delete"
	ActionSessionList          Action = "session:list"
	ActionSessionGet           Action = "session:get"
	ActionSessionParticipate   Action = "session:participate"
	ActionSessionUnParticipate Action = "session:unparticipate"
	ActionTeacherList          Action = "teacher:list"
	ActionTeacherGet           Action = "teacher:get"
	ActionUserGet              Action = "user:get"
	ActionUserDelete           Action = "user:delete"
)

// Target describes what an action is applied to. Only the fields relevant to
// the action's rule are read.
type Target struct {
	SessionID int64
	UserID    int64
}

type rule func(p domain.Principal, t Target) bool

func adminOnly(p domain.Principal, _ Target) bool { return p.Admin }

func anyone(domain.Principal, Target) bool { return true }

func self(p domain.Principal, t Target) bool { return p.ID == t.UserID }

var rules = map[Action]rule{
	ActionSessionCreate:        adminOnly,
	ActionSessionUpdate:        adminOnly,
	ActionSessionDelete:        adminOnly,
	ActionSessionList:          anyone,
	ActionSessionGet:           anyone,
	ActionSessionParticipate:   self,
	ActionSessionUnParticipate: self,
	ActionTeacherList:          anyone,
	ActionTeacherGet:           anyone,
	ActionUserGet:              anyone,
	ActionUserDelete:           self,
}

// Authorize returns nil when p may perform a on t, domain.ErrForbidden
// otherwise. Unknown actions are denied.
func Authorize(p domain.Principal, a Action, t Target) error {
	allow, ok := rules[a]
	if !ok || !allow(p, t) {
		return domain.ErrForbidden
	}
	return nil
}
