package service

import "github.com/juhi-kothari/Pranam-app/internal/model"

// Participant identifies who is talking in a chat. It is either Anonymous or
// Member; the unexported method keeps other implementations out.
type Participant interface {
	participant()
}

type Anonymous struct{}

type Member struct {
	UserID uint64
	Role   model.Role
}

func (Anonymous) participant() {}
func (Member) participant()    {}

// side resolves which unread counter a participant owns and the sender
// reference stored on their messages.
func side(p Participant) (model.SenderType, *uint64) {
	switch v := p.(type) {
	case Member:
		id := v.UserID
		if v.Role == model.RoleAdmin {
			return model.SenderAdmin, &id
		}
		return model.SenderUser, &id
	case Anonymous:
		return model.SenderUser, nil
	}
	panic("service: unknown chat participant")
}

// ParticipantFor maps an optional authenticated caller to a chat participant.
func ParticipantFor(a *Actor) Participant {
	if a == nil || a.UserID == 0 {
		return Anonymous{}
	}
	return Member{UserID: a.UserID, Role: a.Role}
}
