package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/hearthhq/hearth/db/tables"
	"github.com/hearthhq/hearth/events"
	"github.com/hearthhq/hearth/events/event"
)

type recordingAuditor struct {
	entries  []string
	payloads []tables.MapStructure
}

func (r *recordingAuditor) addToAuditLog(ev string, payload tables.MapStructure) error {
	r.entries = append(r.entries, ev)
	r.payloads = append(r.payloads, payload)
	return nil
}

func TestFamilyCreatedEventIsAudited(t *testing.T) {
	assert := assert.New(t)
	auditor := &recordingAuditor{}
	dispatcher := events.NewDispatcher(zaptest.NewLogger(t))
	dispatcher.Register(BootstrapListeners(auditor, zaptest.NewLogger(t))...)

	familyID := uuid.New()
	creator := uuid.New()
	ev := &event.FamilyCreated{
		FamilyID:   familyID,
		FamilyName: "The Tests",
		CreatedBy:  creator,
	}
	assert.Equal(event.FamilyCreatedEvent, ev.Name())
	dispatcher.Dispatch(ev)

	if assert.Len(auditor.entries, 1) {
		assert.Equal(string(event.FamilyCreatedEvent), auditor.entries[0])
		assert.Equal("The Tests", auditor.payloads[0]["name"])
		assert.Equal(familyID.String(), auditor.payloads[0]["family_id"])
		assert.Equal(creator.String(), auditor.payloads[0]["created_by"])
	}
}

func TestMemberInvitedAuditCarriesNoToken(t *testing.T) {
	assert := assert.New(t)
	auditor := &recordingAuditor{}
	dispatcher := events.NewDispatcher(zaptest.NewLogger(t))
	dispatcher.Register(BootstrapListeners(auditor, zaptest.NewLogger(t))...)

	dispatcher.Dispatch(&event.MemberInvited{
		InvitationID: uuid.New(),
		FamilyID:     uuid.New(),
		InviterID:    uuid.New(),
		Role:         "child",
	})

	if assert.Len(auditor.payloads, 1) {
		_, hasToken := auditor.payloads[0]["token"]
		assert.False(hasToken)
	}
}
