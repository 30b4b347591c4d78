package manage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hearthhq/hearth/db/tables"
)

func TestInvitationDTOCarriesNoToken(t *testing.T) {
	assert := assert.New(t)
	email := "ana@example.com"
	row := &tables.FamilyInvitationTable{
		ID:           uuid.New(),
		FamilyID:     uuid.New(),
		InviterID:    uuid.New(),
		InviteeEmail: &email,
		Role:         "child",
		Status:       "pending",
		Token:        "super-secret-raw-token",
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		CreatedAt:    time.Now().UTC(),
	}
	dto := invitationDTOfromDB(row)
	raw, err := json.Marshal(dto)
	assert.NoError(err)
	assert.False(strings.Contains(string(raw), "super-secret-raw-token"))
	assert.False(strings.Contains(string(raw), "token"))
}

func TestFamilyDTOMapsAllFields(t *testing.T) {
	assert := assert.New(t)
	now := time.Now().UTC()
	row := &tables.FamilyTable{
		ID:        uuid.New(),
		Name:      "Huber",
		JoinCode:  "ABC234",
		CreatedBy: uuid.New(),
		CreatedAt: now,
	}
	dto := familyDTOfromDB(row)
	assert.Equal(row.ID, dto.ID)
	assert.Equal("Huber", dto.Name)
	assert.Equal("ABC234", dto.JoinCode)
	assert.Equal(row.CreatedBy, dto.CreatedBy)
	assert.Equal(now, dto.CreatedAt)
	assert.Nil(dto.UpdatedAt)
}

func TestPromoCodeDTOMapsAllFields(t *testing.T) {
	assert := assert.New(t)
	row := &tables.PromoCodeTable{
		ID:          7,
		Code:        "WELCOME",
		Description: "welcome promo",
		MaxUses:     10,
		CurrentUses: 3,
		CreatedAt:   time.Now().UTC(),
	}
	dto := promoCodeDTOfromDB(row)
	assert.Equal(7, dto.ID)
	assert.Equal("WELCOME", dto.Code)
	assert.Equal(10, dto.MaxUses)
	assert.Equal(3, dto.CurrentUses)
	assert.Nil(dto.ExpiresAt)
}
