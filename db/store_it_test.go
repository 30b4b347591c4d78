//go:build integration
// +build integration

package db

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/hearthhq/hearth/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

type DatabaseIntegrationTestSuite struct {
	suite.Suite
	dataStore *DataStore
	dbType    string
	dsn       string
}

func (s *DatabaseIntegrationTestSuite) SetupTest() {
	//reset to clean state
	switch s.dbType {
	case "sqlite":
		//just reopen for :memory:
		dataStore, err := NewSqliteStore(zap.NewNop(), &config.DatabaseConfiguration{
			Type: s.dbType,
			DSN:  s.dsn,
		})
		if err != nil {
			log.Fatal("error creating database store")
		}
		s.dataStore = dataStore
	case "pg":
		s.dataStore.db.MustExec("DROP SCHEMA public CASCADE;")
		s.dataStore.db.MustExec("CREATE SCHEMA public;")
	case "mysql":
		s.dataStore.db.MustExec("DROP DATABASE IF EXISTS hearth;")
		s.dataStore.db.MustExec("CREATE DATABASE hearth;")
		s.dataStore.db.MustExec("USE hearth;")
	}

	err := s.dataStore.EnsureUsable()
	assert.NoError(s.T(), err)
}

func (s *DatabaseIntegrationTestSuite) seedFamily(creator uuid.UUID) uuid.UUID {
	id, err := s.dataStore.CreateFamily(
		context.Background(),
		"Testers",
		"ABC234",
		creator,
		"parent",
	)
	assert.NoError(s.T(), err)
	return id
}

func (s *DatabaseIntegrationTestSuite) seedInvitation(
	familyID uuid.UUID,
	inviterID uuid.UUID,
	token string,
	expires time.Time,
) uuid.UUID {
	email := "invitee@hearth.local"
	id, err := s.dataStore.InsertInvitation(
		context.Background(),
		familyID,
		inviterID,
		&email,
		nil,
		"child",
		token,
		expires,
	)
	assert.NoError(s.T(), err)
	return id
}

// Families part

func (s *DatabaseIntegrationTestSuite) TestCreateFamilySeedsCreatorMembership() {
	creator := uuid.New()
	familyID := s.seedFamily(creator)

	fam, err := s.dataStore.FamilyByID(context.Background(), familyID)
	assert.NoError(s.T(), err)
	if assert.NotNil(s.T(), fam) {
		assert.Equal(s.T(), "Testers", fam.Name)
		assert.Equal(s.T(), "ABC234", fam.JoinCode)
		assert.Equal(s.T(), creator, fam.CreatedBy)
	}

	active, err := s.dataStore.IsActiveMember(context.Background(), familyID, creator)
	assert.NoError(s.T(), err)
	assert.True(s.T(), active)

	role, err := s.dataStore.ActiveMemberRole(context.Background(), familyID, creator)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "parent", role)
}

func (s *DatabaseIntegrationTestSuite) TestFamilyByIDNotFound() {
	_, err := s.dataStore.FamilyByID(context.Background(), uuid.New())
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *DatabaseIntegrationTestSuite) TestDuplicateJoinCodeRejected() {
	s.seedFamily(uuid.New())
	_, err := s.dataStore.CreateFamily(
		context.Background(),
		"Other",
		"ABC234",
		uuid.New(),
		"parent",
	)
	assert.ErrorIs(s.T(), err, ErrAlreadyExists)
}

func (s *DatabaseIntegrationTestSuite) TestJoinCodeExists() {
	s.seedFamily(uuid.New())
	exists, err := s.dataStore.JoinCodeExists(context.Background(), "ABC234")
	assert.NoError(s.T(), err)
	assert.True(s.T(), exists)
	exists, err = s.dataStore.JoinCodeExists(context.Background(), "ZZZZ99")
	assert.NoError(s.T(), err)
	assert.False(s.T(), exists)
}

func (s *DatabaseIntegrationTestSuite) TestRotateJoinCodeInvalidatesOldCode() {
	familyID := s.seedFamily(uuid.New())

	ok, err := s.dataStore.RotateJoinCode(context.Background(), familyID, "XYZ789")
	assert.NoError(s.T(), err)
	assert.True(s.T(), ok)

	exists, err := s.dataStore.JoinCodeExists(context.Background(), "ABC234")
	assert.NoError(s.T(), err)
	assert.False(s.T(), exists)

	fam, err := s.dataStore.FamilyByJoinCode(context.Background(), "XYZ789")
	assert.NoError(s.T(), err)
	if assert.NotNil(s.T(), fam) {
		assert.Equal(s.T(), familyID, fam.ID)
	}
}

func (s *DatabaseIntegrationTestSuite) TestRotateJoinCodeUnknownFamily() {
	ok, err := s.dataStore.RotateJoinCode(context.Background(), uuid.New(), "XYZ789")
	assert.NoError(s.T(), err)
	assert.False(s.T(), ok)
}

func (s *DatabaseIntegrationTestSuite) TestMembershipsByUser() {
	user := uuid.New()
	familyID := s.seedFamily(user)

	memberships, err := s.dataStore.MembershipsByUser(context.Background(), user)
	assert.NoError(s.T(), err)
	if assert.Len(s.T(), memberships, 1) {
		assert.Equal(s.T(), familyID, memberships[0].FamilyID)
		assert.Equal(s.T(), "Testers", memberships[0].FamilyName)
		assert.Equal(s.T(), "parent", memberships[0].Role)
	}
}

// Join by code part

func (s *DatabaseIntegrationTestSuite) TestJoinFamilyByCode() {
	familyID := s.seedFamily(uuid.New())
	joiner := uuid.New()

	fam, err := s.dataStore.JoinFamily(context.Background(), "ABC234", joiner, "other")
	assert.NoError(s.T(), err)
	if assert.NotNil(s.T(), fam) {
		assert.Equal(s.T(), familyID, fam.ID)
	}

	active, err := s.dataStore.IsActiveMember(context.Background(), familyID, joiner)
	assert.NoError(s.T(), err)
	assert.True(s.T(), active)
}

func (s *DatabaseIntegrationTestSuite) TestJoinFamilyUnknownCode() {
	s.seedFamily(uuid.New())
	_, err := s.dataStore.JoinFamily(context.Background(), "WRONG1", uuid.New(), "other")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *DatabaseIntegrationTestSuite) TestJoinFamilyTwiceIsRejected() {
	s.seedFamily(uuid.New())
	joiner := uuid.New()

	_, err := s.dataStore.JoinFamily(context.Background(), "ABC234", joiner, "other")
	assert.NoError(s.T(), err)
	_, err = s.dataStore.JoinFamily(context.Background(), "ABC234", joiner, "other")
	assert.ErrorIs(s.T(), err, ErrAlreadyExists)
}

func (s *DatabaseIntegrationTestSuite) TestRejoinReactivatesSameRow() {
	familyID := s.seedFamily(uuid.New())
	joiner := uuid.New()

	_, err := s.dataStore.JoinFamily(context.Background(), "ABC234", joiner, "other")
	assert.NoError(s.T(), err)

	ok, err := s.dataStore.DeactivateMembership(context.Background(), familyID, joiner)
	assert.NoError(s.T(), err)
	assert.True(s.T(), ok)

	active, err := s.dataStore.IsActiveMember(context.Background(), familyID, joiner)
	assert.NoError(s.T(), err)
	assert.False(s.T(), active)

	_, err = s.dataStore.JoinFamily(context.Background(), "ABC234", joiner, "child")
	assert.NoError(s.T(), err)

	// still a single row per (family, user), now active with the new role
	members, err := s.dataStore.FamilyMembers(context.Background(), familyID)
	assert.NoError(s.T(), err)
	count := 0
	for _, m := range members {
		if m.UserID == joiner {
			count++
			assert.Equal(s.T(), "child", m.Role)
		}
	}
	assert.Equal(s.T(), 1, count)
}

func (s *DatabaseIntegrationTestSuite) TestDoubleLeaveIsReportedNoOp() {
	familyID := s.seedFamily(uuid.New())
	joiner := uuid.New()
	_, err := s.dataStore.JoinFamily(context.Background(), "ABC234", joiner, "other")
	assert.NoError(s.T(), err)

	ok, err := s.dataStore.DeactivateMembership(context.Background(), familyID, joiner)
	assert.NoError(s.T(), err)
	assert.True(s.T(), ok)

	ok, err = s.dataStore.DeactivateMembership(context.Background(), familyID, joiner)
	assert.NoError(s.T(), err)
	assert.False(s.T(), ok)
}

// Invitations part

func (s *DatabaseIntegrationTestSuite) TestConsumeInvitation() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	expires := time.Now().UTC().Add(time.Hour)
	invID := s.seedInvitation(familyID, inviter, "tok-1", expires)

	invitee := uuid.New()
	consumed, err := s.dataStore.ConsumeInvitation(context.Background(), "tok-1", invitee)
	assert.NoError(s.T(), err)
	if assert.NotNil(s.T(), consumed) {
		assert.Equal(s.T(), invID, consumed.InvitationID)
		assert.Equal(s.T(), familyID, consumed.FamilyID)
		assert.Equal(s.T(), "child", consumed.Role)
	}

	inv, err := s.dataStore.InvitationByToken(context.Background(), "tok-1")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "accepted", inv.Status)
	assert.NotNil(s.T(), inv.AcceptedAt)

	active, err := s.dataStore.IsActiveMember(context.Background(), familyID, invitee)
	assert.NoError(s.T(), err)
	assert.True(s.T(), active)
}

func (s *DatabaseIntegrationTestSuite) TestConsumeInvitationExactlyOnce() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	s.seedInvitation(familyID, inviter, "tok-2", time.Now().UTC().Add(time.Hour))

	_, err := s.dataStore.ConsumeInvitation(context.Background(), "tok-2", uuid.New())
	assert.NoError(s.T(), err)

	// the second taker loses, no matter who they are
	_, err = s.dataStore.ConsumeInvitation(context.Background(), "tok-2", uuid.New())
	assert.ErrorIs(s.T(), err, ErrConsumed)
}

func (s *DatabaseIntegrationTestSuite) TestConcurrentConsumeHasOneWinner() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	s.seedInvitation(familyID, inviter, "tok-race", time.Now().UTC().Add(time.Hour))

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	winners := make([]uuid.UUID, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := uuid.New()
			_, err := s.dataStore.ConsumeInvitation(context.Background(), "tok-race", user)
			results[n] = err
			winners[n] = user
		}(i)
	}
	wg.Wait()

	won := 0
	var winner uuid.UUID
	for i, err := range results {
		if err == nil {
			won++
			winner = winners[i]
		} else {
			assert.ErrorIs(s.T(), err, ErrConsumed)
		}
	}
	assert.Equal(s.T(), 1, won)

	// exactly one membership came out of it, belonging to the winner
	members, err := s.dataStore.FamilyMembers(context.Background(), familyID)
	assert.NoError(s.T(), err)
	found := 0
	for _, m := range members {
		if m.UserID == winner {
			found++
		}
	}
	assert.Equal(s.T(), 1, found)
	assert.Len(s.T(), members, 2)
}

func (s *DatabaseIntegrationTestSuite) TestConsumeLazilyExpiredInvitation() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	s.seedInvitation(familyID, inviter, "tok-stale", time.Now().UTC().Add(-time.Minute))

	ok, err := s.dataStore.MarkInvitationExpired(context.Background(), "tok-stale")
	assert.NoError(s.T(), err)
	assert.True(s.T(), ok)

	// the terminal expired state reports as expired, not as consumed
	_, err = s.dataStore.ConsumeInvitation(context.Background(), "tok-stale", uuid.New())
	assert.ErrorIs(s.T(), err, ErrExpired)
}

func (s *DatabaseIntegrationTestSuite) TestConsumeInvitationUnknownToken() {
	_, err := s.dataStore.ConsumeInvitation(context.Background(), "no-such", uuid.New())
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *DatabaseIntegrationTestSuite) TestConsumeExpiredInvitation() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	s.seedInvitation(familyID, inviter, "tok-3", time.Now().UTC().Add(-time.Minute))

	invitee := uuid.New()
	_, err := s.dataStore.ConsumeInvitation(context.Background(), "tok-3", invitee)
	assert.ErrorIs(s.T(), err, ErrExpired)

	// expiry is terminal, no membership may come out of it
	active, err := s.dataStore.IsActiveMember(context.Background(), familyID, invitee)
	assert.NoError(s.T(), err)
	assert.False(s.T(), active)
}

func (s *DatabaseIntegrationTestSuite) TestConsumeByActiveMemberStaysConsumed() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	s.seedInvitation(familyID, inviter, "tok-4", time.Now().UTC().Add(time.Hour))

	// the inviter is already an active member, accepting must spend
	// the token anyway
	_, err := s.dataStore.ConsumeInvitation(context.Background(), "tok-4", inviter)
	assert.NoError(s.T(), err)

	inv, err := s.dataStore.InvitationByToken(context.Background(), "tok-4")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "accepted", inv.Status)
}

func (s *DatabaseIntegrationTestSuite) TestMarkInvitationExpired() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	s.seedInvitation(familyID, inviter, "tok-5", time.Now().UTC().Add(-time.Minute))

	ok, err := s.dataStore.MarkInvitationExpired(context.Background(), "tok-5")
	assert.NoError(s.T(), err)
	assert.True(s.T(), ok)

	// flipping twice is a no-op
	ok, err = s.dataStore.MarkInvitationExpired(context.Background(), "tok-5")
	assert.NoError(s.T(), err)
	assert.False(s.T(), ok)

	inv, err := s.dataStore.InvitationByToken(context.Background(), "tok-5")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "expired", inv.Status)
}

func (s *DatabaseIntegrationTestSuite) TestMarkInvitationExpiredLeavesFreshOnesAlone() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	s.seedInvitation(familyID, inviter, "tok-6", time.Now().UTC().Add(time.Hour))

	ok, err := s.dataStore.MarkInvitationExpired(context.Background(), "tok-6")
	assert.NoError(s.T(), err)
	assert.False(s.T(), ok)
}

func (s *DatabaseIntegrationTestSuite) TestDeclineInvitation() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	s.seedInvitation(familyID, inviter, "tok-7", time.Now().UTC().Add(time.Hour))

	ok, err := s.dataStore.DeclineInvitation(context.Background(), "tok-7")
	assert.NoError(s.T(), err)
	assert.True(s.T(), ok)

	// declined is terminal, the token is spent
	_, err = s.dataStore.ConsumeInvitation(context.Background(), "tok-7", uuid.New())
	assert.ErrorIs(s.T(), err, ErrConsumed)
}

func (s *DatabaseIntegrationTestSuite) TestRevokeInvitationOnlyByInviter() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	invID := s.seedInvitation(familyID, inviter, "tok-8", time.Now().UTC().Add(time.Hour))

	ok, err := s.dataStore.RevokeInvitation(context.Background(), invID, uuid.New())
	assert.NoError(s.T(), err)
	assert.False(s.T(), ok)

	ok, err = s.dataStore.RevokeInvitation(context.Background(), invID, inviter)
	assert.NoError(s.T(), err)
	assert.True(s.T(), ok)
}

func (s *DatabaseIntegrationTestSuite) TestInvitationListNeverCarriesTokens() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	s.seedInvitation(familyID, inviter, "tok-9", time.Now().UTC().Add(time.Hour))

	byFamily, err := s.dataStore.InvitationsByFamily(context.Background(), familyID)
	assert.NoError(s.T(), err)
	if assert.Len(s.T(), byFamily, 1) {
		assert.Empty(s.T(), byFamily[0].Token)
	}

	all, total, err := s.dataStore.Invitations(context.Background(), ListOptions{Page: 1, PageSize: 10})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 1, total)
	if assert.Len(s.T(), all, 1) {
		assert.Empty(s.T(), all[0].Token)
	}
}

func (s *DatabaseIntegrationTestSuite) TestDuplicateInvitationTokenRejected() {
	inviter := uuid.New()
	familyID := s.seedFamily(inviter)
	s.seedInvitation(familyID, inviter, "tok-10", time.Now().UTC().Add(time.Hour))

	email := "other@hearth.local"
	_, err := s.dataStore.InsertInvitation(
		context.Background(),
		familyID,
		inviter,
		&email,
		nil,
		"child",
		"tok-10",
		time.Now().UTC().Add(time.Hour),
	)
	assert.ErrorIs(s.T(), err, ErrAlreadyExists)
}

// Promo codes part

func (s *DatabaseIntegrationTestSuite) TestRedeemPromoCode() {
	err := s.dataStore.CreatePromoCode(context.Background(), "WELCOME", "welcome promo", 2, nil)
	assert.NoError(s.T(), err)

	promo, err := s.dataStore.RedeemPromoCode(context.Background(), "WELCOME", uuid.New())
	assert.NoError(s.T(), err)
	if assert.NotNil(s.T(), promo) {
		assert.Equal(s.T(), "WELCOME", promo.Code)
	}

	reloaded, err := s.dataStore.PromoCodeByCode(context.Background(), "WELCOME")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 1, reloaded.CurrentUses)
}

func (s *DatabaseIntegrationTestSuite) TestRedeemPromoCodeOncePerUser() {
	err := s.dataStore.CreatePromoCode(context.Background(), "ONCE", "", 5, nil)
	assert.NoError(s.T(), err)

	user := uuid.New()
	_, err = s.dataStore.RedeemPromoCode(context.Background(), "ONCE", user)
	assert.NoError(s.T(), err)
	_, err = s.dataStore.RedeemPromoCode(context.Background(), "ONCE", user)
	assert.ErrorIs(s.T(), err, ErrConsumed)
}

func (s *DatabaseIntegrationTestSuite) TestRedeemPromoCodeCapped() {
	err := s.dataStore.CreatePromoCode(context.Background(), "CAPPED", "", 1, nil)
	assert.NoError(s.T(), err)

	_, err = s.dataStore.RedeemPromoCode(context.Background(), "CAPPED", uuid.New())
	assert.NoError(s.T(), err)
	_, err = s.dataStore.RedeemPromoCode(context.Background(), "CAPPED", uuid.New())
	assert.ErrorIs(s.T(), err, ErrExhausted)
}

func (s *DatabaseIntegrationTestSuite) TestRedeemExpiredPromoCode() {
	past := time.Now().UTC().Add(-time.Minute)
	err := s.dataStore.CreatePromoCode(context.Background(), "OLD", "", 5, &past)
	assert.NoError(s.T(), err)

	_, err = s.dataStore.RedeemPromoCode(context.Background(), "OLD", uuid.New())
	assert.ErrorIs(s.T(), err, ErrExpired)
}

func (s *DatabaseIntegrationTestSuite) TestRedeemUnknownPromoCode() {
	_, err := s.dataStore.RedeemPromoCode(context.Background(), "NOPE", uuid.New())
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *DatabaseIntegrationTestSuite) TestDeletePromoCode() {
	err := s.dataStore.CreatePromoCode(context.Background(), "GONE", "", 5, nil)
	assert.NoError(s.T(), err)
	_, err = s.dataStore.RedeemPromoCode(context.Background(), "GONE", uuid.New())
	assert.NoError(s.T(), err)

	deleted, err := s.dataStore.DeletePromoCode(context.Background(), "GONE")
	assert.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	_, err = s.dataStore.PromoCodeByCode(context.Background(), "GONE")
	assert.ErrorIs(s.T(), err, ErrNotFound)

	deleted, err = s.dataStore.DeletePromoCode(context.Background(), "GONE")
	assert.NoError(s.T(), err)
	assert.False(s.T(), deleted)
}

func (s *DatabaseIntegrationTestSuite) TestDuplicatePromoCodeRejected() {
	err := s.dataStore.CreatePromoCode(context.Background(), "DUPE", "", 1, nil)
	assert.NoError(s.T(), err)
	err = s.dataStore.CreatePromoCode(context.Background(), "DUPE", "", 1, nil)
	assert.ErrorIs(s.T(), err, ErrAlreadyExists)
}

func TestDatabaseSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database integration tests")
	}
	s := &DatabaseIntegrationTestSuite{}
	logger := zaptest.NewLogger(t)
	dbType := os.Getenv("INTEGRATION_TEST_DB_TYPE")
	dsn := os.Getenv("INTEGRATION_TEST_DB_DSN")
	switch dbType {
	case "sqlite":
		dataStore, err := NewSqliteStore(logger, &config.DatabaseConfiguration{
			Type: dbType,
			DSN:  dsn,
		})
		if err != nil {
			log.Fatal("error creating database store")
		}
		s.dataStore = dataStore
		break
	case "mysql":
		dataStore, err := NewMysqlStore(logger, &config.DatabaseConfiguration{
			Type: dbType,
			DSN:  dsn,
		})
		if err != nil {
			log.Fatal("error creating database store")
		}
		s.dataStore = dataStore
		break
	case "pg":
		dataStore, err := NewPostgrestore(logger, &config.DatabaseConfiguration{
			Type: dbType,
			DSN:  dsn,
		})
		if err != nil {
			log.Fatal("error creating database store")
		}
		s.dataStore = dataStore
		break
	default:
		dbType = "sqlite"
		dsn = ":memory:"
		dataStore, err := NewSqliteStore(logger, &config.DatabaseConfiguration{
			Type: dbType,
			DSN:  dsn,
		})
		if err != nil {
			log.Fatal("error creating database store")
		}
		s.dataStore = dataStore
		break
	}
	s.dbType = dbType
	s.dsn = dsn
	suite.Run(t, s)
}
