package family

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// testRouter mounts the resource behind a verifier like the api
// composition does, so the bearer handling is exercised end to end
func testRouter(t *testing.T) (*chi.Mux, *jwtauth.JWTAuth) {
	ta := jwtauth.New("HS256", []byte("test-signing-key"), nil)
	res := NewFamilyRessource(zap.NewNop(), nil, validator.New())
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(ta))
	r.Mount("/", res.Router())
	return r, ta
}

func bearerFor(t *testing.T, ta *jwtauth.JWTAuth, subject string) string {
	_, signed, err := ta.Encode(map[string]interface{}{"sub": subject})
	assert.NoError(t, err)
	return "Bearer " + signed
}

func TestEndpointsRequireBearerToken(t *testing.T) {
	router, _ := testRouter(t)
	apitest.New().
		Handler(router).
		Post("/accept-invite").
		Body(`{"invitation_token":"whatever"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestNonUUIDSubjectIsRejected(t *testing.T) {
	router, ta := testRouter(t)
	apitest.New().
		Handler(router).
		Post("/accept-invite").
		Header("Authorization", bearerFor(t, ta, "not-a-uuid")).
		Body(`{"invitation_token":"whatever"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestAcceptInviteRejectsMalformedPayload(t *testing.T) {
	router, ta := testRouter(t)
	apitest.New().
		Handler(router).
		Post("/accept-invite").
		Header("Authorization", bearerFor(t, ta, uuid.NewString())).
		Body(`{"invitation_token":`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestAcceptInviteRequiresInvitationToken(t *testing.T) {
	// the boundary field is invitation_token, a bare token key must
	// not satisfy the schema
	router, ta := testRouter(t)
	apitest.New().
		Handler(router).
		Post("/accept-invite").
		Header("Authorization", bearerFor(t, ta, uuid.NewString())).
		Body(`{"token":"whatever"}`).
		Expect(t).
		Status(http.StatusUnprocessableEntity).
		End()
}

func TestJoinRequiresInviteCode(t *testing.T) {
	router, ta := testRouter(t)
	apitest.New().
		Handler(router).
		Post("/join").
		Header("Authorization", bearerFor(t, ta, uuid.NewString())).
		Body(`{"invite_code":""}`).
		Expect(t).
		Status(http.StatusUnprocessableEntity).
		End()
}

func TestErrorEnvelopeCarriesSuccessFlag(t *testing.T) {
	router, ta := testRouter(t)
	apitest.New().
		Handler(router).
		Get("/invites/nope/qr").
		Header("Authorization", bearerFor(t, ta, uuid.NewString())).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"success":false,"error":"invalid invitation id"}`).
		End()
}

func TestCreateFamilyRequiresName(t *testing.T) {
	router, ta := testRouter(t)
	apitest.New().
		Handler(router).
		Post("/create").
		Header("Authorization", bearerFor(t, ta, uuid.NewString())).
		Body(`{"name":""}`).
		Expect(t).
		Status(http.StatusUnprocessableEntity).
		End()
}

func TestInviteQRRejectsBadInvitationID(t *testing.T) {
	router, ta := testRouter(t)
	apitest.New().
		Handler(router).
		Get("/invites/nope/qr").
		Header("Authorization", bearerFor(t, ta, uuid.NewString())).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestOverviewRejectsBadFamilyID(t *testing.T) {
	router, ta := testRouter(t)
	apitest.New().
		Handler(router).
		Get("/nope").
		Header("Authorization", bearerFor(t, ta, uuid.NewString())).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}
