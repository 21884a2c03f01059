package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContacts_InvalidEmail(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/contacts", `{"name":"Ada","email":"not-an-email","message":"hi"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, [][]any{{"body", "email"}}, detailLocs(t, rec))

	rec = do(t, h, http.MethodGet, "/contacts", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestContacts_NewestFirst(t *testing.T) {
	_, h := newTestServer(t)

	for _, ts := range []string{"2024-01-05T10:00:00", "2024-03-01T09:00:00", "2024-02-10T08:00:00"} {
		mustCreate(t, h, "/contacts", `{"name":"n","email":"n@example.com","message":"m","created_at":"`+ts+`"}`)
	}

	rec := do(t, h, http.MethodGet, "/contacts/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		[]any{"2024-03-01T09:00:00", "2024-02-10T08:00:00", "2024-01-05T10:00:00"},
		field(array(t, rec), "created_at"))
}

func TestContacts_StatusIsFreeForm(t *testing.T) {
	_, h := newTestServer(t)
	c := mustCreate(t, h, "/contacts", `{"name":"n","email":"n@example.com","message":"m"}`)
	require.Equal(t, "new", c["status"])

	for _, status := range []string{"archived", "new", "replied", "escalated"} {
		rec := do(t, h, http.MethodPut, idPath("/contacts", c), `{"status":"`+status+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, status, object(t, rec)["status"])
	}

	// Only status and timestamps are writable after creation.
	rec := do(t, h, http.MethodPut, idPath("/contacts", c), `{"email":"other@example.com"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
