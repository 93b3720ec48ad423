package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FreshKeeper/internal/handlers"

	"github.com/stretchr/testify/assert"
)

func TestGroups_SameDayItemsShareGroup(t *testing.T) {
	s := newTestServer(t)

	exp := time.Now().UTC().AddDate(0, 0, 5)
	for _, title := range []string{"milk", "cheese"} {
		req := s.authedRequest(t, http.MethodPost, "/api/items", "u1", addItemBody(t, title, exp))
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code)
	}
	// другой день — другая группа
	req := s.authedRequest(t, http.MethodPost, "/api/items", "u1", addItemBody(t, "yogurt", exp.AddDate(0, 0, 1)))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)

	req = s.authedRequest(t, http.MethodGet, "/api/groups", "u1", nil)
	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var groups []handlers.GroupDTO
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&groups))
	assert.Len(t, groups, 2)
	// сортировка по дню: первая группа — ближний срок, два члена
	assert.Len(t, groups[0].Items, 2)
	assert.Len(t, groups[1].Items, 1)
}

func TestGroups_ScopedByOwner(t *testing.T) {
	s := newTestServer(t)

	exp := time.Now().UTC().AddDate(0, 0, 5)
	req := s.authedRequest(t, http.MethodPost, "/api/items", "u1", addItemBody(t, "milk", exp))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)

	req = s.authedRequest(t, http.MethodGet, "/api/groups", "u2", nil)
	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var groups []handlers.GroupDTO
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&groups))
	assert.Len(t, groups, 0)
}

func TestResync_RestoresTickets(t *testing.T) {
	s := newTestServer(t)

	exp := time.Now().UTC().AddDate(0, 0, 10)
	req := s.authedRequest(t, http.MethodPost, "/api/items", "u1", addItemBody(t, "milk", exp))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)

	// имитация сброса внешнего стора напоминаний
	var created handlers.ItemDTO
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.NoError(t, s.notifier.Cancel(req.Context(), "u1",
		created.ID+"_warning_notification_id",
		created.ID+"_expiration_notification_id"))

	req = s.authedRequest(t, http.MethodPost, "/api/resync", "u1", nil)
	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	pending, err := s.notifier.ListPending(req.Context(), "u1")
	assert.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestTickets_Diagnostics(t *testing.T) {
	s := newTestServer(t)

	exp := time.Now().UTC().AddDate(0, 0, 10)
	req := s.authedRequest(t, http.MethodPost, "/api/items", "u1", addItemBody(t, "milk", exp))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)

	req = s.authedRequest(t, http.MethodGet, "/api/tickets", "u1", nil)
	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var tickets []map[string]any
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&tickets))
	assert.Len(t, tickets, 2)
}

func TestTickets_ScopedByOwner(t *testing.T) {
	s := newTestServer(t)

	exp := time.Now().UTC().AddDate(0, 0, 10)
	for _, owner := range []string{"u1", "u2"} {
		req := s.authedRequest(t, http.MethodPost, "/api/items", owner, addItemBody(t, "milk", exp))
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code)
	}

	// каждый владелец видит только свои два тикета, не все четыре
	req := s.authedRequest(t, http.MethodGet, "/api/tickets", "u2", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var tickets []map[string]any
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&tickets))
	assert.Len(t, tickets, 2)
}
