package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundly/foundly-server/internal/auth"
	"github.com/foundly/foundly-server/internal/services"
	"github.com/foundly/foundly-server/internal/store/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := sqlite.Bootstrap(context.Background(), filepath.Join(t.TempDir(), "foundly.db"))
	require.NoError(t, err)

	matcher := services.NewMatchService(s, zerolog.Nop())
	router := NewRouter(Deps{
		Users:         services.NewUserService(s),
		Items:         services.NewItemService(s, matcher, 24*time.Hour),
		Matches:       matcher,
		Claims:        services.NewClaimService(s),
		Notifications: services.NewNotificationService(s),
		Authorizer:    auth.NewStoreAuthorizer(s),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, apiKey string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func registerUser(t *testing.T, srv *httptest.Server, name string) (userID, apiKey string) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/users", "", map[string]string{
		"username": name,
		"email":    name + "@example.edu",
		"phone":    "555-0199",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	apiKey, _ = body["apiKey"].(string)
	require.NotEmpty(t, apiKey)
	user := body["user"].(map[string]interface{})
	return user["userId"].(string), apiKey
}

func reportLostPhone(t *testing.T, srv *httptest.Server, apiKey string) map[string]interface{} {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/items/lost", apiKey, map[string]interface{}{
		"name":        "iPhone 13",
		"category":    "Electronics",
		"description": "black phone with a cracked corner",
		"location":    "Main Library",
		"lostDate":    "2026-05-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body
}

func reportFoundPhone(t *testing.T, srv *httptest.Server, apiKey string) map[string]interface{} {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/items/found", apiKey, map[string]interface{}{
		"name":        "iPhone 13 Pro",
		"category":    "Electronics",
		"description": "black phone, cracked near the camera",
		"location":    "Main Library 2nd Floor",
		"foundDate":   "2026-05-02",
		"question1":   "What is the wallpaper?",
		"question2":   "What sticker is on the case?",
		"answer1":     "Mountain Lake",
		"answer2":     "a small bee",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/items/lost", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/me/matches", "bogus-key", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReportAndAutoMatchFlow(t *testing.T) {
	srv := newTestServer(t)
	_, ownerKey := registerUser(t, srv, "owner")
	_, finderKey := registerUser(t, srv, "finder")

	found := reportFoundPhone(t, srv, finderKey)
	assert.Equal(t, float64(0), found["strongMatches"])

	lost := reportLostPhone(t, srv, ownerKey)
	assert.Equal(t, float64(1), lost["strongMatches"])

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/me/matches", ownerKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(1), body["count"])
	matches := body["matches"].([]interface{})
	m := matches[0].(map[string]interface{})["match"].(map[string]interface{})
	assert.Equal(t, "Pending", m["status"])
	assert.Equal(t, "automatic", m["matchSource"])
	assert.GreaterOrEqual(t, m["matchScore"].(float64), float64(70))

	// Security answers never leak through the API.
	foundItem := matches[0].(map[string]interface{})["foundItem"].(map[string]interface{})
	_, hasSecret := foundItem["answer1Secret"]
	assert.False(t, hasSecret)

	// Both parties received a match alert.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/notifications/unread-count", finderKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["unread"])
}

func TestClaimVerificationFlow(t *testing.T) {
	srv := newTestServer(t)
	_, ownerKey := registerUser(t, srv, "owner")
	_, finderKey := registerUser(t, srv, "finder")

	reportFoundPhone(t, srv, finderKey)
	reportLostPhone(t, srv, ownerKey)

	_, body := doJSON(t, http.MethodGet, srv.URL+"/api/me/matches", ownerKey, nil)
	matches := body["matches"].([]interface{})
	matchID := matches[0].(map[string]interface{})["match"].(map[string]interface{})["matchId"].(string)

	// Wrong answers: rejection with a reason, no contact.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/matches/"+matchID+"/verify", ownerKey, map[string]string{
		"answer1": "sunset beach",
		"answer2": "a small bee",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", body["status"])
	assert.Contains(t, body["reason"], "Verification failed")
	assert.Nil(t, body["contact"])

	// The rejection is terminal; correct answers no longer help.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/matches/"+matchID+"/verify", ownerKey, map[string]string{
		"answer1": "mountain lake",
		"answer2": "a small bee",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", body["status"])

	// Fresh pair, correct answers: approval discloses the finder's contact.
	srv2 := newTestServer(t)
	_, ownerKey2 := registerUser(t, srv2, "owner2")
	finderID2, finderKey2 := registerUser(t, srv2, "finder2")
	reportFoundPhone(t, srv2, finderKey2)
	reportLostPhone(t, srv2, ownerKey2)

	_, body = doJSON(t, http.MethodGet, srv2.URL+"/api/me/matches", ownerKey2, nil)
	matchID2 := body["matches"].([]interface{})[0].(map[string]interface{})["match"].(map[string]interface{})["matchId"].(string)

	resp, body = doJSON(t, http.MethodPost, srv2.URL+"/api/matches/"+matchID2+"/verify", ownerKey2, map[string]string{
		"answer1": " Mountain lake ",
		"answer2": "a small bee",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", body["status"])
	contact := body["contact"].(map[string]interface{})
	assert.Equal(t, finderID2, contact["userId"])
	assert.Equal(t, "555-0199", contact["phone"])
}

func TestPublicClaimFlow(t *testing.T) {
	srv := newTestServer(t)
	_, ownerKey := registerUser(t, srv, "owner")
	_, finderKey := registerUser(t, srv, "finder")

	// An off-window found date keeps the automatic matcher quiet.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/items/found", finderKey, map[string]interface{}{
		"name":      "iPhone 13 Pro",
		"category":  "Electronics",
		"location":  "Main Library",
		"foundDate": "2026-06-15",
		"question1": "q1",
		"question2": "q2",
		"answer1":   "a1",
		"answer2":   "a2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	foundID := body["item"].(map[string]interface{})["itemId"].(string)

	// No lost report yet.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/claims/public", ownerKey, map[string]string{"foundItemId": foundID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", body["status"])
	assert.Contains(t, body["reason"], "report your lost item first")

	reportLostPhone(t, srv, ownerKey)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/claims/public", ownerKey, map[string]string{"foundItemId": foundID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "match_created", body["status"])
	matchID := body["matchId"].(string)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/claims/public", ownerKey, map[string]string{"foundItemId": foundID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "match_exists", body["status"])
	assert.Equal(t, matchID, body["matchId"])
}

func TestPrivacyWindowHidesFoundItems(t *testing.T) {
	srv := newTestServer(t)
	ownerID, finderKey := registerUser(t, srv, "finder")
	_, strangerKey := registerUser(t, srv, "stranger")

	body := reportFoundPhone(t, srv, finderKey)
	itemID := body["item"].(map[string]interface{})["itemId"].(string)

	// Inside the window: absent from public listings.
	resp, listing := doJSON(t, http.MethodGet, srv.URL+"/api/items/found", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), listing["total"])

	// The finder can fetch it; anyone else sees 404.
	resp, item := doJSON(t, http.MethodGet, srv.URL+"/api/items/found/"+itemID, finderKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ownerID, item["userId"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/items/found/"+itemID, strangerKey, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/items/found/"+itemID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestItemEditLifecycleGuards(t *testing.T) {
	srv := newTestServer(t)
	_, ownerKey := registerUser(t, srv, "owner")
	_, otherKey := registerUser(t, srv, "other")

	body := reportLostPhone(t, srv, ownerKey)
	itemID := body["item"].(map[string]interface{})["itemId"].(string)

	resp, _ := doJSON(t, http.MethodPatch, srv.URL+"/api/items/lost/"+itemID, ownerKey, map[string]string{
		"description": "black phone, dented corner",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Not the owner: the item is not editable.
	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/items/lost/"+itemID, otherKey, map[string]string{
		"description": "mine now",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/items/lost/"+itemID, ownerKey, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/items/lost/"+itemID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotificationEndpoints(t *testing.T) {
	srv := newTestServer(t)
	_, ownerKey := registerUser(t, srv, "owner")
	_, finderKey := registerUser(t, srv, "finder")

	reportFoundPhone(t, srv, finderKey)
	reportLostPhone(t, srv, ownerKey)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/notifications", ownerKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(1), body["count"])
	n := body["notifications"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "match-alert", n["type"])
	assert.Equal(t, "unread", n["status"])
	notifID := n["notificationId"].(string)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/notifications/"+notifID+"/read", ownerKey, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/notifications/unread-count", ownerKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["unread"])

	// A user cannot touch someone else's notification.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/notifications/"+notifID, finderKey, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/notifications", ownerKey, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	_, key := registerUser(t, srv, "owner")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/items/lost", key, map[string]string{
		"name":     "iPhone 13",
		"category": "Electronics",
		"location": "Main Library",
		"lostDate": "05/01/2026",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/items/lost", key, map[string]string{
		"name":     "iPhone 13",
		"lostDate": "2026-05-01",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/users", "", map[string]string{
		"username": "bad user name!",
		"email":    "x@example.edu",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/items/lost?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListFilters(t *testing.T) {
	srv := newTestServer(t)
	_, key := registerUser(t, srv, "owner")

	reportLostPhone(t, srv, key)
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/items/lost", key, map[string]interface{}{
		"name":     "Red Umbrella",
		"category": "Accessories",
		"location": "Bus Stop B",
		"lostDate": "2026-05-03",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/items/lost?category=Electronics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/items/lost?name=umbrella", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	resp, body = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/items/lost?dateFrom=%s&dateTo=%s", srv.URL, "2026-05-01", "2026-05-02"), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])
}
