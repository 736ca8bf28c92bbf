package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"issue-tracker/accounts"
	"issue-tracker/auth"
	"issue-tracker/config"
	"issue-tracker/orm"
	"issue-tracker/tracker"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "s3cret-passw0rd"

type testEnv struct {
	t      *testing.T
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	db, err := orm.Connect(sqlite.Open(dsn))
	require.NoError(t, err)

	tokens := auth.NewManager(config.AuthConfig{
		Secret:            "0123456789abcdef0123456789abcdef",
		AccessTTLMinutes:  60,
		RefreshTTLMinutes: 24 * 60,
	})

	server := NewServer(accounts.NewService(db), tracker.NewService(db), tokens)

	return &testEnv{t: t, router: server.Router(false)}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

// register creates a user and returns its id.
func (e *testEnv) register(username string) uint {
	e.t.Helper()

	rec := e.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username":         username,
		"email":            username + "@example.com",
		"age":              25,
		"password":         testPassword,
		"password_confirm": testPassword,
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(e.t, rec)

	return uint(body["id"].(float64))
}

// login returns an access token for a previously registered user.
func (e *testEnv) login(username string) string {
	e.t.Helper()

	rec := e.do(http.MethodPost, "/api/v1/auth/token", "", gin.H{
		"username": username,
		"password": testPassword,
	})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(e.t, rec)

	return body["access"].(string)
}

func (e *testEnv) signUp(username string) (uint, string) {
	id := e.register(username)

	return id, e.login(username)
}

func (e *testEnv) createProject(token, name string) string {
	e.t.Helper()

	rec := e.do(http.MethodPost, "/api/v1/projects", token, gin.H{
		"name": name,
		"type": "back-end",
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(e.t, rec)

	return body["id"].(string)
}

func (e *testEnv) createIssue(token, projectID, title string) string {
	e.t.Helper()

	rec := e.do(http.MethodPost,
		"/api/v1/projects/"+projectID+"/issues", token, gin.H{"title": title})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(e.t, rec)

	return body["id"].(string)
}

func TestRegisterRejectsUnderage(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username":         "kid",
		"email":            "kid@example.com",
		"age":              14,
		"password":         testPassword,
		"password_confirm": testPassword,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body, "age")
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username":         "alice",
		"email":            "alice@example.com",
		"age":              25,
		"password":         testPassword,
		"password_confirm": "different-password",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body, "password_confirm")
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body, "email")
	assert.Contains(t, body, "password")
}

func TestTokenFlow(t *testing.T) {
	e := newTestEnv(t)
	e.register("alice")

	rec := e.do(http.MethodPost, "/api/v1/auth/token", "", gin.H{
		"username": "alice",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["access"])
	assert.NotEmpty(t, body["refresh"])

	// Wrong password is unauthorized, not a validation error.
	rec = e.do(http.MethodPost, "/api/v1/auth/token", "", gin.H{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPost, "/api/v1/auth/token/refresh", "", gin.H{
		"refresh": body["refresh"],
	})
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decode(t, rec)
	assert.NotEmpty(t, refreshed["access"])
}

func TestRequiresAuthentication(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodGet, "/api/v1/projects", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileAndUserDirectory(t *testing.T) {
	e := newTestEnv(t)
	aliceID, aliceToken := e.signUp("alice")
	e.register("bob")

	rec := e.do(http.MethodGet, "/api/v1/auth/users/profile", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "alice", body["username"])

	rec = e.do(http.MethodGet, "/api/v1/auth/users", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decode(t, rec)
	assert.EqualValues(t, 2, listing["count"])

	// Only the profile owner may edit it.
	rec = e.do(http.MethodPut,
		fmt.Sprintf("/api/v1/auth/users/%d", aliceID), aliceToken,
		gin.H{"first_name": "Alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)
	assert.Equal(t, "Alice", updated["first_name"])

	bobToken := e.login("bob")
	rec = e.do(http.MethodPut,
		fmt.Sprintf("/api/v1/auth/users/%d", aliceID), bobToken,
		gin.H{"first_name": "Mallory"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProjectHiddenFromNonMembers(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")
	_, malloryToken := e.signUp("mallory")

	projectID := e.createProject(aliceToken, "Tracker")

	rec := e.do(http.MethodGet, "/api/v1/projects/"+projectID, malloryToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Not found.", body["detail"])

	// The owner still sees it, with the author contributor embedded.
	rec = e.do(http.MethodGet, "/api/v1/projects/"+projectID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	project := decode(t, rec)
	contributors := project["contributors"].([]any)
	require.Len(t, contributors, 1)
	author := contributors[0].(map[string]any)
	assert.Equal(t, "author", author["role"])
}

func TestProjectListScopedToMembership(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")
	_, bobToken := e.signUp("bob")

	e.createProject(aliceToken, "Mine")
	e.createProject(bobToken, "Theirs")

	rec := e.do(http.MethodGet, "/api/v1/projects", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["count"])
	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "Mine", results[0].(map[string]any)["name"])
}

func TestProjectWriteAuthorOnly(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")
	bobID, bobToken := e.signUp("bob")

	projectID := e.createProject(aliceToken, "Tracker")

	rec := e.do(http.MethodPost,
		"/api/v1/projects/"+projectID+"/contributor", aliceToken,
		gin.H{"user_id": bobID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(http.MethodPut, "/api/v1/projects/"+projectID, bobToken,
		gin.H{"name": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodDelete, "/api/v1/projects/"+projectID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPut, "/api/v1/projects/"+projectID, aliceToken,
		gin.H{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Renamed", body["name"])
}

func TestContributorManagement(t *testing.T) {
	e := newTestEnv(t)
	aliceID, aliceToken := e.signUp("alice")
	bobID, _ := e.signUp("bob")

	projectID := e.createProject(aliceToken, "Tracker")

	rec := e.do(http.MethodPost,
		"/api/v1/projects/"+projectID+"/contributor", aliceToken,
		gin.H{"user_id": bobID})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "contributor", body["role"])

	// Doubled membership is a field-keyed 400.
	rec = e.do(http.MethodPost,
		"/api/v1/projects/"+projectID+"/contributor", aliceToken,
		gin.H{"user_id": bobID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "user_id")

	// Unknown target user is also a field-keyed 400.
	rec = e.do(http.MethodPost,
		"/api/v1/projects/"+projectID+"/contributor", aliceToken,
		gin.H{"user_id": 9999})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "user_id")

	// The query parameter is mandatory on removal.
	rec = e.do(http.MethodDelete,
		"/api/v1/projects/"+projectID+"/contributor", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodDelete,
		fmt.Sprintf("/api/v1/projects/%s/contributor?user_id=%d", projectID, bobID),
		aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The sole author cannot leave their own project.
	rec = e.do(http.MethodDelete,
		fmt.Sprintf("/api/v1/projects/%s/contributor?user_id=%d", projectID, aliceID),
		aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueAssigneeFlow(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")
	bobID, _ := e.signUp("bob")
	malloryID, _ := e.signUp("mallory")

	projectID := e.createProject(aliceToken, "Tracker")

	rec := e.do(http.MethodPost,
		"/api/v1/projects/"+projectID+"/contributor", aliceToken,
		gin.H{"user_id": bobID})
	require.Equal(t, http.StatusCreated, rec.Code)

	issueID := e.createIssue(aliceToken, projectID, "Crash on save")
	issuePath := "/api/v1/projects/" + projectID + "/issues/" + issueID

	rec = e.do(http.MethodPatch, issuePath, aliceToken,
		gin.H{"assignee_id": bobID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assignee := body["assignee"].(map[string]any)
	assert.Equal(t, "bob", assignee["username"])

	// A non-contributor cannot be assigned.
	rec = e.do(http.MethodPatch, issuePath, aliceToken,
		gin.H{"assignee_id": malloryID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "assignee")

	// Explicit null clears the assignee.
	rec = e.do(http.MethodPatch, issuePath, aliceToken,
		gin.H{"assignee_id": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Nil(t, body["assignee"])
}

func TestIssueDefaultsAndEnumValidation(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")
	projectID := e.createProject(aliceToken, "Tracker")

	rec := e.do(http.MethodPost,
		"/api/v1/projects/"+projectID+"/issues", aliceToken,
		gin.H{"title": "Crash on save"})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "MEDIUM", body["priority"])
	assert.Equal(t, "TASK", body["tag"])
	assert.Equal(t, "To Do", body["status"])

	rec = e.do(http.MethodPost,
		"/api/v1/projects/"+projectID+"/issues", aliceToken,
		gin.H{"title": "Bad", "priority": "URGENT"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "priority")
}

func TestIssueWriteAuthorOnly(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")
	bobID, bobToken := e.signUp("bob")

	projectID := e.createProject(aliceToken, "Tracker")
	rec := e.do(http.MethodPost,
		"/api/v1/projects/"+projectID+"/contributor", aliceToken,
		gin.H{"user_id": bobID})
	require.Equal(t, http.StatusCreated, rec.Code)

	issueID := e.createIssue(aliceToken, projectID, "Crash on save")
	issuePath := "/api/v1/projects/" + projectID + "/issues/" + issueID

	// A fellow contributor can read but not mutate.
	rec = e.do(http.MethodGet, issuePath, bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodPatch, issuePath, bobToken,
		gin.H{"status": "Finished"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodDelete, issuePath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIssuePutRequiresFullPayload(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")
	projectID := e.createProject(aliceToken, "Tracker")
	issueID := e.createIssue(aliceToken, projectID, "Crash on save")
	issuePath := "/api/v1/projects/" + projectID + "/issues/" + issueID

	// A sparse body is a PATCH, not a PUT.
	rec := e.do(http.MethodPut, issuePath, aliceToken,
		gin.H{"status": "Finished"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body, "title")
	assert.Contains(t, body, "priority")
	assert.Contains(t, body, "tag")

	rec = e.do(http.MethodPut, issuePath, aliceToken, gin.H{
		"title":    "Replaced",
		"priority": "HIGH",
		"tag":      "BUG",
		"status":   "Finished",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decode(t, rec)
	assert.Equal(t, "Replaced", body["title"])
	assert.Equal(t, "HIGH", body["priority"])
	// An omitted description is replaced with its zero value.
	assert.Equal(t, "", body["description"])

	rec = e.do(http.MethodPatch, issuePath, aliceToken,
		gin.H{"status": "In Progress"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "In Progress", body["status"])
	assert.Equal(t, "Replaced", body["title"])
}

func TestIssuePagination(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")
	projectID := e.createProject(aliceToken, "Tracker")

	for i := 0; i < 15; i++ {
		e.createIssue(aliceToken, projectID, fmt.Sprintf("Issue %d", i))
	}

	rec := e.do(http.MethodGet,
		"/api/v1/projects/"+projectID+"/issues", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 15, body["count"])
	assert.Len(t, body["results"].([]any), 10)
	assert.Nil(t, body["previous"])

	// Links are absolute URIs pointing back at the requested host.
	next, ok := body["next"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(next, "http://example.com/api/v1/projects/"))
	assert.Contains(t, next, "page=2")

	rec = e.do(http.MethodGet,
		"/api/v1/projects/"+projectID+"/issues?page=2", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body["results"].([]any), 5)
	assert.Nil(t, body["next"])
	assert.NotNil(t, body["previous"])
}

func TestIssuePathMustMatchProject(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")

	firstProject := e.createProject(aliceToken, "First")
	secondProject := e.createProject(aliceToken, "Second")
	issueID := e.createIssue(aliceToken, firstProject, "Crash on save")

	rec := e.do(http.MethodGet,
		"/api/v1/projects/"+secondProject+"/issues/"+issueID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A malformed identifier reads the same as a missing resource.
	rec = e.do(http.MethodGet,
		"/api/v1/projects/not-a-uuid", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommentFlow(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")
	bobID, bobToken := e.signUp("bob")

	projectID := e.createProject(aliceToken, "Tracker")
	rec := e.do(http.MethodPost,
		"/api/v1/projects/"+projectID+"/contributor", aliceToken,
		gin.H{"user_id": bobID})
	require.Equal(t, http.StatusCreated, rec.Code)

	issueID := e.createIssue(aliceToken, projectID, "Crash on save")
	commentsPath := "/api/v1/projects/" + projectID + "/issues/" + issueID + "/comments"

	rec = e.do(http.MethodPost, commentsPath, bobToken,
		gin.H{"description": "Reproduced on main"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	commentID := body["uuid"].(string)
	assert.Equal(t, "bob", body["author"].(map[string]any)["username"])

	// Everyone on the project reads it; only bob may edit it.
	rec = e.do(http.MethodGet, commentsPath+"/"+commentID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodPatch, commentsPath+"/"+commentID, aliceToken,
		gin.H{"description": "edited"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPatch, commentsPath+"/"+commentID, bobToken,
		gin.H{"description": "edited"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", decode(t, rec)["description"])

	rec = e.do(http.MethodDelete, commentsPath+"/"+commentID, bobToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(http.MethodGet, commentsPath+"/"+commentID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectDeleteCascadesOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.signUp("alice")

	projectID := e.createProject(aliceToken, "Tracker")
	issueID := e.createIssue(aliceToken, projectID, "Crash on save")

	rec := e.do(http.MethodDelete, "/api/v1/projects/"+projectID, aliceToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(http.MethodGet, "/api/v1/projects/"+projectID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodGet,
		"/api/v1/projects/"+projectID+"/issues/"+issueID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
