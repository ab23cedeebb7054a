package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/election-admin/internal/api/middleware"
	"github.com/vietanh2810/election-admin/internal/domain"
	"github.com/vietanh2810/election-admin/internal/service"
	"github.com/vietanh2810/election-admin/internal/testutil"
	"github.com/vietanh2810/election-admin/internal/web"
)

const testUserHeader = "X-Test-User"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	repo   *testutil.MemoryElectionRepository
	events *testutil.RecordingPublisher
	alice  domain.User
	bob    domain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := testutil.NewMemoryUserRepository()
	alice, err := users.Create(context.Background(), domain.User{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	bob, err := users.Create(context.Background(), domain.User{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	repo := testutil.NewMemoryElectionRepository()
	events := &testutil.RecordingPublisher{}
	h := NewElectionHandler(service.NewElectionService(repo, events), service.NewUserService(users))

	tmpl, err := web.Templates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(func(ctx *gin.Context) {
		if id, err := strconv.ParseUint(ctx.GetHeader(testUserHeader), 10, 64); err == nil {
			ctx.Set(middleware.ContextKeyUserID, uint(id))
		}
	})

	r.GET("/home", h.HandleHome)
	r.GET("/election", h.HandleListElections)
	r.POST("/election", h.HandleCreateElection)
	r.GET("/election/:electionID", h.HandleGetElection)
	r.POST("/election/:electionID", h.HandleRenameElection)
	r.DELETE("/election/:electionID", h.HandleDeleteElection)
	r.GET("/election/:electionID/launch", h.HandleLaunchElection)
	r.PUT("/election/:electionID/launch", h.HandleLaunchElection)
	r.PUT("/election/:electionID/end", h.HandleEndElection)
	r.GET("/election/:electionID/questions", h.HandleListQuestions)
	r.POST("/election/:electionID/questions/add", h.HandleAddQuestion)
	r.GET("/election/:electionID/question/:questionID", h.HandleGetQuestion)
	r.DELETE("/election/:electionID/question/:questionID", h.HandleDeleteQuestion)
	r.GET("/election/:electionID/question/:questionID/edit", h.HandleEditQuestionPage)
	r.POST("/election/:electionID/question/:questionID/update", h.HandleUpdateQuestion)
	r.GET("/election/:electionID/question/:questionID/options", h.HandleListOptions)
	r.POST("/election/:electionID/question/:questionID/options/add", h.HandleAddOption)
	r.DELETE("/election/:electionID/question/:questionID/option/:optionID", h.HandleDeleteOption)
	r.GET("/election/:electionID/question/:questionID/option/:optionID/edit", h.HandleEditOptionPage)
	r.POST("/election/:electionID/question/:questionID/option/:optionID/update", h.HandleUpdateOption)

	return &testEnv{router: r, repo: repo, events: events, alice: alice, bob: bob}
}

type call struct {
	method string
	path   string
	user   domain.User
	form   url.Values
	accept string
}

func (e *testEnv) do(c call) *httptest.ResponseRecorder {
	var req *http.Request
	if c.form != nil {
		req = httptest.NewRequest(c.method, c.path, strings.NewReader(c.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(c.method, c.path, nil)
	}
	if c.user.ID != 0 {
		req.Header.Set(testUserHeader, strconv.FormatUint(uint64(c.user.ID), 10))
	}
	if c.accept != "" {
		req.Header.Set("Accept", c.accept)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// createElection posts the create form and returns the new election id.
func (e *testEnv) createElection(t *testing.T, user domain.User, name string) uint {
	t.Helper()

	w := e.do(call{method: http.MethodPost, path: "/election", user: user, form: url.Values{"name": {name}}})
	require.Equal(t, http.StatusFound, w.Code)

	id, err := strconv.ParseUint(strings.TrimPrefix(w.Header().Get("Location"), "/election/"), 10, 64)
	require.NoError(t, err)
	return uint(id)
}

func (e *testEnv) questions(t *testing.T, electionID uint) []domain.Question {
	t.Helper()

	w := e.do(call{method: http.MethodGet, path: fmt.Sprintf("/election/%d/questions", electionID), user: e.alice})
	require.Equal(t, http.StatusOK, w.Code)

	var questions []domain.Question
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	return questions
}

func (e *testEnv) options(t *testing.T, electionID, questionID uint) []domain.Option {
	t.Helper()

	w := e.do(call{method: http.MethodGet, path: fmt.Sprintf("/election/%d/question/%d/options", electionID, questionID), user: e.alice})
	require.Equal(t, http.StatusOK, w.Code)

	var options []domain.Option
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))
	return options
}

func flashOf(w *httptest.ResponseRecorder) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookieName {
			v, _ := url.QueryUnescape(c.Value)
			return v
		}
	}
	return ""
}

func TestElectionHandler_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	id := env.createElection(t, env.alice, "  Board election ")

	w := env.do(call{method: http.MethodGet, path: fmt.Sprintf("/election/%d", id), user: env.alice, accept: gin.MIMEJSON})
	require.Equal(t, http.StatusOK, w.Code)
	var election domain.Election
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &election))
	assert.Equal(t, "Board election", election.Name)
	assert.Equal(t, domain.ElectionDraft, election.Status)

	w = env.do(call{method: http.MethodGet, path: fmt.Sprintf("/election/%d", id), user: env.alice})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Board election")
	assert.Contains(t, w.Body.String(), "Draft")

	w = env.do(call{method: http.MethodGet, path: "/election", user: env.alice})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), gin.MIMEJSON)
	assert.Contains(t, w.Body.String(), `"elections":[`)

	w = env.do(call{method: http.MethodGet, path: "/home", user: env.alice})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome, Alice")
}

func TestElectionHandler_CreateInvalidName(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(call{method: http.MethodPost, path: "/election", user: env.alice, form: url.Values{"name": {"   "}}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/elections/new", w.Header().Get("Location"))
	assert.NotEmpty(t, flashOf(w))
	assert.Empty(t, env.events.Events())
}

func TestElectionHandler_Rename(t *testing.T) {
	env := newTestEnv(t)
	id := env.createElection(t, env.alice, "Old")
	path := fmt.Sprintf("/election/%d", id)

	w := env.do(call{method: http.MethodPost, path: path, user: env.alice, form: url.Values{"name": {"New"}}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, path, w.Header().Get("Location"))

	w = env.do(call{method: http.MethodGet, path: path, user: env.alice, accept: gin.MIMEJSON})
	assert.Contains(t, w.Body.String(), `"name":"New"`)
}

func TestElectionHandler_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(call{method: http.MethodGet, path: "/election"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestElectionHandler_NotFoundAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	id := env.createElection(t, env.alice, "Board election")
	path := fmt.Sprintf("/election/%d", id)

	w := env.do(call{method: http.MethodGet, path: "/election/999", user: env.alice, accept: gin.MIMEJSON})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(call{method: http.MethodGet, path: "/election/abc", user: env.alice, accept: gin.MIMEJSON})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(call{method: http.MethodGet, path: path, user: env.bob, accept: gin.MIMEJSON})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(call{method: http.MethodGet, path: path, user: env.bob})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), gin.MIMEHTML)

	w = env.do(call{method: http.MethodPost, path: path, user: env.bob, form: url.Values{"name": {"Mine now"}}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(call{method: http.MethodDelete, path: path, user: env.bob})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(call{method: http.MethodGet, path: path, user: env.alice, accept: gin.MIMEJSON})
	assert.Contains(t, w.Body.String(), `"name":"Board election"`)
}

func TestElectionHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	id := env.createElection(t, env.alice, "Board election")
	path := fmt.Sprintf("/election/%d", id)

	w := env.do(call{method: http.MethodPut, path: path + "/end", user: env.alice})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(call{method: http.MethodGet, path: path + "/launch", user: env.alice})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, path, w.Header().Get("Location"))
	assert.Empty(t, flashOf(w))

	w = env.do(call{method: http.MethodGet, path: path + "/launch", user: env.alice})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.NotEmpty(t, flashOf(w))

	w = env.do(call{method: http.MethodPut, path: path + "/launch", user: env.alice})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(call{method: http.MethodPut, path: path + "/end", user: env.alice})
	require.Equal(t, http.StatusOK, w.Code)
	var election domain.Election
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &election))
	assert.Equal(t, domain.ElectionEnded, election.Status)
	assert.NotNil(t, election.EndedAt)

	w = env.do(call{method: http.MethodPut, path: path + "/end", user: env.alice})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(call{method: http.MethodPut, path: "/election/999/launch", user: env.alice})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(call{method: http.MethodDelete, path: path, user: env.alice})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = env.do(call{method: http.MethodGet, path: path, user: env.alice, accept: gin.MIMEJSON})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestElectionHandler_Ballot(t *testing.T) {
	env := newTestEnv(t)
	id := env.createElection(t, env.alice, "Board election")
	path := fmt.Sprintf("/election/%d", id)

	w := env.do(call{method: http.MethodPost, path: path + "/questions/add", user: env.alice,
		form: url.Values{"title": {"Chair"}, "description": {"Pick one"}}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, path, w.Header().Get("Location"))

	questions := env.questions(t, id)
	require.Len(t, questions, 1)
	q := questions[0]
	assert.Equal(t, "Chair", q.Title)
	qPath := fmt.Sprintf("%s/question/%d", path, q.ID)

	for _, value := range []string{"Ada", "Ada"} {
		w = env.do(call{method: http.MethodPost, path: qPath + "/options/add", user: env.alice, form: url.Values{"option": {value}}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, qPath, w.Header().Get("Location"))
	}

	options := env.options(t, id, q.ID)
	require.Len(t, options, 2)
	assert.Equal(t, options[0].Value, options[1].Value)

	oPath := fmt.Sprintf("%s/option/%d", qPath, options[1].ID)
	w = env.do(call{method: http.MethodPost, path: oPath + "/update", user: env.alice, form: url.Values{"value": {"Grace"}}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "Grace", env.options(t, id, q.ID)[1].Value)

	w = env.do(call{method: http.MethodGet, path: oPath + "/edit", user: env.alice})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Grace"`)

	w = env.do(call{method: http.MethodGet, path: qPath, user: env.alice})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Grace")

	w = env.do(call{method: http.MethodPost, path: qPath + "/update", user: env.alice, form: url.Values{"title": {"President"}}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, path, w.Header().Get("Location"))

	w = env.do(call{method: http.MethodGet, path: qPath, user: env.alice, accept: gin.MIMEJSON})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"President"`)
	assert.Contains(t, w.Body.String(), `"description":""`)

	w = env.do(call{method: http.MethodGet, path: qPath + "/edit", user: env.alice})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(call{method: http.MethodDelete, path: oPath, user: env.alice})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.options(t, id, q.ID), 1)

	w = env.do(call{method: http.MethodDelete, path: oPath, user: env.alice})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(call{method: http.MethodDelete, path: qPath, user: env.alice})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.questions(t, id))

	questionCount, optionCount := env.repo.Counts()
	assert.Zero(t, questionCount)
	assert.Zero(t, optionCount)
}

func TestElectionHandler_BallotLockedAfterLaunch(t *testing.T) {
	env := newTestEnv(t)
	id := env.createElection(t, env.alice, "Board election")
	path := fmt.Sprintf("/election/%d", id)

	env.do(call{method: http.MethodPost, path: path + "/questions/add", user: env.alice, form: url.Values{"title": {"Chair"}}})
	q := env.questions(t, id)[0]
	qPath := fmt.Sprintf("%s/question/%d", path, q.ID)

	w := env.do(call{method: http.MethodPut, path: path + "/launch", user: env.alice})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(call{method: http.MethodPost, path: path + "/questions/add", user: env.alice, form: url.Values{"title": {"Treasurer"}}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, path, w.Header().Get("Location"))
	assert.NotEmpty(t, flashOf(w))
	assert.Len(t, env.questions(t, id), 1)

	w = env.do(call{method: http.MethodPost, path: qPath + "/options/add", user: env.alice, form: url.Values{"option": {"Ada"}}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.NotEmpty(t, flashOf(w))
	assert.Empty(t, env.options(t, id, q.ID))

	w = env.do(call{method: http.MethodDelete, path: qPath, user: env.alice})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(call{method: http.MethodPost, path: path, user: env.alice, form: url.Values{"name": {"Renamed"}}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Empty(t, flashOf(w))
}

func TestElectionHandler_NestedNotFound(t *testing.T) {
	env := newTestEnv(t)
	first := env.createElection(t, env.alice, "First")
	second := env.createElection(t, env.alice, "Second")

	env.do(call{method: http.MethodPost, path: fmt.Sprintf("/election/%d/questions/add", first), user: env.alice, form: url.Values{"title": {"Chair"}}})
	q := env.questions(t, first)[0]

	w := env.do(call{method: http.MethodGet, path: fmt.Sprintf("/election/%d/question/%d", second, q.ID), user: env.alice, accept: gin.MIMEJSON})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(call{method: http.MethodGet, path: fmt.Sprintf("/election/%d/question/%d/options", first, q.ID+100), user: env.alice})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(call{method: http.MethodGet, path: fmt.Sprintf("/election/%d/question/%d/option/999/edit", first, q.ID), user: env.alice})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
