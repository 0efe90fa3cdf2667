package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcoskids/marcos/internal/answers"
	"github.com/marcoskids/marcos/internal/badges"
	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/engine"
	"github.com/marcoskids/marcos/internal/logging"
	"github.com/marcoskids/marcos/internal/notify"
	"github.com/marcoskids/marcos/internal/store"
	"github.com/marcoskids/marcos/internal/sweep"
)

var today = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type apiFixture struct {
	router *gin.Engine
	eng    *engine.Engine
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(store.MemoryDSN(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cat, err := content.Default()
	require.NoError(t, err)

	bus := notify.NewBus(nil)
	t.Cleanup(bus.Close)

	eng := engine.New(st, cat, engine.Options{
		Bus: bus,
		Now: func() time.Time { return today },
	})
	log := logging.Nop()
	sweeper := sweep.New(st.Repos().Children, eng, log)

	router := NewRouter(RouterConfig{
		Logger:           log,
		HealthHandler:    NewHealthHandler(st),
		ChildHandler:     NewChildHandler(eng),
		JourneyHandler:   NewJourneyHandler(eng),
		ProgressHandler:  NewProgressHandler(eng),
		StreamHandler:    NewStreamHandler(bus, 8, log),
		RecomputeHandler: NewRecomputeHandler(sweeper, sweep.Options{Concurrency: 2}),
	})
	return &apiFixture{router: router, eng: eng}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func (f *apiFixture) registerChild(t *testing.T, birth time.Time) string {
	t.Helper()
	rec, out := f.do(t, http.MethodPost, "/v1/children", map[string]any{
		"user_id":    "u1",
		"name":       "Bia",
		"birth_date": birth.Format(time.DateOnly),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return out["child"].(map[string]any)["id"].(string)
}

func errorCode(out map[string]any) string {
	e, _ := out["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthz(t *testing.T) {
	f := newAPI(t)
	rec, _ := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestID_Propagated(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
}

func TestRegisterChild_Errors(t *testing.T) {
	f := newAPI(t)

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"missing fields", map[string]any{"name": "x"}, "invalid_request"},
		{"bad date", map[string]any{"user_id": "u1", "name": "x", "birth_date": "01/02/2025"}, "invalid_birth_date"},
		{"future birth", map[string]any{"user_id": "u1", "name": "x", "birth_date": "2027-01-01"}, "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := f.do(t, http.MethodPost, "/v1/children", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, errorCode(out))
		})
	}
}

func TestGetChild(t *testing.T) {
	f := newAPI(t)
	id := f.registerChild(t, today.AddDate(0, 0, -56))

	rec, out := f.do(t, http.MethodGet, "/v1/children/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	age := out["age"].(map[string]any)
	assert.EqualValues(t, 8, age["weeks"])

	rec, out = f.do(t, http.MethodGet, "/v1/children/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(out))

	rec, out = f.do(t, http.MethodGet, "/v1/children?user_id=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["children"], 1)
}

func TestStartJourney_CreatedThenResumed(t *testing.T) {
	f := newAPI(t)
	id := f.registerChild(t, today.AddDate(0, 0, -56))

	rec, out := f.do(t, http.MethodPost, "/v1/children/"+id+"/journey", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["content_available"])
	assert.Equal(t, false, out["resumed"])
	sess := out["session"].(map[string]any)
	assert.EqualValues(t, 7, sess["total_questions"])
	assert.NotNil(t, sess["current_question"])

	rec, out = f.do(t, http.MethodPost, "/v1/children/"+id+"/journey", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["resumed"])
	assert.Equal(t, sess["id"], out["session"].(map[string]any)["id"])
}

func TestStartJourney_ContentGap(t *testing.T) {
	f := newAPI(t)
	id := f.registerChild(t, today.AddDate(-7, 0, 0))

	rec, out := f.do(t, http.MethodPost, "/v1/children/"+id+"/journey", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["content_available"])
	assert.Nil(t, out["session"])
}

func TestAnswer_ValidationErrors(t *testing.T) {
	f := newAPI(t)
	id := f.registerChild(t, today.AddDate(0, 0, -56))
	_, out := f.do(t, http.MethodPost, "/v1/children/"+id+"/journey", nil)
	sess := out["session"].(map[string]any)
	sid := sess["id"].(string)
	qid := sess["current_question"].(map[string]any)["id"].(string)

	rec, out := f.do(t, http.MethodPost, "/v1/sessions/"+sid+"/answers", map[string]any{"question_id": qid, "answer": "maybe"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_answer_value", errorCode(out))

	rec, out = f.do(t, http.MethodPost, "/v1/sessions/"+sid+"/answers", map[string]any{"question_id": qid, "answer": 7})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_answer_value", errorCode(out))

	rec, out = f.do(t, http.MethodPost, "/v1/sessions/"+sid+"/answers", map[string]any{"question_id": "m99-q1", "answer": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "question_not_in_session", errorCode(out))

	rec, _ = f.do(t, http.MethodPost, "/v1/sessions/"+sid+"/pause", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, out = f.do(t, http.MethodPost, "/v1/sessions/"+sid+"/answers", map[string]any{"question_id": qid, "answer": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "session_paused", errorCode(out))

	rec, out = f.do(t, http.MethodGet, "/v1/sessions/"+sid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, out["session"].(map[string]any)["answered_questions"])

	rec, out = f.do(t, http.MethodPost, "/v1/sessions/missing/answers", map[string]any{"question_id": qid, "answer": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(out))
}

func TestJourney_EndToEnd(t *testing.T) {
	f := newAPI(t)
	id := f.registerChild(t, today.AddDate(0, 0, -56))
	_, out := f.do(t, http.MethodPost, "/v1/children/"+id+"/journey", nil)
	sess := out["session"].(map[string]any)
	sid := sess["id"].(string)

	firstQID := sess["current_question"].(map[string]any)["id"]
	answersGiven := []any{1, "sim", "2", "unknown", 1, 3, "yes"}
	for i, a := range answersGiven {
		q, ok := sess["current_question"].(map[string]any)
		require.True(t, ok, "step %d: no current question", i)

		rec, body := f.do(t, http.MethodPost, "/v1/sessions/"+sid+"/answers", map[string]any{
			"question_id": q["id"],
			"answer":      a,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := body["response"].(map[string]any)
		assert.NotEmpty(t, resp["feedback"])
		sess = body["session"].(map[string]any)
		assert.EqualValues(t, i+1, sess["answered_questions"])
	}
	assert.Equal(t, "completed", sess["status"])
	assert.Nil(t, sess["current_question"])

	rec, out := f.do(t, http.MethodGet, "/v1/children/"+id+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 100, out["progress"].(map[string]any)["overall"])

	rec, out = f.do(t, http.MethodGet, "/v1/children/"+id+"/progress?cached=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["cached"])
	assert.EqualValues(t, 100, out["progress"].(map[string]any)["overall"])

	rec, out = f.do(t, http.MethodGet, "/v1/children/"+id+"/badges", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ids := map[string]bool{}
	for _, b := range out["badges"].([]any) {
		bm := b.(map[string]any)
		ids[bm["id"].(string)] = true
		assert.NotEmpty(t, bm["name"])
	}
	assert.True(t, ids[badges.FirstResponse])
	assert.True(t, ids[badges.FirstJourney])

	rec, out = f.do(t, http.MethodGet, "/v1/children/"+id+"/notifications?limit=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := out["notifications"].([]any)
	assert.Len(t, events, len(ids)+1)
	last := events[len(events)-1].(map[string]any)
	assert.Equal(t, string(notify.KindSessionCompleted), last["kind"])
	assert.Equal(t, last["seq"], out["next_after"])

	rec, out = f.do(t, http.MethodGet, "/v1/children/"+id+"/notifications?after="+jsonNumber(out["next_after"]), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, out["notifications"])

	rec, out = f.do(t, http.MethodGet, "/v1/sessions/"+sid+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 100, out["summary"].(map[string]any)["percent"])

	// A retried submission of the stored answer succeeds without changes.
	rec, out = f.do(t, http.MethodPost, "/v1/sessions/"+sid+"/answers", map[string]any{"question_id": firstQID, "answer": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "completed", out["session"].(map[string]any)["status"])
	assert.Empty(t, out["new_badges"])

	rec, out = f.do(t, http.MethodPost, "/v1/sessions/"+sid+"/answers", map[string]any{"question_id": firstQID, "answer": 2})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "session_completed", errorCode(out))

	rec, out = f.do(t, http.MethodGet, "/v1/children/"+id+"/notifications?limit=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["notifications"], len(events))
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestNotifications_BadQuery(t *testing.T) {
	f := newAPI(t)
	rec, out := f.do(t, http.MethodGet, "/v1/children/x/notifications?after=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(out))

	rec, _ = f.do(t, http.MethodGet, "/v1/children/x/notifications?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecompute(t *testing.T) {
	f := newAPI(t)
	id := f.registerChild(t, today.AddDate(0, 0, -56))

	rec, out := f.do(t, http.MethodPost, "/v1/recompute", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(out))

	rec, out = f.do(t, http.MethodPost, "/v1/recompute", map[string]any{"child_id": id, "user_id": "u1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = f.do(t, http.MethodPost, "/v1/recompute", map[string]any{"recalculate_all": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := out["report"].(map[string]any)
	assert.EqualValues(t, 1, report["succeeded"])
	assert.EqualValues(t, 0, report["failed"])
	results := report["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, id, results[0].(map[string]any)["child_id"])

	rec, out = f.do(t, http.MethodPost, "/v1/recompute", map[string]any{"child_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(out))
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		raw  string
		want answers.Value
		err  bool
	}{
		{`1`, answers.Yes, false},
		{`"2"`, answers.No, false},
		{`"nao_sei"`, answers.Unknown, false},
		{` 3 `, answers.Unknown, false},
		{`"talvez"`, 0, true},
		{`1.5`, 0, true},
		{`{}`, 0, true},
	}
	for _, tt := range tests {
		got, err := parseAnswer(json.RawMessage(tt.raw))
		if tt.err {
			assert.ErrorIs(t, err, answers.ErrInvalidAnswerValue, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
