package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"questionbank/handlers"
	"questionbank/internal/testutil"
	"questionbank/middleware"
	"questionbank/routes"
	"questionbank/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type choiceShape struct {
	ChoiceText string `json:"choice_text"`
	IsCorrect  bool   `json:"is_correct"`
}

type questionShape struct {
	ID           uint          `json:"id"`
	QuestionText string        `json:"question_text"`
	Choices      []choiceShape `json:"choices"`
}

type testServer struct {
	router *gin.Engine
	hub    *services.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := services.NewHub()
	go hub.Run(ctx)

	svc := services.NewQuestionService(testutil.NewDB(t), hub)
	router := gin.New()
	router.Use(middleware.RequestID())
	routes.SetupRoutes(router, handlers.NewQuestionHandler(svc), hub)

	return &testServer{router: router, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func (s *testServer) create(t *testing.T, body string) questionShape {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/questions/", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	var q questionShape
	decode(t, rec, &q)
	return q
}

func TestCreateQuestionEchoesFullShape(t *testing.T) {
	s := newTestServer(t)

	q := s.create(t, `{"question_text":"2+2=?","choices":[{"choice_text":"4","is_correct":true},{"choice_text":"5","is_correct":false}]}`)

	if q.ID == 0 || q.QuestionText != "2+2=?" {
		t.Fatalf("unexpected response: %+v", q)
	}
	want := []choiceShape{{"4", true}, {"5", false}}
	if len(q.Choices) != len(want) {
		t.Fatalf("choices = %+v, want %+v", q.Choices, want)
	}
	for i := range want {
		if q.Choices[i] != want[i] {
			t.Errorf("choices[%d] = %+v, want %+v", i, q.Choices[i], want[i])
		}
	}
}

func TestCreateQuestionAcceptsEmptyChoices(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/questions/", `{"question_text":"Anything?","choices":[]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"choices":[]`) {
		t.Errorf("expected empty choices array, got %s", rec.Body.String())
	}
}

func TestCreateQuestionAcceptsEmptyTexts(t *testing.T) {
	s := newTestServer(t)

	created := s.create(t, `{"question_text":"","choices":[{"choice_text":"","is_correct":false}]}`)
	if created.QuestionText != "" || len(created.Choices) != 1 || created.Choices[0] != (choiceShape{"", false}) {
		t.Fatalf("unexpected create response: %+v", created)
	}

	var got questionShape
	decode(t, s.do(t, http.MethodGet, "/questions/"+itoa(created.ID), ""), &got)
	if got.ID != created.ID || got.QuestionText != "" || len(got.Choices) != 1 || got.Choices[0] != (choiceShape{"", false}) {
		t.Errorf("unexpected question: %+v", got)
	}

	rec := s.do(t, http.MethodPut, "/questions/"+itoa(created.ID), `{"question_text":"","choices":[{"choice_text":"","is_correct":true}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &got)
	if got.QuestionText != "" || len(got.Choices) != 1 || got.Choices[0] != (choiceShape{"", true}) {
		t.Errorf("unexpected update response: %+v", got)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	s := newTestServer(t)

	cases := map[string]string{
		"malformed json":        `{"question_text":`,
		"missing question_text": `{"choices":[]}`,
		"missing choices":       `{"question_text":"Q"}`,
		"missing choice_text":   `{"question_text":"Q","choices":[{"is_correct":true}]}`,
		"missing is_correct":    `{"question_text":"Q","choices":[{"choice_text":"A"}]}`,
		"wrong type":            `{"question_text":"Q","choices":[{"choice_text":"A","is_correct":"yes"}]}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/questions/", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}

	list := s.do(t, http.MethodGet, "/questions/", "")
	if strings.TrimSpace(list.Body.String()) != "[]" {
		t.Errorf("invalid requests reached the store: %s", list.Body.String())
	}
}

func TestGetQuestion(t *testing.T) {
	s := newTestServer(t)
	created := s.create(t, `{"question_text":"Q","choices":[{"choice_text":"A","is_correct":false}]}`)

	rec := s.do(t, http.MethodGet, "/questions/"+itoa(created.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got questionShape
	decode(t, rec, &got)
	if got.ID != created.ID || got.QuestionText != "Q" || len(got.Choices) != 1 || got.Choices[0] != (choiceShape{"A", false}) {
		t.Errorf("unexpected question: %+v", got)
	}
}

func TestMissingQuestionReturns404(t *testing.T) {
	s := newTestServer(t)
	body := `{"question_text":"Q","choices":[]}`

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		reqBody := ""
		if method == http.MethodPut {
			reqBody = body
		}
		for _, id := range []string{"42", "0", "-1", "4294967296", "99999999999999999999"} {
			rec := s.do(t, method, "/questions/"+id, reqBody)
			if rec.Code != http.StatusNotFound {
				t.Errorf("%s %s: status = %d, want 404", method, id, rec.Code)
				continue
			}
			var errResp handlers.ErrorResponse
			decode(t, rec, &errResp)
			if errResp.Error != "Question not found" {
				t.Errorf("%s %s: error = %q", method, id, errResp.Error)
			}
		}
	}
}

func TestInvalidQuestionID(t *testing.T) {
	s := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		for _, id := range []string{"abc", "1.5", "1e3"} {
			rec := s.do(t, method, "/questions/"+id, `{"question_text":"Q","choices":[]}`)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s %s: status = %d, want 400", method, id, rec.Code)
			}
		}
	}
}

func TestListQuestionsPagination(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 12; i++ {
		s.create(t, `{"question_text":"Q`+itoa(uint(i))+`","choices":[{"choice_text":"A","is_correct":true}]}`)
	}

	cases := []struct {
		query string
		want  int
	}{
		{"", 10},
		{"?skip=0&limit=2", 2},
		{"?skip=11&limit=2", 1},
		{"?skip=20&limit=2", 0},
		{"?limit=50", 12},
		{"?limit=0", 0},
		{"?skip=3&limit=0", 0},
	}

	for _, tc := range cases {
		rec := s.do(t, http.MethodGet, "/questions/"+tc.query, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%q: status %d", tc.query, rec.Code)
		}
		var got []questionShape
		decode(t, rec, &got)
		if got == nil {
			t.Errorf("%q: expected a JSON array, got %s", tc.query, rec.Body.String())
		}
		if len(got) != tc.want {
			t.Errorf("%q: %d questions, want %d", tc.query, len(got), tc.want)
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].ID >= got[i].ID {
				t.Errorf("%q: not ordered by id: %d then %d", tc.query, got[i-1].ID, got[i].ID)
			}
		}
	}
}

func TestListQuestionsRejectsBadPaging(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"?skip=-1", "?limit=-5", "?skip=abc", "?limit=1.5"} {
		rec := s.do(t, http.MethodGet, "/questions/"+query, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestUpdateQuestionReplacesChoices(t *testing.T) {
	s := newTestServer(t)
	created := s.create(t, `{"question_text":"Old","choices":[{"choice_text":"A","is_correct":true},{"choice_text":"B","is_correct":false}]}`)
	path := "/questions/" + itoa(created.ID)

	rec := s.do(t, http.MethodPut, path, `{"question_text":"New","choices":[{"choice_text":"C","is_correct":true}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var updated questionShape
	decode(t, rec, &updated)
	if updated.ID != created.ID || updated.QuestionText != "New" || len(updated.Choices) != 1 || updated.Choices[0] != (choiceShape{"C", true}) {
		t.Errorf("unexpected update response: %+v", updated)
	}

	var got questionShape
	decode(t, s.do(t, http.MethodGet, path, ""), &got)
	if len(got.Choices) != 1 || got.Choices[0].ChoiceText != "C" {
		t.Errorf("choices were merged, not replaced: %+v", got.Choices)
	}
}

func TestUpdateQuestionValidation(t *testing.T) {
	s := newTestServer(t)
	created := s.create(t, `{"question_text":"Old","choices":[{"choice_text":"A","is_correct":true}]}`)
	path := "/questions/" + itoa(created.ID)

	rec := s.do(t, http.MethodPut, path, `{"question_text":"New"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var got questionShape
	decode(t, s.do(t, http.MethodGet, path, ""), &got)
	if got.QuestionText != "Old" || len(got.Choices) != 1 {
		t.Errorf("rejected update mutated the question: %+v", got)
	}
}

func TestDeleteQuestion(t *testing.T) {
	s := newTestServer(t)
	created := s.create(t, `{"question_text":"Q","choices":[{"choice_text":"A","is_correct":true}]}`)
	path := "/questions/" + itoa(created.ID)

	rec := s.do(t, http.MethodDelete, path, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}

	if rec := s.do(t, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "")
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Errorf("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if got := rec.Header().Get(middleware.RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestChangeFeedReceivesCommittedWrites(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/questions", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("websocket client not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	created := s.create(t, `{"question_text":"Live?","choices":[{"choice_text":"Yes","is_correct":true}]}`)
	s.do(t, http.MethodDelete, "/questions/"+itoa(created.ID), "")

	for _, want := range []string{services.EventQuestionCreated, services.EventQuestionDeleted} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read %s: %v", want, err)
		}
		if event.Type != want {
			t.Errorf("event type = %s, want %s", event.Type, want)
		}
		var payload struct {
			ID uint `json:"id"`
		}
		json.Unmarshal(event.Payload, &payload)
		if payload.ID != created.ID {
			t.Errorf("%s payload id = %d, want %d", want, payload.ID, created.ID)
		}
	}
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
