package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"ticket-rush/model"
	"ticket-rush/service/queue"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/suite"
)

type QueueHttpTestSuite struct {
	suite.Suite

	Store    *stubQueueStore
	Engine   *queue.Engine
	Validate *validator.Validate
}

func (s *QueueHttpTestSuite) SetupTest() {
	s.Store = &stubQueueStore{}
	s.Engine = &queue.Engine{Store: s.Store, Window: 10 * time.Minute}
	s.Validate = validator.New()
}

func TestQueueHttpTestSuite(t *testing.T) {
	suite.Run(t, new(QueueHttpTestSuite))
}

func (s *QueueHttpTestSuite) handler() *QueueHttp {
	return RegisterQueueHttp(http.NewServeMux(), s.Engine, s.Validate)
}

func (s *QueueHttpTestSuite) TestEnroll() {
	waitingEntry := model.QueueEntry{
		ID: 3, EventID: 1, UserID: 10, Rank: 7,
		Status: model.QueueEntryStatusWaiting,
	}

	tests := []struct {
		name           string
		reqBody        string
		setupStub      func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "invalid json",
			reqBody:        `{invalid json`,
			setupStub:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request"}`,
		},
		{
			name:           "validation error - missing email",
			reqBody:        `{"event_id": 1, "user_id": 10}`,
			setupStub:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Validation failed","data":{"Email":"required"}}`,
		},
		{
			name:           "validation error - bad email",
			reqBody:        `{"event_id": 1, "user_id": 10, "email": "not-an-email"}`,
			setupStub:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Validation failed","data":{"Email":"email"}}`,
		},
		{
			name:           "new registration",
			reqBody:        `{"event_id": 1, "user_id": 10, "email": "john@example.com"}`,
			setupStub:      func() {},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"event_id":1,"user_id":10,"status":"registered"}`,
		},
		{
			name:    "already queued returns current position",
			reqBody: `{"event_id": 1, "user_id": 10, "email": "john@example.com"}`,
			setupStub: func() {
				s.Store.findEntry = func(int64, int64) (model.QueueEntry, error) {
					return waitingEntry, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"event_id":1,"user_id":10,"status":"waiting","rank":7}`,
		},
		{
			name:    "store error",
			reqBody: `{"event_id": 1, "user_id": 10, "email": "john@example.com"}`,
			setupStub: func() {
				s.Store.upsertRegistration = func(int64, int64, string) error {
					return fmt.Errorf("database error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal Server Error"}`,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setupStub()

			req := httptest.NewRequest(http.MethodPost, "/api/queue/enroll", strings.NewReader(tc.reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			s.handler().enroll(w, req)

			s.Equal(tc.expectedStatus, w.Code)
			s.Equal(tc.expectedBody, strings.TrimSpace(w.Body.String()))
		})
	}
}

func (s *QueueHttpTestSuite) TestStatus() {
	expiresAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		target         string
		setupStub      func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing event_id",
			target:         "/api/queue/status?user_id=10",
			setupStub:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid event_id"}`,
		},
		{
			name:           "missing user_id",
			target:         "/api/queue/status?event_id=1",
			setupStub:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid user_id"}`,
		},
		{
			name:           "unknown user",
			target:         "/api/queue/status?event_id=1&user_id=10",
			setupStub:      func() {},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Not found"}`,
		},
		{
			name:   "registered but not queued",
			target: "/api/queue/status?event_id=1&user_id=10",
			setupStub: func() {
				s.Store.hasRegistration = func(int64, int64) (bool, error) { return true, nil }
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"event_id":1,"user_id":10,"status":"registered"}`,
		},
		{
			name:   "entered with open window",
			target: "/api/queue/status?event_id=1&user_id=10",
			setupStub: func() {
				s.Store.findEntry = func(int64, int64) (model.QueueEntry, error) {
					return model.QueueEntry{
						ID: 3, EventID: 1, UserID: 10, Rank: 2,
						Status:    model.QueueEntryStatusEntered,
						ExpiresAt: &expiresAt,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"event_id":1,"user_id":10,"status":"entered","rank":2,"expires_at":"2025-06-01T12:30:00Z"}`,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setupStub()

			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			w := httptest.NewRecorder()

			s.handler().status(w, req)

			s.Equal(tc.expectedStatus, w.Code)
			s.Equal(tc.expectedBody, strings.TrimSpace(w.Body.String()))
		})
	}
}

func (s *QueueHttpTestSuite) TestRemove() {
	waitingEntry := model.QueueEntry{
		ID: 3, EventID: 1, UserID: 10, Rank: 7,
		Status: model.QueueEntryStatusWaiting,
	}

	tests := []struct {
		name           string
		reqBody        string
		setupStub      func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "unknown entry",
			reqBody:        `{"event_id": 1, "user_id": 10}`,
			setupStub:      func() {},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Not found"}`,
		},
		{
			name:    "purchase in progress",
			reqBody: `{"event_id": 1, "user_id": 10}`,
			setupStub: func() {
				s.Store.findEntry = func(int64, int64) (model.QueueEntry, error) { return waitingEntry, nil }
				s.Store.hasDraftTicket = func(int64, int64) (bool, error) { return true, nil }
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Entry not removable"}`,
		},
		{
			name:    "success",
			reqBody: `{"event_id": 1, "user_id": 10}`,
			setupStub: func() {
				s.Store.findEntry = func(int64, int64) (model.QueueEntry, error) { return waitingEntry, nil }
			},
			expectedStatus: http.StatusOK,
			expectedBody:   ``,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setupStub()

			req := httptest.NewRequest(http.MethodDelete, "/api/queue/entries", strings.NewReader(tc.reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			s.handler().remove(w, req)

			s.Equal(tc.expectedStatus, w.Code)
			s.Equal(tc.expectedBody, strings.TrimSpace(w.Body.String()))
		})
	}
}
