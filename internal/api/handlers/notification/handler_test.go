package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/push-notifier/internal/config"
	mocks "github.com/aliskhannn/push-notifier/internal/mocks/api/handlers/notification"
	"github.com/aliskhannn/push-notifier/internal/model"
	"github.com/aliskhannn/push-notifier/internal/repository/notification"
	service "github.com/aliskhannn/push-notifier/internal/service/notification"
)

func setupHandler(t *testing.T) (*Handler, *mocks.MocknotificationService, *config.Config) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMocknotificationService(ctrl)
	cfg := &config.Config{
		Server: config.Server{Timezone: "Europe/Moscow"},
		Retry:  retry.Strategy{Attempts: 1},
	}
	handler := NewHandler(mockService, validator.New(), cfg)
	return handler, mockService, cfg
}

func newContext(method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, reader)

	return c, w
}

func TestHandler_Schedule_Success(t *testing.T) {
	handler, mockService, _ := setupHandler(t)

	id := uuid.New()
	msk := time.FixedZone("MSK", 3*3600)
	want := time.Date(2030, 9, 15, 10, 30, 0, 0, msk)

	c, w := newContext(http.MethodPost, "/schedule", ScheduleRequest{
		Message:  "Stand up",
		DateTime: "2030-09-15T10:30",
	})

	mockService.EXPECT().
		Schedule(gomock.Any(), "Stand up", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, at time.Time) (uuid.UUID, error) {
			assert.True(t, want.Equal(at), "got %s", at)
			return id, nil
		})

	handler.Schedule(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "scheduled", resp.Status)
	assert.Equal(t, id, resp.ID)
}

func TestHandler_Schedule_RFC3339(t *testing.T) {
	handler, mockService, _ := setupHandler(t)

	want := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	c, w := newContext(http.MethodPost, "/schedule", ScheduleRequest{
		Message:  "hi",
		DateTime: "2030-01-02T03:04:05Z",
	})

	mockService.EXPECT().
		Schedule(gomock.Any(), "hi", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, at time.Time) (uuid.UUID, error) {
			assert.True(t, want.Equal(at))
			return uuid.New(), nil
		})

	handler.Schedule(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Schedule_MissingFields(t *testing.T) {
	handler, _, _ := setupHandler(t)

	c, w := newContext(http.MethodPost, "/schedule", map[string]string{"message": "hi"})

	handler.Schedule(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"message and dateTime are required"}`, w.Body.String())
}

func TestHandler_Schedule_InvalidDateTime(t *testing.T) {
	handler, _, _ := setupHandler(t)

	c, w := newContext(http.MethodPost, "/schedule", ScheduleRequest{Message: "hi", DateTime: "tomorrow"})

	handler.Schedule(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Schedule_TimeInPast(t *testing.T) {
	handler, mockService, _ := setupHandler(t)

	c, w := newContext(http.MethodPost, "/schedule", ScheduleRequest{Message: "hi", DateTime: "2001-01-01T00:00"})

	mockService.EXPECT().Schedule(gomock.Any(), "hi", gomock.Any()).Return(uuid.Nil, service.ErrTimeInPast)

	handler.Schedule(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"scheduled time must be in the future"}`, w.Body.String())
}

func TestHandler_Schedule_ServiceError(t *testing.T) {
	handler, mockService, _ := setupHandler(t)

	c, w := newContext(http.MethodPost, "/schedule", ScheduleRequest{Message: "hi", DateTime: "2030-01-01T00:00"})

	mockService.EXPECT().Schedule(gomock.Any(), "hi", gomock.Any()).Return(uuid.Nil, errors.New("db down"))

	handler.Schedule(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_GetPending_Success(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)

	c, w := newContext(http.MethodGet, "/notifications", nil)

	mockService.EXPECT().
		GetPending(gomock.Any(), cfg.Retry).
		Return([]model.Notification{{ID: uuid.New(), Message: "msg"}}, nil)

	handler.GetPending(c)

	require.Equal(t, http.StatusOK, w.Code)

	var got []model.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "msg", got[0].Message)
}

func TestHandler_Update_Success(t *testing.T) {
	handler, mockService, _ := setupHandler(t)

	id := uuid.New()
	c, w := newContext(http.MethodPut, "/notifications/"+id.String(), ScheduleRequest{
		Message:  "edited",
		DateTime: "2001-01-01T00:00",
	})
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	mockService.EXPECT().Edit(gomock.Any(), id, "edited", gomock.Any()).Return(nil)

	handler.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"updated"}`, w.Body.String())
}

func TestHandler_Update_NotFound(t *testing.T) {
	handler, mockService, _ := setupHandler(t)

	id := uuid.New()
	c, w := newContext(http.MethodPut, "/notifications/"+id.String(), ScheduleRequest{
		Message:  "edited",
		DateTime: "2030-01-01T00:00",
	})
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	mockService.EXPECT().
		Edit(gomock.Any(), id, "edited", gomock.Any()).
		Return(notification.ErrNotificationNotFound)

	handler.Update(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Update_InvalidID(t *testing.T) {
	handler, _, _ := setupHandler(t)

	c, w := newContext(http.MethodPut, "/notifications/nope", ScheduleRequest{Message: "x", DateTime: "2030-01-01T00:00"})
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	handler.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Delete_Success(t *testing.T) {
	handler, mockService, _ := setupHandler(t)

	id := uuid.New()
	c, w := newContext(http.MethodDelete, "/notifications/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	mockService.EXPECT().Delete(gomock.Any(), id).Return(nil)

	handler.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"deleted"}`, w.Body.String())
}

func TestHandler_Delete_NotFound(t *testing.T) {
	handler, mockService, _ := setupHandler(t)

	id := uuid.New()
	c, w := newContext(http.MethodDelete, "/notifications/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	mockService.EXPECT().Delete(gomock.Any(), id).Return(notification.ErrNotificationNotFound)

	handler.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"notification not found"}`, w.Body.String())
}
