package persona

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockApplier struct {
	mock.Mock
}

func (m *MockApplier) UseItem(ctx context.Context, userID, itemID, targetPersona string) (*UseResult, error) {
	args := m.Called(ctx, userID, itemID, targetPersona)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UseResult), args.Error(1)
}

func (m *MockApplier) GetState(ctx context.Context, userID, personaName string) (*State, error) {
	args := m.Called(ctx, userID, personaName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*State), args.Error(1)
}

func setupPersonaRouter(svc Applier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.POST("/api/items/use", h.UseItem)
	r.GET("/api/personas/:userId/:persona", h.GetState)
	return r
}

func postUse(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/items/use", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestUseItemHandler_OK(t *testing.T) {
	svc := new(MockApplier)
	svc.On("UseItem", mock.Anything, "u1", "rose", "Rin").
		Return(&UseResult{Landed: true, MoodBoost: 3, FavBoost: 2, Message: "Rin loved the Red Rose!"}, nil)

	r := setupPersonaRouter(svc)
	w := postUse(r, `{"userId":"u1","itemId":"rose","targetPersona":"Rin"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Rin loved the Red Rose!","moodBoost":3,"favBoost":2}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestUseItemHandler_WrongTargetStillOK(t *testing.T) {
	svc := new(MockApplier)
	svc.On("UseItem", mock.Anything, "u1", "perfume", "Yuki").
		Return(&UseResult{Landed: false, Message: "Yuki doesn't seem interested in the Noir Perfume."}, nil)

	r := setupPersonaRouter(svc)
	w := postUse(r, `{"userId":"u1","itemId":"perfume","targetPersona":"Yuki"}`)

	// Consumed but didn't land: still a success to the client.
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUseItemHandler_UnknownItem(t *testing.T) {
	svc := new(MockApplier)
	svc.On("UseItem", mock.Anything, "u1", "ghost", "Rin").Return(nil, ErrItemNotFound)

	r := setupPersonaRouter(svc)
	w := postUse(r, `{"userId":"u1","itemId":"ghost","targetPersona":"Rin"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUseItemHandler_TransientError(t *testing.T) {
	svc := new(MockApplier)
	svc.On("UseItem", mock.Anything, "u1", "rose", "Rin").Return(nil, errors.New("db down"))

	r := setupPersonaRouter(svc)
	w := postUse(r, `{"userId":"u1","itemId":"rose","targetPersona":"Rin"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUseItemHandler_MissingFields(t *testing.T) {
	svc := new(MockApplier)
	r := setupPersonaRouter(svc)

	w := postUse(r, `{"userId":"u1","itemId":"rose"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNotCalled(t, "UseItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetStateHandler(t *testing.T) {
	svc := new(MockApplier)
	svc.On("GetState", mock.Anything, "u1", "Rin").
		Return(&State{UserID: "u1", Persona: "Rin", Mood: 72, Favorability: 15.5}, nil)

	r := setupPersonaRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/personas/u1/Rin", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mood":72`)
	svc.AssertExpectations(t)
}
