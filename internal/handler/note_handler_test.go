package handler_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"notes/backend/internal/handler"
	"notes/backend/internal/model"
	"notes/backend/internal/service"
	"notes/backend/internal/service/mock"
)

var testTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func TestNoteHandler_Create_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodPost, "/notes", map[string]any{"title": "A", "content": "B"})
	c, rec := newTestContext(e, req)

	mockService.EXPECT().
		Create(gomock.Any(), "A", "B").
		Return(model.Note{ID: 1, Title: "A", Content: "B", CreatedAt: testTime, UpdatedAt: testTime}, nil)

	err := h.Create(c)
	require.NoError(t, err)

	var resp handler.NoteResponse
	assertJSONResponse(t, rec, http.StatusCreated, &resp)
	require.Equal(t, "1", resp.ID)
	require.Equal(t, "A", resp.Title)
	require.Equal(t, "B", resp.Content)
	require.Equal(t, "2024-03-01T09:30:00Z", resp.CreatedAt)
}

func TestNoteHandler_Create_MissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodPost, "/notes", map[string]any{"title": "A"})
	c, rec := newTestContext(e, req)

	mockService.EXPECT().
		Create(gomock.Any(), "A", "").
		Return(model.Note{}, service.ErrInvalid)

	err := h.Create(c)
	require.NoError(t, err)

	var resp map[string]string
	assertJSONResponse(t, rec, http.StatusBadRequest, &resp)
	require.NotEmpty(t, resp["message"])
}

func TestNoteHandler_Create_MalformedBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequestRaw(http.MethodPost, "/notes", `{"title":`)
	c, rec := newTestContext(e, req)

	err := h.Create(c)
	require.NoError(t, err)

	var resp map[string]string
	assertJSONResponse(t, rec, http.StatusBadRequest, &resp)
	require.Equal(t, "Invalid request body", resp["message"])
}

func TestNoteHandler_List_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodGet, "/notes", nil)
	c, rec := newTestContext(e, req)

	mockService.EXPECT().
		List(gomock.Any()).
		Return([]model.Note{{ID: 1, Title: "first"}, {ID: 2, Title: "second"}}, nil)

	err := h.List(c)
	require.NoError(t, err)

	var resp []handler.NoteResponse
	assertJSONResponse(t, rec, http.StatusOK, &resp)
	require.Len(t, resp, 2)
	require.Equal(t, "first", resp[0].Title)
	require.Equal(t, "2", resp[1].ID)
}

func TestNoteHandler_List_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodGet, "/notes", nil)
	c, rec := newTestContext(e, req)

	mockService.EXPECT().List(gomock.Any()).Return(nil, nil)

	err := h.List(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestNoteHandler_List_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodGet, "/notes", nil)
	c, rec := newTestContext(e, req)

	mockService.EXPECT().List(gomock.Any()).Return(nil, errors.New("database is locked"))

	err := h.List(c)
	require.NoError(t, err)

	var resp map[string]string
	assertJSONResponse(t, rec, http.StatusInternalServerError, &resp)
	require.Equal(t, "Internal server error", resp["message"])
	require.NotContains(t, rec.Body.String(), "locked")
}

func TestNoteHandler_Get_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodGet, "/notes/42", nil)
	c, rec := newTestContext(e, req)
	setPathParams(c, map[string]string{"id": "42"})

	mockService.EXPECT().
		Get(gomock.Any(), int64(42)).
		Return(model.Note{ID: 42, Title: "T", Content: "C"}, nil)

	err := h.Get(c)
	require.NoError(t, err)

	var resp handler.NoteResponse
	assertJSONResponse(t, rec, http.StatusOK, &resp)
	require.Equal(t, "42", resp.ID)
}

func TestNoteHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodGet, "/notes/7", nil)
	c, rec := newTestContext(e, req)
	setPathParams(c, map[string]string{"id": "7"})

	mockService.EXPECT().Get(gomock.Any(), int64(7)).Return(model.Note{}, service.ErrNotFound)

	err := h.Get(c)
	require.NoError(t, err)

	var resp map[string]any
	assertJSONResponse(t, rec, http.StatusNotFound, &resp)
	require.Contains(t, resp, "message")
	require.NotContains(t, resp, "data")
}

func TestNoteHandler_Get_MalformedID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodGet, "/notes/not-an-id", nil)
	c, rec := newTestContext(e, req)
	setPathParams(c, map[string]string{"id": "not-an-id"})

	err := h.Get(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoteHandler_Update_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodPut, "/notes/3", map[string]any{"title": "New", "content": "Body"})
	c, rec := newTestContext(e, req)
	setPathParams(c, map[string]string{"id": "3"})

	mockService.EXPECT().
		Update(gomock.Any(), int64(3), "New", "Body").
		Return(model.Note{ID: 3, Title: "New", Content: "Body"}, nil)

	err := h.Update(c)
	require.NoError(t, err)

	var resp handler.NoteResponse
	assertJSONResponse(t, rec, http.StatusOK, &resp)
	require.Equal(t, "New", resp.Title)
}

func TestNoteHandler_Update_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodPut, "/notes/3", map[string]any{"title": "New", "content": "Body"})
	c, rec := newTestContext(e, req)
	setPathParams(c, map[string]string{"id": "3"})

	mockService.EXPECT().
		Update(gomock.Any(), int64(3), "New", "Body").
		Return(model.Note{}, service.ErrNotFound)

	err := h.Update(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoteHandler_Delete_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodDelete, "/notes/9", nil)
	c, rec := newTestContext(e, req)
	setPathParams(c, map[string]string{"id": "9"})

	mockService.EXPECT().
		Delete(gomock.Any(), int64(9)).
		Return(model.Note{ID: 9, Title: "Gone", Content: "x"}, nil)

	err := h.Delete(c)
	require.NoError(t, err)

	var resp handler.DeleteNoteResponse
	assertJSONResponse(t, rec, http.StatusOK, &resp)
	require.Equal(t, "Note deleted for this id 9", resp.Message)
	require.Equal(t, "9", resp.Data.ID)
	require.Equal(t, "Gone", resp.Data.Title)
}

func TestNoteHandler_Delete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mock.NewMockNoteService(ctrl)
	h := handler.NewNoteHandlerHelper(mockService)

	e := newTestEcho()
	req := newJSONRequest(http.MethodDelete, "/notes/9", nil)
	c, rec := newTestContext(e, req)
	setPathParams(c, map[string]string{"id": "9"})

	mockService.EXPECT().Delete(gomock.Any(), int64(9)).Return(model.Note{}, service.ErrNotFound)

	err := h.Delete(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
