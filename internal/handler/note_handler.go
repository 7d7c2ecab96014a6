package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"notes/backend/internal/model"
	"notes/backend/internal/service"
)

type NoteHandler struct {
	service service.NoteService
}

type noteRequest struct {
	Title   string `json:"title" example:"Groceries"`
	Content string `json:"content" example:"Milk, eggs, bread"`
}

type noteResponse struct {
	ID        string `json:"id" example:"1803020481234567168"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type deleteNoteResponse struct {
	Message string       `json:"message"`
	Data    noteResponse `json:"data"`
}

func NewNoteHandler(service service.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

func (h *NoteHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/notes", h.List)
	g.GET("/notes/:id", h.Get)
	g.POST("/notes", h.Create)
	g.PUT("/notes/:id", h.Update)
	g.DELETE("/notes/:id", h.Delete)
}

// List godoc
//
//	@Summary	List notes
//	@Tags		notes
//	@Produce	json
//	@Success	200	{array}		noteResponse
//	@Failure	429	{object}	errorResponse
//	@Failure	500	{object}	errorResponse
//	@Router		/notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	notes, err := h.service.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	response := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		response = append(response, toNoteResponse(note))
	}
	return c.JSON(http.StatusOK, response)
}

// Get godoc
//
//	@Summary	Get a note
//	@Tags		notes
//	@Produce	json
//	@Param		id	path		string	true	"Note ID"
//	@Success	200	{object}	noteResponse
//	@Failure	404	{object}	errorResponse
//	@Failure	429	{object}	errorResponse
//	@Failure	500	{object}	errorResponse
//	@Router		/notes/{id} [get]
func (h *NoteHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeServiceError(c, service.ErrNotFound)
	}
	note, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toNoteResponse(note))
}

// Create godoc
//
//	@Summary	Create a note
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		note	body		noteRequest	true	"Note"
//	@Success	201		{object}	noteResponse
//	@Failure	400		{object}	errorResponse
//	@Failure	429		{object}	errorResponse
//	@Failure	500		{object}	errorResponse
//	@Router		/notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid request body")
	}
	note, err := h.service.Create(c.Request().Context(), req.Title, req.Content)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toNoteResponse(note))
}

// Update godoc
//
//	@Summary	Replace a note's title and content
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Note ID"
//	@Param		note	body		noteRequest	true	"Note"
//	@Success	200		{object}	noteResponse
//	@Failure	400		{object}	errorResponse
//	@Failure	404		{object}	errorResponse
//	@Failure	429		{object}	errorResponse
//	@Failure	500		{object}	errorResponse
//	@Router		/notes/{id} [put]
func (h *NoteHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeServiceError(c, service.ErrNotFound)
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid request body")
	}
	note, err := h.service.Update(c.Request().Context(), id, req.Title, req.Content)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toNoteResponse(note))
}

// Delete godoc
//
//	@Summary	Delete a note
//	@Tags		notes
//	@Produce	json
//	@Param		id	path		string	true	"Note ID"
//	@Success	200	{object}	deleteNoteResponse
//	@Failure	404	{object}	errorResponse
//	@Failure	429	{object}	errorResponse
//	@Failure	500	{object}	errorResponse
//	@Router		/notes/{id} [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return writeServiceError(c, service.ErrNotFound)
	}
	note, err := h.service.Delete(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, deleteNoteResponse{
		Message: "Note deleted for this id " + itoa(note.ID),
		Data:    toNoteResponse(note),
	})
}

func toNoteResponse(note model.Note) noteResponse {
	return noteResponse{
		ID:        itoa(note.ID),
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: note.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
