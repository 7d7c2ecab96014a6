package handler

// Export for testing
type NoteResponse = noteResponse
type DeleteNoteResponse = deleteNoteResponse
type ErrorResponse = errorResponse

var NewNoteHandlerHelper = NewNoteHandler
var WriteServiceError = writeServiceError
var Itoa = itoa
