package http

import (
	"errors"
	"net/http"
	"strconv"

	"budget/internal/core"
	"budget/internal/log"
)

const (
	msgEntryCreated = "Successfully added expense."
	msgEntryUpdated = "Successfully updated expense."
	msgEntryDeleted = "The expense has been deleted successfully."
)

type entryFormPage struct {
	Entry      core.Entry
	Form       core.EntryInput
	Categories []core.Category
	Action     string
	Submit     string
}

// renderEntryForm shows page with the category suggestions loaded.
func (s *Server) renderEntryForm(w http.ResponseWriter, r *http.Request, page, title string, data entryFormPage, formErr string) {
	cats, err := s.service.Categories(r.Context())
	if err != nil {
		s.serverError(w, r, "Failed to list categories", log.OpList, err)
		return
	}
	data.Categories = cats
	if data.Entry.ID > 0 {
		data.Action = "/budget/entries/" + strconv.FormatInt(data.Entry.ID, 10)
		data.Submit = "Save Expense"
	} else {
		data.Action = "/budget/entries"
		data.Submit = "Add Expense"
	}
	s.render(w, r, http.StatusOK, page, view{Title: title, Error: formErr, Data: data})
}

func entryForm(e core.Entry) core.EntryInput {
	return core.EntryInput{
		Description: e.Description,
		Amount:      e.Amount.String(),
		Category:    e.Category,
		Date:        e.Date.String(),
	}
}

func (s *Server) handleNewEntry(w http.ResponseWriter, r *http.Request) {
	s.renderEntryForm(w, r, pageEntryNew, "Add New Expense", entryFormPage{}, "")
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	in := parseEntryForm(r)
	if verr := in.Validate(); verr != nil {
		s.logger.InfoContext(r.Context(), "Entry form rejected",
			log.FieldOperation, log.OpValidate, "field", verr.Field)
		s.renderEntryForm(w, r, pageEntryNew, "Add New Expense", entryFormPage{Form: in}, verr.Message)
		return
	}

	if _, err := s.service.CreateEntry(r.Context(), in); err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			s.renderEntryForm(w, r, pageEntryNew, "Add New Expense", entryFormPage{Form: in}, verr.Message)
			return
		}
		s.serverError(w, r, "Failed to create entry", log.OpCreate, err)
		return
	}
	s.redirectWithFlash(w, r, "/budget", msgEntryCreated)
}

func (s *Server) handleEditEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	e, err := s.service.Entry(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, "Failed to load entry", log.OpRead, err)
		return
	}
	s.renderEntryForm(w, r, pageEntryEdit, pageTitle("Editing ", e.Description),
		entryFormPage{Entry: e, Form: entryForm(e)}, "")
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	e, err := s.service.Entry(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, "Failed to load entry", log.OpRead, err)
		return
	}

	in := parseEntryForm(r)
	title := pageTitle("Editing ", e.Description)
	if verr := in.Validate(); verr != nil {
		s.renderEntryForm(w, r, pageEntryEdit, title, entryFormPage{Entry: e, Form: in}, verr.Message)
		return
	}

	err = s.service.EditEntry(r.Context(), id, in)
	var verr *core.ValidationError
	switch {
	case err == nil:
		s.redirectWithFlash(w, r, "/budget", msgEntryUpdated)
	case errors.Is(err, core.ErrNotFound):
		s.notFound(w, r)
	case errors.As(err, &verr):
		s.renderEntryForm(w, r, pageEntryEdit, title, entryFormPage{Entry: e, Form: in}, verr.Message)
	default:
		s.serverError(w, r, "Failed to update entry", log.OpUpdate, err)
	}
}

// handleDeleteEntry always redirects; deleting a missing entry is not an error.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	if err := s.service.DeleteEntry(r.Context(), id); err != nil {
		s.serverError(w, r, "Failed to delete entry", log.OpDelete, err)
		return
	}
	s.redirectWithFlash(w, r, "/budget", msgEntryDeleted)
}
