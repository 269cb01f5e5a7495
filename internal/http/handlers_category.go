package http

import (
	"errors"
	"net/http"
	"strconv"

	"budget/internal/core"
	"budget/internal/log"
)

const (
	msgCategoryCreated   = "Successfully added category."
	msgCategoryUpdated   = "Successfully updated category."
	msgCategoryDeleted   = "The category was successfully deleted."
	msgCategoryProtected = "The Uncategorized category cannot be deleted."
)

type categoryFormPage struct {
	Category   core.Category
	Form       core.CategoryInput
	Categories []core.Category
	Action     string
	Submit     string
}

type categoriesPage struct {
	Period     core.Period
	Categories []core.CategoryProgress
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	p := s.service.CurrentPeriod()
	progress, err := s.service.CategoryProgress(r.Context(), p)
	if err != nil {
		s.serverError(w, r, "Failed to load category progress", log.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, pageCategories, view{
		Title: "Budget Categories",
		Data:  categoriesPage{Period: p, Categories: progress},
	})
}

func (s *Server) renderCategoryForm(w http.ResponseWriter, r *http.Request, page, title string, data categoryFormPage, formErr string) {
	cats, err := s.service.Categories(r.Context())
	if err != nil {
		s.serverError(w, r, "Failed to list categories", log.OpList, err)
		return
	}
	data.Categories = cats
	if data.Category.ID > 0 {
		data.Action = "/budget/categories/" + strconv.FormatInt(data.Category.ID, 10)
		data.Submit = "Save Category"
	} else {
		data.Action = "/budget/categories"
		data.Submit = "Create Category"
	}
	s.render(w, r, http.StatusOK, page, view{Title: title, Error: formErr, Data: data})
}

// validateCategory runs the form rules, looking up whether the name belongs
// to a category other than exceptID.
func (s *Server) validateCategory(r *http.Request, in core.CategoryInput, exceptID int64) (*core.ValidationError, error) {
	if !core.ValidCategoryName(in.Name) {
		return core.ErrCategoryNameLength, nil
	}
	taken, err := s.service.CategoryNameTaken(r.Context(), in.Name, exceptID)
	if err != nil {
		return nil, err
	}
	return in.Validate(taken), nil
}

func (s *Server) handleNewCategory(w http.ResponseWriter, r *http.Request) {
	s.renderCategoryForm(w, r, pageCategoryNew, "Create New Budget Category", categoryFormPage{}, "")
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	in := parseCategoryForm(r)
	const title = "Create New Budget Category"

	verr, err := s.validateCategory(r, in, 0)
	if err != nil {
		s.serverError(w, r, "Failed to check category name", log.OpValidate, err)
		return
	}
	if verr != nil {
		s.renderCategoryForm(w, r, pageCategoryNew, title, categoryFormPage{Form: in}, verr.Message)
		return
	}

	_, err = s.service.CreateCategory(r.Context(), in)
	switch {
	case err == nil:
		s.redirectWithFlash(w, r, "/budget", msgCategoryCreated)
	case errors.Is(err, core.ErrDuplicateCategory):
		s.renderCategoryForm(w, r, pageCategoryNew, title, categoryFormPage{Form: in}, core.ErrCategoryExists.Message)
	case errors.As(err, &verr):
		s.renderCategoryForm(w, r, pageCategoryNew, title, categoryFormPage{Form: in}, verr.Message)
	default:
		s.serverError(w, r, "Failed to create category", log.OpCreate, err)
	}
}

func (s *Server) loadCategory(w http.ResponseWriter, r *http.Request) (core.Category, bool) {
	id, ok := parseID(r)
	if !ok {
		s.notFound(w, r)
		return core.Category{}, false
	}
	c, err := s.service.Category(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		s.notFound(w, r)
		return core.Category{}, false
	}
	if err != nil {
		s.serverError(w, r, "Failed to load category", log.OpRead, err)
		return core.Category{}, false
	}
	return c, true
}

func (s *Server) handleEditCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCategory(w, r)
	if !ok {
		return
	}
	form := core.CategoryInput{Name: c.Name, Amount: c.MaxAmount.String()}
	s.renderCategoryForm(w, r, pageCategoryEdit, pageTitle("Editing Category: ", c.Name),
		categoryFormPage{Category: c, Form: form}, "")
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCategory(w, r)
	if !ok {
		return
	}
	in := parseCategoryForm(r)
	title := pageTitle("Editing Category: ", c.Name)
	data := categoryFormPage{Category: c, Form: in}

	verr, err := s.validateCategory(r, in, c.ID)
	if err != nil {
		s.serverError(w, r, "Failed to check category name", log.OpValidate, err)
		return
	}
	if verr != nil {
		s.renderCategoryForm(w, r, pageCategoryEdit, title, data, verr.Message)
		return
	}

	err = s.service.EditCategory(r.Context(), c.ID, in)
	switch {
	case err == nil:
		s.redirectWithFlash(w, r, "/budget", msgCategoryUpdated)
	case errors.Is(err, core.ErrNotFound):
		s.notFound(w, r)
	case errors.Is(err, core.ErrDuplicateCategory):
		s.renderCategoryForm(w, r, pageCategoryEdit, title, data, core.ErrCategoryExists.Message)
	case errors.As(err, &verr):
		s.renderCategoryForm(w, r, pageCategoryEdit, title, data, verr.Message)
	default:
		s.serverError(w, r, "Failed to update category", log.OpUpdate, err)
	}
}

// handleDeleteCategory reassigns the category's entries to Uncategorized and
// removes it. Missing ids still redirect with the success message.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	err := s.service.DeleteCategory(r.Context(), id)
	switch {
	case err == nil:
		s.redirectWithFlash(w, r, "/budget", msgCategoryDeleted)
	case errors.Is(err, core.ErrProtectedCategory):
		s.logger.WarnContext(r.Context(), "Refused to delete protected category",
			log.FieldCategoryID, id, log.FieldOperation, log.OpDelete)
		s.redirectWithFlash(w, r, "/budget", msgCategoryProtected)
	default:
		s.serverError(w, r, "Failed to delete category", log.OpDelete, err)
	}
}
