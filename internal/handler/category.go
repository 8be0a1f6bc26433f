package handler

import (
	"net/http"

	"github.com/dukerupert/shoplist/internal/session"
)

// CategoryHandler edits the category set of the active list.
type CategoryHandler struct {
	sess *session.Session
}

func NewCategoryHandler(sess *session.Session) *CategoryHandler {
	return &CategoryHandler{sess: sess}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cats := h.sess.ActiveCategories()
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, cats)
}

type categoriesRequest struct {
	Categories []string `json:"categories" validate:"required"`
}

// Replace saves a whole reordered category list.
func (h *CategoryHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req categoriesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.sess.UpdateCategories(r.Context(), req.Categories); err != nil {
		writeFailure(w, err, "failed to save categories")
		return
	}
	h.List(w, r)
}

type addCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *CategoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.sess.AddCategory(r.Context(), req.Name); err != nil {
		writeFailure(w, err, "failed to add category")
		return
	}
	writeJSON(w, http.StatusCreated, h.sess.ActiveCategories())
}

func (h *CategoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ok, err := h.sess.RemoveCategory(r.Context(), r.PathValue("name"))
	if err != nil {
		writeFailure(w, err, "failed to remove category")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveCategoryRequest struct {
	From *int `json:"from" validate:"required,gte=0"`
	To   *int `json:"to" validate:"required,gte=0"`
}

func (h *CategoryHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.sess.MoveCategory(r.Context(), *req.From, *req.To); err != nil {
		writeFailure(w, err, "failed to move category")
		return
	}
	h.List(w, r)
}
