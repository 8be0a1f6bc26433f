package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/session"
)

type TemplateHandler struct {
	sess   *session.Session
	logger *slog.Logger
}

func NewTemplateHandler(sess *session.Session, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{sess: sess, logger: logger.With("component", "template_handler")}
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates := h.sess.Templates()
	if templates == nil {
		templates = []model.SavedList{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.sess.Template(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type templateRequest struct {
	Name string `json:"name" validate:"required"`
}

// Create saves the active list as a template.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.sess.SaveListAsTemplate(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("save template", "error", err)
		writeFailure(w, err, "failed to save template")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Load replaces the active list with the template's items.
func (h *TemplateHandler) Load(w http.ResponseWriter, r *http.Request) {
	ok, err := h.sess.LoadListFromTemplate(r.PathValue("id"))
	if err != nil {
		writeFailure(w, err, "failed to load template")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, h.sess.Items())
}

type updateTemplateRequest struct {
	Name  string           `json:"name" validate:"required"`
	Items []blueprintInput `json:"items" validate:"dive"`
}

type blueprintInput struct {
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0,lte=1000000"`
	Unit     string  `json:"unit" validate:"omitempty,oneof=un kg"`
	Category string  `json:"category"`
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTemplateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items := make([]model.Blueprint, len(req.Items))
	for i, in := range req.Items {
		unit := model.Unit(in.Unit)
		if unit == "" {
			unit = model.UnitCount
		}
		items[i] = model.Blueprint{Name: in.Name, Quantity: in.Quantity, Unit: unit, Category: in.Category}
	}

	id := r.PathValue("id")
	ok, err := h.sess.UpdateTemplate(r.Context(), id, req.Name, items)
	if err != nil {
		writeFailure(w, err, "failed to update template")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	t, _ := h.sess.Template(id)
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.sess.DeleteTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err, "failed to delete template")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
