package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/shoplist/internal/grocery"
	"github.com/dukerupert/shoplist/internal/list"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/session"
)

// ListHandler serves the active list: its items, derived views, clearing
// and import/export.
type ListHandler struct {
	sess   *session.Session
	logger *slog.Logger
}

func NewListHandler(sess *session.Session, logger *slog.Logger) *ListHandler {
	return &ListHandler{sess: sess, logger: logger.With("component", "list_handler")}
}

type listResponse struct {
	ListType   model.ListType `json:"listType"`
	Items      []model.Item   `json:"items"`
	Categories []string       `json:"categories"`
	Views      list.Views     `json:"views"`
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	items := h.sess.Items()
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		ListType:   h.sess.ActiveListType(),
		Items:      items,
		Categories: h.sess.ActiveCategories(),
		Views:      h.sess.Views(),
	})
}

type listTypeRequest struct {
	ListType string `json:"listType" validate:"required,oneof=grocery pharmacy convenience"`
}

func (h *ListHandler) SetType(w http.ResponseWriter, r *http.Request) {
	var req listTypeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lt, err := model.ParseListType(req.ListType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.sess.SetActiveListType(lt); err != nil {
		writeFailure(w, err, "failed to switch list")
		return
	}
	h.Get(w, r)
}

// itemRequest carries numbers as text so "1,5" and "1.5" both work.
type itemRequest struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity" validate:"required"`
	Unit     string `json:"unit" validate:"omitempty,oneof=un kg"`
	Price    string `json:"price"`
	Category string `json:"category"`
}

func (h *ListHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	qty, err := list.ParseQuantity(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft := model.ItemDraft{
		Name:     req.Name,
		Quantity: qty,
		Unit:     model.Unit(req.Unit),
		Category: req.Category,
	}
	if strings.TrimSpace(req.Price) != "" {
		p, err := list.ParsePrice(req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		draft.Price = &p
	}

	item, err := h.sess.AddItem(draft)
	if err != nil {
		writeFailure(w, err, "failed to add item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type updateItemRequest struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity" validate:"required"`
	Unit     string `json:"unit" validate:"omitempty,oneof=un kg"`
}

func (h *ListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	qty, err := list.ParseQuantity(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := r.PathValue("id")
	ok, err := h.sess.UpdateItem(id, req.Name, qty, model.Unit(req.Unit))
	h.writeItem(w, id, ok, err, "failed to update item")
}

type priceRequest struct {
	Price string `json:"price" validate:"required"`
}

func (h *ListHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := list.ParsePrice(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := r.PathValue("id")
	ok, err := h.sess.UpdateItemPrice(id, p)
	h.writeItem(w, id, ok, err, "failed to update price")
}

type categoryRequest struct {
	Category string `json:"category" validate:"required"`
}

func (h *ListHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := r.PathValue("id")
	ok, err := h.sess.SetItemCategory(id, req.Category)
	h.writeItem(w, id, ok, err, "failed to update category")
}

func (h *ListHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ok, err := h.sess.ToggleItemChecked(id)
	h.writeItem(w, id, ok, err, "failed to toggle item")
}

func (h *ListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ok, err := h.sess.DeleteItem(r.PathValue("id"))
	if err != nil {
		writeFailure(w, err, "failed to delete item")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeItem answers an item mutation with the item's current state. An
// unchanged item that still exists is not an error.
func (h *ListHandler) writeItem(w http.ResponseWriter, id string, changed bool, err error, fallback string) {
	if err != nil {
		writeFailure(w, err, fallback)
		return
	}
	item, found := list.FindItem(h.sess.Items(), id)
	if !found {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if !changed {
		h.logger.Debug("item unchanged", "id", id)
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ListHandler) UncheckAll(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sess.UncheckAllItems(); err != nil {
		writeFailure(w, err, "failed to uncheck items")
		return
	}
	h.Get(w, r)
}

// Clear empties the active list. The client confirms with ?confirm=true.
func (h *ListHandler) Clear(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	cleared, err := h.sess.ClearActiveList(func(title, message string) bool {
		return confirmed
	})
	if err != nil {
		writeFailure(w, err, "failed to clear list")
		return
	}
	if !confirmed {
		writeError(w, http.StatusPreconditionRequired, "confirmation required: repeat with ?confirm=true")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": cleared})
}

type codeBody struct {
	Code string `json:"code" validate:"required"`
}

func (h *ListHandler) Export(w http.ResponseWriter, r *http.Request) {
	code, err := h.sess.ExportList()
	if err != nil {
		writeFailure(w, err, "failed to export list")
		return
	}
	writeJSON(w, http.StatusOK, codeBody{Code: code})
}

func (h *ListHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req codeBody
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, list.ErrInvalidListCode.Error())
		return
	}
	items, err := h.sess.ImportList(req.Code)
	if err != nil {
		writeFailure(w, err, "failed to import list")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Suggest returns the category a new item would be filed under.
func (h *ListHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	writeJSON(w, http.StatusOK, map[string]string{
		"category": grocery.Suggest(name, h.sess.ActiveCategories()),
	})
}
