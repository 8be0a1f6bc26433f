package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/shoplist/internal/list"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/session"
)

type PurchaseHandler struct {
	sess   *session.Session
	logger *slog.Logger
}

func NewPurchaseHandler(sess *session.Session, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{sess: sess, logger: logger.With("component", "purchase_handler")}
}

type purchaseRequest struct {
	StoreName     string `json:"storeName"`
	PaymentMethod string `json:"paymentMethod"`
}

// Create finalizes the active list as a purchase. An empty list is refused
// here; the session itself would record an empty purchase.
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(h.sess.Items()) == 0 {
		writeError(w, http.StatusConflict, "list is empty")
		return
	}

	p, err := h.sess.SavePurchase(r.Context(), req.StoreName, req.PaymentMethod)
	if err != nil {
		h.logger.Error("save purchase", "error", err)
		writeFailure(w, err, "failed to save purchase")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	history := h.sess.History()
	if history == nil {
		history = []model.Purchase{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.sess.Purchase(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "purchase not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PurchaseHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	p, ok := h.sess.Purchase(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "purchase not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(list.Receipt(p)))
}
