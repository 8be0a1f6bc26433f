package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/session"
	"github.com/dukerupert/shoplist/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sess := session.New(store.NewKVStore(db), session.WithLogger(testLogger()))
	if err := sess.Open(context.Background()); err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { sess.Close(context.Background()) })
	return sess
}

func newTestMux(sess *session.Session) *http.ServeMux {
	logger := testLogger()
	lh := NewListHandler(sess, logger)
	ph := NewPurchaseHandler(sess, logger)
	th := NewTemplateHandler(sess, logger)
	ch := NewCategoryHandler(sess)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/list", lh.Get)
	mux.HandleFunc("PUT /api/list/type", lh.SetType)
	mux.HandleFunc("POST /api/list/uncheck-all", lh.UncheckAll)
	mux.HandleFunc("DELETE /api/list", lh.Clear)
	mux.HandleFunc("GET /api/list/export", lh.Export)
	mux.HandleFunc("POST /api/list/import", lh.Import)
	mux.HandleFunc("GET /api/list/suggest-category", lh.Suggest)
	mux.HandleFunc("POST /api/items", lh.CreateItem)
	mux.HandleFunc("PUT /api/items/{id}", lh.UpdateItem)
	mux.HandleFunc("PUT /api/items/{id}/price", lh.UpdatePrice)
	mux.HandleFunc("POST /api/items/{id}/toggle", lh.ToggleItem)
	mux.HandleFunc("DELETE /api/items/{id}", lh.DeleteItem)
	mux.HandleFunc("GET /api/categories", ch.List)
	mux.HandleFunc("POST /api/categories", ch.Add)
	mux.HandleFunc("POST /api/categories/move", ch.Move)
	mux.HandleFunc("DELETE /api/categories/{name}", ch.Remove)
	mux.HandleFunc("POST /api/purchases", ph.Create)
	mux.HandleFunc("GET /api/purchases", ph.List)
	mux.HandleFunc("GET /api/purchases/{id}/receipt", ph.Receipt)
	mux.HandleFunc("POST /api/templates", th.Create)
	mux.HandleFunc("GET /api/templates/{id}", th.Get)
	mux.HandleFunc("PUT /api/templates/{id}", th.Update)
	mux.HandleFunc("DELETE /api/templates/{id}", th.Delete)
	mux.HandleFunc("POST /api/templates/{id}/load", th.Load)
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rec)["error"]
}

func createItem(t *testing.T, h http.Handler, body string) model.Item {
	t.Helper()
	rec := do(t, h, "POST", "/api/items", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item status = %d, want %d (body %q)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	return decodeBody[model.Item](t, rec)
}

func TestCreateItemAndGetList(t *testing.T) {
	h := newTestMux(newTestSession(t))

	item := createItem(t, h, `{"name":"Milk","quantity":"2","price":"3,50"}`)
	if item.Category != "Dairy" {
		t.Errorf("category = %q, want %q", item.Category, "Dairy")
	}
	if item.Price == nil || *item.Price != 3.5 {
		t.Errorf("price = %v, want 3.5", item.Price)
	}
	if item.Quantity != 2 {
		t.Errorf("quantity = %v, want 2", item.Quantity)
	}

	rec := do(t, h, "GET", "/api/list", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	got := decodeBody[listResponse](t, rec)
	if got.ListType != model.ListGrocery {
		t.Errorf("listType = %q, want %q", got.ListType, model.ListGrocery)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(got.Items))
	}
	if got.Views.TotalPrice != 7 {
		t.Errorf("totalPrice = %v, want 7", got.Views.TotalPrice)
	}
	if len(got.Categories) == 0 {
		t.Error("expected default categories")
	}
}

func TestCreateItemValidation(t *testing.T) {
	h := newTestMux(newTestSession(t))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"quantity":"1"}`, "name is required"},
		{"zero quantity", `{"name":"Bread","quantity":"0"}`, "quantity must be a number greater than zero and at most 1,000,000"},
		{"bad unit", `{"name":"Bread","quantity":"1","unit":"lb"}`, "unit must be one of: un kg"},
		{"negative price", `{"name":"Bread","quantity":"1","price":"-2"}`, "price must be a number from 0 to 1,000,000,000"},
		{"huge quantity", `{"name":"Bread","quantity":"1e200"}`, "quantity must be a number greater than zero and at most 1,000,000"},
		{"huge price", `{"name":"Bread","quantity":"1","price":"1e200"}`, "price must be a number from 0 to 1,000,000,000"},
		{"bad json", `{`, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "POST", "/api/items", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if got := errorMessage(t, rec); got != tt.want {
				t.Errorf("error = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestItemMutations(t *testing.T) {
	h := newTestMux(newTestSession(t))
	item := createItem(t, h, `{"name":"Apples","quantity":"1,5","unit":"kg"}`)

	rec := do(t, h, "POST", "/api/items/"+item.ID+"/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeBody[model.Item](t, rec); !got.Checked {
		t.Error("expected item to be checked")
	}

	rec = do(t, h, "PUT", "/api/items/"+item.ID+"/price", `{"price":"2.40"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("price status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeBody[model.Item](t, rec); got.Price == nil || *got.Price != 2.4 {
		t.Errorf("price = %v, want 2.4", got.Price)
	}

	rec = do(t, h, "PUT", "/api/items/"+item.ID, `{"name":"Green apples","quantity":"2","unit":"kg"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeBody[model.Item](t, rec); got.Name != "Green apples" || got.Quantity != 2 {
		t.Errorf("updated item = %+v", got)
	}

	rec = do(t, h, "POST", "/api/list/uncheck-all", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("uncheck-all status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeBody[listResponse](t, rec); got.Items[0].Checked {
		t.Error("expected item to be unchecked")
	}

	if rec := do(t, h, "DELETE", "/api/items/"+item.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec := do(t, h, "DELETE", "/api/items/"+item.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := do(t, h, "POST", "/api/items/missing/toggle", ""); rec.Code != http.StatusNotFound {
		t.Errorf("toggle unknown status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	sess := newTestSession(t)
	h := newTestMux(sess)
	createItem(t, h, `{"name":"Bread","quantity":"1"}`)

	rec := do(t, h, "DELETE", "/api/list", "")
	if rec.Code != http.StatusPreconditionRequired {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusPreconditionRequired)
	}
	if len(sess.Items()) != 1 {
		t.Fatal("list cleared without confirmation")
	}

	rec = do(t, h, "DELETE", "/api/list?confirm=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeBody[map[string]bool](t, rec); !got["cleared"] {
		t.Error("expected cleared = true")
	}
	if len(sess.Items()) != 0 {
		t.Errorf("items = %d, want 0", len(sess.Items()))
	}
}

func TestSetListType(t *testing.T) {
	sess := newTestSession(t)
	h := newTestMux(sess)
	createItem(t, h, `{"name":"Bread","quantity":"1"}`)

	if rec := do(t, h, "PUT", "/api/list/type", `{"listType":"hardware"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid type status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec := do(t, h, "PUT", "/api/list/type", `{"listType":"pharmacy"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	got := decodeBody[listResponse](t, rec)
	if got.ListType != model.ListPharmacy {
		t.Errorf("listType = %q, want %q", got.ListType, model.ListPharmacy)
	}
	if len(got.Items) != 0 {
		t.Errorf("pharmacy items = %d, want 0", len(got.Items))
	}
	if len(got.Categories) != 1 || got.Categories[0] != "Medicine" {
		t.Errorf("categories = %v, want [Medicine]", got.Categories)
	}
}

func TestExportImport(t *testing.T) {
	sess := newTestSession(t)
	h := newTestMux(sess)
	createItem(t, h, `{"name":"Milk","quantity":"2"}`)
	createItem(t, h, `{"name":"Bread","quantity":"1"}`)

	rec := do(t, h, "GET", "/api/list/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d, want %d", rec.Code, http.StatusOK)
	}
	code := decodeBody[codeBody](t, rec).Code

	rec = do(t, h, "POST", "/api/list/import", `{"code":"not a list"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid import status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if got := errorMessage(t, rec); got != "invalid list code" {
		t.Errorf("error = %q, want %q", got, "invalid list code")
	}
	if len(sess.Items()) != 2 {
		t.Fatal("failed import changed the list")
	}

	body, _ := json.Marshal(codeBody{Code: code})
	rec = do(t, h, "POST", "/api/list/import", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
	}
	items := decodeBody[[]model.Item](t, rec)
	if len(items) != 2 {
		t.Fatalf("imported items = %d, want 2", len(items))
	}
	if items[0].Name != "Bread" || items[1].Name != "Milk" {
		t.Errorf("imported order = %q, %q", items[0].Name, items[1].Name)
	}
}

func TestSuggestCategory(t *testing.T) {
	h := newTestMux(newTestSession(t))
	rec := do(t, h, "GET", "/api/list/suggest-category?name=Sourdough+bread", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeBody[map[string]string](t, rec)["category"]; got != "Bakery" {
		t.Errorf("category = %q, want %q", got, "Bakery")
	}
}

func TestPurchaseFlow(t *testing.T) {
	sess := newTestSession(t)
	h := newTestMux(sess)

	if rec := do(t, h, "POST", "/api/purchases", `{"storeName":"Corner"}`); rec.Code != http.StatusConflict {
		t.Errorf("empty list status = %d, want %d", rec.Code, http.StatusConflict)
	}

	createItem(t, h, `{"name":"Milk","quantity":"2","price":"1.25"}`)
	rec := do(t, h, "POST", "/api/purchases", `{"storeName":"Corner","paymentMethod":"card"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	p := decodeBody[model.Purchase](t, rec)
	if p.TotalPrice != 2.5 {
		t.Errorf("total = %v, want 2.5", p.TotalPrice)
	}
	if len(sess.Items()) != 0 {
		t.Errorf("items after purchase = %d, want 0", len(sess.Items()))
	}

	rec = do(t, h, "GET", "/api/purchases", "")
	if got := decodeBody[[]model.Purchase](t, rec); len(got) != 1 || got[0].ID != p.ID {
		t.Errorf("history = %+v", got)
	}

	rec = do(t, h, "GET", "/api/purchases/"+p.ID+"/receipt", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("receipt status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Corner") {
		t.Errorf("receipt = %q, want it to name the store", rec.Body.String())
	}
	if rec := do(t, h, "GET", "/api/purchases/missing/receipt", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown receipt status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestTemplateFlow(t *testing.T) {
	sess := newTestSession(t)
	h := newTestMux(sess)
	createItem(t, h, `{"name":"Milk","quantity":"2","price":"1.25"}`)

	if rec := do(t, h, "POST", "/api/templates", `{"name":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec := do(t, h, "POST", "/api/templates", `{"name":"Weekly"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", rec.Code, http.StatusCreated)
	}
	tpl := decodeBody[model.SavedList](t, rec)

	do(t, h, "DELETE", "/api/list?confirm=true", "")
	rec = do(t, h, "POST", "/api/templates/"+tpl.ID+"/load", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("load status = %d, want %d", rec.Code, http.StatusOK)
	}
	items := decodeBody[[]model.Item](t, rec)
	if len(items) != 1 || items[0].Name != "Milk" || items[0].Checked || items[0].Price != nil {
		t.Errorf("loaded items = %+v", items)
	}

	if rec := do(t, h, "PUT", "/api/templates/"+tpl.ID, `{"name":"Weekly","items":[{"name":"Eggs","quantity":0}]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid blueprint status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = do(t, h, "PUT", "/api/templates/"+tpl.ID, `{"name":"Sunday","items":[{"name":"Eggs","quantity":12}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := decodeBody[model.SavedList](t, rec); got.Name != "Sunday" || len(got.Items) != 1 || got.Items[0].Unit != model.UnitCount {
		t.Errorf("updated template = %+v", got)
	}

	if rec := do(t, h, "DELETE", "/api/templates/"+tpl.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec := do(t, h, "GET", "/api/templates/"+tpl.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := do(t, h, "POST", "/api/templates/"+tpl.ID+"/load", ""); rec.Code != http.StatusNotFound {
		t.Errorf("load deleted status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	sess := newTestSession(t)
	h := newTestMux(sess)

	if rec := do(t, h, "POST", "/api/categories", `{"name":"Dairy"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec := do(t, h, "POST", "/api/categories", `{"name":"Frozen"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want %d", rec.Code, http.StatusCreated)
	}
	cats := decodeBody[[]string](t, rec)
	if cats[len(cats)-1] != "Frozen" {
		t.Errorf("last category = %q, want Frozen", cats[len(cats)-1])
	}

	rec = do(t, h, "POST", "/api/categories/move", `{"from":`+itoa(len(cats)-1)+`,"to":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("move status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeBody[[]string](t, rec); got[0] != "Frozen" {
		t.Errorf("first category = %q, want Frozen", got[0])
	}

	if rec := do(t, h, "POST", "/api/categories/move", `{"to":0}`); rec.Code != http.StatusBadRequest {
		t.Errorf("move without from status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	if rec := do(t, h, "DELETE", "/api/categories/Frozen", ""); rec.Code != http.StatusNoContent {
		t.Errorf("remove status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec := do(t, h, "DELETE", "/api/categories/Frozen", ""); rec.Code != http.StatusNotFound {
		t.Errorf("remove again status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionNotReady(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	defer db.Close()
	sess := session.New(store.NewKVStore(db), session.WithLogger(testLogger()))
	h := newTestMux(sess)

	rec := do(t, h, "POST", "/api/items", `{"name":"Milk","quantity":"1"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestWriteJSONUnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"totalPrice": math.Inf(1)})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := errorMessage(t, rec); got != "response could not be encoded" {
		t.Errorf("error = %q", got)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
