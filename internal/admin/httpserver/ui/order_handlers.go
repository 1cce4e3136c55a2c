package ui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	custommw "github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/flags"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/i18n"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/navigation"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/paiddate"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/rbac"
	reporttpl "github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/report"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/httpx"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/observability"
)

// UpdatePaidDate handles the inline paid-date edit.
func (p *Pages) UpdatePaidDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_input", i18n.T(ctx, "paiddate.invalid_input"), http.StatusBadRequest))
		return
	}

	result, err := p.editor.Update(ctx, paiddate.Request{
		OrderID: r.PostForm.Get("orderid"),
		Date:    r.PostForm.Get("new_date"),
		Time:    r.PostForm.Get("new_time"),
	})
	if err != nil {
		httpx.WriteError(ctx, w, paidDateError(r, err))
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, map[string]any{
		"orderid":         strconv.FormatInt(result.OrderID, 10),
		"datetime_string": result.DateTime,
	})
}

func paidDateError(r *http.Request, err error) httpx.Error {
	ctx := r.Context()
	var editErr *paiddate.Error
	if !errors.As(err, &editErr) {
		observability.FromContext(ctx).Error("paid date update failed", zap.Error(err))
		return httpx.NewError("internal", i18n.T(ctx, "error.generic"), http.StatusInternalServerError)
	}

	observability.FromContext(ctx).Info("paid date update rejected",
		zap.String("kind", string(editErr.Kind)),
		zap.Error(err),
	)
	switch editErr.Kind {
	case paiddate.KindPrecondition:
		return httpx.NewError(string(editErr.Kind), i18n.T(ctx, "paiddate.status_locked", string(editErr.Status)), http.StatusConflict).
			WithDetails(map[string]any{"verify_status": true})
	case paiddate.KindLookup:
		return httpx.NewError(string(editErr.Kind), i18n.T(ctx, "paiddate.not_found"), http.StatusNotFound)
	default:
		key := "paiddate.invalid_input"
		if errors.Is(err, paiddate.ErrInvalidDateTime) {
			key = "paiddate.invalid_format"
		}
		return httpx.NewError(string(paiddate.KindValidation), i18n.T(ctx, key), http.StatusBadRequest)
	}
}

// AcceptReview clears the under-review flag of an order.
func (p *Pages) AcceptReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_order", i18n.T(ctx, "accept.invalid"), http.StatusBadRequest))
		return
	}
	raw := strings.TrimSpace(r.PostForm.Get("order_id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_order", i18n.T(ctx, "accept.invalid"), http.StatusBadRequest))
		return
	}

	if err := p.tracker.Accept(ctx, id); err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			httpx.WriteError(ctx, w, httpx.NewError("not_found", i18n.T(ctx, "accept.not_found", raw), http.StatusNotFound))
		case errors.Is(err, flags.ErrInvalidOrderID):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_order", i18n.T(ctx, "accept.invalid"), http.StatusBadRequest))
		default:
			observability.FromContext(ctx).Error("review accept failed", zap.Int64("order_id", id), zap.Error(err))
			httpx.WriteError(ctx, w, httpx.NewError("internal", i18n.T(ctx, "error.generic"), http.StatusInternalServerError))
		}
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, map[string]any{
		"message": i18n.T(ctx, "accept.success", raw),
	})
}

// OrderPage renders the order edit page with the review notice and test-order box.
func (p *Pages) OrderPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := orderIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	order, err := p.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			http.NotFound(w, r)
			return
		}
		observability.FromContext(ctx).Error("order page: load failed", zap.Int64("order_id", id), zap.Error(err))
		http.Error(w, i18n.T(ctx, "error.generic"), http.StatusBadGateway)
		return
	}

	products, err := p.store.Products(ctx, orders.ProductIDs([]orders.Order{order}))
	if err != nil {
		observability.FromContext(ctx).Warn("order page: products unavailable", zap.Int64("order_id", id), zap.Error(err))
		products = nil
	}

	canAccept := false
	if user, ok := custommw.UserFromContext(ctx); ok {
		canAccept = rbac.HasCapability(user.Roles, rbac.CapOrdersReviewAccept)
	}

	data := reporttpl.BuildOrderData(ctx, reporttpl.OrderInput{
		BasePath:  custommw.BasePathFromContext(ctx),
		Order:     order,
		Products:  products,
		Location:  p.loc,
		CSRFToken: custommw.CSRFTokenFromContext(ctx),
		CanAccept: canAccept,
		Flashes:   takeFlashes(ctx),
	})
	templ.Handler(reporttpl.OrderPage(data)).ServeHTTP(w, r)
}

// SaveTestOrder persists the test-order box of the order edit form.
func (p *Pages) SaveTestOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := orderIDParam(r)
	if !ok {
		http.Error(w, i18n.T(ctx, "accept.invalid"), http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, i18n.T(ctx, "error.generic"), http.StatusBadRequest)
		return
	}

	form := flags.TestOrderForm{
		Checked: strings.TrimSpace(r.PostForm.Get("order_checkbox")) != "",
		Saved:   strings.TrimSpace(r.PostForm.Get("test_order_status")) != "",
	}
	if _, err := p.tracker.SaveTestOrder(ctx, id, form); err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			http.NotFound(w, r)
			return
		}
		observability.FromContext(ctx).Error("test order save failed", zap.Int64("order_id", id), zap.Error(err))
		http.Error(w, i18n.T(ctx, "error.generic"), http.StatusInternalServerError)
		return
	}

	addFlash(ctx, "success", i18n.T(ctx, "testorder.saved"))
	http.Redirect(w, r, navigation.Join(custommw.BasePathFromContext(ctx), "/orders/"+strconv.FormatInt(id, 10)), http.StatusSeeOther)
}

func orderIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "orderID")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// statusEvent is the payload of the order status webhook.
type statusEvent struct {
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// OrderStatusHook applies flag rules for a status transition reported by the
// storefront. It must be mounted behind signature verification.
func (p *Pages) OrderStatusHook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var event statusEvent
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&event); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_payload", "invalid payload", http.StatusBadRequest))
		return
	}
	from, okFrom := orders.ParseStatus(event.From)
	to, okTo := orders.ParseStatus(event.To)
	if !okFrom || !okTo {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_status", "unknown order status", http.StatusBadRequest))
		return
	}

	changed, err := p.tracker.HandleTransition(ctx, event.OrderID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, flags.ErrInvalidOrderID):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_order", "invalid order id", http.StatusBadRequest))
		case errors.Is(err, orders.ErrOrderNotFound):
			httpx.WriteError(ctx, w, httpx.NewError("not_found", "order not found", http.StatusNotFound))
		default:
			observability.FromContext(ctx).Error("status hook failed", zap.Int64("order_id", event.OrderID), zap.Error(err))
			httpx.WriteError(ctx, w, httpx.NewError("internal", "internal error", http.StatusInternalServerError))
		}
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, map[string]any{
		"order_id": event.OrderID,
		"changed":  changed,
	})
}
