package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fabio1974/courier-offer-engine/internal/apperr"
	"github.com/fabio1974/courier-offer-engine/internal/domain"
	"github.com/fabio1974/courier-offer-engine/internal/http/handlers"
)

type stubDeliveryUsecase struct {
	pickupFn       func(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error)
	startTransitFn func(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error)
	completeFn     func(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error)
	cancelFn       func(ctx context.Context, courierID string, deliveryID int64, reason string) (*domain.Delivery, error)
}

func (s *stubDeliveryUsecase) Pickup(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error) {
	return s.pickupFn(ctx, courierID, deliveryID)
}

func (s *stubDeliveryUsecase) StartTransit(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error) {
	return s.startTransitFn(ctx, courierID, deliveryID)
}

func (s *stubDeliveryUsecase) Complete(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error) {
	return s.completeFn(ctx, courierID, deliveryID)
}

func (s *stubDeliveryUsecase) Cancel(ctx context.Context, courierID string, deliveryID int64, reason string) (*domain.Delivery, error) {
	return s.cancelFn(ctx, courierID, deliveryID, reason)
}

type stubDeliveryViews struct {
	readFn             func(ctx context.Context, courierID string, kind domain.CacheKind) ([]domain.Delivery, error)
	refreshCompletedFn func(ctx context.Context, courierID string) ([]domain.Delivery, error)
}

func (s *stubDeliveryViews) Read(ctx context.Context, courierID string, kind domain.CacheKind) ([]domain.Delivery, error) {
	return s.readFn(ctx, courierID, kind)
}

func (s *stubDeliveryViews) RefreshCompleted(ctx context.Context, courierID string) ([]domain.Delivery, error) {
	return s.refreshCompletedFn(ctx, courierID)
}

func deliveryRequest(method, target, courierID, deliveryID string) *http.Request {
	return deliveryRequestBody(method, target, courierID, deliveryID, nil)
}

func deliveryRequestBody(method, target, courierID, deliveryID string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("courierID", courierID)
	if deliveryID != "" {
		routeCtx.URLParams.Add("deliveryID", deliveryID)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestDeliveryHandler_Pickup_OK(t *testing.T) {
	t.Parallel()

	uc := &stubDeliveryUsecase{
		pickupFn: func(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error) {
			require.Equal(t, "c-1", courierID)
			require.Equal(t, int64(7), deliveryID)
			return &domain.Delivery{ID: 7, CourierID: "c-1", Status: domain.StatusPickedUp}, nil
		},
	}
	h := handlers.NewDeliveryHandler(uc, &stubDeliveryViews{}, testLogger())

	req := deliveryRequest(http.MethodPost, "/couriers/c-1/deliveries/7/pickup", "c-1", "7")
	rr := httptest.NewRecorder()

	h.Pickup(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "PICKED_UP", resp["status"])
}

func TestDeliveryHandler_Pickup_InvalidDeliveryID(t *testing.T) {
	t.Parallel()

	h := handlers.NewDeliveryHandler(&stubDeliveryUsecase{
		pickupFn: func(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error) {
			require.FailNow(t, "Pickup should not be called on invalid delivery id")
			return nil, nil
		},
	}, &stubDeliveryViews{}, testLogger())

	req := deliveryRequest(http.MethodPost, "/couriers/c-1/deliveries/abc/pickup", "c-1", "abc")
	rr := httptest.NewRecorder()

	h.Pickup(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeliveryHandler_StartTransit_WrongPredecessor(t *testing.T) {
	t.Parallel()

	uc := &stubDeliveryUsecase{
		startTransitFn: func(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error) {
			return nil, apperr.ErrInvalidTransition
		},
	}
	h := handlers.NewDeliveryHandler(uc, &stubDeliveryViews{}, testLogger())

	req := deliveryRequest(http.MethodPost, "/couriers/c-1/deliveries/7/transit", "c-1", "7")
	rr := httptest.NewRecorder()

	h.StartTransit(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "invalid status transition", resp.Error)
}

func TestDeliveryHandler_Complete_NotFound(t *testing.T) {
	t.Parallel()

	uc := &stubDeliveryUsecase{
		completeFn: func(ctx context.Context, courierID string, deliveryID int64) (*domain.Delivery, error) {
			return nil, apperr.ErrNotFound
		},
	}
	h := handlers.NewDeliveryHandler(uc, &stubDeliveryViews{}, testLogger())

	req := deliveryRequest(http.MethodPost, "/couriers/c-1/deliveries/7/complete", "c-1", "7")
	rr := httptest.NewRecorder()

	h.Complete(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeliveryHandler_Cancel_OK(t *testing.T) {
	t.Parallel()

	var gotReason string

	uc := &stubDeliveryUsecase{
		cancelFn: func(ctx context.Context, courierID string, deliveryID int64, reason string) (*domain.Delivery, error) {
			gotReason = reason
			return &domain.Delivery{ID: 7, Status: domain.StatusPending}, nil
		},
	}
	h := handlers.NewDeliveryHandler(uc, &stubDeliveryViews{}, testLogger())

	body := `{"reason":"customer unreachable"}`
	req := deliveryRequestBody(http.MethodPost, "/couriers/c-1/deliveries/7/cancel", "c-1", "7", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Cancel(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "customer unreachable", gotReason)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "PENDING", resp["status"])
}

func TestDeliveryHandler_Cancel_ReasonRequired(t *testing.T) {
	t.Parallel()

	h := handlers.NewDeliveryHandler(&stubDeliveryUsecase{
		cancelFn: func(ctx context.Context, courierID string, deliveryID int64, reason string) (*domain.Delivery, error) {
			require.FailNow(t, "Cancel must not be called without a reason")
			return nil, nil
		},
	}, &stubDeliveryViews{}, testLogger())

	req := deliveryRequestBody(http.MethodPost, "/couriers/c-1/deliveries/7/cancel", "c-1", "7", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()

	h.Cancel(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "cancellation reason is required", resp.Error)
}

func TestDeliveryHandler_List_Active(t *testing.T) {
	t.Parallel()

	views := &stubDeliveryViews{
		readFn: func(ctx context.Context, courierID string, kind domain.CacheKind) ([]domain.Delivery, error) {
			require.Equal(t, "c-1", courierID)
			require.Equal(t, domain.CacheActive, kind)
			return []domain.Delivery{{ID: 1, Status: domain.StatusAccepted}}, nil
		},
	}
	h := handlers.NewDeliveryHandler(&stubDeliveryUsecase{}, views, testLogger())

	req := deliveryRequest(http.MethodGet, "/couriers/c-1/deliveries/active", "c-1", "")
	rr := httptest.NewRecorder()

	h.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 1)
	require.Equal(t, "ACCEPTED", resp[0]["status"])
}

func TestDeliveryHandler_List_CompletedUsesCache(t *testing.T) {
	t.Parallel()

	views := &stubDeliveryViews{
		readFn: func(ctx context.Context, courierID string, kind domain.CacheKind) ([]domain.Delivery, error) {
			require.Equal(t, domain.CacheCompleted, kind)
			return nil, nil
		},
		refreshCompletedFn: func(ctx context.Context, courierID string) ([]domain.Delivery, error) {
			require.FailNow(t, "refresh must not run without refresh=1")
			return nil, nil
		},
	}
	h := handlers.NewDeliveryHandler(&stubDeliveryUsecase{}, views, testLogger())

	req := deliveryRequest(http.MethodGet, "/couriers/c-1/deliveries/completed", "c-1", "")
	rr := httptest.NewRecorder()

	h.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestDeliveryHandler_List_CompletedRefreshBypassesCache(t *testing.T) {
	t.Parallel()

	refreshed := false
	views := &stubDeliveryViews{
		readFn: func(ctx context.Context, courierID string, kind domain.CacheKind) ([]domain.Delivery, error) {
			require.FailNow(t, "cached read must not run with refresh=1")
			return nil, nil
		},
		refreshCompletedFn: func(ctx context.Context, courierID string) ([]domain.Delivery, error) {
			refreshed = true
			return []domain.Delivery{{ID: 2, Status: domain.StatusCompleted}}, nil
		},
	}
	h := handlers.NewDeliveryHandler(&stubDeliveryUsecase{}, views, testLogger())

	req := deliveryRequest(http.MethodGet, "/couriers/c-1/deliveries/completed?refresh=1", "c-1", "")
	rr := httptest.NewRecorder()

	h.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, refreshed)
}

func TestDeliveryHandler_List_RemoteUnavailable(t *testing.T) {
	t.Parallel()

	views := &stubDeliveryViews{
		readFn: func(ctx context.Context, courierID string, kind domain.CacheKind) ([]domain.Delivery, error) {
			return nil, apperr.ErrUnavailable
		},
	}
	h := handlers.NewDeliveryHandler(&stubDeliveryUsecase{}, views, testLogger())

	req := deliveryRequest(http.MethodGet, "/couriers/c-1/deliveries/active", "c-1", "")
	rr := httptest.NewRecorder()

	h.List(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
