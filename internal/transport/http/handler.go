package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"vendora/internal/model"
	"vendora/internal/service"
)

type Handler struct {
	svc    service.VTUService
	secret string
}

func NewHandler(svc service.VTUService, jwtSecret string) *Handler {
	return &Handler{svc: svc, secret: jwtSecret}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /plans", h.Plans)
	mux.HandleFunc("POST /purchase/data", h.authenticate(h.PurchaseData))
	mux.HandleFunc("GET /balance", h.authenticate(h.Balance))
	mux.HandleFunc("GET /transactions/last", h.authenticate(h.LastTransaction))
	mux.HandleFunc("GET /recipients/recent", h.authenticate(h.RecentRecipients))
	mux.HandleFunc("POST /pin", h.authenticate(h.SetPin))
	mux.HandleFunc("POST /recharge", h.requireAdmin(h.Recharge))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) PurchaseData(w http.ResponseWriter, r *http.Request) {
	var req model.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "The format of your request is invalid")
		return
	}
	id, _ := IdentityFrom(r.Context())
	req.UserID = id.UserID
	req.Kind = model.KindData

	receipt, err := h.svc.Purchase(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respond(w, http.StatusOK, receipt.Message, receipt)
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	balance, err := h.svc.Balance(r.Context(), id.UserID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respond(w, http.StatusOK, "Balance fetched successfully", map[string]int64{"balance": balance.Kobo()})
}

func (h *Handler) LastTransaction(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	t, err := h.svc.LastTransaction(r.Context(), id.UserID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respond(w, http.StatusOK, "Last transaction fetched successfully", t)
}

func (h *Handler) RecentRecipients(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	recipients, err := h.svc.RecentRecipients(r.Context(), id.UserID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respond(w, http.StatusOK, "Recently used recipients fetched successfully", recipients)
}

func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	network := r.URL.Query().Get("network")
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = string(model.KindData)
	}
	if network == "" {
		h.respondError(w, http.StatusBadRequest, "Missing network parameter")
		return
	}
	plans, err := h.svc.Plans(r.Context(), network, model.TransactionKind(kind))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respond(w, http.StatusOK, "Plans fetched successfully", plans)
}

func (h *Handler) SetPin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pin        string `json:"pin"`
		ConfirmPin string `json:"confirm_pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "The format of your request is invalid")
		return
	}
	id, _ := IdentityFrom(r.Context())
	if err := h.svc.SetPin(r.Context(), id.UserID, req.Pin, req.ConfirmPin); err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respond(w, http.StatusOK, "Transaction pin successfully set", nil)
}

func (h *Handler) Recharge(w http.ResponseWriter, r *http.Request) {
	var req model.RechargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "The format of your request is invalid")
		return
	}
	if err := h.svc.Recharge(r.Context(), req); err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respond(w, http.StatusOK, "Account recharged successfully", nil)
}

// statusForCode maps the domain taxonomy onto HTTP status classes.
func statusForCode(code model.Code) int {
	switch code {
	case model.CodeInvalidRequest:
		return http.StatusBadRequest
	case model.CodeUnauthenticated:
		return http.StatusUnauthorized
	case model.CodeUserNotFound, model.CodePlanNotFound:
		return http.StatusNotFound
	case model.CodePinMismatch, model.CodePinLocked, model.CodeLimitExceeded,
		model.CodeInsufficientBalance, model.CodeConflict:
		return http.StatusConflict
	case model.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case model.CodeVendorFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	code := model.CodeOf(err)
	status := statusForCode(code)
	if status >= 500 {
		slog.Error("request failed", "code", code, "error", err)
	}
	var e *model.Error
	if !errors.As(err, &e) {
		h.respondError(w, status, "An unknown error occurred")
		return
	}
	h.respondError(w, status, e.Message)
}

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (h *Handler) respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Status: status, Message: message, Data: data})
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respond(w, status, message, nil)
}
