package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vendora/internal/model"
	"vendora/internal/provider"
)

// Purchase drives one top-up end to end: gates, pin, plan, limit and balance
// checks, then a session-scoped debit, vendor fulfillment with fallback, and
// an atomic commit of debit plus transaction record. The user is never left
// debited without either a fulfilled purchase or a reverted debit.
func (s *Service) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.Receipt, error) {
	if req.UserID == "" {
		return nil, model.E(model.CodeUnauthenticated, "Please login before you continue")
	}
	if err := validatePurchaseRequest(req); err != nil {
		return nil, err
	}

	settings, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, model.Wrap(model.CodeServiceUnavailable, "Service temporarily unavailable, please try again later", err)
	}
	if settings.MaintenanceMode {
		return nil, model.E(model.CodeServiceUnavailable, "The system is under maintenance, please try again later")
	}
	if !settings.KindEnabled(req.Kind) {
		return nil, model.E(model.CodeServiceUnavailable,
			fmt.Sprintf("%s purchases are currently disabled", req.Kind))
	}

	acct, err := s.store.Account(ctx, req.UserID)
	if err != nil {
		return nil, asDomain(err)
	}

	if err := s.verifyPin(ctx, acct, req.Pin); err != nil {
		return nil, err
	}

	plan, err := s.store.Plan(ctx, req.PlanID)
	if err != nil {
		return nil, asDomain(err)
	}
	if plan.Kind != req.Kind {
		return nil, model.E(model.CodePlanNotFound, "We cannot find this plan")
	}
	if !req.BypassValidation && !networkMatches(req.PhoneNumber, plan.Network) {
		return nil, model.E(model.CodeInvalidRequest,
			fmt.Sprintf("Phone number does not look like a %s number", plan.Network))
	}

	limit := settings.MaxPerTransaction
	if acct.TxLimit > 0 {
		limit = acct.TxLimit
	}
	if limit > 0 && plan.Price > limit {
		return nil, model.E(model.CodeLimitExceeded, "This purchase exceeds your transaction limit")
	}
	if acct.Balance < plan.Price {
		return nil, model.E(model.CodeInsufficientBalance, "Insufficient balance, please fund your wallet")
	}

	// From here on every exit path must resolve the session. End is
	// deferred unconditionally and implicitly aborts if a path below
	// returns without committing or aborting.
	sess := s.store.NewSession()
	if err := sess.Start(ctx); err != nil {
		return nil, model.Wrap(model.CodeUnexpected, "Could not start your purchase, please try again", err)
	}
	defer sess.End(ctx)

	newBalance, err := sess.Debit(ctx, req.UserID, plan.Price)
	if err != nil {
		s.abort(ctx, sess)
		return nil, asDomain(err)
	}

	win, winProvider, vendorErr := s.fulfill(ctx, plan, req.PhoneNumber)
	if win == nil {
		s.abort(ctx, sess)
		msg := "Failed to purchase " + string(req.Kind)
		var declined *declinedError
		if errors.As(vendorErr, &declined) && declined.message != "" {
			msg = declined.message
		}
		return nil, model.Wrap(model.CodeVendorFailed, msg, vendorErr)
	}

	record := &model.Transaction{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Kind:      req.Kind,
		Amount:    plan.Price,
		Status:    model.StatusSuccess,
		Provider:  winProvider,
		VendorRef: win.VendorRef,
		Recipient: req.PhoneNumber,
		Message:   win.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := sess.AppendTransaction(ctx, record); err != nil {
		s.abort(ctx, sess)
		return nil, model.Wrap(model.CodeUnexpected, "Failed to record your purchase, please contact support", err)
	}

	if err := sess.Commit(ctx); err != nil {
		// Fatal: debit and log may be partially durable. Never retried
		// automatically; flagged for manual reconciliation.
		slog.Error("purchase commit failed, manual reconciliation required",
			"user_id", req.UserID,
			"transaction_id", record.ID,
			"amount", plan.Price.Kobo(),
			"error", err,
		)
		return nil, model.Wrap(model.CodeCommitFailed, "Your purchase could not be finalized, please contact support", err)
	}

	s.publishPurchase(record, plan, req.PhoneNumber)

	msg := win.Message
	if msg == "" {
		msg = fmt.Sprintf("Your %s has been purchased successfully", req.Kind)
	}
	return &model.Receipt{
		TransactionID: record.ID,
		Amount:        plan.Price,
		Provider:      winProvider,
		VendorRef:     win.VendorRef,
		Message:       msg,
		NewBalance:    newBalance,
	}, nil
}

// verifyPin enforces the lockout policy and compares the pin attempt against
// the stored bcrypt hash. Guard bookkeeping failures are logged, never
// allowed to turn a correct pin into a rejection.
func (s *Service) verifyPin(ctx context.Context, acct *model.Account, pin string) error {
	if !acct.HasPin || acct.PinHash == "" {
		return model.E(model.CodeConflict, "Transaction pin not set")
	}
	locked, err := s.pins.Locked(ctx, acct.UserID)
	if err != nil {
		slog.Warn("pin guard unavailable", "user_id", acct.UserID, "error", err)
	}
	if locked {
		return model.E(model.CodePinLocked, "Too many incorrect pin attempts, try again later")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PinHash), []byte(pin)); err != nil {
		if failErr := s.pins.Fail(ctx, acct.UserID); failErr != nil {
			slog.Warn("recording pin failure failed", "user_id", acct.UserID, "error", failErr)
		}
		return model.E(model.CodePinMismatch, "Incorrect transaction pin")
	}
	if resetErr := s.pins.Reset(ctx, acct.UserID); resetErr != nil {
		slog.Warn("resetting pin failures failed", "user_id", acct.UserID, "error", resetErr)
	}
	return nil
}

// declinedError carries a vendor-declared decline message, the only vendor
// text allowed to surface to the user. Connectivity detail never does.
type declinedError struct {
	provider string
	message  string
}

func (e *declinedError) Error() string {
	return fmt.Sprintf("%s declined: %s", e.provider, e.message)
}

// fulfill walks the fallback ladder for the plan, stopping at the first
// vendor success. Each attempt's error is captured, not propagated, so the
// next rung can run; the last one becomes the failure reason.
func (s *Service) fulfill(ctx context.Context, plan *model.Plan, phone string) (*provider.Result, string, error) {
	var lastErr error
	for _, rung := range s.ladder.Resolve(plan) {
		p, ok := s.registry[rung.Provider]
		if !ok {
			lastErr = fmt.Errorf("no client configured for provider %q", rung.Provider)
			slog.Error("fallback rung skipped", "provider", rung.Provider, "plan_id", plan.ID)
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		res, err := p.Purchase(attemptCtx, provider.Request{
			ExternalPlanID: rung.ExternalPlanID,
			Network:        plan.Network,
			PhoneNumber:    phone,
			Amount:         plan.Price,
		})
		cancel()

		if err != nil {
			lastErr = err
			slog.Warn("vendor attempt failed",
				"provider", rung.Provider, "plan_id", plan.ID, "error", err)
			continue
		}
		if !res.Success {
			lastErr = &declinedError{provider: rung.Provider, message: res.Message}
			slog.Warn("vendor declined purchase",
				"provider", rung.Provider, "plan_id", plan.ID, "message", res.Message)
			continue
		}
		return res, rung.Provider, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no fulfillment attempts were made")
	}
	return nil, "", lastErr
}

// publishPurchase emits the post-commit event. Fire and forget: a bus outage
// must not fail a purchase that already committed.
func (s *Service) publishPurchase(record *model.Transaction, plan *model.Plan, phone string) {
	ev := model.PurchaseEvent{
		TransactionID: record.ID,
		UserID:        record.UserID,
		PlanID:        plan.ID,
		Network:       plan.Network,
		Kind:          record.Kind,
		Amount:        record.Amount,
		PhoneNumber:   phone,
		Provider:      record.Provider,
		VendorRef:     record.VendorRef,
		CreatedAt:     record.CreatedAt,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("encode purchase event", "transaction_id", record.ID, "error", err)
		return
	}
	if err := s.bus.Publish(TopicPurchaseCompleted, data); err != nil {
		slog.Warn("publish purchase event failed", "transaction_id", record.ID, "error", err)
	}
}

func (s *Service) abort(ctx context.Context, sess Session) {
	if err := sess.Abort(ctx); err != nil {
		slog.Error("abort purchase session failed", "error", err)
	}
}

// asDomain passes through typed domain errors and shields everything else
// behind a generic message.
func asDomain(err error) error {
	if err == nil {
		return nil
	}
	var e *model.Error
	if errors.As(err, &e) {
		return e
	}
	return model.Wrap(model.CodeUnexpected, "An unknown error occurred", err)
}
