package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"faucetgate/internal/disbursement/models"
	"faucetgate/internal/disbursement/ports"
	dErrors "faucetgate/pkg/domain-errors"
	audit "faucetgate/pkg/platform/audit"
	"faucetgate/pkg/requestcontext"
)

// RequestDisbursement runs one request to a terminal status. The returned
// Result is always populated; err is non-nil for every status but succeeded.
func (s *Service) RequestDisbursement(ctx context.Context, req models.Request) (result models.Result, err error) {
	ctx, span := s.tracer.Start(ctx, "disbursement.request")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "disbursement panicked",
				"identity", req.Identity,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			s.metrics.IncrementOutcome(string(models.StatusErrored), string(dErrors.CodeInternal))
			result = models.Result{Status: models.StatusErrored, Amount: s.amount}
			err = dErrors.New(dErrors.CodeInternal, "internal error")
		}
		if err != nil {
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.SetAttributes(attribute.String("disbursement.status", string(result.Status)))
	}()

	req.Normalize()
	if verr := validateRequest(req); verr != nil {
		return s.reject(ctx, req, dErrors.CodeValidation, verr)
	}
	span.SetAttributes(attribute.String("disbursement.identity", req.Identity))

	unlock, err := s.locks.Lock(ctx, req.Identity)
	if err != nil {
		return s.fail(ctx, req, dErrors.Wrap(err, dErrors.CodeTimeout, "request cancelled while waiting for a prior request"))
	}
	s.metrics.AddInFlight(1)
	defer func() {
		s.metrics.AddInFlight(-1)
		unlock()
	}()

	if res, stop, cerr := s.checkCooldown(ctx, req); stop {
		return res, cerr
	}

	verification := s.verify(ctx, req)
	if !verification.Verified {
		return s.reject(ctx, req, dErrors.CodeIdentityUnverified,
			dErrors.New(dErrors.CodeIdentityUnverified, "identity could not be verified"))
	}

	if !s.ledger.IsValidAddress(req.Destination) {
		return s.reject(ctx, req, dErrors.CodeInvalidDestination,
			dErrors.New(dErrors.CodeInvalidDestination, "destination is not a valid address"))
	}

	return s.transferAndRecord(ctx, req)
}

func validateRequest(req models.Request) error {
	var missing []string
	if req.Identity == "" {
		missing = append(missing, "identity")
	}
	if req.Destination == "" {
		missing = append(missing, "destination")
	}
	if req.Justification == "" {
		missing = append(missing, "justification")
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// checkCooldown reports stop=true when the request must end here.
func (s *Service) checkCooldown(ctx context.Context, req models.Request) (models.Result, bool, error) {
	ctx, span := s.tracer.Start(ctx, "disbursement.cooldown")
	defer span.End()

	eligible, err := s.gate.IsEligible(ctx, req.Identity, s.window)
	if err != nil {
		s.metrics.IncrementStoreFailures()
		res, ferr := s.fail(ctx, req, dErrors.Wrap(err, dErrors.CodeStorage, "disbursement log unavailable"))
		return res, true, ferr
	}
	if eligible {
		return models.Result{}, false, nil
	}

	last, retryAt, _, err := s.gate.RetryAt(ctx, req.Identity, s.window)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read last grant time", "identity", req.Identity, "error", err)
	}
	cerr := &models.CooldownActiveError{Identity: req.Identity, LastSuccessAt: last, RetryAt: retryAt}
	res, rerr := s.reject(ctx, req, dErrors.CodeCooldownActive, cerr)
	res.RetryAt = retryAt
	return res, true, rerr
}

func (s *Service) verify(ctx context.Context, req models.Request) models.Verification {
	ctx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "disbursement.verify")
	defer span.End()

	v := s.verifier.Verify(ctx, req.Identity, req.ProofURL)
	if !v.Verified {
		v.Method = models.NotVerified
	}
	span.SetAttributes(attribute.String("verification.method", string(v.Method)))
	s.metrics.IncrementVerification(string(v.Method))
	s.logger.DebugContext(ctx, "identity verification finished",
		"identity", req.Identity,
		"verified", v.Verified,
		"method", string(v.Method),
	)
	return v
}

func (s *Service) transferAndRecord(ctx context.Context, req models.Request) (models.Result, error) {
	txRef, terr := s.transfer(ctx, req.Destination)
	at := requestcontext.Now(ctx)

	if terr != nil {
		rec := models.NewRecord(req, s.amount, txRef, models.OutcomeFailed, at)
		transferErr := dErrors.Wrap(terr, dErrors.CodeTransfer, "ledger transfer failed")
		if aerr := s.store.Append(ctx, rec); aerr != nil {
			s.storageFault(ctx, req, rec, aerr)
			return s.fail(ctx, req, errors.Join(
				dErrors.Wrap(aerr, dErrors.CodeStorage, "failed to record failed transfer"),
				transferErr,
			))
		}
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventDisbursementFailed, audit.Event{
			Subject:        req.Identity,
			Decision:       string(models.StatusErrored),
			Reason:         terr.Error(),
			Destination:    req.Destination,
			TransactionRef: txRef,
		})
		return s.fail(ctx, req, transferErr)
	}

	rec := models.NewRecord(req, s.amount, txRef, models.OutcomeSucceeded, at)
	if aerr := s.store.Append(ctx, rec); aerr != nil {
		// funds moved but the log does not know: operators must reconcile
		s.storageFault(ctx, req, rec, aerr)
		res, err := s.fail(ctx, req, dErrors.Wrap(aerr, dErrors.CodeStorage, "transfer sent but could not be recorded"))
		res.TransactionRef = txRef
		return res, err
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventDisbursementSucceeded, audit.Event{
		Subject:        req.Identity,
		Decision:       string(models.StatusSucceeded),
		Destination:    req.Destination,
		TransactionRef: txRef,
	})
	s.metrics.IncrementOutcome(string(models.StatusSucceeded), "")
	return models.Result{
		Status:         models.StatusSucceeded,
		TransactionRef: txRef,
		Amount:         s.amount,
	}, nil
}

func (s *Service) transfer(ctx context.Context, destination string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.transferTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "disbursement.transfer", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	txRef, err := s.ledger.Transfer(ctx, destination, s.amount)
	if err == nil && txRef == "" {
		err = errors.New("ledger returned an empty transaction reference")
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = dErrors.Wrap(err, dErrors.CodeTimeout, "ledger transfer timed out")
	}

	result := "ok"
	if err != nil {
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "transfer failed")
	}
	s.metrics.ObserveTransfer(result, time.Since(start))
	return txRef, err
}

func (s *Service) storageFault(ctx context.Context, req models.Request, rec models.Record, err error) {
	s.metrics.IncrementStoreFailures()
	s.logger.ErrorContext(ctx, "failed to append disbursement record",
		"identity", req.Identity,
		"outcome", string(rec.Outcome),
		"transaction_ref", rec.TransactionRef,
		"error", err,
	)
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventLedgerWriteFailed, audit.Event{
		Subject:        req.Identity,
		Decision:       string(rec.Outcome),
		Reason:         err.Error(),
		Destination:    req.Destination,
		TransactionRef: rec.TransactionRef,
	})
}

var rejectionEvents = map[dErrors.Code]audit.AuditEvent{
	dErrors.CodeCooldownActive:     audit.EventCooldownRejected,
	dErrors.CodeIdentityUnverified: audit.EventIdentityRejected,
	dErrors.CodeInvalidDestination: audit.EventDestinationRejected,
}

// reject ends a request before the ledger is touched. Nothing is appended.
func (s *Service) reject(ctx context.Context, req models.Request, reason dErrors.Code, err error) (models.Result, error) {
	s.metrics.IncrementOutcome(string(models.StatusRejected), string(reason))
	if event, ok := rejectionEvents[reason]; ok {
		ports.LogAudit(ctx, s.logger, s.auditPublisher, event, audit.Event{
			Subject:     req.Identity,
			Decision:    string(models.StatusRejected),
			Reason:      string(reason),
			Destination: req.Destination,
		})
	} else {
		s.logger.InfoContext(ctx, "disbursement rejected", "reason", string(reason), "error", err)
	}
	return models.Result{Status: models.StatusRejected, Amount: s.amount}, err
}

func (s *Service) fail(ctx context.Context, req models.Request, err error) (models.Result, error) {
	s.metrics.IncrementOutcome(string(models.StatusErrored), string(dErrors.CodeOf(err)))
	s.logger.WarnContext(ctx, "disbursement errored", "identity", req.Identity, "error", err)
	return models.Result{Status: models.StatusErrored, Amount: s.amount}, err
}
