package facade

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mcoot/playerledger/internal/metrics"
	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/services/access"
	"github.com/mcoot/playerledger/internal/services/audit"
	"github.com/mcoot/playerledger/internal/services/ledger"
	"github.com/mcoot/playerledger/internal/services/oplog"
)

// Facade is the entry point for player-initiated ledger actions. Every
// audited method writes exactly one action entry once the wrapped call has
// resolved, and returns the wrapped result unchanged.
type Facade struct {
	guard   *access.Guard
	ledger  *ledger.Service
	oplog   *oplog.Service
	audit   *audit.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new facade
func New(
	guard *access.Guard,
	ledgerSvc *ledger.Service,
	oplogSvc *oplog.Service,
	auditSvc *audit.Service,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Facade {
	return &Facade{
		guard:   guard,
		ledger:  ledgerSvc,
		oplog:   oplogSvc,
		audit:   auditSvc,
		metrics: m,
		logger:  logger,
	}
}

// record writes the audit entry for one call. A failed write is logged and
// counted; it never changes what the caller sees. A call that panicked is
// recorded as failed and the panic is resumed.
func (f *Facade) record(ctx context.Context, playerID model.PlayerID, actionType model.ActionType, err error, panicked any) {
	if panicked != nil {
		err = fmt.Errorf("panic: %v", panicked)
	}

	status := model.StatusFor(err)
	f.metrics.RecordAction(actionType, status)

	// The audit write must happen even if the caller has gone away
	ctx = context.WithoutCancel(ctx)
	if _, auditErr := f.audit.Record(ctx, playerID, actionType, status); auditErr != nil {
		f.metrics.RecordAuditFailure()
		f.logger.Error("failed to record action",
			"player_id", playerID,
			"action", actionType,
			"status", status,
			"error", auditErr,
		)
	}

	if panicked != nil {
		panic(panicked)
	}
}

// ownedAccount loads an account and checks that playerID owns it
func (f *Facade) ownedAccount(ctx context.Context, playerID model.PlayerID, accountID model.AccountID) (*model.Account, error) {
	acc, err := f.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := f.guard.AuthorizeAccountAccess(playerID, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// CreateAccount opens a new account for playerID
func (f *Facade) CreateAccount(ctx context.Context, playerID model.PlayerID) (acc *model.Account, err error) {
	defer func() { f.record(ctx, playerID, model.ActionCreateAccount, err, recover()) }()

	return f.ledger.CreateAccount(ctx, playerID)
}

// Credit adds amount to an account owned by playerID
func (f *Facade) Credit(ctx context.Context, playerID model.PlayerID, accountID model.AccountID, amount decimal.Decimal) (acc *model.Account, err error) {
	defer func() { f.record(ctx, playerID, model.ActionCreditAccount, err, recover()) }()

	if _, err := f.ownedAccount(ctx, playerID, accountID); err != nil {
		return nil, err
	}
	return f.ledger.Credit(ctx, accountID, amount)
}

// Debit subtracts amount from an account owned by playerID
func (f *Facade) Debit(ctx context.Context, playerID model.PlayerID, accountID model.AccountID, amount decimal.Decimal) (acc *model.Account, err error) {
	defer func() { f.record(ctx, playerID, model.ActionDebitAccount, err, recover()) }()

	if _, err := f.ownedAccount(ctx, playerID, accountID); err != nil {
		return nil, err
	}
	return f.ledger.Debit(ctx, accountID, amount)
}

// GetOperation returns one operation on an account owned by playerID
func (f *Facade) GetOperation(ctx context.Context, playerID model.PlayerID, operationID model.OperationID) (op *model.Operation, err error) {
	defer func() { f.record(ctx, playerID, model.ActionOperationAccount, err, recover()) }()

	op, err = f.oplog.Get(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if _, err := f.ownedAccount(ctx, playerID, op.AccountID); err != nil {
		return nil, err
	}
	return op, nil
}

// ListOperations returns the operations of an account owned by playerID
func (f *Facade) ListOperations(ctx context.Context, playerID model.PlayerID, accountID model.AccountID) (ops []*model.Operation, err error) {
	defer func() { f.record(ctx, playerID, model.ActionOperationsAccount, err, recover()) }()

	if _, err := f.ownedAccount(ctx, playerID, accountID); err != nil {
		return nil, err
	}
	return f.oplog.ListByAccount(ctx, accountID)
}

// ListActions returns the audit trail of playerID. The entry for this call is
// written after the listing is read, so it is not part of the result.
func (f *Facade) ListActions(ctx context.Context, playerID model.PlayerID) (actions []*model.Action, err error) {
	defer func() { f.record(ctx, playerID, model.ActionActions, err, recover()) }()

	return f.audit.ListByPlayer(ctx, playerID)
}

// GetAccount returns an account owned by playerID. Not audited.
func (f *Facade) GetAccount(ctx context.Context, playerID model.PlayerID, accountID model.AccountID) (*model.Account, error) {
	return f.ownedAccount(ctx, playerID, accountID)
}

// ListAccounts returns every account owned by playerID. Not audited.
func (f *Facade) ListAccounts(ctx context.Context, playerID model.PlayerID) ([]*model.Account, error) {
	return f.ledger.ListAccounts(ctx, playerID)
}
