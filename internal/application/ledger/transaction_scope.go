package ledger

import (
	"context"

	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the document and ledger
// repositories. Everything done through the repositories passed to fn commits
// or rolls back together.
type TransactionScope interface {
	// Execute runs fn in a read-write transaction
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error

	// ExecuteReadOnly runs fn in a read-only transaction that sees one consistent snapshot
	ExecuteReadOnly(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are repositories bound to one transaction
type TransactionalRepositories interface {
	Documents() invoicing.DocumentRepository
	Payments() ledger.PaymentLedger
}
