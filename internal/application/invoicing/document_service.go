// Package invoicing manages invoices and purchase bills: creation with GST
// pricing, line edits, cancellation and deletion.
package invoicing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	appledger "github.com/profitpath/backend/internal/application/ledger"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/partner"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/domain/tax"
	"github.com/profitpath/backend/internal/infrastructure/logger"
	"github.com/profitpath/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TaxSettings are the GST settings of the business
type TaxSettings struct {
	HomeStateCode  string
	RoundOffPlaces int32
}

// DocumentService handles document operations. Writes to an existing document
// take the same per-document lock as the payment ledger.
type DocumentService struct {
	txScope    appledger.TransactionScope
	parties    partner.PartyRepository
	reconciler *appledger.Reconciler
	publisher  shared.EventPublisher
	tax        TaxSettings
	logger     *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	txScope appledger.TransactionScope,
	parties partner.PartyRepository,
	reconciler *appledger.Reconciler,
	publisher shared.EventPublisher,
	settings TaxSettings,
	l *zap.Logger,
) *DocumentService {
	return &DocumentService{
		txScope:    txScope,
		parties:    parties,
		reconciler: reconciler,
		publisher:  publisher,
		tax:        settings,
		logger:     l.Named("documents"),
	}
}

// Create prices and stores a new invoice or purchase. Invoices need an active
// customer, purchases an active vendor.
func (s *DocumentService) Create(ctx context.Context, tenantID uuid.UUID, req CreateDocumentRequest) (resp *DocumentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create",
		attribute.String("kind", req.Kind),
		attribute.String("party_id", req.PartyID.String()),
	)
	defer telemetry.EndSpan(span, &err)

	kind, err := invoicing.ParseDocumentKind(req.Kind)
	if err != nil {
		return nil, err
	}
	specs, err := toLineSpecs(req.Lines)
	if err != nil {
		return nil, err
	}

	party, err := s.parties.FindByIDForTenant(ctx, tenantID, req.PartyID)
	if err != nil {
		return nil, err
	}
	if kind == invoicing.KindInvoice {
		err = party.CanBeInvoiced()
	} else {
		err = party.CanBeBilled()
	}
	if err != nil {
		return nil, err
	}

	intraState := s.isIntraState(party)
	if req.IsIntraState != nil {
		intraState = *req.IsIntraState
	}
	documentDate := time.Now().UTC()
	if req.DocumentDate != nil && !req.DocumentDate.IsZero() {
		documentDate = req.DocumentDate.UTC()
	}

	var doc *invoicing.Document
	err = s.txScope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		number, err := repos.Documents().GenerateNumber(ctx, tenantID, kind, documentDate)
		if err != nil {
			return err
		}
		doc, err = invoicing.NewDocument(tenantID, kind, number,
			invoicing.PartyRef{ID: party.ID, Name: party.Name},
			documentDate,
			specs,
			invoicing.Pricing{IsIntraState: intraState, RoundOffPlaces: s.tax.RoundOffPlaces},
		)
		if err != nil {
			return err
		}
		if err := doc.SetDueDate(req.DueDate); err != nil {
			return err
		}
		doc.Notes = strings.TrimSpace(req.Notes)
		return repos.Documents().Save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("document created",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("grand_total", doc.GrandTotal.String()),
		zap.Bool("intra_state", doc.IsIntraState),
	)
	s.publish(ctx, doc.PullDomainEvents()...)

	r := ToDocumentResponse(doc)
	return &r, nil
}

// isIntraState compares the party's state with the home state. A party
// without a known state is treated as local.
func (s *DocumentService) isIntraState(p *partner.Party) bool {
	code := p.StateCode()
	if code == "" || s.tax.HomeStateCode == "" {
		return true
	}
	return code == s.tax.HomeStateCode
}

// GetByID returns a document with its lines
func (s *DocumentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*DocumentResponse, error) {
	var doc *invoicing.Document
	err := s.txScope.ExecuteReadOnly(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		doc, err = repos.Documents().FindByIDForTenant(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	r := ToDocumentResponse(doc)
	return &r, nil
}

// GetBalance returns the cached balance of a document
func (s *DocumentService) GetBalance(ctx context.Context, tenantID, id uuid.UUID) (*appledger.BalanceResponse, error) {
	var doc *invoicing.Document
	err := s.txScope.ExecuteReadOnly(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		doc, err = repos.Documents().FindByIDForTenant(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	b := appledger.ToBalanceResponse(doc)
	return &b, nil
}

// List returns a page of documents
func (s *DocumentService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentListFilter) ([]DocumentListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "document_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := invoicing.DocumentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status:   invoicing.DocumentStatus(strings.ToUpper(filter.Status)),
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	if filter.PartyID != "" {
		partyID, err := uuid.Parse(filter.PartyID)
		if err != nil {
			return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, "party_id must be a UUID")
		}
		domainFilter.PartyID = &partyID
	}
	if filter.Kind != "" {
		kind, err := invoicing.ParseDocumentKind(filter.Kind)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Kind = kind
	}

	var (
		docs  []invoicing.Document
		total int64
	)
	err := s.txScope.ExecuteReadOnly(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		docs, total, err = repos.Documents().FindAllForTenant(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]DocumentListResponse, len(docs))
	for i := range docs {
		out[i] = ToDocumentListResponse(&docs[i])
	}
	return out, total, nil
}

// UpdateLines replaces the lines of a document and recomputes its totals.
// The paid amount is refreshed from the ledger first; a new grand total below
// it fails with BALANCE_CONFLICT.
func (s *DocumentService) UpdateLines(ctx context.Context, tenantID, id uuid.UUID, req UpdateLinesRequest) (resp *DocumentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "update_lines",
		attribute.String("document_id", id.String()))
	defer telemetry.EndSpan(span, &err)

	specs, err := toLineSpecs(req.Lines)
	if err != nil {
		return nil, err
	}

	doc, err := s.mutate(ctx, tenantID, id, func(doc *invoicing.Document) error {
		return doc.ReplaceLines(specs, s.tax.RoundOffPlaces)
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("document lines updated",
		zap.String("document_id", doc.ID.String()),
		zap.String("grand_total", doc.GrandTotal.String()),
		zap.String("balance", doc.BalanceAmount.String()),
	)
	r := ToDocumentResponse(doc)
	return &r, nil
}

// Cancel voids a document whose net paid amount is zero
func (s *DocumentService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req CancelDocumentRequest) (resp *DocumentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "cancel",
		attribute.String("document_id", id.String()))
	defer telemetry.EndSpan(span, &err)

	doc, err := s.mutate(ctx, tenantID, id, func(doc *invoicing.Document) error {
		return doc.Cancel(req.Reason)
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("document cancelled",
		zap.String("document_id", doc.ID.String()),
		zap.String("reason", doc.CancelReason),
	)
	r := ToDocumentResponse(doc)
	return &r, nil
}

// Delete removes a document that has never had a ledger entry
func (s *DocumentService) Delete(ctx context.Context, tenantID, id uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "delete",
		attribute.String("document_id", id.String()))
	defer telemetry.EndSpan(span, &err)

	err = s.reconciler.WithDocumentLock(ctx, id, func() error {
		return s.txScope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
			if _, err := repos.Documents().FindByIDForUpdate(ctx, tenantID, id); err != nil {
				return err
			}
			count, err := repos.Payments().CountForDocument(ctx, tenantID, id)
			if err != nil {
				return err
			}
			if count > 0 {
				return shared.NewDomainError(shared.CodeDocumentHasPayments,
					"documents with ledger entries cannot be deleted, cancel it instead")
			}
			return repos.Documents().Delete(ctx, tenantID, id)
		})
	})
	if err != nil {
		return err
	}

	logger.Enrich(ctx, s.logger).Info("document deleted", zap.String("document_id", id.String()))
	return nil
}

// mutate loads a document under the document lock, refreshes its paid amount
// from the ledger, applies fn and saves against the loaded version
func (s *DocumentService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*invoicing.Document) error) (*invoicing.Document, error) {
	var doc *invoicing.Document
	err := s.reconciler.WithDocumentLock(ctx, id, func() error {
		return s.txScope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
			var err error
			doc, err = repos.Documents().FindByIDForUpdate(ctx, tenantID, id)
			if err != nil {
				return err
			}
			expected := doc.Version
			if _, err := appledger.Refresh(ctx, repos, doc, time.Now().UTC()); err != nil {
				return err
			}
			if err := fn(doc); err != nil {
				return err
			}
			return repos.Documents().SaveWithLock(ctx, doc, expected)
		})
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, doc.PullDomainEvents()...)
	return doc, nil
}

// TaxPreview prices lines the way Create would, without storing anything
func (s *DocumentService) TaxPreview(req TaxPreviewRequest) (*TaxPreviewResponse, error) {
	specs, err := toLineSpecs(req.Lines)
	if err != nil {
		return nil, err
	}
	lines := make([]LinePreview, 0, len(specs))
	computed := make([]tax.LineTax, 0, len(specs))
	for _, spec := range specs {
		lt, err := tax.ComputeLine(tax.LineInput{
			Quantity:  spec.Quantity,
			UnitPrice: spec.UnitPrice,
			Discount:  spec.Discount,
			GSTRate:   spec.GSTRate,
			Cess:      spec.Cess,
		}, req.IsIntraState)
		if err != nil {
			return nil, err
		}
		computed = append(computed, lt)
		lines = append(lines, LinePreview{
			Description: strings.TrimSpace(spec.Description),
			LineTax:     lt,
			LineTotal:   lt.Total(),
		})
	}
	return &TaxPreviewResponse{
		IsIntraState: req.IsIntraState,
		Lines:        lines,
		Totals:       tax.Summarize(computed, s.tax.RoundOffPlaces),
	}, nil
}

func (s *DocumentService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Warn("failed to publish events", zap.Error(err))
	}
}
