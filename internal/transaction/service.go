package transaction

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	auditentity "github.com/ovaphlow/pitchfork/service-ledger-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/utilities"
)

// Store is the persistence the service needs; *repo.TransactionRepo satisfies it.
type Store interface {
	List(ctx context.Context, ownerID string, f entity.Filter) ([]entity.Transaction, int, error)
	Get(ctx context.Context, ownerID, id string) (*entity.Transaction, error)
	Create(ctx context.Context, t *entity.Transaction) error
	Update(ctx context.Context, t *entity.Transaction) (int64, error)
	SoftDelete(ctx context.Context, ownerID, id string) (int64, error)
	Totals(ctx context.Context, owners access.OwnerSet, from, to *time.Time) ([]entity.OwnerTotals, error)
}

// Recorder receives audit entries; *audit.Sink satisfies it.
type Recorder interface {
	Record(ctx context.Context, e auditentity.Entry)
}

var ErrNotFound = errors.New("transaction not found")

const entityType = "Transaction"

// Actor is who performs a mutation, for the audit trail.
type Actor struct {
	UserID    string
	IPAddress *string
	UserAgent *string
}

// Input carries the writable fields of a transaction.
type Input struct {
	Type             entity.Type
	Amount           decimal.Decimal
	CategoryID       string
	SubcategoryID    *string
	Vendor           *string
	Description      *string
	TransactionDate  time.Time
	IsRecurring      bool
	RecurringPattern *string
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Type             *entity.Type
	Amount           *decimal.Decimal
	CategoryID       *string
	SubcategoryID    *string
	Vendor           *string
	Description      *string
	TransactionDate  *time.Time
	IsRecurring      *bool
	RecurringPattern *string
}

// Page is one page of a listing.
type Page struct {
	Items []entity.Transaction
	Total int
}

type Service struct {
	repo  Store
	audit Recorder
}

func NewService(r Store, audit Recorder) *Service {
	return &Service{repo: r, audit: audit}
}

// List returns ownerID's transactions. ownerID must come from
// access.ResolveTargetUser.
func (s *Service) List(ctx context.Context, ownerID string, f entity.Filter) (Page, error) {
	items, total, err := s.repo.List(ctx, ownerID, f)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*entity.Transaction, error) {
	t, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create stores a transaction owned by the actor.
func (s *Service) Create(ctx context.Context, actor Actor, in Input) (*entity.Transaction, error) {
	t := &entity.Transaction{
		ID:               utilities.NewRecordID(),
		UserID:           actor.UserID,
		Type:             in.Type,
		Amount:           in.Amount,
		CategoryID:       in.CategoryID,
		SubcategoryID:    in.SubcategoryID,
		Vendor:           in.Vendor,
		Description:      in.Description,
		TransactionDate:  in.TransactionDate,
		IsRecurring:      in.IsRecurring,
		RecurringPattern: in.RecurringPattern,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.record(ctx, actor, auditentity.ActionCreate, t.ID, nil, t)
	return t, nil
}

// Update applies p to the actor's own transaction.
func (s *Service) Update(ctx context.Context, actor Actor, id string, p Patch) (*entity.Transaction, error) {
	existing, err := s.Get(ctx, actor.UserID, id)
	if err != nil {
		return nil, err
	}
	before := *existing
	t := existing
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.SubcategoryID != nil {
		t.SubcategoryID = p.SubcategoryID
	}
	if p.Vendor != nil {
		t.Vendor = p.Vendor
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.TransactionDate != nil {
		t.TransactionDate = *p.TransactionDate
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.RecurringPattern != nil {
		t.RecurringPattern = p.RecurringPattern
	}
	n, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// deleted between read and write
		return nil, ErrNotFound
	}
	s.record(ctx, actor, auditentity.ActionUpdate, t.ID, &before, t)
	return t, nil
}

// Delete soft-deletes the actor's own transaction.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	existing, err := s.Get(ctx, actor.UserID, id)
	if err != nil {
		return err
	}
	n, err := s.repo.SoftDelete(ctx, actor.UserID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.record(ctx, actor, auditentity.ActionDelete, id, existing, nil)
	return nil
}

// Totals aggregates per owner. An unrestricted owner set covers everyone.
func (s *Service) Totals(ctx context.Context, owners access.OwnerSet, from, to *time.Time) ([]entity.OwnerTotals, error) {
	return s.repo.Totals(ctx, owners, from, to)
}

func (s *Service) record(ctx context.Context, actor Actor, action, id string, before, after *entity.Transaction) {
	if s.audit == nil {
		return
	}
	e := auditentity.Entry{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   id,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if before != nil {
		e.BeforeData = auditentity.Snapshot(before)
	}
	if after != nil {
		e.AfterData = auditentity.Snapshot(after)
	}
	s.audit.Record(ctx, e)
}
