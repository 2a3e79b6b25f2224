package pnl

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
)

// CatalogItem seeds one manual adjustment line at amount zero.
type CatalogItem struct {
	ItemID      string
	Description string
	Category    ManualEntryCategory
}

// DefaultCatalog is the fixed set of adjustment lines the statement composer
// knows about. Seeding inserts each at zero exactly once.
var DefaultCatalog = []CatalogItem{
	{ItemID: ItemRebate, Description: "Rebate", Category: ManualCategoryRevenue},
	{ItemID: ItemDSRevenue, Description: "DS revenue", Category: ManualCategoryRevenue},
	{ItemID: ItemSubCompaniesRevenue, Description: "Sub-companies revenue", Category: ManualCategoryRevenue},
	{ItemID: ItemOtherRevenue, Description: "Other revenue", Category: ManualCategoryRevenue},
	{ItemID: ItemProvisionEndService, Description: "Provision: end of service", Category: ManualCategoryRevenue},
	{ItemID: ItemProvisionImpairment, Description: "Provision: impairment", Category: ManualCategoryRevenue},
	{ItemID: ItemDSCost, Description: "DS cost", Category: ManualCategoryExpense},
	{ItemID: ItemGeneralAdminExpenses, Description: "General & admin expenses", Category: ManualCategoryExpense},
	{ItemID: ItemServiceAgreementCost, Description: "Service agreement cost", Category: ManualCategoryExpense},
	{ItemID: ItemGainSellingProducts, Description: "Gain on selling products", Category: ManualCategoryOther},
	{ItemID: ItemFinanceCosts, Description: "Finance costs", Category: ManualCategoryOther},
}

// ManualEntryRepository abstracts persistence for the adjustment ledger.
type ManualEntryRepository interface {
	ListActive(ctx context.Context) ([]ManualEntry, error)
	GetActive(ctx context.Context, itemID string) (ManualEntry, error)
	CountActive(ctx context.Context) (int, error)
	InsertCatalog(ctx context.Context, items []CatalogItem, revision func() string) error
	UpdateAmount(ctx context.Context, itemID string, amount float64, notes, updatedBy, newRevision string) (ManualEntry, error)
}

// ManualEntryStore is the user-editable adjustment ledger. Entries exist
// only through the seed catalog; updates are by item id and soft-deactivated
// entries stay on record.
type ManualEntryStore struct {
	repo   ManualEntryRepository
	logger *slog.Logger
}

// NewManualEntryStore constructs the store.
func NewManualEntryStore(repo ManualEntryRepository, logger *slog.Logger) *ManualEntryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ManualEntryStore{repo: repo, logger: logger}
}

// EnsureSeeded inserts the catalog at zero amounts when no active entries
// exist at all. Subsequent calls are no-ops, so first-run state needs no
// separate migration step. Concurrent seeding is resolved by the partial
// unique index on (item_id) WHERE is_active.
func (s *ManualEntryStore) EnsureSeeded(ctx context.Context, catalog []CatalogItem) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("pnl: manual entry store not initialised")
	}
	count, err := s.repo.CountActive(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	if err := s.repo.InsertCatalog(ctx, catalog, newRevision); err != nil {
		return err
	}
	s.logger.Info("seeded manual entry catalog", slog.Int("items", len(catalog)))
	return nil
}

// List returns active entries sorted by item id.
func (s *ManualEntryStore) List(ctx context.Context) ([]ManualEntry, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("pnl: manual entry store not initialised")
	}
	return s.repo.ListActive(ctx)
}

// Update changes the amount (and notes) of one active entry. The amount must
// be a finite number. When expectedRevision is non-empty the update is a
// compare-and-swap against the stored revision; when empty the write is
// last-writer-wins, matching the legacy behavior.
func (s *ManualEntryStore) Update(ctx context.Context, itemID string, amount float64, notes, updatedBy, expectedRevision string) (ManualEntry, error) {
	if s == nil || s.repo == nil {
		return ManualEntry{}, fmt.Errorf("pnl: manual entry store not initialised")
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return ManualEntry{}, fmt.Errorf("%w: item id required", ErrValidation)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ManualEntry{}, fmt.Errorf("%w: amount must be a finite number", ErrValidation)
	}

	current, err := s.repo.GetActive(ctx, itemID)
	if err != nil {
		return ManualEntry{}, err
	}
	if expectedRevision != "" && expectedRevision != current.Revision {
		return ManualEntry{}, fmt.Errorf("%w: item %s", ErrRevisionConflict, itemID)
	}

	updated, err := s.repo.UpdateAmount(ctx, itemID, amount, notes, updatedBy, newRevision())
	if err != nil {
		return ManualEntry{}, err
	}
	s.logger.Info("manual entry updated",
		slog.String("item_id", itemID),
		slog.Float64("amount", amount),
		slog.String("updated_by", updatedBy))
	return updated, nil
}

func newRevision() string {
	return uuid.NewString()
}
