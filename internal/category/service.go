package category

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/category/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/utilities"
)

// Store is the persistence the service needs; *repo.CategoryRepo satisfies it.
type Store interface {
	List(ctx context.Context, ownerID string, kind entity.Kind) ([]entity.Category, error)
	Get(ctx context.Context, ownerID, id string) (*entity.Category, error)
	ListChildren(ctx context.Context, parentID string) ([]entity.Category, error)
	Create(ctx context.Context, c *entity.Category) error
}

var (
	ErrNotFound      = errors.New("category not found")
	ErrParentMissing = errors.New("parent category not found")
)

const defaultColor = "#000000"

// Input carries the fields of a new category.
type Input struct {
	Name      string
	Type      entity.Kind
	Color     string
	SortOrder int
	IsDefault bool
	ParentID  *string
}

// Service encapsulates category logic and depends on a Store.
type Service struct {
	repo Store
}

func NewService(r Store) *Service {
	return &Service{repo: r}
}

// List returns the owner's active top-level categories.
func (s *Service) List(ctx context.Context, ownerID string, kind entity.Kind) ([]entity.Category, error) {
	return s.repo.List(ctx, ownerID, kind)
}

// Subcategories returns the children of a category the owner holds. A parent
// belonging to someone else is reported as not found.
func (s *Service) Subcategories(ctx context.Context, ownerID, parentID string) ([]entity.Category, error) {
	if _, err := s.repo.Get(ctx, ownerID, parentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.ListChildren(ctx, parentID)
}

// Create stores a category for ownerID. A subcategory takes its parent's
// type.
func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*entity.Category, error) {
	c := entity.NewCategory(utilities.NewRecordID(), ownerID, strings.TrimSpace(in.Name), in.Type, in.Color, in.SortOrder, in.IsDefault)
	if c.Color == "" {
		c.Color = defaultColor
	}
	if in.ParentID != nil {
		parent, err := s.repo.Get(ctx, ownerID, *in.ParentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrParentMissing
			}
			return nil, err
		}
		c.ParentID = &parent.ID
		c.Type = parent.Type
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
