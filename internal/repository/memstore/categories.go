package memstore

import (
	"context"
	"sort"

	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/repository"
)

type categoryStore struct {
	s *Store
}

func (s *Store) categoryByNameLocked(name string) *categoryRow {
	for _, row := range s.categories {
		if row.Name == name {
			return row
		}
	}
	return nil
}

func (r *categoryStore) Create(_ context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.categoryByNameLocked(category.Name) != nil {
		return &repository.UniqueViolation{Field: repository.FieldName}
	}
	category.ID = newID()
	category.CreatedAt = r.s.now()
	r.s.categories[category.ID] = &categoryRow{Category: *category, seq: r.s.nextSeq()}
	return nil
}

func (r *categoryStore) GetOrCreate(_ context.Context, name, description string) (*domain.Category, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if row := r.s.categoryByNameLocked(name); row != nil {
		existing := row.Category
		return &existing, false, nil
	}
	category := domain.Category{
		ID:          newID(),
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   r.s.now(),
	}
	r.s.categories[category.ID] = &categoryRow{Category: category, seq: r.s.nextSeq()}
	return &category, true, nil
}

func (r *categoryStore) Update(_ context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.categories[category.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if other := r.s.categoryByNameLocked(category.Name); other != nil && other.ID != category.ID {
		return &repository.UniqueViolation{Field: repository.FieldName}
	}
	category.CreatedAt = row.CreatedAt
	row.Category = *category
	return nil
}

func (r *categoryStore) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	category := row.Category
	return &category, nil
}

func (r *categoryStore) GetByName(_ context.Context, name string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.s.categoryByNameLocked(name)
	if row == nil {
		return nil, repository.ErrNotFound
	}
	category := row.Category
	return &category, nil
}

func (r *categoryStore) List(_ context.Context, includeInactive bool) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.s.categories))
	for _, row := range r.s.categories {
		if !includeInactive && !row.IsActive {
			continue
		}
		result = append(result, row.Category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *categoryStore) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.categories)), nil
}

func (r *categoryStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deleteTicketsLocked(func(row *ticketRow) bool { return row.CategoryID == id })
	delete(r.s.categories, id)
	return nil
}

func (r *categoryStore) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleted := int64(len(r.s.categories))
	r.s.deleteTicketsLocked(func(*ticketRow) bool { return true })
	r.s.categories = make(map[string]*categoryRow)
	return deleted, nil
}
