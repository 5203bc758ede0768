package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
)

// MemoryStore is the in-memory ownership-chain store, used for local runs
// (STORE_DRIVER=memory) and as the test double. A single mutex plays the
// role of the storage transaction: WithTx holds it for the whole critical
// section, so validation inside fn observes the same state the write
// commits against. There is no rollback; callers validate before mutating.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

type memData struct {
	hotels     map[int64]*models.Hotel
	workspaces map[int64]*models.Workspace
	bots       map[int64]*models.Bot
	folders    map[int64]*models.Folder
	nextID     map[models.Kind]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memData{
			hotels:     make(map[int64]*models.Hotel),
			workspaces: make(map[int64]*models.Workspace),
			bots:       make(map[int64]*models.Bot),
			folders:    make(map[int64]*models.Folder),
			nextID: map[models.Kind]int64{
				models.KindHotel:     1,
				models.KindWorkspace: 1,
				models.KindBot:       1,
				models.KindFolder:    1,
			},
		},
	}
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&MemoryStore{mu: s.mu, data: s.data, inTx: true})
}

// lock is a no-op inside a transaction, where the mutex is already held
func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func cloneResource(res models.Resource) models.Resource {
	switch r := res.(type) {
	case *models.Hotel:
		c := *r
		return &c
	case *models.Workspace:
		c := *r
		if r.Settings != nil {
			c.Settings = make(map[string]interface{}, len(r.Settings))
			for k, v := range r.Settings {
				c.Settings[k] = v
			}
		}
		return &c
	case *models.Bot:
		c := *r
		return &c
	default:
		f := *(res.(*models.Folder))
		if f.ParentFolderID != nil {
			id := *f.ParentFolderID
			f.ParentFolderID = &id
		}
		return &f
	}
}

func (d *memData) find(kind models.Kind, match func(models.Resource) bool) models.Resource {
	switch kind {
	case models.KindHotel:
		for _, h := range d.hotels {
			if match(h) {
				return h
			}
		}
	case models.KindWorkspace:
		for _, w := range d.workspaces {
			if match(w) {
				return w
			}
		}
	case models.KindBot:
		for _, b := range d.bots {
			if match(b) {
				return b
			}
		}
	default:
		for _, f := range d.folders {
			if match(f) {
				return f
			}
		}
	}
	return nil
}

func (d *memData) each(kind models.Kind, visit func(models.Resource)) {
	switch kind {
	case models.KindHotel:
		for _, h := range d.hotels {
			visit(h)
		}
	case models.KindWorkspace:
		for _, w := range d.workspaces {
			visit(w)
		}
	case models.KindBot:
		for _, b := range d.bots {
			visit(b)
		}
	default:
		for _, f := range d.folders {
			visit(f)
		}
	}
}

func (d *memData) byID(kind models.Kind, id int64) models.Resource {
	switch kind {
	case models.KindHotel:
		if h, ok := d.hotels[id]; ok {
			return h
		}
	case models.KindWorkspace:
		if w, ok := d.workspaces[id]; ok {
			return w
		}
	case models.KindBot:
		if b, ok := d.bots[id]; ok {
			return b
		}
	default:
		if f, ok := d.folders[id]; ok {
			return f
		}
	}
	return nil
}

func (d *memData) put(res models.Resource) {
	switch r := res.(type) {
	case *models.Hotel:
		d.hotels[r.ID] = r
	case *models.Workspace:
		d.workspaces[r.ID] = r
	case *models.Bot:
		d.bots[r.ID] = r
	case *models.Folder:
		d.folders[r.ID] = r
	}
}

func (s *MemoryStore) GetResource(ctx context.Context, kind models.Kind, ref string) (models.Resource, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.GetResourceByID(ctx, kind, id)
	}
	return s.GetResourceByCode(ctx, kind, ref)
}

func (s *MemoryStore) GetResourceByID(ctx context.Context, kind models.Kind, id int64) (models.Resource, error) {
	defer s.lock()()

	if res := s.data.byID(kind, id); res != nil {
		return cloneResource(res), nil
	}
	return nil, apperrors.NotFound(string(kind))
}

func (s *MemoryStore) GetResourceByCode(ctx context.Context, kind models.Kind, code string) (models.Resource, error) {
	defer s.lock()()

	if res := s.data.find(kind, func(r models.Resource) bool { return r.GetCode() == code }); res != nil {
		return cloneResource(res), nil
	}
	return nil, apperrors.NotFound(string(kind))
}

func (s *MemoryStore) ListResources(ctx context.Context, kind models.Kind, filter models.ListFilter) ([]models.Resource, error) {
	defer s.lock()()

	resources := []models.Resource{}
	s.data.each(kind, func(r models.Resource) {
		if filter.ParentID != nil {
			owner, ok := r.OwnerID()
			if !ok || owner != *filter.ParentID {
				return
			}
		}
		if filter.Active != nil && r.IsActive() != *filter.Active {
			return
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(r.GetName()), strings.ToLower(filter.Search)) {
			return
		}
		resources = append(resources, cloneResource(r))
	})

	sort.Slice(resources, func(i, j int) bool {
		if kind == models.KindFolder {
			fi, fj := resources[i].(*models.Folder), resources[j].(*models.Folder)
			if fi.SortOrder != fj.SortOrder {
				return fi.SortOrder < fj.SortOrder
			}
		}
		return resources[i].GetID() < resources[j].GetID()
	})

	if filter.Limit > 0 && len(resources) > filter.Limit {
		resources = resources[:filter.Limit]
	}
	return resources, nil
}

func (s *MemoryStore) CreateResource(ctx context.Context, res models.Resource) (models.Resource, error) {
	defer s.lock()()

	kind := res.ResourceKind()
	id := s.data.nextID[kind]
	s.data.nextID[kind] = id + 1
	now := time.Now()

	stored := cloneResource(res)
	switch r := stored.(type) {
	case *models.Hotel:
		r.ID, r.CreatedAt, r.UpdatedAt = id, now, now
	case *models.Workspace:
		r.ID, r.CreatedAt, r.UpdatedAt = id, now, now
	case *models.Bot:
		r.ID, r.CreatedAt, r.UpdatedAt = id, now, now
	case *models.Folder:
		r.ID, r.CreatedAt, r.UpdatedAt = id, now, now
	}
	s.data.put(stored)

	return cloneResource(stored), nil
}

func (s *MemoryStore) UpdateResource(ctx context.Context, res models.Resource) (models.Resource, error) {
	defer s.lock()()

	kind := res.ResourceKind()
	existing := s.data.byID(kind, res.GetID())
	if existing == nil {
		return nil, apperrors.NotFound(string(kind))
	}

	stored := cloneResource(res)
	switch r := stored.(type) {
	case *models.Hotel:
		r.CreatedAt = existing.(*models.Hotel).CreatedAt
		r.UpdatedAt = time.Now()
	case *models.Workspace:
		r.CreatedAt = existing.(*models.Workspace).CreatedAt
		r.UpdatedAt = time.Now()
	case *models.Bot:
		r.CreatedAt = existing.(*models.Bot).CreatedAt
		r.UpdatedAt = time.Now()
	case *models.Folder:
		// parent changes only go through UpdateFolderParent
		prev := existing.(*models.Folder)
		r.CreatedAt = prev.CreatedAt
		r.ParentFolderID = prev.ParentFolderID
		r.SortOrder = prev.SortOrder
		r.UpdatedAt = time.Now()
	}
	s.data.put(stored)

	return cloneResource(stored), nil
}

func (s *MemoryStore) SetActive(ctx context.Context, kind models.Kind, id int64, active bool) (models.Resource, error) {
	defer s.lock()()

	existing := s.data.byID(kind, id)
	if existing == nil {
		return nil, apperrors.NotFound(string(kind))
	}

	switch r := existing.(type) {
	case *models.Hotel:
		r.Active, r.UpdatedAt = active, time.Now()
	case *models.Workspace:
		r.Active, r.UpdatedAt = active, time.Now()
	case *models.Bot:
		r.Active, r.UpdatedAt = active, time.Now()
	case *models.Folder:
		r.Active, r.UpdatedAt = active, time.Now()
	}
	return cloneResource(existing), nil
}

func (s *MemoryStore) HardDelete(ctx context.Context, kind models.Kind, id int64) error {
	defer s.lock()()

	if s.data.byID(kind, id) == nil {
		return apperrors.NotFound(string(kind))
	}

	switch kind {
	case models.KindHotel:
		delete(s.data.hotels, id)
	case models.KindWorkspace:
		delete(s.data.workspaces, id)
	case models.KindBot:
		delete(s.data.bots, id)
	default:
		delete(s.data.folders, id)
	}
	return nil
}

func (s *MemoryStore) CountChildren(ctx context.Context, kind models.Kind, parentID int64) (int, error) {
	defer s.lock()()

	count := 0
	switch kind {
	case models.KindHotel:
		for _, w := range s.data.workspaces {
			if w.HotelID == parentID {
				count++
			}
		}
	case models.KindWorkspace:
		for _, b := range s.data.bots {
			if b.WorkspaceID == parentID {
				count++
			}
		}
	case models.KindBot:
		for _, f := range s.data.folders {
			if f.BotID == parentID {
				count++
			}
		}
	default:
		for _, f := range s.data.folders {
			if f.ParentFolderID != nil && *f.ParentFolderID == parentID {
				count++
			}
		}
	}
	return count, nil
}

func (s *MemoryStore) CountFolders(ctx context.Context, botID int64) (int, error) {
	defer s.lock()()

	count := 0
	for _, f := range s.data.folders {
		if f.BotID == botID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) NextSortOrder(ctx context.Context, botID int64, parentFolderID *int64) (int, error) {
	defer s.lock()()

	next := 0
	for _, f := range s.data.folders {
		if f.BotID != botID {
			continue
		}
		if !sameParent(f.ParentFolderID, parentFolderID) {
			continue
		}
		if f.SortOrder+1 > next {
			next = f.SortOrder + 1
		}
	}
	return next, nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *MemoryStore) UpdateFolderParent(ctx context.Context, folderID int64, parentFolderID *int64, sortOrder int) (*models.Folder, error) {
	defer s.lock()()

	f, ok := s.data.folders[folderID]
	if !ok {
		return nil, apperrors.NotFound(string(models.KindFolder))
	}

	if parentFolderID == nil {
		f.ParentFolderID = nil
	} else {
		id := *parentFolderID
		f.ParentFolderID = &id
	}
	f.SortOrder = sortOrder
	f.UpdatedAt = time.Now()

	return cloneResource(f).(*models.Folder), nil
}

func (s *MemoryStore) ReorderFolders(ctx context.Context, folderIDs []int64) error {
	defer s.lock()()

	for i, id := range folderIDs {
		f, ok := s.data.folders[id]
		if !ok {
			return apperrors.NotFound(string(models.KindFolder))
		}
		f.SortOrder = i
		f.UpdatedAt = time.Now()
	}
	return nil
}
