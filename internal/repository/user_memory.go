package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
)

type grantKey struct {
	userID  uuid.UUID
	hotelID int64
}

// MemoryUserStore is the in-memory counterpart of PostgresUserStore.
type MemoryUserStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*models.User
	grants map[grantKey]time.Time
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:  make(map[uuid.UUID]*models.User),
		grants: make(map[grantKey]time.Time),
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.Permissions != nil {
		c.Permissions = append([]string(nil), u.Permissions...)
	}
	return &c
}

func (s *MemoryUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneUser(user)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.users[stored.ID] = stored

	return cloneUser(stored), nil
}

func (s *MemoryUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, apperrors.NotFound("user")
}

func (s *MemoryUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (s *MemoryUserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []models.User{}
	for _, u := range s.users {
		users = append(users, *cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *MemoryUserStore) UpdateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return nil, apperrors.NotFound("user")
	}

	stored := cloneUser(user)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	s.users[stored.ID] = stored

	return cloneUser(stored), nil
}

func (s *MemoryUserStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return apperrors.NotFound("user")
	}
	delete(s.users, id)

	for key := range s.grants {
		if key.userID == id {
			delete(s.grants, key)
		}
	}
	return nil
}

func (s *MemoryUserStore) AddHotelGrant(ctx context.Context, userID uuid.UUID, hotelID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{userID: userID, hotelID: hotelID}
	if _, ok := s.grants[key]; !ok {
		s.grants[key] = time.Now()
	}
	return nil
}

func (s *MemoryUserStore) RemoveHotelGrant(ctx context.Context, userID uuid.UUID, hotelID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.grants, grantKey{userID: userID, hotelID: hotelID})
	return nil
}

func (s *MemoryUserStore) HasHotelGrant(ctx context.Context, userID uuid.UUID, hotelID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.grants[grantKey{userID: userID, hotelID: hotelID}]
	return ok, nil
}

func (s *MemoryUserStore) ListHotelGrants(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hotelIDs := []int64{}
	for key := range s.grants {
		if key.userID == userID {
			hotelIDs = append(hotelIDs, key.hotelID)
		}
	}
	sort.Slice(hotelIDs, func(i, j int) bool { return hotelIDs[i] < hotelIDs[j] })
	return hotelIDs, nil
}
