package persistent

import (
	"context"
	"sort"
	"sync"
	"time"

	"socialnet/services/publication/internal/entity"

	"github.com/google/uuid"
)

// MemoryStore keeps publications, users and follows in process. It backs the
// "memory" store driver and the service tests.
type MemoryStore struct {
	publications map[string]entity.Publication
	users        map[string]entity.User
	follows      map[string][]string
	lastCreated  time.Time
	mutex        sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		publications: make(map[string]entity.Publication),
		users:        make(map[string]entity.User),
		follows:      make(map[string][]string),
	}
}

func (s *MemoryStore) PutUser(user entity.User) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.users[user.ID] = user
}

func (s *MemoryStore) Follow(userID, followedID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, id := range s.follows[userID] {
		if id == followedID {
			return
		}
	}
	s.follows[userID] = append(s.follows[userID], followedID)
}

func (s *MemoryStore) Create(ctx context.Context, publication *entity.Publication) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// Creation times are kept strictly increasing so insertion order is the sort order.
	now := time.Now().UTC()
	if !now.After(s.lastCreated) {
		now = s.lastCreated.Add(time.Microsecond)
	}
	s.lastCreated = now

	stored := entity.Publication{
		ID:        uuid.New().String(),
		UserID:    publication.UserID,
		Text:      publication.Text,
		File:      publication.File,
		CreatedAt: now,
	}
	s.publications[stored.ID] = stored

	*publication = stored
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*entity.Publication, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p, ok := s.publications[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return s.withOwner(p), nil
}

func (s *MemoryStore) DeleteByOwner(ctx context.Context, id, ownerID string) (*entity.Publication, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, ok := s.publications[id]
	if !ok || p.UserID != ownerID {
		return nil, entity.ErrNotFound
	}
	delete(s.publications, id)
	return s.withOwner(p), nil
}

func (s *MemoryStore) UpdateFile(ctx context.Context, id, file string) (*entity.Publication, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, ok := s.publications[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	p.File = file
	s.publications[id] = p
	return s.withOwner(p), nil
}

func (s *MemoryStore) Paginate(ctx context.Context, ownerIDs []string, opts PageOptions) ([]*entity.Publication, int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	owners := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}

	matched := make([]entity.Publication, 0)
	for _, p := range s.publications {
		if owners[p.UserID] {
			matched = append(matched, p)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	from := opts.Offset()
	if from < 0 || from >= len(matched) {
		return []*entity.Publication{}, total, nil
	}
	to := from + opts.Limit
	if to > len(matched) {
		to = len(matched)
	}

	page := make([]*entity.Publication, 0, to-from)
	for _, p := range matched[from:to] {
		page = append(page, s.withOwner(p))
	}
	return page, total, nil
}

func (s *MemoryStore) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]string, len(s.follows[userID]))
	copy(ids, s.follows[userID])
	return ids, nil
}

// withOwner must be called with the mutex held.
func (s *MemoryStore) withOwner(p entity.Publication) *entity.Publication {
	if u, ok := s.users[p.UserID]; ok {
		p.User = u.Public()
	}
	return &p
}

var (
	_ PublicationRepository = (*MemoryStore)(nil)
	_ FollowRepository      = (*MemoryStore)(nil)
)
