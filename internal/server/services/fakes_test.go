package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/entries"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/media"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophdiary/internal/server/storage"
	"github.com/google/uuid"
)

// --- session ---

type fakeSession struct {
	userID string
	err    error
}

func (f fakeSession) CurrentUserID(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.userID == "" {
		return "", common.ErrUnauthenticated
	}
	return f.userID, nil
}

// --- store shared by the fake repositories ---

type memStore struct {
	mu      sync.Mutex
	entries map[string]*models.Entry
	media   []*models.Media
	users   map[string]*models.User
	clock   time.Time
}

func newMemStore() *memStore {
	return &memStore{
		entries: map[string]*models.Entry{},
		users:   map[string]*models.User{},
		clock:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) addEntry(userID, title string) *models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &models.Entry{ID: uuid.NewString(), UserID: userID, Title: title, CreatedAt: s.tick()}
	s.entries[e.ID] = e
	return e
}

func (s *memStore) addMedia(entryID string, kind string, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media = append(s.media, &models.Media{ID: uuid.NewString(), EntryID: entryID, Kind: models.MediaKind(kind), StoragePath: path, CreatedAt: s.tick()})
}

func (s *memStore) owns(userID, entryID string) bool {
	e, ok := s.entries[entryID]
	return ok && e.UserID == userID
}

// --- entries ---

type fakeEntriesRepo struct {
	s         *memStore
	createErr error
	listErr   error
	getErr    error
	deleteErr error
	calls     map[string]int
}

func (r *fakeEntriesRepo) hit(name string) {
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[name]++
}

func (r *fakeEntriesRepo) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	r.hit("Create")
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *e
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.s.tick()
	r.s.entries[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeEntriesRepo) ListByUser(ctx context.Context, userID string) ([]*models.Entry, error) {
	r.hit("ListByUser")
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*models.Entry, 0)
	for _, e := range r.s.entries {
		if e.UserID == userID {
			c := *e
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeEntriesRepo) GetByID(ctx context.Context, userID, id string) (*models.Entry, error) {
	r.hit("GetByID")
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.owns(userID, id) {
		return nil, common.ErrorNotFound
	}
	c := *r.s.entries[id]
	return &c, nil
}

func (r *fakeEntriesRepo) DeleteByID(ctx context.Context, userID, id string) error {
	r.hit("DeleteByID")
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.owns(userID, id) {
		delete(r.s.entries, id)
	}
	return nil
}

// --- media ---

type fakeMediaRepo struct {
	s            *memStore
	createErr    error
	selectErr    error
	deleteErr    error
	pathsErr     error
	selectCalls  int
	lastSelected []string
	creates      int
	pathLookups  int
}

func (r *fakeMediaRepo) Create(ctx context.Context, userID string, m *models.Media) (*models.Media, error) {
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.owns(userID, m.EntryID) {
		return nil, common.ErrorNotFound
	}
	stored := *m
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.s.tick()
	r.s.media = append(r.s.media, &stored)
	out := stored
	return &out, nil
}

func (r *fakeMediaRepo) SelectKinds(ctx context.Context, userID string, entryIDs []string) ([]models.MediaKindRow, error) {
	r.selectCalls++
	r.lastSelected = append([]string(nil), entryIDs...)
	if r.selectErr != nil {
		return nil, r.selectErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := map[string]bool{}
	for _, id := range entryIDs {
		want[id] = true
	}
	var rows []models.MediaKindRow
	for _, m := range r.s.media {
		if want[m.EntryID] && r.s.owns(userID, m.EntryID) {
			rows = append(rows, models.MediaKindRow{EntryID: m.EntryID, Kind: string(m.Kind)})
		}
	}
	return rows, nil
}

func (r *fakeMediaRepo) ListByEntryID(ctx context.Context, userID, entryID string) ([]*models.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*models.Media, 0)
	if !r.s.owns(userID, entryID) {
		return result, nil
	}
	for _, m := range r.s.media {
		if m.EntryID == entryID {
			c := *m
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeMediaRepo) DeleteByEntryID(ctx context.Context, userID, entryID string) ([]string, error) {
	if r.deleteErr != nil {
		return nil, r.deleteErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.owns(userID, entryID) {
		return nil, nil
	}
	var paths []string
	kept := r.s.media[:0]
	for _, m := range r.s.media {
		if m.EntryID == entryID {
			paths = append(paths, m.StoragePath)
			continue
		}
		kept = append(kept, m)
	}
	r.s.media = kept
	return paths, nil
}

func (r *fakeMediaRepo) ExistingPaths(ctx context.Context, paths []string) (map[string]bool, error) {
	r.pathLookups++
	if r.pathsErr != nil {
		return nil, r.pathsErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	known := map[string]bool{}
	for _, m := range r.s.media {
		known[m.StoragePath] = true
	}
	result := map[string]bool{}
	for _, p := range paths {
		if known[p] {
			result[p] = true
		}
	}
	return result, nil
}

// --- users ---

type fakeUsersRepo struct {
	s         *memStore
	createErr error
	getErr    error
}

func (r *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.Email]; ok {
		return nil, fmt.Errorf("%w: email already registered", common.ErrConflict)
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.s.tick()
	r.s.users[u.Email] = u
	return u, nil
}

func (r *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

// --- repository manager ---

type fakeRepoManager struct {
	users   *fakeUsersRepo
	entries *fakeEntriesRepo
	media   *fakeMediaRepo
}

func newFakeRepoManager(s *memStore) *fakeRepoManager {
	return &fakeRepoManager{
		users:   &fakeUsersRepo{s: s},
		entries: &fakeEntriesRepo{s: s},
		media:   &fakeMediaRepo{s: s},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.users }
func (m *fakeRepoManager) Entries(db dbx.DBTX) entries.Repository       { return m.entries }
func (m *fakeRepoManager) Media(db dbx.DBTX) media.Repository           { return m.media }

// --- bucket ---

type fakeObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

type fakeBucket struct {
	mu        sync.Mutex
	objects   map[string]fakeObject
	uploadErr error
	signErr   error
	listErr   error
	removeErr error
	uploads   []string
	signed    []time.Duration
	removed   []string
	modTime   time.Time
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string]fakeObject{}, modTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (b *fakeBucket) Upload(ctx context.Context, path string, data []byte, contentType string, overwrite bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, path)
	if b.uploadErr != nil {
		return b.uploadErr
	}
	if _, ok := b.objects[path]; ok && !overwrite {
		return fmt.Errorf("%w: %s", common.ErrConflict, path)
	}
	b.objects[path] = fakeObject{data: append([]byte(nil), data...), contentType: contentType, modified: b.modTime}
	return nil
}

func (b *fakeBucket) SignURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signed = append(b.signed, ttl)
	if b.signErr != nil {
		return "", b.signErr
	}
	if _, ok := b.objects[path]; !ok {
		return "", fmt.Errorf("%w: %s", common.ErrSigningFailed, path)
	}
	return fmt.Sprintf("https://bucket.local/%s?ttl=%d", path, int(ttl.Seconds())), nil
}

func (b *fakeBucket) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	var result []storage.ObjectInfo
	for k, o := range b.objects {
		if strings.HasPrefix(k, prefix) {
			result = append(result, storage.ObjectInfo{Key: k, LastModified: o.modified, Size: int64(len(o.data))})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (b *fakeBucket) Remove(ctx context.Context, paths ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.removeErr != nil {
		return b.removeErr
	}
	for _, p := range paths {
		b.removed = append(b.removed, p)
		delete(b.objects, p)
	}
	return nil
}
