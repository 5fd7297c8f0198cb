package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	workerRepo "sewa/database/repository/worker"
	"sewa/models"
	"sewa/services/eligibility"
	"sewa/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	mu       sync.Mutex
	uploads  []string
	deleted  []string
	failWith error
}

func (f *fakeStore) UploadDocument(_ context.Context, localFilePath, folder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	f.uploads = append(f.uploads, folder)
	return fmt.Sprintf("%s/doc-%d", folder, len(f.uploads)), nil
}

func (f *fakeStore) DeleteFile(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

func (f *fakeStore) ReadDocument(_ context.Context, publicID string) ([]byte, error) {
	return []byte("contents of " + publicID), nil
}

type sentPush struct {
	workerID, title, body string
	data                  map[string]string
}

type fakePush struct {
	mu   sync.Mutex
	sent []sentPush
}

func (f *fakePush) SendWorkerPushNotification(_ context.Context, workerID, title, body string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentPush{workerID, title, body, data})
	return nil
}

func (f *fakePush) NotifyVerificationChange(context.Context, models.VerificationNoticePayload) error {
	return nil
}

type mapCache struct {
	mu          sync.Mutex
	items       map[string]*models.Worker
	versions    map[string]int64
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{items: map[string]*models.Worker{}, versions: map[string]int64{}}
}

func (c *mapCache) Get(_ context.Context, id string) (*models.Worker, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.items[id]
	return w, c.versions[id], ok
}

func (c *mapCache) Set(_ context.Context, w *models.Worker, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[w.ID] != version {
		return
	}
	c.items[w.ID] = w
}

func (c *mapCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.versions[id]++
	c.invalidated = append(c.invalidated, id)
}

func (c *mapCache) cached(id string) (*models.Worker, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.items[id]
	return w, ok
}

type fixture struct {
	svc   *DefaultWorkerService
	repo  *workerRepo.MemoryWorkerRepo
	store *fakeStore
	push  *fakePush
	cache *mapCache
}

func newFixture(t *testing.T, seed ...*models.Worker) *fixture {
	t.Helper()
	f := &fixture{
		repo:  workerRepo.NewMemoryWorkerRepo(seed...),
		store: &fakeStore{},
		push:  &fakePush{},
		cache: newMapCache(),
	}
	svc, err := NewDefaultWorkerService(f.repo, f.cache, f.store, f.push, zap.NewNop())
	require.NoError(t, err)
	svc.PINCost = bcrypt.MinCost
	f.svc = svc
	return f
}

func allDocs() map[models.DocumentKind]string {
	return map[models.DocumentKind]string{
		models.DocumentProfilePhoto: "p",
		models.DocumentCertificate:  "c",
		models.DocumentCitizenship:  "z",
	}
}

func verifiedWorker(id string) *models.Worker {
	return &models.Worker{
		ID:                 id,
		VerificationStatus: models.StatusVerified,
		Documents:          allDocs(),
		FCMToken:           "token",
	}
}

func TestNewDefaultWorkerService_RequiresDependencies(t *testing.T) {
	_, err := NewDefaultWorkerService(nil, nil, &fakeStore{}, nil, zap.NewNop())
	assert.Error(t, err)

	svc, err := NewDefaultWorkerService(workerRepo.NewMemoryWorkerRepo(), nil, &fakeStore{}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, NoopSnapshotCache{}, svc.Cache)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, models.WorkerRegistrationData{
		Name:              " Asha ",
		Email:             "Asha@Example.com",
		ServiceCategories: []string{"plumbing", " plumbing", "", "electrical"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	sub, role, err := utils.ExtractSubject(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, sub)
	assert.Equal(t, utils.RoleWorker, role)

	stored, err := f.repo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", stored.Email)
	assert.Equal(t, "Asha", stored.Name)
	assert.Equal(t, []string{"plumbing", "electrical"}, stored.ServiceCategories)
	assert.Equal(t, models.StatusUnknown, stored.VerificationStatus)
	assert.Equal(t, utils.HashToken(resp.Token), stored.TokenHash)
	assert.Equal(t, eligibility.MessageUploadDocuments, eligibility.VerificationMessage(stored))

	_, err = f.svc.Register(ctx, models.WorkerRegistrationData{Email: "asha@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_RejectsUnsafeCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), models.WorkerRegistrationData{
		Email:             "x@y.z",
		ServiceCategories: []string{"a.b"},
	})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = f.svc.Register(context.Background(), models.WorkerRegistrationData{
		Email:             "x@y.z",
		ServiceCategories: []string{"$where"},
	})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestGetWorker_UsesCache(t *testing.T) {
	f := newFixture(t, verifiedWorker("w1"))
	ctx := context.Background()

	w, err := f.svc.GetWorker(ctx, "w1")
	require.NoError(t, err)
	_, cached := f.cache.cached("w1")
	assert.True(t, cached)

	require.NoError(t, f.repo.SetOverallStatus(ctx, "w1", models.StatusRejected, ""))
	again, err := f.svc.GetWorker(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, w.VerificationStatus, again.VerificationStatus)

	_, err = f.svc.GetWorker(ctx, "missing")
	assert.ErrorIs(t, err, ErrWorkerNotFound)
}

func TestGetEligibility(t *testing.T) {
	w := verifiedWorker("w1")
	w.ServiceCategories = []string{"plumbing"}
	w.CategoryVerificationStatus = map[string]models.VerificationStatus{"plumbing": models.StatusVerified}
	f := newFixture(t, w)

	report, err := f.svc.GetEligibility(context.Background(), "w1")
	require.NoError(t, err)
	assert.True(t, report.CanGoOnline)
	assert.False(t, report.CanAcceptBookings)
	assert.True(t, report.IsFullyVerified)
	assert.Equal(t, []string{"plumbing"}, report.VerifiedCategories)
}

func TestSetOnline_DeniedPushesMessage(t *testing.T) {
	w := verifiedWorker("w1")
	w.VerificationStatus = models.StatusPending
	f := newFixture(t, w)

	_, err := f.svc.SetOnline(context.Background(), "w1", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	var denied *PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, eligibility.ActionGoOnline, denied.Action)
	assert.Equal(t, eligibility.DenialGoOnline, denied.Message)

	require.Len(t, f.push.sent, 1)
	assert.Equal(t, "w1", f.push.sent[0].workerID)
	assert.Equal(t, eligibility.DenialGoOnline, f.push.sent[0].body)
	assert.Equal(t, "go_online", f.push.sent[0].data["action"])

	stored, _ := f.repo.GetByID(context.Background(), "w1")
	assert.False(t, stored.IsActive)
}

func TestSetOnline_VerifiedThenOffline(t *testing.T) {
	f := newFixture(t, verifiedWorker("w1"))
	ctx := context.Background()

	w, err := f.svc.SetOnline(ctx, "w1", true)
	require.NoError(t, err)
	assert.True(t, w.IsActive)
	assert.Contains(t, f.cache.invalidated, "w1")
	assert.Empty(t, f.push.sent)

	require.NoError(t, f.svc.AuthorizeBooking(ctx, "w1"))

	w, err = f.svc.SetOnline(ctx, "w1", false)
	require.NoError(t, err)
	assert.False(t, w.IsActive)

	err = f.svc.AuthorizeBooking(ctx, "w1")
	var denied *PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, eligibility.DenialAcceptBooking, denied.Message)
}

func TestSetOnline_OfflineNeverGated(t *testing.T) {
	w := &models.Worker{ID: "w1", VerificationStatus: models.StatusRejected, IsActive: true}
	f := newFixture(t, w)

	got, err := f.svc.SetOnline(context.Background(), "w1", false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Empty(t, f.push.sent)
}

func TestCheckPermission_UnknownActionFailsClosed(t *testing.T) {
	f := newFixture(t, verifiedWorker("w1"))
	err := f.svc.CheckPermission(context.Background(), "w1", eligibility.Action("teleport"))

	var denied *PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, eligibility.DenialUnknown, denied.Message)
}

func TestUploadDocument_CompletesSetAndSubmitsForReview(t *testing.T) {
	f := newFixture(t, &models.Worker{ID: "w1", Documents: map[models.DocumentKind]string{}})
	ctx := context.Background()

	for _, kind := range []models.DocumentKind{models.DocumentProfilePhoto, models.DocumentCertificate} {
		w, err := f.svc.UploadDocument(ctx, "w1", kind, "/tmp/file")
		require.NoError(t, err)
		assert.Equal(t, models.StatusUnknown, w.VerificationStatus)
	}

	w, err := f.svc.UploadDocument(ctx, "w1", models.DocumentCitizenship, "/tmp/file")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, w.VerificationStatus)
	assert.Equal(t, eligibility.MessageUnderReview, eligibility.VerificationMessage(w))

	stored, _ := f.repo.GetByID(ctx, "w1")
	assert.Equal(t, models.StatusPending, stored.VerificationStatus)
	assert.Equal(t, "workers/w1/citizenship/doc-3", stored.Documents[models.DocumentCitizenship])
	assert.Equal(t, []string{"workers/w1/profilePhoto", "workers/w1/certificate", "workers/w1/citizenship"}, f.store.uploads)
}

func TestUploadDocument_ResubmitAfterRejection(t *testing.T) {
	w := &models.Worker{ID: "w1", VerificationStatus: models.StatusRejected, ReviewNote: "blurry", Documents: allDocs()}
	f := newFixture(t, w)

	got, err := f.svc.UploadDocument(context.Background(), "w1", models.DocumentCertificate, "/tmp/file")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.VerificationStatus)
	assert.Equal(t, []string{"c"}, f.store.deleted)
}

func TestUploadDocument_VerifiedStaysVerified(t *testing.T) {
	f := newFixture(t, verifiedWorker("w1"))
	got, err := f.svc.UploadDocument(context.Background(), "w1", models.DocumentDrivingLicense, "/tmp/file")
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, got.VerificationStatus)
	assert.Empty(t, f.store.deleted)
}

func TestUploadDocument_Errors(t *testing.T) {
	f := newFixture(t, &models.Worker{ID: "w1"})
	ctx := context.Background()

	_, err := f.svc.UploadDocument(ctx, "w1", models.DocumentKind("passport"), "/tmp/file")
	assert.ErrorIs(t, err, ErrInvalidDocumentKind)

	_, err = f.svc.UploadDocument(ctx, "missing", models.DocumentCertificate, "/tmp/file")
	assert.ErrorIs(t, err, ErrWorkerNotFound)

	f.store.failWith = errors.New("cloud down")
	_, err = f.svc.UploadDocument(ctx, "w1", models.DocumentCertificate, "/tmp/file")
	assert.ErrorContains(t, err, "cloud down")
	stored, _ := f.repo.GetByID(ctx, "w1")
	assert.Empty(t, stored.Documents)
}

func TestUpdateServiceCategories_KeepsCategoryStatuses(t *testing.T) {
	w := verifiedWorker("w1")
	w.ServiceCategories = []string{"plumbing"}
	w.CategoryVerificationStatus = map[string]models.VerificationStatus{"plumbing": models.StatusVerified}
	f := newFixture(t, w)
	ctx := context.Background()

	got, err := f.svc.UpdateServiceCategories(ctx, "w1", []string{"cleaning"})
	require.NoError(t, err)
	assert.False(t, eligibility.HasVerifiedService(got))

	got, err = f.svc.UpdateServiceCategories(ctx, "w1", []string{"cleaning", "plumbing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"plumbing"}, eligibility.VerifiedCategories(got))

	_, err = f.svc.UpdateServiceCategories(ctx, "w1", []string{"a.b"})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestUpdateFCMToken(t *testing.T) {
	f := newFixture(t, &models.Worker{ID: "w1"})
	ctx := context.Background()

	require.NoError(t, f.svc.UpdateFCMToken(ctx, "w1", " abc "))
	stored, _ := f.repo.GetByID(ctx, "w1")
	assert.Equal(t, "abc", stored.FCMToken)

	assert.ErrorIs(t, f.svc.UpdateFCMToken(ctx, "missing", "abc"), ErrWorkerNotFound)
}

func TestValidateCategoryName(t *testing.T) {
	assert.NoError(t, ValidateCategoryName("plumbing"))
	assert.ErrorIs(t, ValidateCategoryName(""), ErrInvalidCategory)
	assert.ErrorIs(t, ValidateCategoryName("a.b"), ErrInvalidCategory)
}

func TestReadDocument(t *testing.T) {
	f := newFixture(t, verifiedWorker("w1"))
	ctx := context.Background()

	data, err := f.svc.ReadDocument(ctx, "w1", models.DocumentCertificate)
	require.NoError(t, err)
	assert.Equal(t, "contents of c", string(data))

	_, err = f.svc.ReadDocument(ctx, "w1", models.DocumentDrivingLicense)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = f.svc.ReadDocument(ctx, "w1", models.DocumentKind("x"))
	assert.ErrorIs(t, err, ErrInvalidDocumentKind)

	_, err = f.svc.ReadDocument(ctx, "missing", models.DocumentCertificate)
	assert.ErrorIs(t, err, ErrWorkerNotFound)
}

// pausingRepo hands out a record and then waits before returning it, so a write
// can land between the read and the cache fill.
type pausingRepo struct {
	*workerRepo.MemoryWorkerRepo
	read    chan struct{}
	release chan struct{}
}

func (r *pausingRepo) GetByID(ctx context.Context, id string) (*models.Worker, error) {
	w, err := r.MemoryWorkerRepo.GetByID(ctx, id)
	r.read <- struct{}{}
	<-r.release
	return w, err
}

func TestGetWorker_FillRacingWriteIsDiscarded(t *testing.T) {
	ctx := context.Background()
	mem := workerRepo.NewMemoryWorkerRepo(verifiedWorker("w1"))
	repo := &pausingRepo{MemoryWorkerRepo: mem, read: make(chan struct{}), release: make(chan struct{})}
	cache := newMapCache()
	svc, err := NewDefaultWorkerService(repo, cache, &fakeStore{}, nil, zap.NewNop())
	require.NoError(t, err)

	done := make(chan *models.Worker)
	go func() {
		w, err := svc.GetWorker(ctx, "w1")
		assert.NoError(t, err)
		done <- w
	}()

	<-repo.read
	require.NoError(t, mem.SetOverallStatus(ctx, "w1", models.StatusRejected, "expired"))
	cache.Invalidate(ctx, "w1")
	close(repo.release)

	stale := <-done
	assert.Equal(t, models.StatusVerified, stale.VerificationStatus)
	_, cached := cache.cached("w1")
	assert.False(t, cached)
}

func TestCheckPermission_ReadsStoredRecord(t *testing.T) {
	w := verifiedWorker("w1")
	w.VerificationStatus = models.StatusRejected
	f := newFixture(t, w)
	ctx := context.Background()

	f.cache.Set(ctx, verifiedWorker("w1"), 0)

	err := f.svc.CheckPermission(ctx, "w1", eligibility.ActionGoOnline)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCheckPermission_DenialIsNotPushed(t *testing.T) {
	w := verifiedWorker("w1")
	w.VerificationStatus = models.StatusPending
	f := newFixture(t, w)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, f.svc.CheckPermission(ctx, "w1", eligibility.ActionGoOnline), ErrPermissionDenied)
	}
	assert.Empty(t, f.push.sent)

	_, err := f.svc.SetOnline(ctx, "w1", true)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Len(t, f.push.sent, 1)
}

// failingRepo fails selected writes.
type failingRepo struct {
	*workerRepo.MemoryWorkerRepo
	setDocument      error
	setOverallStatus error
	getByEmail       error
}

func (r *failingRepo) SetDocument(ctx context.Context, id string, kind models.DocumentKind, ref string) error {
	if r.setDocument != nil {
		return r.setDocument
	}
	return r.MemoryWorkerRepo.SetDocument(ctx, id, kind, ref)
}

func (r *failingRepo) SetOverallStatus(ctx context.Context, id string, status models.VerificationStatus, note string) error {
	if r.setOverallStatus != nil {
		return r.setOverallStatus
	}
	return r.MemoryWorkerRepo.SetOverallStatus(ctx, id, status, note)
}

func (r *failingRepo) GetByEmail(ctx context.Context, email string) (*models.Worker, error) {
	if r.getByEmail != nil {
		return nil, r.getByEmail
	}
	return r.MemoryWorkerRepo.GetByEmail(ctx, email)
}

func newFailingFixture(t *testing.T, repo *failingRepo) (*DefaultWorkerService, *fakeStore, *mapCache) {
	t.Helper()
	store := &fakeStore{}
	cache := newMapCache()
	svc, err := NewDefaultWorkerService(repo, cache, store, nil, zap.NewNop())
	require.NoError(t, err)
	return svc, store, cache
}

func TestUploadDocument_UnrecordedUploadIsDeleted(t *testing.T) {
	repo := &failingRepo{
		MemoryWorkerRepo: workerRepo.NewMemoryWorkerRepo(&models.Worker{ID: "w1"}),
		setDocument:      errors.New("write conflict"),
	}
	svc, store, _ := newFailingFixture(t, repo)

	_, err := svc.UploadDocument(context.Background(), "w1", models.DocumentCertificate, "/tmp/file")
	assert.ErrorContains(t, err, "write conflict")
	assert.Equal(t, []string{"workers/w1/certificate/doc-1"}, store.deleted)
}

func TestUploadDocument_InvalidatesCacheWhenSubmitFails(t *testing.T) {
	docs := allDocs()
	delete(docs, models.DocumentCitizenship)
	repo := &failingRepo{
		MemoryWorkerRepo: workerRepo.NewMemoryWorkerRepo(&models.Worker{ID: "w1", Documents: docs}),
		setOverallStatus: errors.New("primary stepped down"),
	}
	svc, store, cache := newFailingFixture(t, repo)

	_, err := svc.UploadDocument(context.Background(), "w1", models.DocumentCitizenship, "/tmp/file")
	assert.ErrorContains(t, err, "primary stepped down")
	assert.Contains(t, cache.invalidated, "w1")
	assert.Empty(t, store.deleted)

	stored, _ := repo.GetByID(context.Background(), "w1")
	assert.Equal(t, "workers/w1/citizenship/doc-1", stored.Documents[models.DocumentCitizenship])
}

func TestRegister_DuplicateEmailOnInsert(t *testing.T) {
	repo := &failingRepo{
		MemoryWorkerRepo: workerRepo.NewMemoryWorkerRepo(&models.Worker{ID: "w1", Email: "asha@example.com"}),
		getByEmail:       workerRepo.ErrWorkerNotFound,
	}
	svc, _, _ := newFailingFixture(t, repo)

	_, err := svc.Register(context.Background(), models.WorkerRegistrationData{Email: "Asha@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}
