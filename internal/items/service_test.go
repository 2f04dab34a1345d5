package items

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/lostfound-backend/internal/users"
	"github.com/angelmondragon/lostfound-backend/pkg/db"
	"github.com/angelmondragon/lostfound-backend/pkg/db/dbtest"
	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
	"github.com/angelmondragon/lostfound-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
)

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (f *fakeBlobs) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return key, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobs) Ping(context.Context) error { return nil }

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

type failingRepo struct{ itemRepository }

func (failingRepo) Create(context.Context, *models.Item) error { return errors.New("disk full") }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T, client *db.Client, now time.Time) (Service, *fakeBlobs, *countingInvalidator) {
	t.Helper()
	blobs := newFakeBlobs()
	inv := &countingInvalidator{}
	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(client.DB()),
		Blobs:       blobs,
		Invalidator: inv,
		Now:         fixedClock(now),
	})
	require.NoError(t, err)
	return svc, blobs, inv
}

func validInput() CreateInput {
	return CreateInput{
		Name:        "Blue umbrella",
		Description: "Compact, left near the entrance",
		Category:    "Accessories",
		Location:    "Library",
		Status:      "lost",
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreatePersistsItemWithServerDate(t *testing.T) {
	client := dbtest.Open(t)
	now := time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC)
	svc, _, inv := newTestService(t, client, now)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, enums.ItemStatusLost, created.Status)
	assert.True(t, created.DateReported.Equal(now))
	assert.Equal(t, 1, inv.calls)

	loaded, err := svc.Get(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.Name, loaded.Name)
	assert.True(t, loaded.DateReported.Equal(now))
}

func TestCreateRejectsInvalidStatus(t *testing.T) {
	client := dbtest.Open(t)
	svc, _, inv := newTestService(t, client, time.Now())

	input := validInput()
	input.Status = "stolen"
	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	details, ok := pkgerrors.As(err).Details().(pkgerrors.FieldErrors)
	require.True(t, ok)
	assert.Contains(t, details, "status")
	assert.Zero(t, inv.calls)

	n, err := NewRepository(client.DB()).Count(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateStatusIsCaseSensitive(t *testing.T) {
	client := dbtest.Open(t)
	svc, _, _ := newTestService(t, client, time.Now())

	for _, status := range []string{"CLAIMED", "Lost", "FOUND", " lost"} {
		input := validInput()
		input.Status = status
		_, err := svc.Create(context.Background(), input)
		require.Error(t, err, status)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), status)
	}

	n, err := NewRepository(client.DB()).Count(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateRejectsLongLocation(t *testing.T) {
	client := dbtest.Open(t)
	svc, _, _ := newTestService(t, client, time.Now())

	input := validInput()
	input.Location = strings.Repeat("l", 101)
	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	details, ok := pkgerrors.As(err).Details().(pkgerrors.FieldErrors)
	require.True(t, ok)
	assert.Contains(t, details, "location")

	input.Location = strings.Repeat("l", 100)
	_, err = svc.Create(context.Background(), input)
	require.NoError(t, err)
}

func TestCreateRejectsBlankRequiredFields(t *testing.T) {
	client := dbtest.Open(t)
	svc, _, _ := newTestService(t, client, time.Now())

	input := validInput()
	input.Name = "   "
	input.Location = ""
	input.ContactEmail = "not-an-email"
	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)

	details := pkgerrors.As(err).Details().(pkgerrors.FieldErrors)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "is required", details["location"])
	assert.Equal(t, "must be a valid email", details["contact_email"])
}

func TestCreateRejectsOverlongName(t *testing.T) {
	client := dbtest.Open(t)
	svc, _, _ := newTestService(t, client, time.Now())

	input := validInput()
	input.Name = strings.Repeat("x", 101)
	_, err := svc.Create(context.Background(), input)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateStoresProcessedImage(t *testing.T) {
	client := dbtest.Open(t)
	svc, blobs, _ := newTestService(t, client, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	input := validInput()
	input.Image = &ImageUpload{Filename: "photo.png", Body: bytes.NewReader(pngBytes(t, 20, 10))}
	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, created.ImageRef)
	assert.True(t, strings.HasPrefix(*created.ImageRef, "items/2026/02/"))
	assert.Contains(t, blobs.objects, *created.ImageRef)
}

func TestCreateRejectsNonImageUpload(t *testing.T) {
	client := dbtest.Open(t)
	svc, blobs, _ := newTestService(t, client, time.Now())

	input := validInput()
	input.Image = &ImageUpload{Filename: "notes.txt", Body: strings.NewReader("plain text")}
	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	details := pkgerrors.As(err).Details().(pkgerrors.FieldErrors)
	assert.Contains(t, details, "image")
	assert.Empty(t, blobs.objects)
}

func TestCreateDeletesImageWhenInsertFails(t *testing.T) {
	blobs := newFakeBlobs()
	svc, err := NewService(ServiceParams{Repo: failingRepo{}, Blobs: blobs})
	require.NoError(t, err)

	input := validInput()
	input.Image = &ImageUpload{Body: bytes.NewReader(pngBytes(t, 4, 4))}
	_, err = svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))
	assert.Len(t, blobs.deleted, 1)
	assert.Empty(t, blobs.objects)
}

func TestGetUnknownOrMalformedIsNotFound(t *testing.T) {
	client := dbtest.Open(t)
	svc, _, _ := newTestService(t, client, time.Now())

	for _, id := range []string{uuid.NewString(), "not-a-uuid", ""} {
		_, err := svc.Get(context.Background(), id)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), id)
	}
}

func TestGetIsIdempotent(t *testing.T) {
	client := dbtest.Open(t)
	svc, _, _ := newTestService(t, client, time.Now())

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	first, err := svc.Get(context.Background(), created.ID.String())
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDateReportedIsImmutable(t *testing.T) {
	client := dbtest.Open(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, client, now)
	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	later := now.Add(48 * time.Hour)
	err = client.Exec(context.Background(), "UPDATE items SET date_reported = ? WHERE id = ?", later, created.ID).Error
	assert.Error(t, err, "trigger should reject date_reported changes")

	require.NoError(t, client.DB().Model(&models.Item{ID: created.ID}).
		Updates(&models.Item{Name: "Renamed", DateReported: later}).Error)

	reloaded, err := svc.Get(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", reloaded.Name)
	assert.True(t, reloaded.DateReported.Equal(now))
}

func TestListByOwnerNewestFirst(t *testing.T) {
	client := dbtest.Open(t)
	ctx := context.Background()
	owner, err := users.NewRepository(client.DB()).Create(ctx, users.CreateUserDTO{Username: "owner", PasswordHash: "h"})
	require.NoError(t, err)

	repo := NewRepository(client.DB())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		svc, err := NewService(ServiceParams{Repo: repo, Now: fixedClock(base.AddDate(0, 0, i))})
		require.NoError(t, err)
		input := validInput()
		input.OwnerID = &owner.ID
		created, err := svc.Create(ctx, input)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput())
	require.NoError(t, err)

	owned, err := svc.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, owned, 3)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0]}, []uuid.UUID{owned[0].ID, owned[1].ID, owned[2].ID})
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
