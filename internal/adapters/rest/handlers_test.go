package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)                 {}
func (nopLogger) Warn(string, port.Fields)                 {}
func (nopLogger) Error(string, error, port.Fields)         {}
func (nopLogger) Debug(string, port.Fields)                {}
func (l nopLogger) WithFields(port.Fields) port.LoggerPort { return l }

var (
	branchID    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	apartmentID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	roomID      = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	createdAt   = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
)

// --- фейки публичных use case ---

type fakeLoader struct{ snapshot domain.ListingSnapshot }

func (f *fakeLoader) Load(context.Context) (*domain.ListingSnapshot, error) { return &f.snapshot, nil }
func (f *fakeLoader) Snapshot() domain.ListingSnapshot                     { return f.snapshot }

type fakeTreeUC struct {
	snapshot *domain.ListingSnapshot
	err      error
}

func (f *fakeTreeUC) Execute(context.Context) (*domain.ListingSnapshot, error) { return f.snapshot, f.err }

type fakeBranchUC struct{ node *domain.BranchNode }

func (f *fakeBranchUC) Execute(_ context.Context, id uuid.UUID) (*domain.BranchNode, error) {
	if f.node == nil || f.node.ID != id {
		return nil, fmt.Errorf("branch %s: %w", id, domain.ErrNotFound)
	}
	return f.node, nil
}

type fakeApartmentUC struct{ details *domain.ApartmentDetails }

func (f *fakeApartmentUC) Execute(context.Context, uuid.UUID) (*domain.ApartmentDetails, error) {
	return f.details, nil
}

type fakeRoomUC struct{ err error }

func (f *fakeRoomUC) Execute(context.Context, uuid.UUID) (*domain.RoomDetails, error) {
	return nil, f.err
}

type fakeBookingUC struct {
	gotApartment, gotRoom *uuid.UUID
}

func (f *fakeBookingUC) Execute(_ context.Context, apartmentID, roomID *uuid.UUID) (*domain.BookingLink, error) {
	f.gotApartment, f.gotRoom = apartmentID, roomID
	return &domain.BookingLink{Target: domain.BookingBranchRoom, Message: "Hello!", URL: "https://wa.me/15550001111?text=Hello%21"}, nil
}

// --- фейки админки ---

type fakeAuthorize struct{ err error }

func (f *fakeAuthorize) Execute(_ context.Context, token string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Profile{ID: uuid.New(), Role: domain.RoleAdmin}, nil
}

type fakeBranches struct{ created []domain.BranchInput }

func (f *fakeBranches) List(context.Context) ([]domain.Branch, error) {
	return []domain.Branch{{ID: branchID, Name: "Downtown", City: "Bangalore"}}, nil
}
func (f *fakeBranches) Create(_ context.Context, in domain.BranchInput) (*domain.Branch, error) {
	f.created = append(f.created, in)
	return &domain.Branch{ID: branchID, Name: in.Name, City: in.City, Address: in.Address}, nil
}
func (f *fakeBranches) Update(_ context.Context, id uuid.UUID, in domain.BranchInput) (*domain.Branch, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeBranches) Delete(context.Context, uuid.UUID) error { return nil }

type fakeApartments struct{ filter domain.ApartmentFilter }

func (f *fakeApartments) List(_ context.Context, filter domain.ApartmentFilter) ([]domain.Apartment, error) {
	f.filter = filter
	return nil, nil
}
func (f *fakeApartments) Create(context.Context, domain.ApartmentInput) (*domain.Apartment, error) {
	return nil, nil
}
func (f *fakeApartments) Update(context.Context, uuid.UUID, domain.ApartmentInput) (*domain.Apartment, error) {
	return nil, nil
}
func (f *fakeApartments) Delete(context.Context, uuid.UUID) error { return nil }

type fakeRooms struct{ created []domain.RoomInput }

func (f *fakeRooms) List(context.Context, domain.RoomFilter) ([]domain.Room, error) { return nil, nil }
func (f *fakeRooms) Create(_ context.Context, in domain.RoomInput) (*domain.Room, error) {
	f.created = append(f.created, in)
	return &domain.Room{ID: roomID, Owner: in.Owner, Name: in.Name, Capacity: in.Capacity}, nil
}
func (f *fakeRooms) Update(context.Context, uuid.UUID, domain.RoomInput) (*domain.Room, error) {
	return nil, nil
}
func (f *fakeRooms) Delete(context.Context, uuid.UUID) error { return domain.ErrNotFound }

type fakeUpload struct{ got domain.ImageUpload }

func (f *fakeUpload) Execute(_ context.Context, upload domain.ImageUpload) (string, error) {
	f.got = upload
	if upload.Folder != domain.ImageFolderRooms && upload.Folder != domain.ImageFolderApartments {
		return "", fmt.Errorf("%w: unknown folder", domain.ErrValidation)
	}
	return "https://storage.example/storage/v1/object/public/property-images/rooms/x.jpg", nil
}

type fakeRefresh struct{ reasons []string }

func (f *fakeRefresh) Execute(_ context.Context, reason string) (*domain.ListingSnapshot, error) {
	f.reasons = append(f.reasons, reason)
	return &domain.ListingSnapshot{Status: domain.StatusReady, Sequence: 2}, nil
}

type testEnv struct {
	router   http.Handler
	booking  *fakeBookingUC
	branches *fakeBranches
	apts     *fakeApartments
	rooms    *fakeRooms
	upload   *fakeUpload
	refresh  *fakeRefresh
}

func sampleSnapshot() domain.ListingSnapshot {
	lat, lng := 12.9716, 77.5946
	return domain.ListingSnapshot{
		Status:   domain.StatusPartiallyFailed,
		Sequence: 1,
		LoadedAt: createdAt,
		Errors: map[domain.Resource]*domain.ResourceError{
			domain.ResourceRooms: {Resource: domain.ResourceRooms, Message: "request timed out"},
		},
		Tree: domain.ListingTree{Branches: []domain.BranchNode{{
			Branch:  domain.Branch{ID: branchID, Name: "Downtown", City: "Bangalore", Latitude: &lat, Longitude: &lng, CreatedAt: createdAt},
			Geohash: "tdr1v9q",
			Apartments: []domain.ApartmentNode{{
				Apartment: domain.Apartment{ID: apartmentID, BranchID: branchID, Name: "Loft", CreatedAt: createdAt},
			}},
		}}},
	}
}

func newTestEnv(t *testing.T, authErr error, withAdmin bool) *testEnv {
	t.Helper()
	snapshot := sampleSnapshot()
	env := &testEnv{
		booking:  &fakeBookingUC{},
		branches: &fakeBranches{},
		apts:     &fakeApartments{},
		rooms:    &fakeRooms{},
		upload:   &fakeUpload{},
		refresh:  &fakeRefresh{},
	}
	node := snapshot.Tree.Branches[0]
	listings := NewListingHandler(
		&fakeLoader{snapshot: snapshot},
		&fakeTreeUC{snapshot: &snapshot},
		&fakeBranchUC{node: &node},
		&fakeApartmentUC{details: &domain.ApartmentDetails{
			Apartment:   domain.Apartment{ID: apartmentID, BranchID: branchID, Name: "Loft"},
			BranchName:  "Downtown",
			Rooms:       []domain.Room{{ID: roomID, Owner: domain.OwnedByApartment(apartmentID), Name: "Blue", Capacity: 2}},
			BookingLink: domain.BookingLink{Target: domain.BookingApartment, URL: "https://wa.me/1?text=a"},
			RoomLinks:   map[uuid.UUID]domain.BookingLink{roomID: {Target: domain.BookingApartmentRoom, URL: "https://wa.me/1?text=b"}},
		}},
		&fakeRoomUC{err: domain.ErrNotFound},
		env.booking,
	)
	var admin *AdminHandler
	if withAdmin {
		admin = NewAdminHandler(env.branches, env.apts, env.rooms, env.upload, env.refresh)
	}
	env.router = NewRouter(ServerConfig{AllowedOrigins: []string{"https://site.example"}, MetricsHandler: http.NotFoundHandler()},
		listings, admin, NewAdminAuthMiddleware(&fakeAuthorize{err: authErr}), nopLogger{})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

var adminHeaders = map[string]string{"Authorization": "Bearer token", "Content-Type": "application/json"}

func TestGetListings(t *testing.T) {
	env := newTestEnv(t, nil, true)
	rec := env.do(t, http.MethodGet, "/api/v1/listings", "", map[string]string{"X-Trace-ID": "trace-42"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trace-42", rec.Header().Get("X-Trace-ID"))

	var resp ListingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "partially_failed", resp.Status)
	assert.Equal(t, "request timed out", resp.Errors["rooms"])
	require.Len(t, resp.Branches, 1)
	assert.Equal(t, "tdr1v9q", resp.Branches[0].Geohash)
	require.Len(t, resp.Branches[0].Apartments, 1)
	assert.Equal(t, "Loft", resp.Branches[0].Apartments[0].Name)
	assert.NotNil(t, resp.Branches[0].Apartments[0].Rooms)
}

func TestGetBranch(t *testing.T) {
	env := newTestEnv(t, nil, true)

	rec := env.do(t, http.MethodGet, "/api/v1/branches/"+branchID.String(), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/branches/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/branches/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetApartment_IncludesRoomLinks(t *testing.T) {
	env := newTestEnv(t, nil, true)
	rec := env.do(t, http.MethodGet, "/api/v1/apartments/"+apartmentID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ApartmentDetailsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Downtown", resp.BranchName)
	assert.Equal(t, "apartment", resp.BookingLink.Target)
	require.Len(t, resp.Rooms, 1)
	assert.Equal(t, "apartment", resp.Rooms[0].Association)
	require.NotNil(t, resp.Rooms[0].ApartmentID)
	assert.Equal(t, apartmentID, *resp.Rooms[0].ApartmentID)
	assert.Nil(t, resp.Rooms[0].BranchID)
	require.NotNil(t, resp.Rooms[0].BookingLink)
	assert.Equal(t, "apartment_room", resp.Rooms[0].BookingLink.Target)
}

func TestGetRoom_NotFound(t *testing.T) {
	env := newTestEnv(t, nil, true)
	rec := env.do(t, http.MethodGet, "/api/v1/rooms/"+roomID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestGetBookingLink(t *testing.T) {
	env := newTestEnv(t, nil, true)

	rec := env.do(t, http.MethodGet, "/api/v1/booking-link?room_id="+roomID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.booking.gotRoom)
	assert.Equal(t, roomID, *env.booking.gotRoom)
	assert.Nil(t, env.booking.gotApartment)

	rec = env.do(t, http.MethodGet, "/api/v1/booking-link?apartment_id=oops", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminAuth(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		env := newTestEnv(t, nil, true)
		rec := env.do(t, http.MethodGet, "/api/v1/admin/branches", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("invalid token", func(t *testing.T) {
		env := newTestEnv(t, domain.ErrUnauthorized, true)
		rec := env.do(t, http.MethodGet, "/api/v1/admin/branches", "", adminHeaders)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("not an admin", func(t *testing.T) {
		env := newTestEnv(t, domain.ErrForbidden, true)
		rec := env.do(t, http.MethodGet, "/api/v1/admin/branches", "", adminHeaders)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("admin", func(t *testing.T) {
		env := newTestEnv(t, nil, true)
		rec := env.do(t, http.MethodGet, "/api/v1/admin/branches", "", adminHeaders)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAdminRoutesNotMountedWithoutHandler(t *testing.T) {
	env := newTestEnv(t, nil, false)
	rec := env.do(t, http.MethodGet, "/api/v1/admin/branches", "", adminHeaders)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBranch(t *testing.T) {
	env := newTestEnv(t, nil, true)

	rec := env.do(t, http.MethodPost, "/api/v1/admin/branches",
		`{"name":"Downtown","city":"bangalore","address":"MG Road 1","latitude":12.97,"longitude":77.59}`, adminHeaders)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, env.branches.created, 1)
	assert.Equal(t, "bangalore", env.branches.created[0].City)
	require.NotNil(t, env.branches.created[0].Latitude)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/branches", `{"name":"","city":"x","address":"y"}`, adminHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, env.branches.created, 1)
}

func TestUpdateBranch_NotFound(t *testing.T) {
	env := newTestEnv(t, nil, true)
	rec := env.do(t, http.MethodPut, "/api/v1/admin/branches/"+branchID.String(),
		`{"name":"a","city":"b","address":"c"}`, adminHeaders)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListApartments_FilterByBranch(t *testing.T) {
	env := newTestEnv(t, nil, true)
	rec := env.do(t, http.MethodGet, "/api/v1/admin/apartments?branch_id="+branchID.String(), "", adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	require.NotNil(t, env.apts.filter.BranchID)
	assert.Equal(t, branchID, *env.apts.filter.BranchID)
}

func TestCreateRoom_AssociationPicksOneKey(t *testing.T) {
	env := newTestEnv(t, nil, true)
	body := fmt.Sprintf(`{"association":"apartment","apartment_id":"%s","branch_id":"%s","name":"Blue","capacity":2,"price_per_night":40}`,
		apartmentID, branchID)

	rec := env.do(t, http.MethodPost, "/api/v1/admin/rooms", body, adminHeaders)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, env.rooms.created, 1)

	aptKey, branchKey := env.rooms.created[0].Owner.ForeignKeys()
	require.NotNil(t, aptKey)
	assert.Equal(t, apartmentID, *aptKey)
	assert.Nil(t, branchKey)

	var resp RoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "apartment", resp.Association)
}

func TestCreateRoom_SchemaRejectsZeroCapacity(t *testing.T) {
	env := newTestEnv(t, nil, true)
	body := fmt.Sprintf(`{"association":"branch","branch_id":"%s","name":"Blue","capacity":0,"price_per_night":40}`, branchID)
	rec := env.do(t, http.MethodPost, "/api/v1/admin/rooms", body, adminHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.rooms.created)
}

func TestDeleteRoom_NotFound(t *testing.T) {
	env := newTestEnv(t, nil, true)
	rec := env.do(t, http.MethodDelete, "/api/v1/admin/rooms/"+roomID.String(), "", adminHeaders)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t, nil, true)

	body, contentType := multipartBody(t, "file", "photo.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/images?folder=rooms", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "rooms", env.upload.got.Folder)
	assert.Equal(t, "photo.png", env.upload.got.FileName)
	assert.Equal(t, []byte("png-bytes"), env.upload.got.Data)

	var resp ImageUploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.URL, "/property-images/rooms/")
}

func TestUploadImage_BadFolder(t *testing.T) {
	env := newTestEnv(t, nil, true)

	body, contentType := multipartBody(t, "file", "photo.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/images?folder=avatars", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshListings(t *testing.T) {
	env := newTestEnv(t, nil, true)
	rec := env.do(t, http.MethodPost, "/api/v1/admin/listings/refresh", "", adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"admin"}, env.refresh.reasons)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil, true)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"listings_status":"partially_failed"`)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil, true)
	rec := env.do(t, http.MethodOptions, "/api/v1/listings", "", map[string]string{
		"Origin":                        "https://site.example",
		"Access-Control-Request-Method": "GET",
	})
	assert.Equal(t, "https://site.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUploadImage_StorageNotConfigured(t *testing.T) {
	admin := NewAdminHandler(&fakeBranches{}, &fakeApartments{}, &fakeRooms{}, nil, &fakeRefresh{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/images?folder=rooms", strings.NewReader(""))
	rec := httptest.NewRecorder()
	admin.UploadImage(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
