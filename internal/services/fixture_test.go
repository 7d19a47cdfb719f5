package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tesseract-hub/onboarding-service/internal/cache"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/notifications"
	"github.com/tesseract-hub/onboarding-service/internal/repository"
	"github.com/tesseract-hub/onboarding-service/internal/storage"
	"github.com/tesseract-hub/onboarding-service/internal/testutil"
	"github.com/tesseract-hub/onboarding-service/internal/verification"
)

type mockGateway struct {
	mock.Mock
	mu   sync.Mutex
	sent []notifications.Notification
}

func (m *mockGateway) Send(ctx context.Context, n notifications.Notification) {
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()
	m.Called(n)
}

func (m *mockGateway) byTemplate(key string) []notifications.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []notifications.Notification
	for _, n := range m.sent {
		if n.TemplateKey == key {
			out = append(out, n)
		}
	}
	return out
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, req verification.Request) (*verification.Result, error) {
	args := m.Called(req)
	res, _ := args.Get(0).(*verification.Result)
	return res, args.Error(1)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishStatusChanged(ctx context.Context, event models.StatusChangedEvent) error {
	return m.Called(event).Error(0)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store    *repository.Store
	gateway  *mockGateway
	events   *mockEvents
	mr       *miniredis.Miniredis
	clock    *testClock
	profiles *ProfileService
	admin    *AdminService
	mobile   *MobileService
	users    *UserService
}

func newFixture(t *testing.T, verifier verification.Verifier) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	store := repository.NewStore(testutil.NewTestDB(t))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	statusCache := cache.NewRedisCacheWithClient(client, logger)

	files, err := storage.NewLocalStore(t.TempDir(), "/media", logger)
	require.NoError(t, err)

	gateway := &mockGateway{}
	gateway.On("Send", mock.Anything).Return()
	events := &mockEvents{}
	events.On("PublishStatusChanged", mock.Anything).Return(nil)

	if verifier == nil {
		verifier = verification.NewMockVerifier()
	}

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	notifier := NewProfileNotifier(gateway, store.Users, nil, "https://admin.example.com/onboarding", logger)
	mobile := NewMobileService(store, gateway, statusCache, MobileConfig{}, logger)
	mobile.SetClock(clock.Now)
	profiles := NewProfileService(store, files, verifier, notifier, mobile, events, statusCache, logger)
	profiles.SetClock(clock.Now)
	admin := NewAdminService(store, notifier, events, statusCache, logger)
	admin.SetClock(clock.Now)

	return &fixture{
		store:    store,
		gateway:  gateway,
		events:   events,
		mr:       mr,
		clock:    clock,
		profiles: profiles,
		admin:    admin,
		mobile:   mobile,
		users:    NewUserService(store, statusCache, logger),
	}
}

func (f *fixture) user(t *testing.T, email string, staff bool) models.Actor {
	t.Helper()
	u, err := f.users.SyncFromClaims(context.Background(), UserClaims{
		UserID:    uuid.New(),
		Email:     email,
		FirstName: strings.Split(email, "@")[0],
		IsStaff:   staff,
	})
	require.NoError(t, err)
	return models.Actor{UserID: u.ID, IsStaff: u.IsStaff}
}

func upload(name, contentType string, size int64) *models.FileUpload {
	return &models.FileUpload{
		Filename:    name,
		Size:        size,
		ContentType: contentType,
		Content:     strings.NewReader("file-content"),
	}
}

func validBusiness() *models.BusinessProfileRequest {
	return &models.BusinessProfileRequest{
		BusinessName:    "Sunrise Stays",
		BusinessType:    "Guest house",
		LicenseNumber:   "LIC-2048",
		AddressLine1:    "1 Harbour Road",
		City:            "Lahore",
		State:           "Punjab",
		PostalCode:      "54000",
		Country:         "Pakistan",
		LicenseDocument: upload("license.pdf", "application/pdf", 1024),
	}
}

func validIdentity() *models.IdentityVerificationRequest {
	return &models.IdentityVerificationRequest{
		DocumentType:       models.DocumentTypeNationalID,
		DocumentNumber:     "3520212345671",
		DocumentImageFront: upload("front.jpg", "image/jpeg", 2048),
	}
}

func validContact() *models.ContactDetailsRequest {
	lat, lng := 31.5204, 74.3587
	return &models.ContactDetailsRequest{
		AddressLine1:     "1 Harbour Road",
		City:             "Lahore",
		State:            "Punjab",
		PostalCode:       "54000",
		Country:          "Pakistan",
		Latitude:         &lat,
		Longitude:        &lng,
		MobileNumber:     "+923001234567",
		TelegramUsername: "sunrise_stays",
	}
}

func validReview() *models.ReviewSubmissionRequest {
	return &models.ReviewSubmissionRequest{TermsAccepted: true, PrivacyPolicyAccepted: true}
}

// completeSteps runs the three steps before review for owner
func (f *fixture) completeSteps(t *testing.T, variant models.Variant, owner models.Actor) {
	t.Helper()
	ctx := context.Background()
	_, err := f.profiles.SubmitBusinessProfile(ctx, variant, owner, validBusiness())
	require.NoError(t, err)
	res, err := f.profiles.SubmitIdentityVerification(ctx, variant, owner, validIdentity())
	require.NoError(t, err)
	require.True(t, res.Completed)
	_, err = f.profiles.SubmitContactDetails(ctx, variant, owner, validContact())
	require.NoError(t, err)
}

// submitted returns a profile that has been submitted for review
func (f *fixture) submitted(t *testing.T, variant models.Variant, email string) (models.Actor, uuid.UUID) {
	t.Helper()
	owner := f.user(t, email, false)
	f.completeSteps(t, variant, owner)
	res, err := f.profiles.SubmitForReview(context.Background(), variant, owner, validReview())
	require.NoError(t, err)
	return owner, res.Profile.ID
}
