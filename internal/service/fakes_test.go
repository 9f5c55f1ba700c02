package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/events"
	"github.com/spec-kit/fitlab-service/internal/repository"
)

// testClock hands out strictly increasing timestamps so ordering by creation time is deterministic.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type fakeUserRepo struct {
	mu        sync.Mutex
	clock     *testClock
	users     map[string]domain.User
	createErr error
}

func newFakeUserRepo(clock *testClock) *fakeUserRepo {
	return &fakeUserRepo{clock: clock, users: map[string]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.clock.next()
	}
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	updated := cloneUser(*user)
	updated.OfferedTests = existing.OfferedTests
	updated.UpdatedAt = r.clock.next()
	user.UpdatedAt = updated.UpdatedAt
	r.users[user.ID] = updated
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := cloneUser(user)
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			clone := cloneUser(user)
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListPendingApprovals(_ context.Context) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool {
		return u.ApprovalStatus == domain.ApprovalPending && u.Role.RequiresApproval()
	}, false), nil
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	matches := r.filter(func(u domain.User) bool {
		if filter.Role != nil && u.Role != *filter.Role {
			return false
		}
		if filter.Search != nil {
			term := strings.ToLower(*filter.Search)
			return strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.Email), term)
		}
		return true
	}, true)
	total := len(matches)
	if filter.Offset >= total {
		return []domain.User{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matches[filter.Offset:end], total, nil
}

func (r *fakeUserRepo) ListApproved(_ context.Context, role domain.Role, search *string) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool {
		if u.Role != role || !u.Approved() || !u.IsActive {
			return false
		}
		if search == nil {
			return true
		}
		term := strings.ToLower(*search)
		for _, field := range []string{u.Name, u.LaboratoryName, u.LaboratoryAddress} {
			if strings.Contains(strings.ToLower(field), term) {
				return true
			}
		}
		return false
	}, false), nil
}

func (r *fakeUserRepo) GetApproved(ctx context.Context, role domain.Role, id string) (*domain.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != role || !user.Approved() || !user.IsActive {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) SetOfferedTests(_ context.Context, userID string, testIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.OfferedTests = append([]string{}, testIDs...)
	r.users[userID] = user
	return nil
}

func (r *fakeUserRepo) Stats(_ context.Context) (repository.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats repository.UserStats
	for _, u := range r.users {
		stats.TotalUsers++
		switch u.Role {
		case domain.RoleFitnessEnthusiast:
			stats.FitnessEnthusiasts++
		case domain.RoleTrainer:
			stats.Trainers++
		case domain.RoleLabPartner:
			stats.LabPartners++
		}
		if u.ApprovalStatus == domain.ApprovalPending {
			stats.PendingApprovals++
		}
	}
	return stats, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context) ([]repository.RoleCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.Role]int{}
	for _, u := range r.users {
		counts[u.Role]++
	}
	result := make([]repository.RoleCount, 0, len(counts))
	for role, count := range counts {
		result = append(result, repository.RoleCount{Role: role, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Role < result[j].Role })
	return result, nil
}

func (r *fakeUserRepo) MonthlySignups(_ context.Context, since time.Time) ([]repository.MonthlyRoleCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	type key struct {
		year, month int
		role        domain.Role
	}
	counts := map[key]int{}
	for _, u := range r.users {
		if u.CreatedAt.Before(since) {
			continue
		}
		created := u.CreatedAt.UTC()
		counts[key{created.Year(), int(created.Month()), u.Role}]++
	}
	result := make([]repository.MonthlyRoleCount, 0, len(counts))
	for k, c := range counts {
		result = append(result, repository.MonthlyRoleCount{Year: k.year, Month: k.month, Role: k.role, Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		if result[i].Month != result[j].Month {
			return result[i].Month < result[j].Month
		}
		return result[i].Role < result[j].Role
	})
	return result, nil
}

func (r *fakeUserRepo) filter(keep func(domain.User) bool, newestFirst bool) []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []domain.User{}
	for _, u := range r.users {
		if keep(u) {
			result = append(result, cloneUser(u))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if newestFirst {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func cloneUser(u domain.User) domain.User {
	u.OfferedTests = append([]string(nil), u.OfferedTests...)
	return u
}

type fakeLabTestRepo struct {
	mu    sync.Mutex
	clock *testClock
	tests map[string]domain.LabTest
}

func newFakeLabTestRepo(clock *testClock) *fakeLabTestRepo {
	return &fakeLabTestRepo{clock: clock, tests: map[string]domain.LabTest{}}
}

func (r *fakeLabTestRepo) Create(_ context.Context, test *domain.LabTest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	test.ID = uuid.NewString()
	test.CreatedAt = r.clock.next()
	test.UpdatedAt = test.CreatedAt
	r.tests[test.ID] = *test
	return nil
}

func (r *fakeLabTestRepo) Update(_ context.Context, test *domain.LabTest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tests[test.ID]
	if !ok || existing.LabPartnerID != test.LabPartnerID {
		return pgx.ErrNoRows
	}
	test.UpdatedAt = r.clock.next()
	r.tests[test.ID] = *test
	return nil
}

func (r *fakeLabTestRepo) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tests[id]
	if !ok || existing.LabPartnerID != ownerID {
		return pgx.ErrNoRows
	}
	delete(r.tests, id)
	return nil
}

func (r *fakeLabTestRepo) GetOwned(_ context.Context, ownerID, id string) (*domain.LabTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	test, ok := r.tests[id]
	if !ok || test.LabPartnerID != ownerID {
		return nil, pgx.ErrNoRows
	}
	return &test, nil
}

func (r *fakeLabTestRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.LabTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.LabTest
	for _, t := range r.tests {
		if t.LabPartnerID == ownerID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeLabTestRepo) ListByIDs(_ context.Context, ids []string) ([]domain.LabTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var result []domain.LabTest
	for _, id := range ids {
		if t, ok := r.tests[id]; ok && !seen[id] {
			seen[id] = true
			result = append(result, t)
		}
	}
	return result, nil
}

func (r *fakeLabTestRepo) CountOwned(_ context.Context, ownerID string, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	count := 0
	for id, t := range r.tests {
		if wanted[id] && t.LabPartnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *fakeLabTestRepo) LockByIDs(ctx context.Context, ids []string) ([]domain.LabTest, error) {
	return r.ListByIDs(ctx, ids)
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	clock    *testClock
	users    *fakeUserRepo
	bookings map[string]domain.LabBooking
}

func newFakeBookingRepo(clock *testClock, users *fakeUserRepo) *fakeBookingRepo {
	return &fakeBookingRepo{clock: clock, users: users, bookings: map[string]domain.LabBooking{}}
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *domain.LabBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = uuid.NewString()
	booking.CreatedAt = r.clock.next()
	booking.UpdatedAt = booking.CreatedAt
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, booking *domain.LabBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.bookings[booking.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Status = booking.Status
	existing.PaymentStatus = booking.PaymentStatus
	existing.ExpectedReportDeliveryTime = booking.ExpectedReportDeliveryTime
	existing.UpdatedAt = r.clock.next()
	booking.UpdatedAt = existing.UpdatedAt
	r.bookings[booking.ID] = existing
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*domain.LabBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &booking, nil
}

func (r *fakeBookingRepo) ListByEnthusiast(ctx context.Context, enthusiastID string) ([]domain.BookingView, error) {
	return r.list(ctx, func(b domain.LabBooking) bool { return b.FitnessEnthusiastID == enthusiastID }, func(v *domain.BookingView) {
		if u, err := r.users.GetByID(ctx, v.Booking.LabPartnerID); err == nil {
			v.LabPartner = summarize(u)
		}
	})
}

func (r *fakeBookingRepo) ListByPartner(ctx context.Context, partnerID string) ([]domain.BookingView, error) {
	return r.list(ctx, func(b domain.LabBooking) bool { return b.LabPartnerID == partnerID }, func(v *domain.BookingView) {
		if u, err := r.users.GetByID(ctx, v.Booking.FitnessEnthusiastID); err == nil {
			v.Enthusiast = summarize(u)
		}
	})
}

func (r *fakeBookingRepo) list(_ context.Context, keep func(domain.LabBooking) bool, attach func(*domain.BookingView)) ([]domain.BookingView, error) {
	r.mu.Lock()
	var result []domain.BookingView
	for _, b := range r.bookings {
		if keep(b) {
			result = append(result, domain.BookingView{Booking: b})
		}
	}
	r.mu.Unlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Booking.CreatedAt.After(result[j].Booking.CreatedAt) })
	for i := range result {
		attach(&result[i])
	}
	return result, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	clock   *testClock
	entries []domain.BookingHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, history *domain.BookingHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	history.ID = uuid.NewString()
	history.CreatedAt = r.clock.next()
	r.entries = append(r.entries, *history)
	return nil
}

func (r *fakeHistoryRepo) ListByBooking(_ context.Context, bookingID string) ([]domain.BookingHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.BookingHistory
	for _, e := range r.entries {
		if e.BookingID == bookingID {
			result = append(result, e)
		}
	}
	return result, nil
}

// fakeTx runs fn inline and counts invocations.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	failures map[string]int64
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]domain.Session{}, failures: map[string]int64{}}
}

func (r *fakeSessionRepo) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) IncrementLoginFailures(_ context.Context, key string, _ time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[key]++
	return r.failures[key], nil
}

func (r *fakeSessionRepo) LoginFailures(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures[key], nil
}

func (r *fakeSessionRepo) ResetLoginFailures(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, key)
	return nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		result = append(result, e.Type)
	}
	return result
}

// seedUser stores a user directly, bypassing registration.
func seedUser(repo *fakeUserRepo, role domain.Role, name, email string, mutate ...func(*domain.User)) *domain.User {
	user := &domain.User{
		Name:           name,
		Email:          email,
		Role:           role,
		Phone:          "555-0100",
		IsActive:       true,
		IsApproved:     true,
		ApprovalStatus: domain.ApprovalApproved,
	}
	if role.RequiresApproval() {
		user.IsApproved = false
		user.ApprovalStatus = domain.ApprovalPending
	}
	for _, m := range mutate {
		m(user)
	}
	_ = repo.Create(context.Background(), user)
	return user
}

func approved(u *domain.User) {
	u.IsApproved = true
	u.ApprovalStatus = domain.ApprovalApproved
}

type fakeBlogRepo struct {
	mu    sync.Mutex
	clock *testClock
	users *fakeUserRepo
	blogs map[string]domain.Blog
}

func newFakeBlogRepo(clock *testClock, users *fakeUserRepo) *fakeBlogRepo {
	return &fakeBlogRepo{clock: clock, users: users, blogs: map[string]domain.Blog{}}
}

func (r *fakeBlogRepo) Create(_ context.Context, blog *domain.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	blog.ID = uuid.NewString()
	blog.CreatedAt = r.clock.next()
	blog.UpdatedAt = blog.CreatedAt
	r.blogs[blog.ID] = cloneBlog(*blog)
	return nil
}

func (r *fakeBlogRepo) Update(_ context.Context, blog *domain.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.blogs[blog.ID]
	if !ok || existing.AuthorID != blog.AuthorID {
		return pgx.ErrNoRows
	}
	blog.UpdatedAt = r.clock.next()
	r.blogs[blog.ID] = cloneBlog(*blog)
	return nil
}

func (r *fakeBlogRepo) Delete(_ context.Context, authorID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.blogs[id]
	if !ok || existing.AuthorID != authorID {
		return pgx.ErrNoRows
	}
	delete(r.blogs, id)
	return nil
}

func (r *fakeBlogRepo) GetOwned(_ context.Context, authorID, id string) (*domain.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	blog, ok := r.blogs[id]
	if !ok || blog.AuthorID != authorID {
		return nil, pgx.ErrNoRows
	}
	clone := cloneBlog(blog)
	return &clone, nil
}

func (r *fakeBlogRepo) GetPublished(ctx context.Context, id string) (*domain.Blog, error) {
	blogs, err := r.ListPublished(ctx, repository.BlogFilter{})
	if err != nil {
		return nil, err
	}
	for i := range blogs {
		if blogs[i].ID == id {
			return &blogs[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeBlogRepo) ListPublished(ctx context.Context, filter repository.BlogFilter) ([]domain.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Blog
	for _, b := range r.blogs {
		if !b.IsPublished {
			continue
		}
		author, err := r.users.GetByID(ctx, b.AuthorID)
		if err != nil || author.IsSuspended {
			continue
		}
		if filter.Category != nil && !strings.EqualFold(b.Category, *filter.Category) {
			continue
		}
		if filter.Search != nil {
			term := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(b.Title), term) && !strings.Contains(strings.ToLower(b.Content), term) {
				continue
			}
		}
		clone := cloneBlog(b)
		clone.Author = &domain.UserSummary{ID: author.ID, Name: author.Name, Email: author.Email}
		result = append(result, clone)
	}
	sortBlogsNewestFirst(result)
	return result, nil
}

func (r *fakeBlogRepo) ListByAuthor(_ context.Context, authorID string) ([]domain.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Blog
	for _, b := range r.blogs {
		if b.AuthorID == authorID {
			result = append(result, cloneBlog(b))
		}
	}
	sortBlogsNewestFirst(result)
	return result, nil
}

func cloneBlog(b domain.Blog) domain.Blog {
	b.Tags = append([]string(nil), b.Tags...)
	return b
}

func sortBlogsNewestFirst(blogs []domain.Blog) {
	sort.Slice(blogs, func(i, j int) bool { return blogs[i].CreatedAt.After(blogs[j].CreatedAt) })
}
