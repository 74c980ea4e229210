// Package memstore provides in-memory repositories with the same semantics as
// the MongoDB, Postgres and Redis implementations. Tests use it in place of
// live stores.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// Store holds every collection behind one lock.
type Store struct {
	mu         sync.Mutex
	users      []domain.User
	complaints []domain.Complaint
	feedback   []domain.Feedback
	history    []domain.ComplaintHistory
	revoked    map[string]time.Time
	now        func() time.Time

	// Err, when set, is returned by every operation.
	Err error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Complaints returns the complaint repository view.
func (s *Store) Complaints() repository.ComplaintRepository { return complaintRepo{s} }

// Feedback returns the feedback repository view.
func (s *Store) Feedback() repository.FeedbackRepository { return feedbackRepo{s} }

// History returns the complaint history repository view.
func (s *Store) History() repository.ComplaintHistoryRepository { return historyRepo{s} }

// Revocations returns the token denylist view.
func (s *Store) Revocations() repository.RevokedTokenRepository { return revocationRepo{s} }

func newID() string {
	return primitive.NewObjectID().Hex()
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = newID()
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r userRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			t := at
			r.s.users[i].LastLogin = &t
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r userRepo) List(context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	users := append([]domain.User(nil), r.s.users...)
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// SetUserStatus changes an account status in place.
func (s *Store) SetUserStatus(id string, status domain.UserStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Status = status
		}
	}
}

// SetUserRole changes an account role in place.
func (s *Store) SetUserRole(id string, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Role = role
		}
	}
}

type complaintRepo struct{ s *Store }

func (r complaintRepo) Create(_ context.Context, c *domain.Complaint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	c.ID = newID()
	r.s.complaints = append(r.s.complaints, *c)
	return nil
}

func (r complaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, c := range r.s.complaints {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r complaintRepo) List(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	result := make([]domain.Complaint, 0)
	for _, c := range r.s.complaints {
		if complaintMatches(c, filter) {
			result = append(result, c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r complaintRepo) Update(_ context.Context, id string, patch domain.ComplaintPatch) (*domain.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for i := range r.s.complaints {
		if r.s.complaints[i].ID == id {
			r.s.complaints[i] = patch.Apply(r.s.complaints[i])
			updated := r.s.complaints[i]
			return &updated, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r complaintRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for i := range r.s.complaints {
		if r.s.complaints[i].ID == id {
			r.s.complaints = append(r.s.complaints[:i], r.s.complaints[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r complaintRepo) Count(_ context.Context, filter repository.ComplaintFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	var n int64
	for _, c := range r.s.complaints {
		if complaintMatches(c, filter) {
			n++
		}
	}
	return n, nil
}

func (r complaintRepo) CountByCategory(context.Context) ([]domain.CategoryCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	categories := make([]string, 0, len(r.s.complaints))
	for _, c := range r.s.complaints {
		categories = append(categories, c.Category)
	}
	return groupCategories(categories), nil
}

func (r complaintRepo) AverageResolutionHours(context.Context) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	var (
		total time.Duration
		n     int
	)
	for _, c := range r.s.complaints {
		if c.Status == domain.ComplaintStatusResolved && c.ResolvedAt != nil {
			total += c.ResolvedAt.Sub(c.CreatedAt)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return total.Hours() / float64(n), nil
}

func complaintMatches(c domain.Complaint, f repository.ComplaintFilter) bool {
	if f.OwnerID != "" && c.UserID != f.OwnerID {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Priority != "" && c.Priority != f.Priority {
		return false
	}
	if f.AssignedTo != "" && (c.AssignedTo == nil || *c.AssignedTo != f.AssignedTo) {
		return false
	}
	return true
}

type feedbackRepo struct{ s *Store }

func (r feedbackRepo) Create(_ context.Context, f *domain.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	f.ID = newID()
	r.s.feedback = append(r.s.feedback, *f)
	return nil
}

func (r feedbackRepo) List(_ context.Context, filter repository.FeedbackFilter) ([]domain.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	result := make([]domain.Feedback, 0)
	for _, f := range r.s.feedback {
		if filter.OwnerID == "" || f.UserID == filter.OwnerID {
			result = append(result, f)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r feedbackRepo) UpdateStatus(_ context.Context, id string, status domain.Optional[domain.FeedbackStatus], at time.Time) (*domain.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for i := range r.s.feedback {
		if r.s.feedback[i].ID == id {
			if status.Set {
				r.s.feedback[i].Status = status.Value
			}
			r.s.feedback[i].UpdatedAt = at
			updated := r.s.feedback[i]
			return &updated, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r feedbackRepo) Count(_ context.Context, filter repository.FeedbackFilter) (int64, error) {
	items, err := r.List(context.Background(), filter)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (r feedbackRepo) CountByCategory(context.Context) ([]domain.CategoryCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	categories := make([]string, 0, len(r.s.feedback))
	for _, f := range r.s.feedback {
		categories = append(categories, f.Category)
	}
	return groupCategories(categories), nil
}

func (r feedbackRepo) CountByRating(context.Context) ([]domain.RatingCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	counts := map[int]int64{}
	order := []int{}
	for _, f := range r.s.feedback {
		if _, seen := counts[f.Rating]; !seen {
			order = append(order, f.Rating)
		}
		counts[f.Rating]++
	}
	result := make([]domain.RatingCount, 0, len(order))
	for _, rating := range order {
		result = append(result, domain.RatingCount{Rating: rating, Count: counts[rating]})
	}
	return result, nil
}

func (r feedbackRepo) AverageRating(context.Context) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	if len(r.s.feedback) == 0 {
		return 0, nil
	}
	var sum int
	for _, f := range r.s.feedback {
		sum += f.Rating
	}
	return float64(sum) / float64(len(r.s.feedback)), nil
}

// groupCategories counts categories, largest first, first-seen order on ties.
func groupCategories(categories []string) []domain.CategoryCount {
	index := map[string]int{}
	result := []domain.CategoryCount{}
	for _, c := range categories {
		if i, ok := index[c]; ok {
			result[i].Count++
			continue
		}
		index[c] = len(result)
		result = append(result, domain.CategoryCount{Category: c, Count: 1})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result
}

type historyRepo struct{ s *Store }

func (r historyRepo) Create(_ context.Context, h *domain.ComplaintHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	h.ID = fmt.Sprintf("%d", len(r.s.history)+1)
	h.CreatedAt = r.s.now()
	r.s.history = append(r.s.history, *h)
	return nil
}

func (r historyRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	result := make([]domain.ComplaintHistory, 0)
	for _, h := range r.s.history {
		if h.ComplaintID == complaintID {
			result = append(result, h)
		}
	}
	return result, nil
}

type revocationRepo struct{ s *Store }

func (r revocationRepo) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if ttl <= 0 {
		return nil
	}
	r.s.revoked[tokenID] = r.s.now().Add(ttl)
	return nil
}

func (r revocationRepo) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	exp, ok := r.s.revoked[tokenID]
	return ok && r.s.now().Before(exp), nil
}
