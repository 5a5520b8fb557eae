package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory request store
// ---------------------------------------------------------------------------

type memRequestRepo struct {
	mu       sync.Mutex
	nextID   int64
	nextLog  int64
	users    map[int64]domain.User
	requests map[int64]domain.ConsultationRequest
	logs     []domain.StatusLog

	lastFilter ports.ListRequestsFilter
	failWrite  error
}

func newMemRequestRepo(users ...domain.User) *memRequestRepo {
	r := &memRequestRepo{
		users:    make(map[int64]domain.User),
		requests: make(map[int64]domain.ConsultationRequest),
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memRequestRepo) view(req domain.ConsultationRequest) domain.RequestView {
	owner := r.users[req.UserID]
	return domain.RequestView{ConsultationRequest: req, OwnerEmail: owner.Email, OwnerRole: owner.Role}
}

func (r *memRequestRepo) Create(_ context.Context, req *domain.ConsultationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = r.nextID
	r.requests[req.ID] = *req
	return nil
}

func (r *memRequestRepo) find(id, ownerID int64) (domain.ConsultationRequest, bool) {
	req, ok := r.requests[id]
	if !ok || (ownerID != 0 && req.UserID != ownerID) {
		return domain.ConsultationRequest{}, false
	}
	return req, true
}

func (r *memRequestRepo) FindByID(_ context.Context, id, ownerID int64) (*domain.RequestView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.find(id, ownerID)
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	v := r.view(req)
	return &v, nil
}

func (r *memRequestRepo) ListByOwner(_ context.Context, ownerID int64) ([]domain.RequestView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RequestView
	for _, req := range r.requests {
		if req.UserID == ownerID {
			out = append(out, r.view(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memRequestRepo) List(_ context.Context, f ports.ListRequestsFilter) ([]domain.RequestView, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = f

	var all []domain.RequestView
	q := strings.ToLower(f.Search)
	for _, req := range r.requests {
		v := r.view(req)
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if q != "" {
			notes := ""
			if v.Notes != nil {
				notes = *v.Notes
			}
			hay := strings.ToLower(v.Goal + "\n" + notes + "\n" + v.OwnerEmail)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool {
		if f.Desc {
			return all[i].ID > all[j].ID
		}
		return all[i].ID < all[j].ID
	})

	total := int64(len(all))
	if f.Skip >= len(all) {
		return nil, total, nil
	}
	end := f.Skip + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Skip:end], total, nil
}

func (r *memRequestRepo) CountByStatus(_ context.Context) (map[domain.RequestStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.RequestStatus]int64)
	for _, req := range r.requests {
		out[req.Status]++
	}
	return out, nil
}

func (r *memRequestRepo) ApplyTransition(_ context.Context, id, ownerID int64, fn ports.TransitionFunc) (*domain.RequestView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.find(id, ownerID)
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	working := req
	log, err := fn(&working)
	if err != nil {
		return nil, err
	}
	if log != nil {
		if r.failWrite != nil {
			return nil, r.failWrite
		}
		r.nextLog++
		log.ID = r.nextLog
		r.requests[id] = working
		r.logs = append(r.logs, *log)
		req = working
	}
	v := r.view(req)
	return &v, nil
}

func (r *memRequestRepo) DeleteIf(_ context.Context, id, ownerID int64, guard ports.DeleteGuard) (*domain.ConsultationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.find(id, ownerID)
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if err := guard(&req); err != nil {
		return nil, err
	}
	delete(r.requests, id)
	return &req, nil
}

func (r *memRequestRepo) History(_ context.Context, requestID int64) ([]domain.StatusLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StatusLog
	for _, l := range r.logs {
		if l.RequestID == requestID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ChangedAt.Equal(out[j].ChangedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].ChangedAt.After(out[j].ChangedAt)
	})
	return out, nil
}

func (r *memRequestRepo) logsFor(requestID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.logs {
		if l.RequestID == requestID {
			n++
		}
	}
	return n
}

func (r *memRequestRepo) status(requestID int64) domain.RequestStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[requestID].Status
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users    map[string]*domain.User
	profiles map[int64]*domain.ClientProfile
	nextID   int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:    make(map[string]*domain.User),
		profiles: make(map[int64]*domain.ClientProfile),
	}
}

func (r *stubUserRepo) CreateWithProfile(_ context.Context, user *domain.User, profile *domain.ClientProfile) error {
	if _, exists := r.users[user.Email]; exists {
		return domain.ErrUserExists
	}
	r.nextID++
	user.ID = r.nextID
	profile.UserID = user.ID
	profile.ID = r.nextID
	clone := *user
	r.users[user.Email] = &clone
	p := *profile
	r.profiles[user.ID] = &p
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubProfileRepo struct {
	byUser map[int64]*domain.ClientProfile
	nextID int64
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{byUser: make(map[int64]*domain.ClientProfile)}
}

func (r *stubProfileRepo) FindByUserID(_ context.Context, userID int64) (*domain.ClientProfile, error) {
	p, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) Upsert(_ context.Context, p *domain.ClientProfile) error {
	if existing, ok := r.byUser[p.UserID]; ok {
		p.ID = existing.ID
	} else {
		r.nextID++
		p.ID = r.nextID
	}
	clone := *p
	r.byUser[p.UserID] = &clone
	return nil
}

// ---------------------------------------------------------------------------
// Redis-backed collaborators
// ---------------------------------------------------------------------------

type stubIdempotency struct {
	keys      map[string]int64
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]int64)}
}

func idemKey(owner int64, key string) string {
	return fmt.Sprintf("%d:%s", owner, key)
}

func (s *stubIdempotency) Lookup(_ context.Context, owner int64, key string) (int64, bool, error) {
	if s.lookupErr != nil {
		return 0, false, s.lookupErr
	}
	id, ok := s.keys[idemKey(owner, key)]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, owner int64, key string, requestID int64) error {
	s.keys[idemKey(owner, key)] = requestID
	return nil
}

type stubLimiter struct {
	max      int
	failures map[string]int
	err      error
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{max: max, failures: make(map[string]int)}
}

func (l *stubLimiter) Blocked(_ context.Context, email string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return l.failures[email] >= l.max, nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, email string) error {
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, email string) error {
	delete(l.failures, email)
	return nil
}

// ---------------------------------------------------------------------------
// Observer
// ---------------------------------------------------------------------------

type recordingObserver struct {
	created     []domain.RiskProfile
	transitions []string
	rejections  []string
	deleted     []domain.RequestStatus
	logins      []string
}

func (o *recordingObserver) RequestCreated(risk domain.RiskProfile) {
	o.created = append(o.created, risk)
}

func (o *recordingObserver) StatusChanged(from, to domain.RequestStatus, actor domain.Actor) {
	o.transitions = append(o.transitions, string(actor)+":"+string(from)+"->"+string(to))
}

func (o *recordingObserver) TransitionRejected(reason string) {
	o.rejections = append(o.rejections, reason)
}

func (o *recordingObserver) RequestDeleted(status domain.RequestStatus) {
	o.deleted = append(o.deleted, status)
}

func (o *recordingObserver) LoginAttempt(result string) {
	o.logins = append(o.logins, result)
}
