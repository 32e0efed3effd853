package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/nightstudy-service/internal/auth"
	"github.com/spec-kit/nightstudy-service/internal/domain"
	"github.com/spec-kit/nightstudy-service/internal/events"
	"github.com/spec-kit/nightstudy-service/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	next  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.ID == user.ID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	r.next++
	user.InternalID = r.next
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, _ repository.Page) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Role = role
	return nil
}

type fakeStudentRepo struct {
	students map[string]domain.Student
}

func newFakeStudentRepo(ids ...string) *fakeStudentRepo {
	r := &fakeStudentRepo{students: map[string]domain.Student{}}
	for i, id := range ids {
		r.students[id] = domain.Student{ID: id, Grade: 2, ClassNo: 1, Number: i + 1, Name: "student " + id}
	}
	return r
}

func (r *fakeStudentRepo) Create(_ context.Context, s *domain.Student) error {
	if _, ok := r.students[s.ID]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	r.students[s.ID] = *s
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*domain.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (r *fakeStudentRepo) List(_ context.Context, _ repository.Page) ([]domain.Student, error) {
	out := []domain.Student{}
	for _, s := range r.students {
		out = append(out, s)
	}
	return out, nil
}

type fakeScheduleRepo struct {
	schedules map[string]domain.WeekSchedule
}

func (r *fakeScheduleRepo) Upsert(_ context.Context, s *domain.WeekSchedule) error {
	if r.schedules == nil {
		r.schedules = map[string]domain.WeekSchedule{}
	}
	r.schedules[s.StudentID] = *s
	return nil
}

func (r *fakeScheduleRepo) GetByStudentID(_ context.Context, id string) (*domain.WeekSchedule, error) {
	s, ok := r.schedules[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (r *fakeScheduleRepo) List(_ context.Context, _ repository.Page) ([]domain.WeekSchedule, error) {
	out := []domain.WeekSchedule{}
	for _, s := range r.schedules {
		out = append(out, s)
	}
	return out, nil
}

type attendanceKey struct {
	student string
	day     string
	period  domain.Period
}

type fakeAttendanceRepo struct {
	records []domain.AttendanceRecord
	seen    map[attendanceKey]bool
}

func (r *fakeAttendanceRepo) Record(_ context.Context, rec *domain.AttendanceRecord) error {
	if r.seen == nil {
		r.seen = map[attendanceKey]bool{}
	}
	key := attendanceKey{rec.StudentID, rec.AttendanceTime.Format("2006-01-02"), rec.Period}
	if r.seen[key] {
		return repository.ErrAlreadyRecorded
	}
	r.seen[key] = true
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, *rec)
	return nil
}

func (r *fakeAttendanceRepo) Find(_ context.Context, q domain.AttendanceQuery) ([]domain.AttendanceRecord, error) {
	out := []domain.AttendanceRecord{}
	for _, rec := range r.records {
		if q.StudentID != nil && rec.StudentID != *q.StudentID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type fakeRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]bool
	failing bool
}

func newFakeRevocationStore() *fakeRevocationStore {
	return &fakeRevocationStore{revoked: map[string]bool{}}
}

func (s *fakeRevocationStore) EnsureSchema(context.Context) error { return nil }

func (s *fakeRevocationStore) Revoke(_ context.Context, pair domain.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	for _, t := range []string{pair.AccessToken, pair.RefreshToken} {
		if t != "" {
			s.revoked[t] = true
		}
	}
	return nil
}

func (s *fakeRevocationStore) IsRevoked(_ context.Context, pair domain.TokenPair) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return true
	}
	return (pair.AccessToken != "" && s.revoked[pair.AccessToken]) ||
		(pair.RefreshToken != "" && s.revoked[pair.RefreshToken])
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) subscribe(d events.Dispatcher, types ...events.EventType) {
	for _, typ := range types {
		d.Subscribe(typ, func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestSessions(store auth.RevocationStore) *auth.SessionManager {
	codec, err := auth.NewTokenCodec(auth.CodecConfig{Secret: "service-test-secret"})
	if err != nil {
		panic(err)
	}
	return auth.NewSessionManager(codec, store, auth.SessionOptions{})
}
