package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"communitypulse/internal/domain"
)

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	byLogin   map[string]*domain.User
	getErr    error
	createErr error
	updateErr error
	updated   []*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byLogin: make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) add(u *domain.User) {
	f.byID[u.ID] = u
	if u.Email != "" {
		f.byLogin[u.Email] = u
	}
	if u.Username != "" {
		f.byLogin[u.Username] = u
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	u.ID = "created-1"
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByEmailOrUsername(ctx context.Context, identifier string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byLogin[identifier]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	f.updated = append(f.updated, &cp)
	return nil
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	byID        map[string]*domain.Event
	listResult  []*domain.Event
	listTotal   int
	listErr     error
	createErr   error
	updateErr   error
	deleteErr   error
	transErr    error
	updated     []*domain.Event
	deleted     []string
	transitions []string
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) add(e *domain.Event) { f.byID[e.ID] = e }

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = "event-created-1"
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listResult, f.listTotal, nil
}

func (f *fakeEventRepo) ListPending(ctx context.Context) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if e.Status == domain.StatusPending {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListRSVPdByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	return f.listResult, f.listErr
}

func (f *fakeEventRepo) ListApprovedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if e.Status == domain.StatusApproved && !e.StartDatetime.Before(from) && e.StartDatetime.Before(to) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	f.updated = append(f.updated, &cp)
	return nil
}

func (f *fakeEventRepo) TransitionStatus(ctx context.Context, id string, from, to domain.EventStatus) (*domain.Event, error) {
	if f.transErr != nil {
		return nil, f.transErr
	}
	e, ok := f.byID[id]
	if !ok || e.Status != from {
		return nil, domain.ErrNotFound
	}
	e.Status = to
	f.transitions = append(f.transitions, id+":"+string(from)+"->"+string(to))
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) Cancel(ctx context.Context, id string) (*domain.Event, error) {
	if f.transErr != nil {
		return nil, f.transErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if e.Status == domain.StatusCancelled {
		return nil, fmt.Errorf("event is already cancelled: %w", domain.ErrInvalidInput)
	}
	from := e.Status
	e.Status = domain.StatusCancelled
	f.transitions = append(f.transitions, id+":"+string(from)+"->"+string(domain.StatusCancelled))
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeRSVPRepo implements domain.RSVPRepository for tests.
type fakeRSVPRepo struct {
	byEventUser  map[string]*domain.RSVP
	byEventGuest map[string]*domain.RSVP
	byEvent      map[string][]*domain.RSVP
	createErr    error
	listErr      error
}

func newFakeRSVPRepo() *fakeRSVPRepo {
	return &fakeRSVPRepo{
		byEventUser:  make(map[string]*domain.RSVP),
		byEventGuest: make(map[string]*domain.RSVP),
		byEvent:      make(map[string][]*domain.RSVP),
	}
}

func (f *fakeRSVPRepo) add(r *domain.RSVP) {
	if r.UserID != nil {
		f.byEventUser[r.EventID+"|"+*r.UserID] = r
	}
	if r.GuestEmail != nil {
		f.byEventGuest[r.EventID+"|"+*r.GuestEmail] = r
	}
	f.byEvent[r.EventID] = append(f.byEvent[r.EventID], r)
}

func (f *fakeRSVPRepo) Create(ctx context.Context, r *domain.RSVP) error {
	if f.createErr != nil {
		return f.createErr
	}
	if r.UserID != nil {
		if _, ok := f.byEventUser[r.EventID+"|"+*r.UserID]; ok {
			return domain.ErrAlreadyRSVPd
		}
	}
	if r.GuestEmail != nil {
		if _, ok := f.byEventGuest[r.EventID+"|"+*r.GuestEmail]; ok {
			return domain.ErrAlreadyRSVPd
		}
	}
	r.ID = "rsvp-created-1"
	f.add(r)
	return nil
}

func (f *fakeRSVPRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	if r, ok := f.byEventUser[eventID+"|"+userID]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) GetByEventAndGuestEmail(ctx context.Context, eventID, guestEmail string) (*domain.RSVP, error) {
	if r, ok := f.byEventGuest[eventID+"|"+guestEmail]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byEvent[eventID], nil
}

func (f *fakeRSVPRepo) DeleteByEventAndUser(ctx context.Context, eventID, userID string) error {
	key := eventID + "|" + userID
	if _, ok := f.byEventUser[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byEventUser, key)
	return nil
}

func (f *fakeRSVPRepo) DeleteByEventAndGuestEmail(ctx context.Context, eventID, guestEmail string) error {
	key := eventID + "|" + guestEmail
	if _, ok := f.byEventGuest[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byEventGuest, key)
	return nil
}

// fakeNotifier implements domain.NotificationService and records calls.
type fakeNotifier struct {
	welcomed  []string
	cancelled []string
	updated   []string
	summaries []string
}

func (f *fakeNotifier) SendWelcome(ctx context.Context, user *domain.User) error {
	f.welcomed = append(f.welcomed, user.Email)
	return nil
}

func (f *fakeNotifier) NotifyEventCancelled(ctx context.Context, event *domain.Event) (int, int) {
	f.cancelled = append(f.cancelled, event.ID)
	return 0, 0
}

func (f *fakeNotifier) NotifyEventUpdated(ctx context.Context, event *domain.Event, changeSummary string) (int, int) {
	f.updated = append(f.updated, event.ID)
	f.summaries = append(f.summaries, changeSummary)
	return 0, 0
}

func (f *fakeNotifier) RunDailyReminderPass(ctx context.Context, now time.Time) (int, int, error) {
	return 0, 0, nil
}

// fakeMailer implements domain.Mailer and records each send.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error
}

type sentMail struct {
	to      string
	toName  string
	subject string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: make(map[string]error)}
}

func (f *fakeMailer) Send(ctx context.Context, to, toName, subject, html, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, sentMail{to: to, toName: toName, subject: subject})
	return nil
}

// fakeRenderer implements domain.EmailTemplateRenderer.
type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject: " + name, "<p>" + name + "</p>", name, nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	compareErr error
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + password, nil
}
func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if f.compareErr != nil {
		return f.compareErr
	}
	if hash != "hash-"+password {
		return domain.ErrUnauthorized
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}
