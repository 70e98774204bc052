package dispatch

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/glbits/Rudraksha-Hospital-IMS/internal/attendance"
	dispatcherrors "github.com/glbits/Rudraksha-Hospital-IMS/internal/dispatch/errors"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/events"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/messaging/kafka"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/notify"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// fakeRepo keeps requests in memory; ClaimPending performs the same
// compare-and-set the conditional UPDATE does in postgres.
type fakeRepo struct {
	mu   sync.Mutex
	rows map[string]*HelpRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[string]*HelpRequest)}
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, row *HelpRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *row
	f.rows[row.ID.String()] = &cp
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, row *HelpRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *row
	f.rows[row.ID.String()] = &cp
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*HelpRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeRepo) FindPending(ctx context.Context) ([]HelpRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []HelpRequest
	for _, row := range f.rows {
		if row.Status == StatusPending {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindByParticipant(ctx context.Context, workerID string) ([]HelpRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []HelpRequest
	for _, row := range f.rows {
		if row.RequesterID.String() == workerID ||
			(row.AssignedResponderID != nil && row.AssignedResponderID.String() == workerID) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepo) ClaimPending(ctx context.Context, id string, responderID uuid.UUID, responderName string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.Status != StatusPending {
		return 0, nil
	}
	row.Status = StatusAccepted
	row.AssignedResponderID = &responderID
	row.AssignedResponderName = &responderName
	row.AcceptedAt = &at
	row.UpdatedAt = at
	return 1, nil
}

type fakeAttendance struct {
	status string
}

func (f *fakeAttendance) GetStatus(ctx context.Context, workerID string) (attendance.StatusResponse, error) {
	return attendance.StatusResponse{Status: f.status}, nil
}
func (f *fakeAttendance) ClockIn(ctx context.Context, workerID string, req attendance.ClockInRequest) (attendance.SessionResponse, error) {
	return attendance.SessionResponse{}, nil
}
func (f *fakeAttendance) ClockOut(ctx context.Context, workerID string, req attendance.ClockOutRequest) (attendance.SessionResponse, error) {
	return attendance.SessionResponse{}, nil
}
func (f *fakeAttendance) ManualClockIn(ctx context.Context, actorID, actorRole string, req attendance.ManualClockInRequest) (attendance.SessionResponse, error) {
	return attendance.SessionResponse{}, nil
}
func (f *fakeAttendance) ManualClockOut(ctx context.Context, actorID, actorRole string, req attendance.ManualClockOutRequest) (attendance.SessionResponse, error) {
	return attendance.SessionResponse{}, nil
}
func (f *fakeAttendance) GetAllForDate(ctx context.Context, date time.Time) (attendance.AdminDailyResponse, error) {
	return attendance.AdminDailyResponse{}, nil
}
func (f *fakeAttendance) AggregateDailyStats(ctx context.Context, workerIDs []string, date time.Time) (map[string]attendance.DailyStat, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakeNotifier) Publish(ctx context.Context, evt notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
}

func (f *fakeNotifier) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Name
	}
	return out
}

type fakeOutbox struct {
	mu      sync.Mutex
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error              { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func seedService(t *testing.T, attStatus string) (*service, *fakeRepo, *fakeNotifier, *fakeOutbox, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	mock.MatchExpectationsInOrder(false)

	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	outbox := &fakeOutbox{}

	svc := NewService(db, repo, &fakeAttendance{status: attStatus}, outbox, notifier, nil).(*service)
	return svc, repo, notifier, outbox, mock, func() { db.Close() }
}

func validBody() CreateRequestBody {
	return CreateRequestBody{
		Location: "Ward 3, Bed 12",
		TaskType: TaskVitalsCheck,
		Priority: PriorityUrgent,
	}
}

func TestService_Create_RequiresOpenSession(t *testing.T) {
	svc, _, notifier, _, _, done := seedService(t, attendance.StatusClosed)
	defer done()

	_, err := svc.Create(context.Background(), uuid.New().String(), "Dr. Rao", validBody())
	assert.ErrorIs(t, err, dispatcherrors.ErrNotClockedIn)
	assert.Empty(t, notifier.names())
}

func TestService_Create_BroadcastsAndEnqueues(t *testing.T) {
	svc, repo, notifier, outbox, mock, done := seedService(t, attendance.StatusOpen)
	defer done()

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Create(context.Background(), uuid.New().String(), "Dr. Rao", validBody())
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, "Dr. Rao", resp.RequesterName)

	stored, err := repo.FindByID(context.Background(), resp.ID)
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)

	assert.Equal(t, []string{events.EventNewRequest}, notifier.names())
	assert.Len(t, outbox.created, 1)
	assert.Equal(t, events.EventNewRequest, outbox.created[0].EventType)
	assert.Equal(t, events.DispatchLifecycleTopic, outbox.created[0].Topic)
	assert.Equal(t, resp.ID, outbox.created[0].AggregateID)
}

func TestService_Create_InvalidPriority(t *testing.T) {
	svc, _, _, _, _, done := seedService(t, attendance.StatusOpen)
	defer done()

	body := validBody()
	body.Priority = "Critical"
	_, err := svc.Create(context.Background(), uuid.New().String(), "Dr. Rao", body)
	assert.ErrorIs(t, err, dispatcherrors.ErrInvalidPriority)
}

func TestService_Create_AcceptsAllFormTaskTypes(t *testing.T) {
	svc, _, _, _, mock, done := seedService(t, attendance.StatusOpen)
	defer done()

	taskTypes := []string{
		TaskGeneralAssistance,
		TaskIVInjection,
		TaskVitalsCheck,
		TaskPatientTransport,
		TaskCodeBlue,
		TaskOther,
	}

	for _, taskType := range taskTypes {
		mock.ExpectBegin()
		mock.ExpectCommit()

		body := validBody()
		body.TaskType = taskType
		resp, err := svc.Create(context.Background(), uuid.New().String(), "Dr. Rao", body)
		assert.NoErrorf(t, err, "task type %q", taskType)
		assert.Equal(t, taskType, resp.TaskType)
	}

	body := validBody()
	body.TaskType = "Sponge Bath"
	_, err := svc.Create(context.Background(), uuid.New().String(), "Dr. Rao", body)
	assert.ErrorIs(t, err, dispatcherrors.ErrInvalidTaskType)
}

func TestService_Accept_FirstClaimWins(t *testing.T) {
	svc, repo, notifier, _, mock, done := seedService(t, attendance.StatusOpen)
	defer done()

	requestID := uuid.New()
	requester := uuid.New()
	repo.rows[requestID.String()] = &HelpRequest{
		ID:            requestID,
		RequesterID:   requester,
		RequesterName: "Dr. Rao",
		Location:      "Ward 3",
		TaskType:      TaskVitalsCheck,
		Priority:      PriorityUrgent,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	const contenders = 12
	for i := 0; i < contenders; i++ {
		mock.ExpectBegin()
	}
	mock.ExpectCommit()
	for i := 0; i < contenders-1; i++ {
		mock.ExpectRollback()
	}

	var wg sync.WaitGroup
	winners := make(chan string, contenders)
	losses := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			responderID := uuid.New().String()
			_, err := svc.Accept(context.Background(), responderID, "Nurse", requestID.String())
			if err != nil {
				losses <- err
				return
			}
			winners <- responderID
		}(i)
	}
	wg.Wait()
	close(winners)
	close(losses)

	var winnerIDs []string
	for id := range winners {
		winnerIDs = append(winnerIDs, id)
	}
	assert.Len(t, winnerIDs, 1, "exactly one responder may win the claim")

	for err := range losses {
		assert.ErrorIs(t, err, dispatcherrors.ErrAlreadyClaimed)
	}

	final, err := repo.FindByID(context.Background(), requestID.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusAccepted, final.Status)
	assert.Equal(t, winnerIDs[0], final.AssignedResponderID.String())
	assert.NotNil(t, final.AcceptedAt)

	assert.Equal(t, []string{events.EventRequestAccepted}, notifier.names())
}

func TestService_Accept_NotFound(t *testing.T) {
	svc, _, _, _, mock, done := seedService(t, attendance.StatusOpen)
	defer done()

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Accept(context.Background(), uuid.New().String(), "Nurse", uuid.New().String())
	assert.ErrorIs(t, err, dispatcherrors.ErrNotFound)
}

func TestService_Complete(t *testing.T) {
	svc, repo, notifier, outbox, mock, done := seedService(t, attendance.StatusOpen)
	defer done()

	requestID := uuid.New()
	responderID := uuid.New()
	name := "Nurse Devi"
	accepted := time.Now().UTC()
	repo.rows[requestID.String()] = &HelpRequest{
		ID:                    requestID,
		RequesterID:           uuid.New(),
		Status:                StatusAccepted,
		AssignedResponderID:   &responderID,
		AssignedResponderName: &name,
		AcceptedAt:            &accepted,
	}

	// Not the assigned responder.
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Complete(context.Background(), uuid.New().String(), requestID.String())
	assert.ErrorIs(t, err, dispatcherrors.ErrNotAssignedResponder)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Complete(context.Background(), responderID.String(), requestID.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.NotNil(t, resp.CompletedAt)

	// Second completion is rejected, even by the assigned responder.
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.Complete(context.Background(), responderID.String(), requestID.String())
	assert.ErrorIs(t, err, dispatcherrors.ErrInvalidState)

	assert.Equal(t, []string{events.EventRequestCompleted}, notifier.names())
	assert.Len(t, outbox.created, 1)
	assert.Equal(t, events.EventRequestCompleted, outbox.created[0].EventType)
}

func TestService_Cancel(t *testing.T) {
	svc, repo, notifier, _, mock, done := seedService(t, attendance.StatusOpen)
	defer done()

	requestID := uuid.New()
	requester := uuid.New()
	repo.rows[requestID.String()] = &HelpRequest{
		ID:          requestID,
		RequesterID: requester,
		Status:      StatusPending,
	}

	// Someone else's request.
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Cancel(context.Background(), uuid.New().String(), requestID.String())
	assert.ErrorIs(t, err, dispatcherrors.ErrNotRequester)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Cancel(context.Background(), requester.String(), requestID.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusCancelled, resp.Status)

	// The record survives as Cancelled, it is not deleted.
	final, err := repo.FindByID(context.Background(), requestID.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusCancelled, final.Status)

	// A cancelled request cannot be cancelled again.
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.Cancel(context.Background(), requester.String(), requestID.String())
	assert.ErrorIs(t, err, dispatcherrors.ErrInvalidState)

	assert.Equal(t, []string{events.EventRequestCancelled}, notifier.names())
}

func TestService_Cancel_AfterClaimRejected(t *testing.T) {
	svc, repo, _, _, mock, done := seedService(t, attendance.StatusOpen)
	defer done()

	requestID := uuid.New()
	requester := uuid.New()
	responderID := uuid.New()
	repo.rows[requestID.String()] = &HelpRequest{
		ID:                  requestID,
		RequesterID:         requester,
		Status:              StatusAccepted,
		AssignedResponderID: &responderID,
	}

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Cancel(context.Background(), requester.String(), requestID.String())
	assert.ErrorIs(t, err, dispatcherrors.ErrInvalidState)
}

func TestService_ListMine(t *testing.T) {
	svc, repo, _, _, _, done := seedService(t, attendance.StatusOpen)
	defer done()

	worker := uuid.New()
	other := uuid.New()

	mine := uuid.New()
	assigned := uuid.New()
	foreign := uuid.New()
	repo.rows[mine.String()] = &HelpRequest{ID: mine, RequesterID: worker, Status: StatusPending}
	repo.rows[assigned.String()] = &HelpRequest{ID: assigned, RequesterID: other, Status: StatusAccepted, AssignedResponderID: &worker}
	repo.rows[foreign.String()] = &HelpRequest{ID: foreign, RequesterID: other, Status: StatusPending}

	out, err := svc.ListMine(context.Background(), worker.String())
	assert.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestService_ListPool(t *testing.T) {
	svc, repo, _, _, _, done := seedService(t, attendance.StatusOpen)
	defer done()

	pending := uuid.New()
	claimed := uuid.New()
	responder := uuid.New()
	repo.rows[pending.String()] = &HelpRequest{ID: pending, RequesterID: uuid.New(), Status: StatusPending}
	repo.rows[claimed.String()] = &HelpRequest{ID: claimed, RequesterID: uuid.New(), Status: StatusAccepted, AssignedResponderID: &responder}

	out, err := svc.ListPool(context.Background())
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, pending.String(), out[0].ID)
}
