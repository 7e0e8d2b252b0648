package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadet-portal/cadet-portal/internal/events"
	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

type stored struct {
	unit  string
	event events.Event
}

type memoryRepo struct {
	nextID int64
	events map[int64]stored
	writes int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{events: map[int64]stored{}}
}

func (m *memoryRepo) ListByUnit(_ context.Context, unitID string) ([]events.Event, error) {
	out := []events.Event{}
	for _, s := range m.events {
		if s.unit == unitID {
			out = append(out, s.event)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64, unitID string) (*events.Event, error) {
	s, ok := m.events[id]
	if !ok || s.unit != unitID {
		return nil, shared.ErrNotFound
	}
	return &s.event, nil
}

func toEvent(id int64, in events.Input) events.Event {
	return events.Event{ID: id, EventDate: in.EventDate, FallinTime: in.FallinTime, DressCode: in.DressCode,
		Location: in.Location, Instructions: in.Instructions}
}

func (m *memoryRepo) Create(_ context.Context, unitID string, in events.Input) (int64, error) {
	m.nextID++
	m.writes++
	m.events[m.nextID] = stored{unit: unitID, event: toEvent(m.nextID, in)}
	return m.nextID, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, unitID string, in events.Input) (bool, error) {
	s, ok := m.events[id]
	if !ok || s.unit != unitID {
		return false, nil
	}
	m.writes++
	m.events[id] = stored{unit: unitID, event: toEvent(id, in)}
	return true, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64, unitID string) (bool, error) {
	s, ok := m.events[id]
	if !ok || s.unit != unitID {
		return false, nil
	}
	m.writes++
	delete(m.events, id)
	return true, nil
}

type sent struct {
	unit   string
	notice notifications.Notice
}

type recordingNotifier struct {
	sent       []sent
	recipients int
}

func (r *recordingNotifier) NotifyUnitBestEffort(_ context.Context, unitID string, n notifications.Notice) (int, error) {
	r.sent = append(r.sent, sent{unitID, n})
	return r.recipients, nil
}

var (
	adminU1 = shared.AdminPrincipal{ID: 1, UnitID: "U1"}
	adminU2 = shared.AdminPrincipal{ID: 2, UnitID: "U2"}
	cadetU1 = shared.CadetPrincipal{ID: 3, RegimentalNumber: "C-100", UnitID: "U1"}
)

func camp() events.Input {
	return events.Input{EventDate: "2024-03-05", FallinTime: "06:30:00", DressCode: "Combat",
		Location: "Range", Instructions: "Carry water"}
}

func TestCreateAnnouncesEvent(t *testing.T) {
	repo, n := newMemoryRepo(), &recordingNotifier{}
	svc := events.NewService(repo, n, nil)

	id, err := svc.Create(context.Background(), adminU1, camp())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, n.sent, 1)
	assert.Equal(t, "U1", n.sent[0].unit)
	assert.Equal(t, notifications.Notice{
		Type:    notifications.TypeEvent,
		Message: `New Event: "Range" on 3/5/2024 at 06:30:00.`,
		Link:    "/cadet/events",
	}, n.sent[0].notice)

	list, err := svc.ListForCadet(context.Background(), cadetU1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateRequiresEveryField(t *testing.T) {
	repo, n := newMemoryRepo(), &recordingNotifier{}
	svc := events.NewService(repo, n, nil)

	in := camp()
	in.Instructions = ""
	_, err := svc.Create(context.Background(), adminU1, in)
	require.ErrorIs(t, err, shared.ErrValidation)
	msg, _ := shared.UserMessage(err)
	assert.Equal(t, "All fields are required.", msg)

	_, err = svc.Create(context.Background(), cadetU1, camp())
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Zero(t, repo.writes)
	assert.Empty(t, n.sent)
}

func TestForeignUnitSeesNotFoundAndNothingChanges(t *testing.T) {
	repo, n := newMemoryRepo(), &recordingNotifier{}
	svc := events.NewService(repo, n, nil)
	id, err := svc.Create(context.Background(), adminU1, camp())
	require.NoError(t, err)

	changed := camp()
	changed.Location = "Elsewhere"
	err = svc.Update(context.Background(), adminU2, id, changed)
	require.ErrorIs(t, err, shared.ErrNotFound)
	msg, _ := shared.UserMessage(err)
	assert.Equal(t, "Event not found or unauthorized.", msg)

	assert.ErrorIs(t, svc.Delete(context.Background(), adminU2, id), shared.ErrNotFound)
	assert.Equal(t, 1, repo.writes)
	assert.Len(t, n.sent, 1)
	assert.Equal(t, "Range", repo.events[id].event.Location)
}

func TestUpdateAndDeleteAnnounce(t *testing.T) {
	repo, n := newMemoryRepo(), &recordingNotifier{}
	svc := events.NewService(repo, n, nil)
	id, err := svc.Create(context.Background(), adminU1, camp())
	require.NoError(t, err)

	changed := camp()
	changed.Location = "Drill Hall"
	require.NoError(t, svc.Update(context.Background(), adminU1, id, changed))
	require.NoError(t, svc.Delete(context.Background(), adminU1, id))

	require.Len(t, n.sent, 3)
	assert.Equal(t, `Event updated: "Drill Hall" on 3/5/2024 at 06:30:00.`, n.sent[1].notice.Message)
	assert.Equal(t, `Event removed: "Drill Hall" on 3/5/2024 at 06:30:00.`, n.sent[2].notice.Message)
	assert.Empty(t, repo.events)
}
