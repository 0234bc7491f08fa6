package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"busline/internal/models"
	"busline/internal/schedule"
)

// 4 марта 2024 года был понедельник.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

type fixture struct {
	svc     ScheduleService
	store   *memStore
	events  *recordingNotifier
	metrics *recordingMetrics
	deduper *memDeduper
	mu      sync.Mutex
	now     time.Time
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		store:   newMemStore(),
		events:  &recordingNotifier{},
		metrics: newRecordingMetrics(),
		deduper: newMemDeduper(),
		now:     now,
	}
	f.svc = NewScheduleService(f.store.repository(), Options{
		Location: time.UTC,
		Now:      f.clock,
		Deduper:  f.deduper,
		Notifier: f.events,
		Metrics:  f.metrics,
	}, zap.NewNop())
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) setNow(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func TestCanRegister_ScenarioA(t *testing.T) {
	f := newFixture(t, at(4, 12, 0))
	line := f.store.addLine("X", true)
	f.store.addSlot(line.ID, models.Monday, 12, 30)

	res, err := f.svc.CanRegister(context.Background(), line.ID, "12:30")
	require.NoError(t, err)
	assert.True(t, res.CanRegister)
	assert.Equal(t, string(schedule.ReasonNextDeparture), res.Reason)

	f.setNow(at(4, 12, 35))
	res, err = f.svc.CanRegister(context.Background(), line.ID, "12:30")
	require.NoError(t, err)
	assert.False(t, res.CanRegister)
	assert.Equal(t, string(schedule.ReasonAlreadyDeparted), res.Reason)
}

func TestCanRegister_UnknownIsFalse(t *testing.T) {
	f := newFixture(t, at(4, 12, 0))
	line := f.store.addLine("X", true)
	f.store.addSlot(line.ID, models.Monday, 12, 30)

	res, err := f.svc.CanRegister(context.Background(), line.ID, "13:00")
	require.NoError(t, err)
	assert.False(t, res.CanRegister)
	assert.Equal(t, string(schedule.ReasonUnknownSlot), res.Reason)

	res, err = f.svc.CanRegister(context.Background(), 999, "12:30")
	require.NoError(t, err)
	assert.False(t, res.CanRegister)
	assert.Equal(t, string(schedule.ReasonUnknownSlot), res.Reason)
}

func TestCanRegister_MalformedTime(t *testing.T) {
	f := newFixture(t, at(4, 12, 0))
	line := f.store.addLine("X", true)

	_, err := f.svc.CanRegister(context.Background(), line.ID, "25:99")
	assert.ErrorIs(t, err, ErrInvalidSlotDefinition)
}

func TestTimer_ScenarioB(t *testing.T) {
	f := newFixture(t, at(5, 12, 30))
	line := f.store.addLine("X", true)
	f.store.addSlot(line.ID, models.Tuesday, 12, 0)
	evening := f.store.addSlot(line.ID, models.Tuesday, 18, 0)

	cur, err := f.svc.Current(context.Background(), &line.ID)
	require.NoError(t, err)
	assert.Nil(t, cur)

	next, err := f.svc.Next(context.Background(), &line.ID, true)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, evening.ID, next.ID)
	assert.Equal(t, "18:00", next.DepartureTime)
	require.NotNil(t, next.DepartsAt)
	assert.Equal(t, at(5, 18, 0), *next.DepartsAt)

	timer, err := f.svc.Timer(context.Background(), line.ID)
	require.NoError(t, err)
	assert.Equal(t, string(schedule.StatusUpcoming), timer.Status)
	assert.Nil(t, timer.Current)
	require.NotNil(t, timer.Next)
	assert.Equal(t, evening.ID, timer.Next.ID)
}

func TestTimer_ScenarioD(t *testing.T) {
	f := newFixture(t, at(6, 0, 1))
	line := f.store.addLine("X", true)
	f.store.addSlot(line.ID, models.Tuesday, 12, 0)
	f.store.addSlot(line.ID, models.Thursday, 8, 0)

	timer, err := f.svc.Timer(context.Background(), line.ID)
	require.NoError(t, err)
	assert.Equal(t, string(schedule.StatusNone), timer.Status)
	assert.Nil(t, timer.Current)
	assert.Nil(t, timer.Next)

	next, err := f.svc.Next(context.Background(), &line.ID, false)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "08:00", next.DepartureTime)
	assert.Equal(t, int(models.Thursday), next.DayOfWeek)
}

func TestTimer_Current(t *testing.T) {
	f := newFixture(t, at(4, 12, 27))
	line := f.store.addLine("X", true)
	slot := f.store.addSlot(line.ID, models.Monday, 12, 30)

	timer, err := f.svc.Timer(context.Background(), line.ID)
	require.NoError(t, err)
	assert.Equal(t, string(schedule.StatusCurrent), timer.Status)
	require.NotNil(t, timer.Current)
	assert.Equal(t, slot.ID, timer.Current.ID)
}

func TestTimer_StatusMatchesResolver(t *testing.T) {
	f := newFixture(t, at(4, 0, 0))
	line := f.store.addLine("X", true)
	slots := []models.Schedule{
		f.store.addSlot(line.ID, models.Monday, 12, 0),
		f.store.addSlot(line.ID, models.Monday, 12, 10),
		f.store.addSlot(line.ID, models.Monday, 18, 0),
	}
	r := schedule.NewResolver(0)

	for minute := 11 * 60; minute <= 19*60; minute += 3 {
		ref := at(4, minute/60, minute%60)
		f.setNow(ref)
		timer, err := f.svc.Timer(context.Background(), line.ID)
		require.NoError(t, err)
		assert.Equal(t, string(r.Status(slots, ref)), timer.Status, ref.Format("15:04"))
	}
}

func TestTimer_UnknownLine(t *testing.T) {
	f := newFixture(t, at(4, 12, 0))

	_, err := f.svc.Timer(context.Background(), 42)
	assert.ErrorIs(t, err, ErrLineNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCurrent_AcrossActiveLines(t *testing.T) {
	f := newFixture(t, at(4, 12, 28))
	active := f.store.addLine("A", true)
	inactive := f.store.addLine("B", false)
	f.store.addSlot(inactive.ID, models.Monday, 12, 29)
	slot := f.store.addSlot(active.ID, models.Monday, 12, 30)

	cur, err := f.svc.Current(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, slot.ID, cur.ID)
	assert.Equal(t, "A", cur.LineName)
}

func TestRegisterInterest_ScenarioC(t *testing.T) {
	f := newFixture(t, at(5, 12, 30))
	line := f.store.addLine("X", true)
	f.store.addSlot(line.ID, models.Tuesday, 12, 0)
	evening := f.store.addSlot(line.ID, models.Tuesday, 18, 0)

	res, err := f.svc.RegisterInterest(context.Background(), line.ID, "18:00", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.InterestCount)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.RegisterInterest(context.Background(), line.ID, "18:00", "")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 3, f.store.interest(evening.ID))
	assert.Equal(t, 3, f.metrics.registered)
	assert.Len(t, f.events.byType(EventInterestUpdated), 3)
}

func TestRegisterInterest_Rejected(t *testing.T) {
	f := newFixture(t, at(5, 12, 30))
	line := f.store.addLine("X", true)
	morning := f.store.addSlot(line.ID, models.Tuesday, 12, 0)
	f.store.addSlot(line.ID, models.Tuesday, 18, 0)
	late := f.store.addSlot(line.ID, models.Tuesday, 20, 0)

	_, err := f.svc.RegisterInterest(context.Background(), line.ID, "12:00", "")
	var ineligible *IneligibleError
	require.ErrorAs(t, err, &ineligible)
	assert.Equal(t, schedule.ReasonAlreadyDeparted, ineligible.Reason)
	assert.ErrorIs(t, err, ErrIneligibleSlot)

	_, err = f.svc.RegisterInterest(context.Background(), line.ID, "20:00", "")
	require.ErrorAs(t, err, &ineligible)
	assert.Equal(t, schedule.ReasonNotNext, ineligible.Reason)

	assert.Zero(t, f.store.interest(morning.ID))
	assert.Zero(t, f.store.interest(late.ID))
	assert.Equal(t, 1, f.metrics.rejected[string(schedule.ReasonAlreadyDeparted)])
	assert.Equal(t, 1, f.metrics.rejected[string(schedule.ReasonNotNext)])
}

func TestRegisterInterest_UnknownSlot(t *testing.T) {
	f := newFixture(t, at(5, 12, 30))
	line := f.store.addLine("X", true)
	f.store.addSlot(line.ID, models.Wednesday, 18, 0)

	_, err := f.svc.RegisterInterest(context.Background(), line.ID, "18:00", "")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	_, err = f.svc.RegisterInterest(context.Background(), 77, "18:00", "")
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRegisterInterest_Weekend(t *testing.T) {
	f := newFixture(t, at(9, 10, 0))
	line := f.store.addLine("X", true)
	f.store.addSlot(line.ID, models.Monday, 10, 30)

	_, err := f.svc.RegisterInterest(context.Background(), line.ID, "10:30", "")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestRegisterInterest_WeekendUnknownLine(t *testing.T) {
	f := newFixture(t, at(9, 10, 0))

	_, err := f.svc.RegisterInterest(context.Background(), 999, "10:30", "")
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRegisterInterest_Idempotent(t *testing.T) {
	f := newFixture(t, at(5, 12, 30))
	line := f.store.addLine("X", true)
	slot := f.store.addSlot(line.ID, models.Tuesday, 18, 0)

	first, err := f.svc.RegisterInterest(context.Background(), line.ID, "18:00", "rider-1")
	require.NoError(t, err)
	second, err := f.svc.RegisterInterest(context.Background(), line.ID, "18:00", "rider-1")
	require.NoError(t, err)

	assert.Equal(t, 1, first.InterestCount)
	assert.Equal(t, 1, second.InterestCount)
	assert.Equal(t, 1, f.store.interest(slot.ID))

	_, err = f.svc.RegisterInterest(context.Background(), line.ID, "18:00", "rider-2")
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.interest(slot.ID))
}

func TestRegisterInterest_RejectionReleasesKey(t *testing.T) {
	f := newFixture(t, at(5, 12, 30))
	line := f.store.addLine("X", true)
	f.store.addSlot(line.ID, models.Tuesday, 18, 0)
	late := f.store.addSlot(line.ID, models.Tuesday, 20, 0)

	_, err := f.svc.RegisterInterest(context.Background(), line.ID, "20:00", "rider-1")
	require.ErrorIs(t, err, ErrIneligibleSlot)

	// 18:00 ушёл, теперь ближайший 20:00.
	f.setNow(at(5, 18, 10))
	res, err := f.svc.RegisterInterest(context.Background(), line.ID, "20:00", "rider-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.InterestCount)
	assert.Equal(t, 1, f.store.interest(late.ID))
}

func TestResetElapsed(t *testing.T) {
	f := newFixture(t, at(5, 12, 30))
	line := f.store.addLine("X", true)
	noon := f.store.addSlot(line.ID, models.Tuesday, 12, 0)
	evening := f.store.addSlot(line.ID, models.Tuesday, 18, 0)
	f.store.setInterest(noon.ID, 4, at(5, 11, 50))
	f.store.setInterest(evening.ID, 2, at(5, 12, 10))

	n, err := f.svc.ResetElapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, f.store.interest(noon.ID))
	assert.Equal(t, 2, f.store.interest(evening.ID))

	n, err = f.svc.ResetElapsed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	resets := f.events.byType(EventInterestReset)
	require.Len(t, resets, 1)
	assert.Equal(t, noon.ID, resets[0].ScheduleID)
	assert.Zero(t, resets[0].InterestCount)
	assert.Equal(t, 1, f.metrics.reset)
}

func TestResetElapsed_BoundaryMinute(t *testing.T) {
	f := newFixture(t, at(5, 18, 0))
	line := f.store.addLine("X", true)
	evening := f.store.addSlot(line.ID, models.Tuesday, 18, 0)
	f.store.setInterest(evening.ID, 3, at(5, 17, 0))

	n, err := f.svc.ResetElapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, f.store.interest(evening.ID))
}

func TestResetElapsed_StaleFromPreviousDay(t *testing.T) {
	// Интерес понедельника, сервис не работал до среды.
	f := newFixture(t, at(6, 9, 0))
	line := f.store.addLine("X", true)
	monday := f.store.addSlot(line.ID, models.Monday, 18, 0)
	f.store.setInterest(monday.ID, 5, at(4, 17, 0))

	schedules, err := f.svc.ListLineSchedules(context.Background(), line.ID)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Zero(t, schedules[0].InterestCount)
}

func TestReadsNeverShowElapsedInterest(t *testing.T) {
	f := newFixture(t, at(5, 12, 30))
	line := f.store.addLine("X", true)
	f.store.addSlot(line.ID, models.Tuesday, 18, 0)

	_, err := f.svc.RegisterInterest(context.Background(), line.ID, "18:00", "")
	require.NoError(t, err)

	f.setNow(at(5, 18, 1))
	slot, err := f.svc.ByLineAndTime(context.Background(), line.ID, "18:00", nil)
	require.NoError(t, err)
	assert.Zero(t, slot.InterestCount)
	require.NotNil(t, slot.DepartsAt)
	assert.Equal(t, at(12, 18, 0), *slot.DepartsAt)
}

func TestGetSlot(t *testing.T) {
	f := newFixture(t, at(5, 12, 30))
	line := f.store.addLine("X", true)
	slot := f.store.addSlot(line.ID, models.Tuesday, 12, 0)
	f.store.setInterest(slot.ID, 3, at(5, 9, 0))

	got, err := f.svc.GetSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, slot.ID, got.ID)
	assert.Equal(t, "12:00", got.DepartureTime)
	assert.Zero(t, got.InterestCount)
	require.NotNil(t, got.DepartsAt)
	assert.Equal(t, at(12, 12, 0), *got.DepartsAt)

	_, err = f.svc.GetSlot(context.Background(), 404)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestByLineAndTime(t *testing.T) {
	f := newFixture(t, at(4, 9, 0))
	line := f.store.addLine("X", true)
	monday := f.store.addSlot(line.ID, models.Monday, 12, 30)
	friday := f.store.addSlot(line.ID, models.Friday, 12, 30)

	slot, err := f.svc.ByLineAndTime(context.Background(), line.ID, "12:30", nil)
	require.NoError(t, err)
	assert.Equal(t, monday.ID, slot.ID)

	day := int(models.Friday)
	slot, err = f.svc.ByLineAndTime(context.Background(), line.ID, "12:30", &day)
	require.NoError(t, err)
	assert.Equal(t, friday.ID, slot.ID)

	_, err = f.svc.ByLineAndTime(context.Background(), line.ID, "13:00", nil)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	bad := 6
	_, err = f.svc.ByLineAndTime(context.Background(), line.ID, "12:30", &bad)
	assert.ErrorIs(t, err, ErrInvalidSlotDefinition)
}

func TestListSchedules_ActiveLinesOnly(t *testing.T) {
	f := newFixture(t, at(4, 9, 0))
	active := f.store.addLine("A", true)
	inactive := f.store.addLine("B", false)
	f.store.addSlot(active.ID, models.Monday, 10, 0)
	f.store.addSlot(inactive.ID, models.Monday, 11, 0)

	all, err := f.svc.ListSchedules(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := f.svc.ListSchedules(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].LineID)

	lines, err := f.svc.ListLines(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "A", lines[0].Name)
}

func TestCreateSlot(t *testing.T) {
	f := newFixture(t, at(4, 9, 0))
	line := f.store.addLine("X", true)

	slot, err := f.svc.CreateSlot(context.Background(), SlotInput{
		LineID:        line.ID,
		DayOfWeek:     int(models.Wednesday),
		DepartureTime: "07:15",
	})
	require.NoError(t, err)
	assert.Equal(t, "07:10", slot.ArrivalTime)
	assert.Equal(t, "07:15", slot.DepartureTime)
	assert.Equal(t, "X", slot.LineName)
	assert.Zero(t, slot.InterestCount)

	_, err = f.svc.CreateSlot(context.Background(), SlotInput{
		LineID:        line.ID,
		DayOfWeek:     int(models.Wednesday),
		DepartureTime: "07:15",
	})
	assert.ErrorIs(t, err, ErrSlotExists)
}

func TestCreateSlot_Validation(t *testing.T) {
	f := newFixture(t, at(4, 9, 0))
	line := f.store.addLine("X", true)
	late := "08:00"

	tests := []struct {
		name  string
		in    SlotInput
		field string
	}{
		{"суббота", SlotInput{LineID: line.ID, DayOfWeek: 6, DepartureTime: "07:00"}, "day_of_week"},
		{"нулевой день", SlotInput{LineID: line.ID, DayOfWeek: 0, DepartureTime: "07:00"}, "day_of_week"},
		{"время вне суток", SlotInput{LineID: line.ID, DayOfWeek: 1, DepartureTime: "24:10"}, "departure_time"},
		{"прибытие позже отправления", SlotInput{LineID: line.ID, DayOfWeek: 1, DepartureTime: "07:00", ArrivalTime: &late}, "arrival_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSlot(context.Background(), tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, ErrInvalidSlotDefinition)
		})
	}

	_, err := f.svc.CreateSlot(context.Background(), SlotInput{LineID: 99, DayOfWeek: 1, DepartureTime: "07:00"})
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestUpdateAndDeleteSlot(t *testing.T) {
	f := newFixture(t, at(4, 9, 0))
	line := f.store.addLine("X", true)
	slot := f.store.addSlot(line.ID, models.Monday, 10, 0)
	other := f.store.addSlot(line.ID, models.Monday, 11, 0)

	dep := "10:20"
	updated, err := f.svc.UpdateSlot(context.Background(), slot.ID, SlotPatch{DepartureTime: &dep})
	require.NoError(t, err)
	assert.Equal(t, "10:20", updated.DepartureTime)
	assert.Equal(t, "09:55", updated.ArrivalTime)

	clash := "11:00"
	_, err = f.svc.UpdateSlot(context.Background(), slot.ID, SlotPatch{DepartureTime: &clash})
	assert.ErrorIs(t, err, ErrSlotExists)

	require.NoError(t, f.svc.DeleteSlot(context.Background(), other.ID))
	assert.ErrorIs(t, f.svc.DeleteSlot(context.Background(), other.ID), ErrSlotNotFound)

	_, err = f.svc.UpdateSlot(context.Background(), other.ID, SlotPatch{DepartureTime: &dep})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestUpdateSlot_KeyChangeResetsInterest(t *testing.T) {
	f := newFixture(t, at(5, 9, 0))
	line := f.store.addLine("X", true)
	slot := f.store.addSlot(line.ID, models.Tuesday, 18, 0)

	_, err := f.svc.RegisterInterest(context.Background(), line.ID, "18:00", "")
	require.NoError(t, err)

	arrival := "17:50"
	updated, err := f.svc.UpdateSlot(context.Background(), slot.ID, SlotPatch{ArrivalTime: &arrival})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.InterestCount)
	assert.Empty(t, f.events.byType(EventInterestReset))

	day := int(models.Wednesday)
	updated, err = f.svc.UpdateSlot(context.Background(), slot.ID, SlotPatch{DayOfWeek: &day})
	require.NoError(t, err)
	assert.Zero(t, updated.InterestCount)
	assert.Zero(t, f.store.interest(slot.ID))

	resets := f.events.byType(EventInterestReset)
	require.Len(t, resets, 1)
	assert.Equal(t, slot.ID, resets[0].ScheduleID)
	assert.Equal(t, models.Tuesday, resets[0].DayOfWeek)
	assert.Zero(t, resets[0].InterestCount)
}

func TestPersistenceErrors(t *testing.T) {
	f := newFixture(t, at(4, 9, 0))
	line := f.store.addLine("X", true)
	f.store.failWith = errors.New("connection refused")

	_, err := f.svc.Timer(context.Background(), line.ID)
	assert.ErrorIs(t, err, ErrPersistence)

	_, err = f.svc.CanRegister(context.Background(), line.ID, "10:00")
	assert.ErrorIs(t, err, ErrPersistence)
}
