package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"busline/internal/models"
	"busline/internal/repository"
)

// memStore: хранилище в памяти с семантикой репозиториев gorm.
type memStore struct {
	mu       sync.Mutex
	lines    map[uint]models.Line
	slots    map[uint]models.Schedule
	nextLine uint
	nextSlot uint
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		lines: make(map[uint]models.Line),
		slots: make(map[uint]models.Schedule),
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Line:     &memLineRepo{m},
		Schedule: &memScheduleRepo{m},
	}
}

func (m *memStore) addLine(name string, active bool) models.Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLine++
	line := models.Line{ID: m.nextLine, Name: name, IsActive: active}
	m.lines[line.ID] = line
	return line
}

func (m *memStore) addSlot(lineID uint, day models.Weekday, hour, minute int) models.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSlot++
	dep := models.MustTimeOfDay(hour, minute)
	slot := models.Schedule{
		ID:            m.nextSlot,
		LineID:        lineID,
		DayOfWeek:     day,
		ArrivalTime:   dep.Sub(5 * time.Minute),
		DepartureTime: dep,
	}
	m.slots[slot.ID] = slot
	return slot
}

func (m *memStore) setInterest(id uint, count int, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := m.slots[id]
	slot.InterestCount = count
	slot.InterestUpdatedAt = &at
	m.slots[id] = slot
}

func (m *memStore) interest(id uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[id].InterestCount
}

func (m *memStore) withLine(slot models.Schedule) models.Schedule {
	slot.Line = m.lines[slot.LineID]
	return slot
}

func (m *memStore) sorted(filter func(models.Schedule) bool) []models.Schedule {
	var result []models.Schedule
	for _, slot := range m.slots {
		if filter(slot) {
			result = append(result, m.withLine(slot))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.LineID != b.LineID {
			return a.LineID < b.LineID
		}
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.DepartureTime != b.DepartureTime {
			return a.DepartureTime < b.DepartureTime
		}
		return a.ID < b.ID
	})
	return result
}

type memLineRepo struct{ m *memStore }

func (r *memLineRepo) Create(_ context.Context, line *models.Line) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, l := range r.m.lines {
		if l.Name == line.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	r.m.nextLine++
	line.ID = r.m.nextLine
	r.m.lines[line.ID] = *line
	return nil
}

func (r *memLineRepo) GetByID(_ context.Context, id uint) (*models.Line, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	line, ok := r.m.lines[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &line, nil
}

func (r *memLineRepo) GetByName(_ context.Context, name string) (*models.Line, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, l := range r.m.lines {
		if l.Name == name {
			return &l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memLineRepo) List(_ context.Context, activeOnly bool) ([]models.Line, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var lines []models.Line
	for _, l := range r.m.lines {
		if !activeOnly || l.IsActive {
			lines = append(lines, l)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Name < lines[j].Name })
	return lines, nil
}

func (r *memLineRepo) Delete(_ context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.lines[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for sid, slot := range r.m.slots {
		if slot.LineID == id {
			delete(r.m.slots, sid)
		}
	}
	delete(r.m.lines, id)
	return nil
}

type memScheduleRepo struct{ m *memStore }

func (r *memScheduleRepo) duplicate(slot *models.Schedule) bool {
	for _, s := range r.m.slots {
		if s.ID != slot.ID && s.LineID == slot.LineID && s.DayOfWeek == slot.DayOfWeek && s.DepartureTime == slot.DepartureTime {
			return true
		}
	}
	return false
}

func (r *memScheduleRepo) Create(_ context.Context, slot *models.Schedule) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.duplicate(slot) {
		return gorm.ErrDuplicatedKey
	}
	r.m.nextSlot++
	slot.ID = r.m.nextSlot
	stored := *slot
	stored.Line = models.Line{}
	r.m.slots[slot.ID] = stored
	return nil
}

func (r *memScheduleRepo) Update(_ context.Context, slot *models.Schedule) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.slots[slot.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.duplicate(slot) {
		return gorm.ErrDuplicatedKey
	}
	if stored.DayOfWeek != slot.DayOfWeek || stored.DepartureTime != slot.DepartureTime {
		stored.InterestCount = 0
		stored.InterestUpdatedAt = nil
		slot.InterestCount = 0
		slot.InterestUpdatedAt = nil
	}
	stored.DayOfWeek = slot.DayOfWeek
	stored.ArrivalTime = slot.ArrivalTime
	stored.DepartureTime = slot.DepartureTime
	r.m.slots[slot.ID] = stored
	return nil
}

func (r *memScheduleRepo) Delete(_ context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.slots[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.slots, id)
	return nil
}

func (r *memScheduleRepo) GetByID(_ context.Context, id uint) (*models.Schedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	slot, ok := r.m.slots[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	slot = r.m.withLine(slot)
	return &slot, nil
}

func (r *memScheduleRepo) GetByKey(_ context.Context, key repository.SlotKey) (*models.Schedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, slot := range r.m.slots {
		if slot.LineID == key.LineID && slot.DayOfWeek == key.Day && slot.DepartureTime == key.Departure {
			slot = r.m.withLine(slot)
			return &slot, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memScheduleRepo) ListByLine(_ context.Context, lineID uint) ([]models.Schedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.sorted(func(s models.Schedule) bool { return s.LineID == lineID }), nil
}

func (r *memScheduleRepo) List(_ context.Context, activeLinesOnly bool) ([]models.Schedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.sorted(func(s models.Schedule) bool {
		return !activeLinesOnly || r.m.lines[s.LineID].IsActive
	}), nil
}

func (r *memScheduleRepo) IncrementInterest(_ context.Context, key repository.SlotKey, at time.Time, check repository.InterestCheck) (*models.Schedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	daySlots := r.m.sorted(func(s models.Schedule) bool {
		return s.LineID == key.LineID && s.DayOfWeek == key.Day
	})
	var target *models.Schedule
	for i := range daySlots {
		if daySlots[i].DepartureTime == key.Departure {
			target = &daySlots[i]
			break
		}
	}
	if target == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if check != nil {
		if err := check(daySlots, *target); err != nil {
			return nil, err
		}
	}
	stored := r.m.slots[target.ID]
	stored.InterestCount++
	stored.InterestUpdatedAt = &at
	r.m.slots[target.ID] = stored
	updated := r.m.withLine(stored)
	return &updated, nil
}

func (r *memScheduleRepo) ResetElapsed(_ context.Context, cutoff repository.ElapsedCutoff) ([]models.Schedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	var reset []models.Schedule
	for id, slot := range r.m.slots {
		if slot.InterestCount <= 0 {
			continue
		}
		elapsedToday := cutoff.Day.Valid() && slot.DayOfWeek == cutoff.Day && slot.DepartureTime <= cutoff.At
		stale := slot.InterestUpdatedAt != nil && slot.InterestUpdatedAt.Before(cutoff.StaleBefore)
		if !elapsedToday && !stale {
			continue
		}
		slot.InterestCount = 0
		r.m.slots[id] = slot
		reset = append(reset, slot)
	}
	return reset, nil
}

// memDeduper: Deduper в памяти.
type memDeduper struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemDeduper() *memDeduper {
	return &memDeduper{keys: make(map[string]bool)}
}

func (d *memDeduper) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.keys[key] {
		return false, nil
	}
	d.keys[key] = true
	return true, nil
}

func (d *memDeduper) Release(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.keys, key)
	return nil
}

// recordingNotifier запоминает доставленные события.
type recordingNotifier struct {
	mu     sync.Mutex
	events []InterestEvent
}

func (n *recordingNotifier) NotifyInterest(_ context.Context, evt InterestEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
	return nil
}

func (n *recordingNotifier) byType(eventType string) []InterestEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []InterestEvent
	for _, evt := range n.events {
		if evt.Type == eventType {
			result = append(result, evt)
		}
	}
	return result
}

// recordingMetrics считает вызовы Metrics.
type recordingMetrics struct {
	mu         sync.Mutex
	registered int
	rejected   map[string]int
	reset      int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{rejected: make(map[string]int)}
}

func (m *recordingMetrics) InterestRegistered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered++
}

func (m *recordingMetrics) InterestRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func (m *recordingMetrics) CountersReset(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset += n
}

func (m *recordingMetrics) ObserveResolve(time.Duration) {}
