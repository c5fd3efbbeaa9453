package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
	"github.com/anatoli9010/volleyball-club-management/internal/repository"
	pkgerrors "github.com/anatoli9010/volleyball-club-management/pkg/errors"
)

// ── Mock SeasonRepository ──

type mockSeasonRepo struct {
	seasons map[string]*model.Season
	seq     int
}

func newMockSeasonRepo() *mockSeasonRepo {
	return &mockSeasonRepo{seasons: make(map[string]*model.Season)}
}

func (m *mockSeasonRepo) Create(_ context.Context, season *model.Season) error {
	if season.SeasonID == "" {
		m.seq++
		season.SeasonID = fmt.Sprintf("season-%d", m.seq)
	}
	m.seasons[season.SeasonID] = season
	return nil
}

func (m *mockSeasonRepo) GetByID(_ context.Context, id string) (*model.Season, error) {
	if s, ok := m.seasons[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeasonRepo) GetActive(_ context.Context) (*model.Season, error) {
	for _, s := range m.seasons {
		if s.IsActive {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeasonRepo) List(_ context.Context) ([]model.Season, error) {
	var result []model.Season
	for _, s := range m.seasons {
		result = append(result, *s)
	}
	return result, nil
}

// Update 与真实实现一致：不改动 is_active
func (m *mockSeasonRepo) Update(_ context.Context, season *model.Season) error {
	cur, ok := m.seasons[season.SeasonID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	active := cur.IsActive
	updated := *season
	updated.IsActive = active
	m.seasons[season.SeasonID] = &updated
	return nil
}

func (m *mockSeasonRepo) SetActive(_ context.Context, id string, updatedBy string) error {
	s, ok := m.seasons[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.IsActive = true
	s.UpdatedBy = &updatedBy
	return nil
}

func (m *mockSeasonRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.seasons, id)
	return nil
}

func (m *mockSeasonRepo) ClearActive(_ context.Context) error {
	for _, s := range m.seasons {
		s.IsActive = false
	}
	return nil
}

func (m *mockSeasonRepo) activeCount() int {
	n := 0
	for _, s := range m.seasons {
		if s.IsActive {
			n++
		}
	}
	return n
}

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams map[string]*model.Team
	seq   int
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{teams: make(map[string]*model.Team)}
}

func (m *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	if team.TeamID == "" {
		m.seq++
		team.TeamID = fmt.Sprintf("team-%d", m.seq)
	}
	m.teams[team.TeamID] = team
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	if t, ok := m.teams[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) GetByName(_ context.Context, name string) (*model.Team, error) {
	for _, t := range m.teams {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) List(_ context.Context) ([]model.Team, error) {
	var result []model.Team
	for _, t := range m.teams {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockTeamRepo) Rename(_ context.Context, id string, name string) error {
	t, ok := m.teams[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Name = name
	return nil
}

func (m *mockTeamRepo) byName(name string) *model.Team {
	for _, t := range m.teams {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// ── Mock RecurringSlotRepository ──

type mockSlotRepo struct {
	slots map[string]*model.RecurringSlot
	seq   int
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[string]*model.RecurringSlot)}
}

func (m *mockSlotRepo) Create(_ context.Context, slot *model.RecurringSlot) error {
	if slot.SlotID == "" {
		m.seq++
		slot.SlotID = fmt.Sprintf("slot-%d", m.seq)
	}
	m.slots[slot.SlotID] = slot
	return nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, id string) (*model.RecurringSlot, error) {
	if s, ok := m.slots[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSlotRepo) ListBySeason(_ context.Context, seasonID string) ([]model.RecurringSlot, error) {
	var result []model.RecurringSlot
	for _, s := range m.slots {
		if s.SeasonID == seasonID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Weekday != result[j].Weekday {
			return result[i].Weekday < result[j].Weekday
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockSlotRepo) Update(_ context.Context, slot *model.RecurringSlot) error {
	m.slots[slot.SlotID] = slot
	return nil
}

func (m *mockSlotRepo) Delete(_ context.Context, id string) error {
	delete(m.slots, id)
	return nil
}

func (m *mockSlotRepo) ReplaceAll(ctx context.Context, seasonID string, slots []model.RecurringSlot) error {
	for id, s := range m.slots {
		if s.SeasonID == seasonID {
			delete(m.slots, id)
		}
	}
	for i := range slots {
		if err := m.Create(ctx, &slots[i]); err != nil {
			return err
		}
	}
	return nil
}

// ── Mock TrainingSessionRepository ──

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.TrainingSession
	seq      int
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.TrainingSession)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.TrainingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.TeamID != nil && m.findKey(session.Key()) != nil {
		return gorm.ErrDuplicatedKey
	}
	m.insert(session)
	return nil
}

func (m *mockSessionRepo) insert(session *model.TrainingSession) {
	if session.SessionID == "" {
		m.seq++
		session.SessionID = fmt.Sprintf("session-%d", m.seq)
	}
	if session.Version == 0 {
		session.Version = 1
	}
	session.SessionDate = model.DateOnly(session.SessionDate)
	m.sessions[session.SessionID] = session
}

func (m *mockSessionRepo) findKey(key string) *model.TrainingSession {
	for _, s := range m.sessions {
		if s.TeamID != nil && s.Key() == key {
			return s
		}
	}
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.TrainingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) GetByKey(_ context.Context, teamID string, date time.Time, startTime string) (*model.TrainingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.findKey(model.SessionKey(teamID, date, startTime)); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) List(_ context.Context, filter repository.SessionFilter) ([]model.TrainingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start, end := model.DateOnly(filter.Start), model.DateOnly(filter.End)
	var result []model.TrainingSession
	for _, s := range m.sessions {
		if s.SessionDate.Before(start) || s.SessionDate.After(end) {
			continue
		}
		if filter.TeamID != "" && (s.TeamID == nil || *s.TeamID != filter.TeamID) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].SessionDate.Equal(result[j].SessionDate) {
			return result[i].SessionDate.Before(result[j].SessionDate)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockSessionRepo) ListKeysInRange(ctx context.Context, start, end time.Time) ([]model.TrainingSession, error) {
	all, err := m.List(ctx, repository.SessionFilter{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	var result []model.TrainingSession
	for _, s := range all {
		if s.TeamID != nil {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockSessionRepo) BatchCreateIgnoreConflicts(_ context.Context, sessions []model.TrainingSession) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var created int64
	for i := range sessions {
		s := sessions[i]
		if s.TeamID != nil && m.findKey(s.Key()) != nil {
			continue
		}
		m.insert(&s)
		created++
	}
	return created, nil
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.TrainingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.sessions[session.SessionID]
	if !ok || current.Version != session.Version {
		return pkgerrors.ErrOptimisticLock
	}
	if session.TeamID != nil {
		if other := m.findKey(session.Key()); other != nil && other.SessionID != session.SessionID {
			return gorm.ErrDuplicatedKey
		}
	}
	session.Version++
	cp := *session
	m.sessions[session.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ── Mock PlayerRepository ──

type mockPlayerRepo struct {
	players map[string]*model.Player
	seq     int
}

func newMockPlayerRepo() *mockPlayerRepo {
	return &mockPlayerRepo{players: make(map[string]*model.Player)}
}

func (m *mockPlayerRepo) Create(_ context.Context, player *model.Player) error {
	if player.PlayerID == "" {
		m.seq++
		player.PlayerID = fmt.Sprintf("player-%d", m.seq)
	}
	m.players[player.PlayerID] = player
	return nil
}

func (m *mockPlayerRepo) GetByID(_ context.Context, id string) (*model.Player, error) {
	if p, ok := m.players[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlayerRepo) List(_ context.Context, teamID string) ([]model.Player, error) {
	var result []model.Player
	for _, p := range m.players {
		if teamID != "" && (p.TeamID == nil || *p.TeamID != teamID) {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (m *mockPlayerRepo) ListByIDs(_ context.Context, ids []string) ([]model.Player, error) {
	var result []model.Player
	for _, id := range ids {
		if p, ok := m.players[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPlayerRepo) ListWithPhone(_ context.Context) ([]model.Player, error) {
	var result []model.Player
	for _, p := range m.players {
		if p.ParentPhone != nil && *p.ParentPhone != "" {
			result = append(result, *p)
		}
	}
	return result, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records map[string]model.Attendance // session|player
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]model.Attendance)}
}

func (m *mockAttendanceRepo) ListBySession(_ context.Context, sessionID string) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, r := range m.records {
		if r.SessionID == sessionID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, records []model.Attendance) error {
	for _, r := range records {
		m.records[r.SessionID+"|"+r.PlayerID] = r
	}
	return nil
}

func (m *mockAttendanceRepo) CountByPlayers(_ context.Context, playerIDs []string) ([]repository.AttendanceCount, error) {
	want := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		want[id] = true
	}
	counts := make(map[string]*repository.AttendanceCount)
	for _, r := range m.records {
		if !want[r.PlayerID] {
			continue
		}
		c, ok := counts[r.PlayerID]
		if !ok {
			c = &repository.AttendanceCount{PlayerID: r.PlayerID}
			counts[r.PlayerID] = c
		}
		c.Total++
		if r.Status == model.AttendancePresent {
			c.Present++
		}
	}
	var result []repository.AttendanceCount
	for _, c := range counts {
		result = append(result, *c)
	}
	return result, nil
}

// ── Mock PaymentRepository ──

type mockPaymentRepo struct {
	payments map[string]*model.Payment
	seq      int
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[string]*model.Payment)}
}

func (m *mockPaymentRepo) find(playerID string, year, month int) *model.Payment {
	for _, p := range m.payments {
		if p.PlayerID == playerID && p.Year == year && p.Month == month {
			return p
		}
	}
	return nil
}

func (m *mockPaymentRepo) insert(p *model.Payment) {
	m.seq++
	p.PaymentID = fmt.Sprintf("payment-%d", m.seq)
	m.payments[p.PaymentID] = p
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id string) (*model.Payment, error) {
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentRepo) GetByPeriod(_ context.Context, playerID string, year, month int) (*model.Payment, error) {
	if p := m.find(playerID, year, month); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentRepo) List(_ context.Context, filter repository.PaymentFilter) ([]model.Payment, error) {
	var allowed map[string]bool
	if filter.PlayerIDs != nil {
		allowed = make(map[string]bool, len(filter.PlayerIDs))
		for _, id := range filter.PlayerIDs {
			allowed[id] = true
		}
	}
	var result []model.Payment
	for _, p := range m.payments {
		if filter.Year != 0 && p.Year != filter.Year {
			continue
		}
		if filter.Month != 0 && p.Month != filter.Month {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if allowed != nil && !allowed[p.PlayerID] {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		if result[i].Month != result[j].Month {
			return result[i].Month > result[j].Month
		}
		return result[i].PaymentID < result[j].PaymentID
	})
	return result, nil
}

func (m *mockPaymentRepo) EnsureMonth(_ context.Context, playerIDs []string, year, month int) error {
	for _, id := range playerIDs {
		if m.find(id, year, month) == nil {
			m.insert(&model.Payment{PlayerID: id, Year: year, Month: month, Status: model.PaymentPending})
		}
	}
	return nil
}

// Upsert 与真实实现一致：冲突时只更新金额、备注与更新人
func (m *mockPaymentRepo) Upsert(_ context.Context, payment *model.Payment) error {
	if cur := m.find(payment.PlayerID, payment.Year, payment.Month); cur != nil {
		cur.AmountCents = payment.AmountCents
		cur.Note = payment.Note
		cur.UpdatedBy = payment.UpdatedBy
		return nil
	}
	cp := *payment
	if cp.Status == "" {
		cp.Status = model.PaymentPending
	}
	m.insert(&cp)
	return nil
}

func (m *mockPaymentRepo) MarkPaid(_ context.Context, id string, paidAt time.Time, updatedBy string) error {
	p, ok := m.payments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = model.PaymentPaid
	p.PaidAt = &paidAt
	p.UpdatedBy = &updatedBy
	return nil
}

func (m *mockPaymentRepo) MonthlySummary(_ context.Context) ([]repository.PaymentMonthSummary, error) {
	byPeriod := make(map[int]*repository.PaymentMonthSummary)
	for _, p := range m.payments {
		key := p.Year*100 + p.Month
		row, ok := byPeriod[key]
		if !ok {
			row = &repository.PaymentMonthSummary{Year: p.Year, Month: p.Month}
			byPeriod[key] = row
		}
		row.Total++
		if p.IsPaid() {
			row.Paid++
			row.PaidAmount += p.AmountCents
		}
	}
	var result []repository.PaymentMonthSummary
	for _, row := range byPeriod {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Year*100+result[i].Month < result[j].Year*100+result[j].Month
	})
	return result, nil
}

// ── Mock ChatBindingRepository ──

type mockChatBindingRepo struct {
	bindings map[string]model.ChatBinding
}

func newMockChatBindingRepo() *mockChatBindingRepo {
	return &mockChatBindingRepo{bindings: make(map[string]model.ChatBinding)}
}

func (m *mockChatBindingRepo) Upsert(_ context.Context, binding *model.ChatBinding) error {
	m.bindings[binding.Phone] = *binding
	return nil
}

func (m *mockChatBindingRepo) GetByPhone(_ context.Context, phone string) (*model.ChatBinding, error) {
	if b, ok := m.bindings[phone]; ok {
		return &b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChatBindingRepo) ListByPhones(_ context.Context, phones []string) ([]model.ChatBinding, error) {
	var result []model.ChatBinding
	for _, p := range phones {
		if b, ok := m.bindings[p]; ok {
			result = append(result, b)
		}
	}
	return result, nil
}

// ── 聚合 ──

type mockRepos struct {
	season     *mockSeasonRepo
	team       *mockTeamRepo
	slot       *mockSlotRepo
	session    *mockSessionRepo
	player     *mockPlayerRepo
	attendance *mockAttendanceRepo
	chat       *mockChatBindingRepo
	payment    *mockPaymentRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		season:     newMockSeasonRepo(),
		team:       newMockTeamRepo(),
		slot:       newMockSlotRepo(),
		session:    newMockSessionRepo(),
		player:     newMockPlayerRepo(),
		attendance: newMockAttendanceRepo(),
		chat:       newMockChatBindingRepo(),
		payment:    newMockPaymentRepo(),
	}
	repo := &repository.Repository{
		Season:          m.season,
		Team:            m.team,
		RecurringSlot:   m.slot,
		TrainingSession: m.session,
		Player:          m.player,
		Attendance:      m.attendance,
		ChatBinding:     m.chat,
		Payment:         m.payment,
	}
	return repo, m
}

// fixedClock 固定“今天”的时钟
func fixedClock(year int, month time.Month, day int) Clock {
	return Clock{loc: time.UTC, now: func() time.Time {
		return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
	}}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
