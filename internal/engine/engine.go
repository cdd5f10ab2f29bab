package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ski-training-bot/internal/database"
	"ski-training-bot/internal/logger"
	"ski-training-bot/internal/models"
	"ski-training-bot/internal/utils"
	"ski-training-bot/internal/weather"
)

// WeatherService — источник текущей погоды для движка
type WeatherService interface {
	Current(ctx context.Context, lat, lon float64) (*weather.Conditions, error)
}

// session хранит промежуточные ответы одного диалога.
// У пользователя может быть не больше одной сессии; новая замещает старую.
type session struct {
	state          models.State
	date           time.Time
	slot           models.TimeSlot
	distance       float64
	comment        *string
	weather        *string
	weatherFetched bool
}

// opTimeout ограничивает одну обработку события вместе со всеми
// обращениями к хранилищу и погоде
const opTimeout = 10 * time.Second

// Engine ведёт пользователя по шагам записи тренировки
type Engine struct {
	store   database.Store
	weather WeatherService
	log     logger.Logger

	// Now и OpTimeout подменяются в тестах
	Now       func() time.Time
	OpTimeout time.Duration

	mu       sync.Mutex
	sessions map[int64]*session    // только активные диалоги, Idle не хранится
	locks    map[int64]*sync.Mutex // по замку на пользователя, живут весь аптайм
}

func New(store database.Store, ws WeatherService, log logger.Logger) *Engine {
	return &Engine{
		store:     store,
		weather:   ws,
		log:       log,
		Now:       time.Now,
		OpTimeout: opTimeout,
		sessions:  make(map[int64]*session),
		locks:     make(map[int64]*sync.Mutex),
	}
}

// Handle обрабатывает одно событие пользователя и возвращает ответы.
// События одного пользователя сериализуются, разные пользователи независимы.
func (e *Engine) Handle(ctx context.Context, userID int64, ev Event) []Reply {
	lk := e.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	// Зависшее хранилище не должно навсегда удерживать замок пользователя
	ctx, cancel := context.WithTimeout(ctx, e.OpTimeout)
	defer cancel()

	if err := e.store.EnsureUser(ctx, userID); err != nil {
		e.log.Errorf("Failed to ensure user %d: %v", userID, err)
	}

	if replies, ok := e.handleTopLevel(ctx, userID, ev); ok {
		return replies
	}

	s := e.getSession(userID)
	if s == nil {
		return []Reply{{Text: msgUnknown, Keyboard: mainMenuKeyboard()}}
	}
	switch s.state {
	case models.StateAwaitingLocation:
		return e.handleAwaitingLocation(ctx, userID, ev)
	case models.StateSelectingDate:
		return e.handleSelectingDate(ev, s)
	case models.StateSelectingTimeSlot:
		return e.handleSelectingTimeSlot(ev, s)
	case models.StateEnteringDistance:
		return e.handleEnteringDistance(ev, s)
	case models.StateEnteringComment:
		return e.handleEnteringComment(ctx, userID, ev, s)
	case models.StateCommitFailed:
		return e.handleCommitFailed(ctx, userID, ev, s)
	default:
		return []Reply{{Text: msgUnknown, Keyboard: mainMenuKeyboard()}}
	}
}

// handleTopLevel обрабатывает команды и кнопки главного меню.
// Любое действие верхнего уровня молча замещает активную сессию.
func (e *Engine) handleTopLevel(ctx context.Context, userID int64, ev Event) ([]Reply, bool) {
	var action string
	switch ev.Kind {
	case EventCommand:
		action = ev.Command
	case EventText:
		switch strings.TrimSpace(ev.Text) {
		case btnLogToday:
			action = "today"
		case btnLogOther:
			action = "date"
		case btnStats:
			action = "stats"
		case btnLocation:
			action = "location"
		}
	}

	switch action {
	case "start":
		return e.startFlow(ctx, userID), true
	case "help":
		return []Reply{{Text: msgHelp, Keyboard: mainMenuKeyboard()}}, true
	case "today":
		s := e.newSession(userID)
		s.state = models.StateSelectingTimeSlot
		s.date = utils.DateOnly(e.Now())
		return []Reply{{Text: msgChooseSlot, Keyboard: slotKeyboard()}}, true
	case "date":
		s := e.newSession(userID)
		s.state = models.StateSelectingDate
		return []Reply{{Text: msgAskDate}}, true
	case "stats":
		e.clearSession(userID)
		return e.statsReply(ctx, userID), true
	case "location":
		s := e.newSession(userID)
		s.state = models.StateAwaitingLocation
		return []Reply{{Text: msgAskLocation, Keyboard: locationKeyboard()}}, true
	}
	return nil, false
}

func (e *Engine) startFlow(ctx context.Context, userID int64) []Reply {
	e.clearSession(userID)
	replies := []Reply{{Text: msgGreeting, Keyboard: mainMenuKeyboard()}}

	u, err := e.store.GetUser(ctx, userID)
	if err != nil {
		e.log.Errorf("Failed to get user %d: %v", userID, err)
		return replies
	}
	if u == nil || u.Location == nil {
		// Онбординг: локацию спрашиваем один раз, запись тренировок
		// работает и без неё (просто без погоды)
		s := e.newSession(userID)
		s.state = models.StateAwaitingLocation
		replies = append(replies, Reply{Text: msgAskLocationFirst, Keyboard: locationKeyboard()})
	}
	return replies
}

func (e *Engine) handleAwaitingLocation(ctx context.Context, userID int64, ev Event) []Reply {
	if ev.Kind != EventLocation {
		return []Reply{{Text: msgLocationRetry, Keyboard: locationKeyboard()}}
	}
	if err := e.store.UpsertLocation(ctx, userID, ev.Latitude, ev.Longitude); err != nil {
		e.log.Errorf("Failed to save location for %d: %v", userID, err)
		return []Reply{{Text: msgStorageError, Keyboard: locationKeyboard()}}
	}
	e.clearSession(userID)
	txt := fmt.Sprintf(msgLocationSaved, ev.Latitude, ev.Longitude)
	return []Reply{{Text: txt, Keyboard: mainMenuKeyboard()}}
}

func (e *Engine) handleSelectingDate(ev Event, s *session) []Reply {
	if ev.Kind != EventText {
		return []Reply{{Text: msgDateFormat}}
	}
	d, err := utils.ParseDate(ev.Text)
	if err != nil {
		return []Reply{{Text: msgDateFormat}}
	}
	s.date = d
	s.state = models.StateSelectingTimeSlot
	return []Reply{{Text: msgChooseSlot, Keyboard: slotKeyboard()}}
}

func (e *Engine) handleSelectingTimeSlot(ev Event, s *session) []Reply {
	if ev.Kind == EventCallback && strings.HasPrefix(ev.Data, cbSlotPrefix) {
		if slot, ok := models.ParseTimeSlot(strings.TrimPrefix(ev.Data, cbSlotPrefix)); ok {
			s.slot = slot
			s.state = models.StateEnteringDistance
			return []Reply{{Text: msgAskDistance}}
		}
	}
	return []Reply{{Text: msgChooseSlot, Keyboard: slotKeyboard()}}
}

func (e *Engine) handleEnteringDistance(ev Event, s *session) []Reply {
	if ev.Kind != EventText {
		return []Reply{{Text: msgDistanceInvalid}}
	}
	v, err := utils.ParseDistance(ev.Text)
	if err != nil {
		return []Reply{{Text: msgDistanceInvalid}}
	}
	s.distance = v
	s.state = models.StateEnteringComment
	return []Reply{{Text: msgAskComment, Keyboard: skipKeyboard()}}
}

func (e *Engine) handleEnteringComment(ctx context.Context, userID int64, ev Event, s *session) []Reply {
	switch {
	case ev.Kind == EventCallback && ev.Data == cbSkip:
		s.comment = nil
	case ev.Kind == EventCommand && ev.Command == "skip":
		s.comment = nil
	case ev.Kind == EventText:
		text := strings.TrimSpace(ev.Text)
		if text != "" && text != "-" {
			s.comment = &text
		}
	default:
		return []Reply{{Text: msgAskComment, Keyboard: skipKeyboard()}}
	}
	return e.commit(ctx, userID, s)
}

func (e *Engine) handleCommitFailed(ctx context.Context, userID int64, ev Event, s *session) []Reply {
	if ev.Kind == EventCallback && ev.Data == cbRetry {
		return e.commit(ctx, userID, s)
	}
	return []Reply{{Text: msgRetryHint, Keyboard: retryKeyboard()}}
}

// commit сохраняет собранную тренировку. При ошибке хранилища сессия
// остаётся заполненной, пользователь может повторить сохранение.
func (e *Engine) commit(ctx context.Context, userID int64, s *session) []Reply {
	// Погода запрашивается один раз, повтор сохранения её переиспользует
	if !s.weatherFetched {
		s.weather = e.fetchWeather(ctx, userID, s.date)
		s.weatherFetched = true
	}

	rec := &models.TrainingRecord{
		UserID:     userID,
		Date:       s.date,
		TimeSlot:   s.slot,
		DistanceKm: s.distance,
		Weather:    s.weather,
		Comment:    s.comment,
	}

	if _, err := e.store.InsertRecord(ctx, rec); err != nil {
		e.log.Errorf("Failed to insert record for %d: %v", userID, err)
		s.state = models.StateCommitFailed
		return []Reply{{Text: msgSaveFailed, Keyboard: retryKeyboard()}}
	}

	e.log.Infof("Saved training record %d for user %d: %s km on %s",
		rec.ID, userID, formatKm(rec.DistanceKm), utils.FormatDate(rec.Date))
	e.clearSession(userID)
	return []Reply{{Text: confirmationText(rec), Keyboard: mainMenuKeyboard()}}
}

// fetchWeather возвращает сводку погоды или nil.
// Погода прикрепляется только к сегодняшним тренировкам при известной
// локации; любой сбой деградирует до nil и не мешает сохранению.
func (e *Engine) fetchWeather(ctx context.Context, userID int64, date time.Time) *string {
	if !utils.SameDay(date, e.Now()) {
		return nil
	}
	u, err := e.store.GetUser(ctx, userID)
	if err != nil || u == nil || u.Location == nil {
		return nil
	}
	cond, err := e.weather.Current(ctx, u.Location.Latitude, u.Location.Longitude)
	if err != nil {
		e.log.Warnf("Weather lookup failed for %d: %v", userID, err)
		return nil
	}
	summary := cond.Summary()
	return &summary
}

func (e *Engine) statsReply(ctx context.Context, userID int64) []Reply {
	records, err := e.store.ListRecords(ctx, userID)
	if err != nil {
		e.log.Errorf("Failed to list records for %d: %v", userID, err)
		return []Reply{{Text: msgStorageError, Keyboard: mainMenuKeyboard()}}
	}
	st := BuildStats(records, e.Now())
	return []Reply{{Text: FormatStats(st), Keyboard: mainMenuKeyboard()}}
}

// ---------- сессии и блокировки ----------

func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lk, ok := e.locks[userID]
	if !ok {
		lk = &sync.Mutex{}
		e.locks[userID] = lk
	}
	return lk
}

// getSession возвращает активную сессию или nil, если пользователь в Idle
func (e *Engine) getSession(userID int64) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[userID]
}

// newSession замещает активную сессию пустой
func (e *Engine) newSession(userID int64) *session {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := &session{state: models.StateIdle}
	e.sessions[userID] = s
	return s
}

// clearSession удаляет сессию, возвращая пользователя в Idle
func (e *Engine) clearSession(userID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, userID)
}

// ---------- форматирование ----------

func confirmationText(rec *models.TrainingRecord) string {
	var b strings.Builder
	b.WriteString("✅ Тренировка записана!\n\n")
	fmt.Fprintf(&b, "📅 Дата: %s\n", utils.FormatDate(rec.Date))
	fmt.Fprintf(&b, "🏃 Дистанция: %s км\n", formatKm(rec.DistanceKm))
	fmt.Fprintf(&b, "🕒 Время: %s\n", rec.TimeSlot.Label())
	if rec.Weather != nil {
		fmt.Fprintf(&b, "🌡 Погода: %s\n", *rec.Weather)
	} else {
		b.WriteString("🌡 Погода: недоступна\n")
	}
	if rec.Comment != nil {
		fmt.Fprintf(&b, "💬 Комментарий: %s\n", *rec.Comment)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
