package eventlog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"miaoyou_backend/internal/logger"
)

// DateLayout - формат даты в именах файлов. Фиксированная ширина нужна для
// лексикографического сравнения дат при очистке.
const DateLayout = "2006-01-02"

var fileNamePattern = regexp.MustCompile(`^(behavior|error)-(\d{4}-\d{2}-\d{2})\.log$`)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Store - append-only хранилище JSON-строк, разбитое по (kind, дата).
// Дата файла определяется по времени записи в таймзоне loc.
type Store struct {
	dir string
	loc *time.Location
	now func() time.Time

	mu sync.Mutex
}

type Option func(*Store)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(dir string, loc *time.Location, opts ...Option) *Store {
	if loc == nil {
		loc = time.Local
	}
	s := &Store{dir: dir, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Dir() string              { return s.dir }
func (s *Store) Location() *time.Location { return s.loc }

// Today возвращает текущую дату в таймзоне хранилища.
func (s *Store) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// ParseDate разбирает YYYY-MM-DD в таймзоне хранилища.
func (s *Store) ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

func (s *Store) path(kind Kind, date string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%s.log", kind, date))
}

// AppendBehavior дописывает событие в сегодняшний behavior-файл.
func (s *Store) AppendBehavior(ev BehaviorEvent) {
	now := s.now()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = now
	}
	s.write(KindBehavior, now, ev)
}

// AppendError дописывает событие в сегодняшний error-файл.
func (s *Store) AppendError(ev ErrorEvent) {
	now := s.now()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = now
	}
	if ev.Level == "" {
		ev.Level = LevelError
	}
	s.write(KindError, now, ev)
}

// Append сериализует произвольную запись в одну строку и дописывает ее в
// файл kind за сегодня. Ошибки только логируются.
func (s *Store) Append(kind Kind, record any) {
	s.write(kind, s.now(), record)
}

func (s *Store) write(kind Kind, at time.Time, record any) {
	if !kind.Valid() {
		logger.Error("event log: unknown kind", "kind", kind)
		return
	}

	line, err := json.Marshal(record)
	if err != nil {
		logger.Error("event log: marshal failed", "kind", kind, "error", err)
		return
	}
	line = append(line, '\n')

	date := at.In(s.loc).Format(DateLayout)
	name := s.path(kind, date)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		logger.Error("event log: create dir failed", "dir", s.dir, "error", err)
		return
	}

	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("event log: open failed", "file", name, "error", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		logger.Error("event log: write failed", "file", name, "error", err)
	}
}

// Read возвращает строки-записи файла kind за date в порядке записи.
// Отсутствующий файл - пустой результат без ошибки. Нераспарсиваемые строки
// (например, оборванная последняя строка) пропускаются.
func (s *Store) Read(kind Kind, date string) ([]json.RawMessage, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown log kind %q", kind)
	}
	if _, err := s.ParseDate(date); err != nil {
		return nil, err
	}

	name := s.path(kind, date)
	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		logger.Error("event log: open failed", "file", name, "error", err)
		return nil, err
	}
	defer f.Close()

	var (
		records []json.RawMessage
		skipped int
		lineNo  int
	)
	r := bufio.NewReader(f)
	for {
		line, readErr := r.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			line = bytes.TrimSpace(line)
			if len(line) > 0 {
				if json.Valid(line) && line[0] == '{' {
					records = append(records, json.RawMessage(bytes.Clone(line)))
				} else {
					skipped++
					logger.Warn("event log: skipping malformed line", "file", name, "line", lineNo)
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			logger.Error("event log: read failed", "file", name, "error", readErr)
			return records, readErr
		}
	}

	if skipped > 0 {
		logger.Warn("event log: malformed lines skipped", "file", name, "count", skipped)
	}
	return records, nil
}

// ReadBehavior читает и декодирует поведенческие события за date.
func (s *Store) ReadBehavior(date string) ([]BehaviorEvent, error) {
	raw, err := s.Read(KindBehavior, date)
	if err != nil {
		return nil, err
	}
	events := make([]BehaviorEvent, 0, len(raw))
	for i, line := range raw {
		var ev BehaviorEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			logger.Warn("event log: skipping undecodable behavior record", "date", date, "index", i, "error", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// ReadErrors читает события-ошибки за date.
func (s *Store) ReadErrors(date string) ([]ErrorEvent, error) {
	raw, err := s.Read(KindError, date)
	if err != nil {
		return nil, err
	}
	events := make([]ErrorEvent, 0, len(raw))
	for _, line := range raw {
		var ev ErrorEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// ListDates возвращает отсортированные даты, за которые есть файлы kind.
func (s *Store) ListDates(kind Kind) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		logger.Error("event log: list dir failed", "dir", s.dir, "error", err)
		return nil, err
	}

	dates := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileNamePattern.FindStringSubmatch(e.Name())
		if m == nil || Kind(m[1]) != kind {
			continue
		}
		dates = append(dates, m[2])
	}
	sort.Strings(dates)
	return dates, nil
}

// Cleanup удаляет файлы kind, дата которых строго раньше сегодня минус
// retentionDays. Возвращает число удаленных файлов.
func (s *Store) Cleanup(kind Kind, retentionDays int) (int, error) {
	cutoff := s.now().In(s.loc).AddDate(0, 0, -retentionDays).Format(DateLayout)

	dates, err := s.ListDates(kind)
	if err != nil {
		return 0, err
	}

	var (
		removed int
		errs    []error
	)
	for _, date := range dates {
		if date >= cutoff {
			continue
		}
		name := s.path(kind, date)
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Error("event log: remove failed", "file", name, "error", err)
			errs = append(errs, err)
			continue
		}
		removed++
		logger.Info("event log: removed old file", "file", name)
	}
	return removed, errors.Join(errs...)
}

// CleanupAll применяет Cleanup ко всем типам журналов.
func (s *Store) CleanupAll(retentionDays int) (int, error) {
	var (
		total int
		errs  []error
	)
	for _, kind := range kinds {
		n, err := s.Cleanup(kind, retentionDays)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}
