package ingest

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jihghong/tw-stock-daily/models"
)

const maxAttempts = 3

// Fetcher retrieves upstream payloads. Get decodes the exchanges' CP950
// reports; GetRaw returns bytes as sent for pages that declare their
// own encoding.
type Fetcher interface {
	Get(url string) (string, error)
	GetRaw(url string) (string, error)
}

// ErrorKind classifies a failed day-sync attempt.
type ErrorKind int

const (
	// KindTransport covers fetch failures: non-2xx statuses, timeouts,
	// exhausted TLS fallback.
	KindTransport ErrorKind = iota
	// KindStorage covers transaction failures while applying a day.
	KindStorage
)

// SyncError is one failed day-sync attempt. The retry loop inspects it
// instead of relying on unwinding, and its kind says whether another
// attempt makes sense.
type SyncError struct {
	Kind   ErrorKind
	Market models.Market
	Date   time.Time
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %s: %v", e.Market, e.Date.Format(models.DateLayout), e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Recoverable reports whether another attempt may succeed. Transport
// and storage failures are both considered transient today; the kind is
// kept explicit so the split can be tightened without changing callers.
func (e *SyncError) Recoverable() bool {
	switch e.Kind {
	case KindTransport, KindStorage:
		return true
	default:
		return false
	}
}

// Syncer drives incremental quote synchronization for both markets.
// It owns no connection; the store handle is passed in at construction
// and closed by the caller. Execution is strictly sequential: one date,
// one market, one transaction at a time.
type Syncer struct {
	db      *gorm.DB
	fetcher Fetcher
	log     *logrus.Entry

	now   func() time.Time
	sleep func(time.Duration)
}

// NewSyncer builds a Syncer on an open store handle.
func NewSyncer(db *gorm.DB, fetcher Fetcher) *Syncer {
	return &Syncer{
		db:      db,
		fetcher: fetcher,
		log:     logrus.WithField("component", "ingest"),
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// NextDate resolves the first unsynchronized date for the market: the
// day after its watermark, or QuoteEpoch when no marker exists yet.
// An absent watermark is an expected state, not an error.
func (s *Syncer) NextDate(market models.Market) (time.Time, error) {
	var maxDate sql.NullString
	if err := s.db.Raw(
		"SELECT MAX(date) FROM quote WHERE id = ?", market.MarkerID(),
	).Scan(&maxDate).Error; err != nil {
		return time.Time{}, fmt.Errorf("failed to resolve %s watermark: %w", market, err)
	}
	if !maxDate.Valid {
		return QuoteEpoch, nil
	}
	d, err := time.ParseInLocation(models.DateLayout, maxDate.String, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s watermark %q: %w", market, maxDate.String, err)
	}
	return d.AddDate(0, 0, 1), nil
}

// SyncDay runs fetch, parse and upsert for one market day, retrying the
// whole unit up to three times. A day whose marker already exists is a
// no-op with no fetch and no rate-limit delay. The third consecutive
// failure is returned to the caller and halts the run.
func (s *Syncer) SyncDay(cfg MarketConfig, date time.Time, forceReplace bool) error {
	done, err := MarkerExists(s.db, cfg.Market, date)
	if err != nil {
		return err
	}
	if done && !forceReplace {
		return nil
	}

	var last *SyncError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		inserted, serr := s.attemptDay(cfg, date, forceReplace)
		if serr == nil {
			s.log.WithFields(logrus.Fields{
				"market":   cfg.Market,
				"date":     date.Format(models.DateLayout),
				"inserted": inserted,
			}).Info("day synchronized")
			return nil
		}
		last = serr
		s.log.WithError(serr).WithField("attempt", attempt).Warn("day sync attempt failed")
		if !serr.Recoverable() {
			break
		}
	}
	return last
}

// attemptDay is one fetch → parse → upsert pass. Rejected rows are
// skipped silently; only transport and transactional failures surface.
func (s *Syncer) attemptDay(cfg MarketConfig, date time.Time, forceReplace bool) (int, *SyncError) {
	url := cfg.URL(date)
	s.log.WithField("url", url).Info("retrieving")

	payload, err := s.fetcher.Get(url)
	if err != nil {
		return 0, &SyncError{Kind: KindTransport, Market: cfg.Market, Date: date, Err: err}
	}
	s.sleep(cfg.Delay)

	var candidates []Candidate
	for _, row := range ParseReport(payload) {
		if c := ParseRow(cfg, row); c != nil {
			candidates = append(candidates, *c)
		}
	}

	inserted, err := ApplyDay(s.db, cfg.Market, date, candidates, forceReplace)
	if err != nil {
		return 0, &SyncError{Kind: KindStorage, Market: cfg.Market, Date: date, Err: err}
	}
	return inserted, nil
}

// Continue advances both markets from their watermarks through today,
// dates strictly ascending. Daily reports are not final before the
// 15:00 publication cutoff, so earlier in the day "today" means
// yesterday. A date's transaction fully commits before the next date
// starts; the next invocation's watermark depends on it.
func (s *Syncer) Continue() error {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if now.Hour() < 15 {
		today = today.AddDate(0, 0, -1)
	}

	twseFrom, err := s.NextDate(models.TWSE)
	if err != nil {
		return err
	}
	otcFrom, err := s.NextDate(models.OTC)
	if err != nil {
		return err
	}

	current := twseFrom
	if otcFrom.Before(current) {
		current = otcFrom
	}

	for !current.After(today) {
		if !current.Before(twseFrom) {
			if err := s.SyncDay(TWSEConfig, current, false); err != nil {
				return err
			}
		}
		if !current.Before(otcFrom) {
			if err := s.SyncDay(OTCConfig, current, false); err != nil {
				return err
			}
		}
		current = current.AddDate(0, 0, 1)
	}
	return nil
}
