package pricing

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	pkgerrors "supplier-pricing-backend/internal/errors"
	"supplier-pricing-backend/internal/models"
	"supplier-pricing-backend/internal/services/bidding"
	"supplier-pricing-backend/internal/services/catalog"
	"supplier-pricing-backend/internal/services/matching"
	"supplier-pricing-backend/internal/tabular"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Upload is one CSV file handed to the service.
type Upload struct {
	Name string
	Body io.Reader
}

// Options configures a Service.
type Options struct {
	BidMarkup     float64
	CatalogMarkup float64
	SessionTTL    time.Duration
}

// Session remembers the markups last applied by one client.
type Session struct {
	ID            uuid.UUID `json:"id"`
	BidMarkup     *float64  `json:"bid_markup,omitempty"`
	CatalogMarkup *float64  `json:"catalog_markup,omitempty"`
	LastSeen      time.Time `json:"last_seen"`
}

// Stats counts the operations served since start.
type Stats struct {
	Sessions  int   `json:"sessions"`
	BidSheets int64 `json:"bid_sheets"`
	Catalogs  int64 `json:"catalogs"`
	QCReports int64 `json:"qc_reports"`
	Warnings  int64 `json:"warnings"`
}

// QCColumns describes both QC inputs and the default column picks for each.
type QCColumns struct {
	SheetA matching.Suggestion `json:"sheet_a"`
	SheetB matching.Suggestion `json:"sheet_b"`
}

// Service runs the pricing pipelines over uploaded sheets. The pipelines
// themselves are stateless; the service only keeps per-session markups.
type Service struct {
	opts     Options
	log      zerolog.Logger
	sessions sync.Map // uuid.UUID -> *Session
	mu       sync.Mutex
	now      func() time.Time

	bidSheets atomic.Int64
	catalogs  atomic.Int64
	qcReports atomic.Int64
	warnings  atomic.Int64
}

func NewService(opts Options, logger zerolog.Logger) *Service {
	return &Service{
		opts: opts,
		log:  logger.With().Str("component", "pricing").Logger(),
		now:  time.Now,
	}
}

// Session returns the session named by raw, starting a new one when raw is
// empty, malformed or expired.
func (s *Service) Session(raw string) uuid.UUID {
	s.evictExpired()

	if id, err := uuid.Parse(raw); err == nil {
		if val, ok := s.sessions.Load(id); ok {
			sess := val.(*Session)
			s.mu.Lock()
			sess.LastSeen = s.now()
			s.mu.Unlock()
			return id
		}
	}

	id := uuid.New()
	s.sessions.Store(id, &Session{ID: id, LastSeen: s.now()})
	s.log.Debug().Str("session_id", id.String()).Msg("session started")
	return id
}

// SessionInfo returns a copy of the session, if it is still live.
func (s *Service) SessionInfo(id uuid.UUID) (Session, bool) {
	val, ok := s.sessions.Load(id)
	if !ok {
		return Session{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return *val.(*Session), true
}

// BuildBidSheet aggregates supplier uploads into a bidding sheet. A nil markup
// falls back to the session's last bid markup, then to the configured default.
func (s *Service) BuildBidSheet(ctx context.Context, uploads []Upload, markup *float64, sessionID uuid.UUID) (*models.BidSheet, error) {
	if len(uploads) == 0 {
		return nil, pkgerrors.NewValidationError("files", 0, "at least one supplier file is required")
	}

	tables := make([]tabular.Table, 0, len(uploads))
	for _, u := range uploads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := decode(u)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	m := s.markup(markup, sessionID, func(sess *Session) *float64 { return sess.BidMarkup }, s.opts.BidMarkup)
	sheet, err := bidding.Aggregate(tables, m)
	if err != nil {
		return nil, err
	}

	s.remember(sessionID, func(sess *Session) { sess.BidMarkup = &m })
	s.bidSheets.Add(1)
	s.logWarnings(sheet.Warnings)
	s.log.Info().
		Str("session_id", sessionID.String()).
		Int("files", len(uploads)).
		Float64("markup", m).
		Msg(bidding.Summary(sheet))
	return sheet, nil
}

// BuildCatalog projects an uploaded bidding sheet onto the catalog layout.
// A nil override falls back to the session's last catalog markup, then to the
// configured default.
func (s *Service) BuildCatalog(ctx context.Context, upload Upload, override *float64, sessionID uuid.UUID) (*models.CatalogSheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := decode(upload)
	if err != nil {
		return nil, err
	}
	bid, err := catalog.FromTable(t)
	if err != nil {
		return nil, err
	}

	m := s.markup(override, sessionID, func(sess *Session) *float64 { return sess.CatalogMarkup }, s.opts.CatalogMarkup)
	out, err := catalog.Project(bid, m)
	if err != nil {
		return nil, err
	}

	s.remember(sessionID, func(sess *Session) { sess.CatalogMarkup = &m })
	s.catalogs.Add(1)
	s.logWarnings(bid.Warnings)
	s.log.Info().
		Str("session_id", sessionID.String()).
		Str("file", upload.Name).
		Int("products", len(out.Records)).
		Str("price_column", out.PriceColumn.Label()).
		Msg("catalog built")
	return out, nil
}

// InspectQC lists the columns of both sheets with suggested key and price columns.
func (s *Service) InspectQC(ctx context.Context, a, b Upload) (*QCColumns, error) {
	ta, tb, err := decodePair(ctx, a, b)
	if err != nil {
		return nil, err
	}
	return &QCColumns{SheetA: matching.Suggest(ta.Columns), SheetB: matching.Suggest(tb.Columns)}, nil
}

// RunQC reconciles two sheets. Key and price columns left empty in opts are
// filled from suggestions.
func (s *Service) RunQC(ctx context.Context, a, b Upload, opts matching.Options) (*models.QCReport, error) {
	ta, tb, err := decodePair(ctx, a, b)
	if err != nil {
		return nil, err
	}

	opts.KeyColumnsA, opts.PriceColumnA = fillColumns(ta, opts.KeyColumnsA, opts.PriceColumnA)
	opts.KeyColumnsB, opts.PriceColumnB = fillColumns(tb, opts.KeyColumnsB, opts.PriceColumnB)

	report, err := matching.Reconcile(ta, tb, opts)
	if err != nil {
		return nil, err
	}

	s.qcReports.Add(1)
	if len(report.DuplicateKeys) > 0 {
		s.log.Warn().
			Strs("keys", report.DuplicateKeys).
			Msg("duplicate keys expanded into every pairing")
	}
	s.log.Info().
		Str("sheet_a", a.Name).
		Str("sheet_b", b.Name).
		Int("total", report.Summary.Total).
		Int("match", report.Summary.MatchCount).
		Int("mismatch", report.Summary.MismatchCount).
		Int("missing", report.Summary.MissingCount).
		Msg("qc report built")
	return report, nil
}

// Stats returns a snapshot of the service counters.
func (s *Service) Stats() Stats {
	s.evictExpired()
	n := 0
	s.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return Stats{
		Sessions:  n,
		BidSheets: s.bidSheets.Load(),
		Catalogs:  s.catalogs.Load(),
		QCReports: s.qcReports.Load(),
		Warnings:  s.warnings.Load(),
	}
}

func (s *Service) markup(explicit *float64, id uuid.UUID, field func(*Session) *float64, def float64) float64 {
	if explicit != nil {
		return *explicit
	}
	if val, ok := s.sessions.Load(id); ok {
		s.mu.Lock()
		defer s.mu.Unlock()
		if m := field(val.(*Session)); m != nil {
			return *m
		}
	}
	return def
}

func (s *Service) remember(id uuid.UUID, update func(*Session)) {
	if id == uuid.Nil {
		return
	}
	val, _ := s.sessions.LoadOrStore(id, &Session{ID: id})
	s.mu.Lock()
	sess := val.(*Session)
	update(sess)
	sess.LastSeen = s.now()
	s.mu.Unlock()
}

func (s *Service) evictExpired() {
	if s.opts.SessionTTL <= 0 {
		return
	}
	cutoff := s.now().Add(-s.opts.SessionTTL)
	s.sessions.Range(func(key, val any) bool {
		s.mu.Lock()
		expired := val.(*Session).LastSeen.Before(cutoff)
		s.mu.Unlock()
		if expired {
			s.sessions.Delete(key)
		}
		return true
	})
}

func (s *Service) logWarnings(warnings []*pkgerrors.ParseError) {
	s.warnings.Add(int64(len(warnings)))
	for _, w := range warnings {
		s.log.Warn().
			Str("file", w.Source).
			Int("row", w.Row).
			Str("column", w.Column).
			Str("value", w.Value).
			Msg("non-numeric cell read as 0")
	}
}

// fillColumns completes omitted key and price columns from the sheet header.
// Unresolved names keep their defaults so the schema check can report them.
func fillColumns(t tabular.Table, keys []string, price string) ([]string, string) {
	if len(keys) == 0 {
		for _, want := range []string{matching.DefaultSKUColumn, matching.DefaultQuantityColumn} {
			col := matching.SuggestColumn(t.Columns, want)
			if col == "" {
				col = want
			}
			keys = append(keys, col)
		}
	}
	if price == "" {
		price = matching.SuggestPriceColumn(t.Columns)
		if price == "" {
			price = models.CustomerPriceBase
		}
	}
	return keys, price
}

func decodePair(ctx context.Context, a, b Upload) (tabular.Table, tabular.Table, error) {
	if err := ctx.Err(); err != nil {
		return tabular.Table{}, tabular.Table{}, err
	}
	ta, err := decode(a)
	if err != nil {
		return tabular.Table{}, tabular.Table{}, err
	}
	tb, err := decode(b)
	if err != nil {
		return tabular.Table{}, tabular.Table{}, err
	}
	return ta, tb, nil
}

func decode(u Upload) (tabular.Table, error) {
	if u.Body == nil {
		return tabular.Table{}, pkgerrors.NewValidationError("file", u.Name, "file required")
	}
	t, err := tabular.Read(u.Name, u.Body)
	if err != nil {
		return tabular.Table{}, pkgerrors.NewValidationError("file", u.Name, fmt.Sprintf("unreadable CSV: %v", err))
	}
	return t, nil
}
