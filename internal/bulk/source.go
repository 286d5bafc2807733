package bulk

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/KingPinFPV/basarometer-sub000/internal/config"
	"github.com/KingPinFPV/basarometer-sub000/internal/model"
)

// CategoryClassifier fills in a category when keyword detection found none.
type CategoryClassifier interface {
	Classify(ctx context.Context, name string) (string, error)
}

// Source assembles the base catalog from the configured chain portals.
// It implements the pipeline's BulkSource contract: on per-chain failure
// it returns whatever records arrived together with a non-nil error.
type Source struct {
	cfg        config.BulkConfig
	http       Fetcher
	ftp        Fetcher
	classifier CategoryClassifier // optional
	now        func() time.Time
}

// NewSource creates a Source. classifier may be nil.
func NewSource(cfg config.BulkConfig, httpFetcher, ftpFetcher Fetcher, classifier CategoryClassifier) *Source {
	return &Source{
		cfg:        cfg,
		http:       httpFetcher,
		ftp:        ftpFetcher,
		classifier: classifier,
		now:        time.Now,
	}
}

// FetchBaseRecords downloads and parses every configured portal.
func (s *Source) FetchBaseRecords(ctx context.Context) ([]model.BaseRecord, error) {
	log := zap.L()

	var (
		records []model.BaseRecord
		errs    *multierror.Error
	)

	for _, portal := range s.cfg.Portals {
		if ctx.Err() != nil {
			errs = multierror.Append(errs, ctx.Err())
			break
		}

		chainRecords, err := s.fetchPortal(ctx, portal)
		if err != nil {
			log.Warn("bulk: portal failed",
				zap.String("chain", portal.Chain),
				zap.Error(err),
			)
			errs = multierror.Append(errs, err)
			continue
		}

		log.Info("bulk: portal fetched",
			zap.String("chain", portal.Chain),
			zap.Int("records", len(chainRecords)),
		)
		records = append(records, chainRecords...)

		if s.cfg.MaxRecords > 0 && len(records) >= s.cfg.MaxRecords {
			records = records[:s.cfg.MaxRecords]
			log.Warn("bulk: record cap reached", zap.Int("cap", s.cfg.MaxRecords))
			break
		}
	}

	if s.classifier != nil {
		s.backfillCategories(ctx, records)
	}

	return records, errs.ErrorOrNil()
}

func (s *Source) fetchPortal(ctx context.Context, portal config.ChainPortal) ([]model.BaseRecord, error) {
	fetcher := s.http
	if strings.HasPrefix(portal.URL, "ftp://") {
		fetcher = s.ftp
	}
	if fetcher == nil {
		return nil, eris.Errorf("bulk: no fetcher for %s", portal.URL)
	}

	body, err := fetcher.Download(ctx, portal.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	confidence := portal.Confidence
	if confidence <= 0 {
		confidence = 0.5
	}

	return ParsePriceXML(body, portal.Chain, confidence, s.now())
}

// backfillCategories asks the classifier for records the keyword tables
// could not place. Classifier failures leave the category empty.
func (s *Source) backfillCategories(ctx context.Context, records []model.BaseRecord) {
	for i := range records {
		if records[i].Category != "" {
			continue
		}
		category, err := s.classifier.Classify(ctx, records[i].Name)
		if err != nil {
			zap.L().Debug("bulk: classify fallback failed",
				zap.String("name", records[i].Name),
				zap.Error(err),
			)
			continue
		}
		records[i].Category = category
	}
}
