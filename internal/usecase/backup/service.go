package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/internal/repository"
)

// maxDocumentSize bounds how much of an import stream is read.
const maxDocumentSize = 8 << 20

var errDocumentTooLarge = fmt.Errorf("%w: document exceeds size limit", entity.ErrInvalidBackup)

// Service exports and imports the whole study plan.
type Service struct {
	repo     repository.CurriculumRepository
	clock    func() time.Time
	location *time.Location
}

type Option func(*Service)

// WithClock overrides the timestamp written into exports.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the zone used for dates that carry none.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewService constructs a backup service over the plan repository.
func NewService(repo repository.CurriculumRepository, opts ...Option) *Service {
	svc := &Service{repo: repo, clock: time.Now, location: time.Local}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	categories []int
}

// WithCategories restricts the export to the given category IDs.
func WithCategories(ids []int) ExportOption {
	return func(cfg *exportConfig) {
		if len(ids) == 0 {
			return
		}
		cfg.categories = append([]int{}, ids...)
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	dryRun bool
}

// WithDryRun validates the document without storing it.
func WithDryRun() ImportOption {
	return func(cfg *importConfig) { cfg.dryRun = true }
}

func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if len(cfg.categories) > 0 {
		missing, _ := lo.Difference(cfg.categories, lo.Map(snapshot.Categories, func(c entity.Category, _ int) int { return c.ID }))
		if len(missing) > 0 {
			return fmt.Errorf("category %d: %w", missing[0], entity.ErrCategoryNotFound)
		}
		snapshot.Categories = lo.Filter(snapshot.Categories, func(c entity.Category, _ int) bool {
			return lo.Contains(cfg.categories, c.ID)
		})
	}

	data, err := Encode(snapshot, s.clock())
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Import reads a document, validates it and replaces the stored plan.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (*entity.Snapshot, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, errDocumentTooLarge
	}

	snapshot, err := Decode(data, s.location)
	if err != nil {
		return nil, err
	}
	if cfg.dryRun {
		return snapshot, nil
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("store plan: %w", err)
	}
	return snapshot, nil
}
