package settings

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Service implements platform configuration management.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs the service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validate: validator.New(), logger: logger}
}

var errNotFound = shared.NotFound("Configuration not found.")

func requireMaster(p shared.Principal, msg string) error {
	if _, ok := shared.AsMaster(p); !ok {
		return shared.Forbidden(msg)
	}
	return nil
}

// List returns all entries.
func (s *Service) List(ctx context.Context, p shared.Principal) ([]Entry, error) {
	if err := requireMaster(p, "Only master may view platform configuration."); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Create adds a key.
func (s *Service) Create(ctx context.Context, p shared.Principal, in CreateInput) (int64, error) {
	if err := requireMaster(p, "Only master may create configuration."); err != nil {
		return 0, err
	}
	if err := s.validate.Struct(in); err != nil {
		return 0, shared.Invalid("cfg_key and cfg_value are required.")
	}
	id, err := s.repo.Create(ctx, in)
	if err != nil {
		return 0, err
	}
	s.logger.Info("platform config created", slog.String("cfg_key", in.Key))
	return id, nil
}

// Update replaces the value of entry id.
func (s *Service) Update(ctx context.Context, p shared.Principal, id int64, in UpdateInput) error {
	if err := requireMaster(p, "Only master may update configuration."); err != nil {
		return err
	}
	if err := s.validate.Struct(in); err != nil {
		return shared.Invalid("cfg_value is required.")
	}
	found, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return err
	}
	if !found {
		return errNotFound
	}
	return nil
}

// Delete removes entry id.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	if err := requireMaster(p, "Only master may delete configuration."); err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return errNotFound
	}
	return nil
}

// Export returns every entry for a backup snapshot.
func (s *Service) Export(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}

// Import upserts entries by key in one transaction. Keys absent from entries
// are left untouched.
func (s *Service) Import(ctx context.Context, entries []Entry) (int, error) {
	written := 0
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		for _, e := range entries {
			if e.Key == "" {
				continue
			}
			if err := tx.Upsert(ctx, e); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
