package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cadet-portal/cadet-portal/internal/shared"
)

const markLimit = 16

// Service implements attendance rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs the service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ListFallins returns the admin's fall-ins for attendance taking.
func (s *Service) ListFallins(ctx context.Context, p shared.Principal) ([]FallinSummary, error) {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return nil, shared.Forbidden("Only ANOs may view fallins for attendance.")
	}
	return s.repo.ListFallins(ctx, admin.UnitID)
}

// EligibleCadets lists the cadets that can be marked for fallinID.
func (s *Service) EligibleCadets(ctx context.Context, p shared.Principal, fallinID int64) ([]Cadet, error) {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return nil, shared.Forbidden("Only ANOs may take attendance.")
	}
	unitID, err := s.repo.FallinUnit(ctx, fallinID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Fallin not found.")
		}
		return nil, err
	}
	if unitID != admin.UnitID {
		return nil, shared.Forbidden("Not authorized for this fallin.")
	}
	return s.repo.UnitCadets(ctx, admin.UnitID)
}

// Mark upserts every entry of a batch against fallinID. Every entry must name
// a cadet of the admin's unit or nothing is written. Entries are written
// concurrently and independently: all are attempted, the first failure is
// returned, and entries already written stay written.
func (s *Service) Mark(ctx context.Context, p shared.Principal, fallinID int64, marks []Mark) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return shared.Forbidden("Only ANOs may mark attendance.")
	}
	if len(marks) == 0 {
		return shared.Invalid("No attendance records provided.")
	}
	for _, m := range marks {
		if strings.TrimSpace(m.RegimentalNumber) == "" || strings.TrimSpace(m.Status) == "" {
			return shared.Invalid("Each record requires regimental_number and status.")
		}
	}
	unitID, err := s.repo.FallinUnit(ctx, fallinID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if err != nil || unitID != admin.UnitID {
		return shared.Forbidden("Not authorized for this fallin.")
	}
	roster, err := s.repo.UnitCadets(ctx, admin.UnitID)
	if err != nil {
		return err
	}
	members := make(map[string]struct{}, len(roster))
	for _, c := range roster {
		members[c.RegimentalNumber] = struct{}{}
	}
	for _, m := range marks {
		if _, ok := members[m.RegimentalNumber]; !ok {
			return shared.Forbidden(fmt.Sprintf("Cadet %s is not in your unit.", m.RegimentalNumber))
		}
	}

	ctx = context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(markLimit)
	for _, m := range marks {
		g.Go(func() error {
			return s.repo.Upsert(ctx, fallinID, admin.UnitID, m)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("attendance batch incomplete",
			slog.Int64("fallin_id", fallinID),
			slog.Int("records", len(marks)),
			slog.Any("error", err))
		return err
	}
	return nil
}

// View returns the attendance sheet of a fall-in to an admin or cadet of its unit.
func (s *Service) View(ctx context.Context, p shared.Principal, fallinID int64) ([]Row, error) {
	callerUnit, ok := shared.UnitOf(p)
	unitID, err := s.repo.FallinUnit(ctx, fallinID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Fallin not found.")
		}
		return nil, err
	}
	if !ok {
		return nil, shared.Forbidden("Only cadets or ANOs may view attendance.")
	}
	if callerUnit != unitID {
		return nil, shared.Forbidden("Not authorized for this fallin.")
	}
	return s.repo.ListForFallin(ctx, fallinID)
}

type verdict int

const (
	roleDenied verdict = iota
	ownerDenied
	granted
)

func grant(owner bool) verdict {
	if owner {
		return granted
	}
	return ownerDenied
}

// authorize loads a record and checks the caller may act on it: an admin of
// the fall-in's unit or the cadet the record belongs to.
func (s *Service) authorize(ctx context.Context, p shared.Principal, id int64, verb string) (*Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Attendance record not found.")
		}
		return nil, err
	}
	switch shared.Match(p,
		func(c shared.CadetPrincipal) verdict { return grant(rec.RegimentalNumber == c.RegimentalNumber) },
		func(a shared.AdminPrincipal) verdict { return grant(rec.FallinUnit == a.UnitID) },
		func(shared.MasterPrincipal) verdict { return roleDenied },
	) {
	case roleDenied:
		return nil, shared.Forbidden("Not authorized to " + verb + " attendance.")
	case ownerDenied:
		return nil, shared.Forbidden("Not authorized to " + verb + " this record.")
	}
	return rec, nil
}

// Get returns a single record.
func (s *Service) Get(ctx context.Context, p shared.Principal, id int64) (*Record, error) {
	return s.authorize(ctx, p, id, "view")
}

// Update rewrites a single record's status and remarks.
func (s *Service) Update(ctx context.Context, p shared.Principal, id int64, c Change) error {
	if strings.TrimSpace(c.Status) == "" {
		return shared.Invalid("Missing required field: status.")
	}
	if _, err := s.authorize(ctx, p, id, "update"); err != nil {
		return err
	}
	updated, err := s.repo.Update(ctx, id, c)
	if err != nil {
		return err
	}
	if !updated {
		return shared.NotFound("Attendance record not found.")
	}
	return nil
}

// Delete removes a single record.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	if _, err := s.authorize(ctx, p, id, "delete"); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return shared.NotFound("Attendance record not found.")
	}
	return nil
}
