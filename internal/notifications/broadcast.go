package notifications

import (
	"context"
	"strings"

	"github.com/cadet-portal/cadet-portal/internal/shared"
)

var validTargets = map[string]struct{}{
	TargetAll:    {},
	TargetAdmin:  {},
	TargetUser:   {},
	TargetMaster: {},
}

// ListBroadcasts returns the broadcast ledger to a super-admin.
func (s *Service) ListBroadcasts(ctx context.Context, p shared.Principal) ([]Broadcast, error) {
	if _, ok := shared.AsMaster(p); !ok {
		return nil, shared.Forbidden("Only master may view notifications.")
	}
	return s.repo.ListBroadcasts(ctx)
}

// CreateBroadcast records a super-admin broadcast. Only the ledger row is
// written: no recipient list is derived from the target class.
func (s *Service) CreateBroadcast(ctx context.Context, p shared.Principal, in BroadcastInput) (int64, error) {
	master, ok := shared.AsMaster(p)
	if !ok {
		return 0, shared.Forbidden("Only master may create notifications.")
	}
	if _, ok := validTargets[in.TargetType]; !ok {
		return 0, shared.Invalid("Invalid target_type.")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return 0, shared.Invalid("Message is required.")
	}
	var target *string
	if t := strings.TrimSpace(in.TargetID); t != "" {
		target = &t
	}
	return s.repo.InsertBroadcast(ctx, Broadcast{
		SenderType: string(shared.RoleMaster),
		SenderID:   master.Phone,
		TargetType: in.TargetType,
		TargetID:   target,
		Message:    message,
	})
}

// DeleteBroadcast removes a ledger row.
func (s *Service) DeleteBroadcast(ctx context.Context, p shared.Principal, id int64) error {
	if _, ok := shared.AsMaster(p); !ok {
		return shared.Forbidden("Only master may delete notifications.")
	}
	found, err := s.repo.DeleteBroadcast(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return shared.NotFound("Notification not found.")
	}
	return nil
}
