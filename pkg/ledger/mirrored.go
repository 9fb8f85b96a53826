package ledger

import (
	"context"
	"log/slog"

	"github.com/dskvich/networker-bot/pkg/domain"
	"github.com/dskvich/networker-bot/pkg/logger"
)

type Appender interface {
	Append(ctx context.Context, row domain.LedgerRow) bool
}

type ContactSaver interface {
	Save(ctx context.Context, row domain.LedgerRow) error
}

// mirrored appends to the primary ledger and copies every accepted row to
// the mirror. Only the primary decides the result.
type mirrored struct {
	primary Appender
	mirror  ContactSaver
}

func NewMirrored(primary Appender, mirror ContactSaver) *mirrored {
	return &mirrored{primary: primary, mirror: mirror}
}

func (m *mirrored) Append(ctx context.Context, row domain.LedgerRow) bool {
	if !m.primary.Append(ctx, row) {
		return false
	}

	if m.mirror != nil {
		if err := m.mirror.Save(ctx, row); err != nil {
			slog.WarnContext(ctx, "Mirroring ledger row", logger.Err(err))
		}
	}

	return true
}
