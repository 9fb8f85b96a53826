package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dskvich/networker-bot/pkg/domain"
)

type contactsRepository struct {
	db *sql.DB
}

func NewContactsRepository(db *sql.DB) *contactsRepository {
	return &contactsRepository{db: db}
}

// Save stores a copy of an appended ledger row.
func (c *contactsRepository) Save(ctx context.Context, row domain.LedgerRow) error {
	const query = `
		INSERT INTO contacts (
			name, age, occupation, project, stack, hobby, additional_info,
			where_met, met_at, handle, user_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	args := make([]any, 0, domain.LedgerRowWidth)
	for _, cell := range row.Cells() {
		args = append(args, cell)
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("saving contact: %w", err)
	}

	return nil
}
