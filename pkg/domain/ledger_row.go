package domain

import (
	"strconv"
	"time"

	"github.com/samber/lo"
)

const (
	LedgerRowWidth = 11

	LedgerTimestampLayout = "2006-01-02 15:04:05"

	noUsername = "Sin username"
)

// LedgerColumns is the header row of the ledger sheet. Reordering it breaks
// every sheet already in use.
var LedgerColumns = [LedgerRowWidth]string{
	"name",
	"age",
	"occupation",
	"project",
	"stack",
	"hobby",
	"additional_info",
	"where_met",
	"timestamp",
	"handle",
	"user_id",
}

type LedgerRow [LedgerRowWidth]string

type RowMetadata struct {
	WhereMet  string
	Timestamp time.Time
	Handle    string
	UserID    int64
}

// NewLedgerRow lays out the record fields in column order followed by the
// submission metadata. Absent record fields are written as NotSpecified.
func NewLedgerRow(record ExtractedRecord, meta RowMetadata) LedgerRow {
	var row LedgerRow
	for i, f := range RecordFields {
		row[i] = record.ValueOr(f, NotSpecified)
	}

	row[7] = meta.WhereMet
	row[8] = meta.Timestamp.Format(LedgerTimestampLayout)
	row[9], _ = lo.Coalesce(meta.Handle, noUsername)
	row[10] = strconv.FormatInt(meta.UserID, 10)

	return row
}

func (r LedgerRow) Cells() []string {
	return r[:]
}
