package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/dskvich/networker-bot/pkg/domain"
)

type fakeAppender struct {
	ok   bool
	rows []domain.LedgerRow
}

func (f *fakeAppender) Append(_ context.Context, row domain.LedgerRow) bool {
	f.rows = append(f.rows, row)
	return f.ok
}

type fakeSaver struct {
	err  error
	rows []domain.LedgerRow
}

func (f *fakeSaver) Save(_ context.Context, row domain.LedgerRow) error {
	f.rows = append(f.rows, row)
	return f.err
}

func TestMirroredAppend(t *testing.T) {
	row := domain.NewLedgerRow(domain.ExtractedRecord{domain.FieldName: "Ana"}, domain.RowMetadata{UserID: 1})

	tests := []struct {
		name        string
		primaryOK   bool
		mirrorErr   error
		want        bool
		wantMirrors int
	}{
		{name: "both succeed", primaryOK: true, want: true, wantMirrors: 1},
		{name: "mirror fails", primaryOK: true, mirrorErr: errors.New("db down"), want: true, wantMirrors: 1},
		{name: "primary fails", primaryOK: false, want: false, wantMirrors: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			primary := &fakeAppender{ok: test.primaryOK}
			mirror := &fakeSaver{err: test.mirrorErr}

			got := NewMirrored(primary, mirror).Append(context.Background(), row)
			if got != test.want {
				t.Errorf("Append: got %v, want %v", got, test.want)
			}
			if len(primary.rows) != 1 {
				t.Errorf("primary calls: got %d", len(primary.rows))
			}
			if len(mirror.rows) != test.wantMirrors {
				t.Errorf("mirror calls: got %d, want %d", len(mirror.rows), test.wantMirrors)
			}
		})
	}
}

func TestMirroredWithoutMirror(t *testing.T) {
	primary := &fakeAppender{ok: true}
	if !NewMirrored(primary, nil).Append(context.Background(), domain.LedgerRow{}) {
		t.Error("expected success without a mirror")
	}
}
