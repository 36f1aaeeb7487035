package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
)

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestAffectedOne(t *testing.T) {
	if ok, err := affectedOne(fakeResult{rows: 1}); !ok || err != nil {
		t.Fatalf("one row: ok=%v err=%v", ok, err)
	}
	if ok, err := affectedOne(fakeResult{rows: 0}); ok || err != nil {
		t.Fatalf("lost race should report false without error: ok=%v err=%v", ok, err)
	}
	if _, err := affectedOne(fakeResult{err: errors.New("driver")}); err == nil {
		t.Fatalf("expected driver error to surface")
	}
}

func TestScheduleRowToDomain(t *testing.T) {
	row := scheduleRow{ItemID: "item-1", Times: pq.StringArray{"08:00", "20:00"}, IsActive: true}
	got := row.toDomain()
	if got.ItemID != "item-1" || !got.IsActive || len(got.Times) != 2 || got.Times[1] != "20:00" {
		t.Fatalf("unexpected schedule: %+v", got)
	}
}
