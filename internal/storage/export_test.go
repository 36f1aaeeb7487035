package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/config"
	"github.com/leplonghi/horamed-sub006/internal/domain"
)

func TestEncodeStockCSV(t *testing.T) {
	updated := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	end := updated.Add(36 * time.Hour)

	out, err := EncodeStockCSV([]domain.StockRecord{
		{ItemID: "a", UnitsLeft: 3, ProjectedEndAt: &end, UpdatedAt: updated},
		{ItemID: "b", UnitsLeft: 0, UpdatedAt: updated},
	})
	if err != nil {
		t.Fatalf("EncodeStockCSV: %v", err)
	}

	want := strings.Join([]string{
		"item_id,units_left,projected_end_at,updated_at",
		"a,3,2025-03-13T21:00:00Z,2025-03-12T09:00:00Z",
		"b,0,,2025-03-12T09:00:00Z",
		"",
	}, "\n")
	if string(out) != want {
		t.Fatalf("csv=\n%s\nwant\n%s", out, want)
	}
}

func TestNewMinioClientValidatesConfig(t *testing.T) {
	tests := []config.StorageConfig{
		{},
		{Endpoint: "s3.local"},
		{Endpoint: "s3.local", AccessKey: "k", SecretKey: "s"},
	}
	for i, cfg := range tests {
		if _, err := NewMinioClient(cfg); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}

	c, err := NewMinioClient(config.StorageConfig{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "exports",
	})
	if err != nil {
		t.Fatalf("NewMinioClient: %v", err)
	}
	if c.bucket != "exports" {
		t.Fatalf("bucket=%q", c.bucket)
	}
}
