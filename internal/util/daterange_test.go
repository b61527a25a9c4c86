package util

import (
	"testing"
	"time"
)

func TestBucketKey_Day(t *testing.T) {
	ts := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)
	shanghai, _ := time.LoadLocation("Asia/Shanghai")

	// 23:30 UTC on the 9th is already the 10th in Shanghai
	if got := BucketKey(ts, BucketDay, shanghai); got != "2025-03-10" {
		t.Errorf("Expected bucket 2025-03-10, got %s", got)
	}

	if got := BucketKey(ts, BucketDay, time.UTC); got != "2025-03-09" {
		t.Errorf("Expected bucket 2025-03-09, got %s", got)
	}
}

func TestBucketKey_Month(t *testing.T) {
	ts := time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC)
	shanghai, _ := time.LoadLocation("Asia/Shanghai")

	if got := BucketKey(ts, BucketMonth, shanghai); got != "2026-01" {
		t.Errorf("Expected bucket 2026-01, got %s", got)
	}
}

func TestValidBucket(t *testing.T) {
	if !ValidBucket(BucketDay) || !ValidBucket(BucketMonth) {
		t.Error("Expected day and month to be valid buckets")
	}
	if ValidBucket("week") {
		t.Error("Expected week to be invalid")
	}
}

func TestLoadLocation_FallsBackToUTC(t *testing.T) {
	if loc := LoadLocation("Not/AZone"); loc != time.UTC {
		t.Errorf("Expected UTC fallback, got %v", loc)
	}
	if loc := LoadLocation(""); loc != time.UTC {
		t.Errorf("Expected UTC for empty name, got %v", loc)
	}
}

func TestEndOfDay(t *testing.T) {
	ts := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	end := EndOfDay(ts)
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("Expected end of day, got %v", end)
	}
	if end.Day() != 15 {
		t.Errorf("Expected same day, got %d", end.Day())
	}
}
