package repository

import (
	"errors"
	"strings"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
)

func TestLatestCandlesQuery(t *testing.T) {
	q, err := latestCandlesQuery("md.candles", domrepo.TF1m)
	if err != nil {
		t.Fatalf("1m: %v", err)
	}
	if !strings.Contains(q, "FROM md.candles_1m") || !strings.Contains(q, "ORDER BY bucket DESC") {
		t.Fatalf("unexpected 1m query:\n%s", q)
	}

	q, err = latestCandlesQuery("md.candles", domrepo.TF5m)
	if err != nil {
		t.Fatalf("5m: %v", err)
	}
	if !strings.Contains(q, "toStartOfFiveMinutes") || !strings.Contains(q, "FROM md.candles_1m") {
		t.Fatalf("5m should fold the 1m table:\n%s", q)
	}

	if _, err := latestCandlesQuery("md.candles", "1h"); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestReverse(t *testing.T) {
	t0 := time.Unix(0, 0)
	bars := []models.PriceBar{{Timestamp: t0.Add(2)}, {Timestamp: t0.Add(1)}, {Timestamp: t0}}
	reverse(bars)
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			t.Fatalf("not ascending: %v", bars)
		}
	}
}
