package postgres

import (
	"context"
	"time"

	"pairwatch/internal/market"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertBar writes a bar keyed by (symbol, timeframe, period_start).
// A conflicting period is overwritten (last write wins) and its revision is
// bumped so a late resample of an already-served period is detectable.
func (p *PostgresClient) UpsertBar(ctx context.Context, bar market.Bar) error {
	record := ToBarRecord(bar)

	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "symbol"},
			{Name: "timeframe"},
			{Name: "period_start"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"open":     record.Open,
			"high":     record.High,
			"low":      record.Low,
			"close":    record.Close,
			"volume":   record.Volume,
			"revision": gorm.Expr("revision + 1"),
		}),
	}).Create(record)

	return tx.Error
}

// ReadBars returns the most recent `limit` bars for (symbol, timeframe),
// ascending by period start. limit <= 0 means no limit.
func (p *PostgresClient) ReadBars(ctx context.Context, symbol, timeframe string, limit int) ([]market.Bar, error) {
	var records []BarRecord

	q := p.DB.WithContext(ctx).
		Where("symbol = ? AND timeframe = ?", symbol, timeframe).
		Order("period_start DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}

	// Newest-first from the query; flip to ascending for consumers.
	bars := make([]market.Bar, len(records))
	for i, record := range records {
		bars[len(records)-1-i] = toBar(record)
	}
	return bars, nil
}

// GetBar fetches one stored bar by key, mainly for tests and spot checks.
func (p *PostgresClient) GetBar(ctx context.Context, symbol, timeframe string, periodStart time.Time) (*BarRecord, error) {
	var record BarRecord
	err := p.DB.WithContext(ctx).
		Where("symbol = ? AND timeframe = ? AND period_start = ?", symbol, timeframe, periodStart).
		First(&record).Error

	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteOldBars removes bars with a period start before the given cutoff.
func (p *PostgresClient) DeleteOldBars(ctx context.Context, before time.Time) error {
	return p.DB.WithContext(ctx).
		Where("period_start < ?", before).
		Delete(&BarRecord{}).Error
}

// CountBars returns the number of stored bars for (symbol, timeframe).
func (p *PostgresClient) CountBars(ctx context.Context, symbol, timeframe string) (int64, error) {
	var count int64
	err := p.DB.WithContext(ctx).
		Model(&BarRecord{}).
		Where("symbol = ? AND timeframe = ?", symbol, timeframe).
		Count(&count).Error
	return count, err
}

// ToBarRecord converts a domain bar into a BarRecord for DB insertion.
func ToBarRecord(bar market.Bar) *BarRecord {
	return &BarRecord{
		Symbol:      bar.Symbol,
		Timeframe:   bar.Timeframe,
		PeriodStart: time.UnixMilli(bar.PeriodStart).UTC(),
		Open:        bar.Open,
		High:        bar.High,
		Low:         bar.Low,
		Close:       bar.Close,
		Volume:      bar.Volume,
	}
}

func toBar(record BarRecord) market.Bar {
	return market.Bar{
		Symbol:      record.Symbol,
		Timeframe:   record.Timeframe,
		PeriodStart: record.PeriodStart.UnixMilli(),
		Open:        record.Open,
		High:        record.High,
		Low:         record.Low,
		Close:       record.Close,
		Volume:      record.Volume,
	}
}
