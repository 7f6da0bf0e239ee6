package postgres

import "time"

// BarRecord represents one resampled OHLCV bar stored in the database.
type BarRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Symbol      string    `gorm:"type:text;not null;index:idx_bar_symbol;index:idx_symbol_timeframe_period,unique"`
	Timeframe   string    `gorm:"type:varchar(10);not null;index:idx_symbol_timeframe_period,unique"`
	PeriodStart time.Time `gorm:"not null;index:idx_symbol_timeframe_period,unique"`

	Open  float64 `gorm:"type:numeric;not null"`
	High  float64 `gorm:"type:numeric;not null"`
	Low   float64 `gorm:"type:numeric;not null"`
	Close float64 `gorm:"type:numeric;not null"`

	Volume float64 `gorm:"type:numeric;not null"`

	// Revision counts overwrites of an already-stored period (late resamples).
	// 0 on first write; bumped by the upsert on every conflicting rewrite.
	Revision int64 `gorm:"not null;default:0"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (BarRecord) TableName() string {
	return "bar_record"
}
