package audit

import "gorm.io/gorm"

// Repository handles audit database operations. Grounded on the
// teacher's generic repository idiom (pkg/database/repository.go),
// repurposed from DMR transmission records to control events and frame
// samples.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository against db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RecordControlEvent inserts one control-channel audit row.
func (r *Repository) RecordControlEvent(e *ControlEvent) error {
	return r.db.Create(e).Error
}

// RecordFrameSample inserts one transmission-frame-rate sample.
func (r *Repository) RecordFrameSample(s *FrameSample) error {
	return r.db.Create(s).Error
}

// RecentControlEvents returns the most recent N control-channel events.
func (r *Repository) RecentControlEvents(limit int) ([]ControlEvent, error) {
	var events []ControlEvent
	err := r.db.Order("timestamp DESC").Limit(limit).Find(&events).Error
	return events, err
}

// RecentFrameSamples returns the most recent N frame-rate samples.
func (r *Repository) RecentFrameSamples(limit int) ([]FrameSample, error) {
	var samples []FrameSample
	err := r.db.Order("timestamp DESC").Limit(limit).Find(&samples).Error
	return samples, err
}
