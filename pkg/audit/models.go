package audit

import "time"

// ControlEvent records one remote-control request: who set what, when,
// and whether it succeeded (spec_full.md section 4.16).
type ControlEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Verb      string    `gorm:"size:8;not null" json:"verb"`
	Module    string    `gorm:"size:16" json:"module"`
	Param     string    `gorm:"size:16" json:"param"`
	Value     string    `gorm:"size:64" json:"value"`
	Result    string    `gorm:"size:128" json:"result"`
}

// TableName specifies the table name for ControlEvent.
func (ControlEvent) TableName() string { return "control_events" }

// FrameSample records one transmission-frame-rate sample for post-hoc
// inspection: the frame's FCT and the gain factor in effect when it
// was emitted.
type FrameSample struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Timestamp  time.Time `gorm:"index;not null" json:"timestamp"`
	FCT        uint8     `gorm:"not null" json:"fct"`
	GainFactor float64   `gorm:"not null" json:"gain_factor"`
}

// TableName specifies the table name for FrameSample.
func (FrameSample) TableName() string { return "frame_samples" }
