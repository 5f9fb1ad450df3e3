package models

import "time"

// ProximityLevel is the coarse distance bucket the mobile client derives from
// beacon RSSI. The server consumes it as given; boundaries are documented on
// LevelForRSSI in the analyzer.
type ProximityLevel string

const (
	ProximityNear       ProximityLevel = "NEAR"
	ProximityMedium     ProximityLevel = "MEDIUM"
	ProximityFar        ProximityLevel = "FAR"
	ProximityOutOfRange ProximityLevel = "OUT_OF_RANGE"
)

// Valid returns true when the level is a supported value.
func (l ProximityLevel) Valid() bool {
	switch l {
	case ProximityNear, ProximityMedium, ProximityFar, ProximityOutOfRange:
		return true
	default:
		return false
	}
}

// VerificationStatus is the analyzer's verdict for one detection batch.
type VerificationStatus string

const (
	VerificationSuccess       VerificationStatus = "SUCCESS"
	VerificationLowConfidence VerificationStatus = "SUCCESS_LOW_CONFIDENCE"
	VerificationFailed        VerificationStatus = "FAILED"
	VerificationWrongRoom     VerificationStatus = "WRONG_ROOM"
	VerificationOngoing       VerificationStatus = "ONGOING"
)

// Success reports whether the status counts as a verified presence.
func (s VerificationStatus) Success() bool {
	return s == VerificationSuccess || s == VerificationLowConfidence
}

// ProximityDetection is a single BLE beacon reading taken during the
// verification window. Ephemeral input; persisted only as audit log entries.
type ProximityDetection struct {
	StudentIndex      string         `json:"student_index"`
	SessionToken      string         `json:"session_token"`
	BeaconDeviceID    string         `json:"beacon_device_id"`
	DetectedRoomID    string         `json:"detected_room_id"`
	RSSI              int            `json:"rssi"`
	ProximityLevel    ProximityLevel `json:"proximity_level"`
	EstimatedDistance float64        `json:"estimated_distance_meters"`
	DetectedAt        time.Time      `json:"detected_at"`
	BeaconType        string         `json:"beacon_type"`
}

// VerificationOutcome carries the analyzer verdict plus supporting metrics.
type VerificationOutcome struct {
	Status          VerificationStatus `json:"verification_status"`
	FailureReason   string             `json:"failure_reason,omitempty"`
	TotalDetections int                `json:"total_detections"`
	ValidDetections int                `json:"valid_detections"`
	AverageDistance float64            `json:"average_distance"`
	DetectedRoomID  string             `json:"detected_room_id"`
	ExpectedRoomID  string             `json:"expected_room_id"`
	StartedAt       time.Time          `json:"verification_start_time"`
	EndedAt         time.Time          `json:"verification_end_time"`
}

// ProximityVerificationLog is the durable audit row for either an individual
// detection or a verification summary.
type ProximityVerificationLog struct {
	ID                 int64              `db:"id" json:"id"`
	AttendanceRecordID *string            `db:"attendance_record_id" json:"attendance_record_id,omitempty"`
	StudentIndex       string             `db:"student_index" json:"student_index"`
	BeaconDeviceID     *string            `db:"beacon_device_id" json:"beacon_device_id,omitempty"`
	DetectedRoomID     *string            `db:"detected_room_id" json:"detected_room_id,omitempty"`
	ExpectedRoomID     *string            `db:"expected_room_id" json:"expected_room_id,omitempty"`
	RSSI               *int               `db:"rssi" json:"rssi,omitempty"`
	ProximityLevel     *ProximityLevel    `db:"proximity_level" json:"proximity_level,omitempty"`
	EstimatedDistance  *float64           `db:"estimated_distance" json:"estimated_distance,omitempty"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status"`
	DurationSeconds    *int               `db:"duration_seconds" json:"duration_seconds,omitempty"`
	BeaconType         *string            `db:"beacon_type" json:"beacon_type,omitempty"`
	SessionToken       *string            `db:"session_token" json:"-"`
	VerificationTime   time.Time          `db:"verification_time" json:"verification_time"`
}

// RoomProximityAnalytics aggregates audit rows for one room.
type RoomProximityAnalytics struct {
	RoomID                  string  `json:"room_id"`
	TotalVerifications      int     `json:"total_verifications"`
	SuccessfulVerifications int     `json:"successful_verifications"`
	AverageDistance         float64 `json:"average_distance"`
}
