package service

import (
	"github.com/edupulse/presence-api/internal/models"
)

// Verification thresholds. A batch passes when enough detections sit close to
// the beacon, none of the disqualifying conditions trip, and the readings came
// from the expected room.
const (
	// OutOfRangeThreshold is the maximum tolerated share of OUT_OF_RANGE
	// detections before the batch is rejected outright.
	OutOfRangeThreshold = 0.30
	// ValidRatioThreshold is the minimum share of in-range detections
	// (NEAR, MEDIUM or FAR).
	ValidRatioThreshold = 0.70
	// MaxAverageDistance caps the mean estimated distance in meters across
	// the batch.
	MaxAverageDistance = 30.0
	// IdealRatioThreshold separates SUCCESS from SUCCESS_LOW_CONFIDENCE:
	// at least half the detections must be NEAR or MEDIUM for full
	// confidence.
	IdealRatioThreshold = 0.50

	// MinVerificationSeconds and MaxVerificationSeconds bound the sampling
	// window reported by the client.
	MinVerificationSeconds = 10
	MaxVerificationSeconds = 60
)

// RSSI boundaries in dBm for the coarse proximity buckets. The mobile client
// classifies readings itself; the server keeps this mapping exported so a
// future hardening pass can re-derive levels from raw RSSI.
const (
	rssiNearFloor   = -45
	rssiMediumFloor = -65
	rssiFarFloor    = -80
)

// LevelForRSSI maps a raw RSSI reading to its proximity bucket.
func LevelForRSSI(rssi int) models.ProximityLevel {
	switch {
	case rssi >= rssiNearFloor:
		return models.ProximityNear
	case rssi >= rssiMediumFloor:
		return models.ProximityMedium
	case rssi >= rssiFarFloor:
		return models.ProximityFar
	default:
		return models.ProximityOutOfRange
	}
}

// ProximityAnalyzer evaluates a batch of beacon detections against the
// expected classroom. It is stateless and performs no I/O.
type ProximityAnalyzer struct{}

// NewProximityAnalyzer constructs the analyzer.
func NewProximityAnalyzer() *ProximityAnalyzer {
	return &ProximityAnalyzer{}
}

// Analyze inspects the detection batch and produces a verdict. Checks run in
// a fixed order: room mismatch, out-of-range share, valid share, average
// distance, then confidence. The first failing check decides the outcome.
// The reported window spans the earliest and latest detection timestamps.
func (a *ProximityAnalyzer) Analyze(expectedRoomID string, detections []models.ProximityDetection) models.VerificationOutcome {
	outcome := models.VerificationOutcome{
		Status:          models.VerificationFailed,
		TotalDetections: len(detections),
		ExpectedRoomID:  expectedRoomID,
	}
	if len(detections) == 0 {
		outcome.FailureReason = "no proximity detections"
		return outcome
	}

	outcome.StartedAt = detections[0].DetectedAt
	outcome.EndedAt = detections[0].DetectedAt
	for _, d := range detections {
		if d.DetectedAt.Before(outcome.StartedAt) {
			outcome.StartedAt = d.DetectedAt
		}
		if d.DetectedAt.After(outcome.EndedAt) {
			outcome.EndedAt = d.DetectedAt
		}
	}

	outcome.DetectedRoomID = expectedRoomID
	for _, d := range detections {
		if d.DetectedRoomID != expectedRoomID {
			outcome.DetectedRoomID = d.DetectedRoomID
			outcome.Status = models.VerificationWrongRoom
			outcome.FailureReason = "detection from a different room"
			return outcome
		}
	}

	total := float64(len(detections))
	var outOfRange, valid, ideal int
	var distanceSum float64
	for _, d := range detections {
		switch d.ProximityLevel {
		case models.ProximityOutOfRange:
			outOfRange++
		case models.ProximityNear, models.ProximityMedium:
			ideal++
			valid++
		case models.ProximityFar:
			valid++
		}
		distanceSum += d.EstimatedDistance
	}
	outcome.ValidDetections = valid
	outcome.AverageDistance = distanceSum / total

	if float64(outOfRange)/total > OutOfRangeThreshold {
		outcome.FailureReason = "too many out-of-range detections"
		return outcome
	}
	if float64(valid)/total < ValidRatioThreshold {
		outcome.FailureReason = "insufficient proximity readings"
		return outcome
	}
	if outcome.AverageDistance > MaxAverageDistance {
		outcome.FailureReason = "average distance too far"
		return outcome
	}

	if float64(ideal)/total >= IdealRatioThreshold {
		outcome.Status = models.VerificationSuccess
	} else {
		outcome.Status = models.VerificationLowConfidence
	}
	return outcome
}
