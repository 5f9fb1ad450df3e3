package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edupulse/presence-api/internal/models"
)

func detections(roomID string, levels ...models.ProximityLevel) []models.ProximityDetection {
	out := make([]models.ProximityDetection, 0, len(levels))
	for _, level := range levels {
		distance := 2.0
		switch level {
		case models.ProximityMedium:
			distance = 8.0
		case models.ProximityFar:
			distance = 20.0
		case models.ProximityOutOfRange:
			distance = 60.0
		}
		out = append(out, models.ProximityDetection{
			DetectedRoomID:    roomID,
			ProximityLevel:    level,
			EstimatedDistance: distance,
			DetectedAt:        time.Now(),
		})
	}
	return out
}

func TestAnalyzeMostlyNearSucceeds(t *testing.T) {
	a := NewProximityAnalyzer()
	batch := detections("room-1",
		models.ProximityNear, models.ProximityNear, models.ProximityMedium,
		models.ProximityNear, models.ProximityFar)

	outcome := a.Analyze("room-1", batch)
	assert.Equal(t, models.VerificationSuccess, outcome.Status)
	assert.Equal(t, 5, outcome.TotalDetections)
	assert.Equal(t, 5, outcome.ValidDetections)
	assert.InDelta(t, 6.8, outcome.AverageDistance, 0.001)
}

func TestAnalyzeTooManyOutOfRangeFails(t *testing.T) {
	a := NewProximityAnalyzer()
	batch := detections("room-1",
		models.ProximityOutOfRange, models.ProximityOutOfRange,
		models.ProximityOutOfRange, models.ProximityOutOfRange,
		models.ProximityNear)

	outcome := a.Analyze("room-1", batch)
	assert.Equal(t, models.VerificationFailed, outcome.Status)
	assert.Equal(t, "too many out-of-range detections", outcome.FailureReason)
}

func TestAnalyzeWrongRoom(t *testing.T) {
	a := NewProximityAnalyzer()
	batch := detections("room-2",
		models.ProximityNear, models.ProximityNear, models.ProximityNear)

	outcome := a.Analyze("room-1", batch)
	assert.Equal(t, models.VerificationWrongRoom, outcome.Status)
	assert.Equal(t, "room-2", outcome.DetectedRoomID)
}

func TestAnalyzeSingleStrayRoomFails(t *testing.T) {
	a := NewProximityAnalyzer()
	batch := detections("room-1",
		models.ProximityNear, models.ProximityNear, models.ProximityNear)
	batch[1].DetectedRoomID = "room-7"

	outcome := a.Analyze("room-1", batch)
	assert.Equal(t, models.VerificationWrongRoom, outcome.Status)
	assert.Equal(t, "room-7", outcome.DetectedRoomID)
}

func TestAnalyzeOutOfRangeBoundaryPasses(t *testing.T) {
	a := NewProximityAnalyzer()
	// Exactly 30% out of range sits on the threshold and does not trip it.
	levels := []models.ProximityLevel{
		models.ProximityOutOfRange, models.ProximityOutOfRange, models.ProximityOutOfRange,
		models.ProximityNear, models.ProximityNear, models.ProximityNear, models.ProximityNear,
		models.ProximityNear, models.ProximityNear, models.ProximityNear,
	}
	batch := detections("room-1", levels...)

	outcome := a.Analyze("room-1", batch)
	assert.Equal(t, models.VerificationSuccess, outcome.Status)
}

func TestAnalyzeFarHeavyBatchIsLowConfidence(t *testing.T) {
	a := NewProximityAnalyzer()
	// All in range but mostly FAR: passes thresholds, lacks confidence.
	batch := detections("room-1",
		models.ProximityNear, models.ProximityFar,
		models.ProximityFar, models.ProximityFar)

	outcome := a.Analyze("room-1", batch)
	assert.Equal(t, models.VerificationLowConfidence, outcome.Status)
}

func TestAnalyzeExcessiveAverageDistanceFails(t *testing.T) {
	a := NewProximityAnalyzer()
	batch := []models.ProximityDetection{
		{DetectedRoomID: "room-1", ProximityLevel: models.ProximityNear, EstimatedDistance: 40},
		{DetectedRoomID: "room-1", ProximityLevel: models.ProximityNear, EstimatedDistance: 45},
		{DetectedRoomID: "room-1", ProximityLevel: models.ProximityMedium, EstimatedDistance: 35},
	}

	outcome := a.Analyze("room-1", batch)
	assert.Equal(t, models.VerificationFailed, outcome.Status)
	assert.Equal(t, "average distance too far", outcome.FailureReason)
}

func TestAnalyzeEmptyBatchFails(t *testing.T) {
	a := NewProximityAnalyzer()
	outcome := a.Analyze("room-1", nil)
	assert.Equal(t, models.VerificationFailed, outcome.Status)
	assert.Equal(t, 0, outcome.TotalDetections)
}

func TestLevelForRSSI(t *testing.T) {
	assert.Equal(t, models.ProximityNear, LevelForRSSI(-40))
	assert.Equal(t, models.ProximityNear, LevelForRSSI(-45))
	assert.Equal(t, models.ProximityMedium, LevelForRSSI(-50))
	assert.Equal(t, models.ProximityMedium, LevelForRSSI(-65))
	assert.Equal(t, models.ProximityFar, LevelForRSSI(-70))
	assert.Equal(t, models.ProximityFar, LevelForRSSI(-80))
	assert.Equal(t, models.ProximityOutOfRange, LevelForRSSI(-85))
}
