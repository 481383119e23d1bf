package sla

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/mateticket/internal/models"
)

func TestFitGBR_LearnsStep(t *testing.T) {
	// Arrange
	var x [][]float64
	var y []float64
	for i := 0; i < 100; i++ {
		v := float64(i) / 100
		x = append(x, []float64{v, 0.5})
		if v > 0.5 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}

	// Act
	m := FitGBR(x, y, 50, 0.3)

	// Assert
	assert.Greater(t, m.PredictVector([]float64{0.9, 0.5}), 0.95)
	assert.Less(t, m.PredictVector([]float64{0.1, 0.5}), 0.05)
	assert.LessOrEqual(t, len(m.trees), 50)
}

func TestFitGBR_ConstantTargetStopsEarly(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{0.4, 0.4, 0.4}

	m := FitGBR(x, y, 10, 0.1)

	assert.Zero(t, len(m.trees))
	assert.InDelta(t, 0.4, m.PredictVector([]float64{10}), 1e-9)
}

func TestFitGBR_EmptyInput(t *testing.T) {
	m := FitGBR(nil, nil, 10, 0.1)

	assert.Zero(t, len(m.trees))
	assert.Zero(t, m.PredictVector([]float64{1}))
}

func TestSyntheticDataset_IsDeterministic(t *testing.T) {
	x1, y1 := syntheticDataset(50, 7)
	x2, y2 := syntheticDataset(50, 7)

	require.Len(t, x1, 50)
	assert.Equal(t, x1, x2)
	assert.Equal(t, y1, y2)
	for _, v := range y1 {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestGBREngine_Predict(t *testing.T) {
	// Arrange
	engine := NewGBREngine(GBROptions{Trees: 60, LearningRate: 0.1, Samples: 400, Seed: 42})
	risky := Features{
		TimeRemainingRatio: 0.02,
		PriorityScore:      4,
		TierScore:          3,
		CategoryComplexity: 0.95,
		SkillMatch:         0.3,
		Workload:           0.95,
		EscalationLevel:    2,
	}
	safe := Features{
		TimeRemainingRatio:     0.95,
		ProgressRatio:          0.9,
		BusinessHoursRemaining: 35,
		PriorityScore:          1,
		TierScore:              1,
		CategoryComplexity:     0.3,
		SkillMatch:             0.9,
		Workload:               0.3,
		IsAssigned:             true,
	}
	open := models.SLARequest{Status: models.StatusOpen}

	// Act
	pRisky, confidence := engine.Predict(open, risky)
	pSafe, _ := engine.Predict(open, safe)
	pClosed, _ := engine.Predict(models.SLARequest{Status: models.StatusClosed}, risky)

	// Assert
	assert.Equal(t, "gbr-1.0", engine.Version())
	assert.InDelta(t, 0.75, confidence, 1e-9)
	assert.Greater(t, pRisky, pSafe+0.3)
	assert.GreaterOrEqual(t, pSafe, 0.0)
	assert.LessOrEqual(t, pRisky, 1.0)
	assert.Zero(t, pClosed)
}
