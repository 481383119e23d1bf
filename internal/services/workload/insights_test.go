package workload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/models"
)

func TestOptimizer_PredictTrends(t *testing.T) {
	t.Run("forecasts load, alerts and bottlenecks", func(t *testing.T) {
		// Arrange
		k8s := models.OptimizedAssignment{TechnicianID: "ops", RequiredSkills: []string{"kubernetes"}, EstimatedMinutes: 120}
		req := models.TrendsRequest{
			Technicians: []models.Technician{
				{TechnicianID: "ops", Skills: []string{"kubernetes"}, CurrentWorkload: 30, MaxCapacity: 40},
				{TechnicianID: "net", Skills: []string{"network"}, CurrentWorkload: 10, MaxCapacity: 40},
			},
			CurrentAssignments: []models.OptimizedAssignment{k8s, k8s, k8s, k8s},
		}

		// Act
		res, err := NewOptimizer().PredictTrends(context.Background(), req)

		// Assert
		require.NoError(t, err)

		ops := res.NextWeekForecast["ops"]
		assert.InDelta(t, 38.0, ops.PredictedWorkload, 1e-9)
		assert.InDelta(t, 95.0, ops.Utilization, 1e-9)
		assert.Equal(t, "increasing", ops.Trend)
		assert.Equal(t, "high", ops.RiskLevel)

		net := res.NextWeekForecast["net"]
		assert.Equal(t, "stable", net.Trend)
		assert.Equal(t, "low", net.RiskLevel)

		require.Len(t, res.CapacityAlerts, 1)
		assert.Equal(t, "ops", res.CapacityAlerts[0].TechnicianID)
		assert.Equal(t, "overutilization_risk", res.CapacityAlerts[0].AlertType)
		assert.Equal(t, "redistribute_workload", res.CapacityAlerts[0].RecommendedAction)

		require.Len(t, res.Bottlenecks, 1)
		assert.Equal(t, models.Bottleneck{
			Skill:                "kubernetes",
			Demand:               4,
			AvailableTechnicians: 1,
			RiskLevel:            "high",
			Recommendation:       "cross_train_technicians",
		}, res.Bottlenecks[0])
	})

	t.Run("missing estimates count as two hours", func(t *testing.T) {
		// Arrange
		req := models.TrendsRequest{
			Technicians:        []models.Technician{{TechnicianID: "a", MaxCapacity: 40}},
			CurrentAssignments: []models.OptimizedAssignment{{TechnicianID: "a"}},
		}

		// Act
		res, err := NewOptimizer().PredictTrends(context.Background(), req)

		// Assert
		require.NoError(t, err)
		assert.InDelta(t, 2.0, res.NextWeekForecast["a"].PredictedWorkload, 1e-9)
		assert.Empty(t, res.Bottlenecks)
	})

	t.Run("requires technicians", func(t *testing.T) {
		_, err := NewOptimizer().PredictTrends(context.Background(), models.TrendsRequest{})
		assert.ErrorIs(t, err, domainErrors.ErrEmptyTechnicians)
	})
}

func TestForecastRisk(t *testing.T) {
	assert.Equal(t, "critical", forecastRisk(96))
	assert.Equal(t, "high", forecastRisk(90))
	assert.Equal(t, "medium", forecastRisk(75))
	assert.Equal(t, "low", forecastRisk(70))
}

func TestOptimizer_AnalyzeTeam(t *testing.T) {
	// Arrange
	req := models.TeamRequest{
		Technicians: []models.Technician{
			{TechnicianID: "primary", Skills: []string{"kubernetes", "linux"}, ExperienceLevel: ptr(6.0)},
			{TechnicianID: "junior", Skills: []string{"kubernetes", "terraform"}, ExperienceLevel: ptr(3.0), LearningGoals: []string{"linux", "docker"}},
			{TechnicianID: "mentor", Skills: []string{"docker", "linux"}, ExperienceLevel: ptr(9.0)},
		},
		Assignments: []models.OptimizedAssignment{
			{TicketID: "T-hard", TechnicianID: "primary", ComplexityScore: 8, RequiredSkills: []string{"kubernetes", "linux"}},
			{TicketID: "T-easy", TechnicianID: "primary", ComplexityScore: 5, RequiredSkills: []string{"kubernetes"}},
		},
	}

	// Act
	res, err := NewOptimizer().AnalyzeTeam(context.Background(), req)

	// Assert
	require.NoError(t, err)

	require.Len(t, res.CollaborationOpportunities, 1)
	opp := res.CollaborationOpportunities[0]
	assert.Equal(t, "T-hard", opp.TicketID)
	assert.Equal(t, "primary", opp.PrimaryTechnician)
	assert.Equal(t, []models.Collaborator{
		{TechnicianID: "junior", CollaborationScore: 0.5, ComplementarySkills: []string{"terraform"}},
		{TechnicianID: "mentor", CollaborationScore: 0.5, ComplementarySkills: []string{"docker"}},
	}, opp.Collaborators)

	require.Len(t, res.Mentorships, 1)
	assert.Equal(t, models.Mentorship{
		MentorID:         "mentor",
		MenteeID:         "junior",
		SkillsToTransfer: []string{"docker", "linux"},
		Score:            1,
	}, res.Mentorships[0])

	// coverage counts 2, 2, 1, 2 have variance 0.1875
	assert.InDelta(t, 1-0.1875/10, res.BalanceScore, 1e-9)
}

func TestOptimizer_AnalyzeTeam_RequiresTechnicians(t *testing.T) {
	_, err := NewOptimizer().AnalyzeTeam(context.Background(), models.TeamRequest{})
	assert.ErrorIs(t, err, domainErrors.ErrEmptyTechnicians)
}

func TestOptimizer_WellnessRecommendations(t *testing.T) {
	t.Run("one recommendation per condition", func(t *testing.T) {
		// Arrange
		req := models.WellnessRequest{
			Technicians: []models.Technician{
				{TechnicianID: "busy", CurrentWorkload: 36, MaxCapacity: 40},
				{TechnicianID: "curious", CurrentWorkload: 10, MaxCapacity: 40, LearningGoals: []string{"docker"}},
				{TechnicianID: "steady", CurrentWorkload: 32, MaxCapacity: 40},
			},
			Predictions: &models.TrendPrediction{
				NextWeekForecast: map[string]models.Forecast{"steady": {Utilization: 92}},
			},
		}

		// Act
		recs, err := NewOptimizer().WellnessRecommendations(context.Background(), req)

		// Assert
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, "busy", recs[0].TechnicianID)
		assert.Equal(t, "workload_reduction", recs[0].Type)
		assert.Equal(t, "high", recs[0].Priority)

		assert.Equal(t, "curious", recs[1].TechnicianID)
		assert.Equal(t, "skill_development", recs[1].Type)
		assert.Contains(t, recs[1].SpecificActions, "Assign tickets involving docker")

		assert.Equal(t, "steady", recs[2].TechnicianID)
		assert.Equal(t, "proactive_rebalancing", recs[2].Type)
	})

	t.Run("high burnout risk alone triggers a reduction", func(t *testing.T) {
		// Arrange
		req := models.WellnessRequest{
			Technicians: []models.Technician{{TechnicianID: "a", CurrentWorkload: 8, MaxCapacity: 40, BurnoutRisk: ptr(0.8)}},
		}

		// Act
		recs, err := NewOptimizer().WellnessRecommendations(context.Background(), req)

		// Assert
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "workload_reduction", recs[0].Type)
	})

	t.Run("healthy team gets nothing", func(t *testing.T) {
		recs, err := NewOptimizer().WellnessRecommendations(context.Background(), models.WellnessRequest{
			Technicians: []models.Technician{{TechnicianID: "a", CurrentWorkload: 30, MaxCapacity: 40}},
		})

		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}
