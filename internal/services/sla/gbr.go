package sla

import (
	"math/rand/v2"
	"sort"

	"github.com/thomas-vilte/mateticket/internal/models"
)

// stump is a depth-1 regression tree.
type stump struct {
	feature   int
	threshold float64
	left      float64
	right     float64
}

func (s stump) predict(x []float64) float64 {
	if x[s.feature] <= s.threshold {
		return s.left
	}
	return s.right
}

// GBRModel is a gradient boosted ensemble of stumps fitted on squared error.
type GBRModel struct {
	base         float64
	learningRate float64
	trees        []stump
}

type GBROptions struct {
	Trees        int
	LearningRate float64
	Samples      int
	Seed         uint64
}

func DefaultGBROptions() GBROptions {
	return GBROptions{Trees: 150, LearningRate: 0.1, Samples: 1000, Seed: 42}
}

// FitGBR fits the ensemble on rows x with targets y.
func FitGBR(x [][]float64, y []float64, trees int, learningRate float64) *GBRModel {
	m := &GBRModel{learningRate: learningRate}
	if len(x) == 0 {
		return m
	}

	for _, v := range y {
		m.base += v
	}
	m.base /= float64(len(y))

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = m.base
	}

	nFeatures := len(x[0])
	order := make([][]int, nFeatures)
	for f := 0; f < nFeatures; f++ {
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]][f] < x[idx[b]][f] })
		order[f] = idx
	}

	residual := make([]float64, len(y))
	for t := 0; t < trees; t++ {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}

		best, ok := bestStump(x, residual, order)
		if !ok {
			break
		}
		m.trees = append(m.trees, best)

		for i := range pred {
			pred[i] += learningRate * best.predict(x[i])
		}
	}

	return m
}

// bestStump finds the split that most reduces the squared error of r.
func bestStump(x [][]float64, r []float64, order [][]int) (stump, bool) {
	n := len(r)
	var total float64
	for _, v := range r {
		total += v
	}

	var best stump
	bestGain := 0.0
	found := false

	for f, idx := range order {
		var leftSum float64
		for k := 0; k < n-1; k++ {
			leftSum += r[idx[k]]
			cur, next := x[idx[k]][f], x[idx[k+1]][f]
			if cur == next {
				continue
			}
			nl, nr := float64(k+1), float64(n-k-1)
			rightSum := total - leftSum
			gain := leftSum*leftSum/nl + rightSum*rightSum/nr - total*total/float64(n)
			if gain > bestGain {
				bestGain = gain
				found = true
				best = stump{
					feature:   f,
					threshold: (cur + next) / 2,
					left:      leftSum / nl,
					right:     rightSum / nr,
				}
			}
		}
	}

	return best, found
}

func (m *GBRModel) PredictVector(x []float64) float64 {
	out := m.base
	for _, t := range m.trees {
		out += m.learningRate * t.predict(x)
	}
	return out
}

// GBREngine predicts with a model trained at start up on synthetic tickets.
type GBREngine struct {
	model *GBRModel
}

func NewGBREngine(opts GBROptions) *GBREngine {
	x, y := syntheticDataset(opts.Samples, opts.Seed)
	return &GBREngine{model: FitGBR(x, y, opts.Trees, opts.LearningRate)}
}

func (e *GBREngine) Version() string { return "gbr-1.0" }

func (e *GBREngine) Predict(req models.SLARequest, f Features) (float64, float64) {
	if req.Status == models.StatusResolved || req.Status == models.StatusClosed {
		return 0, 0.75
	}
	return clamp01(e.model.PredictVector(f.Vector())), 0.75
}

// syntheticDataset draws random ticket states and labels them with a rule
// based breach probability plus gaussian noise.
func syntheticDataset(n int, seed uint64) ([][]float64, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	x := make([][]float64, 0, n)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		f := Features{
			TimeRemainingRatio:     rng.Float64(),
			ProgressRatio:          rng.Float64(),
			BusinessHoursRemaining: rng.Float64() * 40,
			PriorityScore:          1 + rng.IntN(4),
			TierScore:              1 + rng.IntN(3),
			CategoryComplexity:     0.3 + rng.Float64()*0.6,
			SkillMatch:             0.3 + rng.Float64()*0.7,
			Workload:               0.2 + rng.Float64()*0.8,
			IsAssigned:             rng.IntN(2) == 1,
			IsBusinessHours:        rng.IntN(2) == 1,
			EscalationLevel:        rng.IntN(3),
		}
		x = append(x, f.Vector())
		y = append(y, clamp01(syntheticTarget(f)+rng.NormFloat64()*0.1))
	}
	return x, y
}

func syntheticTarget(f Features) float64 {
	risk := 1 - f.TimeRemainingRatio

	if f.ProgressRatio < f.TimeRemainingRatio {
		risk *= 1.5
	} else {
		risk *= 0.8
	}

	risk *= float64(f.PriorityScore) / 4 * 1.2

	switch {
	case !f.IsAssigned:
		risk *= 1.4
	case f.Workload > 0.8:
		risk *= 1.3
	}

	return risk * (0.7 + f.CategoryComplexity*0.6)
}
