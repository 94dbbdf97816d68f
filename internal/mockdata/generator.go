// internal/mockdata/generator.go
package mockdata

import (
	"fmt"
	"math/rand"
	"time"

	"forecast-assistant/internal/models"
)

// Generator produces all randomized mock output in the system: record
// counts, data-quality profiles, weekly series, and BU display colors.
// It is seedable so tests can assert deterministic results.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator seeded from the wall clock.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic generator for the given seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// RecordCount simulates the number of records found in an uploaded file,
// always at least 500.
func (g *Generator) RecordCount() int {
	return g.rng.Intn(5000) + 500
}

var seasonalities = []string{"weekly", "monthly", "none"}

var trends = []string{"increasing", "decreasing", "stable"}

// DataQuality simulates a profiling pass over a fresh upload.
func (g *Generator) DataQuality() models.DataQuality {
	return models.DataQuality{
		Completeness: 90 + g.rng.Intn(10),
		Outliers:     g.rng.Intn(10),
		Seasonality:  seasonalities[g.rng.Intn(len(seasonalities))],
		Trend:        trends[g.rng.Intn(len(trends))],
	}
}

// Color returns a random hex display color for a new business unit.
func (g *Generator) Color() string {
	const letters = "0123456789ABCDEF"
	b := make([]byte, 7)
	b[0] = '#'
	for i := 1; i < 7; i++ {
		b[i] = letters[g.rng.Intn(16)]
	}
	return string(b)
}

var agentStatuses = []models.AgentStatus{models.AgentActive, models.AgentIdle, models.AgentCompleted}

// DriftAgents returns a copy of the roster with simulated telemetry moved
// one step: ~30% of agents flip status, the rest drift cpu/memory within
// their bands. The input slice is not modified.
func (g *Generator) DriftAgents(agents []models.Agent) []models.Agent {
	out := append([]models.Agent(nil), agents...)
	for i := range out {
		if g.rng.Float64() > 0.7 {
			status := agentStatuses[g.rng.Intn(len(agentStatuses))]
			out[i].Status = status
			if status == models.AgentActive {
				out[i].Task = "Processing " + out[i].Name
				out[i].CPUUsage = float64(5 + g.rng.Intn(70))
				out[i].MemoryUsage = float64(10 + g.rng.Intn(40))
			} else {
				out[i].Task = "Idle"
				out[i].CPUUsage = float64(5 + g.rng.Intn(10))
				out[i].MemoryUsage = float64(10 + g.rng.Intn(15))
			}
			continue
		}
		out[i].CPUUsage = max(5, out[i].CPUUsage+(g.rng.Float64()-0.5)*5)
		out[i].MemoryUsage = max(10, out[i].MemoryUsage+(g.rng.Float64()-0.5)*8)
	}
	return out
}

// WeeklySeries generates n weeks of synthetic history ending at the week
// containing end. Roughly one point in twelve is flagged as an outlier and
// gets its units tripled; one in twenty is a missing week with zero values.
func (g *Generator) WeeklySeries(n int, end time.Time) []models.WeeklyDataPoint {
	if n <= 0 {
		return nil
	}
	start := end.AddDate(0, 0, -7*(n-1))
	base := 200 + g.rng.Intn(800)
	points := make([]models.WeeklyDataPoint, 0, n)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, 7*i)
		p := models.WeeklyDataPoint{
			WeekLabel: fmt.Sprintf("W%02d", i+1),
			Date:      date,
		}
		switch {
		case g.rng.Intn(20) == 0:
			p.IsMissing = true
		case g.rng.Intn(12) == 0:
			p.IsOutlier = true
			p.Units = (base + g.rng.Intn(base)) * 3
		default:
			p.Units = base + g.rng.Intn(base)
		}
		p.Revenue = float64(p.Units) * (8 + g.rng.Float64()*4)
		points = append(points, p)
	}
	return points
}
