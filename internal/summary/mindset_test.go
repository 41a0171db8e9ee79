package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/notion-insights/internal/taxonomy"
)

func TestMindsetIndicators_KnownDistribution(t *testing.T) {
	// 4 tutorials + 6 planning documents
	counts := map[taxonomy.Subcategory]int{
		taxonomy.SubTutorial: 4,
		taxonomy.SubPlanning: 6,
	}

	indicators := MindsetIndicators(counts, 10)

	assert.InDelta(t, 0.4, indicators[IndicatorLearningFocus], 1e-9)
	assert.InDelta(t, 0.6, indicators[IndicatorProjectOrientation], 1e-9)
	assert.InDelta(t, 0.0, indicators[IndicatorResearchOrientation], 1e-9)
	assert.InDelta(t, 0.0, indicators[IndicatorKnowledgeSharing], 1e-9)
}

func TestMindsetIndicators_AllInRange(t *testing.T) {
	counts := map[taxonomy.Subcategory]int{}
	total := 0
	for i, sub := range taxonomy.AllSubcategories() {
		counts[sub] = i + 1
		total += i + 1
	}

	indicators := MindsetIndicators(counts, total)

	assert.Len(t, indicators, 4)
	sum := 0.0
	for name, v := range indicators {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
		sum += v
	}
	// Every sub-category feeds exactly one indicator
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestMindsetIndicators_ZeroTotal(t *testing.T) {
	indicators := MindsetIndicators(nil, 0)

	assert.Len(t, indicators, 4)
	for name, v := range indicators {
		assert.Zero(t, v, name)
	}
}
