package summary

import (
	"github.com/jonathan/notion-insights/internal/taxonomy"
)

// Mindset indicator names as stored with the summary.
const (
	IndicatorLearningFocus       = "learning_focus"
	IndicatorProjectOrientation  = "project_orientation"
	IndicatorResearchOrientation = "research_orientation"
	IndicatorKnowledgeSharing    = "knowledge_sharing"
)

// indicatorWeights maps each indicator to the sub-categories it counts.
var indicatorWeights = map[string][]taxonomy.Subcategory{
	IndicatorLearningFocus:       {taxonomy.SubTutorial, taxonomy.SubReference},
	IndicatorProjectOrientation:  {taxonomy.SubFeatureRequest, taxonomy.SubBugReport, taxonomy.SubPlanning},
	IndicatorResearchOrientation: {taxonomy.SubResearch},
	IndicatorKnowledgeSharing:    {taxonomy.SubBestPractice, taxonomy.SubCaseStudy, taxonomy.SubDocumentation},
}

// MindsetIndicators computes the weekly indicator ratios from sub-category
// counts. Each indicator is in [0, 1] with the week's classified document
// count as denominator. A zero total returns all-zero indicators.
func MindsetIndicators(subCounts map[taxonomy.Subcategory]int, total int) map[string]float64 {
	indicators := make(map[string]float64, len(indicatorWeights))
	for name := range indicatorWeights {
		indicators[name] = 0
	}
	if total <= 0 {
		return indicators
	}

	for name, subs := range indicatorWeights {
		sum := 0
		for _, sub := range subs {
			sum += subCounts[sub]
		}
		indicators[name] = float64(sum) / float64(total)
	}
	return indicators
}
