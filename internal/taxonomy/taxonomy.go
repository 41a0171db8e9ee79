// Package taxonomy defines the fixed document classification taxonomy:
// two top-level categories, each with its own closed set of sub-categories.
package taxonomy

import "fmt"

// Category is the primary document classification.
type Category string

const (
	// CategoryProject covers project work: features, bugs, planning, research.
	CategoryProject Category = "project"
	// CategoryKnowledge covers knowledge content: tutorials, reference, docs.
	CategoryKnowledge Category = "knowledge"
)

// Subcategory refines a Category. Valid values depend on the category.
type Subcategory string

// Project sub-categories.
const (
	SubFeatureRequest Subcategory = "feature_request"
	SubBugReport      Subcategory = "bug_report"
	SubPlanning       Subcategory = "planning"
	SubResearch       Subcategory = "research"
)

// Knowledge sub-categories.
const (
	SubTutorial      Subcategory = "tutorial"
	SubReference     Subcategory = "reference"
	SubBestPractice  Subcategory = "best_practice"
	SubCaseStudy     Subcategory = "case_study"
	SubDocumentation Subcategory = "documentation"
)

// Categories lists all categories in declaration order. The order is the
// tie-break order when sorting distributions with equal counts.
func Categories() []Category {
	return []Category{CategoryProject, CategoryKnowledge}
}

// Subcategories returns the valid sub-categories for a category in
// declaration order. Unknown categories return nil.
func Subcategories(c Category) []Subcategory {
	switch c {
	case CategoryProject:
		return []Subcategory{SubFeatureRequest, SubBugReport, SubPlanning, SubResearch}
	case CategoryKnowledge:
		return []Subcategory{SubTutorial, SubReference, SubBestPractice, SubCaseStudy, SubDocumentation}
	default:
		return nil
	}
}

// AllSubcategories lists every sub-category across both categories in
// declaration order.
func AllSubcategories() []Subcategory {
	var all []Subcategory
	for _, c := range Categories() {
		all = append(all, Subcategories(c)...)
	}
	return all
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryProject:
		return CategoryProject, nil
	case CategoryKnowledge:
		return CategoryKnowledge, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// ParseSubcategory converts a string into a Subcategory belonging to the
// given category. A sub-category from the wrong category is rejected.
func ParseSubcategory(c Category, s string) (Subcategory, error) {
	for _, sub := range Subcategories(c) {
		if Subcategory(s) == sub {
			return sub, nil
		}
	}
	return "", fmt.Errorf("sub-category %q is not valid under category %q", s, c)
}

// CategoryOf returns the category a sub-category belongs to.
func CategoryOf(s Subcategory) (Category, error) {
	for _, c := range Categories() {
		for _, sub := range Subcategories(c) {
			if s == sub {
				return c, nil
			}
		}
	}
	return "", fmt.Errorf("unknown sub-category %q", s)
}

// DeclarationIndex returns the position of a sub-category in declaration
// order, used for deterministic tie-breaking. Unknown values sort last.
func DeclarationIndex(s Subcategory) int {
	for i, sub := range AllSubcategories() {
		if s == sub {
			return i
		}
	}
	return len(AllSubcategories())
}

// CategoryIndex returns the position of a category in declaration order.
func CategoryIndex(c Category) int {
	for i, cat := range Categories() {
		if c == cat {
			return i
		}
	}
	return len(Categories())
}
