// Package domain contains the core mutation testing workflow and logic.
package domain

import (
	"strconv"
	"strings"

	m "pymute.dev/pkg/pymute/internal/model"
)

// Rule is an immutable trigger/replacement pair. A line containing Before
// can be mutated into the same line with After substituted.
type Rule struct {
	Before string
	After  string
}

// categoryRules returns the rules of a single category, in their fixed
// declaration order.
func categoryRules(category m.Category) []Rule {
	switch category {
	case m.CategoryMathOps:
		return []Rule{
			{" + ", " - "},
			{" - ", " + "},
			{" * ", " / "},
			{" / ", " * "},
		}
	case m.CategoryConjunctions:
		return []Rule{
			{" and ", " or "},
			{" or ", " and "},
		}
	case m.CategoryBooleans:
		return []Rule{
			{" True ", " False "},
			{" False ", " True "},
		}
	case m.CategoryControlFlow:
		return []Rule{
			{" else: ", " elif False: "},
			{" if not ", " if "},
			{" if ", " if not "},
		}
	case m.CategoryCompOps:
		return []Rule{
			{" > ", " < "},
			{" < ", " > "},
			{"==", "!="},
			{"!=", "=="},
		}
	case m.CategoryNumbers:
		rules := make([]Rule, 0, 10)
		for n := 0; n < 10; n++ {
			rules = append(rules, Rule{strconv.Itoa(n), strconv.Itoa(n + 1)})
		}

		return rules
	}

	return nil
}

// Replacements builds the active rule set for the enabled categories: the
// union of their rule tables, in category declaration order. Duplicate
// category names are collapsed.
func Replacements(enabled []m.Category) []Rule {
	set := make(map[m.Category]bool, len(enabled))
	for _, category := range enabled {
		set[category] = true
	}

	var rules []Rule

	for _, category := range m.AllCategories {
		if set[category] {
			rules = append(rules, categoryRules(category)...)
		}
	}

	return rules
}

// FirstMatch returns the first rule (in declaration order) whose trigger is
// contained in line. No further rules are tried once one matches.
func FirstMatch(line string, rules []Rule) (Rule, bool) {
	for _, rule := range rules {
		if strings.Contains(line, rule.Before) {
			return rule, true
		}
	}

	return Rule{}, false
}
