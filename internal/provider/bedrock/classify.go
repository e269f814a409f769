package bedrock

import "strings"

// priceClass is the semantic price field a line-item maps to.
type priceClass int

const (
	classNone priceClass = iota
	classInput
	classOutput
	classBatchInput
	classBatchOutput
	classCacheRead
	classCacheWrite
)

// lineItem is the classifier's view of one SKU price entry.
type lineItem struct {
	usageType   string
	description string
}

// classifierRule pairs a predicate with its target price class. Rules are
// evaluated in table order; the first match wins, so precedence lives in
// the table, not in nested conditionals.
type classifierRule struct {
	match func(item lineItem) bool
	class priceClass
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

// General catalog markers are case-insensitive substrings of the usage-type
// code or the free-text description.
func generalBatch(item lineItem) bool {
	return containsFold(item.usageType, "batch") || containsFold(item.description, "batch")
}

func generalInput(item lineItem) bool {
	return containsFold(item.usageType, "input") || containsFold(item.description, "input")
}

func generalOutput(item lineItem) bool {
	return containsFold(item.usageType, "output") || containsFold(item.description, "output")
}

// generalRules classifies line-items of the general Bedrock catalog.
// Batch indicators take precedence over plain input/output markers; a batch
// item carrying neither maps to no price field at all.
var generalRules = []classifierRule{
	{match: func(i lineItem) bool { return generalBatch(i) && generalInput(i) }, class: classBatchInput},
	{match: func(i lineItem) bool { return generalBatch(i) && generalOutput(i) }, class: classBatchOutput},
	{match: generalBatch, class: classNone},
	{match: generalInput, class: classInput},
	{match: generalOutput, class: classOutput},
}

// Foundation-model catalog markers follow the upstream code casing for
// usage-type codes; batch is matched case-insensitively in both fields.
func fmBatch(item lineItem) bool {
	return containsFold(item.usageType, "batch") || strings.Contains(item.description, "Batch")
}

func fmInput(item lineItem) bool {
	return strings.Contains(item.usageType, "Input")
}

func fmOutput(item lineItem) bool {
	return strings.Contains(item.usageType, "Output") || strings.Contains(item.description, "Response")
}

func fmCacheRead(item lineItem) bool {
	return strings.Contains(item.usageType, "CacheRead") || strings.Contains(item.description, "Cache Read")
}

func fmCacheWrite(item lineItem) bool {
	return strings.Contains(item.usageType, "CacheWrite") || strings.Contains(item.description, "Cache Write")
}

// fmRules classifies line-items of the foundation-model catalog: batch
// first, then explicit cache markers, then input/output. Batch items with
// neither an input nor an output marker are swallowed whole, so a combined
// batch-and-cache marker never reaches the cache rules.
var fmRules = []classifierRule{
	{match: func(i lineItem) bool { return fmBatch(i) && fmInput(i) }, class: classBatchInput},
	{match: func(i lineItem) bool { return fmBatch(i) && fmOutput(i) }, class: classBatchOutput},
	{match: fmBatch, class: classNone},
	{match: fmCacheRead, class: classCacheRead},
	{match: fmCacheWrite, class: classCacheWrite},
	{match: fmInput, class: classInput},
	{match: fmOutput, class: classOutput},
}

// classify runs the rule table over one line-item. Items matching no rule
// map to classNone and are ignored by the caller.
func classify(rules []classifierRule, item lineItem) priceClass {
	for _, rule := range rules {
		if rule.match(item) {
			return rule.class
		}
	}
	return classNone
}
