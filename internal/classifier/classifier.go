package classifier

import (
	"strings"
)

// Topic is the welfare-scheme area a prompt is about
type Topic string

const (
	TopicFarmer      Topic = "farmer"
	TopicScholarship Topic = "scholarship"
	TopicHealth      Topic = "health"
	TopicGeneral     Topic = "general"
)

// Rule maps a set of keywords onto a topic
type Rule struct {
	Topic    Topic
	Keywords []string
}

// Result contains the classification result
type Result struct {
	Topic   Topic  `json:"topic"`
	Keyword string `json:"keyword,omitempty"` // the keyword that matched, empty for TopicGeneral
}

// DefaultRules are evaluated in order; the first rule with a matching keyword wins.
var DefaultRules = []Rule{
	{Topic: TopicFarmer, Keywords: []string{"kisan", "farmer"}},
	{Topic: TopicScholarship, Keywords: []string{"scholarship", "student"}},
	{Topic: TopicHealth, Keywords: []string{"ayushman", "health"}},
}

// Classifier performs ordered keyword matching on prompts
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over DefaultRules
func NewClassifier() *Classifier {
	return NewWithRules(DefaultRules)
}

// NewWithRules creates a classifier over the given rules. Keywords are
// lower-cased once here so Classify only lower-cases the prompt.
func NewWithRules(rules []Rule) *Classifier {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		normalized = append(normalized, Rule{Topic: r.Topic, Keywords: kw})
	}
	return &Classifier{rules: normalized}
}

// Classify returns the first topic whose keywords appear as a substring of
// the lower-cased prompt, or TopicGeneral.
func (c *Classifier) Classify(prompt string) Result {
	lower := strings.ToLower(prompt)

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return Result{Topic: rule.Topic, Keyword: kw}
			}
		}
	}

	return Result{Topic: TopicGeneral}
}

// Rules returns a copy of the classifier's rule table
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
