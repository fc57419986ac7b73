package smali

import (
	"fmt"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPattern matches a string constant load followed by an Intent extra
// accessor call. The correlation is purely textual.
const DefaultPattern = `const-string v\d+, "(?P<extra>.*?)"\s+invoke-virtual \{.*?\}, Landroid/content/Intent;->(?P<method>get[A-Za-z]+Extra|putExtra)`

const (
	extraGroup  = "extra"
	methodGroup = "method"
)

// Rule is one extraction pattern. The regex must capture the named groups
// "extra" and "method".
type Rule struct {
	Name  string `yaml:"name"`
	Regex string `yaml:"regex"`
}

// RulesConfig is the layout of a rules YAML file.
type RulesConfig struct {
	Rules []Rule `yaml:"rules"`
}

type compiledRule struct {
	name   string
	re     *regexp.Regexp
	extra  int
	method int
}

// Rules is a validated, ordered list of extraction patterns.
type Rules struct {
	rules []compiledRule
}

// DefaultRules returns the built-in Intent extra rule.
func DefaultRules() *Rules {
	r, err := compileRule(Rule{Name: "intent-extra", Regex: DefaultPattern})
	if err != nil {
		panic(err)
	}
	return &Rules{rules: []compiledRule{r}}
}

// Names returns the rule names in application order.
func (r *Rules) Names() []string {
	names := make([]string, 0, len(r.rules))
	for _, c := range r.rules {
		names = append(names, c.name)
	}
	return names
}

func (r *Rules) Len() int { return len(r.rules) }

func compileRule(rule Rule) (compiledRule, error) {
	re, err := regexp.Compile(rule.Regex)
	if err != nil {
		return compiledRule{}, err
	}
	c := compiledRule{
		name:   rule.Name,
		re:     re,
		extra:  re.SubexpIndex(extraGroup),
		method: re.SubexpIndex(methodGroup),
	}
	if c.extra < 0 || c.method < 0 {
		return compiledRule{}, fmt.Errorf("pattern must capture (?P<%s>...) and (?P<%s>...)", extraGroup, methodGroup)
	}
	return c, nil
}

// ParseRules validates the rules in data. Invalid entries are skipped with a
// warning; it is an error for none to remain.
func ParseRules(data []byte, log logrus.FieldLogger) (*Rules, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	var config RulesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse rules YAML")
	}

	rules := &Rules{}
	for _, rule := range config.Rules {
		if rule.Name == "" || rule.Regex == "" {
			continue
		}
		c, err := compileRule(rule)
		if err != nil {
			log.WithError(err).WithField("rule", rule.Name).Warn("Invalid rule")
			continue
		}
		rules.rules = append(rules.rules, c)
	}

	if len(rules.rules) == 0 {
		return nil, errors.New("no valid rules found in rules file")
	}
	log.WithField("count", len(rules.rules)).Debug("Loaded rules")
	return rules, nil
}

// LoadRules reads and validates a rules YAML file.
func LoadRules(path string, log logrus.FieldLogger) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rules file")
	}
	return ParseRules(data, log)
}
