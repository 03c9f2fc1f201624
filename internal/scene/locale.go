package scene

import (
	"encoding/json"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// FallbackLocale is used when a requested locale has no string.
const FallbackLocale = "en"

// Text is a string keyed by locale tag. A plain string in a scene file is read as English.
type Text map[string]string

// Resolve picks the string for locale: the exact tag, then its base language,
// then English, then the first locale alphabetically.
func (t Text) Resolve(locale string) string {
	if len(t) == 0 {
		return ""
	}
	if v := t[locale]; v != "" {
		return v
	}
	if tag, err := language.Parse(locale); err == nil {
		if v := t[tag.String()]; v != "" {
			return v
		}
		if base, conf := tag.Base(); conf != language.No {
			if v := t[base.String()]; v != "" {
				return v
			}
		}
	}
	if v := t[FallbackLocale]; v != "" {
		return v
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return t[keys[0]]
}

func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text{FallbackLocale: s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*t = Text(m)
	return nil
}

func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = Text{FallbackLocale: node.Value}
		return nil
	}
	var m map[string]string
	if err := node.Decode(&m); err != nil {
		return err
	}
	*t = Text(m)
	return nil
}
