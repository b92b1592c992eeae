package lexicon

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML lexicon overlay and merges it onto the defaults.
// List entries are added to the built-in lists; abbreviation and synonym
// entries replace built-in entries with the same key.
func LoadFile(path string) (*Lexicon, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse merges a YAML lexicon overlay onto the defaults.
func Parse(raw []byte) (*Lexicon, error) {
	var overlay Data
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	return New(Merge(DefaultData(), overlay)), nil
}

// Merge returns base with overlay applied on top of it.
func Merge(base, overlay Data) Data {
	merged := Data{
		StopWords:     append(append([]string(nil), base.StopWords...), overlay.StopWords...),
		Abbreviations: make(map[string]string, len(base.Abbreviations)+len(overlay.Abbreviations)),
		Synonyms:      make(map[string][]string, len(base.Synonyms)+len(overlay.Synonyms)),
		STEM:          mergeSubject(base.STEM, overlay.STEM),
		SocialScience: mergeSubject(base.SocialScience, overlay.SocialScience),
		IntroCues:     append(append([]string(nil), base.IntroCues...), overlay.IntroCues...),
	}
	for short, full := range base.Abbreviations {
		merged.Abbreviations[short] = full
	}
	for short, full := range overlay.Abbreviations {
		merged.Abbreviations[short] = full
	}
	for word, expansions := range base.Synonyms {
		merged.Synonyms[word] = expansions
	}
	for word, expansions := range overlay.Synonyms {
		merged.Synonyms[word] = expansions
	}
	return merged
}

func mergeSubject(base, overlay SubjectData) SubjectData {
	return SubjectData{
		DepartmentCodes: append(append([]string(nil), base.DepartmentCodes...), overlay.DepartmentCodes...),
		DepartmentNames: append(append([]string(nil), base.DepartmentNames...), overlay.DepartmentNames...),
		Keywords:        append(append([]string(nil), base.Keywords...), overlay.Keywords...),
		QueryCues:       append(append([]string(nil), base.QueryCues...), overlay.QueryCues...),
		Indicators:      append(append([]string(nil), base.Indicators...), overlay.Indicators...),
	}
}
