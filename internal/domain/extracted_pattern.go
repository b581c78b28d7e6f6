package domain

// ExtractedPattern is the structured payload one extraction produced from
// one source. It is stored as jsonb on staged_extraction and is the unit
// the consensus builder merges.
type ExtractedPattern struct {
	PatternName string              `json:"pattern_name"`
	Category    string              `json:"category,omitempty"`
	Difficulty  string              `json:"difficulty,omitempty"`
	WaterType   string              `json:"water_type,omitempty"`
	Description string              `json:"description,omitempty"`
	Materials   []ExtractedMaterial `json:"materials,omitempty"`
	Steps       []ExtractedStep     `json:"steps,omitempty"`
	Resources   []ExtractedResource `json:"resources,omitempty"`
	Variations  []string            `json:"variations,omitempty"`
}

type ExtractedMaterial struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	Size     string `json:"size,omitempty"`
	Required bool   `json:"required"`
}

type ExtractedStep struct {
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ExtractedResource struct {
	URL   string `json:"url"`
	Kind  string `json:"kind,omitempty"`
	Title string `json:"title,omitempty"`
}
