package answer

// Topic maps question keywords to a canned fallback answer. Topics are
// checked in order; the first keyword hit wins.
type Topic struct {
	Name     string
	Keywords []string
	Template string
}

var genericTopic = Topic{
	Name: "general",
	Template: "I found content related to your question in the uploaded documents, " +
		"but detailed answer generation is currently unavailable. " +
		"You can ask about equipment, heating and temperatures, processes and procedures, " +
		"safety, quality, or general company information, or review the listed documents directly.",
}

// DefaultTopics covers the question categories seen in a manufacturing
// document corpus. Callers can supply their own table for other domains.
func DefaultTopics() []Topic {
	return []Topic{
		{
			Name:     "equipment",
			Keywords: []string{"hammer", "anvil", "press", "machine", "equipment", "tool"},
			Template: "The uploaded documents contain equipment information relevant to your question. " +
				"Check the equipment specifications and operating instructions in the documents listed below.",
		},
		{
			Name:     "heating",
			Keywords: []string{"heat", "temperature", "furnace", "forge", "quench"},
			Template: "The uploaded documents describe heating and temperature procedures related to your question. " +
				"See the process temperature details in the documents listed below.",
		},
		{
			Name:     "process",
			Keywords: []string{"process", "procedure", "step", "forging", "production", "workflow"},
			Template: "The uploaded documents include process and procedure descriptions relevant to your question. " +
				"The step-by-step details are in the documents listed below.",
		},
		{
			Name:     "safety",
			Keywords: []string{"safety", "protective", "hazard", "accident", "ppe"},
			Template: "The uploaded documents contain safety guidance related to your question. " +
				"Review the safety procedures in the documents listed below before operating any equipment.",
		},
		{
			Name:     "quality",
			Keywords: []string{"quality", "inspection", "defect", "tolerance", "standard"},
			Template: "The uploaded documents include quality and inspection information relevant to your question. " +
				"See the quality criteria in the documents listed below.",
		},
		{
			Name:     "company",
			Keywords: []string{"company", "history", "founded", "about", "who"},
			Template: "The uploaded documents contain general company information relevant to your question. " +
				"Background details are in the documents listed below.",
		},
	}
}
