package model

// Milestone is one node of a learning roadmap.
type Milestone struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Duration      string   `json:"duration"`
	Prerequisites []string `json:"prerequisites"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type RoadmapNode struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Position    Position `json:"position"`
}

type RoadmapEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type RoadmapGraph struct {
	Nodes []RoadmapNode `json:"nodes"`
	Edges []RoadmapEdge `json:"edges"`
}

// DefaultMilestones is the roadmap shown when generation fails.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{
			ID:            "basics",
			Title:         "Fundamentals",
			Description:   "Core concepts and basics",
			Duration:      "2-3 weeks",
			Prerequisites: []string{},
		},
		{
			ID:            "intermediate",
			Title:         "Intermediate Concepts",
			Description:   "Building on the basics",
			Duration:      "3-4 weeks",
			Prerequisites: []string{"basics"},
		},
		{
			ID:            "advanced",
			Title:         "Advanced Topics",
			Description:   "Advanced concepts and best practices",
			Duration:      "4-6 weeks",
			Prerequisites: []string{"intermediate"},
		},
	}
}
