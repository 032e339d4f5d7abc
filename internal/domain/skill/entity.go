package skill

type Skill struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// IDs returns the ids of skills in their given order.
func IDs(skills []Skill) []int64 {
	out := make([]int64, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.ID)
	}
	return out
}

// Categories returns the distinct non-empty categories in first-seen order.
func Categories(skills []Skill) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0)
	for _, s := range skills {
		if s.Category == "" {
			continue
		}
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		out = append(out, s.Category)
	}
	return out
}

func Contains(skills []Skill, id int64) bool {
	for _, s := range skills {
		if s.ID == id {
			return true
		}
	}
	return false
}
