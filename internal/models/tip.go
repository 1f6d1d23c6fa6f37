package models

type TipRecord struct {
	ID     string   `yaml:"id" json:"id"`
	Title  string   `yaml:"title" json:"title"`
	Body   string   `yaml:"body" json:"body"`
	Phase  Phase    `yaml:"phase" json:"phase"`
	Tags   []string `yaml:"tags" json:"tags"`
	Mood   Mood     `yaml:"mood,omitempty" json:"mood,omitempty"`
	Source string   `yaml:"source,omitempty" json:"source,omitempty"`
}

func (tip TipRecord) HasTag(tag string) bool {
	for _, candidate := range tip.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

type FAQRecord struct {
	ID       string   `yaml:"id" json:"id"`
	Question string   `yaml:"question" json:"question"`
	Answer   string   `yaml:"answer" json:"answer"`
	Tags     []string `yaml:"tags" json:"tags"`
	Source   string   `yaml:"source,omitempty" json:"source,omitempty"`
}
