package domain

// Service is an offering listed on the services page. Icon names a UI symbol
// resolved by the frontend.
type Service struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Icon        string   `json:"icon" yaml:"icon"`
	Features    []string `json:"features" yaml:"features"`
}

// Project is a portfolio case study. Category is free-form text.
type Project struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Category     string   `json:"category" yaml:"category"`
	Description  string   `json:"description" yaml:"description"`
	Image        string   `json:"image" yaml:"image"`
	Client       string   `json:"client" yaml:"client"`
	Year         string   `json:"year" yaml:"year"`
	Technologies []string `json:"technologies" yaml:"technologies"`
	Challenge    string   `json:"challenge" yaml:"challenge"`
	Solution     string   `json:"solution" yaml:"solution"`
	Results      []string `json:"results" yaml:"results"`
}

// Testimonial is a client quote.
type Testimonial struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Role    string `json:"role" yaml:"role"`
	Company string `json:"company" yaml:"company"`
	Content string `json:"content" yaml:"content"`
	Avatar  string `json:"avatar" yaml:"avatar"`
	Rating  int    `json:"rating" yaml:"rating"`
}

// SocialLinks holds optional profile URLs for a team member.
type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty" yaml:"twitter,omitempty"`
	GitHub   string `json:"github,omitempty" yaml:"github,omitempty"`
}

// TeamMember is a person on the about page.
type TeamMember struct {
	ID     string      `json:"id" yaml:"id"`
	Name   string      `json:"name" yaml:"name"`
	Role   string      `json:"role" yaml:"role"`
	Bio    string      `json:"bio" yaml:"bio"`
	Avatar string      `json:"avatar" yaml:"avatar"`
	Social SocialLinks `json:"social" yaml:"social"`
}

// TimelineEvent is a milestone in the agency history.
type TimelineEvent struct {
	ID          string `json:"id" yaml:"id"`
	Year        string `json:"year" yaml:"year"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}
