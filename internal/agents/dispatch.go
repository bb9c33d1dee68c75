package agents

import "strings"

// DefaultToolKeywords route a question to the tool-augmented path when any appears in it.
var DefaultToolKeywords = []string{
	"search", "find", "look up", "lookup", "latest", "news",
	"google", "youtube", "github", "video", "current", "trending",
}

// Dispatcher decides between the tool path and the templated path.
type Dispatcher struct {
	keywords []string
}

func NewDispatcher(keywords []string) *Dispatcher {
	d := &Dispatcher{}
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			d.keywords = append(d.keywords, k)
		}
	}
	return d
}

// ShouldUseTools is a case-insensitive substring match against the keyword set.
func (d *Dispatcher) ShouldUseTools(question string) bool {
	q := strings.ToLower(question)
	if strings.TrimSpace(q) == "" {
		return false
	}
	for _, k := range d.keywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

var defaultDispatcher = NewDispatcher(DefaultToolKeywords)

func ShouldUseTools(question string) bool {
	return defaultDispatcher.ShouldUseTools(question)
}
