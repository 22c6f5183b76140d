package figma

import (
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxDepth bounds how deep Summarize descends below a section root.
const DefaultMaxDepth = 7

// Summary is the pruned shape of a node sent to the model.
type Summary struct {
	Name               string     `json:"name"`
	Type               string     `json:"type"`
	Characters         *string    `json:"characters,omitempty"`
	IsImagePlaceholder bool       `json:"isImagePlaceholder,omitempty"`
	Children           []*Summary `json:"children,omitempty"`
}

// Summarize returns a pruned copy of node, or nil when the node is nil,
// invisible, or deeper than maxDepth.
func Summarize(node *Node, depth, maxDepth int) *Summary {
	if node == nil || depth > maxDepth || !node.IsVisible() {
		return nil
	}
	s := &Summary{Name: node.Name, Type: node.Type}
	if s.Name == "" {
		s.Name = "Untitled"
	}
	if node.Type == TypeText {
		chars := node.Characters
		s.Characters = &chars
	}
	s.IsImagePlaceholder = node.HasImageFill()
	for _, c := range node.Children {
		if cs := Summarize(c, depth+1, maxDepth); cs != nil {
			s.Children = append(s.Children, cs)
		}
	}
	return s
}

// SectionSummary pairs a section name with its pruned structure.
type SectionSummary struct {
	Name      string   `json:"name"`
	Structure *Summary `json:"structure"`
}

// Summarizer memoizes section summaries by node id. The plan prompt is
// built from every section and each schema prompt looks its own section up
// again, so the second lookup is served from the cache.
type Summarizer struct {
	MaxDepth int
	cache    *lru.Cache[string, *Summary]

	hits, misses atomic.Int64
}

func NewSummarizer(maxDepth int) *Summarizer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	c, _ := lru.New[string, *Summary](1024)
	return &Summarizer{MaxDepth: maxDepth, cache: c}
}

// Section summarizes one section root. Nodes without an id are not cached.
func (s *Summarizer) Section(sec Section) *Summary {
	if sec.Node == nil || sec.Node.ID == "" || s.cache == nil {
		return Summarize(sec.Node, 0, s.MaxDepth)
	}
	key := sec.Node.ID + "@" + strconv.Itoa(s.MaxDepth)
	if v, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return v
	}
	s.misses.Add(1)
	v := Summarize(sec.Node, 0, s.MaxDepth)
	s.cache.Add(key, v)
	return v
}

// Stats reports cache hits and misses since creation.
func (s *Summarizer) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

// Len is the number of cached section roots.
func (s *Summarizer) Len() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

// Sections summarizes every section, keeping sections whose root was pruned
// with a nil structure so the model still sees the name.
func (s *Summarizer) Sections(secs []Section) []SectionSummary {
	out := make([]SectionSummary, 0, len(secs))
	for _, sec := range secs {
		out = append(out, SectionSummary{Name: sec.Name, Structure: s.Section(sec)})
	}
	return out
}
