package figma

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func chain(depth int) *Node {
	root := &Node{ID: "0", Name: "L0", Type: TypeFrame}
	cur := root
	for i := 1; i <= depth; i++ {
		n := &Node{Name: "L", Type: TypeGroup}
		cur.Children = []*Node{n}
		cur = n
	}
	return root
}

func summaryDepth(s *Summary) int {
	if s == nil {
		return -1
	}
	d := 0
	for _, c := range s.Children {
		if cd := summaryDepth(c) + 1; cd > d {
			d = cd
		}
	}
	return d
}

func TestSummarizeDepthBound(t *testing.T) {
	s := Summarize(chain(20), 0, 7)
	require.NotNil(t, s)
	assert.Equal(t, 7, summaryDepth(s))

	assert.Nil(t, Summarize(chain(3), 8, 7))
}

func TestSummarizePrunesInvisible(t *testing.T) {
	root := &Node{Name: "Hero", Type: TypeFrame, Children: []*Node{
		{Name: "Hidden", Type: TypeText, Characters: "secret", Visible: boolPtr(false)},
		{Name: "Shown", Type: TypeText, Characters: "hello", Visible: boolPtr(true)},
	}}
	s := Summarize(root, 0, DefaultMaxDepth)
	require.Len(t, s.Children, 1)
	assert.Equal(t, "Shown", s.Children[0].Name)

	assert.Nil(t, Summarize(&Node{Name: "x", Visible: boolPtr(false)}, 0, 7))
}

func TestSummarizeShape(t *testing.T) {
	root := &Node{Name: "Hero", Type: TypeFrame, Fills: []Paint{{Type: "SOLID"}}, Children: []*Node{
		{Name: "Heading", Type: TypeText, Characters: "Welcome"},
		{Name: "Photo", Type: TypeRectangle, Fills: []Paint{{Type: "SOLID"}, {Type: FillImage}}},
		{Type: TypeVector, Characters: "ignored"},
	}}
	got, err := json.Marshal(Summarize(root, 0, DefaultMaxDepth))
	require.NoError(t, err)

	var decoded, want any
	require.NoError(t, json.Unmarshal(got, &decoded))
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Hero", "type": "FRAME",
		"children": [
			{"name": "Heading", "type": "TEXT", "characters": "Welcome"},
			{"name": "Photo", "type": "RECTANGLE", "isImagePlaceholder": true},
			{"name": "Untitled", "type": "VECTOR"}
		]
	}`), &want))
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeLeafHasNoChildrenKey(t *testing.T) {
	root := &Node{Name: "Wrap", Type: TypeFrame, Children: []*Node{
		{Name: "gone", Type: TypeGroup, Visible: boolPtr(false)},
	}}
	got, err := json.Marshal(Summarize(root, 0, 7))
	require.NoError(t, err)
	assert.NotContains(t, string(got), "children")
}

func randomTree(r *rand.Rand, depth int) *Node {
	n := &Node{Name: "n", Type: TypeGroup}
	if r.Intn(4) == 0 {
		n.Visible = boolPtr(false)
	}
	if depth < 12 {
		for i := 0; i < r.Intn(4); i++ {
			n.Children = append(n.Children, randomTree(r, depth+1))
		}
	}
	return n
}

func checkNoHidden(t *testing.T, s *Summary, src *Node, depth, maxDepth int) {
	t.Helper()
	require.LessOrEqual(t, depth, maxDepth)
	require.True(t, src.IsVisible())
	if s.Children != nil {
		require.NotEmpty(t, s.Children)
	}
	// Surviving children keep source order, so walk both lists together.
	j := 0
	for _, c := range src.Children {
		if Summarize(c, depth+1, maxDepth) == nil {
			continue
		}
		checkNoHidden(t, s.Children[j], c, depth+1, maxDepth)
		j++
	}
	require.Equal(t, len(s.Children), j)
}

func TestSummarizeRandomTrees(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		src := randomTree(r, 0)
		maxDepth := r.Intn(8)
		s := Summarize(src, 0, maxDepth)
		if s == nil {
			assert.False(t, src.IsVisible())
			continue
		}
		assert.LessOrEqual(t, summaryDepth(s), maxDepth)
		checkNoHidden(t, s, src, 0, maxDepth)
	}
}

func TestSummarizerCaches(t *testing.T) {
	sec := Section{Name: "Hero", Node: &Node{ID: "1:2", Name: "Hero", Type: TypeFrame}}
	s := NewSummarizer(0)
	first := s.Section(sec)
	sec.Node.Name = "Changed"
	assert.Same(t, first, s.Section(sec))
	assert.Equal(t, DefaultMaxDepth, s.MaxDepth)
	hits, misses := s.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1, s.Len())

	all := s.Sections([]Section{sec, {Name: "Hidden", Node: &Node{Visible: boolPtr(false)}}})
	require.Len(t, all, 2)
	assert.Nil(t, all[1].Structure)
}
