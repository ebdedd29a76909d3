package a2ui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/professor/internal/models"
)

func TestVariant(t *testing.T) {
	tests := map[string]string{
		models.ActionAdvance:        "primary",
		models.ActionExtend:         "primary",
		models.ActionDeepDive:       "secondary",
		models.ActionConceptMap:     "secondary",
		models.ActionQuizMe:         "outline",
		models.ActionShowExample:    "outline",
		models.ActionReturnToMain:   "ghost",
		models.ActionRegenerate:     "danger",
		models.ActionShowReferences: "secondary",
		"unknown":                   "secondary",
	}
	for action, want := range tests {
		assert.Equal(t, want, Variant(action), action)
	}
}

func TestFromPayload_DefaultSlide(t *testing.T) {
	p := models.SlidePayload{
		Type:      "render_slide",
		SlideID:   "s-1",
		SessionID: "abc",
		Layout:    models.LayoutDefault,
		Content:   models.SlideContent{Title: "Ownership", Text: "Every value has an owner."},
		InteractiveControls: []models.InteractiveControl{
			{Label: "Next: Borrowing", Action: models.ActionAdvance},
			{Label: "Deep Dive: owner", Action: models.ActionDeepDive, Params: map[string]any{"concept": "owner"}},
		},
		SlideIndex:  1,
		TotalSlides: 5,
	}

	msg := FromPayload(p)

	assert.Equal(t, "render", msg.Type)
	assert.Equal(t, "vertical", msg.Root.Layout)
	require.Len(t, msg.Root.Children, 3)
	assert.Equal(t, Text{Type: "text", Content: "Ownership", Variant: "h2"}, msg.Root.Children[0])
	assert.Equal(t, Markdown{Type: "markdown", Content: "Every value has an owner."}, msg.Root.Children[1])

	bar, ok := msg.Root.Children[2].(Container)
	require.True(t, ok)
	assert.Equal(t, "horizontal", bar.Layout)
	require.Len(t, bar.Children, 2)
	next := bar.Children[0].(Button)
	assert.Equal(t, "primary", next.Variant)
	assert.Equal(t, map[string]any{}, next.Action.Parameters)
	dive := bar.Children[1].(Button)
	assert.Equal(t, "deep_dive", dive.Action.Name)
	assert.Equal(t, "owner", dive.Action.Parameters["concept"])

	assert.Equal(t, "abc", msg.Meta["session_id"])
	assert.Equal(t, 1, msg.Meta["slide_index"])
	assert.Equal(t, 5, msg.Meta["total_slides"])
	assert.Equal(t, "s-1", msg.Meta["slide_id"])
}

func TestFromPayload_ConceptMap(t *testing.T) {
	msg := FromPayload(models.SlidePayload{
		Layout:  models.LayoutConceptMap,
		Content: models.SlideContent{Title: "Map", Text: "Relations", DiagramCode: `{"root": "Go"}`},
	})

	require.Len(t, msg.Root.Children, 3)
	assert.Equal(t, ConceptMap{Type: "concept_map", JSONData: `{"root": "Go"}`}, msg.Root.Children[1])
	assert.Equal(t, Markdown{Type: "markdown", Content: "Relations"}, msg.Root.Children[2])

	msg = FromPayload(models.SlidePayload{
		Layout:  models.LayoutConceptMap,
		Content: models.SlideContent{Title: "Map", DiagramCode: "graph TD; A-->B"},
	})
	require.Len(t, msg.Root.Children, 2)
	assert.Equal(t, ConceptMap{Type: "concept_map", MermaidCode: "graph TD; A-->B"}, msg.Root.Children[1])
}

func TestFromPayload_ExampleWithCode(t *testing.T) {
	msg := FromPayload(models.SlidePayload{
		Layout:  models.LayoutExample,
		Content: models.SlideContent{Title: "Example", Text: "Run it", DiagramCode: "console.log(1)"},
	})

	require.Len(t, msg.Root.Children, 3)
	assert.Equal(t, CodeExecution{Type: "code_execution", Code: "console.log(1)", Language: "javascript"}, msg.Root.Children[1])
}

func TestFromPayload_DiagramFallsBackToCode(t *testing.T) {
	msg := FromPayload(models.SlidePayload{
		Layout:  models.LayoutDeepDive,
		Content: models.SlideContent{Title: "T", Text: "x", DiagramCode: "a -> b"},
	})

	require.Len(t, msg.Root.Children, 3)
	assert.Equal(t, Code{Type: "code", Code: "a -> b", Language: "text", ShowLineNumbers: true}, msg.Root.Children[2])
}

func TestFromPayload_JSONShape(t *testing.T) {
	msg := FromPayload(models.SlidePayload{
		SessionID:           "abc",
		Content:             models.SlideContent{Title: "T", Text: "x"},
		InteractiveControls: []models.InteractiveControl{{Label: "Regenerate", Action: models.ActionRegenerate}},
	})

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded struct {
		Type string `json:"type"`
		Root struct {
			Type     string `json:"type"`
			Children []struct {
				Type     string `json:"type"`
				Children []struct {
					Type    string `json:"type"`
					Variant string `json:"variant"`
					Action  struct {
						Type string `json:"type"`
						Name string `json:"name"`
					} `json:"action"`
				} `json:"children"`
			} `json:"children"`
		} `json:"root"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "render", decoded.Type)
	assert.Equal(t, "container", decoded.Root.Type)
	require.Len(t, decoded.Root.Children, 3)
	assert.Equal(t, "text", decoded.Root.Children[0].Type)
	assert.Equal(t, "markdown", decoded.Root.Children[1].Type)
	btn := decoded.Root.Children[2].Children[0]
	assert.Equal(t, "button", btn.Type)
	assert.Equal(t, "danger", btn.Variant)
	assert.Equal(t, "action", btn.Action.Type)
	assert.Equal(t, "regenerate_slide", btn.Action.Name)
}
