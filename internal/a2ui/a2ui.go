// Package a2ui renders slide payloads as A2UI render messages.
package a2ui

import (
	"strings"

	"github.com/starford/professor/internal/models"
)

// Component is any node in an A2UI tree.
type Component interface {
	componentType() string
}

// Action is triggered when a button is pressed.
type Action struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

type Text struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Variant string `json:"variant"`
}

type Markdown struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type Button struct {
	Type     string `json:"type"`
	Label    string `json:"label"`
	Action   Action `json:"action"`
	Variant  string `json:"variant"`
	Disabled bool   `json:"disabled"`
}

type Container struct {
	Type     string         `json:"type"`
	Layout   string         `json:"layout"`
	Style    map[string]any `json:"style,omitempty"`
	Children []Component    `json:"children"`
}

type Code struct {
	Type            string `json:"type"`
	Code            string `json:"code"`
	Language        string `json:"language"`
	ShowLineNumbers bool   `json:"show_line_numbers"`
}

type ConceptMap struct {
	Type        string `json:"type"`
	MermaidCode string `json:"mermaid_code,omitempty"`
	JSONData    string `json:"json_data,omitempty"`
}

type CodeExecution struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (Text) componentType() string          { return "text" }
func (Markdown) componentType() string      { return "markdown" }
func (Button) componentType() string        { return "button" }
func (Container) componentType() string     { return "container" }
func (Code) componentType() string          { return "code" }
func (ConceptMap) componentType() string    { return "concept_map" }
func (CodeExecution) componentType() string { return "code_execution" }

// Message is the root payload sent to an A2UI client.
type Message struct {
	Type string         `json:"type"`
	Root Container      `json:"root"`
	Meta map[string]any `json:"meta"`
}

// Variant maps a control action to a button style.
func Variant(action string) string {
	switch action {
	case models.ActionAdvance, models.ActionExtend:
		return "primary"
	case models.ActionDeepDive, models.ActionConceptMap:
		return "secondary"
	case models.ActionQuizMe, models.ActionShowExample:
		return "outline"
	case models.ActionReturnToMain:
		return "ghost"
	case models.ActionRegenerate:
		return "danger"
	}
	return "secondary"
}

func controls(cs []models.InteractiveControl) Container {
	buttons := make([]Component, 0, len(cs))
	for _, c := range cs {
		params := c.Params
		if params == nil {
			params = map[string]any{}
		}
		buttons = append(buttons, Button{
			Type:    "button",
			Label:   c.Label,
			Action:  Action{Type: "action", Name: c.Action, Parameters: params},
			Variant: Variant(c.Action),
		})
	}
	return Container{
		Type:     "container",
		Layout:   "horizontal",
		Style:    map[string]any{"gap": "0.5rem", "flexWrap": "wrap", "marginTop": "1rem"},
		Children: buttons,
	}
}

// FromPayload converts a slide payload into a render message. Concept map
// slides carry their diagram in a concept_map node (JSON diagrams as
// json_data, anything else as mermaid_code), example slides with
// diagram code get a code_execution node, and any other diagram code falls
// back to a plain code block.
func FromPayload(p models.SlidePayload) Message {
	children := []Component{Text{Type: "text", Content: p.Content.Title, Variant: "h2"}}

	diagram := p.Content.DiagramCode
	switch {
	case p.Layout == models.LayoutConceptMap && diagram != "":
		cm := ConceptMap{Type: "concept_map", MermaidCode: diagram}
		if strings.HasPrefix(strings.TrimSpace(diagram), "{") {
			cm = ConceptMap{Type: "concept_map", JSONData: diagram}
		}
		children = append(children, cm)
		if p.Content.Text != "" {
			children = append(children, Markdown{Type: "markdown", Content: p.Content.Text})
		}
	case p.Layout == models.LayoutExample && diagram != "":
		children = append(children, CodeExecution{Type: "code_execution", Code: diagram, Language: "javascript"})
		if p.Content.Text != "" {
			children = append(children, Markdown{Type: "markdown", Content: p.Content.Text})
		}
	default:
		children = append(children, Markdown{Type: "markdown", Content: p.Content.Text})
		if diagram != "" {
			children = append(children, Code{Type: "code", Code: diagram, Language: "text", ShowLineNumbers: true})
		}
	}

	if len(p.InteractiveControls) > 0 {
		children = append(children, controls(p.InteractiveControls))
	}

	return Message{
		Type: "render",
		Root: Container{
			Type:     "container",
			Layout:   "vertical",
			Style:    map[string]any{"gap": "1.5rem", "padding": "1rem"},
			Children: children,
		},
		Meta: map[string]any{
			"session_id":   p.SessionID,
			"slide_index":  p.SlideIndex,
			"total_slides": p.TotalSlides,
			"slide_id":     p.SlideID,
			"layout":       p.Layout,
		},
	}
}
