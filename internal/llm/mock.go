package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starford/professor/internal/models"
)

// Mock is a deterministic Generator used in tests and when no API key is
// configured.
type Mock struct{}

var _ Generator = Mock{}

func lastWord(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return "concept"
	}
	return words[len(words)-1]
}

func returnTo(label string, index int) models.InteractiveControl {
	return models.InteractiveControl{
		Label:  label,
		Action: models.ActionReturnToMain,
		Params: map[string]any{"slide_index": index},
	}
}

func (Mock) GenerateOutline(_ context.Context, topic string) ([]string, error) {
	return []string{
		"Introduction to " + topic,
		"Core Concepts of " + topic,
		"Key Principles",
		"Practical Applications",
		"Common Challenges",
	}, nil
}

func (Mock) ExtendOutline(_ context.Context, _ string, existing []string) ([]string, error) {
	n := len(existing)/5 + 1
	return []string{
		fmt.Sprintf("Advanced Topic %d.1", n),
		fmt.Sprintf("Advanced Topic %d.2", n),
		fmt.Sprintf("Real-World Examples %d", n),
		fmt.Sprintf("Expert Insights %d", n),
	}, nil
}

func (Mock) GenerateSlide(_ context.Context, sc SlideContext) (models.Slide, error) {
	concept := lastWord(sc.SlideTitle)

	var controls []models.InteractiveControl
	if next := sc.NextTitle(); !sc.IsLast && next != "" {
		controls = append(controls, models.InteractiveControl{Label: "Next: " + next, Action: models.ActionAdvance})
	} else {
		controls = append(controls, models.InteractiveControl{Label: "Continue Learning", Action: models.ActionExtend})
	}
	if !sc.IsFirst {
		controls = append(controls, models.InteractiveControl{Label: "Previous", Action: models.ActionPrevious})
	}
	controls = append(controls,
		models.InteractiveControl{
			Label:  "Deep Dive: " + concept,
			Action: models.ActionDeepDive,
			Params: map[string]any{"concept": strings.ToLower(concept)},
		},
		models.InteractiveControl{Label: "Clarify This", Action: models.ActionClarify},
		models.InteractiveControl{Label: "Regenerate", Action: models.ActionRegenerate},
	)
	if sc.SlideIndex != 0 && sc.SlideIndex != sc.TotalSlides-1 {
		controls = append(controls, models.InteractiveControl{Label: "Quiz Me", Action: models.ActionQuizMe})
	}
	controls = append(controls,
		models.InteractiveControl{Label: "View References", Action: models.ActionShowReferences},
		models.InteractiveControl{Label: "Concept Map", Action: models.ActionConceptMap},
	)

	return models.Slide{
		Content: models.SlideContent{
			Title: sc.SlideTitle,
			Text: fmt.Sprintf("This is the content for slide %d about %s. Here we explore %s in detail, covering key aspects of %s.",
				sc.SlideIndex+1, sc.Topic, strings.ToLower(sc.SlideTitle), concept),
		},
		Controls: controls,
	}, nil
}

func (Mock) ClarifySlide(_ context.Context, content models.SlideContent, sc SlideContext) (models.Slide, error) {
	var controls []models.InteractiveControl
	if next := sc.NextTitle(); !sc.IsLast && next != "" {
		controls = append(controls, models.InteractiveControl{Label: "Next: " + next, Action: models.ActionAdvance})
	}
	if !sc.IsFirst {
		controls = append(controls, models.InteractiveControl{Label: "Previous", Action: models.ActionPrevious})
	}
	controls = append(controls,
		models.InteractiveControl{Label: "Quiz Me", Action: models.ActionQuizMe},
		models.InteractiveControl{Label: "Regenerate", Action: models.ActionRegenerate},
	)

	text := content.Text
	if r := []rune(text); len(r) > 100 {
		text = string(r[:100])
	}
	return models.Slide{
		Content: models.SlideContent{
			Title: content.Title + " - Clarified",
			Text:  "Clarified version: " + text + "... Here's a clearer explanation with defined terms and real-world context.",
		},
		Controls: controls,
	}, nil
}

func (Mock) DeepDive(_ context.Context, topic, concept string, parent SlideContext) (models.Slide, error) {
	title := concept
	if r := []rune(concept); len(r) > 0 {
		title = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return models.Slide{
		Content: models.SlideContent{
			Title: "Deep Dive: " + title,
			Text: fmt.Sprintf("Let's explore %s in more detail. This concept is fundamental to understanding %s. It relates to %s by providing deeper insight.",
				concept, topic, parent.SlideTitle),
		},
		Controls: []models.InteractiveControl{
			returnTo("Return to: "+parent.SlideTitle, parent.SlideIndex),
			{Label: "Deep Dive: Sub-concept", Action: models.ActionDeepDive, Params: map[string]any{"concept": "sub-" + concept}},
			{Label: "Clarify This", Action: models.ActionClarify},
		},
	}, nil
}

func (Mock) GenerateExample(_ context.Context, content models.SlideContent, sc SlideContext, _ string) (models.Slide, error) {
	return models.Slide{
		Content: models.SlideContent{
			Title: "Example: " + content.Title,
			Text: "Here's a practical example of " + strings.ToLower(content.Title) + ":\n\n" +
				"```javascript\n// Example code demonstrating the concept\nfunction example() {}\n```\n\n" +
				"This example shows how the concept works in practice.",
		},
		Controls: []models.InteractiveControl{
			returnTo("Return to: "+content.Title, sc.SlideIndex),
			{Label: "Another Example", Action: models.ActionShowExample},
			{Label: "Clarify This", Action: models.ActionClarify},
		},
	}, nil
}

func quizOption(label, answer string, correct bool, explanation string) models.InteractiveControl {
	return models.InteractiveControl{
		Label:  label,
		Action: models.ActionQuizAnswer,
		Params: map[string]any{"answer": answer, "correct": correct, "explanation": explanation},
	}
}

func (Mock) GenerateQuiz(_ context.Context, content models.SlideContent, sc SlideContext) (models.Slide, error) {
	return models.Slide{
		Content: models.SlideContent{
			Title: "Quiz: " + content.Title,
			Text:  "What is the main purpose of " + strings.ToLower(content.Title) + "?",
		},
		Controls: []models.InteractiveControl{
			quizOption("A) A fundamental building block", "A", false, "While related, this doesn't capture the main purpose."),
			quizOption("B) The core mechanism for the concept", "B", true, "This directly addresses the core concept and its purpose."),
			quizOption("C) An optional enhancement", "C", false, "This is not optional; it's fundamental to the concept."),
			quizOption("D) A debugging tool", "D", false, "This is unrelated to the main purpose of the concept."),
			returnTo("Skip Question", sc.SlideIndex),
		},
	}, nil
}

func (Mock) GenerateReferences(_ context.Context, topic string, outline []string, currentIndex int) (models.Slide, error) {
	controls := []models.InteractiveControl{returnTo("Return to Lecture", currentIndex)}
	if currentIndex < len(outline)-1 {
		controls = append(controls, models.InteractiveControl{Label: "Next: " + outline[currentIndex+1], Action: models.ActionAdvance})
	} else {
		controls = append(controls, models.InteractiveControl{Label: "Extend Lecture", Action: models.ActionExtend})
	}

	text := fmt.Sprintf(`### Official Documentation
- [Wikipedia: %[1]s](https://en.wikipedia.org/wiki/%[2]s) - Encyclopedia overview

### Tutorials
- [Learn %[1]s](https://example.com/learn) - Beginner-friendly tutorial

### Advanced Resources
- [Deep Dive into %[1]s](https://example.com/advanced) - For advanced learners

### Video Resources
- [Introduction to %[1]s](https://youtube.com/watch) - Video explanation`, topic, strings.ReplaceAll(topic, " ", "_"))

	return models.Slide{
		Content:  models.SlideContent{Title: "References & Further Reading", Text: text},
		Controls: controls,
	}, nil
}

type conceptNode struct {
	Name     string        `json:"name"`
	Children []conceptNode `json:"children,omitempty"`
}

type conceptMap struct {
	Root     string        `json:"root"`
	Branches []conceptNode `json:"branches"`
}

func (Mock) GenerateConceptMap(_ context.Context, topic string, outline []string, currentIndex int) (models.Slide, error) {
	first := "Concepts"
	if seen := covered(outline, currentIndex); len(seen) > 0 {
		first = lastWord(seen[0])
	}

	m := conceptMap{
		Root: topic,
		Branches: []conceptNode{
			{Name: "Core Concepts", Children: []conceptNode{{Name: "Fundamentals"}, {Name: "Principles"}}},
			{Name: "Applications", Children: []conceptNode{{Name: "Practice"}, {Name: "Examples"}}},
			{Name: "Advanced", Children: []conceptNode{{Name: "Deep Topics"}, {Name: "Extensions"}}},
		},
	}
	diagram, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return models.Slide{}, err
	}

	return models.Slide{
		Content: models.SlideContent{
			Title:       "Concept Map: " + topic,
			Text:        "Explore the relationships between key concepts in this topic.",
			DiagramCode: string(diagram),
		},
		Controls: []models.InteractiveControl{
			returnTo("Return to Lecture", currentIndex),
			{Label: "Deep Dive: " + first, Action: models.ActionDeepDive, Params: map[string]any{"concept": strings.ToLower(first)}},
			{Label: "View References", Action: models.ActionShowReferences},
		},
	}, nil
}

func (Mock) RegenerateSlide(_ context.Context, sc SlideContext, feedback string) (models.Slide, error) {
	controls := []models.InteractiveControl{
		{Label: "Regenerate", Action: models.ActionRegenerate},
		{Label: "Clarify This", Action: models.ActionClarify},
	}
	if sc.SlideIndex > 0 {
		controls = append(controls, models.InteractiveControl{Label: "Previous", Action: models.ActionPrevious})
	}
	if next := sc.NextTitle(); next != "" {
		controls = append(controls, models.InteractiveControl{Label: "Next: " + next, Action: models.ActionAdvance})
	}

	note := " (Regenerated)"
	if feedback != "" {
		note = " (Regenerated with feedback: " + feedback + ")"
	}
	return models.Slide{
		Content: models.SlideContent{
			Title: sc.SlideTitle + note,
			Text: "This is a regenerated version of the slide about " + sc.SlideTitle +
				". The content has been revised to provide a fresh perspective on the topic.",
		},
		Controls: controls,
	}, nil
}
