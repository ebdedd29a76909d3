package llm

import (
	"fmt"
	"strings"

	"github.com/starford/professor/internal/models"
)

const controlActions = `["advance_main_thread", "go_previous", "deep_dive", "clarify_slide", "regenerate_slide", "show_example", "quiz_me", "extend_lecture", "show_references", "show_concept_map"]`

const slideShape = `Return a JSON object with:
1. "content": {"title": "...", "text": "..."}
2. "controls": an array of {"label": "...", "action": "...", "params": {...}} objects.`

func bulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func covered(outline []string, currentIndex int) []string {
	end := currentIndex + 1
	if end > len(outline) {
		end = len(outline)
	}
	if end < 0 {
		end = 0
	}
	return outline[:end]
}

func outlinePrompt(topic string) string {
	return fmt.Sprintf(`Create a lecture outline for the topic: %q

Generate exactly 5 slide titles that open a coherent educational presentation.
The first slide is an introduction. Do not include a conclusion slide; the
lecture can continue.

Return ONLY a JSON array of strings, for example:
["Introduction to Topic", "Core Concept 1", "Core Concept 2", "Advanced Topic", "Practical Applications"]`, topic)
}

func extendOutlinePrompt(topic string, existing []string) string {
	return fmt.Sprintf(`Continue the lecture outline for the topic: %q

The lecture has already covered:
%s

Generate 4 MORE slide titles that go deeper: new aspects, advanced concepts,
or related topics not yet discussed. Do not include a conclusion slide.

Return ONLY a JSON array of the new titles.`, topic, bulletList(existing))
}

func slidePrompt(sc SlideContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an adaptive professor creating slide %d of %d for a lecture on %q.\n\n",
		sc.SlideIndex+1, sc.TotalSlides, sc.Topic)
	fmt.Fprintf(&b, "Current slide title: %q\n", sc.SlideTitle)
	if next := sc.NextTitle(); next != "" {
		fmt.Fprintf(&b, "Next slide will be: %s\n", next)
	} else {
		b.WriteString("This is the last prepared slide. Include a \"Continue Learning\" button (action: extend_lecture).\n")
	}
	if sc.IsFirst {
		b.WriteString("This is the FIRST slide, so no Previous button.\n")
	} else {
		b.WriteString("This is NOT the first slide, so include a Previous button (action: go_previous).\n")
	}
	b.WriteString("\nWrite 2-4 educational sentences and the controls a student would want.\n\n")
	b.WriteString(slideShape)
	fmt.Fprintf(&b, "\nValid actions: %s\n", controlActions)
	b.WriteString(`
Control rules:
- With a next slide, include "Next: <next title>" (action: advance_main_thread).
- Pick 1-2 key terms from your text for deep dives (action: deep_dive, params: {"concept": "..."}).
- Always include "Clarify This" (clarify_slide), "Regenerate" (regenerate_slide),
  "View References" (show_references) and "Concept Map" (show_concept_map).
- Optionally include "Show Example" (show_example) or "Quiz Me" (quiz_me).

Return ONLY the JSON object.`)
	return b.String()
}

func clarifyPrompt(content models.SlideContent, nextTitle string) string {
	next := "This is the final slide."
	if nextTitle != "" {
		next = "Next slide will be: " + nextTitle
	}
	return fmt.Sprintf(`Clarify and expand this educational content so it is easier to follow.

Original title: %s
Original text: %s

%s

Define jargon, break the idea into clear steps, add one analogy from the same
or a neighbouring technical field, and say how it connects to the bigger
picture. Clarify without dumbing down; no childish analogies.

%s
Title the slide "%s - Clarified". Include navigation, a deep dive, "Quiz Me"
and "Regenerate" controls as appropriate.
Return ONLY the JSON object.`, content.Title, content.Text, next, slideShape, content.Title)
}

func deepDivePrompt(topic, concept string, parent SlideContext) string {
	return fmt.Sprintf(`You are creating a deep-dive detour slide for a lecture on %q.

The student wants to learn more about: %q
They were on slide: %q

Write 3-5 sentences explaining %q in depth, titled "Deep Dive: %s".

%s
The first control MUST be {"label": "Return to: %s", "action": "return_to_main", "params": {"slide_index": %d}}.
Also offer a deeper sub-concept (deep_dive), "Show Example" and "Clarify This".
Return ONLY the JSON object.`, topic, concept, parent.SlideTitle, concept, concept,
		slideShape, parent.SlideTitle, parent.SlideIndex)
}

func examplePrompt(content models.SlideContent, sc SlideContext, exampleType string) string {
	return fmt.Sprintf(`You are creating an example for a slide in a lecture on %q.

Current slide: %q
Content: %q
Example type requested: %s

Pick the format that suits the domain:
- Language and grammar topics: markdown tables, never code.
- Data and simulations: JavaScript that assigns a Chart.js config to a
  variable named chartConfig (line, bar, pie, doughnut or scatter).
- Science with equations: LaTeX ($...$ or $$...$$) with numbered steps.
- Programming: browser-runnable JavaScript or TypeScript with comments.
- Processes and hierarchies: Mermaid with short, quoted, ASCII-only labels
  and no parentheses inside labels.
Do not use Python unless the topic is Python.

%s
Title it "Example: <descriptive title>".
The first control MUST be {"label": "Return to: %s", "action": "return_to_main", "params": {"slide_index": %d}}.
Also offer "Another Example" (show_example) and "Clarify This" (clarify_slide).
Return ONLY the JSON object.`, sc.Topic, content.Title, content.Text, exampleType,
		slideShape, content.Title, sc.SlideIndex)
}

func quizPrompt(content models.SlideContent, sc SlideContext) string {
	return fmt.Sprintf(`You are writing a quiz question for a slide in a lecture on %q.

Current slide: %q
Content: %q

Put only the question in the text, titled "Quiz: %s". Do not reveal the answer.

%s
Controls MUST be four options labelled "A) ...", "B) ...", "C) ...", "D) ..."
with action "quiz_answer" and params {"answer": "A", "correct": false, "explanation": "..."}.
Exactly ONE option has "correct": true. Finish with
{"label": "Skip Question", "action": "return_to_main", "params": {"slide_index": %d}}.
Return ONLY the JSON object.`, sc.Topic, content.Title, content.Text, content.Title,
		slideShape, sc.SlideIndex)
}

func referencesPrompt(topic string, outline []string, currentIndex int) string {
	controls := []string{
		fmt.Sprintf(`{"label": "Return to Lecture", "action": "return_to_main", "params": {"slide_index": %d}}`, currentIndex),
	}
	if currentIndex < len(outline)-1 {
		controls = append(controls, fmt.Sprintf(`{"label": "Next: %s", "action": "advance_main_thread"}`, outline[currentIndex+1]))
	} else {
		controls = append(controls, `{"label": "Extend Lecture", "action": "extend_lecture"}`)
	}

	return fmt.Sprintf(`You are creating a references slide for a lecture on %q.

Topics covered so far:
%s

List high-quality learning resources: official documentation, beginner
tutorials, in-depth articles or papers, and videos or interactive tools where
relevant. Use REAL, well-known resources with URLs that actually exist.

Return a JSON object:
{
  "content": {"title": "References & Further Reading", "text": "<markdown>"},
  "controls": [
    %s
  ]
}

Format the markdown as category headers with one link per line:
### Official Documentation
- [Resource Name](https://real-url.com) - Brief description

### Tutorials
- [Tutorial Name](https://real-url.com) - Brief description

Return ONLY the JSON object.`, topic, bulletList(covered(outline, currentIndex)), strings.Join(controls, ",\n    "))
}

func conceptMapPrompt(topic string, outline []string, currentIndex int) string {
	return fmt.Sprintf(`You are creating a concept map for a lecture on %q.

Topics covered so far:
%s

Build a JSON concept map, not Mermaid:
{"root": "<central topic>", "branches": [{"name": "...", "children": [{"name": "..."}]}]}
Use 4-8 branches with 0-4 children each and labels of 1-4 words.

%s
Title it "Concept Map: %s" and make the text ONLY a conceptmap code block
containing the JSON. Controls: "Return to Lecture" (return_to_main, params
{"slide_index": %d}), 2-3 deep dives for the key concepts, and
"View References" (show_references).
Return ONLY the JSON object.`, topic, bulletList(covered(outline, currentIndex)), slideShape, topic, currentIndex)
}

func regeneratePrompt(sc SlideContext, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are regenerating a slide for a lecture on %q.\n\n", sc.Topic)
	fmt.Fprintf(&b, "Current slide: %q (slide %d of %d)\n", sc.SlideTitle, sc.SlideIndex+1, sc.TotalSlides)
	next := sc.NextTitle()
	if next != "" {
		fmt.Fprintf(&b, "Next slide will be: %s\n", next)
	} else {
		b.WriteString("This is the final slide.\n")
	}
	if feedback != "" {
		fmt.Fprintf(&b, "\nUSER FEEDBACK: %q\nAddress this feedback in the new version.\n", feedback)
	}
	b.WriteString("\nCreate a DIFFERENT version with fresh examples, structure or emphasis.\n\n")
	b.WriteString(slideShape)
	b.WriteString("\nControls: always \"Regenerate\" (regenerate_slide) and \"Clarify This\" (clarify_slide).\n")
	if sc.SlideIndex > 0 {
		b.WriteString("Include \"Previous\" (go_previous).\n")
	}
	if next != "" {
		fmt.Fprintf(&b, "Include \"Next: %s\" (advance_main_thread).\n", next)
	} else {
		b.WriteString("Include \"Continue Learning\" (extend_lecture).\n")
	}
	b.WriteString("Optionally 1-2 deep dives (deep_dive, params {\"concept\": \"...\"}).\n\nReturn ONLY the JSON object.")
	return b.String()
}

func retryPrompt(original string, parseErr error, failed string) string {
	if len(failed) > 500 {
		failed = failed[:500]
	}
	return fmt.Sprintf(`%s

IMPORTANT: Your previous response failed to parse.
Error: %s

Your previous response was:
%s

Return ONLY valid JSON. Watch for special characters in Mermaid labels,
missing quotes, trailing commas and invalid escape sequences.`, original, parseErr, failed)
}
