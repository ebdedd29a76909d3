package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/professor/internal/models"
)

// cleanJSON strips a surrounding markdown code fence, if any.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i != -1 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimRight(s, " \t\r\n"), "```")
	}
	return strings.TrimSpace(s)
}

type slideResponse struct {
	Content  *models.SlideContent        `json:"content"`
	Controls []models.InteractiveControl `json:"controls"`
}

func parseSlide(raw string) (models.Slide, error) {
	var r slideResponse
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &r); err != nil {
		return models.Slide{}, fmt.Errorf("llm: decode slide: %w", err)
	}
	if r.Content == nil {
		return models.Slide{}, errors.New("llm: slide response has no content")
	}
	if r.Controls == nil {
		return models.Slide{}, errors.New("llm: slide response has no controls")
	}
	return models.Slide{Content: *r.Content, Controls: r.Controls}, nil
}

func parseTitles(raw string) ([]string, error) {
	var titles []string
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &titles); err != nil {
		return nil, fmt.Errorf("llm: decode titles: %w", err)
	}
	if len(titles) == 0 {
		return nil, errors.New("llm: model returned no titles")
	}
	return titles, nil
}
