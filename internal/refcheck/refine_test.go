package refcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChecker marks every URL containing "/ok" reachable.
type fakeChecker struct {
	calls int
}

func (f *fakeChecker) CheckAll(_ context.Context, urls []string) []Outcome {
	f.calls++
	out := make([]Outcome, len(urls))
	for i, u := range urls {
		if strings.Contains(u, "/ok") {
			out[i] = Outcome{URL: u, Reachable: true, StatusCode: 200}
		} else {
			out[i] = Outcome{URL: u, StatusCode: 404}
		}
	}
	return out
}

// refList builds a reference list with valid working links and dead broken
// ones.
func refList(valid, dead int) string {
	var b strings.Builder
	b.WriteString("### Resources\n")
	for i := range valid {
		fmt.Fprintf(&b, "- [Good %d](https://example.com/ok/%d)\n", i, i)
	}
	for i := range dead {
		fmt.Fprintf(&b, "- [Dead %d](https://example.com/dead/%d)\n", i, i)
	}
	return b.String()
}

func TestThresholds_NeedsRegeneration(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		valid, total int
		want         bool
	}{
		{valid: 2, total: 10, want: true},
		{valid: 8, total: 10, want: false},
		{valid: 2, total: 2, want: true},
		{valid: 3, total: 6, want: false},
		{valid: 3, total: 7, want: true},
		{valid: 0, total: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.valid, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, th.NeedsRegeneration(tt.valid, tt.total))
		})
	}
}

func TestValidateAndFilter_NoLinks(t *testing.T) {
	fc := &fakeChecker{}
	r := NewRefiner(fc, DefaultThresholds(), 3, nil)

	text := "# Plain\n\nNo links here."
	res := r.ValidateAndFilter(context.Background(), text)

	assert.Equal(t, Result{FilteredText: text}, res)
	assert.Zero(t, fc.calls)
}

func TestValidateAndFilter_MostlyBroken(t *testing.T) {
	r := NewRefiner(&fakeChecker{}, DefaultThresholds(), 3, nil)

	res := r.ValidateAndFilter(context.Background(), refList(2, 8))

	assert.Equal(t, 10, res.TotalLinks)
	assert.Equal(t, 2, res.ValidLinks)
	assert.True(t, res.NeedsRegeneration)
	assert.NotContains(t, res.FilteredText, "/dead/")
	assert.Contains(t, res.FilteredText, "https://example.com/ok/0")
	assert.Contains(t, res.FilteredText, "https://example.com/ok/1")
}

func TestValidateAndFilter_MostlyGood(t *testing.T) {
	r := NewRefiner(&fakeChecker{}, DefaultThresholds(), 3, nil)

	res := r.ValidateAndFilter(context.Background(), refList(8, 2))

	assert.Equal(t, 10, res.TotalLinks)
	assert.Equal(t, 8, res.ValidLinks)
	assert.False(t, res.NeedsRegeneration)
}

func TestValidateAndFilter_DuplicatesCountPerOccurrence(t *testing.T) {
	r := NewRefiner(&fakeChecker{}, DefaultThresholds(), 3, nil)

	text := "- [A](https://x.dev/ok)\n- [A again](https://x.dev/ok)\n- [B](https://x.dev/bad)"
	res := r.ValidateAndFilter(context.Background(), text)

	assert.Equal(t, 3, res.TotalLinks)
	assert.Equal(t, 2, res.ValidLinks)
	assert.Equal(t, "- [A](https://x.dev/ok)\n- [A again](https://x.dev/ok)", res.FilteredText)
}

func TestInspect_ReturnsOutcomes(t *testing.T) {
	r := NewRefiner(&fakeChecker{}, DefaultThresholds(), 3, nil)

	_, outcomes := r.Inspect(context.Background(), refList(1, 1))

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Reachable)
	assert.False(t, outcomes[1].Reachable)
}

func TestBestOf_PicksMostValid(t *testing.T) {
	r := NewRefiner(&fakeChecker{}, DefaultThresholds(), 3, nil)
	lists := []string{refList(2, 8), refList(5, 6), refList(3, 7)}

	var asked []int
	best, err := BestOf(context.Background(), r, func(s string) string { return s },
		func(_ context.Context, attempt int) (string, error) {
			asked = append(asked, attempt)
			return lists[attempt-1], nil
		})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, asked)
	assert.Equal(t, 2, best.Number)
	assert.Equal(t, 5, best.Result.ValidLinks)
	assert.True(t, best.Result.NeedsRegeneration)
}

func TestBestOf_StopsWhenGoodEnough(t *testing.T) {
	r := NewRefiner(&fakeChecker{}, DefaultThresholds(), 3, nil)

	calls := 0
	best, err := BestOf(context.Background(), r, func(s string) string { return s },
		func(_ context.Context, attempt int) (string, error) {
			calls++
			return refList(6, 1), nil
		})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, best.Number)
	assert.False(t, best.Result.NeedsRegeneration)
}

func TestBestOf_TieKeepsEarliest(t *testing.T) {
	r := NewRefiner(&fakeChecker{}, DefaultThresholds(), 2, nil)

	best, err := BestOf(context.Background(), r, func(s string) string { return s },
		func(_ context.Context, attempt int) (string, error) {
			return refList(1, 4) + fmt.Sprintf("<!-- %d -->", attempt), nil
		})

	require.NoError(t, err)
	assert.Equal(t, 1, best.Number)
	assert.Contains(t, best.Value, "<!-- 1 -->")
}

func TestBestOf_FirstAttemptErrorFails(t *testing.T) {
	r := NewRefiner(&fakeChecker{}, DefaultThresholds(), 3, nil)
	boom := errors.New("model unavailable")

	_, err := BestOf(context.Background(), r, func(s string) string { return s },
		func(context.Context, int) (string, error) { return "", boom })

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestBestOf_LaterErrorKeepsBest(t *testing.T) {
	r := NewRefiner(&fakeChecker{}, DefaultThresholds(), 3, nil)

	best, err := BestOf(context.Background(), r, func(s string) string { return s },
		func(_ context.Context, attempt int) (string, error) {
			if attempt == 2 {
				return "", errors.New("rate limited")
			}
			return refList(1, 5), nil
		})

	require.NoError(t, err)
	assert.Equal(t, 1, best.Number)
	assert.Equal(t, 1, best.Result.ValidLinks)
}

func TestBestOf_StructuredValue(t *testing.T) {
	type slide struct{ Title, Text string }
	r := NewRefiner(&fakeChecker{}, DefaultThresholds(), 3, nil)

	best, err := BestOf(context.Background(), r, func(s slide) string { return s.Text },
		func(_ context.Context, attempt int) (slide, error) {
			return slide{Title: "References", Text: refList(4, 0)}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, "References", best.Value.Title)
	assert.Equal(t, 4, best.Result.ValidLinks)
}
