package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFindClickTargetPreferenceOrder(t *testing.T) {
	candidates := []ClickCandidate{
		{Index: 0, Text: "Continue", Visible: true},
		{Index: 1, Text: "Accept All Cookies", Visible: true},
		{Index: 2, Text: "OK", Visible: true},
	}
	// "accept all" outranks "continue" and "ok" even though they appear
	// earlier in document order.
	assert.Equal(t, 1, FindClickTarget(candidates, consentPrefs))
}

func TestFindClickTargetSubstringMatch(t *testing.T) {
	// "Accept and Continue" matches the "accept" preference.
	candidates := []ClickCandidate{
		{Index: 0, Text: "Accept and Continue", Visible: true},
	}
	assert.Equal(t, 0, FindClickTarget(candidates, consentPrefs))
}

func TestFindClickTargetSkipsInvisible(t *testing.T) {
	candidates := []ClickCandidate{
		{Index: 0, Text: "Accept all", Visible: false},
		{Index: 1, Text: "Accept cookies", Visible: true},
	}
	assert.Equal(t, 1, FindClickTarget(candidates, consentPrefs))
}

func TestFindClickTargetNoMatch(t *testing.T) {
	candidates := []ClickCandidate{
		{Index: 0, Text: "Read more", Visible: true},
		{Index: 1, Text: "Share", Visible: true},
	}
	assert.Equal(t, -1, FindClickTarget(candidates, consentPrefs))
	assert.Equal(t, -1, FindClickTarget(nil, consentPrefs))
}

func TestFindClickTargetCaseInsensitive(t *testing.T) {
	candidates := []ClickCandidate{
		{Index: 0, Text: "  ACCEPT COOKIES  ", Visible: true},
	}
	assert.Equal(t, 0, FindClickTarget(candidates, consentPrefs))
}

func TestSemanticClicksBestMatchOnly(t *testing.T) {
	page := &fakeSession{candidates: []ClickCandidate{
		{Index: 0, Text: "Decline", Visible: true},
		{Index: 1, Text: "Accept all", Visible: true},
		{Index: 2, Text: "Accept", Visible: true},
	}}
	c := NewClearer(200*time.Millisecond, zap.NewNop())
	c.Semantic(context.Background(), page)

	// One snapshot eval plus exactly one click eval.
	clicks := 0
	for _, e := range page.evals {
		if !isSnapshotEval(e) {
			clicks++
		}
	}
	assert.Equal(t, 1, clicks)
}

func TestSemanticNoCandidatesNoClick(t *testing.T) {
	page := &fakeSession{}
	c := NewClearer(200*time.Millisecond, zap.NewNop())
	c.Semantic(context.Background(), page)

	for _, e := range page.evals {
		assert.True(t, isSnapshotEval(e), "unexpected click eval: %s", e)
	}
}

func TestPassesSwallowFailures(t *testing.T) {
	page := &fakeSession{evalErr: errors.New("execution context destroyed")}
	c := NewClearer(200*time.Millisecond, zap.NewNop())

	// None of these may panic or propagate the error.
	c.Semantic(context.Background(), page)
	c.Structural(context.Background(), page)
	c.Hide(context.Background(), page)
	c.Keyboard(context.Background(), page)
}

func TestKeyboardSendsEscape(t *testing.T) {
	page := &fakeSession{}
	c := NewClearer(200*time.Millisecond, zap.NewNop())
	c.Keyboard(context.Background(), page)

	assert.Equal(t, []string{"Escape"}, page.keys)
}

func TestStructuralSelectorListCapped(t *testing.T) {
	assert.LessOrEqual(t, len(structuralSelectors), 20)
}
