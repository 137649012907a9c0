package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/capture-service/internal/browser"
)

// consentPrefs is the ordered preference list for affirmative consent
// buttons. More specific phrases come first so "accept all" beats a bare
// "accept" when both are on screen.
var consentPrefs = []string{
	"accept all",
	"accept cookies",
	"i accept",
	"agree",
	"accept",
	"got it",
	"ok",
	"continue",
	"allow",
}

// structuralSelectors target cookie/consent containers and generic close
// buttons that carry no useful visible text. Capped at 20.
var structuralSelectors = []string{
	"#onetrust-accept-btn-handler",
	".onetrust-close-btn-handler",
	"#sp-cc-accept",
	".fc-cta-consent",
	".cc-accept",
	".cc-dismiss",
	".cookie-accept",
	".cookie-consent-accept",
	`button[id*="accept"]`,
	`button[class*="accept"]`,
	`button[id*="consent"]`,
	`button[class*="consent"]`,
	`button[id*="agree"]`,
	`button[class*="agree"]`,
	`button[aria-label="Close"]`,
	`button[aria-label="close"]`,
	`[aria-label="Dismiss"]`,
	`button[title="Accept"]`,
	".modal-close",
	".popup-close",
}

// hideSelectors mark ad, banner, and sticky chrome that pollutes the
// screenshot. Hiding them is cosmetic only; validation never depends on
// this pass.
var hideSelectors = []string{
	`[id*="google_ads"]`,
	`iframe[src*="doubleclick"]`,
	`iframe[src*="adsystem"]`,
	`[class*="ad-container"]`,
	`[class*="advert"]`,
	`[id*="taboola"]`,
	`[class*="newsletter-popup"]`,
	`[class*="newsletter-signup"]`,
	`[class*="sticky-footer"]`,
	`[class*="bottom-banner"]`,
	`[class*="gdpr"]`,
}

// interactiveQuery is the element set scanned by the semantic pass.
const interactiveQuery = `button, [role="button"], input[type="button"], input[type="submit"], a`

// ClickCandidate is one interactive element captured from the page, in
// document order.
type ClickCandidate struct {
	Index   int    `json:"i"`
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
}

// FindClickTarget returns the index of the candidate to click, or -1.
// Preference phrases are tried in order; within one phrase the first
// visible candidate whose text contains it wins. Pure function so the
// priority ordering is testable without a browser.
func FindClickTarget(candidates []ClickCandidate, prefs []string) int {
	for _, pref := range prefs {
		for _, c := range candidates {
			if !c.Visible {
				continue
			}
			text := strings.ToLower(strings.TrimSpace(c.Text))
			if strings.Contains(text, pref) {
				return c.Index
			}
		}
	}
	return -1
}

// Clearer runs best-effort obstacle removal on a loaded page. Every pass
// is bounded by a small budget and swallows its own failures; a broken
// consent banner must never abort the attempt.
type Clearer struct {
	budget time.Duration
	logger *zap.Logger
}

func NewClearer(budget time.Duration, logger *zap.Logger) *Clearer {
	if budget <= 0 {
		budget = 800 * time.Millisecond
	}
	return &Clearer{budget: budget, logger: logger}
}

// bestEffort runs op under the pass budget and never returns an error.
func (c *Clearer) bestEffort(ctx context.Context, name string, op func(context.Context) error) {
	opCtx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()
	if err := op(opCtx); err != nil {
		c.logger.Debug("obstacle pass failed", zap.String("pass", name), zap.Error(err))
	}
}

// Semantic scans interactive elements for consent text and clicks the
// single best match.
func (c *Clearer) Semantic(ctx context.Context, page browser.PageSession) {
	c.bestEffort(ctx, "semantic", func(ctx context.Context) error {
		var candidates []ClickCandidate
		if err := page.Evaluate(ctx, snapshotJS, &candidates); err != nil {
			return err
		}
		target := FindClickTarget(candidates, consentPrefs)
		if target < 0 {
			return nil
		}
		c.logger.Debug("clicking consent button",
			zap.Int("index", target),
			zap.String("text", candidates[targetPos(candidates, target)].Text))
		return page.Evaluate(ctx, fmt.Sprintf(clickNthJS, target), nil)
	})
}

// Structural probes the fixed selector list, clicking up to two visible
// matches per selector.
func (c *Clearer) Structural(ctx context.Context, page browser.PageSession) {
	c.bestEffort(ctx, "structural", func(ctx context.Context) error {
		for _, sel := range structuralSelectors {
			js := fmt.Sprintf(clickBySelectorJS, jsString(sel))
			if err := page.Evaluate(ctx, js, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// Keyboard sends Escape to close residual modal dialogs.
func (c *Clearer) Keyboard(ctx context.Context, page browser.PageSession) {
	c.bestEffort(ctx, "keyboard", func(ctx context.Context) error {
		return page.PressKey(ctx, "Escape")
	})
}

// Hide sets display:none on ad/banner/sticky elements to clean up the
// screenshot.
func (c *Clearer) Hide(ctx context.Context, page browser.PageSession) {
	c.bestEffort(ctx, "hide", func(ctx context.Context) error {
		for _, sel := range hideSelectors {
			js := fmt.Sprintf(hideBySelectorJS, jsString(sel))
			if err := page.Evaluate(ctx, js, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// targetPos maps a candidate Index back to its slice position.
func targetPos(candidates []ClickCandidate, index int) int {
	for i, c := range candidates {
		if c.Index == index {
			return i
		}
	}
	return 0
}

// jsString quotes a selector for embedding in a script.
func jsString(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}

const snapshotJS = `(() => {
	const els = Array.from(document.querySelectorAll('` + interactiveQuery + `'));
	return els.map((el, i) => {
		const r = el.getBoundingClientRect();
		const cs = window.getComputedStyle(el);
		return {
			i: i,
			text: (el.innerText || el.value || '').trim().slice(0, 80),
			visible: r.width > 0 && r.height > 0 && cs.visibility !== 'hidden' && cs.display !== 'none'
		};
	});
})()`

const clickNthJS = `(() => {
	const els = Array.from(document.querySelectorAll('` + interactiveQuery + `'));
	const el = els[%d];
	if (el) el.click();
	return true;
})()`

const clickBySelectorJS = `(() => {
	let clicked = 0;
	for (const el of document.querySelectorAll(%s)) {
		if (clicked >= 2) break;
		const r = el.getBoundingClientRect();
		if (r.width > 0 && r.height > 0) {
			el.click();
			clicked++;
		}
	}
	return clicked;
})()`

const hideBySelectorJS = `(() => {
	for (const el of document.querySelectorAll(%s)) {
		el.style.setProperty('display', 'none', 'important');
	}
	return true;
})()`
