package capture

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/capture-service/internal/browser"
	"github.com/user/capture-service/internal/domain"
)

// blockedPatterns are phrases that mark a page as unusable evidence.
// Scanned in order against the lower-cased rendered text; the first hit
// wins. Matching is deliberately over-broad: rejecting a usable page over
// a stray mention of "captcha" is cheaper than shipping a screenshot of
// a block page.
var blockedPatterns = []string{
	// CAPTCHA / robot checks
	"verify you are human",
	"verifying you are human",
	"are you a robot",
	"i'm not a robot",
	"captcha",
	"unusual traffic",
	"checking your browser",
	"attention required",
	// access denied / geo-blocks / error pages
	"access denied",
	"access to this page has been denied",
	"403 forbidden",
	"not available in your region",
	"not available in your country",
	"page not found",
	"404 not found",
	// paywalls / registration walls
	"subscribe to continue",
	"subscribe to read",
	"subscription required",
	"sign in to continue",
	"log in to continue",
	"register to continue",
	"create a free account",
	"already a subscriber",
	"this content is for subscribers",
	// pages that render nothing without JS
	"enable javascript",
	"javascript is required",
	"javascript is disabled",
}

// Validator classifies a loaded page as usable evidence or blocked.
type Validator struct {
	logger *zap.Logger
}

func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate reads the rendered page text and scans it for block phrases.
// Any extraction failure yields an invalid verdict: never assume a page
// is usable when it cannot be read.
func (v *Validator) Validate(ctx context.Context, page browser.PageSession) domain.ValidationVerdict {
	html, err := page.HTML(ctx)
	if err != nil {
		v.logger.Warn("page text extraction failed", zap.Error(err))
		return domain.ValidationVerdict{Valid: false, BlockReason: "validation failed"}
	}

	text, err := visibleText(html)
	if err != nil {
		v.logger.Warn("page text parse failed", zap.Error(err))
		return domain.ValidationVerdict{Valid: false, BlockReason: "validation failed"}
	}

	lower := strings.ToLower(text)
	for _, pattern := range blockedPatterns {
		if strings.Contains(lower, pattern) {
			return domain.ValidationVerdict{Valid: false, BlockReason: pattern}
		}
	}
	return domain.ValidationVerdict{Valid: true}
}

// visibleText strips script/style/noscript and returns the body text.
func visibleText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	return strings.TrimSpace(doc.Find("body").Text()), nil
}
