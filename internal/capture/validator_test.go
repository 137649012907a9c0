package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestValidateUsablePage(t *testing.T) {
	page := &fakeSession{html: `<html><body><h1>Oil prices surge</h1><p>Venezuela holds large reserves.</p></body></html>`}
	v := NewValidator(zap.NewNop())

	verdict := v.Validate(context.Background(), page)

	assert.True(t, verdict.Valid)
	assert.Empty(t, verdict.BlockReason)
}

func TestValidateBlockedPhrases(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		reason string
	}{
		{
			"captcha",
			`<html><body>Please verify you are human before continuing.</body></html>`,
			"verify you are human",
		},
		{
			"paywall",
			`<html><body><div class="wall">Subscribe to continue reading this article</div></body></html>`,
			"subscribe to continue",
		},
		{
			"access denied",
			`<html><body><h1>Access Denied</h1></body></html>`,
			"access denied",
		},
		{
			"geo block",
			`<html><body>This content is not available in your region.</body></html>`,
			"not available in your region",
		},
		{
			"javascript wall",
			`<html><body>Please enable JavaScript to view this site.</body></html>`,
			"enable javascript",
		},
	}
	v := NewValidator(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := v.Validate(context.Background(), &fakeSession{html: tt.html})
			assert.False(t, verdict.Valid)
			assert.Equal(t, tt.reason, verdict.BlockReason)
		})
	}
}

func TestValidateFirstMatchWins(t *testing.T) {
	// Both a captcha phrase and a paywall phrase on the page: the
	// earlier pattern in the set is reported.
	page := &fakeSession{html: `<html><body>verify you are human. subscribe to continue.</body></html>`}
	verdict := NewValidator(zap.NewNop()).Validate(context.Background(), page)

	assert.False(t, verdict.Valid)
	assert.Equal(t, "verify you are human", verdict.BlockReason)
}

func TestValidateIgnoresScriptText(t *testing.T) {
	// A block phrase that only occurs inside a script tag is not
	// visible text and must not poison the verdict.
	page := &fakeSession{html: `<html><body><p>Real article text</p><script>var s = "captcha check disabled";</script></body></html>`}
	verdict := NewValidator(zap.NewNop()).Validate(context.Background(), page)

	assert.True(t, verdict.Valid)
}

func TestValidateFailsClosedOnExtractionError(t *testing.T) {
	page := &fakeSession{htmlErr: errors.New("target crashed")}
	verdict := NewValidator(zap.NewNop()).Validate(context.Background(), page)

	assert.False(t, verdict.Valid)
	assert.Equal(t, "validation failed", verdict.BlockReason)
}

func TestValidateFailsClosedOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	verdict := NewValidator(zap.NewNop()).Validate(ctx, &fakeSession{html: "<html><body>fine</body></html>"})

	assert.False(t, verdict.Valid)
}
