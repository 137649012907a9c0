package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// maxURLsPerDomain caps how many simple-mode URLs share one host, so a
// batch does not end up with near-identical screenshots of one outlet.
const maxURLsPerDomain = 2

// Batch is the parsed input descriptor for one capture run.
type Batch struct {
	VideoName string
	Items     []WorkItem
}

// claimBatch is the claim-mode wire format produced by the claim
// extraction step: one chunk per script segment, each with the candidate
// URLs its claim search returned.
type claimBatch struct {
	VideoName string `json:"video_name"`
	Chunks    []struct {
		ChunkIndex int      `json:"chunk_index"`
		ChunkText  string   `json:"chunk_text"`
		Claim      string   `json:"claim"`
		URLs       []string `json:"urls"`
	} `json:"chunks"`
}

// simpleEntry is the simple-mode wire format: a flat URL list, one
// screenshot per entry.
type simpleEntry struct {
	URL           string `json:"url"`
	HighlightText string `json:"highlight_text,omitempty"`
}

// ParseBatch decodes a batch descriptor in either claim mode (object with
// video_name and chunks) or simple mode (flat array of url entries).
func ParseBatch(data []byte) (*Batch, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("batch descriptor is empty")
	}

	if strings.HasPrefix(trimmed, "[") {
		var entries []simpleEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse simple batch: %w", err)
		}
		return simpleBatch(entries), nil
	}

	var cb claimBatch
	if err := json.Unmarshal(data, &cb); err != nil {
		return nil, fmt.Errorf("parse claim batch: %w", err)
	}
	if len(cb.Chunks) == 0 {
		return nil, fmt.Errorf("claim batch has no chunks")
	}

	b := &Batch{VideoName: cb.VideoName}
	if b.VideoName == "" {
		b.VideoName = "video"
	}
	for _, c := range cb.Chunks {
		b.Items = append(b.Items, WorkItem{
			ChunkIndex: c.ChunkIndex,
			Claim:      c.Claim,
			URLs:       c.URLs,
		})
	}
	return b, nil
}

// simpleBatch converts flat URL entries into single-URL work items with
// synthetic chunk indices, applying the per-domain diversity cap.
func simpleBatch(entries []simpleEntry) *Batch {
	b := &Batch{}
	perDomain := make(map[string]int)
	idx := 0
	for _, e := range entries {
		if e.URL == "" {
			continue
		}
		host := hostOf(e.URL)
		if host != "" {
			if perDomain[host] >= maxURLsPerDomain {
				continue
			}
			perDomain[host]++
		}
		b.Items = append(b.Items, WorkItem{
			ChunkIndex: idx,
			Claim:      e.HighlightText,
			URLs:       []string{e.URL},
		})
		idx++
	}
	return b
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
