package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// chunk is a single change between two policy snapshots.
type chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// policyDiffJSON diffs two policy texts and returns the changes as JSON.
// Equal runs are dropped; whitespace-only changes are ignored.
func policyDiffJSON(baseID, headID, base, head string) (string, error) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(base, head, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]chunk, 0)
	for _, d := range diffs {
		var chunkType string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunkType = "added"
		case diffmatchpatch.DiffDelete:
			chunkType = "removed"
		case diffmatchpatch.DiffEqual:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		chunks = append(chunks, chunk{Type: chunkType, Content: d.Text})
	}

	result := struct {
		BaseID string  `json:"base_id"`
		HeadID string  `json:"head_id"`
		Chunks []chunk `json:"chunks"`
	}{
		BaseID: baseID,
		HeadID: headID,
		Chunks: chunks,
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal diff: %w", err)
	}
	return string(data), nil
}
