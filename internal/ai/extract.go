package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/byteakp/Baclend-GEN/internal/types"
)

// MalformedResponseError reports model output from which no parseable
// project JSON could be recovered. Snippet carries a bounded slice of the
// offending text for diagnosis.
type MalformedResponseError struct {
	Reason  string
	Snippet string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

const snippetLimit = 500

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*\\n?(.*?)```")
	anyFenceRe  = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\\s*\\n?(.*?)```")
)

// ExtractProjectJSON recovers a ProjectDescriptor from raw model output.
// Precedence: the first ```json fenced block, then the first fenced block
// of any tag, then the span from the first '{' to the last '}'. The last
// fallback is greedy, not brace-balanced: prose containing a stray brace
// after the JSON object will be swept in and fail the parse. That is a
// known limitation of the recovery contract, not a bug to paper over.
func ExtractProjectJSON(raw string) (*types.ProjectDescriptor, error) {
	candidate, err := extractCandidate(raw)
	if err != nil {
		return nil, err
	}

	var desc types.ProjectDescriptor
	if err := json.Unmarshal([]byte(candidate), &desc); err != nil {
		return nil, &MalformedResponseError{
			Reason:  "candidate text is not valid project JSON",
			Snippet: truncate(candidate, snippetLimit),
			Err:     err,
		}
	}
	return &desc, nil
}

// ExtractCodeBlock recovers plain code from model output for file enhance
// and rewrite calls: the first fenced block if any, otherwise the trimmed
// text as-is.
func ExtractCodeBlock(raw string) string {
	if m := anyFenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimRight(m[1], "\n") + "\n"
	}
	return strings.TrimSpace(raw) + "\n"
}

func extractCandidate(raw string) (string, error) {
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	if m := anyFenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", &MalformedResponseError{
			Reason:  "no JSON object found in model output",
			Snippet: truncate(raw, snippetLimit),
		}
	}
	return raw[start : end+1], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
