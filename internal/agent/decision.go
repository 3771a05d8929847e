package agent

import (
	"encoding/json"
	"strings"
)

// ExtractPayload returns the substring spanning the first '{' to the last
// '}' of text. Models often wrap the object they were asked for in prose;
// everything outside the braces is ignored.
func ExtractPayload(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

type decisionPayload struct {
	NextAgent *string `json:"next_agent"`
}

// ParseDecision turns a supervisor completion into an AgentID.
//
// It fails with *MalformedDecisionError when no brace-delimited payload is
// present, the payload is not valid JSON, or "next_agent" is missing or
// null. A well-formed payload naming an agent outside the closed set fails
// with *UnknownAgentError.
func ParseDecision(raw string) (AgentID, error) {
	payload, ok := ExtractPayload(raw)
	if !ok {
		return Unknown, &MalformedDecisionError{Raw: raw, Reason: "no JSON object found"}
	}

	var p decisionPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Unknown, &MalformedDecisionError{Raw: raw, Reason: "invalid JSON payload", Err: err}
	}
	if p.NextAgent == nil {
		return Unknown, &MalformedDecisionError{Raw: raw, Reason: `missing "next_agent" field`}
	}

	return ParseAgentID(*p.NextAgent)
}
