package report

import (
	"encoding/json"
	"fmt"
	"time"
)

// cucumberFeature mirrors one entry of godog's cucumber JSON output. Only
// the fields the report needs are decoded.
type cucumberFeature struct {
	URI      string            `json:"uri"`
	Name     string            `json:"name"`
	Elements []cucumberElement `json:"elements"`
}

type cucumberElement struct {
	Name  string         `json:"name"`
	Type  string         `json:"type"`
	Tags  []cucumberTag  `json:"tags"`
	Steps []cucumberStep `json:"steps"`
}

type cucumberTag struct {
	Name string `json:"name"`
}

type cucumberStep struct {
	Keyword string `json:"keyword"`
	Name    string `json:"name"`
	Result  struct {
		Status   string `json:"status"`
		Duration int64  `json:"duration"`
		Error    string `json:"error_message"`
	} `json:"result"`
}

// ParseCucumber builds a Run from godog's cucumber JSON. Background elements
// are skipped because godog repeats their steps inside every scenario.
func ParseCucumber(name string, data []byte) (*Run, error) {
	var features []cucumberFeature
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("failed to parse cucumber report: %w", err)
	}

	run := NewRun(name)
	for _, f := range features {
		for _, el := range f.Elements {
			if el.Type == "background" {
				continue
			}
			run.Add(scenarioFromElement(f, el))
		}
	}
	return run, nil
}

func scenarioFromElement(f cucumberFeature, el cucumberElement) ScenarioResult {
	sr := ScenarioResult{
		Feature: f.Name,
		URI:     f.URI,
		Name:    el.Name,
		Status:  StatusPassed,
	}
	for _, tag := range el.Tags {
		sr.Tags = append(sr.Tags, tag.Name)
	}

	for _, st := range el.Steps {
		sr.Duration += time.Duration(st.Result.Duration)
		status := Status(st.Result.Status)
		if status.worse(sr.Status) {
			sr.Status = status
		}
		if sr.FailedStep == "" && (status == StatusFailed || status == StatusUndefined || status == StatusPending) {
			sr.FailedStep = st.Keyword + st.Name
			sr.Error = st.Result.Error
		}
	}
	return sr
}
