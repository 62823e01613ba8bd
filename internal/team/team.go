// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package team defines the researcher and writer roles and the two task
// templates a pipeline run is configured with. A Team is an immutable
// snapshot: runs capture one at start and never see later reloads.
package team

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/newsdesk/pkg/types"
)

//go:embed default.yaml
var defaultYAML []byte

// Member is one pipeline role. Persona fields only feed prompt templates;
// LLM selects the model that serves the role.
type Member struct {
	Name       string           `yaml:"name"`
	Role       string           `yaml:"role"`
	Goal       string           `yaml:"goal"`
	Background string           `yaml:"background"`
	LLM        types.RoleConfig `yaml:"llm"`
}

// Task is a stage's instructions. Description and ExpectedOutput are
// text/template sources rendered with the run's topic as {{.Topic}}.
type Task struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`

	description    *template.Template
	expectedOutput *template.Template
}

// RenderedTask is a Task with its templates executed for one topic.
type RenderedTask struct {
	Title          string
	Description    string
	ExpectedOutput string
}

// Team is the request-scoped configuration of a pipeline run.
type Team struct {
	Name         string `yaml:"name"`
	DefaultTopic string `yaml:"default_topic"`

	// QuerySuffix is appended to the topic to form the search query, e.g. "news".
	QuerySuffix string `yaml:"query_suffix,omitempty"`

	// MaxResults bounds the search results fed to the researcher (default 5).
	MaxResults int `yaml:"max_results"`

	Researcher Member `yaml:"researcher"`
	Writer     Member `yaml:"writer"`
	Research   Task   `yaml:"research"`
	Writing    Task   `yaml:"writing"`
}

// Default returns the built-in team.
func Default() *Team {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in team is invalid: %v", err))
	}
	return t
}

// LoadFile reads and parses a YAML team definition.
func LoadFile(path string) (*Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading team file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("team file %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a YAML team definition, normalizes provider names,
// compiles the task templates, and validates the result. Unknown fields
// are rejected so typos do not silently fall back to defaults.
func Parse(data []byte) (*Team, error) {
	var t Team
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding team: %w", err)
	}
	if t.MaxResults <= 0 {
		t.MaxResults = 5
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Team) compile() error {
	for _, m := range []*Member{&t.Researcher, &t.Writer} {
		if p, err := types.ParseProvider(string(m.LLM.Provider)); err == nil {
			m.LLM.Provider = p
		}
	}
	for name, task := range map[string]*Task{"research": &t.Research, "writing": &t.Writing} {
		var err error
		if task.description, err = template.New(name + ".description").Option("missingkey=error").Parse(task.Description); err != nil {
			return fmt.Errorf("%s task description: %w", name, err)
		}
		if task.expectedOutput, err = template.New(name + ".expected_output").Option("missingkey=error").Parse(task.ExpectedOutput); err != nil {
			return fmt.Errorf("%s task expected_output: %w", name, err)
		}
	}
	return nil
}

// Validate reports every problem with the team at once.
func (t *Team) Validate() error {
	var errs []error
	if strings.TrimSpace(t.DefaultTopic) == "" {
		errs = append(errs, errors.New("default_topic is required"))
	}
	if err := t.Researcher.LLM.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("researcher: %w", err))
	}
	if err := t.Writer.LLM.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("writer: %w", err))
	}
	if strings.TrimSpace(t.Research.Description) == "" {
		errs = append(errs, errors.New("research task description is required"))
	}
	if strings.TrimSpace(t.Writing.Description) == "" {
		errs = append(errs, errors.New("writing task description is required"))
	}
	for name, task := range map[string]*Task{"research": &t.Research, "writing": &t.Writing} {
		if _, err := task.Render("probe"); err != nil {
			errs = append(errs, fmt.Errorf("%s task: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Providers lists the completion providers the team's roles use.
func (t *Team) Providers() []types.Provider {
	if t.Researcher.LLM.Provider == t.Writer.LLM.Provider {
		return []types.Provider{t.Researcher.LLM.Provider}
	}
	return []types.Provider{t.Researcher.LLM.Provider, t.Writer.LLM.Provider}
}

// SearchQuery derives the search query for a topic.
func (t *Team) SearchQuery(topic types.Topic) string {
	if t.QuerySuffix == "" {
		return topic.String()
	}
	return topic.String() + " " + t.QuerySuffix
}

// Render executes the task templates for topic.
func (task *Task) Render(topic types.Topic) (RenderedTask, error) {
	if task.description == nil || task.expectedOutput == nil {
		return RenderedTask{}, errors.New("task templates are not compiled")
	}
	data := struct{ Topic string }{Topic: topic.String()}

	var desc, out bytes.Buffer
	if err := task.description.Execute(&desc, data); err != nil {
		return RenderedTask{}, fmt.Errorf("rendering description: %w", err)
	}
	if err := task.expectedOutput.Execute(&out, data); err != nil {
		return RenderedTask{}, fmt.Errorf("rendering expected output: %w", err)
	}
	return RenderedTask{
		Title:          task.Title,
		Description:    strings.TrimSpace(desc.String()),
		ExpectedOutput: strings.TrimSpace(out.String()),
	}, nil
}
