// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/newsdesk/internal/team"
	"github.com/pdiddy/newsdesk/pkg/types"
)

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// researchPromptTmpl asks the researcher to summarize news for the topic.
// Search results are advisory: the prompt still works without them.
var researchPromptTmpl = template.Must(template.New("research").Funcs(funcs).Parse(`You are {{.Member.Name}}, {{.Member.Role}}.
Your goal: {{.Member.Goal}}
Your background: {{.Member.Background}}

Task: {{.Task.Description}}
Expected output: {{.Task.ExpectedOutput}}

{{if .Sources -}}
Use the following search results as your primary source. Cite the source number in brackets when you use it.

{{range $i, $r := .Sources -}}
[{{inc $i}}] {{$r.Title}}{{if $r.URL}} ({{$r.URL}}){{end}}
{{$r.Snippet}}

{{end -}}
{{else -}}
No search results are available for this topic. Summarize what you know and state clearly that the information may not be current.
{{end -}}
`))

// writingPromptTmpl asks the writer to turn the research summary into a post.
var writingPromptTmpl = template.Must(template.New("writing").Parse(`You are {{.Member.Name}}, {{.Member.Role}}.
Your goal: {{.Member.Goal}}
Your background: {{.Member.Background}}

Task: {{.Task.Description}}
Expected output: {{.Task.ExpectedOutput}}

Research provided by your colleague:
{{.Research}}

Respond with the blog post only.
`))

type researchPromptData struct {
	Member  team.Member
	Task    team.RenderedTask
	Sources []types.SearchResult
}

type writingPromptData struct {
	Member   team.Member
	Task     team.RenderedTask
	Research string
}

// renderResearchPrompt builds the research stage prompt for topic.
func renderResearchPrompt(tm *team.Team, topic types.Topic, sources []types.SearchResult) (string, error) {
	task, err := tm.Research.Render(topic)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = researchPromptTmpl.Execute(&buf, researchPromptData{Member: tm.Researcher, Task: task, Sources: sources})
	return buf.String(), err
}

// renderWritingPrompt builds the writing stage prompt from the research summary.
func renderWritingPrompt(tm *team.Team, topic types.Topic, research string) (string, error) {
	task, err := tm.Writing.Render(topic)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = writingPromptTmpl.Execute(&buf, writingPromptData{Member: tm.Writer, Task: task, Research: research})
	return buf.String(), err
}
