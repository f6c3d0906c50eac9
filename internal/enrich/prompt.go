package enrich

import (
	"bytes"
	"os"
	"text/template"
)

const defaultPromptTemplate = `You are an experienced engineering lead triaging task markers found in a codebase.

Marker: {{.Keyword}} at {{.File}}:{{.Line}}{{if .Assignee}} (assigned to {{.Assignee}}){{end}}
Priority: {{.Priority}}
Text: {{.Body}}
{{if .Context}}
## Surrounding Code
{{.Context}}
{{end}}
## Instructions
Estimate the work this marker describes.

Return your answer as JSON with this exact structure:
{
  "complexity": "simple" | "moderate" | "complex",
  "estimated_hours": <number>,
  "approach": "<one or two sentences on how to do the work>",
  "skills": ["<skill needed>", ...],
  "risks": ["<risk to watch for>", ...]
}

Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.
`

// PromptData holds the fields available to enrichment prompt templates.
type PromptData struct {
	Keyword  string
	File     string
	Line     int
	Assignee string
	Priority string
	Body     string
	Context  string
}

// RenderPrompt renders the estimation prompt for one request using either a
// custom template file or the default.
func RenderPrompt(req Request, templatePath string) (string, error) {
	tmplStr := defaultPromptTemplate
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return "", err
		}
		tmplStr = string(content)
	}

	tmpl, err := template.New("enrich").Parse(tmplStr)
	if err != nil {
		return "", err
	}

	data := PromptData{
		Keyword:  req.Task.Keyword,
		File:     req.Task.File,
		Line:     req.Task.Line,
		Assignee: req.Task.Assignee,
		Priority: string(req.Task.Priority),
		Body:     req.Task.Body,
		Context:  req.Context,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
