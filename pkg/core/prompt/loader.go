package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"obra_tracker/pkg/core/utils"
)

// LoadDirectory registers every prompts/**/*.json under baseDir.
//
//	baseDir/
//	  prompts/
//	    voice/
//	      command.json   -> "voice.command"
func (r *Registry) LoadDirectory(baseDir string) error {
	dir := filepath.Join(baseDir, "prompts")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("prompts directory not found: %s", dir)
	}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if pt.ID == "" {
			pt.ID = idFromPath(path, dir)
		}
		if pt.Category == "" {
			pt.Category = categoryFromPath(path, dir)
		}
		return r.Register(&pt)
	})
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}

	utils.Logger.WithField("dir", baseDir).Infof("Loaded %d prompts", r.Count())
	return nil
}

// "prompts/voice/command.json" -> "voice.command"
func idFromPath(path string, baseDir string) string {
	rel, _ := filepath.Rel(baseDir, path)
	rel = strings.TrimSuffix(rel, ".json")
	return strings.ReplaceAll(rel, string(filepath.Separator), ".")
}

func categoryFromPath(path string, baseDir string) string {
	rel, _ := filepath.Rel(baseDir, path)
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) > 1 {
		return parts[0]
	}
	return "default"
}

// RenderUserPrompt executes the user prompt template. Missing keys are an error.
func RenderUserPrompt(pt *PromptTemplate, vars Variables) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}
	tmpl, err := template.New(pt.ID).Option("missingkey=error").Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]interface{}(vars)); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
