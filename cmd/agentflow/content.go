package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sipsyai/agentflow/pkg/agentflow"
)

// readContent parses the YAML content file shared with the server: a
// document with agents and skills lists.
func readContent(path string) ([]agentflow.Agent, []agentflow.Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading content file: %w", err)
	}
	var cf struct {
		Agents []struct {
			ID              string   `yaml:"id"`
			Name            string   `yaml:"name"`
			SystemPrompt    string   `yaml:"system_prompt"`
			DefaultModel    string   `yaml:"default_model"`
			AllowedTools    []string `yaml:"allowed_tools"`
			DisallowedTools []string `yaml:"disallowed_tools"`
			WorkingDir      string   `yaml:"working_dir"`
		} `yaml:"agents"`
		Skills []struct {
			ID           string   `yaml:"id"`
			Name         string   `yaml:"name"`
			Content      string   `yaml:"content"`
			AllowedTools []string `yaml:"allowed_tools"`
		} `yaml:"skills"`
	}
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, nil, fmt.Errorf("parsing content file: %w", err)
	}

	agents := make([]agentflow.Agent, 0, len(cf.Agents))
	for _, a := range cf.Agents {
		if a.ID == "" {
			return nil, nil, fmt.Errorf("agent entry missing id")
		}
		agents = append(agents, agentflow.Agent{
			ID:              a.ID,
			Name:            a.Name,
			SystemPrompt:    a.SystemPrompt,
			DefaultModel:    a.DefaultModel,
			AllowedTools:    a.AllowedTools,
			DisallowedTools: a.DisallowedTools,
			WorkingDir:      a.WorkingDir,
		})
	}
	skills := make([]agentflow.Skill, 0, len(cf.Skills))
	for _, s := range cf.Skills {
		if s.ID == "" {
			return nil, nil, fmt.Errorf("skill entry missing id")
		}
		skills = append(skills, agentflow.Skill{
			ID:           s.ID,
			Name:         s.Name,
			Content:      s.Content,
			AllowedTools: s.AllowedTools,
		})
	}
	return agents, skills, nil
}
