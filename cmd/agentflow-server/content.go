package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sipsyai/agentflow/internal/adapters/repository/memory"
	"github.com/sipsyai/agentflow/internal/app/usecases"
)

// contentFile is the YAML document seeding the content store at
// startup. Agents and skills can also be registered over the API.
type contentFile struct {
	Agents []contentAgent `yaml:"agents"`
	Skills []contentSkill `yaml:"skills"`
}

type contentAgent struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	SystemPrompt    string   `yaml:"system_prompt"`
	DefaultModel    string   `yaml:"default_model"`
	AllowedTools    []string `yaml:"allowed_tools"`
	DisallowedTools []string `yaml:"disallowed_tools"`
	WorkingDir      string   `yaml:"working_dir"`
}

type contentSkill struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Content      string   `yaml:"content"`
	AllowedTools []string `yaml:"allowed_tools"`
}

func loadContent(path string, store *memory.ContentStore) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var cf contentFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return err
	}
	for _, a := range cf.Agents {
		if a.ID == "" {
			return fmt.Errorf("agent entry missing id")
		}
		store.PutAgent(usecases.Agent{
			ID:              a.ID,
			Name:            a.Name,
			SystemPrompt:    a.SystemPrompt,
			DefaultModel:    a.DefaultModel,
			AllowedTools:    a.AllowedTools,
			DisallowedTools: a.DisallowedTools,
			WorkingDir:      a.WorkingDir,
		})
	}
	for _, s := range cf.Skills {
		if s.ID == "" {
			return fmt.Errorf("skill entry missing id")
		}
		store.PutSkill(usecases.Skill{
			ID:           s.ID,
			Name:         s.Name,
			Content:      s.Content,
			AllowedTools: s.AllowedTools,
		})
	}
	return nil
}
