package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mc-skin-renderer/internal/request"
)

// Job is one render described in a jobs file. Empty fields fall back to the
// run defaults; relative paths are relative to the jobs file.
type Job struct {
	Name   string `json:"name" yaml:"name"`
	Skin   string `json:"skin" yaml:"skin"`
	Cape   string `json:"cape,omitempty" yaml:"cape,omitempty"`
	Armor1 string `json:"armor1,omitempty" yaml:"armor1,omitempty"`
	Armor2 string `json:"armor2,omitempty" yaml:"armor2,omitempty"`

	Mode     string              `json:"mode,omitempty" yaml:"mode,omitempty"`
	Model    string              `json:"model,omitempty" yaml:"model,omitempty"`
	Features string              `json:"features,omitempty" yaml:"features,omitempty"` // replaces the default set
	Exclude  []string            `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Armor    request.ArmorSlots  `json:"armor" yaml:"armor"`
	Ears     *request.EarsConfig `json:"ears,omitempty" yaml:"ears,omitempty"`
	Back     bool                `json:"back,omitempty" yaml:"back,omitempty"`

	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Request applies the job's overrides on top of def.
func (j Job) Request(def request.Request) (request.Request, error) {
	req := def
	if j.Mode != "" {
		m, err := request.ParseMode(j.Mode)
		if err != nil {
			return request.Request{}, err
		}
		req.Mode = m
	}
	if j.Model != "" {
		m, err := request.ParseModel(j.Model)
		if err != nil {
			return request.Request{}, err
		}
		req.Model = m
	}
	if j.Features != "" {
		fs, err := request.ParseFeatures(j.Features)
		if err != nil {
			return request.Request{}, err
		}
		req.Features = fs
	}
	if len(j.Exclude) > 0 {
		fs, err := request.ParseFeatures(strings.Join(j.Exclude, ","))
		if err != nil {
			return request.Request{}, err
		}
		req.Features = req.Features.Without(fs)
	}
	req.Armor = j.Armor
	req.Ears = j.Ears
	req.Back = j.Back
	return req, req.Validate()
}

// displayName is the job name, or the skin file stem when unnamed.
func (j Job) displayName() string {
	if j.Name != "" {
		return j.Name
	}
	base := filepath.Base(j.Skin)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadJobs reads a JSON or YAML list of jobs and makes relative texture
// paths absolute against the file's directory.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", path, err)
	}

	var jobs []Job
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &jobs)
	default:
		err = json.Unmarshal(data, &jobs)
	}
	if err != nil {
		return nil, fmt.Errorf("batch: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range jobs {
		j := &jobs[i]
		if j.Skin == "" {
			return nil, fmt.Errorf("batch: %s: job %d has no skin", path, i)
		}
		j.Skin = relativeTo(dir, j.Skin)
		j.Cape = relativeTo(dir, j.Cape)
		j.Armor1 = relativeTo(dir, j.Armor1)
		j.Armor2 = relativeTo(dir, j.Armor2)
	}
	return jobs, nil
}

func relativeTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
