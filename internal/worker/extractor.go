package worker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Extraction is what the text-analysis routine produces for one job
// description: the skill names it found and an optional job-level
// classification.
type Extraction struct {
	Skills   []string `yaml:"skillset"`
	JobLevel string   `yaml:"job_level"`
}

// Extractor is the contract for the skill-extraction routine. The
// algorithm itself is an external collaborator; the worker only invokes
// it and persists its output.
type Extractor interface {
	Extract(ctx context.Context, description string) (*Extraction, error)
}

// ScriptExtractor runs an external extraction script. The description is
// written to a temp file, the script is invoked with the file path, and
// its stdout is decoded as YAML with skillset and job_level keys.
type ScriptExtractor struct {
	interpreter string
	script      string
}

// NewScriptExtractor creates a ScriptExtractor.
func NewScriptExtractor(interpreter, script string) *ScriptExtractor {
	if interpreter == "" {
		interpreter = "python3"
	}
	return &ScriptExtractor{interpreter: interpreter, script: script}
}

// Extract invokes the extraction script on one description.
func (e *ScriptExtractor) Extract(ctx context.Context, description string) (*Extraction, error) {
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf(".extractor.%s.tmp", uuid.New().String()))
	if err := os.WriteFile(tmp, []byte(description), 0600); err != nil {
		return nil, fmt.Errorf("failed to write description file: %w", err)
	}
	defer os.Remove(tmp)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.interpreter, e.script, tmp)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("extraction script failed: %w (stderr: %s)", err, stderr.String())
	}

	var result Extraction
	if err := yaml.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode extraction output: %w", err)
	}
	return &result, nil
}
