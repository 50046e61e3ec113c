package sshd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/hostprep/internal/domain/step"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/validation"
)

// ConfigStep ensures sshd_config carries the declared directives.
// Unrelated lines, comments, and ordering are preserved.
type ConfigStep struct {
	path       string
	directives map[string]string
	id         step.StepID
	fs         ports.FileSystem
}

// NewConfigStep creates a new ConfigStep.
func NewConfigStep(path string, directives map[string]string, fs ports.FileSystem) *ConfigStep {
	return &ConfigStep{
		path:       path,
		directives: directives,
		id:         step.MustNewStepID("sshd:config"),
		fs:         fs,
	}
}

// ID returns the step identifier.
func (s *ConfigStep) ID() step.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *ConfigStep) DependsOn() []step.StepID {
	return nil
}

// Check determines whether every directive is already active with the
// declared value.
func (s *ConfigStep) Check(_ step.RunContext) (step.CheckStatus, error) {
	return checkDirectives(s.fs, s.path, s.directives)
}

// Apply rewrites the configuration file with the directives enforced.
func (s *ConfigStep) Apply(_ step.RunContext) error {
	for keyword, value := range s.directives {
		if err := validation.ValidateDirective(keyword); err != nil {
			return err
		}
		if err := validation.ValidateDirectiveValue(value); err != nil {
			return fmt.Errorf("directive %s: %w", keyword, err)
		}
	}

	var content string
	if s.fs.Exists(s.path) {
		data, err := s.fs.ReadFile(s.path)
		if err != nil {
			return fmt.Errorf("read %s: %w", s.path, err)
		}
		content = string(data)
	}

	updated := enforceDirectives(content, s.directives)

	if err := s.fs.WriteFile(s.path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Explain provides a human-readable explanation.
func (s *ConfigStep) Explain() step.Explanation {
	keys := sortedKeys(s.directives)
	return step.NewExplanation(
		"Configure sshd",
		fmt.Sprintf("Enforces %s in %s.", strings.Join(keys, ", "), s.path),
	)
}

// ReloadStep reloads the SSH daemon so configuration changes take effect.
type ReloadStep struct {
	service    string
	path       string
	directives map[string]string
	deps       []step.StepID
	id         step.StepID
	fs         ports.FileSystem
	runner     ports.CommandRunner
}

// NewReloadStep creates a ReloadStep that runs after the config step.
// It shares the config step's precondition: when the directives are
// already in place nothing was edited, so no reload is needed.
func NewReloadStep(service, path string, directives map[string]string, configID step.StepID, fs ports.FileSystem, runner ports.CommandRunner) *ReloadStep {
	return &ReloadStep{
		service:    service,
		path:       path,
		directives: directives,
		deps:       []step.StepID{configID},
		id:         step.MustNewStepID("sshd:reload"),
		fs:         fs,
		runner:     runner,
	}
}

// ID returns the step identifier.
func (s *ReloadStep) ID() step.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *ReloadStep) DependsOn() []step.StepID {
	return s.deps
}

// Check reports satisfied when the configuration file already carries
// every directive.
func (s *ReloadStep) Check(_ step.RunContext) (step.CheckStatus, error) {
	return checkDirectives(s.fs, s.path, s.directives)
}

// Apply reloads the daemon.
func (s *ReloadStep) Apply(ctx step.RunContext) error {
	if err := validation.ValidateServiceName(s.service); err != nil {
		return err
	}

	result, err := s.runner.Run(ctx.Context(), "systemctl", "reload", s.service)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("systemctl reload %s failed: %s", s.service, result.Stderr)
	}
	return nil
}

// Explain provides a human-readable explanation.
func (s *ReloadStep) Explain() step.Explanation {
	return step.NewExplanation(
		"Reload sshd",
		fmt.Sprintf("Reloads the %s service to pick up configuration changes.", s.service),
	)
}

// checkDirectives reports satisfied when every directive's first active
// occurrence carries the declared value.
func checkDirectives(fs ports.FileSystem, path string, directives map[string]string) (step.CheckStatus, error) {
	if !fs.Exists(path) {
		return step.StatusNeedsApply, nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return step.StatusUnknown, err
	}

	active := activeDirectives(string(data))
	for keyword, value := range directives {
		if active[strings.ToLower(keyword)] != value {
			return step.StatusNeedsApply, nil
		}
	}
	return step.StatusSatisfied, nil
}

// activeDirectives maps lowercased keywords of uncommented lines to the
// first value seen, matching sshd's first-match-wins semantics.
func activeDirectives(content string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}
		key := strings.ToLower(fields[0])
		if _, seen := out[key]; !seen {
			out[key] = strings.Join(fields[1:], " ")
		}
	}
	return out
}

// enforceDirectives rewrites content so each managed directive appears
// exactly once, active, with the declared value. Existing active lines
// for a managed keyword are replaced in place; missing directives are
// appended.
func enforceDirectives(content string, directives map[string]string) string {
	lines := strings.Split(content, "\n")
	managed := make(map[string]string, len(directives))
	for keyword, value := range directives {
		managed[strings.ToLower(keyword)] = keyword + " " + value
	}

	replaced := make(map[string]bool)
	out := make([]string, 0, len(lines)+len(directives))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			fields := strings.Fields(trimmed)
			if len(fields) >= 2 {
				key := strings.ToLower(fields[0])
				if desired, ok := managed[key]; ok {
					if !replaced[key] {
						out = append(out, desired)
						replaced[key] = true
					}
					// Duplicate active lines for a managed keyword are dropped.
					continue
				}
			}
		}
		out = append(out, line)
	}

	for _, keyword := range sortedKeys(directives) {
		key := strings.ToLower(keyword)
		if !replaced[key] {
			out = append(out, managed[key])
		}
	}

	result := strings.Join(out, "\n")
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

// sortedKeys returns map keys in stable order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ensure both steps implement step.Step.
var (
	_ step.Step = (*ConfigStep)(nil)
	_ step.Step = (*ReloadStep)(nil)
)
