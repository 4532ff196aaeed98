// Package runnertest provides a scripted Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/five82/icecale/internal/runner"
)

// Call records one invocation.
type Call struct {
	Name string
	Args []string
}

// Line returns the invocation as a single space-separated string.
func (c Call) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Has reports whether args contains arg.
func (c Call) Has(arg string) bool {
	for _, a := range c.Args {
		if a == arg {
			return true
		}
	}
	return false
}

// Response is returned for a matched invocation. Effect, when set, runs
// before the outcome is returned so tests can simulate files a tool writes.
type Response struct {
	Outcome runner.Outcome
	Err     error
	Effect  func(args []string) error
}

// Rule maps invocations to a response.
type Rule struct {
	Match    func(name string, args []string) bool
	Response Response
}

// Scripted is a fake runner.Runner that answers from rules in order.
// Unmatched invocations succeed with empty output.
type Scripted struct {
	mu    sync.Mutex
	rules []Rule
	calls []Call
}

// New creates an empty Scripted runner.
func New() *Scripted {
	return &Scripted{}
}

// On adds a rule matching programs whose base name equals tool.
func (s *Scripted) On(tool string, resp Response) *Scripted {
	return s.OnMatch(func(name string, _ []string) bool {
		return filepath.Base(name) == tool
	}, resp)
}

// OnArg adds a rule matching tool invocations that contain arg.
func (s *Scripted) OnArg(tool, arg string, resp Response) *Scripted {
	return s.OnMatch(func(name string, args []string) bool {
		return filepath.Base(name) == tool && Call{Args: args}.Has(arg)
	}, resp)
}

// OnMatch adds a rule with a custom matcher.
func (s *Scripted) OnMatch(match func(name string, args []string) bool, resp Response) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, Rule{Match: match, Response: resp})
	return s
}

// Run implements runner.Runner.
func (s *Scripted) Run(ctx context.Context, name string, args ...string) (runner.Outcome, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Name: name, Args: append([]string(nil), args...)})
	rules := append([]Rule(nil), s.rules...)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return runner.Outcome{ExitCode: -1}, err
	}

	for _, rule := range rules {
		if !rule.Match(name, args) {
			continue
		}
		if rule.Response.Effect != nil {
			if err := rule.Response.Effect(args); err != nil {
				return runner.Outcome{}, fmt.Errorf("scripted effect: %w", err)
			}
		}
		return rule.Response.Outcome, rule.Response.Err
	}
	return runner.Outcome{}, nil
}

// Calls returns a copy of the recorded invocations.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded invocations of the named tool.
func (s *Scripted) CallsTo(tool string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if filepath.Base(c.Name) == tool {
			out = append(out, c)
		}
	}
	return out
}

// Output returns an Outcome with exit code and output.
func Output(code int, output string) runner.Outcome {
	return runner.Outcome{ExitCode: code, Output: output}
}
