// Package coderunner talks to the external code execution service that
// compiles and runs student submissions against a question's test cases.
package coderunner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/scoring"
)

// Result is the outcome of one execution run. Passed is true only if every
// test case's output matched; the report carries per-case detail and any
// compile, runtime, or transport error, all of which collapse to
// Passed=false for grading.
type Result struct {
	Passed bool   `json:"passed"`
	Report string `json:"report"`
}

// Runner executes source code against test cases. May take several seconds;
// implementations must respect the context.
type Runner interface {
	Execute(ctx context.Context, source string, testCases []model.TestCase) (Result, error)
}

// HTTPRunner calls a remote runner service over HTTP.
type HTTPRunner struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRunner creates an HTTPRunner against the given base URL.
func NewHTTPRunner(baseURL string, timeout time.Duration) *HTTPRunner {
	return &HTTPRunner{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type runRequest struct {
	Source string   `json:"source"`
	Stdins []string `json:"stdins"`
}

type runResponse struct {
	CompileError string    `json:"compile_error,omitempty"`
	Runs         []caseRun `json:"runs"`
}

type caseRun struct {
	Stdout       string `json:"stdout"`
	RuntimeError string `json:"runtime_error,omitempty"`
}

// Execute runs the source once per test case and judges each case's output
// against the expected output under the shared normalization. A transport
// or service failure yields Passed=false with the error in the report, not
// a lost run.
func (r *HTTPRunner) Execute(ctx context.Context, source string, testCases []model.TestCase) (Result, error) {
	stdins := make([]string, len(testCases))
	for i, tc := range testCases {
		stdins[i] = tc.Input
	}

	resp, err := r.call(ctx, runRequest{Source: source, Stdins: stdins})
	if err != nil {
		return Result{
			Passed: false,
			Report: fmt.Sprintf("EXECUTION FAILED\n\nError: %v", err),
		}, nil
	}

	if resp.CompileError != "" {
		return Result{
			Passed: false,
			Report: "BUILD FAILED\n\n" + resp.CompileError,
		}, nil
	}

	if len(resp.Runs) != len(testCases) {
		return Result{
			Passed: false,
			Report: fmt.Sprintf("EXECUTION FAILED\n\nError: runner returned %d results for %d test cases", len(resp.Runs), len(testCases)),
		}, nil
	}

	report := "BUILD SUCCESSFUL\n\n"
	passed := true
	for i, tc := range testCases {
		run := resp.Runs[i]
		if run.RuntimeError != "" {
			passed = false
			report += fmt.Sprintf("Test Case %d: Input [%s] -> RUNTIME ERROR: %s\n", i+1, tc.Input, run.RuntimeError)
			continue
		}

		verdict := "PASS"
		if !scoring.Matches(run.Stdout, tc.Expected) {
			passed = false
			verdict = "FAIL"
		}
		report += fmt.Sprintf("Test Case %d: Input [%s] -> Expected [%s] -> Actual [%s] (%s)\n",
			i+1, tc.Input, tc.Expected, run.Stdout, verdict)
	}

	return Result{Passed: passed, Report: report}, nil
}

func (r *HTTPRunner) call(ctx context.Context, reqBody runRequest) (*runResponse, error) {
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/run", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call runner: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("runner returned %d: %s", resp.StatusCode, body)
	}

	var out runResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
