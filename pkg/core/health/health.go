package health

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Status represents the health of one dependency or of the whole report
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string
	Status    Status
	Message   string
	Duration  time.Duration
	Timestamp time.Time
	Details   map[string]interface{}
}

// Checker is an interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type namedCheck struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewChecker creates a named checker from a function
func NewChecker(name string, fn func(ctx context.Context) CheckResult) Checker {
	return &namedCheck{name: name, fn: fn}
}

func (c *namedCheck) Name() string                          { return c.name }
func (c *namedCheck) Check(ctx context.Context) CheckResult { return c.fn(ctx) }

// Registry runs a set of checkers concurrently
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	client   string
	version  string
}

// NewRegistry creates a registry for the given client name and version
func NewRegistry(client, version string) *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		client:   client,
		version:  version,
	}
}

// Register adds a checker; a checker with the same name is replaced
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// Check runs all checks and folds them into one report. Results are
// sorted by name; the overall status is the worst individual status.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	checkers := make([]Checker, 0, len(r.checkers))
	for _, c := range r.checkers {
		checkers = append(checkers, c)
	}
	r.mu.RUnlock()

	report := &Report{
		Client:    r.client,
		Version:   r.version,
		Timestamp: time.Now(),
		Checks:    make([]CheckResult, len(checkers)),
	}

	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()
			if result.Name == "" {
				result.Name = c.Name()
			}
			report.Checks[i] = result
		}(i, checker)
	}
	wg.Wait()

	sort.Slice(report.Checks, func(i, j int) bool {
		return report.Checks[i].Name < report.Checks[j].Name
	})

	report.Status = StatusHealthy
	for _, result := range report.Checks {
		switch result.Status {
		case StatusUnhealthy:
			report.Status = StatusUnhealthy
		case StatusDegraded:
			if report.Status != StatusUnhealthy {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

// CheckWithTimeout runs all checks bounded by timeout
func (r *Registry) CheckWithTimeout(timeout time.Duration) *Report {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return r.Check(ctx)
}

// Report is the folded result of all checks
type Report struct {
	Client    string        `json:"client"`
	Version   string        `json:"version"`
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// Failed returns the names of all unhealthy checks
func (r *Report) Failed() []string {
	var names []string
	for _, c := range r.Checks {
		if c.Status == StatusUnhealthy {
			names = append(names, c.Name)
		}
	}
	return names
}

func (r *Report) String() string {
	return fmt.Sprintf("Client: %s, Status: %s, Checks: %d", r.Client, r.Status, len(r.Checks))
}

// ReadinessProbe reports whether a dependency is ready. A nil error with
// ready=false means the dependency answered but is still warming up.
type ReadinessProbe func(ctx context.Context) (ready bool, details map[string]interface{}, err error)

// ReadinessCheck maps a readiness probe onto health states: an error is
// unhealthy, not ready is degraded and ready is healthy.
func ReadinessCheck(name string, probe ReadinessProbe) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		ready, details, err := probe(ctx)
		result := CheckResult{Name: name, Details: details}

		switch {
		case err != nil:
			result.Status = StatusUnhealthy
			result.Message = err.Error()
		case !ready:
			result.Status = StatusDegraded
			result.Message = "reachable but not ready"
		default:
			result.Status = StatusHealthy
			result.Message = "ready"
		}
		return result
	})
}

// DirCheck verifies that files can be created in dir. A missing directory
// is degraded since writers create it on first use.
func DirCheck(name, dir string) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:    name,
			Status:  StatusHealthy,
			Details: map[string]interface{}{"dir": dir},
		}

		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			result.Status = StatusDegraded
			result.Message = "directory does not exist yet"
			return result
		case err != nil:
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		case !info.IsDir():
			result.Status = StatusUnhealthy
			result.Message = "not a directory"
			return result
		}

		probe, err := os.CreateTemp(dir, ".health-*")
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = "not writable: " + err.Error()
			return result
		}
		probe.Close()
		os.Remove(probe.Name())

		result.Message = "writable"
		return result
	})
}
