// SPDX-License-Identifier: MPL-2.0

package report

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies an issue type detected in a sweep log.
type Id int

const (
	SweepFailedId Id = iota + 1
	CompileErrorsId
	MissingProfileId
	CoverageMismatchId
	ExcessiveWarningsId
	LowSuccessRateId
)

// Priority ranks how urgently an issue needs attention.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// rank orders priorities for display, most urgent first.
func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	default:
		return 2
	}
}

// MarkdownMsg is remediation guidance rendered with glamour.
type MarkdownMsg string

// Issue is one actionable finding with remediation guidance.
type Issue struct {
	id       Id
	priority Priority
	title    string
	mdMsg    MarkdownMsg
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Priority() Priority {
	return i.priority
}

func (i *Issue) Title() string {
	return i.title
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the remediation guidance with the given glamour style path.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	sweepFailedIssue = &Issue{
		id:       SweepFailedId,
		priority: PriorityCritical,
		title:    "Sweep exited with a non-zero status",
		mdMsg: `
# Sweep failed

The benchmark sweep tool itself exited with a non-zero status, so results
are incomplete or absent.

## Things you can try
- Check the tail of the sweep log for the failing combination
- Run the sweep tool directly with the same flags to reproduce:
~~~
$ ./benchmark_all.sh --runs 1 --opt-levels 2 --sizes 1 --verbose
~~~
- Verify gcc and the benchmark source are present and buildable`,
	}

	compileErrorsIssue = &Issue{
		id:       CompileErrorsId,
		priority: PriorityCritical,
		title:    "Compiler errors occurred during the sweep",
		mdMsg: `
# Compiler errors

One or more build combinations failed with compiler errors or fatal errors.
Every failed build skews the sweep's coverage.

## Things you can try
- Inspect the sample error lines in the report
- Reproduce the failing combination manually:
~~~
$ gcc -O3 -march=native -o /tmp/matrix src/optimized_matrix.c
~~~
- Check that the flag variants in the sweep plan are supported by your gcc`,
	}

	missingProfileIssue = &Issue{
		id:       MissingProfileId,
		priority: PriorityHigh,
		title:    "PGO rebuilds ran without profile data",
		mdMsg: `
# Missing profile data

Profile-guided rebuilds reported missing-profile notices: the instrumented
run did not deposit counter files where the rebuild looked for them, so the
"optimized" numbers are not actually profile-guided.

## Things you can try
- Verify the probe passes in isolation:
~~~
$ benchctl pgo
~~~
- Make sure the instrumented run and the rebuild share a working directory
- Check that the filesystem the sweep runs on is writable`,
	}

	coverageMismatchIssue = &Issue{
		id:       CoverageMismatchId,
		priority: PriorityHigh,
		title:    "Profile data did not match the rebuilt code",
		mdMsg: `
# Coverage mismatch

The compiler found profile data that does not correspond to the code being
recompiled. Stale counters from a previous source revision are the usual
cause.

## Things you can try
- Delete leftover .gcda files before sweeping:
~~~
$ find . -name '*.gcda' -delete
~~~
- Ensure instrument and rebuild use identical sources and flags`,
	}

	excessiveWarningsIssue = &Issue{
		id:       ExcessiveWarningsId,
		priority: PriorityMedium,
		title:    "Warning volume is unusually high",
		mdMsg: `
# Excessive warnings

The sweep log contains an unusually high number of compiler warnings. The
top warning patterns section of the report shows where they cluster.

## Things you can try
- Fix the most frequent patterns first
- Confirm new flag variants are not triggering diagnostics wholesale`,
	}

	lowSuccessRateIssue = &Issue{
		id:       LowSuccessRateId,
		priority: PriorityMedium,
		title:    "Fewer combinations succeeded than expected",
		mdMsg: `
# Low success rate

A meaningful share of attempted combinations never reported a throughput
figure. Timeouts, crashes and build failures all show up here.

## Things you can try
- Re-run with fewer combinations to isolate the failing axis:
~~~
$ benchctl sweep --plan small-plan.cue
~~~
- Check the failure context section of the report`,
	}

	issues = map[Id]*Issue{
		sweepFailedIssue.Id():       sweepFailedIssue,
		compileErrorsIssue.Id():     compileErrorsIssue,
		missingProfileIssue.Id():    missingProfileIssue,
		coverageMismatchIssue.Id():  coverageMismatchIssue,
		excessiveWarningsIssue.Id(): excessiveWarningsIssue,
		lowSuccessRateIssue.Id():    lowSuccessRateIssue,
	}
)

// Values returns all known issues.
func Values() []*Issue {
	return maps.Values(issues)
}

// Get looks up an issue by ID.
func Get(id Id) *Issue {
	return issues[id]
}

// sortByPriority orders issues most urgent first, stable within a priority.
func sortByPriority(list []*Issue) {
	slices.SortStableFunc(list, func(a, b *Issue) int {
		return a.priority.rank() - b.priority.rank()
	})
}
