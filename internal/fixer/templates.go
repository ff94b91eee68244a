package fixer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
)

// recipe turns a signal group into a title and ordered steps
type recipe struct {
	title func(g *group) string
	steps func(g *group) []string
}

var recipes = map[string]recipe{
	domain.DetectorNoTests: {
		title: func(g *group) string { return "Add a test suite (no test files found)" },
		steps: func(g *group) []string {
			return []string{
				fmt.Sprintf("Create a test directory following the %s conventions of this project.", g.languageName()),
				"Start with the modules that have the most functions: " + g.largestModules(5) + ".",
				"For each function cover the happy path, edge cases (empty, invalid and boundary inputs) and error conditions.",
				"Share setup through fixtures or helpers instead of copying it between tests.",
				fmt.Sprintf("Run %s and make sure every new test passes.", g.testCommand()),
			}
		},
	},
	domain.DetectorCriticalUntested: {
		title: func(g *group) string { return fmt.Sprintf("Add tests for %s", g.path) },
		steps: func(g *group) []string {
			f := g.primaryFile()
			return []string{
				fmt.Sprintf("Create a test file for %s, which has %d functions and %d mapped tests.", g.path, f.Functions, f.Tests),
				focusStep(g),
				"Write at least three cases per function: normal operation, edge cases and error conditions.",
				"Mock network, filesystem and database access so the tests stay fast and deterministic.",
			}
		},
	},
	domain.DetectorLowTestRatio: {
		title: func(g *group) string { return "Raise the test-to-code ratio" },
		steps: func(g *group) []string {
			return []string{
				g.signals[0].Description + ".",
				"Add tests for the largest untested modules first: " + g.largestModules(5) + ".",
				"Prefer tests that exercise public behavior over tests of private helpers.",
				"Remove dead code instead of testing it.",
			}
		},
	},
	domain.DetectorExactDuplicate: {
		title: func(g *group) string { return fmt.Sprintf("Consolidate %d identical files", len(g.files)) },
		steps: func(g *group) []string {
			return []string{
				"These files have identical content: " + g.fileList() + ".",
				"Keep one canonical copy and delete the others.",
				"Update every import or reference to point at the canonical file.",
				"Search for broken references after the move.",
			}
		},
	},
	domain.DetectorNearDuplicate: {
		title: func(g *group) string { return fmt.Sprintf("Merge %d near-duplicate files", len(g.files)) },
		steps: func(g *group) []string {
			return []string{
				g.signals[0].Description + ": " + g.fileList() + ".",
				"Diff the files and identify the most complete version.",
				"Extract the shared logic into one module and keep only the real differences as parameters.",
				"Update callers and delete the redundant copies.",
			}
		},
	},
	domain.DetectorMissingErrorHandling: {
		title: func(g *group) string { return fmt.Sprintf("Add error handling in %s", g.path) },
		steps: func(g *group) []string {
			return []string{
				capitalize(g.signals[0].Description) + ".",
				"Validate inputs at the start of each listed function and reject empty or malformed values.",
				"Wrap I/O, network and parsing calls with the language's error-handling construct and handle each failure explicitly.",
				"Log failures with enough context to debug them and return clear errors to callers.",
				"Add tests that trigger each error path.",
			}
		},
	},
	domain.DetectorCopyPaste: {
		title: func(g *group) string { return fmt.Sprintf("Remove copy-paste repetition in %s", g.path) },
		steps: func(g *group) []string {
			steps := make([]string, 0, len(g.signals)+2)
			for _, s := range g.signals {
				steps = append(steps, fmt.Sprintf("%s (%s).", capitalize(s.Description), refList(s.Files)))
			}
			return append(steps,
				"Extract repeated blocks into a shared function and repeated strings into named constants.",
				"Replace every copy with a call or reference to the shared definition.",
			)
		},
	},
	domain.DetectorDeadCodeIndicators: {
		title: func(g *group) string { return fmt.Sprintf("Consolidate re-declared functions in %s", g.path) },
		steps: func(g *group) []string {
			steps := make([]string, 0, len(g.signals)+2)
			for _, s := range g.signals {
				steps = append(steps, fmt.Sprintf("%s: %s.", capitalize(s.Description), refList(s.Files)))
			}
			return append(steps,
				"Check which declarations are actually called and delete the unused ones.",
				"Move the remaining implementation into one shared module and import it elsewhere.",
			)
		},
	},
	domain.DetectorLongFunction: {
		title: func(g *group) string { return fmt.Sprintf("Split long functions in %s", g.path) },
		steps: func(g *group) []string {
			return []string{
				"Long functions: " + descriptionList(g.signals) + ".",
				"Identify the logical sections of each function and extract them into well-named helpers.",
				"Keep the original function as a short coordinator calling the helpers.",
				"Make sure each new function does one thing and is covered by a test.",
			}
		},
	},
	domain.DetectorInconsistentNaming: {
		title: func(g *group) string { return fmt.Sprintf("Unify naming conventions in %s", g.path) },
		steps: func(g *group) []string {
			return []string{
				capitalize(g.signals[0].Description) + ".",
				fmt.Sprintf("Adopt the idiomatic %s convention for functions and variables.", g.languageName()),
				"Rename the minority names and update every reference.",
			}
		},
	},
	domain.DetectorExcessiveComments: {
		title: func(g *group) string { return fmt.Sprintf("Trim redundant comments in %s", g.path) },
		steps: func(g *group) []string {
			return []string{
				capitalize(g.signals[0].Description) + ".",
				"Delete comments that restate what the code already says.",
				"Keep comments that explain intent, constraints or non-obvious behavior.",
			}
		},
	},
	domain.DetectorVerboseNaming: {
		title: func(g *group) string { return fmt.Sprintf("Shorten verbose names in %s", g.path) },
		steps: func(g *group) []string {
			return []string{
				"Overlong names: " + descriptionList(g.signals) + ".",
				"Rename each to a shorter name that still describes its role, such as authenticateUser.",
				"Update every reference to the renamed identifiers.",
			}
		},
	},
	domain.DetectorBoilerplateHeavy: {
		title: func(g *group) string { return fmt.Sprintf("Reduce import boilerplate in %s", g.path) },
		steps: func(g *group) []string {
			return []string{
				capitalize(g.signals[0].Description) + ".",
				"Remove unused imports.",
				"Consolidate related imports and move rarely used ones next to the code that needs them.",
			}
		},
	},
	domain.DetectorOverEngineering: {
		title: func(g *group) string { return fmt.Sprintf("Simplify class structure in %s", g.path) },
		steps: func(g *group) []string {
			return []string{
				capitalize(g.signals[0].Description) + ".",
				"Replace classes that hold no state with plain functions.",
				"Collapse single-implementation abstractions into their only implementation.",
			}
		},
	},
	domain.DetectorTodoMarkers: {
		title: func(g *group) string { return fmt.Sprintf("Triage unfinished-work markers in %s", g.path) },
		steps: func(g *group) []string {
			return []string{
				capitalize(g.signals[0].Description) + ".",
				"Fix FIXME, BUG and HACK markers first.",
				"Turn each remaining TODO into an issue or resolve it now, then delete the comment.",
			}
		},
	},
	domain.DetectorUnreadableFile: {
		title: func(g *group) string { return fmt.Sprintf("Make %s readable", g.path) },
		steps: func(g *group) []string {
			return []string{
				capitalize(g.signals[0].Description) + ".",
				"Check the file permissions and encoding, or add the path to the ignore list if it is generated.",
			}
		},
	},
}

// genericRecipe covers detectors without a dedicated recipe
var genericRecipe = recipe{
	title: func(g *group) string {
		if g.path == "" {
			return fmt.Sprintf("Address %s findings", g.detector)
		}
		return fmt.Sprintf("Address %s findings in %s", g.detector, g.path)
	},
	steps: func(g *group) []string {
		return []string{"Findings: " + descriptionList(g.signals) + "."}
	},
}

func recipeFor(detector string) recipe {
	if r, ok := recipes[detector]; ok {
		return r
	}
	return genericRecipe
}

// focusNameLimit caps how many function names a prompt lists
const focusNameLimit = 8

func focusStep(g *group) string {
	if summary := g.report.FileSummaryFor(g.path); summary != nil {
		if names := summary.FunctionNames(); len(names) > 0 {
			list := strings.Join(names[:min(len(names), focusNameLimit)], ", ")
			if extra := len(names) - focusNameLimit; extra > 0 {
				list += fmt.Sprintf(" and %d more", extra)
			}
			return "Cover the functions in file order: " + list + "."
		}
	}
	for _, s := range g.signals {
		if line := s.PrimaryLine(); line > 0 {
			return fmt.Sprintf("Start with the function declared at line %d and continue in file order.", line)
		}
	}
	return "Start with the public functions and continue in file order."
}

func descriptionList(signals []domain.Signal) string {
	parts := make([]string, 0, len(signals))
	for _, s := range signals {
		if line := s.PrimaryLine(); line > 0 {
			parts = append(parts, fmt.Sprintf("%s (line %d)", s.Description, line))
		} else {
			parts = append(parts, s.Description)
		}
	}
	return strings.Join(parts, "; ")
}

func refList(refs []domain.FileRef) string {
	parts := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", r.Path, r.Line))
		} else {
			parts = append(parts, r.Path)
		}
	}
	return strings.Join(parts, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
