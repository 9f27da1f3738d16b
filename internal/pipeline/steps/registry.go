// Package steps defines the phases of an extraction session, their
// dependencies, and which of them a recorded session has completed.
package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/types"
)

// Phase names, also used as checkpoint phases
const (
	PhaseStructure       = "structure"
	PhaseRole            = "role"
	PhaseFramework       = "framework"
	PhaseStrategy        = "strategy"
	PhaseFinalValidation = "final_validation"
)

// Step categories
const (
	CategoryAnalysis   = "analysis"
	CategoryExtraction = "extraction"
	CategoryValidation = "validation"
)

// PassPhase returns the checkpoint phase for a category's pass
func PassPhase(c types.Category) string {
	return observability.PassPhasePrefix + string(c)
}

// StepDefinition defines metadata for a session phase
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all phase definitions
var StepRegistry = buildRegistry()

// Order lists the phases in execution order
var Order = buildOrder()

func buildRegistry() map[string]StepDefinition {
	reg := map[string]StepDefinition{
		PhaseStructure: {
			Name:         PhaseStructure,
			Category:     CategoryAnalysis,
			Dependencies: []string{},
		},
		PhaseRole: {
			Name:         PhaseRole,
			Category:     CategoryAnalysis,
			Dependencies: []string{PhaseStructure},
		},
		PhaseFramework: {
			Name:         PhaseFramework,
			Category:     CategoryAnalysis,
			Dependencies: []string{PhaseRole},
		},
		PhaseStrategy: {
			Name:         PhaseStrategy,
			Category:     CategoryAnalysis,
			Dependencies: []string{PhaseStructure, PhaseRole, PhaseFramework},
		},
	}
	passes := make([]string, 0, len(types.AllCategories))
	for _, c := range types.AllCategories {
		name := PassPhase(c)
		reg[name] = StepDefinition{
			Name:         name,
			Category:     CategoryExtraction,
			Dependencies: []string{PhaseStrategy},
		}
		passes = append(passes, name)
	}
	reg[PhaseFinalValidation] = StepDefinition{
		Name:         PhaseFinalValidation,
		Category:     CategoryValidation,
		Dependencies: passes,
	}
	return reg
}

func buildOrder() []string {
	order := []string{PhaseStructure, PhaseRole, PhaseFramework, PhaseStrategy}
	for _, c := range types.AllCategories {
		order = append(order, PassPhase(c))
	}
	return append(order, PhaseFinalValidation)
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: missing dependencies: %s", e.Step, strings.Join(e.MissingDependencies, ", "))
}

// CompletedPhases returns the set of phases checkpointed for a session
func CompletedPhases(ctx context.Context, store observability.Store, sessionID uuid.UUID) (map[string]bool, error) {
	cps, err := store.ListCheckpoints(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	done := make(map[string]bool, len(cps))
	for _, cp := range cps {
		done[cp.Phase] = true
	}
	return done, nil
}

// ValidateDependencies checks that every dependency of a phase is in done
func ValidateDependencies(done map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !done[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: stepName, MissingDependencies: missing}
	}
	return nil
}

// Progress splits the phases of a session into completed, available and blocked, in execution order
type Progress struct {
	Completed []string `json:"completed"`
	Available []string `json:"available"`
	Blocked   []string `json:"blocked"`
}

// GetProgress reports the phase progress of a recorded session
func GetProgress(ctx context.Context, store observability.Store, sessionID uuid.UUID) (*Progress, error) {
	done, err := CompletedPhases(ctx, store, sessionID)
	if err != nil {
		return nil, err
	}
	p := &Progress{Completed: []string{}, Available: []string{}, Blocked: []string{}}
	for _, name := range Order {
		switch {
		case done[name]:
			p.Completed = append(p.Completed, name)
		case ValidateDependencies(done, name) == nil:
			p.Available = append(p.Available, name)
		default:
			p.Blocked = append(p.Blocked, name)
		}
	}
	return p, nil
}
