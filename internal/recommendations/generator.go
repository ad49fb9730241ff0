package recommendations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fittrackapp/fittrack/internal/assistant"
	"github.com/fittrackapp/fittrack/internal/telemetry/metrics"
	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"
	"github.com/fittrackapp/fittrack/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var ErrEmptyCatalog = errors.New("workout catalog is empty")

const promptTemplate = "Based on my goals list 4 workout titles only that are part of this list: %s, " +
	"numbered (e.g. 1., 2., 3., 4), each on a new line. " +
	"Make sure that the names to be exactly like the ones from the list i provided to you."

type recommendationsRepo interface {
	Add(ctx context.Context, rec Recommendation) (*Recommendation, error)
	ActiveByUserID(ctx context.Context, userID int) ([]Recommendation, error)
	AllByUserID(ctx context.Context, userID int) ([]Recommendation, error)
	DeactivateAllForUser(ctx context.Context, userID int) error
}

type workoutsCatalog interface {
	ListAll(ctx context.Context) ([]workouts.Workout, error)
}

type noteReader interface {
	LatestMessageContent(ctx context.Context, userID int) (string, error)
}

// Generator produces workout recommendations: it asks the assistant to pick
// four titles from the catalog, keeping the user's latest conversation note
// in the prompt as context.
type Generator struct {
	repo           recommendationsRepo
	catalog        workoutsCatalog
	notes          noteReader
	completer      assistant.Completer
	model          string
	metricsManager *metrics.Manager
}

func NewGenerator(
	repo recommendationsRepo,
	catalog workoutsCatalog,
	notes noteReader,
	completer assistant.Completer,
	model string,
	metricsManager *metrics.Manager,
) *Generator {
	return &Generator{
		repo:           repo,
		catalog:        catalog,
		notes:          notes,
		completer:      completer,
		model:          model,
		metricsManager: metricsManager,
	}
}

// Get returns the user's active recommendations, generating a fresh set only
// when none exist. The fast path never contacts the assistant.
func (g *Generator) Get(ctx context.Context, userID int) (_ []Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.recommendations.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	active, err := g.repo.ActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active recommendations: %w", err)
	}
	if len(active) > 0 {
		return active, nil
	}

	return g.generate(ctx, userID)
}

// Refresh retires the user's active set and generates a new one. The
// deactivation commits before the assistant is contacted, so a failed
// generation leaves the user without active recommendations rather than
// with a stale set.
func (g *Generator) Refresh(ctx context.Context, userID int) (_ []Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.recommendations.refresh")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	if err := g.repo.DeactivateAllForUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("deactivate recommendations: %w", err)
	}

	return g.generate(ctx, userID)
}

func (g *Generator) generate(ctx context.Context, userID int) ([]Recommendation, error) {
	catalog, err := g.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workout catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}

	catalogNames := make([]string, 0, len(catalog))
	knownNames := make(map[string]struct{}, len(catalog))
	for _, w := range catalog {
		catalogNames = append(catalogNames, w.Name)
		knownNames[w.Name] = struct{}{}
	}

	latestNote, err := g.notes.LatestMessageContent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get latest conversation note: %w", err)
	}

	prompt := fmt.Sprintf(promptTemplate, strings.Join(catalogNames, " "))
	if latestNote != "" {
		prompt = latestNote + "\n" + prompt
	}

	begin := time.Now()
	reply, err := g.completer.Complete(ctx, g.model, []assistant.Message{
		{
			Role:    assistant.RoleUser,
			Content: prompt,
		},
	})
	if g.metricsManager != nil {
		g.metricsManager.CounterAssistantCalls.Inc()
		g.metricsManager.HistAssistantCallDuration.Observe(time.Since(begin).Seconds())
	}
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, 4)
	for _, name := range ParseWorkoutNames(reply) {
		if _, known := knownNames[name]; !known {
			log.Warnf("recommendations, user %d: assistant suggested unknown workout %q, skipping", userID, name)
			continue
		}
		added, err := g.repo.Add(ctx, Recommendation{
			UserID:      userID,
			WorkoutName: name,
			Status:      StatusActive,
		})
		if err != nil {
			return nil, fmt.Errorf("save recommendation %q: %w", name, err)
		}
		recs = append(recs, *added)
	}

	if g.metricsManager != nil {
		g.metricsManager.CounterRecommendationsGenerated.Add(float64(len(recs)))
	}

	return recs, nil
}
