package services

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/EoghannIrving/echo-journal/internal/models"
	"github.com/EoghannIrving/echo-journal/internal/utils"
)

// promptCache holds the loaded corpus keyed by path and modification
// time. Owned by the service instance so tests can inject fresh state.
type promptCache struct {
	path    string
	modTime time.Time
	loaded  bool
	prompts []models.PromptTemplate
}

// PromptService loads the prompt corpus and turns a mood/energy pair
// into a concrete prompt selection via the anchor rule table and the
// three-stage filter cascade.
type PromptService struct {
	pathFor PathProvider
	now     func() time.Time
	pick    func(n int) int

	mu    sync.Mutex
	cache promptCache
}

// NewPromptService creates a new prompt service. Selection is
// intentionally non-deterministic to add variety across days with the
// same mood/energy; tests overwrite pick with a deterministic stub.
func NewPromptService(pathFor PathProvider) *PromptService {
	return &PromptService{
		pathFor: pathFor,
		now:     time.Now,
		pick:    securePick,
	}
}

// securePick draws a uniform index from [0,n).
func securePick(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// Load returns the corpus, reloading from disk only when the file's
// path or modification time changed. A missing or invalid file is an
// empty corpus, never an error.
func (s *PromptService) Load() []models.PromptTemplate {
	path := s.pathFor()

	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache.loaded && s.cache.path == path && s.cache.modTime.Equal(modTime) {
		return s.cache.prompts
	}

	var prompts []models.PromptTemplate
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &prompts); err != nil {
			log.Printf("⚠️  [PROMPTS] Malformed corpus %s: %v", path, err)
			prompts = nil
		}
	} else if !os.IsNotExist(err) {
		log.Printf("⚠️  [PROMPTS] Failed to read corpus %s: %v", path, err)
	}

	s.cache = promptCache{
		path:    path,
		modTime: modTime,
		loaded:  true,
		prompts: prompts,
	}

	if m := GetMetrics(); m != nil {
		m.RecordCorpusReload(len(prompts))
	}
	log.Printf("📚 [PROMPTS] Loaded %d templates from %s", len(prompts), path)
	return prompts
}

// Invalidate drops the cached corpus so the next selection reloads.
func (s *PromptService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.loaded = false
}

// Append adds a template to the corpus file and invalidates the cache.
// Used by the generation collaborator; the engine itself never writes
// the corpus during selection.
func (s *PromptService) Append(template models.PromptTemplate) error {
	path := s.pathFor()
	if path == "" {
		return fmt.Errorf("no corpus file configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var prompts []models.PromptTemplate
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &prompts); err != nil {
			return fmt.Errorf("failed to parse corpus: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read corpus: %w", err)
	}

	prompts = append(prompts, template)
	out, err := yaml.Marshal(prompts)
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}

	s.cache.loaded = false
	log.Printf("✅ [PROMPTS] Appended template %s to corpus", template.ID)
	return nil
}

// Anchor rule table, keyed by energy level with mood refinements.
var (
	lowestEnergyMicroMoods = []string{"drained", "self-doubt", "sad"}
	lowEnergySoftMoods     = []string{"sad", "meh", "self-doubt", "drained"}
	strongMoods            = []string{"joyful", "focused", "energized"}
	softLeaningMoods       = []string{"sad", "meh", "self-doubt"}
)

func moodIn(mood string, set []string) bool {
	for _, m := range set {
		if mood == m {
			return true
		}
	}
	return false
}

// anchorCandidates returns the eligible anchor tiers for a mood/energy
// pair. The soft and micro prepends apply at every energy level.
func anchorCandidates(mood string, energy int) []models.Anchor {
	var anchors []models.Anchor

	switch {
	case energy <= 1:
		if moodIn(mood, lowestEnergyMicroMoods) {
			anchors = []models.Anchor{models.AnchorMicro}
		} else {
			anchors = []models.Anchor{models.AnchorMicro, models.AnchorSoft}
		}
	case energy == 2:
		if moodIn(mood, lowEnergySoftMoods) {
			anchors = []models.Anchor{models.AnchorSoft}
		} else {
			anchors = []models.Anchor{models.AnchorSoft, models.AnchorModerate}
		}
	case energy == 3:
		anchors = []models.Anchor{models.AnchorModerate}
		if moodIn(mood, strongMoods) {
			anchors = append(anchors, models.AnchorStrong)
		}
	default:
		anchors = []models.Anchor{models.AnchorModerate, models.AnchorStrong}
	}

	if moodIn(mood, softLeaningMoods) && !anchorIn(models.AnchorSoft, anchors) {
		anchors = append([]models.Anchor{models.AnchorSoft}, anchors...)
	}
	if mood == "self-doubt" && !anchorIn(models.AnchorMicro, anchors) {
		anchors = append([]models.Anchor{models.AnchorMicro}, anchors...)
	}

	return anchors
}

func anchorIn(anchor models.Anchor, anchors []models.Anchor) bool {
	for _, a := range anchors {
		if a == anchor {
			return true
		}
	}
	return false
}

// ChooseAnchor maps a mood label and 1-4 energy level to an anchor
// tier, picked uniformly from the eligible set. Either input absent
// (empty mood, energy <= 0) yields no anchor; the caller supplies its
// own default at the use site.
func (s *PromptService) ChooseAnchor(mood string, energy int) (models.Anchor, bool) {
	if mood == "" || energy <= 0 {
		return "", false
	}
	candidates := anchorCandidates(strings.ToLower(strings.TrimSpace(mood)), energy)
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[s.pick(len(candidates))], true
}

// GenerateSelection runs the filter cascade and returns one prompt.
// Stages filter by anchor, style, then time label; a stage that would
// eliminate every candidate is skipped, so the result is non-empty
// whenever the corpus is. The trace is populated only when debug is set.
func (s *PromptService) GenerateSelection(mood string, energy int, style, timeLabel string, debug bool) models.Selection {
	now := s.now()
	prompts := s.Load()

	if len(prompts) == 0 {
		selection := models.Selection{Text: models.NoPromptsText}
		if debug {
			selection.Trace = &models.SelectionTrace{
				Initial:     []string{},
				AfterAnchor: []string{},
				AfterStyle:  []string{},
				AfterTime:   []string{},
			}
		}
		return selection
	}

	anchor, anchorOK := s.ChooseAnchor(mood, energy)

	candidates := prompts
	trace := &models.SelectionTrace{Initial: templateIDs(candidates)}

	if anchorOK {
		filtered := make([]models.PromptTemplate, 0, len(candidates))
		for _, p := range candidates {
			if p.Anchor == "" || p.Anchor == anchor {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	trace.AfterAnchor = templateIDs(candidates)

	if style != "" {
		styleToken := strings.ToLower(style)
		filtered := make([]models.PromptTemplate, 0, len(candidates))
		for _, p := range candidates {
			if strings.ToLower(p.StyleLabel()) == styleToken {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	trace.AfterStyle = templateIDs(candidates)

	if timeLabel != "" {
		filtered := make([]models.PromptTemplate, 0, len(candidates))
		for _, p := range candidates {
			if p.AllowsTime(timeLabel) {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	trace.AfterTime = templateIDs(candidates)

	chosen := candidates[s.pick(len(candidates))]

	text := strings.NewReplacer(
		"{{weekday}}", utils.Weekday(now),
		"{{season}}", utils.Season(now),
	).Replace(chosen.Text)

	selection := models.Selection{
		Text:   text,
		ID:     chosen.ID,
		Style:  displayStyle(chosen.StyleLabel()),
		Anchor: anchor,
		Tags:   chosen.Tags,
		Mood:   chosen.Mood,
		Energy: chosen.Energy,
	}
	if debug {
		trace.Chosen = chosen.ID
		selection.Trace = trace
	}

	if m := GetMetrics(); m != nil {
		m.RecordSelection(string(anchor))
	}
	return selection
}

func templateIDs(prompts []models.PromptTemplate) []string {
	ids := make([]string, 0, len(prompts))
	for _, p := range prompts {
		ids = append(ids, p.ID)
	}
	return ids
}

// displayStyle capitalizes a style label for display.
func displayStyle(style string) string {
	if style == "" {
		return ""
	}
	return strings.ToUpper(style[:1]) + strings.ToLower(style[1:])
}
