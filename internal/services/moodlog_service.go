package services

import (
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/EoghannIrving/echo-journal/internal/models"
)

// PathProvider resolves a file path at call time, so settings changes
// take effect without a restart.
type PathProvider func() string

// Time-of-day bucket weights. Later observations count more heavily:
// a person's end-of-day state is the more representative "mood for today".
const (
	morningWeight   = 0.6
	afternoonWeight = 0.8
	eveningWeight   = 1.0
)

// MoodLogService reads the external mood/energy log, derives the daily
// snapshot, and reconciles the user's chosen mood/energy back to the log
// at most once per day. Every failure is absorbed into absent/false
// results; the log file is the only shared mutable resource and writes
// are serialized per path.
type MoodLogService struct {
	pathFor PathProvider
	enabled func() bool
	now     func() time.Time

	mu        sync.Mutex
	pathLocks map[string]*sync.Mutex
}

// NewMoodLogService creates a new mood log service. enabled reports the
// runtime mood-tracking toggle.
func NewMoodLogService(pathFor PathProvider, enabled func() bool) *MoodLogService {
	return &MoodLogService{
		pathFor:   pathFor,
		enabled:   enabled,
		now:       time.Now,
		pathLocks: make(map[string]*sync.Mutex),
	}
}

// Enabled reports whether the mood subsystem is configured and switched on.
func (s *MoodLogService) Enabled() bool {
	return s.enabled() && s.pathFor() != ""
}

// Observations returns every record in the log plus whether the log was
// readable. A missing, unreadable, or malformed file reads as empty and
// unavailable; callers never see an error.
func (s *MoodLogService) Observations() ([]models.Observation, bool) {
	path := s.pathFor()
	if path == "" {
		return nil, false
	}
	return readObservations(path)
}

func readObservations(path string) ([]models.Observation, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️  [MOODLOG] Failed to read %s: %v", path, err)
		}
		return nil, false
	}

	var observations []models.Observation
	if err := yaml.Unmarshal(data, &observations); err != nil {
		log.Printf("⚠️  [MOODLOG] Malformed log %s: %v", path, err)
		return nil, false
	}
	return observations, true
}

// GetSnapshot derives today's mood/energy view from the log.
func (s *MoodLogService) GetSnapshot() models.Snapshot {
	if !s.Enabled() {
		return models.Snapshot{}
	}

	observations, available := s.Observations()
	if !available {
		return models.Snapshot{Enabled: true}
	}

	today := s.now()
	mood, energy := aggregateToday(observations, today)

	snapshot := models.Snapshot{
		Mood:      mood,
		Energy:    energy,
		Enabled:   true,
		Available: true,
	}

	latest, ok := latestObservation(observations)
	if ok {
		if day, dayOK := latest.Day(); dayOK {
			snapshot.LastEntryDate = day.Format("2006-01-02")
		}
		// Per-field fallback to the single most recent observation when
		// today produced no canonical value.
		if snapshot.Mood == "" {
			if m, moodOK := models.NormalizeMood(latest.Mood); moodOK {
				snapshot.Mood = m
			}
		}
		if snapshot.Energy == "" {
			if v, energyOK := models.NormalizeEnergy(latest.Energy); energyOK {
				snapshot.Energy, _ = models.EnergyCategoryForValue(v)
			}
		}
	}

	for _, o := range observations {
		if o.OnDay(today) {
			snapshot.HasTodayEntry = true
			break
		}
	}

	return snapshot
}

// aggregateToday combines today's observations into a single mood and
// energy category. Energy is a bucket-weighted mean rounded half-up;
// mood is the category with the highest accumulated weight, ties broken
// by the most recent observation carrying that category.
func aggregateToday(observations []models.Observation, today time.Time) (models.MoodCategory, models.EnergyCategory) {
	var energyTotal, energyWeight float64
	moodScores := make(map[models.MoodCategory]float64)
	moodLatest := make(map[models.MoodCategory]time.Time)

	for _, o := range observations {
		if !o.OnDay(today) {
			continue
		}
		weight := bucketWeight(o)

		if value, ok := models.NormalizeEnergy(o.Energy); ok {
			energyTotal += float64(value) * weight
			energyWeight += weight
		}
		if mood, ok := models.NormalizeMood(o.Mood); ok {
			moodScores[mood] += weight
			if ts, tsOK := o.Timestamp(); tsOK && ts.After(moodLatest[mood]) {
				moodLatest[mood] = ts
			}
		}
	}

	var energy models.EnergyCategory
	if energyWeight > 0 {
		mean := energyTotal / energyWeight
		rounded := int(math.Floor(mean + 0.5))
		if rounded < 1 {
			rounded = 1
		}
		if rounded > 4 {
			rounded = 4
		}
		energy, _ = models.EnergyCategoryForValue(rounded)
	}

	var mood models.MoodCategory
	var bestScore float64
	var bestLatest time.Time
	for category, score := range moodScores {
		latest := moodLatest[category]
		if mood == "" || score > bestScore || (score == bestScore && latest.After(bestLatest)) {
			mood = category
			bestScore = score
			bestLatest = latest
		}
	}

	return mood, energy
}

// bucketWeight maps an observation's time of day to its weight.
// Observations without a timestamp count as midnight.
func bucketWeight(o models.Observation) float64 {
	ts, ok := o.Timestamp()
	if !ok {
		return morningWeight
	}
	switch hour := ts.Hour(); {
	case hour < 12:
		return morningWeight
	case hour < 17:
		return afternoonWeight
	default:
		return eveningWeight
	}
}

// latestObservation returns the record with the most recent timestamp.
// Records without a usable timestamp rank behind timestamped ones; an
// all-untimestamped log falls back to the last list element.
func latestObservation(observations []models.Observation) (models.Observation, bool) {
	var latest models.Observation
	var latestTS time.Time
	found := false

	for _, o := range observations {
		ts, ok := o.Timestamp()
		if !ok {
			continue
		}
		if !found || ts.After(latestTS) {
			latest = o
			latestTS = ts
			found = true
		}
	}
	if found {
		return latest, true
	}
	if len(observations) > 0 {
		return observations[len(observations)-1], true
	}
	return models.Observation{}, false
}

// RecordIfMissing appends today's observation unless one already exists.
// Returns true only when a new record was written. The energy category
// must map back to its 1-4 level; the mood is stored title-cased. All
// I/O failures are logged and reported as false so the caller's save
// path is never blocked.
func (s *MoodLogService) RecordIfMissing(mood, energy string) bool {
	if mood == "" || energy == "" {
		return false
	}
	path := s.pathFor()
	if path == "" {
		return false
	}

	lock := s.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	observations, err := readForWrite(path)
	if err != nil {
		log.Printf("⚠️  [MOODLOG] Unable to read log before writing: %v", err)
		recordReconciliation("failed")
		return false
	}

	today := s.now()
	for _, o := range observations {
		if o.OnDay(today) {
			recordReconciliation("skipped")
			return false
		}
	}

	value, ok := models.EnergyValueForCategory(energy)
	if !ok {
		log.Printf("⚠️  [MOODLOG] Skipping record: unknown energy %q", energy)
		recordReconciliation("skipped")
		return false
	}

	observations = append(observations, models.Observation{
		Date:       today.Format("2006-01-02"),
		Energy:     value,
		Mood:       models.TitleMood(mood),
		RecordedAt: today.Format("2006-01-02T15:04:05"),
	})

	data, err := yaml.Marshal(observations)
	if err != nil {
		log.Printf("⚠️  [MOODLOG] Failed to encode log: %v", err)
		recordReconciliation("failed")
		return false
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("⚠️  [MOODLOG] Failed to create log directory: %v", err)
			recordReconciliation("failed")
			return false
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("⚠️  [MOODLOG] Failed to write log: %v", err)
		recordReconciliation("failed")
		return false
	}

	log.Printf("✅ [MOODLOG] Recorded observation for %s", today.Format("2006-01-02"))
	recordReconciliation("recorded")
	return true
}

func recordReconciliation(outcome string) {
	if m := GetMetrics(); m != nil {
		m.RecordReconciliation(outcome)
	}
}

// readForWrite loads the log for a read-modify-write. A missing file is
// an empty log; a malformed or unreadable one is an error, never a
// silent overwrite.
func readForWrite(path string) ([]models.Observation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var observations []models.Observation
	if err := yaml.Unmarshal(data, &observations); err != nil {
		return nil, err
	}
	return observations, nil
}

// lockFor returns the write mutex for a log path, creating it on first use.
func (s *MoodLogService) lockFor(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.pathLocks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.pathLocks[path] = lock
	}
	return lock
}
