package services

import (
	"context"
	"sync"
	"time"

	"github.com/EoghannIrving/echo-journal/internal/models"
	"github.com/EoghannIrving/echo-journal/internal/utils"
)

// DayBriefService assembles the daily context card from the mood log and
// the outbound collaborators. Collaborator failures drop their section
// rather than failing the brief.
type DayBriefService struct {
	weather  *WeatherService
	wordDay  *WordDayService
	dateFact *DateFactService
	media    *MediaService
	moodLog  *MoodLogService

	now func() time.Time
}

// NewDayBriefService creates a new day brief service
func NewDayBriefService(weather *WeatherService, wordDay *WordDayService, dateFact *DateFactService, media *MediaService, moodLog *MoodLogService) *DayBriefService {
	return &DayBriefService{
		weather:  weather,
		wordDay:  wordDay,
		dateFact: dateFact,
		media:    media,
		moodLog:  moodLog,
		now:      time.Now,
	}
}

// Brief gathers today's context. The collaborators are queried
// concurrently and each one writes its own section of the brief. A
// non-zero lat/lon overrides the configured coordinates for the weather
// section.
func (s *DayBriefService) Brief(ctx context.Context, lat, lon float64) *models.DayBrief {
	now := s.now()
	date := now.Format("2006-01-02")

	brief := &models.DayBrief{
		Date:      date,
		Weekday:   utils.Weekday(now),
		Season:    utils.Season(now),
		TimeOfDay: utils.TimeOfDayLabel(now),
		Snapshot:  s.moodLog.GetSnapshot(),
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		weather, ok := s.weather.CurrentAt(ctx, lat, lon)
		if !ok && lat == 0 && lon == 0 {
			weather, ok = s.weather.Current(ctx)
		}
		if ok {
			brief.Weather = weather
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if word, ok := s.wordDay.WordOfDay(ctx); ok {
			brief.WordOfDay = word
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if fact, ok := s.dateFact.Fact(ctx); ok {
			brief.DateFact = fact
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if photos, ok := s.media.PhotosForDate(ctx, date); ok {
			brief.Photos = photos
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if tracks, ok := s.media.TopTracksForDate(ctx, date); ok {
			brief.TopTracks = tracks
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if sessions, ok := s.media.ListeningForDate(ctx, date); ok {
			brief.Listening = sessions
		}
	}()

	wg.Wait()
	return brief
}
