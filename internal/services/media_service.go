package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/EoghannIrving/echo-journal/internal/config"
	"github.com/EoghannIrving/echo-journal/internal/models"
)

// MediaService fetches the day's photos, songs and listening sessions
// from the user's self-hosted media servers (Immich, Jellyfin and
// AudioBookShelf). Every fetch degrades to an empty result; a media
// server being down never breaks the day brief.
type MediaService struct {
	cache    *cache.Cache
	client   *http.Client
	cfg      *config.Config
	settings *SettingsService
}

// NewMediaService creates a new media service
func NewMediaService(cfg *config.Config, settings *SettingsService) *MediaService {
	return &MediaService{
		cache:    cache.New(15*time.Minute, 5*time.Minute),
		client:   &http.Client{Timeout: 10 * time.Second},
		cfg:      cfg,
		settings: settings,
	}
}

func (s *MediaService) effective(key, fallback string) string {
	if s.settings != nil {
		return s.settings.Effective(key, fallback)
	}
	return fallback
}

// PhotosForDate returns metadata for photos taken on the given day. The
// Immich search window extends a few hours either side of the local day
// to absorb timezone skew between camera and server; results outside the
// day are filtered back out. Photo URLs point at the local asset proxy
// so the caller never needs the Immich API key.
func (s *MediaService) PhotosForDate(ctx context.Context, date string) ([]models.Photo, bool) {
	base := s.effective(models.SettingKeyImmichURL, s.cfg.ImmichURL)
	if base == "" {
		return nil, false
	}

	cacheKey := "immich:" + date
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]models.Photo), true
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, false
	}
	buffer := time.Duration(s.cfg.ImmichTimeBuffer) * time.Hour
	start := day.Add(-buffer)
	end := day.Add(24*time.Hour + buffer - time.Second)

	payload, err := json.Marshal(map[string]string{
		"takenAfter":  start.UTC().Format("2006-01-02T15:04:05Z"),
		"takenBefore": end.UTC().Format("2006-01-02T15:04:05Z"),
		"type":        "IMAGE",
	})
	if err != nil {
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, "POST", base+"/search/metadata", bytes.NewReader(payload))
	if err != nil {
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")
	if key := s.effective(models.SettingKeyImmichAPIKey, s.cfg.ImmichAPIKey); key != "" {
		req.Header.Set("x-api-key", key)
	}

	body, ok := s.fetch(req, "immich")
	if !ok {
		return nil, false
	}

	var result struct {
		Assets struct {
			Items []struct {
				ID               string `json:"id"`
				FileCreatedAt    string `json:"fileCreatedAt"`
				OriginalFileName string `json:"originalFileName"`
			} `json:"items"`
		} `json:"assets"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("⚠️  [MEDIA] Malformed Immich response: %v", err)
		return nil, false
	}

	photos := make([]models.Photo, 0, len(result.Assets.Items))
	for _, item := range result.Assets.Items {
		if item.ID == "" {
			continue
		}
		created, err := time.Parse(time.RFC3339, item.FileCreatedAt)
		if err != nil || created.Format("2006-01-02") != date {
			continue
		}
		photos = append(photos, models.Photo{
			URL:     "/api/asset/" + item.ID,
			Thumb:   "/api/thumbnail/" + item.ID + "?size=thumbnail",
			Caption: item.OriginalFileName,
		})
	}

	s.cache.Set(cacheKey, photos, cache.DefaultExpiration)
	return photos, true
}

// Asset proxies an Immich asset body so browser clients never handle
// the API key. kind is "thumbnail" or "original"; size applies to
// thumbnails only. Returns the body and its content type.
func (s *MediaService) Asset(ctx context.Context, id, kind, size string) ([]byte, string, bool) {
	base := s.effective(models.SettingKeyImmichURL, s.cfg.ImmichURL)
	if base == "" || id == "" {
		return nil, "", false
	}

	endpoint := base + "/assets/" + url.PathEscape(id) + "/" + kind
	if kind == "thumbnail" && size != "" {
		endpoint += "?size=" + url.QueryEscape(size)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, "", false
	}
	if key := s.effective(models.SettingKeyImmichAPIKey, s.cfg.ImmichAPIKey); key != "" {
		req.Header.Set("x-api-key", key)
	}
	if err := WaitOutbound(ctx, req.URL.Host); err != nil {
		return nil, "", false
	}

	start := time.Now()
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorRequest("immich")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordError("immich")
		log.Printf("⚠️  [MEDIA] immich asset fetch failed: %v", err)
		return nil, "", false
	}
	defer resp.Body.Close()

	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorLatency("immich", time.Since(start).Seconds())
	}

	if resp.StatusCode != http.StatusOK {
		s.recordError("immich")
		log.Printf("⚠️  [MEDIA] immich asset returned status %d", resp.StatusCode)
		return nil, "", false
	}

	// Originals can be full camera files, so the cap is generous.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024*1024))
	if err != nil {
		s.recordError("immich")
		return nil, "", false
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return body, contentType, true
}

// TopTracksForDate returns the five most played songs on the given day
// from Jellyfin.
func (s *MediaService) TopTracksForDate(ctx context.Context, date string) ([]models.TrackPlay, bool) {
	base := s.effective(models.SettingKeyJellyfinURL, s.cfg.JellyfinURL)
	userID := s.cfg.JellyfinUserID
	if base == "" || userID == "" {
		return nil, false
	}

	cacheKey := "jellyfin:" + date
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]models.TrackPlay), true
	}

	pageSize := s.cfg.JellyfinPageSize
	if pageSize <= 0 {
		pageSize = 200
	}

	params := url.Values{}
	params.Set("Filters", "IsPlayed")
	params.Set("IncludeItemTypes", "Audio")
	params.Set("Fields", "DatePlayed,ArtistItems")
	params.Set("SortBy", "DatePlayed")
	params.Set("SortOrder", "Descending")
	params.Set("Recursive", "true")
	params.Set("Limit", strconv.Itoa(pageSize))

	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/Users/%s/Items?%s", base, userID, params.Encode()), nil)
	if err != nil {
		return nil, false
	}
	if key := s.effective(models.SettingKeyJellyfinAPIKey, s.cfg.JellyfinAPIKey); key != "" {
		req.Header.Set("X-Emby-Token", key)
	}

	body, ok := s.fetch(req, "jellyfin")
	if !ok {
		return nil, false
	}

	var payload struct {
		Items []struct {
			Name        string `json:"Name"`
			DatePlayed  string `json:"DatePlayed"`
			ArtistItems []struct {
				Name string `json:"Name"`
			} `json:"ArtistItems"`
		} `json:"Items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("⚠️  [MEDIA] Malformed Jellyfin response: %v", err)
		return nil, false
	}

	type trackKey struct{ track, artist string }
	counts := make(map[trackKey]int)
	order := make([]trackKey, 0)
	for _, item := range payload.Items {
		if item.DatePlayed == "" {
			continue
		}
		played, err := time.Parse(time.RFC3339, item.DatePlayed)
		if err != nil {
			continue
		}
		if played.Format("2006-01-02") != date {
			continue
		}

		name := item.Name
		if name == "" {
			name = "Unknown Title"
		}
		artist := ""
		for _, a := range item.ArtistItems {
			if a.Name == "" {
				continue
			}
			if artist != "" {
				artist += " / "
			}
			artist += a.Name
		}
		if artist == "" {
			artist = "Unknown Artist"
		}

		k := trackKey{name, artist}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 5 {
		order = order[:5]
	}

	tracks := make([]models.TrackPlay, 0, len(order))
	for _, k := range order {
		tracks = append(tracks, models.TrackPlay{Track: k.track, Artist: k.artist, Plays: counts[k]})
	}

	s.cache.Set(cacheKey, tracks, cache.DefaultExpiration)
	return tracks, true
}

// ListeningForDate returns the audiobook and podcast sessions whose
// progress was last updated on the given day, from AudioBookShelf.
func (s *MediaService) ListeningForDate(ctx context.Context, date string) ([]models.ListeningSession, bool) {
	base := s.effective(models.SettingKeyAudiobookshelfURL, s.cfg.AudiobookshelfURL)
	if base == "" {
		return nil, false
	}

	cacheKey := "audiobookshelf:" + date
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]models.ListeningSession), true
	}

	req, err := http.NewRequestWithContext(ctx, "GET", base+"/api/me", nil)
	if err != nil {
		return nil, false
	}
	token := s.effective(models.SettingKeyAudiobookshelfKey, s.cfg.AudiobookshelfToken)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	body, ok := s.fetch(req, "audiobookshelf")
	if !ok {
		return nil, false
	}

	var payload struct {
		User struct {
			MediaProgress []struct {
				LibraryItemID      string  `json:"libraryItemId"`
				EpisodeID          string  `json:"episodeId"`
				Progress           float64 `json:"progress"`
				IsFinished         bool    `json:"isFinished"`
				ProgressLastUpdate int64   `json:"progressLastUpdate"`
				LastUpdate         int64   `json:"lastUpdate"`
			} `json:"mediaProgress"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("⚠️  [MEDIA] Malformed AudioBookShelf response: %v", err)
		return nil, false
	}

	threshold := float64(s.cfg.JellyfinPlayThreshold) / 100
	if threshold <= 0 {
		threshold = 0.9
	}

	var sessions []models.ListeningSession
	for _, p := range payload.User.MediaProgress {
		last := p.ProgressLastUpdate
		if last == 0 {
			last = p.LastUpdate
		}
		if last == 0 {
			continue
		}
		if time.UnixMilli(last).Format("2006-01-02") != date {
			continue
		}

		session := models.ListeningSession{
			Progress: p.Progress,
			Finished: p.IsFinished || p.Progress >= threshold,
		}
		if p.LibraryItemID != "" {
			session.Title, session.Author, session.Series = s.libraryItemMetadata(ctx, base, token, p.LibraryItemID)
		}
		sessions = append(sessions, session)
	}

	s.cache.Set(cacheKey, sessions, cache.DefaultExpiration)
	return sessions, true
}

// libraryItemMetadata resolves an AudioBookShelf item to display fields.
// Failures leave them empty; the session row still shows its progress.
func (s *MediaService) libraryItemMetadata(ctx context.Context, base, token, itemID string) (title, author, series string) {
	req, err := http.NewRequestWithContext(ctx, "GET", base+"/api/items/"+itemID, nil)
	if err != nil {
		return "", "", ""
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	body, ok := s.fetch(req, "audiobookshelf")
	if !ok {
		return "", "", ""
	}

	var payload struct {
		MediaType string `json:"mediaType"`
		Media     struct {
			Metadata struct {
				Title   string `json:"title"`
				Authors []struct {
					Name string `json:"name"`
				} `json:"authors"`
				Series []struct {
					Name string `json:"name"`
				} `json:"series"`
				Publisher string `json:"publisher"`
			} `json:"metadata"`
		} `json:"media"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", ""
	}

	meta := payload.Media.Metadata
	title = meta.Title
	for _, a := range meta.Authors {
		if a.Name == "" {
			continue
		}
		if author != "" {
			author += ", "
		}
		author += a.Name
	}
	for _, sr := range meta.Series {
		if sr.Name == "" {
			continue
		}
		if series != "" {
			series += ", "
		}
		series += sr.Name
	}
	if payload.MediaType == "podcast" && title == "" {
		title = meta.Publisher
	}
	return title, author, series
}

// fetch runs the request and returns the body, recording metrics under
// the given collaborator name.
func (s *MediaService) fetch(req *http.Request, service string) ([]byte, bool) {
	if err := WaitOutbound(req.Context(), req.URL.Host); err != nil {
		return nil, false
	}

	start := time.Now()
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorRequest(service)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordError(service)
		log.Printf("⚠️  [MEDIA] %s fetch failed: %v", service, err)
		return nil, false
	}
	defer resp.Body.Close()

	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorLatency(service, time.Since(start).Seconds())
	}

	if resp.StatusCode != http.StatusOK {
		s.recordError(service)
		log.Printf("⚠️  [MEDIA] %s returned status %d", service, resp.StatusCode)
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		s.recordError(service)
		return nil, false
	}
	return body, true
}

func (s *MediaService) recordError(service string) {
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorError(service)
	}
}
