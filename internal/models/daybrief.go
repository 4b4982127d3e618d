package models

// Weather is the current conditions summary from the weather collaborator.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Code        int     `json:"code"`
	Description string  `json:"description,omitempty"`
	Summary     string  `json:"summary"`
}

// WordOfDay is the vocabulary entry from the word-of-the-day collaborator.
type WordOfDay struct {
	Word       string `json:"word"`
	Definition string `json:"definition,omitempty"`
	Note       string `json:"note,omitempty"`
}

// Photo is one photo captured on the brief's day.
type Photo struct {
	URL     string `json:"url,omitempty"`
	Thumb   string `json:"thumb,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// TrackPlay is one of the day's most played songs.
type TrackPlay struct {
	Track  string `json:"track"`
	Artist string `json:"artist"`
	Plays  int    `json:"plays"`
}

// ListeningSession is an audiobook or podcast progress update for the day.
type ListeningSession struct {
	Title    string  `json:"title,omitempty"`
	Author   string  `json:"author,omitempty"`
	Series   string  `json:"series,omitempty"`
	Progress float64 `json:"progress,omitempty"`
	Finished bool    `json:"finished"`
}

// Location is a reverse-geocoded place description.
type Location struct {
	DisplayName string `json:"display_name,omitempty"`
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	Country     string `json:"country,omitempty"`
}

// DayBrief bundles everything the journal shows alongside today's prompt.
// Each collaborator section is independently optional; a failed fetch
// leaves its section empty rather than failing the brief.
type DayBrief struct {
	Date      string             `json:"date"`
	Weekday   string             `json:"weekday"`
	Season    string             `json:"season"`
	TimeOfDay string             `json:"time_of_day"`
	Snapshot  Snapshot           `json:"snapshot"`
	Weather   *Weather           `json:"weather,omitempty"`
	WordOfDay *WordOfDay         `json:"word_of_day,omitempty"`
	DateFact  string             `json:"date_fact,omitempty"`
	Photos    []Photo            `json:"photos,omitempty"`
	TopTracks []TrackPlay        `json:"top_tracks,omitempty"`
	Listening []ListeningSession `json:"listening,omitempty"`
}
