package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Envelope:
		fmt.Fprintln(o.w, v.Message)
	case SessionResult:
		o.printSession(v)
	case RaceStarted:
		fmt.Fprintf(o.w, "%s\n", v.Message)
		fmt.Fprintf(o.w, "Race ID: %s\n", v.RaceID)
	case Leaderboard:
		o.printLeaderboard(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Result)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Envelope is the body of simple responses
type Envelope struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

// SessionResult response type
type SessionResult struct {
	Result   string `json:"result"`
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// RaceStarted response type
type RaceStarted struct {
	Result  string `json:"result"`
	Message string `json:"message"`
	RaceID  string `json:"raceId"`
}

// Race is one leaderboard row
type Race struct {
	ID        int64     `json:"id"`
	Color     string    `json:"color"`
	Name      string    `json:"name"`
	Map       string    `json:"map"`
	Time      int64     `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardParams echoes the query the server ran
type LeaderboardParams struct {
	Sort   string `json:"sort"`
	Map    string `json:"map"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	SortBy string `json:"sortBy"`
}

// Leaderboard response type
type Leaderboard struct {
	Result  string            `json:"result"`
	Message string            `json:"message,omitempty"`
	Params  LeaderboardParams `json:"params"`
	Results []Race            `json:"results"`
}

// HealthResult response type
type HealthResult struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

func (o *Output) printSession(s SessionResult) {
	fmt.Fprintln(o.w, s.Message)
	fmt.Fprintf(o.w, "Player: %s (%s)\n", s.UserName, s.UserID)
}

func (o *Output) printLeaderboard(l Leaderboard) {
	p := l.Params
	fmt.Fprintf(o.w, "Map: %q  sort: %s %s  offset: %d  limit: %d\n", p.Map, p.SortBy, p.Sort, p.Offset, p.Limit)
	if len(l.Results) == 0 {
		fmt.Fprintln(o.w, "No results")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tCOLOR\tTIME\tDATE")
	for i, r := range l.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			p.Offset+i+1, r.Name, r.Color, formatMillis(r.Time), r.CreatedAt.Format(time.DateTime))
	}
	_ = tw.Flush()
}

// formatMillis renders a race time as m:ss.mmm
func formatMillis(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d.%03d", int(d.Minutes()), int(d.Seconds())%60, ms%1000)
}
