package modules

import (
	"time"

	"github.com/rook-computer/mirror/mirror"
)

const (
	defaultTimeFormat = "15:04"
	defaultDateFormat = "Monday, 2 January"
)

// Clock shows the time and, below it at a third of the size, the date.
// Formats use Go reference layouts; an empty date_format hides the date.
type Clock struct {
	Now func() time.Time
}

type clockState struct {
	timeFormat string
	dateFormat string
	style      mirror.TextStyle
	location   *time.Location
	shown      string
}

func (c *Clock) Init(m mirror.Mirror, cfg mirror.Config) (any, error) {
	style, err := textStyle(m, cfg)
	if err != nil {
		return nil, err
	}
	st := &clockState{
		timeFormat: cfg.String("time_format", defaultTimeFormat),
		dateFormat: cfg.String("date_format", defaultDateFormat),
		style:      style,
		location:   time.Local,
	}
	if tz := cfg.String("timezone", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, err
		}
		st.location = loc
	}
	return st, nil
}

func (c *Clock) Draw(m mirror.Mirror, locals any) error {
	st := locals.(*clockState)
	now := c.Now().In(st.location)

	x, y := anchor(st.style.Adjust, m.Width(), m.Height())
	timeText := now.Format(st.timeFormat)
	m.DrawText(timeText, x, y, st.style)
	st.shown = timeText

	if st.dateFormat == "" {
		return nil
	}
	_, h := m.MeasureText(timeText, st.style)
	date := st.style
	date.Size = max(st.style.Size/3, 8)
	if st.style.Adjust&mirror.Bottom != 0 {
		// date goes above a bottom-anchored time
		m.DrawText(now.Format(st.dateFormat), x, y-h, date)
		return nil
	}
	m.DrawText(now.Format(st.dateFormat), x, y+h, date)
	return nil
}

func (c *Clock) DebugInfo(locals any) map[string]any {
	st, ok := locals.(*clockState)
	if !ok {
		return nil
	}
	return map[string]any{"shown": st.shown, "location": st.location.String()}
}
