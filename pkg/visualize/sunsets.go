package visualize

import (
	"fmt"
	"io"

	"github.com/spencer-p/sunsetdash/pkg/milestone"
	"github.com/spencer-p/sunsetdash/pkg/sunset"
	"github.com/spencer-p/sunsetdash/pkg/timetricks"
)

const (
	width  = 1200
	height = 300

	// The chart's vertical axis covers 3 PM to 11 PM.
	topMinutes    = 23 * 60
	bottomMinutes = 15 * 60
)

// Sunsets draws sunset clock times across a progression of days, with a line
// for each ladder rung.
type Sunsets struct {
	days   []sunset.Result
	ladder []milestone.Milestone
}

func NewSunsets(days []sunset.Result, ladder []milestone.Milestone) *Sunsets {
	return &Sunsets{
		days:   days,
		ladder: ladder,
	}
}

// Encode writes the chart as SVG.
func (img *Sunsets) Encode(w io.Writer) (int, error) {
	var n int
	var err error
	io := func(nextn int, nexterr error) {
		n += nextn
		if nexterr != nil && err == nil {
			err = nexterr
		}
	}

	io(fmt.Fprintf(w, `<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height))
	io(fmt.Fprintf(w, `<rect class="sky" fill="#264653" x="0" y="0" width="%d" height="%d"/>`, width, height))

	// Rungs first so the curve draws over them.
	for _, m := range img.ladder {
		y := minutesToY(m.Clock.Minutes())
		dash := "4,4"
		if m.Kind == milestone.Hour {
			dash = "none"
		}
		io(fmt.Fprintf(w, `<line class="rung" stroke="#e9c46a" stroke-dasharray="%s" x1="0" y1="%d" x2="%d" y2="%d"/>`,
			dash, y, width, y))
		io(fmt.Fprintf(w, `<text class="label" fill="#e9c46a" font-size="12" x="4" y="%d">%s</text>`, y-2, m.Label))
	}

	// Days without a sunset break the curve into segments.
	open := false
	for i, r := range img.days {
		if !r.OK() {
			if open {
				io(fmt.Fprintf(w, `"/>`))
				open = false
			}
			io(fmt.Fprintf(w, `<rect class="nosunset" fill="#e76f51" fill-opacity="25%%" x="%d" y="0" width="%d" height="%d"/>`,
				img.dayToX(i), max(1, img.dayToX(i+1)-img.dayToX(i)), height))
			continue
		}
		x := img.dayToX(i)
		y := minutesToY(timetricks.ClockOf(r.Info.Sunset).Minutes())
		if !open {
			io(fmt.Fprintf(w, `<polyline class="sunset" fill="none" stroke="#f4a261" stroke-width="2" points="`))
			open = true
		}
		io(fmt.Fprintf(w, `%d,%d `, x, y))
	}
	if open {
		io(fmt.Fprintf(w, `"/>`))
	}

	if len(img.days) > 0 {
		io(fmt.Fprintf(w, `<text class="unixtime" visibility="hidden">%d</text>`, img.days[0].Date.Unix()))
	}
	io(fmt.Fprintf(w, `</svg>`))

	return n, err
}

func (img *Sunsets) dayToX(i int) int {
	if len(img.days) < 2 {
		return 0
	}
	return i * width / (len(img.days) - 1)
}

func minutesToY(m int) int {
	if m > topMinutes {
		m = topMinutes
	}
	if m < bottomMinutes {
		m = bottomMinutes
	}
	return height - (m-bottomMinutes)*height/(topMinutes-bottomMinutes)
}
