package scheduling

import (
	"sort"
	"time"

	"calendo/utils"
)

// SliceMinutes is the length of a generated slot.
const SliceMinutes = 60

// DayWindow is an opening window in minutes from midnight.
type DayWindow struct {
	OpenMinute  int
	CloseMinute int
}

// SlotTemplate is the weekly availability used by the generator. Weekdays
// missing from Days are closed.
type SlotTemplate struct {
	Days         map[time.Weekday]DayWindow
	SliceMinutes int
}

// DefaultTemplate opens Mon-Fri 08:00-16:00 and Sat 09:00-13:00.
func DefaultTemplate() SlotTemplate {
	weekday := DayWindow{OpenMinute: 8 * 60, CloseMinute: 16 * 60}
	return SlotTemplate{
		Days: map[time.Weekday]DayWindow{
			time.Monday:    weekday,
			time.Tuesday:   weekday,
			time.Wednesday: weekday,
			time.Thursday:  weekday,
			time.Friday:    weekday,
			time.Saturday:  {OpenMinute: 9 * 60, CloseMinute: 13 * 60},
		},
		SliceMinutes: SliceMinutes,
	}
}

type window struct {
	Start string
	End   string
}

// sliceTimes cuts [start, end) into consecutive pieces of step. The last
// piece is shorter when the range is not a multiple of step.
func sliceTimes(start, end time.Time, step time.Duration) []window {
	var out []window
	for cur := start; cur.Before(end); cur = cur.Add(step) {
		next := cur.Add(step)
		if next.After(end) {
			next = end
		}
		out = append(out, window{Start: utils.FormatCanonical(cur), End: utils.FormatCanonical(next)})
	}
	return out
}

func (t SlotTemplate) step() time.Duration {
	if t.SliceMinutes <= 0 {
		return SliceMinutes * time.Minute
	}
	return time.Duration(t.SliceMinutes) * time.Minute
}

// monthWindows enumerates the template windows for every day of the month.
func (t SlotTemplate) monthWindows(year int, month time.Month) []window {
	step := t.step()
	var out []window
	for day := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); day.Month() == month; day = day.AddDate(0, 0, 1) {
		dw, open := t.Days[day.Weekday()]
		if !open || dw.CloseMinute <= dw.OpenMinute {
			continue
		}
		open0 := day.Add(time.Duration(dw.OpenMinute) * time.Minute)
		close0 := day.Add(time.Duration(dw.CloseMinute) * time.Minute)
		out = append(out, sliceTimes(open0, close0, step)...)
	}
	return out
}

type span struct {
	start, end time.Time
}

// openSpans returns the opening hours of every day touching [from, to).
func (t SlotTemplate) openSpans(from, to time.Time) []span {
	var out []span
	for day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location()); day.Before(to); day = day.AddDate(0, 0, 1) {
		dw, open := t.Days[day.Weekday()]
		if !open || dw.CloseMinute <= dw.OpenMinute {
			continue
		}
		out = append(out, span{
			start: day.Add(time.Duration(dw.OpenMinute) * time.Minute),
			end:   day.Add(time.Duration(dw.CloseMinute) * time.Minute),
		})
	}
	return out
}

func mergeSpans(in []span) []span {
	sort.Slice(in, func(i, j int) bool { return in[i].start.Before(in[j].start) })
	var out []span
	for _, s := range in {
		if n := len(out); n > 0 && !s.start.After(out[n-1].end) {
			if s.end.After(out[n-1].end) {
				out[n-1].end = s.end
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// vacatedWindows slices [origStart, newStart) and [newEnd, origEnd). Time
// inside the original window is always returned; the rest only where the
// template is open.
func (t SlotTemplate) vacatedWindows(origStart, origEnd, newStart, newEnd string) ([]window, error) {
	var ts [4]time.Time
	for i, raw := range []string{origStart, origEnd, newStart, newEnd} {
		v, err := utils.ParseCanonical(raw)
		if err != nil {
			return nil, err
		}
		ts[i] = v
	}
	oStart, oEnd, nStart, nEnd := ts[0], ts[1], ts[2], ts[3]

	from, to := oStart, oEnd
	if nStart.Before(from) {
		from = nStart
	}
	if nEnd.After(to) {
		to = nEnd
	}
	allowed := mergeSpans(append(t.openSpans(from, to), span{start: oStart, end: oEnd}))

	var out []window
	for _, r := range []span{{start: oStart, end: nStart}, {start: nEnd, end: oEnd}} {
		for _, a := range allowed {
			lo, hi := r.start, r.end
			if a.start.After(lo) {
				lo = a.start
			}
			if a.end.Before(hi) {
				hi = a.end
			}
			if lo.Before(hi) {
				out = append(out, sliceTimes(lo, hi, t.step())...)
			}
		}
	}
	return out, nil
}
