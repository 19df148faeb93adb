package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/heimdex/jr3d/internal/projectfile"
)

// TimelineEvent is one director clip placed on the record timeline, in frames.
type TimelineEvent struct {
	ClipName  string
	Source    string
	Track     int
	SourceIn  int
	SourceOut int
	RecordIn  int
	RecordOut int
}

// EventsFromDirector lists the clips of unmuted tracks ordered by record
// position. Trims shorten the source range; the record range is the clip's
// placement on the timeline.
func EventsFromDirector(d *projectfile.SerializableDirector) []TimelineEvent {
	var events []TimelineEvent
	for ti, track := range d.Tracks {
		if track.IsMuted {
			continue
		}
		for _, c := range track.Clips {
			length := c.EndFrame - c.StartFrame
			if length <= 0 {
				continue
			}
			srcIn := max(c.TrimStart, 0)
			srcOut := max(length-max(c.TrimEnd, 0), srcIn)
			events = append(events, TimelineEvent{
				ClipName:  c.Name,
				Source:    fmt.Sprintf("%s/%s/%s", c.SourceType, c.SourceModelID, c.SourceAnimationID),
				Track:     ti,
				SourceIn:  srcIn,
				SourceOut: srcOut,
				RecordIn:  c.StartFrame,
				RecordOut: c.EndFrame,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].RecordIn != events[j].RecordIn {
			return events[i].RecordIn < events[j].RecordIn
		}
		return events[i].Track < events[j].Track
	})
	return events
}

// GenerateEDL renders events as a CMX3600-style edit decision list.
func GenerateEDL(events []TimelineEvent, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, ev := range events {
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V",
				framesToTimecode(ev.SourceIn, fps),
				framesToTimecode(ev.SourceOut, fps),
				framesToTimecode(ev.RecordIn, fps),
				framesToTimecode(ev.RecordOut, fps),
			),
			fmt.Sprintf("* FROM CLIP NAME:  %s", ev.ClipName),
			fmt.Sprintf("* SOURCE:  %s", ev.Source),
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func framesToTimecode(totalFrames int, fps int) string {
	totalFrames = max(totalFrames, 0)
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
