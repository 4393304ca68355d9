package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkChargePeak       BookmarkType = "charge_peak"
	BookmarkCapacityReached  BookmarkType = "capacity_reached"
	BookmarkStalledDischarge BookmarkType = "stalled_discharge"
	BookmarkBounceSurge      BookmarkType = "bounce_surge"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	capacity int

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	peakElectrons   int  // highest electron count seen since the last discharge
	atCapacity      bool // capacity bookmark already raised for the current charge
	stalledWindows  int  // consecutive windows discharging without draining
	stalledReported bool
}

// NewBookmarkDetector creates a detector with the given history size.
// capacity is the electron cap used for the capacity_reached bookmark.
func NewBookmarkDetector(historySize, capacity int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		capacity:    capacity,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkCapacity(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkChargePeak(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStalledDischarge(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkBounceSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	// A completed discharge or reset starts a new charge cycle
	if stats.DischargesEnded > 0 || stats.Resets > 0 {
		bd.peakElectrons = stats.Electrons
		bd.atCapacity = false
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkCapacity(stats WindowStats) *Bookmark {
	if bd.capacity <= 0 || bd.atCapacity || stats.Electrons < bd.capacity {
		return nil
	}
	bd.atCapacity = true
	return &Bookmark{
		Type:        BookmarkCapacityReached,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Body holds %d electrons (cap %d), %d adds rejected", stats.Electrons, bd.capacity, stats.Rejected),
	}
}

func (bd *BookmarkDetector) checkChargePeak(stats WindowStats) *Bookmark {
	if stats.Electrons <= bd.peakElectrons {
		return nil
	}
	old := bd.peakElectrons
	bd.peakElectrons = stats.Electrons

	// Only report meaningful jumps
	if stats.Electrons < 10 || stats.Electrons < old+old/2 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkChargePeak,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Charge climbed from %d to %d electrons", old, stats.Electrons),
	}
}

func (bd *BookmarkDetector) checkStalledDischarge(stats WindowStats) *Bookmark {
	if stats.Discharging == 0 || stats.Removed > 0 {
		bd.stalledWindows = 0
		bd.stalledReported = false
		return nil
	}

	bd.stalledWindows++
	if bd.stalledWindows < 2 || bd.stalledReported {
		return nil
	}
	bd.stalledReported = true
	return &Bookmark{
		Type:        BookmarkStalledDischarge,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d electrons discharging with none drained for %d windows", stats.Discharging, bd.stalledWindows),
	}
}

func (bd *BookmarkDetector) checkBounceSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 2 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Bounces
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Bounces) > avg*2.0 && stats.Bounces >= 20 {
		return &Bookmark{
			Type:        BookmarkBounceSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d bounces is %.1fx average (%.1f)", stats.Bounces, float64(stats.Bounces)/avg, avg),
		}
	}
	return nil
}
