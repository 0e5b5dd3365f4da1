package audio

// PhraseEvent is what one detector tick concluded about the capture.
type PhraseEvent int

const (
	PhraseNone    PhraseEvent = iota
	PhraseStart               // energy rose above the calibrated threshold
	PhraseEnd                 // trailing pause after speech
	PhraseTimeout             // onset window elapsed with no speech at all
	PhraseMax                 // phrase duration cap reached
)

// phraseDetector is a tick-driven state machine over energy samples:
// waiting -> speaking, then End/Max. One Tick per level interval.
type phraseDetector struct {
	threshold  float64
	onsetTicks int // ticks to wait for speech before Timeout
	pauseTicks int // consecutive quiet ticks that end a phrase
	maxTicks   int // phrase length cap, counted from Start

	ticks     int
	speaking  bool
	startTick int
	quietRun  int
}

func newPhraseDetector(threshold float64, onsetTicks, pauseTicks, maxTicks int) *phraseDetector {
	return &phraseDetector{
		threshold:  threshold,
		onsetTicks: onsetTicks,
		pauseTicks: pauseTicks,
		maxTicks:   maxTicks,
	}
}

func (d *phraseDetector) Tick(level float64) PhraseEvent {
	d.ticks++
	loud := level >= d.threshold

	if !d.speaking {
		if loud {
			d.speaking = true
			d.startTick = d.ticks
			d.quietRun = 0
			return PhraseStart
		}
		if d.ticks >= d.onsetTicks {
			return PhraseTimeout
		}
		return PhraseNone
	}

	if d.ticks-d.startTick >= d.maxTicks {
		return PhraseMax
	}
	if loud {
		d.quietRun = 0
		return PhraseNone
	}
	d.quietRun++
	if d.quietRun >= d.pauseTicks {
		return PhraseEnd
	}
	return PhraseNone
}
