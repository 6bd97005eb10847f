// Package windower computes the WindowSpec sequence covering a source
// audio's duration (spec §4.1). It is a pure function of (duration,
// policy) with no side effects, grounded on the fixed/overlap chunking
// shape in other_examples' alnah-go-transcript TimeChunker.
package windower

import (
	"fmt"

	"github.com/galak06/chunked-transcriber/config"
	"github.com/galak06/chunked-transcriber/internal/model"
)

// Windows produces the dense, 1-indexed WindowSpec sequence for duration
// under the given windowing options.
func Windows(durationSeconds float64, opts config.WindowingOptions) ([]model.WindowSpec, error) {
	if durationSeconds <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %g", durationSeconds)
	}
	if err := opts.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid windowing options: %w", err)
	}

	switch opts.Policy {
	case config.PolicyFixed:
		return fixedWindows(durationSeconds, opts.WindowSeconds), nil
	case config.PolicyOverlapping:
		return overlappingWindows(durationSeconds, opts), nil
	default:
		return nil, fmt.Errorf("unsupported policy %q", opts.Policy)
	}
}

func fixedWindows(duration, windowSeconds float64) []model.WindowSpec {
	var windows []model.WindowSpec
	index := 1
	start := 0.0
	for start < duration {
		end := start + windowSeconds
		if end > duration {
			end = duration
		}
		windows = append(windows, model.WindowSpec{
			Index:        index,
			StartSeconds: start,
			EndSeconds:   end,
		})
		index++
		start += windowSeconds
	}
	return windows
}

func overlappingWindows(duration float64, opts config.WindowingOptions) []model.WindowSpec {
	var windows []model.WindowSpec
	index := 1
	current := 0.0
	stride := opts.WindowSeconds - opts.StrideOverlapSeconds

	for current < duration {
		end := current + opts.WindowSeconds
		terminal := false
		if end >= duration {
			end = duration
			terminal = true
		}

		length := end - current
		if length >= opts.MinWindowSeconds || terminal {
			overlap := opts.StrideOverlapSeconds
			if index == 1 {
				overlap = 0
			}
			windows = append(windows, model.WindowSpec{
				Index:                  index,
				StartSeconds:           current,
				EndSeconds:             end,
				ExpectedOverlapSeconds: overlap,
			})
			index++
		}

		if terminal {
			break
		}
		current += stride
	}

	// A positive duration must always yield at least one window: if every
	// candidate window before the terminal one was skipped for being
	// shorter than MinWindowSeconds, the loop above still emits the
	// terminal window unconditionally.
	if len(windows) == 0 {
		windows = append(windows, model.WindowSpec{
			Index:        1,
			StartSeconds: 0,
			EndSeconds:   duration,
		})
	}

	return windows
}
